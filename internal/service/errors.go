package service

import "fmt"

// ValidationError reports missing or malformed input.  The caller is
// expected to fix the request and try again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s %s", e.Field, e.Reason) }

// NotFoundError reports an unknown ghat, time slot or document.  For
// bookings it usually means the client catalog is stale.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	switch e.Resource {
	case "ghat":
		return "Selected Ghat not found."
	case "timeSlot":
		return fmt.Sprintf("Time slot %q not found for the selected Ghat.", e.Key)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// CapacityExceededError reports that the slot cannot take the party at
// transaction time.  It is expected and frequent near popular slots.
type CapacityExceededError struct {
	GhatName  string
	TimeSlot  string
	Requested int
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("No available capacity for %d people at %s (%s); %d places left. Please try another Ghat or time.",
		e.Requested, e.GhatName, e.TimeSlot, e.Remaining)
}

// TransactionConflictError is returned once the store gave up retrying a
// contended transaction.
type TransactionConflictError struct {
	Err error
}

func (e *TransactionConflictError) Error() string {
	return "The selected slot is busy right now. Please try again."
}

func (e *TransactionConflictError) Unwrap() error { return e.Err }
