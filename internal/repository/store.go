package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

// DefaultMaxAttempts mirrors the retry budget of hosted document stores.
const DefaultMaxAttempts = 5

// Tx is the view of the store available inside a transaction.  Reads
// observe the transaction's own writes.  Every ghat written with PutGhat
// must have been read through the same Tx first; the version seen by that
// read is what the commit is validated against.
type Tx interface {
	GhatByShortCode(ctx context.Context, shortCode string) (*model.Ghat, error)
	PutGhat(ctx context.Context, g *model.Ghat) error
	CreateRegistration(ctx context.Context, r *model.Registration) error
}

// TxFunc is the body of a transaction.  It may run more than once and
// must not keep state between attempts.
type TxFunc func(ctx context.Context, tx Tx) error

// GhatStore holds the ghat catalog and the transactional booking path.
type GhatStore interface {
	RunTx(ctx context.Context, fn TxFunc) error
	ListGhats(ctx context.Context) ([]model.Ghat, error)
	CountGhats(ctx context.Context) (int, error)
	InsertGhats(ctx context.Context, ghats []model.Ghat) error
}

// RegistrationStore serves read access to committed registrations.
type RegistrationStore interface {
	RegistrationByTicket(ctx context.Context, ticketID string) (*model.Registration, error)
}

// IncidentStore keeps missing person reports and health emergencies.
type IncidentStore interface {
	CreateMissingPerson(ctx context.Context, r *model.MissingPersonReport) error
	ListMissingPersons(ctx context.Context, limit int) ([]model.MissingPersonReport, error)
	UpdateMissingPersonStatus(ctx context.Context, id, status string) error
	CreateEmergency(ctx context.Context, e *model.HealthEmergency) error
	ListEmergencies(ctx context.Context, limit int) ([]model.HealthEmergency, error)
	UpdateEmergencyStatus(ctx context.Context, id, status string) error
}

// Store is the full document store used by the server.
type Store interface {
	GhatStore
	RegistrationStore
	IncidentStore
}

// retryTx runs attempt until it returns something other than ErrTxConflict
// or maxAttempts is reached.  Each attempt starts from scratch.
func retryTx(ctx context.Context, maxAttempts int, attempt func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := attempt(ctx)
		if !errors.Is(err, ErrTxConflict) {
			return err
		}
		if i == maxAttempts-1 {
			break
		}
		// linear backoff so racing writers do not collide in lock step
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 2 * time.Millisecond):
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxAttempts, ErrTxConflict)
}

// clampLimit bounds list sizes requested by console pages.
func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
