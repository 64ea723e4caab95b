// Package notify delivers best-effort notices about bookings and crowd
// alerts to external channels.  Delivery failures are reported as *Error so
// callers can log them; they never affect the operation that triggered them.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// BookingNotice summarises a committed registration.
type BookingNotice struct {
	Name           string
	Mobile         string
	Ghat           string
	GhatShortCode  string
	Slot           string
	TicketID       string
	NumberOfPeople int
	VisitDate      string // YYYY-MM-DD
	ConfirmedAt    string // RFC3339
}

// AlertNotice is a crowd alert broadcast from the console.
type AlertNotice struct {
	Ghat    string
	Zone    string
	Message string
	Emails  []string
	Text    string // fully rendered alert text
}

// Notifier is an outbound channel.
type Notifier interface {
	NotifyBooking(ctx context.Context, n BookingNotice) error
	NotifyAlert(ctx context.Context, n AlertNotice) error
}

// Error wraps a failed delivery with the channel it was attempted on.
type Error struct {
	Channel string
	Err     error
}

func (e *Error) Error() string { return fmt.Sprintf("notify %s: %v", e.Channel, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Multi fans a notice out to every channel and joins the failures.
type Multi []Notifier

func (m Multi) NotifyBooking(ctx context.Context, n BookingNotice) error {
	var errs []error
	for _, ch := range m {
		if err := ch.NotifyBooking(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyAlert(ctx context.Context, n AlertNotice) error {
	var errs []error
	for _, ch := range m {
		if err := ch.NotifyAlert(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every notice.
type Nop struct{}

func (Nop) NotifyBooking(context.Context, BookingNotice) error { return nil }
func (Nop) NotifyAlert(context.Context, AlertNotice) error     { return nil }
