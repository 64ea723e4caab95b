// Package service holds the booking core and the smaller console
// operations built around it.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

// RegistrationRequest is the booking payload.  Ghat is the ghat short code
// and TimeSlot the slot label.
type RegistrationRequest struct {
	FullName       string `json:"fullName"`
	MobileNumber   string `json:"mobileNumber"`
	NumberOfPeople int    `json:"numberOfPeople"`
	Date           string `json:"date"`
	Ghat           string `json:"ghat"`
	TimeSlot       string `json:"timeSlot"`
}

// RegistrationResult is returned to the pilgrim after a successful booking.
type RegistrationResult struct {
	ID             string `json:"id"`
	GhatName       string `json:"ghatName"`
	TimeSlot       string `json:"timeSlot"`
	Date           string `json:"date"`
	FullName       string `json:"fullName"`
	NumberOfPeople int    `json:"numberOfPeople"`
	TelegramURL    string `json:"telegramUrl,omitempty"`
}

// ReservationService runs the capacity checked booking transaction.
type ReservationService struct {
	Store         repository.GhatStore
	Registrations repository.RegistrationStore
	Notifier      notify.Notifier
	Log           *zap.Logger

	NewTicketID   func(shortCode string) (string, error)
	Now           func() time.Time
	NotifyTimeout time.Duration
	TelegramBot   string // bot username for the ticket deep link, optional
	MaxPartySize  int    // people per registration, <= 0 for no cap

	wg sync.WaitGroup
}

// NewReservationService wires the service with production defaults.
func NewReservationService(store repository.Store, n notify.Notifier, log *zap.Logger) *ReservationService {
	if n == nil {
		n = notify.Nop{}
	}
	return &ReservationService{
		Store:         store,
		Registrations: store,
		Notifier:      n,
		Log:           log,
		NewTicketID:   NewTicketID,
		Now:           func() time.Time { return time.Now().UTC() },
		NotifyTimeout: 5 * time.Second,
		MaxPartySize:  DefaultMaxPartySize,
	}
}

// parseVisitDate accepts YYYY-MM-DD or an RFC3339 timestamp and keeps the
// calendar day as written.
func parseVisitDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DefaultMaxPartySize caps the people on a single registration unless the
// service is configured otherwise.
const DefaultMaxPartySize = 10

const minNameLen = 3

// validate checks the request shape.  maxParty <= 0 leaves the party size
// bounded only by slot capacity.
func (req *RegistrationRequest) validate(maxParty int) (time.Time, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	req.Ghat = strings.TrimSpace(req.Ghat)
	switch {
	case req.FullName == "":
		return time.Time{}, &ValidationError{Field: "fullName", Reason: "is required"}
	case utf8.RuneCountInString(req.FullName) < minNameLen:
		return time.Time{}, &ValidationError{Field: "fullName", Reason: "must be at least 3 characters"}
	case req.MobileNumber == "":
		return time.Time{}, &ValidationError{Field: "mobileNumber", Reason: "is required"}
	case !tenDigits.MatchString(req.MobileNumber):
		return time.Time{}, &ValidationError{Field: "mobileNumber", Reason: "must be 10 digits"}
	case req.NumberOfPeople < 1:
		return time.Time{}, &ValidationError{Field: "numberOfPeople", Reason: "must be at least 1"}
	case maxParty > 0 && req.NumberOfPeople > maxParty:
		return time.Time{}, &ValidationError{Field: "numberOfPeople", Reason: fmt.Sprintf("maximum %d people per registration", maxParty)}
	case strings.TrimSpace(req.Date) == "":
		return time.Time{}, &ValidationError{Field: "date", Reason: "is required"}
	case req.Ghat == "":
		return time.Time{}, &ValidationError{Field: "ghat", Reason: "is required"}
	case req.TimeSlot == "":
		return time.Time{}, &ValidationError{Field: "timeSlot", Reason: "is required"}
	}
	date, err := parseVisitDate(req.Date)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD or RFC3339"}
	}
	return date, nil
}

// Register reserves capacity for the party or fails without side effects.
// Lookup, capacity check and ticket generation all run inside the store
// transaction and are redone on every retry, so a booking never passes the
// check against a slot count another commit has already moved.
func (s *ReservationService) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	date, err := req.validate(s.MaxPartySize)
	if err != nil {
		return nil, err
	}

	var reg model.Registration
	err = s.Store.RunTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ghat, err := tx.GhatByShortCode(ctx, req.Ghat)
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "ghat", Key: req.Ghat}
		}
		if err != nil {
			return err
		}
		i := ghat.SlotByLabel(req.TimeSlot)
		if i < 0 {
			return &NotFoundError{Resource: "timeSlot", Key: req.TimeSlot}
		}
		slot := ghat.TimeSlots[i]
		if req.NumberOfPeople > slot.Remaining() {
			return &CapacityExceededError{
				GhatName:  ghat.Name,
				TimeSlot:  slot.Label,
				Requested: req.NumberOfPeople,
				Remaining: slot.Remaining(),
			}
		}
		ticket, err := s.NewTicketID(ghat.ShortCode)
		if err != nil {
			return fmt.Errorf("generate ticket id: %w", err)
		}
		r := model.Registration{
			TicketID:       ticket,
			FullName:       req.FullName,
			MobileNumber:   req.MobileNumber,
			NumberOfPeople: req.NumberOfPeople,
			VisitDate:      date,
			GhatID:         ghat.ID,
			GhatName:       ghat.Name,
			GhatShortCode:  ghat.ShortCode,
			TimeSlot:       slot.Label,
			CreatedAt:      s.Now(),
		}
		if err := tx.CreateRegistration(ctx, &r); err != nil {
			return fmt.Errorf("create registration: %w", err)
		}
		ghat.TimeSlots[i].CurrentRegistrations += req.NumberOfPeople
		if err := tx.PutGhat(ctx, ghat); err != nil {
			return fmt.Errorf("update ghat: %w", err)
		}
		reg = r
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrTxConflict) {
			return nil, &TransactionConflictError{Err: err}
		}
		return nil, err
	}

	s.Log.Info("registration committed",
		zap.String("ticket_id", reg.TicketID),
		zap.String("ghat", reg.GhatShortCode),
		zap.String("slot", reg.TimeSlot),
		zap.Int("people", reg.NumberOfPeople),
	)
	s.notifyAsync(reg)

	res := &RegistrationResult{
		ID:             reg.TicketID,
		GhatName:       reg.GhatName,
		TimeSlot:       reg.TimeSlot,
		Date:           reg.VisitDate.Format("2006-01-02"),
		FullName:       reg.FullName,
		NumberOfPeople: reg.NumberOfPeople,
	}
	if s.TelegramBot != "" {
		res.TelegramURL = fmt.Sprintf("https://t.me/%s?start=%s", s.TelegramBot, reg.TicketID)
	}
	return res, nil
}

// notifyAsync sends the booking summary outside the request.  Failures are
// logged and dropped.
func (s *ReservationService) notifyAsync(reg model.Registration) {
	n := notify.BookingNotice{
		Name:           reg.FullName,
		Mobile:         reg.MobileNumber,
		Ghat:           reg.GhatName,
		GhatShortCode:  reg.GhatShortCode,
		Slot:           reg.TimeSlot,
		TicketID:       reg.TicketID,
		NumberOfPeople: reg.NumberOfPeople,
		VisitDate:      reg.VisitDate.Format("2006-01-02"),
		ConfirmedAt:    reg.CreatedAt.Format(time.RFC3339),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.Log.Error("booking notification panicked", zap.Any("panic", r), zap.String("ticket_id", n.TicketID))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.NotifyTimeout)
		defer cancel()
		if err := s.Notifier.NotifyBooking(ctx, n); err != nil {
			s.Log.Warn("booking notification failed", zap.String("ticket_id", n.TicketID), zap.Error(err))
		}
	}()
}

// Wait blocks until pending notifications have finished.
func (s *ReservationService) Wait() { s.wg.Wait() }

// Lookup returns the registration for a ticket id.
func (s *ReservationService) Lookup(ctx context.Context, ticketID string) (*model.Registration, error) {
	ticketID = strings.ToUpper(strings.TrimSpace(ticketID))
	if ticketID == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}
	r, err := s.Registrations.RegistrationByTicket(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "registration", Key: ticketID}
	}
	return r, err
}
