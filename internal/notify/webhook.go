package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook POSTs JSON notices to a fixed URL.
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook returns a webhook notifier with its own client timeout.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{URL: url, Client: &http.Client{Timeout: timeout}}
}

// bookingPayload is the documented webhook body for a booking.
type bookingPayload struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Ghat     string `json:"ghat"`
	Slot     string `json:"slot"`
	TicketID string `json:"ticketID"`
}

type alertPayload struct {
	Type    string   `json:"type"`
	Ghat    string   `json:"ghat"`
	Zone    string   `json:"zone"`
	Message string   `json:"message"`
	Emails  []string `json:"emails,omitempty"`
	Text    string   `json:"text"`
}

func (w *Webhook) NotifyBooking(ctx context.Context, n BookingNotice) error {
	return w.post(ctx, bookingPayload{Name: n.Name, Mobile: n.Mobile, Ghat: n.Ghat, Slot: n.Slot, TicketID: n.TicketID})
}

func (w *Webhook) NotifyAlert(ctx context.Context, n AlertNotice) error {
	return w.post(ctx, alertPayload{Type: "crowd_alert", Ghat: n.Ghat, Zone: n.Zone, Message: n.Message, Emails: n.Emails, Text: n.Text})
}

func (w *Webhook) post(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return &Error{Channel: "webhook", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return &Error{Channel: "webhook", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.Client.Do(req)
	if err != nil {
		return &Error{Channel: "webhook", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Channel: "webhook", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}
