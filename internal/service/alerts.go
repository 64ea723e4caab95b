package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AlertRequest is the console broadcast form.  Emails is an optional
// comma separated list.
type AlertRequest struct {
	Ghat    string `json:"ghat"`
	Zone    string `json:"zone"`
	Emails  string `json:"emails"`
	Message string `json:"message"`
}

// AlertResult carries the rendered alert and its Telegram share link.
type AlertResult struct {
	Text        string   `json:"message"`
	TelegramURL string   `json:"telegramUrl"`
	Recipients  []string `json:"recipients"`
	Delivered   bool     `json:"delivered"`
}

// AlertService renders and broadcasts crowd alerts.
type AlertService struct {
	Notifier notify.Notifier
	Log      *zap.Logger
	Timeout  time.Duration
}

// NewAlertService returns an AlertService sending through n.
func NewAlertService(n notify.Notifier, log *zap.Logger) *AlertService {
	if n == nil {
		n = notify.Nop{}
	}
	return &AlertService{Notifier: n, Log: log, Timeout: 5 * time.Second}
}

func parseEmails(raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, e := range strings.Split(raw, ",") {
		e = strings.TrimSpace(e)
		if !emailPattern.MatchString(e) {
			return nil, &ValidationError{Field: "emails", Reason: "must be a comma-separated list of valid emails"}
		}
		out = append(out, e)
	}
	return out, nil
}

// RenderAlert formats the alert text sent to responders.
func RenderAlert(ghat, zone, message string) string {
	return fmt.Sprintf("🚨 MAHAKUMBH CROWD ALERT\n\nLocation:\nGhat: %s\nZone: %s\n\nAlert:\n%s\n\nPlease proceed immediately and assist with crowd management.",
		ghat, zone, message)
}

// ShareURL returns a Telegram share link for text, escaped like
// encodeURIComponent.
func ShareURL(text string) string {
	return "https://t.me/share/url?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// Broadcast validates the form, renders the alert and pushes it to the
// notifier.  Delivery is best-effort: a failure is logged and reported in
// the result but does not fail the call.
func (s *AlertService) Broadcast(ctx context.Context, req AlertRequest) (*AlertResult, error) {
	ghat := strings.TrimSpace(req.Ghat)
	zone := strings.TrimSpace(req.Zone)
	msg := strings.TrimSpace(req.Message)
	if ghat == "" {
		return nil, &ValidationError{Field: "ghat", Reason: "is required"}
	}
	if zone == "" {
		return nil, &ValidationError{Field: "zone", Reason: "is required"}
	}
	if err := minLen("message", msg, 10); err != nil {
		return nil, err
	}
	emails, err := parseEmails(req.Emails)
	if err != nil {
		return nil, err
	}
	text := RenderAlert(ghat, zone, msg)
	res := &AlertResult{Text: text, TelegramURL: ShareURL(text), Recipients: emails}

	sendCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Notifier.NotifyAlert(sendCtx, notify.AlertNotice{Ghat: ghat, Zone: zone, Message: msg, Emails: emails, Text: text}); err != nil {
		s.Log.Warn("crowd alert delivery failed", zap.String("ghat", ghat), zap.String("zone", zone), zap.Error(err))
	} else {
		res.Delivered = true
	}
	return res, nil
}
