package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer listens on the booking.confirmed and crowd.alert queues and
// appends one line per event to <LogDir>/booking.log, the system log shown
// to operators.
type Consumer struct {
	URL    string
	LogDir string
	Log    *zap.Logger
	Now    func() time.Time // stamps alert lines, defaults to time.Now
}

// Run keeps a connection to the broker until ctx is cancelled, redialling
// with exponential backoff capped at 30s.  Processing errors are logged and
// the offending message is rejected so the server keeps operating.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("booking-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("booking-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("booking-consumer: set QoS failed", zap.Error(err))
	}
	bookings, err := consume(ch, BookingQueueName)
	if err != nil {
		return err
	}
	alerts, err := consume(ch, AlertQueueName)
	if err != nil {
		return err
	}

	for {
		var (
			d    amqp.Delivery
			ok   bool
			name string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-bookings:
			name = BookingQueueName
		case d, ok = <-alerts:
			name = AlertQueueName
		}
		if !ok {
			return fmt.Errorf("%s deliveries channel closed", name)
		}
		if err := c.handle(name, d.Body); err != nil {
			c.Log.Error("booking-consumer: handle message failed", zap.String("queue", name), zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func consume(ch *amqp.Channel, queueName string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queueName, err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queueName, err)
	}
	return msgs, nil
}

func (c *Consumer) handle(queueName string, body []byte) error {
	switch queueName {
	case BookingQueueName:
		return c.handleMessage(body)
	case AlertQueueName:
		return c.handleAlert(body)
	}
	return fmt.Errorf("unexpected queue %q", queueName)
}

// handleMessage decodes one event and appends it to the booking log.
func (c *Consumer) handleMessage(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.TicketID == "" {
		return errors.New("event without ticket id")
	}
	return c.appendLine(formatBookingLine(ev))
}

// handleAlert decodes a broadcast crowd alert and appends it to the log.
func (c *Consumer) handleAlert(body []byte) error {
	var ev CrowdAlertEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Ghat == "" && ev.Message == "" {
		return errors.New("alert without ghat or message")
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return c.appendLine(formatAlertLine(now().UTC(), ev))
}

func (c *Consumer) appendLine(line string) error {
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatBookingLine(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("[%s] Registration confirmed | ticket=%s | ghat=\"%s\" (%s) | slot=\"%s\" | date=%s | people=%d | name=\"%s\"\n",
		ev.ConfirmedAt, ev.TicketID, ev.GhatName, ev.GhatShortCode, ev.TimeSlot, ev.VisitDate, ev.NumberOfPeople, ev.FullName)
}

func formatAlertLine(at time.Time, ev CrowdAlertEvent) string {
	return fmt.Sprintf("[%s] Crowd alert | ghat=\"%s\" | zone=\"%s\" | recipients=%d | message=\"%s\"\n",
		at.Format(time.RFC3339), ev.Ghat, ev.Zone, len(ev.Emails), ev.Message)
}
