package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
)

// Publisher sends notices to RabbitMQ.  It dials per publish, which keeps
// it free of reconnect state at the cost of a connection per message.
// Messages are persistent and queues durable.
type Publisher struct {
	URL string
	Log *zap.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

func (p *Publisher) NotifyBooking(ctx context.Context, n notify.BookingNotice) error {
	return p.publish(ctx, BookingQueueName, BookingConfirmedEvent{
		TicketID:       n.TicketID,
		FullName:       n.Name,
		MobileNumber:   n.Mobile,
		GhatName:       n.Ghat,
		GhatShortCode:  n.GhatShortCode,
		TimeSlot:       n.Slot,
		NumberOfPeople: n.NumberOfPeople,
		VisitDate:      n.VisitDate,
		ConfirmedAt:    n.ConfirmedAt,
	})
}

func (p *Publisher) NotifyAlert(ctx context.Context, n notify.AlertNotice) error {
	return p.publish(ctx, AlertQueueName, CrowdAlertEvent{
		Ghat: n.Ghat, Zone: n.Zone, Message: n.Message, Emails: n.Emails, Text: n.Text,
	})
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	fail := func(step string, err error) error {
		p.Log.Warn("rabbitmq publish failed", zap.String("step", step), zap.String("queue", queueName), zap.Error(err))
		return &notify.Error{Channel: "rabbitmq", Err: err}
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fail("dial", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fail("channel", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fail("queue declare", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fail("marshal", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		return fail("publish", err)
	}
	return nil
}
