package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// QueueName is the durable queue carrying reservation events.
const QueueName = "reservation.events"

// Publisher pushes ReservationEvents onto the broker.  Every publish
// opens a fresh connection so the booking path never holds broker
// state; errors are logged and returned so callers can ignore them
// without interrupting the request.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher builds a Publisher.  An empty URL disables publishing:
// Publish becomes a no-op.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "queue").Logger()}
}

// Publish sends one event to the reservation.events queue, marked
// persistent so it survives broker restarts.
func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) error {
	if p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("broker dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Msg("publish failed")
		return err
	}
	return nil
}
