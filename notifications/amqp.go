package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes each event as a persistent JSON message on a durable queue.
type AMQPNotifier struct {
	url   string
	queue string
}

func NewAMQPNotifier(url, queue string) *AMQPNotifier {
	return &AMQPNotifier{url: url, queue: queue}
}

type envelope struct {
	Event     string    `json:"event"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *AMQPNotifier) Notify(ctx context.Context, event string, payload Payload) error {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(a.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(envelope{Event: event, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event,
		Body:         body,
	})
}
