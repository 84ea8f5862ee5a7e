package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Messages are keyed by salon so one tenant's events stay ordered.
func (k *KafkaNotifier) Notify(ctx context.Context, event string, payload Payload) error {
	body, err := json.Marshal(envelope{Event: event, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.String("salonId")),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(event)},
		},
	})
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
