package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/gearshop/internal/events"
)

// Producer publishes storefront events to a Kafka topic, keyed so all
// events for one owner land on the same partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// Publish wraps the event data in an envelope and writes it.
func (p *Producer) Publish(ctx context.Context, key, eventType string, data any) error {
	envelope, err := events.Wrap(eventType, data)
	if err != nil {
		return err
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  envelope.OccurredAt,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
