package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"dreaming-of-a-jet-plane/scanner/internal/config"
	"dreaming-of-a-jet-plane/scanner/internal/logging"
)

// kafkaBackend publishes events to a Kafka topic, keyed by event name so
// consumers can partition by event type.
type kafkaBackend struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a buffered sink publishing to cfg.KafkaTopic.
func NewKafkaSink(cfg *config.Config) Sink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBroker),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newBufferedSink(&kafkaBackend{writer: writer})
}

func (b *kafkaBackend) deliver(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Name),
		Value: body,
	})
	if err != nil {
		logging.Debug("Kafka delivery failed", "event", event.Name, "error", err.Error())
	}
}

func (b *kafkaBackend) close() error {
	return b.writer.Close()
}
