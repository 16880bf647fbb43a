// Package forward republishes ingested request logs to Kafka so downstream
// consumers can keep their own copy of the volatile in-memory store.
package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"qa-metrics/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// Completion receives the outcome of every async write.
	Completion func(messages []kafkago.Message, err error)
}

type KafkaForwarder struct {
	writer messageWriter
}

func NewKafkaForwarder(cfg KafkaConfig) *KafkaForwarder {
	return &KafkaForwarder{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: cfg.BatchTimeout,
			RequiredAcks: kafkago.RequireOne,
			Async:        true,
			Completion:   cfg.Completion,
		},
	}
}

// Forward publishes each log as one JSON message keyed by server region.
func (f *KafkaForwarder) Forward(ctx context.Context, logs []domain.RequestLog) error {
	if len(logs) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(logs))
	now := time.Now().UTC()
	for _, l := range logs {
		payload, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshal request log: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(l.Region.KeyOr("unknown")),
			Value: payload,
			Time:  now,
		})
	}

	if err := f.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish request logs: %w", err)
	}
	return nil
}

// Close flushes pending async writes.
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
