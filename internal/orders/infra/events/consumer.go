// Package events wires the payment gateway's confirmation events into the
// order core. Confirmations arrive on a Kafka topic with at-least-once
// delivery; duplicates are expected and absorbed by the coordinator's
// conditional payment application.
package events

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one consumed message. A returned error is logged;
// the message is not redelivered by us.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads messages from a single topic within a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume reads messages until ctx is cancelled, passing each one to the
// handler.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "failed to read message", "error", err)
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			slog.ErrorContext(ctx, "failed to handle message",
				"topic", c.reader.Config().Topic,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
