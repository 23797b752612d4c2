// Package events announces triples that were written to the graph.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"newsgraph/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher sends triple events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event *models.TripleEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TriplePublisher writes TripleEvents as JSON, keyed by subject so that all
// edges of one entity land on the same partition.
type TriplePublisher struct {
	writer messageWriter
}

// NewTriplePublisher wraps a kafka writer bound to the triple topic.
func NewTriplePublisher(w *kafka.Writer) *TriplePublisher {
	return &TriplePublisher{writer: w}
}

func (p *TriplePublisher) Publish(ctx context.Context, event *models.TripleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal triple event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Triple.Subject),
		Value: data,
	}); err != nil {
		return fmt.Errorf("failed to write triple event to kafka: %w", err)
	}
	return nil
}

func (p *TriplePublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *models.TripleEvent) error { return nil }
func (Nop) Close() error                                        { return nil }
