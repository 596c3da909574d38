package messaging

import (
	"context"

	"go.uber.org/zap"

	domainevents "inklings-backend/domain/events"
)

// LogPublisher writes domain events to the log instead of a bus.
// Used when no event bus is configured, typically in local development.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs a single event
func (p *LogPublisher) Publish(_ context.Context, event domainevents.DomainEvent) error {
	p.logger.Info("domain event",
		zap.String("event_type", event.GetEventType()),
		zap.String("aggregate_id", event.GetAggregateID()),
	)
	return nil
}

// PublishBatch logs each event in the batch
func (p *LogPublisher) PublishBatch(ctx context.Context, events []domainevents.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
