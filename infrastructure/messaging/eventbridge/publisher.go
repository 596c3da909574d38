package eventbridge

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	domainevents "inklings-backend/domain/events"
	pkgerrors "inklings-backend/pkg/errors"
)

// maxBatchSize is the EventBridge PutEvents entry cap
const maxBatchSize = 10

// Publisher sends domain events to an EventBridge bus
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates an EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single domain event
func (p *Publisher) Publish(ctx context.Context, event domainevents.DomainEvent) error {
	return p.PublishBatch(ctx, []domainevents.DomainEvent{event})
}

// PublishBatch sends events in PutEvents batches of up to ten entries
func (p *Publisher) PublishBatch(ctx context.Context, events []domainevents.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	for start := 0; start < len(events); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.putEvents(ctx, events[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) putEvents(ctx context.Context, events []domainevents.DomainEvent) error {
	entries := make([]ebtypes.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal event detail")
		}
		entries = append(entries, ebtypes.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(domainevents.SourceBackend),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			p.logger.Error("event bus rejected the batch",
				zap.String("error_code", apiErr.ErrorCode()),
				zap.Int("entries", len(entries)),
			)
		}
		return pkgerrors.NewExternalError("eventbridge", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Warn("event entry failed",
					zap.String("error_code", aws.ToString(entry.ErrorCode)),
					zap.String("error_message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return pkgerrors.NewExternalError("eventbridge",
			pkgerrors.NewInternalError("some event entries were rejected"))
	}

	p.logger.Debug("published events", zap.Int("count", len(entries)))
	return nil
}
