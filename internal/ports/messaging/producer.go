package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueueProducer publishes settlement and notification events through a
// MessageSender.
type QueueProducer struct {
	sender               MessageSender
	settlementQueueURL   string
	notificationQueueURL string
}

func NewProducer(sender MessageSender, settlementQueueURL, notificationQueueURL string) *QueueProducer {
	return &QueueProducer{
		sender:               sender,
		settlementQueueURL:   settlementQueueURL,
		notificationQueueURL: notificationQueueURL,
	}
}

func NewSQSProducer(client SQSClient, settlementQueueURL, notificationQueueURL string) *QueueProducer {
	return NewProducer(&SQSSender{client: client}, settlementQueueURL, notificationQueueURL)
}

func (p *QueueProducer) PublishSettlement(ctx context.Context, event SettlementEvent) error {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("app.shift_id", event.ShiftID))
	}
	return p.publish(ctx, p.settlementQueueURL, event)
}

func (p *QueueProducer) PublishNotification(ctx context.Context, event NotificationEvent) error {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("app.recipient_id", event.RecipientID))
	}
	return p.publish(ctx, p.notificationQueueURL, event)
}

func (p *QueueProducer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
