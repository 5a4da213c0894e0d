// Package notify delivers the settlement notifications that the
// engine appended to the outbox queue. Delivery is decoupled from
// settlement correctness entirely: a failure here retries the message,
// never the settlement.
package notify

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"shiftpay.service/internal/core"
	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/worker"
)

type Processor struct {
	notifier core.Notifier
}

// NewProcessor sets up a new processor for the notification queue.
func NewProcessor(notifier core.Notifier) *Processor {
	return &Processor{notifier: notifier}
}

// Process delivers one queued notification, retrying with backoff on
// delivery failure.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.NotificationEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal notification event")
		return false, 0, err // Do not retry on malformed message
	}

	if err := p.notifier.Send(ctx, event); err != nil {
		return true, worker.Backoff(worker.ReceiveCount(msg)), err
	}

	log.Ctx(ctx).Info().
		Str("recipient_id", event.RecipientID).
		Str("category", event.Category).
		Msg("Notification delivered")

	return false, 0, nil
}
