// Package settlement reconciles half-finished settlements: payments
// that were released while the owning shift's completion write failed.
// Replaying the queued event is safe because every step is a
// conditional write against current store state.
package settlement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/ports/repository"
	"shiftpay.service/internal/worker"
)

type Processor struct {
	repo repository.Repository
}

// NewProcessor sets up the reconciliation processor for the
// settlement queue.
func NewProcessor(repo repository.Repository) *Processor {
	return &Processor{repo: repo}
}

// Process finishes the shift-completion half of a settlement. It
// skips work that a retry or a concurrent caller already did.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.SettlementEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal settlement event")
		return false, 0, err // Do not retry on malformed message
	}

	payment, err := p.repo.GetPaymentByShift(ctx, event.ShiftID)
	if err != nil {
		return true, worker.Backoff(worker.ReceiveCount(msg)), fmt.Errorf("failed to load payment for reconciliation: %w", err)
	}

	if payment.Status == model.PaymentHeld {
		// The release never landed; nothing to reconcile here. The
		// employer's retry of settle owns this case.
		log.Ctx(ctx).Warn().Str("shift_id", event.ShiftID).Msg("Reconciliation event for a still-held payment. Skipping.")
		return false, 0, nil
	}

	if _, err := p.repo.CompleteShift(ctx, event.ShiftID); err != nil {
		return true, worker.Backoff(worker.ReceiveCount(msg)), fmt.Errorf("failed to complete shift %s: %w", event.ShiftID, err)
	}

	if payment.Status == model.PaymentReleasedPendingShift {
		if _, err := p.repo.PromotePayment(ctx, event.ShiftID, model.PaymentReleasedPendingShift, model.PaymentReleased); err != nil {
			return true, worker.Backoff(worker.ReceiveCount(msg)), fmt.Errorf("failed to promote payment for shift %s: %w", event.ShiftID, err)
		}
	}

	log.Ctx(ctx).Info().
		Str("shift_id", event.ShiftID).
		Str("timesheet_id", event.TimesheetID).
		Msg("Settlement reconciled")

	return false, 0, nil
}
