package messaging

import "time"

// Notification categories delivered through the outbox.
const (
	CategoryPaymentReleased = "payment_released"
	CategoryWorkerPaid      = "worker_paid"
)

// SettlementEvent is the JSON payload sent to the settlement queue
// when a settlement finished releasing the payment but could not
// complete the owning shift. The reconciliation worker replays it
// until the shift is completed.
type SettlementEvent struct {
	ShiftID     string    `json:"shiftId"`
	TimesheetID string    `json:"timesheetId"`
	WorkerID    string    `json:"workerId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NotificationEvent is the JSON payload sent to the notification
// queue. Settlement appends these instead of delivering directly, so
// delivery failures can never affect settlement correctness.
type NotificationEvent struct {
	RecipientID string    `json:"recipientId"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
