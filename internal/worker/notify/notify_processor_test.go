package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/worker/notify"
)

type stubNotifier struct {
	sent []messaging.NotificationEvent
	err  error
}

func (n *stubNotifier) Send(ctx context.Context, event messaging.NotificationEvent) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, event)
	return nil
}

func notificationMessage(t *testing.T) types.Message {
	t.Helper()
	body, err := json.Marshal(messaging.NotificationEvent{
		RecipientID: "wrk-1",
		Category:    messaging.CategoryWorkerPaid,
		Title:       "You got paid",
		Body:        "Your payout for Warehouse pick shift was released.",
	})
	require.NoError(t, err)
	return types.Message{Body: aws.String(string(body))}
}

func TestProcess_DeliversNotification(t *testing.T) {
	notifier := &stubNotifier{}
	proc := notify.NewProcessor(notifier)

	retry, delay, err := proc.Process(t.Context(), notificationMessage(t))
	require.NoError(t, err)
	assert.False(t, retry)
	assert.Zero(t, delay)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "wrk-1", notifier.sent[0].RecipientID)
	assert.Equal(t, messaging.CategoryWorkerPaid, notifier.sent[0].Category)
}

func TestProcess_DeliveryFailureRetries(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("ses throttled")}
	proc := notify.NewProcessor(notifier)

	retry, delay, err := proc.Process(t.Context(), notificationMessage(t))
	require.Error(t, err)
	assert.True(t, retry)
	assert.Positive(t, delay)
}

func TestProcess_MalformedBodyIsNotRetried(t *testing.T) {
	proc := notify.NewProcessor(&stubNotifier{})

	retry, _, err := proc.Process(t.Context(), types.Message{Body: aws.String("{broken")})
	require.Error(t, err)
	assert.False(t, retry)
}
