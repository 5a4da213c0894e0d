package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shiftpay.service/internal/ports/messaging"
)

// Notifier delivers one settlement notification to a recipient.
// Delivery is best effort; callers never fail on a Notifier error.
type Notifier interface {
	Send(ctx context.Context, event messaging.NotificationEvent) error
}

// SESNotifier delivers notifications as email through AWS SES.
type SESNotifier struct {
	client *ses.Client
	sender string
	domain string
}

func NewSESNotifier(client *ses.Client, sender, recipientDomain string) *SESNotifier {
	return &SESNotifier{client: client, sender: sender, domain: recipientDomain}
}

func (n *SESNotifier) Send(ctx context.Context, event messaging.NotificationEvent) error {
	tracer := otel.Tracer("ses-notifier")
	ctx, span := tracer.Start(ctx, "send_notification", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("app.recipient_id", event.RecipientID),
		attribute.String("app.category", event.Category),
	)

	body := event.Body
	if event.Link != "" {
		body = fmt.Sprintf("%s\n\nDetails: %s", event.Body, event.Link)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{event.RecipientID + "@" + n.domain},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(event.Title),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := n.client.SendEmail(ctx, input)
	return err
}

// SendBatch delivers a list of notifications and reports how many
// succeeded and failed. A single failure never aborts the batch.
func SendBatch(ctx context.Context, n Notifier, events []messaging.NotificationEvent) (sent, failed int) {
	for _, ev := range events {
		if err := n.Send(ctx, ev); err != nil {
			failed++
			log.Ctx(ctx).Warn().Err(err).
				Str("recipient_id", ev.RecipientID).
				Msg("Notification delivery failed")
			continue
		}
		sent++
	}
	return sent, failed
}
