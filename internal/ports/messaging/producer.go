package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender       MessageSender
	syncQueueURL string
	mailQueueURL string
}

func NewProducer(sender MessageSender, syncQueueURL, mailQueueURL string) *Producer {
	return &Producer{
		sender:       sender,
		syncQueueURL: syncQueueURL,
		mailQueueURL: mailQueueURL,
	}
}

func NewSQSProducer(client SQSClient, syncQueueURL, mailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, syncQueueURL, mailQueueURL)
}

func (p *Producer) PublishSync(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.syncQueueURL, body)
}

func (p *Producer) PublishMail(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.mailQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with user_id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			UserID int64 `json:"userId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.UserID != 0 {
			span.SetAttributes(attribute.Int64("app.user_id", payload.UserID))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
