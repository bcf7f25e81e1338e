package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EmailService interface {
	SendApprovalMail(ctx context.Context, to string, displayName string, action string, dates []string) error
}

type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendApprovalMail(ctx context.Context, to string, displayName string, action string, dates []string) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("app.mail_action", action))

	subject, body := composeApprovalMail(displayName, action, dates)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

func composeApprovalMail(displayName string, action string, dates []string) (string, string) {
	days := strings.Join(dates, ", ")

	switch action {
	case "requested":
		return "Remote work approval requested",
			fmt.Sprintf("Hello,\n\n%s requested remote work for: %s.\nPlease review the pending entries.", displayName, days)
	case "approved":
		return "Remote work approved",
			fmt.Sprintf("Hello %s,\n\nYour remote work entries for %s have been approved.", displayName, days)
	case "rejected":
		return "Remote work rejected",
			fmt.Sprintf("Hello %s,\n\nYour remote work entries for %s have been rejected.", displayName, days)
	default:
		return "Remote work update",
			fmt.Sprintf("Hello %s,\n\nYour remote work entries for %s were updated.", displayName, days)
	}
}
