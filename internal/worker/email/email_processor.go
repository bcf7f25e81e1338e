package email

import (
	"context"
	"encoding/json"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"remotework.service/internal/core"
	"remotework.service/internal/ports/messaging"
	"remotework.service/internal/worker"
)

type EmailProcessor struct {
	emailService core.EmailService
}

// NewProcessor sets up a new processor for approval notification mails.
func NewProcessor(emailService core.EmailService) *EmailProcessor {
	return &EmailProcessor{emailService: emailService}
}

// Process is the main entry point for handling a message from the mail queue.
// It tries to send a notification and will tell the worker to retry if
// something goes wrong.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.ApprovalMailEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal approval mail event")
		return false, 0, err // Do not retry on malformed message
	}

	err := p.emailService.SendApprovalMail(ctx, event.Email, event.DisplayName, event.Action, event.Dates)
	if err != nil {
		delay := calculateBackoff(worker.ReceiveCount(msg))
		return true, delay, err
	}

	log.Ctx(ctx).Info().
		Int64("user_id", event.UserID).
		Str("action", event.Action).
		Msg("Approval mail sent")

	return false, 0, nil
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry to avoid overwhelming
// a struggling mail service.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 { // Cap at 1 hour
		return 3600
	}
	return backoff
}
