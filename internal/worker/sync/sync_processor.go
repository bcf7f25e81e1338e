package sync

import (
	"context"
	"encoding/json"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"remotework.service/internal/ports/messaging"
	"remotework.service/internal/worker"
)

// Resyncer is the slice of the application service the sync worker needs.
type Resyncer interface {
	ResyncYear(ctx context.Context, userID int64, year int) (int, error)
}

// SyncProcessor handles jobs from the calendar sync queue: each message
// asks for all approved entries of one user and year to be re-pushed to
// the CalDAV server. The push itself is failure-tolerant, so the only
// retryable error here is not being able to load the entries.
type SyncProcessor struct {
	service Resyncer
}

// NewProcessor creates a new processor for the calendar sync queue.
func NewProcessor(service Resyncer) *SyncProcessor {
	return &SyncProcessor{service: service}
}

// Process handles a single calendar sync message.
func (p *SyncProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.CalendarSyncEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal calendar sync event")
		return false, 0, err // Do not retry on malformed message
	}

	synced, err := p.service.ResyncYear(ctx, event.UserID, event.Year)
	if err != nil {
		delay := calculateBackoff(worker.ReceiveCount(msg))
		return true, delay, err
	}

	log.Ctx(ctx).Info().
		Int64("user_id", event.UserID).
		Int("year", event.Year).
		Int("synced", synced).
		Msg("Calendar resync finished")

	return false, 0, nil
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
