package worker

// dlq.go — Dead Letter Queue
// Jobs that exceed maxAttempts are moved here for manual inspection.
// With Redis: a list per source queue, dlq:{original_queue}. Without Redis
// the entry is only logged.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

func SendToDLQ(ctx context.Context, rdb *redis.Client, job Job, reason string) {
	logger := log.Warn().
		Str("queue", job.Queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts)

	if rdb == nil {
		logger.RawJSON("payload", job.Payload).Msg("dlq: job discarded")
		return
	}

	entry := DLQEntry{
		OriginalQueue: job.Queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", job.Queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + job.Queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}
	logger.Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
