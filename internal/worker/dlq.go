package worker

// Jobs that keep failing are moved to a Redis list per source queue,
// dlq:{original_queue}, for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/JonathanM-A/costmate/internal/metrics"
)

const (
	DLQPrefix = "dlq:"

	dlqPollInterval = 30 * time.Second
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue. Without a client
// the entry is only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if rdb == nil {
		log.Error().Str("dlq_key", dlqKey).RawJSON("entry", data).Msg("dlq: no redis client, entry dropped")
		return
	}
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// StartDLQMonitor publishes the depth of every dead letter queue as a gauge
// until ctx is cancelled.
func StartDLQMonitor(ctx context.Context, rdb *redis.Client, queues ...string) {
	go func() {
		ticker := time.NewTicker(dlqPollInterval)
		defer ticker.Stop()

		log.Info().Strs("queues", queues).Msg("dlq_monitor: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_monitor: shutting down")
				return
			case <-ticker.C:
				for _, q := range queues {
					n, err := DLQLength(ctx, rdb, q)
					if err != nil {
						log.Warn().Err(err).Str("queue", q).Msg("dlq_monitor: failed to read length")
						continue
					}
					metrics.DLQDepth.WithLabelValues(q).Set(float64(n))
				}
			}
		}
	}()
}
