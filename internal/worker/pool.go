package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/JonathanM-A/costmate/internal/metrics"
)

const (
	QueueReorderCheck = "jobs:reorder_check"

	JobReorderCheck = "reorder_check"

	// MaxJobAttempts bounds in-process retries before a job goes to the DLQ.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes the payload of one job type.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Handlers maps a job type to its handler.
type Handlers map[string]Handler

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReorderCheck schedules a low-stock check over the ingredients of a
// just-completed order.
func (d *Dispatcher) EnqueueReorderCheck(ctx context.Context, owner, orderID uuid.UUID) error {
	return d.enqueue(ctx, QueueReorderCheck, JobReorderCheck, ReorderCheckPayload{
		OwnerID: owner.String(),
		OrderID: orderID.String(),
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers Handlers, id int) {
	queues := []string{QueueReorderCheck}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// processJob runs the handler for one raw envelope, retrying transient
// failures. Jobs that still fail are moved to the dead letter queue.
func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		metrics.JobsProcessed.WithLabelValues("unknown", "invalid").Inc()
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), err.Error(), 0)
		return
	}

	h, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		metrics.JobsProcessed.WithLabelValues(job.Type, "unhandled").Inc()
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no handler registered", 0)
		return
	}

	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		return h.Process(ctx, job.Payload)
	})
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(job.Type, "failed").Inc()
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, fmt.Sprintf("after %d attempts: %v", attempts, err), attempts)
		return
	}
	metrics.JobsProcessed.WithLabelValues(job.Type, "ok").Inc()
	log.Debug().Str("type", job.Type).Int("attempts", attempts).Msg("job processed")
}
