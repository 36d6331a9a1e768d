package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRelatorio = "jobs:relatorio"
	QueueEmail     = "jobs:email"

	maxAttempts = 3
	localBuffer = 64
	popTimeout  = 5 * time.Second
)

// redisRetryDelay paces the workers while redis is unreachable.
var redisRetryDelay = time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry
// until maxAttempts, then the job goes to the dead letter queue.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs and runs the workers that consume them.
// With a redis client the queues are Redis lists (BRPOP) and survive a
// restart; without one they are an in-process buffered channel.
type Dispatcher struct {
	rdb   *redis.Client
	local chan Job

	mu       sync.RWMutex
	handlers map[string]Handler
	queues   map[string]string
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	d := &Dispatcher{
		rdb:      rdb,
		handlers: make(map[string]Handler),
		queues:   make(map[string]string),
	}
	if rdb == nil {
		d.local = make(chan Job, localBuffer)
	}
	return d
}

// Register binds a job type to its queue and handler. Call before Start.
func (d *Dispatcher) Register(jobType, queue string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[jobType] = h
	d.queues[jobType] = queue
}

// Enqueue pushes a job. The local queue never blocks: a full buffer drops
// the job with an error.
func (d *Dispatcher) Enqueue(ctx context.Context, jobType string, payload any) error {
	d.mu.RLock()
	queue, ok := d.queues[jobType]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("worker: job type %q not registered", jobType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.push(ctx, Job{Type: jobType, Queue: queue, Payload: data})
}

func (d *Dispatcher) push(ctx context.Context, job Job) error {
	if d.rdb == nil {
		select {
		case d.local <- job:
			return nil
		default:
			return errors.New("worker: local queue full")
		}
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, job.Queue, encoded).Err()
}

// Start launches numWorkers goroutines consuming every registered queue.
// Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go d.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Bool("redis", d.rdb != nil).Msg("worker pool started")
}

func (d *Dispatcher) run(ctx context.Context, id int) {
	for {
		job, ok := d.next(ctx)
		if ctx.Err() != nil {
			log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}
		if ok {
			d.process(ctx, job)
		}
	}
}

func (d *Dispatcher) next(ctx context.Context) (Job, bool) {
	if d.rdb == nil {
		select {
		case <-ctx.Done():
			return Job{}, false
		case job := <-d.local:
			return job, true
		}
	}

	d.mu.RLock()
	seen := map[string]bool{}
	var queues []string
	for _, q := range d.queues {
		if !seen[q] {
			seen[q] = true
			queues = append(queues, q)
		}
	}
	d.mu.RUnlock()

	// Blocking pop: waits up to popTimeout then loops to check ctx
	result, err := d.rdb.BRPop(ctx, popTimeout, queues...).Result()
	if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() == nil {
		log.Warn().Err(err).Msg("worker: redis pop failed")
		select {
		case <-ctx.Done():
		case <-time.After(redisRetryDelay):
		}
		return Job{}, false
	}
	if err != nil || len(result) < 2 {
		return Job{}, false
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		log.Error().Err(err).Str("queue", result[0]).Msg("failed to unmarshal job")
		return Job{}, false
	}
	return job, true
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	d.mu.RLock()
	h, ok := d.handlers[job.Type]
	d.mu.RUnlock()
	if !ok {
		log.Error().Str("type", job.Type).Msg("no handler for job type")
		return
	}

	job.Attempts++
	err := h(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, d.rdb, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, retrying")
	if perr := d.push(ctx, job); perr != nil {
		SendToDLQ(ctx, d.rdb, job, perr.Error())
	}
}
