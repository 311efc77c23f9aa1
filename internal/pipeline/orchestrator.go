package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
)

var (
	ErrQueueFull    = errors.New("analysis queue is full")
	ErrShuttingDown = errors.New("analysis queue is shutting down")
)

// Orchestrator runs queued analysis jobs on cfg.WorkerCount workers and
// expires finished jobs after cfg.JobTTL.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	processor *Processor
	log       *slog.Logger
	cfg       config.Config

	mu      sync.Mutex // guards stopped and sends on queue
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, processor *Processor, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		processor: processor,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches the workers and the job store sweeper.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	for i := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.work(ctx, NewWorker(o.processor, o.log.With("worker", i)))
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(sweepInterval(o.cfg.JobTTL))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) work(ctx context.Context, w *Worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

// Stop cancels running jobs, waits for the workers and fails every job
// still queued. Submit returns ErrShuttingDown afterwards.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	for job := range o.queue {
		job.AddError(ErrShuttingDown.Error())
		job.SetStatus(StatusFailed, "shutdown")
	}
}

// Submit stores job and queues it. A job that cannot be queued is kept in
// the store as failed so its status stays pollable.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "shutdown")
		return ErrShuttingDown
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d jobs)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Processor returns the processor for synchronous use by API handlers.
func (o *Orchestrator) Processor() *Processor {
	return o.processor
}

// sweepInterval is half the job TTL, clamped to [1s, 5m].
func sweepInterval(ttl time.Duration) time.Duration {
	d := ttl / 2
	switch {
	case d < time.Second:
		return time.Second
	case d > 5*time.Minute:
		return 5 * time.Minute
	}
	return d
}
