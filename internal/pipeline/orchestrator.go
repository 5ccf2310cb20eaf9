package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/jobparse/internal/assemble"
	"github.com/dgallion1/jobparse/internal/cache"
	"github.com/dgallion1/jobparse/internal/config"
	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/pathstore"
	"github.com/dgallion1/jobparse/internal/validate"
)

// Orchestrator manages the posting ingestion pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	parser    *assemble.Parser
	ps        *pathstore.Client
	validator validate.Validator
	cache     *cache.Cache
	stats     *validate.Stats
	log       *slog.Logger
	cfg       config.Config

	// validateSem bounds validator calls across all workers.
	validateSem chan struct{}
	backoff     func(attempt int) time.Duration

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithValidator enables secondary field validation.
func WithValidator(v validate.Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithCache routes ParseText through a parse cache.
func WithCache(c *cache.Cache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithBackoff replaces the retry delay schedule.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(o *Orchestrator) { o.backoff = fn }
}

func NewOrchestrator(cfg config.Config, parser *assemble.Parser, ps *pathstore.Client, log *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		jobs:        NewJobStore(cfg.JobTTL),
		queue:       make(chan *Job, cfg.MaxQueueSize),
		parser:      parser,
		ps:          ps,
		stats:       validate.NewStats(time.Hour),
		log:         log,
		cfg:         cfg,
		validateSem: make(chan struct{}, max(cfg.MaxConcurrentValidate, 1)),
		backoff:     Backoff,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := range max(o.cfg.WorkerCount, 1) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := &Worker{o: o, log: o.log.With("worker", i)}
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Info("evicted expired jobs", "count", n)
				}
				if o.cache != nil {
					if n, err := o.cache.Purge(workerCtx); err != nil {
						o.log.Warn("cache purge failed", "error", err)
					} else if n > 0 {
						o.log.Info("purged cache entries", "count", n)
					}
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Queued jobs that no worker has
// picked up are abandoned.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.stopped = true
		close(o.queue)
		o.mu.Unlock()
		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
	})
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return fmt.Errorf("pipeline is shutting down")
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// ParseText runs the synchronous parse path, consulting the cache first.
// The bool reports a cache hit. Cache failures are logged, never returned.
func (o *Orchestrator) ParseText(ctx context.Context, text, source string) (*doctree.Document, bool) {
	if o.cache != nil {
		doc, ok, err := o.cache.Get(ctx, source, text)
		if err != nil {
			o.log.Warn("cache lookup failed", "error", err)
		} else if ok {
			return doc, true
		}
	}

	doc := o.parser.Parse(text, source)

	if o.cache != nil {
		if err := o.cache.Put(ctx, source, text, doc); err != nil {
			o.log.Warn("cache store failed", "doc_id", doc.DocumentID, "error", err)
		}
	}
	return doc, false
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// PathstoreClient returns the pathstore client for direct use by API handlers.
func (o *Orchestrator) PathstoreClient() *pathstore.Client {
	return o.ps
}

// ValidatorStats returns the rolling validator call statistics.
func (o *Orchestrator) ValidatorStats() validate.StatsSnapshot {
	return o.stats.Snapshot()
}

// ValidatorEnabled reports whether a validator is configured.
func (o *Orchestrator) ValidatorEnabled() bool {
	return o.validator != nil
}
