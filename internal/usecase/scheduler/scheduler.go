// Package scheduler runs candidate re-embedding in the background.
// Callers never wait for the pipeline and never see its errors: failures
// are logged and counted.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/logger"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

const (
	resultOK      = "ok"
	resultError   = "error"
	resultDropped = "dropped"
)

// Options configures the worker pool.
type Options struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

type task struct {
	id        string
	extraText string
	resumeURL string // fetched inside the worker when set
}

// Scheduler is a bounded worker pool for best-effort embedding.
type Scheduler struct {
	pipeline candidateEmbedder
	fetcher  resumeFetcher
	timeout  time.Duration
	logger   *zap.Logger

	tasks  chan task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts opts.Workers workers. fetcher may be nil when résumé tasks are not used.
func New(pipeline candidateEmbedder, fetcher resumeFetcher, opts Options, log *zap.Logger) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		pipeline: pipeline,
		fetcher:  fetcher,
		timeout:  opts.TaskTimeout,
		logger:   log,
		tasks:    make(chan task, opts.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.worker()
		}()
	}
	return s
}

// TryEmbedCandidate queues a re-embed of id. Blank extraText keeps the
// stored search text. An empty id is a no-op.
func (s *Scheduler) TryEmbedCandidate(id, extraText string) {
	s.submit(task{id: id, extraText: extraText})
}

// TryEmbedResume queues a fetch of url followed by a re-embed of id with
// the extracted text.
func (s *Scheduler) TryEmbedResume(id, url string) {
	s.submit(task{id: id, resumeURL: url})
}

func (s *Scheduler) submit(t task) {
	if t.id == "" {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.logger.Warn("Scheduler closed, embedding task dropped", zap.String("candidate_id", t.id))
		metrics.PipelineRunsTotal.WithLabelValues("scheduler", resultDropped).Inc()
		return
	}

	select {
	case s.tasks <- t:
		metrics.SchedulerQueueDepth.Set(float64(len(s.tasks)))
	default:
		s.logger.Warn("Embedding queue full, task dropped",
			zap.String("candidate_id", t.id),
			zap.Int("queue_size", cap(s.tasks)),
		)
		metrics.PipelineRunsTotal.WithLabelValues("scheduler", resultDropped).Inc()
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
// When ctx expires first, in-flight tasks are cancelled and ctx.Err is returned.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.tasks)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return fmt.Errorf("scheduler drain: %w", ctx.Err())
	}
}

func (s *Scheduler) worker() {
	for t := range s.tasks {
		metrics.SchedulerQueueDepth.Set(float64(len(s.tasks)))
		s.run(t)
	}
}

// run executes one task. Errors and panics end here.
func (s *Scheduler) run(t task) {
	log := s.logger.With(zap.String("candidate_id", t.id))

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx = logger.ContextWithLogger(ctx, log)

	start := time.Now()
	err := s.safeRun(ctx, t)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("scheduler", resultError).Inc()
		log.Error("Background embedding failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	metrics.PipelineRunsTotal.WithLabelValues("scheduler", resultOK).Inc()
	log.Debug("Background embedding completed", zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) safeRun(ctx context.Context, t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	extra := t.extraText
	if t.resumeURL != "" && s.fetcher != nil {
		extra = s.fetcher.FetchResumeText(ctx, t.resumeURL)
	}
	return s.pipeline.EmbedCandidate(ctx, t.id, extra) //nolint:wrapcheck // logged, never returned to callers
}
