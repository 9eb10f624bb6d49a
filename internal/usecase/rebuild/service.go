// Package rebuild recomputes embeddings across the whole candidate pool.
package rebuild

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dombatch "github.com/kailas-cloud/talentdex/internal/domain/batch"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/logger"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// DefaultConcurrency is the number of candidates processed in parallel.
const DefaultConcurrency = 4

// Service runs the batch rebuild with per-candidate failure isolation.
type Service struct {
	repo        CandidateLister
	pipeline    CandidateEmbedder
	fetcher     ResumeFetcher
	concurrency int
	logger      *zap.Logger
}

// New creates a rebuild service. fetcher may be nil: résumé URLs are then ignored
// and the stored search text is reused.
func New(repo CandidateLister, pipeline CandidateEmbedder, fetcher ResumeFetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		pipeline:    pipeline,
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// WithConcurrency configures how many candidates are processed at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// RebuildAll re-embeds every candidate. Only a failure to list the pool is
// returned as an error; per-candidate failures are counted in the outcome.
func (s *Service) RebuildAll(ctx context.Context) (dombatch.Outcome, error) {
	pool, err := s.repo.List(ctx)
	if err != nil {
		return dombatch.Outcome{}, fmt.Errorf("list candidates: %w", err)
	}

	start := time.Now()
	results := make([]dombatch.Result, len(pool))
	var success, fail atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, c := range pool {
		g.Go(func() error {
			results[i] = s.rebuildOne(gctx, c)
			if results[i].Status() == dombatch.StatusOK {
				success.Add(1)
			} else {
				fail.Add(1)
			}
			return nil // never cancel siblings
		})
	}
	_ = g.Wait()

	out := dombatch.Summarize(results)
	metrics.RebuildLastOutcome.WithLabelValues("success").Set(float64(out.Success))
	metrics.RebuildLastOutcome.WithLabelValues("fail").Set(float64(out.Fail))
	metrics.RebuildLastOutcome.WithLabelValues("total").Set(float64(out.Total))

	s.logger.Info("Rebuild finished",
		zap.Int64("success", success.Load()),
		zap.Int64("fail", fail.Load()),
		zap.Int("total", out.Total),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// rebuildOne is the per-candidate error boundary.
func (s *Service) rebuildOne(ctx context.Context, c *candidate.Candidate) (res dombatch.Result) {
	var id string
	if c != nil {
		id = c.ID
	}
	log := s.logger.With(zap.String("candidate_id", id))

	defer func() {
		if r := recover(); r != nil {
			res = dombatch.NewError(id, fmt.Errorf("panic: %v", r))
		}
		if err := res.Err(); err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("rebuild", "error").Inc()
			log.Warn("Candidate rebuild failed", zap.Error(err))
			return
		}
		metrics.PipelineRunsTotal.WithLabelValues("rebuild", "ok").Inc()
	}()

	ctx = logger.ContextWithLogger(ctx, log)

	var extra string
	if c.HasResume() && s.fetcher != nil {
		extra = s.fetcher.FetchResumeText(ctx, c.ResumeURL)
	}

	if err := s.pipeline.EmbedCandidate(ctx, c.ID, extra); err != nil {
		return dombatch.NewError(c.ID, fmt.Errorf("embed: %w", err))
	}
	return dombatch.NewOK(c.ID)
}
