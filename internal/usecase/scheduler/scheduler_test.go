package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

type call struct {
	id        string
	extraText string
}

type mockPipeline struct {
	mu      sync.Mutex
	calls   []call
	embedFn func(ctx context.Context, id, extraText string) error
}

func (m *mockPipeline) EmbedCandidate(ctx context.Context, id, extraText string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call{id: id, extraText: extraText})
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, id, extraText)
	}
	return nil
}

func (m *mockPipeline) snapshot() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

type mockFetcher struct {
	fetchFn func(ctx context.Context, url string) string
}

func (m *mockFetcher) FetchResumeText(ctx context.Context, url string) string {
	return m.fetchFn(ctx, url)
}

func closeScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestScheduler_RunsQueuedTask(t *testing.T) {
	p := &mockPipeline{}
	s := New(p, nil, Options{Workers: 2, QueueSize: 4}, zap.NewNop())

	s.TryEmbedCandidate("c1", "resume text")
	closeScheduler(t, s)

	calls := p.snapshot()
	if len(calls) != 1 || calls[0] != (call{id: "c1", extraText: "resume text"}) {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestScheduler_EmptyIDIsNoop(t *testing.T) {
	p := &mockPipeline{}
	s := New(p, nil, Options{Workers: 1, QueueSize: 1}, nil)

	s.TryEmbedCandidate("", "text")
	s.TryEmbedResume("", "https://example.com/cv.pdf")
	closeScheduler(t, s)

	if len(p.snapshot()) != 0 {
		t.Fatal("empty id must not reach the pipeline")
	}
}

func TestScheduler_FailureOnlyLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := &mockPipeline{embedFn: func(context.Context, string, string) error {
		return domain.NewProviderError("openai", 500, "internal error")
	}}
	s := New(p, nil, Options{Workers: 1, QueueSize: 1}, zap.New(core))

	failed := metrics.PipelineRunsTotal.WithLabelValues("scheduler", resultError)
	before := testutil.ToFloat64(failed)

	s.TryEmbedCandidate("c42", "")
	closeScheduler(t, s)

	entries := logs.FilterMessage("Background embedding failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["candidate_id"] != "c42" {
		t.Errorf("expected candidate_id=c42, got %v", fields["candidate_id"])
	}
	if got := testutil.ToFloat64(failed) - before; got != 1 {
		t.Errorf("expected error counter +1, got %v", got)
	}
}

func TestScheduler_PanicIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	p := &mockPipeline{embedFn: func(_ context.Context, id, _ string) error {
		if id == "bad" {
			panic("boom")
		}
		return nil
	}}
	s := New(p, nil, Options{Workers: 1, QueueSize: 4}, zap.New(core))

	s.TryEmbedCandidate("bad", "")
	s.TryEmbedCandidate("good", "")
	closeScheduler(t, s)

	if len(p.snapshot()) != 2 {
		t.Fatalf("expected worker to survive the panic, calls=%+v", p.snapshot())
	}
	if logs.FilterMessage("Background embedding failed").Len() != 1 {
		t.Error("expected the panic to be logged as a failure")
	}
}

func TestScheduler_FullQueueDrops(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	started := make(chan struct{})
	release := make(chan struct{})
	p := &mockPipeline{embedFn: func(_ context.Context, id, _ string) error {
		if id == "first" {
			close(started)
			<-release
		}
		return nil
	}}
	s := New(p, nil, Options{Workers: 1, QueueSize: 1}, zap.New(core))

	s.TryEmbedCandidate("first", "")
	<-started
	s.TryEmbedCandidate("queued", "")
	s.TryEmbedCandidate("dropped", "")
	close(release)
	closeScheduler(t, s)

	calls := p.snapshot()
	if len(calls) != 2 || calls[1].id != "queued" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	dropped := logs.FilterMessage("Embedding queue full, task dropped").All()
	if len(dropped) != 1 || dropped[0].ContextMap()["candidate_id"] != "dropped" {
		t.Errorf("expected one drop warning for 'dropped', got %+v", dropped)
	}
}

func TestScheduler_ResumeTaskFetchesText(t *testing.T) {
	p := &mockPipeline{}
	f := &mockFetcher{fetchFn: func(_ context.Context, url string) string {
		if url != "https://example.com/cv.pdf" {
			t.Errorf("unexpected url %q", url)
		}
		return "extracted resume"
	}}
	s := New(p, f, Options{Workers: 1, QueueSize: 1}, nil)

	s.TryEmbedResume("c1", "https://example.com/cv.pdf")
	closeScheduler(t, s)

	calls := p.snapshot()
	if len(calls) != 1 || calls[0].extraText != "extracted resume" {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestScheduler_TaskTimeout(t *testing.T) {
	p := &mockPipeline{embedFn: func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(p, nil, Options{Workers: 1, QueueSize: 1, TaskTimeout: 10 * time.Millisecond}, zap.New(core))

	s.TryEmbedCandidate("slow", "")
	closeScheduler(t, s)

	entries := logs.FilterMessage("Background embedding failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected timeout to be logged, got %d entries", len(entries))
	}
	if err, ok := entries[0].ContextMap()["error"].(string); !ok || err == "" {
		t.Errorf("expected error field, got %v", entries[0].ContextMap())
	}
}

func TestScheduler_SubmitAfterClose(t *testing.T) {
	p := &mockPipeline{}
	s := New(p, nil, Options{Workers: 1, QueueSize: 1}, nil)
	closeScheduler(t, s)

	s.TryEmbedCandidate("late", "")
	if len(p.snapshot()) != 0 {
		t.Fatal("closed scheduler must not run tasks")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestScheduler_CloseDeadline(t *testing.T) {
	p := &mockPipeline{embedFn: func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	s := New(p, nil, Options{Workers: 1, QueueSize: 1}, nil)
	s.TryEmbedCandidate("stuck", "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
