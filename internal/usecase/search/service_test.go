package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

// --- Mocks ---

type mockRepo struct {
	pool   []*candidate.Candidate
	err    error
	listed bool
}

func (m *mockRepo) List(context.Context) ([]*candidate.Candidate, error) {
	m.listed = true
	return m.pool, m.err
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, m.err
}

// unit returns a 2-d vector whose cosine with [1, 0] is score.
func unit(score float64) vector.Raw {
	return vector.FromVector([]float32{float32(score), float32(math.Sqrt(1 - score*score))})
}

func cand(id, title string, emb vector.Raw) *candidate.Candidate {
	return &candidate.Candidate{ID: id, Title: title, Embedding: emb}
}

func noFilters() filter.Filters {
	f, _ := filter.New("", "", nil)
	return f
}

func ids(t *testing.T, s *Service, query string, f filter.Filters, limit int) []string {
	t.Helper()
	res, err := s.Query(context.Background(), query, f, limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := make([]string, len(res))
	for i := range res {
		out[i] = res[i].ID()
	}
	return out
}

// --- Tests ---

func TestSearch_KeywordGateAndMinScore(t *testing.T) {
	repo := &mockRepo{pool: []*candidate.Candidate{
		cand("designer", "Product Designer", unit(0.95)),
		cand("java", "Senior Java Developer", unit(0.42)),
		cand("weak", "Java Developer", unit(0.20)),
		cand("noemb", "Java Developer", vector.Raw{}),
		cand("dims", "Java Developer", vector.FromVector([]float32{1, 0, 0})),
	}}
	s := New(repo, &mockEmbedder{vec: []float32{1, 0}})

	res, err := s.Query(context.Background(), "java developer", noFilters(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].ID() != "java" {
		t.Fatalf("expected only 'java', got %+v", res)
	}
	if math.Abs(res[0].Similarity()-0.42) > 1e-4 {
		t.Errorf("expected similarity ~0.42, got %v", res[0].Similarity())
	}
}

func TestSearch_BlankQueryRejectedBeforeEmbed(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	repo := &mockRepo{}
	s := New(repo, emb)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := s.Query(context.Background(), q, noFilters(), 5)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("query %q: expected ErrValidation, got %v", q, err)
		}
	}
	if emb.calls != 0 || repo.listed {
		t.Error("blank query must not reach the embedder or the store")
	}
}

func TestSearch_LimitCapped(t *testing.T) {
	pool := make([]*candidate.Candidate, 30)
	for i := range pool {
		pool[i] = cand(fmt.Sprintf("c%02d", i), "Go engineer", unit(0.5+float64(i)/100))
	}
	s := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}})

	got := ids(t, s, "go", noFilters(), 500)
	if len(got) != 20 {
		t.Fatalf("expected 20 results, got %d", len(got))
	}
	if got[0] != "c29" {
		t.Errorf("expected best match first, got %s", got[0])
	}
}

func TestSearch_SortedDescendingStable(t *testing.T) {
	s := New(&mockRepo{pool: []*candidate.Candidate{
		cand("a", "Go", unit(0.5)),
		cand("b", "Go", unit(0.9)),
		cand("c", "Go", unit(0.5)),
	}}, &mockEmbedder{vec: []float32{1, 0}})

	got := fmt.Sprint(ids(t, s, "go", noFilters(), 0))
	if got != "[b a c]" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestSearch_EmptyQueryVector(t *testing.T) {
	repo := &mockRepo{pool: []*candidate.Candidate{cand("a", "Go", unit(0.9))}}
	s := New(repo, &mockEmbedder{vec: []float32{}})

	got := ids(t, s, "go", noFilters(), 5)
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
	if repo.listed {
		t.Error("store must not be read when the query has no vector")
	}
}

func TestSearch_EmbedError(t *testing.T) {
	s := New(&mockRepo{}, &mockEmbedder{err: domain.ErrEmbeddingNotConfigured})

	_, err := s.Query(context.Background(), "go", noFilters(), 5)
	if !errors.Is(err, domain.ErrEmbeddingNotConfigured) {
		t.Fatalf("expected ErrEmbeddingNotConfigured, got %v", err)
	}
}

func TestSearch_ListError(t *testing.T) {
	s := New(&mockRepo{err: errors.New("connection reset")}, &mockEmbedder{vec: []float32{1, 0}})

	if _, err := s.Query(context.Background(), "go", noFilters(), 5); err == nil {
		t.Fatal("expected list error")
	}
}

func TestSearch_AnyMode(t *testing.T) {
	pool := []*candidate.Candidate{
		cand("java", "Java Engineer", unit(0.8)),
		cand("py", "Python Developer", unit(0.7)),
		cand("none", "Accountant", unit(0.9)),
	}

	all := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}})
	if got := ids(t, all, "java developer", noFilters(), 5); len(got) != 0 {
		t.Errorf("all mode: expected no match, got %v", got)
	}

	anyMode := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}}).WithKeywordMatch(MatchAny)
	if got := fmt.Sprint(ids(t, anyMode, "java developer", noFilters(), 5)); got != "[java py]" {
		t.Errorf("any mode: unexpected results %s", got)
	}
}

func TestSearch_MatchesSearchText(t *testing.T) {
	c := cand("a", "Engineer", unit(0.6))
	c.SearchText = "Built Kafka pipelines"
	s := New(&mockRepo{pool: []*candidate.Candidate{c}}, &mockEmbedder{vec: []float32{1, 0}})

	if got := ids(t, s, "KAFKA", noFilters(), 5); len(got) != 1 {
		t.Errorf("expected résumé text to satisfy the keyword gate, got %v", got)
	}
}

func TestSearch_HardFilters(t *testing.T) {
	low, high := 3000.0, 9000.0
	pool := []*candidate.Candidate{
		{ID: "a", Title: "Go", Status: "active", City: "Berlin", SalaryMin: &low, Embedding: unit(0.9)},
		{ID: "b", Title: "Go", Status: "archived", City: "Berlin", Embedding: unit(0.9)},
		{ID: "c", Title: "Go", Status: "active", City: "Munich", Embedding: unit(0.9)},
		{ID: "d", Title: "Go", Status: "active", City: "West Berlin", SalaryMin: &high, Embedding: unit(0.9)},
		{ID: "e", Title: "Go", Status: "active", City: "berlin", Embedding: unit(0.8)},
	}
	ceiling := 5000.0
	f, err := filter.New("active", "BERLIN", &ceiling)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	s := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}})

	if got := fmt.Sprint(ids(t, s, "go", f, 5)); got != "[a e]" {
		t.Errorf("unexpected filtered results %s", got)
	}
}

func TestSearch_MinScoreConfigurable(t *testing.T) {
	pool := []*candidate.Candidate{cand("a", "Go", unit(0.35))}
	s := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}}).WithMinScore(0.5)

	if got := ids(t, s, "go", noFilters(), 5); len(got) != 0 {
		t.Errorf("expected score below floor to be dropped, got %v", got)
	}
}

func TestSearch_OverflowingEmbeddingNeverScored(t *testing.T) {
	pool := []*candidate.Candidate{
		cand("overflow", "Go developer", vector.FromJSON([]byte(`"[1e39, 0]"`))),
		cand("inf", "Go developer", vector.FromVector([]float32{float32(math.Inf(1)), 0})),
		cand("ok", "Go developer", unit(0.9)),
	}
	s := New(&mockRepo{pool: pool}, &mockEmbedder{vec: []float32{1, 0}})

	res, err := s.Query(context.Background(), "go", noFilters(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].ID() != "ok" {
		t.Fatalf("expected only 'ok', got %+v", res)
	}
	for _, r := range res {
		sim := r.Similarity()
		if math.IsNaN(sim) || sim < -1 || sim > 1 {
			t.Errorf("similarity %v outside [-1, 1]", sim)
		}
	}
}
