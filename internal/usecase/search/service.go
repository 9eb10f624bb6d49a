package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/talentdex/internal/domain/search/request"
	"github.com/kailas-cloud/talentdex/internal/domain/search/result"
	"github.com/kailas-cloud/talentdex/internal/domain/searchdoc"
	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

// DefaultMinScore is the similarity floor below which candidates are dropped.
const DefaultMinScore = 0.30

// KeywordMatch selects how query terms gate a candidate.
type KeywordMatch string

// Keyword gate modes.
const (
	// MatchAll keeps a candidate only when every term occurs in its corpus.
	MatchAll KeywordMatch = "all"
	// MatchAny keeps a candidate when at least one term occurs.
	MatchAny KeywordMatch = "any"
)

// Service ranks the candidate pool against a natural-language query.
type Service struct {
	repo     CandidateLister
	embed    Embedder
	match    KeywordMatch
	minScore float64
}

// New creates a search service with the "all terms" gate and DefaultMinScore.
func New(repo CandidateLister, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, match: MatchAll, minScore: DefaultMinScore}
}

// WithKeywordMatch configures the keyword gate mode. Unknown modes are ignored.
func (s *Service) WithKeywordMatch(m KeywordMatch) *Service {
	if m == MatchAll || m == MatchAny {
		s.match = m
	}
	return s
}

// WithMinScore configures the similarity floor.
func (s *Service) WithMinScore(score float64) *Service {
	s.minScore = score
	return s
}

// Query validates the raw parameters and runs Search. A blank query fails
// with domain.ErrValidation before the embedder is called.
func (s *Service) Query(ctx context.Context, query string, filters filter.Filters, limit int) ([]result.Result, error) {
	req, err := request.New(query, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	return s.Search(ctx, &req)
}

// Search embeds the query, filters and scores every candidate, and returns
// up to req.Limit() hits by descending similarity. Ties keep pool order.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := emb.Embedding
	if len(query) == 0 {
		return []result.Result{}, nil
	}

	pool, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	terms := req.Terms()
	filters := req.Filters()

	results := make([]result.Result, 0, len(pool))
	for _, c := range pool {
		if !filters.Matches(c) {
			continue
		}

		stored := c.Vector()
		if len(stored) != len(query) {
			continue // never comparable
		}
		if !s.keywordGate(searchdoc.Corpus(c), terms) {
			continue
		}

		score := vector.Cosine(query, stored)
		if !(score >= s.minScore) { // also rejects NaN
			continue
		}
		results = append(results, result.New(*c, score))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity() > results[j].Similarity()
	})

	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}
	return results, nil
}

func (s *Service) keywordGate(corpus string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		hit := strings.Contains(corpus, term)
		if s.match == MatchAny && hit {
			return true
		}
		if s.match == MatchAll && !hit {
			return false
		}
	}
	return s.match == MatchAll
}
