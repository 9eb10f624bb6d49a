package search

import (
	"context"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// CandidateLister reads the candidate pool scored by a search.
type CandidateLister interface {
	List(ctx context.Context) ([]*candidate.Candidate, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
