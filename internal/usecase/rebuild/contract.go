package rebuild

import (
	"context"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// CandidateLister reads the whole candidate pool.
type CandidateLister interface {
	List(ctx context.Context) ([]*candidate.Candidate, error)
}

// CandidateEmbedder runs embed-and-persist for one candidate.
type CandidateEmbedder interface {
	EmbedCandidate(ctx context.Context, id, extraText string) error
}

// ResumeFetcher downloads and extracts résumé text; "" on any failure.
type ResumeFetcher interface {
	FetchResumeText(ctx context.Context, url string) string
}
