package candidate

import (
	"context"

	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// Repository defines the storage contract for candidates.
type Repository interface {
	Create(ctx context.Context, c *domcand.Candidate) error
	Get(ctx context.Context, id string) (*domcand.Candidate, error)
	Page(ctx context.Context, cursor string, limit int) (items []*domcand.Candidate, nextCursor string, err error)
	Update(ctx context.Context, id string, p domcand.Patch) (*domcand.Candidate, error)
	Delete(ctx context.Context, id string) error
}

// Scheduler queues best-effort re-embedding. Neither method blocks or fails.
type Scheduler interface {
	TryEmbedCandidate(id, extraText string)
	TryEmbedResume(id, url string)
}
