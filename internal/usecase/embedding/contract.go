package embedding

import (
	"context"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// candidateRepo is the consumer interface for the pipeline (ISP).
type candidateRepo interface {
	Get(ctx context.Context, id string) (*candidate.Candidate, error)
	Update(ctx context.Context, id string, p candidate.Patch) (*candidate.Candidate, error)
}
