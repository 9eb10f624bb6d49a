package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/talentdex/internal/domain/batch"
	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/talentdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
)

// CandidateService is the CRUD use case.
type CandidateService interface {
	Create(ctx context.Context, c *domcand.Candidate) (*domcand.Candidate, error)
	Get(ctx context.Context, id string) (*domcand.Candidate, error)
	List(ctx context.Context, cursor string, limit int) ([]*domcand.Candidate, string, error)
	Update(ctx context.Context, id string, p domcand.Patch) (*domcand.Candidate, error)
	AttachResume(ctx context.Context, id, url string) (*domcand.Candidate, error)
	Delete(ctx context.Context, id string) error
}

// SearchService is the semantic search use case.
type SearchService interface {
	Query(ctx context.Context, query string, filters filter.Filters, limit int) ([]result.Result, error)
}

// RebuildService is the batch rebuild use case.
type RebuildService interface {
	RebuildAll(ctx context.Context) (dombatch.Outcome, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
