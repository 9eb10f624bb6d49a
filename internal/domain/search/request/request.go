// Package request holds the validated semantic search request.
package request

import (
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 4096
	DefaultLimit   = 20
	// MaxLimit bounds response size and scoring cost regardless of the caller.
	MaxLimit = 20
)

// Request is a validated search query.
type Request struct {
	query   string
	filters filter.Filters
	limit   int
}

// New validates and normalizes search parameters.
// The query is trimmed and must be non-empty; limit defaults to DefaultLimit
// and is clamped to MaxLimit.
func New(query string, filters filter.Filters, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.Validationf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.Validationf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, filters: filters, limit: limit}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Filters returns the hard filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Terms returns the lowercase whitespace-separated query terms.
func (r *Request) Terms() []string {
	return strings.Fields(strings.ToLower(r.query))
}
