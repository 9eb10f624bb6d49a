// Package result holds ranked search hits.
package result

import "github.com/kailas-cloud/talentdex/internal/domain/candidate"

// Result is a single search hit: a candidate and its cosine similarity.
type Result struct {
	candidate  candidate.Candidate
	similarity float64
}

// New creates a search result.
func New(c candidate.Candidate, similarity float64) Result {
	return Result{candidate: c, similarity: similarity}
}

// Candidate returns the matched candidate.
func (r *Result) Candidate() candidate.Candidate { return r.candidate }

// ID returns the candidate identifier.
func (r *Result) ID() string { return r.candidate.ID }

// Similarity returns the cosine similarity in [-1, 1].
func (r *Result) Similarity() float64 { return r.similarity }
