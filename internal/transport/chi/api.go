package chi

import (
	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// ErrorResponseCode is the machine-readable error code in ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized           ErrorResponseCode = "unauthorized"
	ErrorResponseCodeCandidateNotFound      ErrorResponseCode = "candidate_not_found"
	ErrorResponseCodeCandidateAlreadyExists ErrorResponseCode = "candidate_already_exists"
	ErrorResponseCodeEmbeddingNotConfigured ErrorResponseCode = "embedding_not_configured"
	ErrorResponseCodeRateLimited            ErrorResponseCode = "rate_limited"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// CandidateResponse is a candidate as returned by the API. The stored vector
// and résumé text are replaced by a flag.
type CandidateResponse struct {
	*domcand.Candidate
	Embedding    *struct{} `json:"embedding,omitempty"`
	SearchText   *struct{} `json:"searchText,omitempty"`
	HasEmbedding bool      `json:"hasEmbedding"`
}

// CandidateCursorListResponse is a page of candidates.
type CandidateCursorListResponse struct {
	Items      []CandidateResponse `json:"items"`
	NextCursor *string             `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}

// ListCandidatesParams are the query parameters of GET /candidates.
type ListCandidatesParams struct {
	Cursor *string `form:"cursor,omitempty" json:"cursor,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// AttachResumeRequest is the body of POST /candidates/{id}/resume.
type AttachResumeRequest struct {
	URL string `json:"url"`
}

// SearchFilters are the hard filters of a search request.
type SearchFilters struct {
	Status    string   `json:"status,omitempty"`
	City      string   `json:"city,omitempty"`
	SalaryMax *float64 `json:"salary_max,omitempty"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Limit   *int           `json:"limit,omitempty"`
}

// SearchResultItem is a ranked candidate.
type SearchResultItem struct {
	CandidateResponse
	Similarity float64 `json:"similarity"`
}

// SearchResultListResponse is the body of a search response.
type SearchResultListResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
	Limit int                `json:"limit"`
}

// RebuildResponse reports a batch rebuild.
type RebuildResponse struct {
	Success int `json:"success"`
	Fail    int `json:"fail"`
	Total   int `json:"total"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
