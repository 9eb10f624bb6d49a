package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/search/filter"
	"github.com/kailas-cloud/talentdex/internal/domain/search/request"
	"github.com/kailas-cloud/talentdex/internal/logger"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the candidate API.
type Server struct {
	candidates    CandidateService
	search        SearchService
	rebuild       RebuildService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	candidates CandidateService,
	search SearchService,
	rebuild RebuildService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		candidates: candidates,
		search:     search,
		rebuild:    rebuild,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrCandidateNotFound, http.StatusNotFound, ErrorResponseCodeCandidateNotFound),
		sentinelHandler(domain.ErrCandidateExists, http.StatusConflict, ErrorResponseCodeCandidateAlreadyExists),
		sentinelHandler(domain.ErrEmbeddingNotConfigured,
			http.StatusServiceUnavailable, ErrorResponseCodeEmbeddingNotConfigured),
		// 429 before the generic provider error: a rate-limit ProviderError matches both
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
	}
	return s
}

// CreateCandidate handles POST /candidates.
func (s *Server) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var c domcand.Candidate
	if err := decodeBody(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := s.candidates.Create(r.Context(), &c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/candidates/"+created.ID)
	writeJSON(w, http.StatusCreated, candidateToAPI(created))
}

// ListCandidates handles GET /candidates.
func (s *Server) ListCandidates(w http.ResponseWriter, r *http.Request, params ListCandidatesParams) {
	var cursor string
	if params.Cursor != nil {
		cursor = *params.Cursor
	}
	var limit int
	if params.Limit != nil {
		limit = *params.Limit
	}

	items, next, err := s.candidates.List(r.Context(), cursor, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CandidateCursorListResponse{
		Items:   make([]CandidateResponse, len(items)),
		HasMore: next != "",
	}
	for i, c := range items {
		resp.Items[i] = candidateToAPI(c)
	}
	if next != "" {
		resp.NextCursor = &next
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCandidate handles GET /candidates/{id}.
func (s *Server) GetCandidate(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.candidates.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateToAPI(c))
}

// PatchCandidate handles PATCH /candidates/{id}.
func (s *Server) PatchCandidate(w http.ResponseWriter, r *http.Request, id string) {
	var p domcand.Patch
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.candidates.Update(r.Context(), id, p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateToAPI(updated))
}

// DeleteCandidate handles DELETE /candidates/{id}.
func (s *Server) DeleteCandidate(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.candidates.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachResume handles POST /candidates/{id}/resume.
// The fetch and embed run in the background, so the response is 202.
func (s *Server) AttachResume(w http.ResponseWriter, r *http.Request, id string) {
	var req AttachResumeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.candidates.AttachResume(r.Context(), id, strings.TrimSpace(req.URL))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, candidateToAPI(updated))
}

// SearchCandidates handles POST /search.
func (s *Server) SearchCandidates(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFromAPI(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	var limit int
	if req.Limit != nil {
		limit = *req.Limit
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Query(ctx, req.Query, filters, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		c := results[i].Candidate()
		items[i] = SearchResultItem{
			CandidateResponse: candidateToAPI(&c),
			Similarity:        results[i].Similarity(),
		}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResultListResponse{
		Items: items,
		Total: len(items),
		Limit: effectiveLimit(limit),
	})
}

// RebuildEmbeddings handles POST /rebuild.
// The whole pool is processed before responding, so the server's read and
// write deadlines are lifted for this request.
func (s *Server) RebuildEmbeddings(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Time{}); err != nil {
		logger.FromContextOr(r.Context(), s.logger).Warn("cannot lift read deadline", zap.Error(err))
	}
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.FromContextOr(r.Context(), s.logger).Warn("cannot lift write deadline", zap.Error(err))
	}

	out, err := s.rebuild.RebuildAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{
		Success: out.Success,
		Fail:    out.Fail,
		Total:   out.Total,
	})
}

// HealthCheck handles GET /health.
// Degraded embedding keeps 200: CRUD still works without a provider.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func filtersFromAPI(f *SearchFilters) (filter.Filters, error) {
	if f == nil {
		return filter.Filters{}, nil
	}
	filters, err := filter.New(f.Status, f.City, f.SalaryMax)
	if err != nil {
		return filter.Filters{}, domain.Validationf("%s", err.Error())
	}
	return filters, nil
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return request.DefaultLimit
	}
	if limit > request.MaxLimit {
		return request.MaxLimit
	}
	return limit
}

func candidateToAPI(c *domcand.Candidate) CandidateResponse {
	return CandidateResponse{
		Candidate:    c,
		HasEmbedding: len(c.Vector()) > 0,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCandidateNotFound,
		domain.ErrCandidateExists,
		domain.ErrEmbeddingNotConfigured,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports ErrValidation with its detail, minus the
// use case wrapping in front of it.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()); i >= 0 {
		msg = msg[i:]
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
