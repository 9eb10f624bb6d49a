package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a path or query
// parameter fails to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// HandlerWithOptions mounts the API routes on opts.BaseRouter (a new router when nil).
func HandlerWithOptions(s *Server, opts ChiServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wr := &wrapper{s: s, onError: opts.ErrorHandlerFunc}

	r.Post("/candidates", s.CreateCandidate)
	r.Get("/candidates", wr.listCandidates)
	r.Get("/candidates/{id}", wr.withID(s.GetCandidate))
	r.Patch("/candidates/{id}", wr.withID(s.PatchCandidate))
	r.Delete("/candidates/{id}", wr.withID(s.DeleteCandidate))
	r.Post("/candidates/{id}/resume", wr.withID(s.AttachResume))
	r.Post("/search", s.SearchCandidates)
	r.Post("/rebuild", s.RebuildEmbeddings)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}

// wrapper binds path and query parameters before calling a Server handler.
type wrapper struct {
	s       *Server
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (wr *wrapper) withID(h func(w http.ResponseWriter, r *http.Request, id string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			wr.onError(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
			return
		}
		h(w, r, id)
	}
}

func (wr *wrapper) listCandidates(w http.ResponseWriter, r *http.Request) {
	var params ListCandidatesParams

	if err := runtime.BindQueryParameter("form", true, false, "cursor", r.URL.Query(), &params.Cursor); err != nil {
		wr.onError(w, r, &InvalidParamFormatError{ParamName: "cursor", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		wr.onError(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	wr.s.ListCandidates(w, r, params)
}
