package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs following RFC 7807.
const (
	TypeValidation = "/errors/validation"
	TypeLookup     = "/errors/lookup"
	TypeNotFound   = "/errors/not-found"
	TypeInternal   = "/errors/internal"
)

// ProblemDetails is an RFC 7807 error response body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	TraceID string `json:"trace_id,omitempty"`
}

// Render implements render.Renderer.
func (p *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// NewProblem creates a ProblemDetails with the given type, title and status.
func NewProblem(problemType, title string, status int) *ProblemDetails {
	return &ProblemDetails{Type: problemType, Title: title, Status: status}
}

// WithDetail sets the human readable detail and returns the problem.
func (p *ProblemDetails) WithDetail(detail string) *ProblemDetails {
	p.Detail = detail
	return p
}

// ToProblem maps a domain error to its RFC 7807 representation.
func ToProblem(err error) *ProblemDetails {
	var le *LookupError
	if errors.As(err, &le) {
		return NewProblem(TypeLookup, "Unknown identifier", http.StatusNotFound).
			WithDetail(le.Error())
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return NewProblem(TypeValidation, "Validation failed", http.StatusUnprocessableEntity).
			WithDetail(ve.Error())
	}
	if errors.Is(err, ErrNoData) {
		return NewProblem(TypeNotFound, "No data", http.StatusNotFound).
			WithDetail(err.Error())
	}
	return NewProblem(TypeInternal, "Internal server error", http.StatusInternalServerError)
}

// WriteError renders err as a problem response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	render.Render(w, r, ToProblem(err))
}
