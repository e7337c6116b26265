package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"geopolrisk/internal/dataset"
)

// ReferenceHandler serves the reference catalogs clients need to build
// a valid assessment request.
type ReferenceHandler struct {
	ref *dataset.Ref
}

// NewReferenceHandler creates the handler over loaded reference data.
func NewReferenceHandler(ref *dataset.Ref) *ReferenceHandler {
	return &ReferenceHandler{ref: ref}
}

// Routes returns the reference routes.
func (h *ReferenceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/resources", h.ListResources)
	r.Get("/countries", h.ListCountries)
	return r
}

// ListResources handles GET /api/v1/reference/resources.
func (h *ReferenceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.ref.Resources())
}

// ListCountries handles GET /api/v1/reference/countries.
func (h *ReferenceHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.ref.Countries())
}
