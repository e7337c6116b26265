package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

// AssessmentService runs batch assessments.
type AssessmentService interface {
	Run(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error)
	RunByExporter(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error)
}

// RecordSink persists finished records.
type RecordSink interface {
	Upsert(ctx context.Context, records []domain.RiskRecord) error
}

// AssessmentHandler serves the assessment endpoints.
type AssessmentHandler struct {
	service  AssessmentService
	sink     RecordSink
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAssessmentHandler creates the handler. The sink may be nil when
// persistence is disabled.
func NewAssessmentHandler(service AssessmentService, sink RecordSink, logger *slog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service:  service,
		sink:     sink,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "assessment_handler")),
	}
}

// Routes returns the assessment routes.
func (h *AssessmentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.RunAssessment)
	r.Post("/by-exporter", h.RunByExporter)
	return r
}

// RunAssessment handles POST /api/v1/assessments.
func (h *AssessmentHandler) RunAssessment(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Run)
}

// RunByExporter handles POST /api/v1/assessments/by-exporter.
func (h *AssessmentHandler) RunByExporter(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.RunByExporter)
}

func (h *AssessmentHandler) run(w http.ResponseWriter, r *http.Request, fn func(context.Context, domain.AssessmentRequest) (domain.AssessmentResponse, error)) {
	var req domain.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, r, apperrors.NewValidationError("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperrors.WriteError(w, r, apperrors.NewValidationError("request", err.Error()))
		return
	}

	resp, err := fn(r.Context(), req)
	if err != nil {
		h.logger.Error("assessment run failed", slog.String("error", err.Error()))
		apperrors.WriteError(w, r, err)
		return
	}

	if h.sink != nil {
		if err := h.sink.Upsert(r.Context(), resp.Records); err != nil {
			h.logger.Error("failed to persist records",
				slog.String("run_id", resp.RunID),
				slog.String("error", err.Error()))
		}
	}

	h.logger.Info("assessment served",
		slog.String("run_id", resp.RunID),
		slog.Int("records", len(resp.Records)))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}
