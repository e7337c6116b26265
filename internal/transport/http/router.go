package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"geopolrisk/internal/dataset"
)

// RouterDeps collects everything the API surface needs.
type RouterDeps struct {
	Ref            *dataset.Ref
	Service        AssessmentService
	Sink           RecordSink
	Logger         *slog.Logger
	MetricsHandler http.Handler
}

// NewRouter assembles the API router: assessment and reference routes
// under /api/v1, plus health and metrics at the root.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/assessments", NewAssessmentHandler(deps.Service, deps.Sink, deps.Logger).Routes())
		r.Mount("/reference", NewReferenceHandler(deps.Ref).Routes())
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	return r
}

// requestLogger emits one structured line per request after it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, req)
				return
			}
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("http request",
				slog.String("request_id", middleware.GetReqID(req.Context())),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
