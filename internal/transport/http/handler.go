package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"formcli/internal/analysis"
	"formcli/internal/selection"
)

// Handler serves the analysis API.
type Handler struct {
	runner  *analysis.Runner
	groups  selection.Groups
	logger  *slog.Logger
	started time.Time
}

// NewHandler creates the API handler over a loaded dataset.
func NewHandler(runner *analysis.Runner, groups selection.Groups, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner:  runner,
		groups:  groups,
		logger:  logger.With(slog.String("component", "api_handler")),
		started: time.Now(),
	}
}

// Routes returns the API routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/groups", h.GetGroups)
		r.Post("/analyze", h.Analyze)
		r.Get("/health", h.Health)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// GetGroups handles GET /api/groups: the distinct teams and locations
// with their response counts.
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("groups", "2xx").Inc()
	render.JSON(w, r, h.groups)
}

// AnalyzeRequest is the POST /api/analyze body. Empty or "all" values
// select every group in that dimension.
type AnalyzeRequest struct {
	Team     string `json:"team"`
	Location string `json:"location"`
}

// Bind implements render.Binder.
func (req *AnalyzeRequest) Bind(r *http.Request) error {
	return nil
}

// Analyze handles POST /api/analyze: one full analysis run for the
// requested selection.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.Bind(r, &req); err != nil {
		requestsTotal.WithLabelValues("analyze", "4xx").Inc()
		h.problem(w, r, http.StatusBadRequest, "invalid-request", "Request body must be valid JSON")
		return
	}

	sel, err := selection.ResolveNames(h.groups, req.Team, req.Location)
	if err != nil {
		requestsTotal.WithLabelValues("analyze", "4xx").Inc()
		h.problem(w, r, http.StatusUnprocessableEntity, "unknown-group", err.Error())
		return
	}

	start := time.Now()
	result, err := h.runner.Run(r.Context(), sel)
	analysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		analysisRunsTotal.WithLabelValues("error").Inc()
		requestsTotal.WithLabelValues("analyze", "5xx").Inc()
		h.logger.ErrorContext(r.Context(), "analysis run failed",
			slog.String("selection", sel.String()),
			slog.String("error", err.Error()))
		h.problem(w, r, http.StatusInternalServerError, "analysis-failed", "The analysis run failed")
		return
	}

	analysisRunsTotal.WithLabelValues("ok").Inc()
	requestsTotal.WithLabelValues("analyze", "2xx").Inc()
	render.JSON(w, r, result)
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("health", "2xx").Inc()
	render.JSON(w, r, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"responses": len(h.runner.Rows()),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// problem writes an RFC 7807 problem document.
func (h *Handler) problem(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"type":   "/errors/" + kind,
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
