package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"macrodash/internal/analysis"
	apierrors "macrodash/internal/errors"
	mw "macrodash/internal/middleware"
	api "macrodash/pkg/contracts/api/v1"
)

// AnalysisHandler serves regressions and summary statistics.
type AnalysisHandler struct {
	service      AnalysisService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted at /api/analysis.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/regressions", h.ListRegressions)
	r.Get("/regressions/{name}", h.GetRegression)
	r.Get("/correlation", h.GetCorrelation)
	r.Get("/describe", h.Describe)
	return r
}

// ListRegressions handles GET /api/analysis/regressions
func (h *AnalysisHandler) ListRegressions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"regressions": h.service.Regressions()})
}

// GetRegression handles GET /api/analysis/regressions/{name}
func (h *AnalysisHandler) GetRegression(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Regression(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, report)
}

// GetCorrelation handles GET /api/analysis/correlation
func (h *AnalysisHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	var q api.CorrelationQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	m, err := h.service.Correlation(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, m)
}

// Describe handles GET /api/analysis/describe
func (h *AnalysisHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var q api.DescribeQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	d, err := h.service.Describe(r.Context(), q)
	if errors.Is(err, analysis.ErrEmptyDataset) {
		h.errorHandler.HandleError(w, r, apierrors.NotEnoughData(err))
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, d)
}
