package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macrodash/internal/errors"
	mw "macrodash/internal/middleware"
	api "macrodash/pkg/contracts/api/v1"
)

// ColumnWarningsHeader lists the requested columns a chart could not draw.
const ColumnWarningsHeader = "X-Column-Warnings"

// ChartHandler serves PNG charts.
type ChartHandler struct {
	service      ChartService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ChartService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted at /api/charts.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/gallery", h.ListGallery)
	r.Get("/gallery/{name}", h.GetGalleryChart)
	r.Get("/line", h.GetLineChart)
	return r
}

// ListGallery handles GET /api/charts/gallery
func (h *ChartHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	charts := h.service.Gallery(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"charts": charts,
		"count":  len(charts),
	})
}

// GetGalleryChart handles GET /api/charts/gallery/{name}
func (h *ChartHandler) GetGalleryChart(w http.ResponseWriter, r *http.Request) {
	var q api.GalleryQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	png, err := h.service.GalleryChart(r.Context(), chi.URLParam(r, "name"), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	writePNG(w, png)
}

// GetLineChart handles GET /api/charts/line
func (h *ChartHandler) GetLineChart(w http.ResponseWriter, r *http.Request) {
	var q api.LineChartQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	img, err := h.service.LineChart(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	if len(img.Warnings) > 0 {
		cols := make([]string, len(img.Warnings))
		for i, warn := range img.Warnings {
			cols[i] = warn.Column
		}
		w.Header().Set(ColumnWarningsHeader, strings.Join(cols, ", "))
		h.logger.DebugContext(r.Context(), "columns omitted from chart",
			slog.Any("columns", cols))
	}
	writePNG(w, img.PNG)
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
