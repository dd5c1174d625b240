package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "macrodash/internal/errors"
	mw "macrodash/internal/middleware"
	api "macrodash/pkg/contracts/api/v1"
)

// DataHandler serves the catalog and the workbook tables.
type DataHandler struct {
	service      DatasetService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DatasetService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// CatalogRoutes returns the routes mounted at /api/catalog.
func (h *DataHandler) CatalogRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/variables", h.GetVariables)
	r.Get("/lookup", h.Lookup)
	return r
}

// Routes returns the routes mounted at /api/data.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/sheets", h.GetSheets)
	r.Get("/sheets/{sheet}", h.GetSheet)
	r.Get("/series", h.GetSeries)
	r.Post("/reload", h.Reload)
	return r
}

// GetVariables handles GET /api/catalog/variables
func (h *DataHandler) GetVariables(w http.ResponseWriter, r *http.Request) {
	vars := h.service.Variables(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"variables": vars,
		"count":     len(vars),
	})
}

// Lookup handles GET /api/catalog/lookup?key=
func (h *DataHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var q api.LookupQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	res, err := h.service.Lookup(r.Context(), q.Key)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, res)
}

// GetSheets handles GET /api/data/sheets
func (h *DataHandler) GetSheets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Sheets(r.Context()))
}

// GetSheet handles GET /api/data/sheets/{sheet}
func (h *DataHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	sheet := chi.URLParam(r, "sheet")
	if sheet == "" || len(sheet) > 64 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sheet", "Invalid sheet name"))
		return
	}
	var q api.SheetQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Sheet(r.Context(), sheet, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, resp)
}

// GetSeries handles GET /api/data/series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	var q api.SeriesQuery
	if err := h.validator.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Series(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, resp)
}

// Reload handles POST /api/data/reload
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", reqID))

	resp, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, apierrors.ReloadFailed(err))
		return
	}
	render.JSON(w, r, resp)
}
