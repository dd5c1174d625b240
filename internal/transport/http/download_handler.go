package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "macrodash/internal/errors"
	mw "macrodash/internal/middleware"
	"macrodash/internal/services"
	api "macrodash/pkg/contracts/api/v1"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	viewCSVName  = "economic_indicators_view.csv"
	viewXLSXName = "economic_indicators_view.xlsx"
)

// DownloadHandler serves the workbook, the analysis script and the
// filtered view exports as attachments.
type DownloadHandler struct {
	service      DatasetService
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service DatasetService, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DownloadHandler {
	return &DownloadHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "download_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the routes mounted at /api/downloads.
func (h *DownloadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/workbook", h.serveFile(services.DownloadWorkbook))
	r.Get("/script", h.serveFile(services.DownloadScript))
	r.Get("/view.csv", h.export(viewCSVName, csvContentType, h.service.ExportCSV))
	r.Get("/view.xlsx", h.export(viewXLSXName, xlsxContentType, h.service.ExportXLSX))
	return r
}

func (h *DownloadHandler) serveFile(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, name, err := h.service.Download(r.Context(), kind)
		if err != nil {
			h.errorHandler.HandleError(w, r, serviceError(err))
			return
		}
		h.logger.InfoContext(r.Context(), "file download",
			slog.String("kind", kind),
			slog.String("file", name))

		setAttachment(w, name)
		http.ServeFile(w, r, path)
	}
}

type exportFunc func(ctx context.Context, w io.Writer, q api.RangeQuery) error

// export renders into memory first so a failed export still gets a
// problem response instead of a truncated file.
func (h *DownloadHandler) export(name, contentType string, write exportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q api.RangeQuery
		if err := h.validator.BindQuery(r, &q); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := write(r.Context(), &buf, q); err != nil {
			h.errorHandler.HandleError(w, r, serviceError(err))
			return
		}

		setAttachment(w, name)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.WarnContext(r.Context(), "export write interrupted",
				slog.String("file", name),
				slog.String("error", err.Error()))
		}
	}
}

func setAttachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
}
