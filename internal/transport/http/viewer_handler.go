package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"macrodash/internal/catalog"
	"macrodash/internal/config"
	apierrors "macrodash/internal/errors"
	"macrodash/pkg/contracts"
	"macrodash/pkg/contracts/domain"
)

//go:embed templates/viewer.html
var templateFS embed.FS

var viewerTemplate = template.Must(template.ParseFS(templateFS, "templates/viewer.html"))

const viewerDescription = "Monthly, weekly, quarterly and daily U.S. macroeconomic indicators " +
	"with derived changes, charts and regression analysis."

// viewerPage is the data of the viewer template.
type viewerPage struct {
	Title       string
	Description string
	Version     string
	Start       string
	End         string
	Frequencies []string
	Sheets      *domain.SheetsResponse
	Variables   []domain.Variable
	Gallery     []domain.ChartInfo
}

// ViewerHandler serves the single-page viewer.
type ViewerHandler struct {
	data         DatasetService
	charts       ChartService
	cfg          config.DataConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewViewerHandler creates the viewer handler
func NewViewerHandler(data DatasetService, charts ChartService, cfg config.DataConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ViewerHandler {
	return &ViewerHandler{
		data:         data,
		charts:       charts,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "viewer_handler")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /
func (h *ViewerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := viewerPage{
		Title:       "Economic Indicators Dashboard",
		Description: viewerDescription,
		Version:     fmt.Sprintf("%s %s", contracts.Name, contracts.Version),
		Start:       h.cfg.DefaultStart,
		End:         h.cfg.DefaultEnd,
		Sheets:      h.data.Sheets(ctx),
		Variables:   h.data.Variables(ctx),
		Gallery:     h.charts.Gallery(ctx),
	}
	for _, f := range catalog.Frequencies {
		page.Frequencies = append(page.Frequencies, f.String())
	}

	var buf bytes.Buffer
	if err := viewerTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(ctx, "viewer render failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
