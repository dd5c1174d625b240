package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/api/option"

	"macrodash/internal/catalog"
	"macrodash/internal/config"
	"macrodash/internal/dataset"
	apierrors "macrodash/internal/errors"
	"macrodash/internal/infrastructure"
	customMiddleware "macrodash/internal/middleware"
	"macrodash/internal/services"
	handlers "macrodash/internal/transport/http"
	ws "macrodash/internal/websocket"
	"macrodash/internal/workbook"
	"macrodash/pkg/contracts"
	"macrodash/pkg/contracts/events"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Store         *dataset.Store
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger

	logCloser io.Closer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset  *services.DatasetService
	Charts   *services.ChartService
	Analysis *services.AnalysisService
	Health   *services.HealthService
}

// NewApplication loads the configuration from the environment and builds
// the application.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := New(ctx, cfg, logger, infrastructure.DefaultOTelConfig())
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	app.logCloser = closer
	return app, nil
}

// New wires the application from an explicit configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", contracts.Name),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Data.Source))

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateDomainMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create domain metrics: %w", err)
	}
	wsMetrics, err := ws.NewMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	cat := catalog.Default()
	if cfg.Data.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.Data.CatalogFile); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	source, err := newSource(ctx, cfg.Data, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Store:         dataset.NewStore(source, cat, logger),
		WebSocketHub:  ws.NewHub(cfg.WebSocket, wsMetrics, logger),
		OTelProviders: providers,
		Logger:        logger,
	}
	app.Services = &ServiceContainer{
		Dataset:  services.NewDatasetService(app.Store, cfg.Data, metrics, logger),
		Charts:   services.NewChartService(app.Store, cfg.Data, cfg.Charts, metrics, logger),
		Analysis: services.NewAnalysisService(app.Store, cfg.Data, metrics, logger),
		Health:   services.NewHealthService(contracts.Version, app.Store, app.WebSocketHub, logger),
	}
	app.Store.OnLoad(app.broadcastReload)

	app.setupRouter(metrics)
	app.createServer()
	return app, nil
}

// newSource picks the workbook file or the Google spreadsheet.
func newSource(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (workbook.Source, error) {
	if cfg.Source != config.SourceSheets {
		return workbook.NewFileSource(cfg.WorkbookPath, logger), nil
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	src, err := workbook.NewSheetsSource(ctx, cfg.SpreadsheetID, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets source: %w", err)
	}
	return src, nil
}

func (a *Application) setupRouter(metrics *infrastructure.DomainMetrics) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validator := customMiddleware.NewValidator()

	data := handlers.NewDataHandler(a.Services.Dataset, validator, a.Logger, errorHandler)
	charts := handlers.NewChartHandler(a.Services.Charts, validator, a.Logger, errorHandler)
	analysis := handlers.NewAnalysisHandler(a.Services.Analysis, validator, a.Logger, errorHandler)
	downloads := handlers.NewDownloadHandler(a.Services.Dataset, validator, a.Logger, errorHandler)
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	clientLog := handlers.NewClientLogHandler(validator, a.Logger, errorHandler)
	viewer := handlers.NewViewerHandler(a.Services.Dataset, a.Services.Charts, a.Config.Data, a.Logger, errorHandler)

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Middleware that does not wrap the ResponseWriter, so /ws can hijack.
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.HandleFunc("/ws", a.WebSocketHub.Serve)
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(errorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, errorHandler).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, errorHandler))

		r.Method(http.MethodGet, "/", viewer)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/catalog", data.CatalogRoutes())
			r.Mount("/data", data.Routes())
			r.Mount("/charts", charts.Routes())
			r.Mount("/analysis", analysis.Routes())
			r.Mount("/downloads", downloads.Routes())
			r.Mount("/health", health.Routes())
			r.Get("/version", health.Version)
			r.Post("/logs", clientLog.Handle)
		})
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// broadcastReload announces a new snapshot to the viewers.
func (a *Application) broadcastReload(snap *dataset.Snapshot) {
	ctx, cancel := context.WithTimeout(infrastructure.EnsureTraceID(context.Background()), 5*time.Second)
	defer cancel()

	wb := snap.Workbook()
	err := a.WebSocketHub.Broadcast(ctx, events.MessageTypeDatasetReloaded, events.DatasetReloaded{
		Source:   wb.Source(),
		LoadedAt: snap.LoadedAt(),
		Sheets:   wb.SheetNames(),
		Rows:     snap.Merged().Len(),
		Warnings: snap.Warnings(),
	})
	if err != nil && !errors.Is(err, ws.ErrHubStopped) {
		a.Logger.WarnContext(ctx, "failed to broadcast reload", slog.String("error", err.Error()))
	}
}

// Start loads the dataset and starts serving. A failed initial load is
// logged; the server still starts and readiness reports it.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	if _, err := a.Services.Dataset.Reload(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "initial dataset load failed", slog.String("error", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-sigCtx.Done()
	a.Logger.Info("Received shutdown signal")

	// The parent context may already be cancelled by a server error.
	return a.Stop(context.Background())
}
