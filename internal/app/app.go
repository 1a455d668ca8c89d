package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"regreport/internal/config"
	"regreport/internal/dataprocessing"
	apierrors "regreport/internal/errors"
	"regreport/internal/infrastructure"
	customMiddleware "regreport/internal/middleware"
	"regreport/internal/services"
	handlers "regreport/internal/transport/http"
	"regreport/internal/web"
	"regreport/pkg/contracts"
)

// systemSampleInterval is how often runtime gauges are refreshed
const systemSampleInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ReportMetrics
	SystemMetrics *infrastructure.SystemMetrics
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reports *services.ReportService
	Health  *services.HealthService
}

// NewApplication loads configuration and creates the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New creates an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up routes: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateReportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create report metrics: %w", err)
	}
	a.Metrics = metrics

	systemMetrics, err := infrastructure.NewSystemMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create system metrics: %w", err)
	}
	a.SystemMetrics = systemMetrics

	reports := services.NewReportServiceFromConfig(a.Config, metrics, a.Logger)

	a.Services = &ServiceContainer{
		Reports: reports,
		Health:  services.NewHealthService(reports, systemMetrics, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.MaxUploadBytes())

	var routeErr error
	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → security → compression
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r, validation)
		routeErr = a.setupHTMLRoutes(r, validation)
	})
	if routeErr != nil {
		return routeErr
	}

	// Prometheus scrapes bypass the request middleware
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, validation *customMiddleware.ValidationMiddleware) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(
		a.Services.Reports,
		validation,
		a.ErrorHandler,
		a.displayOptions(),
		a.Logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
		})

		r.Group(func(r chi.Router) {
			r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.Mount("/registrations", reportHandler.Routes())
		})
	})
}

// setupHTMLRoutes configures the upload page and its assets
func (a *Application) setupHTMLRoutes(r chi.Router, validation *customMiddleware.ValidationMiddleware) error {
	pageHandler, err := handlers.NewPageHandler(a.Services.Reports, validation, a.Config.Report.Title, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}

	r.Get("/", pageHandler.Index)
	r.With(
		customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger),
		validation.LimitBody,
	).Post("/", pageHandler.Upload)

	r.Route("/static", func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "public, max-age=86400"))
		r.Handle("/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	})
	return nil
}

func (a *Application) displayOptions() dataprocessing.DisplayOptions {
	return dataprocessing.DisplayOptions{
		PreviewRows: a.Config.Display.PreviewRows,
		MaxColumns:  a.Config.Display.MaxColumns,
	}
}

// getCORSConfig returns the CORS policy for the configured origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
			"X-Report-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start serves until ctx is cancelled, then shuts the server down
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "starting server",
			slog.String("addr", a.Server.Addr),
			slog.String("environment", a.Config.Telemetry.Environment))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.SystemMetrics.Start(gctx, systemSampleInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	a.Logger.Info("stopped server")
	return nil
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Start(ctx)
}
