package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/config"
	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/handler"
	"github.com/hoa-manager/hoa-backend/internal/mail"
	"github.com/hoa-manager/hoa-backend/internal/middleware"
	"github.com/hoa-manager/hoa-backend/internal/render"
	"github.com/hoa-manager/hoa-backend/internal/repository/postgres"
	"github.com/hoa-manager/hoa-backend/internal/repository/storage"
	"github.com/hoa-manager/hoa-backend/internal/service"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	// Artifact storage
	store, err := newArtifactStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.ArtifactStorage).Msg("Failed to initialize artifact storage")
	}
	log.Info().Str("storage", cfg.ArtifactStorage).Msg("Artifact storage ready")

	// Initialize repositories
	reportSource := postgres.NewReportSource(pool)
	billRepo := postgres.NewBillRepository(pool)
	definitionRepo := postgres.NewReportDefinitionRepository(pool)
	generationRepo := postgres.NewReportGenerationRepository(pool)

	// Rendering and distribution
	encoder, err := render.NewEncoder(domain.ReportFormat(cfg.Report.Format))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report encoder")
	}
	renderer := render.NewRenderer(encoder, store, render.Options{
		Organization:   cfg.Report.OrganizationName,
		FilenameSuffix: cfg.Report.FilenameSuffix,
	}, log.Logger)

	var distributor domain.Distributor
	switch cfg.Mail.Mode {
	case config.MailModeSMTP:
		distributor = mail.NewSMTPDistributor(cfg.Mail, cfg.Report.OrganizationName, store, log.Logger)
	default:
		distributor = mail.NewSimulatedDistributor(log.Logger)
	}

	// Initialize services
	aggregationService := service.NewAggregationService(reportSource, log.Logger)
	reportService := service.NewReportService(
		aggregationService,
		renderer,
		store,
		definitionRepo,
		generationRepo,
		reportSource,
		distributor,
		log.Logger,
	)
	definitionService := service.NewReportDefinitionService(definitionRepo)
	billService := service.NewBillService(billRepo)

	// Live events
	hub := websocket.NewHub()
	reportService.SetEventPublisher(hub)
	definitionService.SetEventPublisher(hub)
	billService.SetEventPublisher(hub)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	// Initialize handlers
	reportHandler := handler.NewReportHandler(reportService, definitionService)
	billHandler := handler.NewBillHandler(billService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, reportHandler, billHandler, wsHandler, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("format", cfg.Report.Format).Str("mail", cfg.Mail.Mode).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	rateLimiter.Stop()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newArtifactStore selects the configured storage backend
func newArtifactStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.ArtifactStorage {
	case config.StorageS3:
		return storage.NewS3ArtifactStore(ctx, cfg.S3)
	case config.StorageMinIO:
		return storage.NewMinIOArtifactStore(ctx, cfg.MinIO)
	case config.StorageLocal:
		return storage.NewLocalArtifactStore(cfg.Report.Dir)
	}
	return nil, fmt.Errorf("unknown artifact storage %q", cfg.ArtifactStorage)
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
