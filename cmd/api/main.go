package main

// @title RealtyCRM API
// @version 1.0
// @description Real-estate lead CRM with a note-driven follow-up cadence engine.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openhaus/realtycrm/config"
	"github.com/openhaus/realtycrm/pkg/api"
	"github.com/openhaus/realtycrm/pkg/api/handlers"
	"github.com/openhaus/realtycrm/pkg/auth"
	"github.com/openhaus/realtycrm/pkg/cache"
	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/dashboard"
	"github.com/openhaus/realtycrm/pkg/database"
	"github.com/openhaus/realtycrm/pkg/email"
	"github.com/openhaus/realtycrm/pkg/export"
	"github.com/openhaus/realtycrm/pkg/followup"
	"github.com/openhaus/realtycrm/pkg/importer"
	"github.com/openhaus/realtycrm/pkg/jobs"
	"github.com/openhaus/realtycrm/pkg/leadnote"
	"github.com/openhaus/realtycrm/pkg/leads"
	"github.com/openhaus/realtycrm/pkg/logger"
	"github.com/openhaus/realtycrm/pkg/metrics"
	custommw "github.com/openhaus/realtycrm/pkg/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}
	cancelMigrate()
	log.Printf("✅ Database schema ready")

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize services. The dormancy cutoff lives in the scorer weights;
	// tier labels and the digest both read it from there.
	scoreWeights := cadence.DefaultWeights()
	scoreWeights.DormantAfterDays = cfg.DormantAfterDays
	scorer := cadence.NewScorer(scoreWeights)
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)
	authService := auth.NewService(db.DB, cfg.JWTSecret, cfg.JWTExpirationHours, tokenBlacklist, appLogger)
	leadService := leads.New(db.DB, scorer, appLogger)
	noteService := leadnote.New(db.DB)
	followupService := followup.New(db.DB, leadService, appLogger)
	dashboardService := dashboard.New(db.DB, leadService, scorer, redisClient, prometheusMetrics, appLogger)
	emailService := email.New(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, appLogger)
	importService := importer.New(leadService, cfg.DefaultPhoneRegion, appLogger)
	exportService := export.New(leadService, scorer, cfg.ExportLocalPath, appLogger)

	// One-time sweep: rewrite legacy status aliases to canonical forms.
	sweepCtx, cancelSweep := context.WithTimeout(context.Background(), 2*time.Minute)
	migrated, err := leadService.MigrateStatuses(sweepCtx)
	cancelSweep()
	if err != nil {
		log.Fatalf("❌ Failed to migrate lead statuses: %v", err)
	}
	if migrated > 0 {
		log.Printf("✅ Migrated %d lead statuses to canonical forms", migrated)
	}

	// Background jobs: nightly rescore, weekly digest
	jobRunner := jobs.New(cfg, leadService, followupService, emailService, dashboardService, appLogger)
	if err := jobRunner.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron jobs: %v", err)
	}
	log.Printf("✅ Cron jobs started (rescore: %q, digest: %q)", cfg.RescoreCronSpec, cfg.DigestCronSpec)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewRequestValidator()

	// Rate limiters
	globalRateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommw.NewRateLimiter(5, 2) // login brute-force guard

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLogger.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "RealtyCRM API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize handlers
	rankOptions := cadence.RankOptions{WindowDays: cfg.FollowUpWindowDays, Cap: cfg.FollowUpListCap}
	authHandler := handlers.NewAuthHandler(authService, emailService, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadService, dashboardService, prometheusMetrics)
	leadNoteHandler := handlers.NewLeadNoteHandler(noteService, leadService, dashboardService, prometheusMetrics)
	followUpHandler := handlers.NewFollowUpHandler(followupService, dashboardService, prometheusMetrics, rankOptions)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	transferHandler := handlers.NewTransferHandler(importService, exportService, dashboardService, prometheusMetrics)

	v1 := e.Group("/api/v1")

	// Ping endpoint (public)
	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	jwtMiddleware := custommw.JWTMiddleware(cfg.JWTSecret, tokenBlacklist)

	// Authentication routes (public, login rate-limited against brute force)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/logout", authHandler.Logout, jwtMiddleware)
		authRoutes.GET("/me", authHandler.Me, jwtMiddleware)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(jwtMiddleware)
	{
		// Leads
		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.POST("", leadHandler.CreateLead)
			leadsGroup.GET("", leadHandler.ListLeads)
			leadsGroup.POST("/import", transferHandler.ImportLeads)
			leadsGroup.GET("/export/csv", transferHandler.ExportCSV)
			leadsGroup.GET("/export/xlsx", transferHandler.ExportXLSX)
			leadsGroup.GET("/:id", leadHandler.GetLead)
			leadsGroup.PATCH("/:id", leadHandler.UpdateLead)
			leadsGroup.DELETE("/:id", leadHandler.DeleteLead)
			leadsGroup.PUT("/:id/status", leadHandler.UpdateLeadStatus)

			// Notes
			leadsGroup.POST("/:id/notes", leadNoteHandler.CreateNote)
			leadsGroup.GET("/:id/notes", leadNoteHandler.ListNotes)
			leadsGroup.PATCH("/:id/notes/:note_id", leadNoteHandler.UpdateNote)
			leadsGroup.DELETE("/:id/notes/:note_id", leadNoteHandler.DeleteNote)

			// Cadence engine
			leadsGroup.GET("/:id/progress", followUpHandler.GetProgress)
			leadsGroup.POST("/:id/actions", followUpHandler.ApplyQuickAction)
		}

		// Workflow catalog and follow-up board
		protected.GET("/workflows", followUpHandler.GetWorkflows)
		protected.GET("/followups", followUpHandler.ListFollowUps)

		// Dashboard
		protected.GET("/dashboard/stats", dashboardHandler.GetStats)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 RealtyCRM API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), auth endpoints 5/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	jobRunner.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
