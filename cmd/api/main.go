package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/juanpmar/finko/finko-backend/internal/config"
	"github.com/juanpmar/finko/finko-backend/internal/handler"
	"github.com/juanpmar/finko/finko-backend/internal/identity"
	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/repository/postgres"
	"github.com/juanpmar/finko/finko-backend/internal/service"
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

	// Seed the fixed category catalog
	if err := postgres.SeedCatalog(pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed category catalog")
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	templateRepo := postgres.NewRecurringTemplateRepository(pool)
	budgetPlanRepo := postgres.NewBudgetPlanRepository(pool)
	xpEventRepo := postgres.NewXPEventRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	// Initialize services
	identityClient := identity.NewClient(cfg.IdentityURL, cfg.IdentitySecret)
	authService := service.NewAuthService(identityClient, profileRepo)
	profileService := service.NewProfileService(profileRepo)
	experienceService := service.NewExperienceService(profileRepo, xpEventRepo)
	materializationService := service.NewMaterializationService(templateRepo, transactionRepo)
	transactionService := service.NewTransactionService(transactionRepo, profileRepo, catalogRepo, materializationService, experienceService)
	recurringService := service.NewRecurringService(templateRepo, transactionRepo, catalogRepo)
	budgetPlanService := service.NewBudgetPlanService(budgetPlanRepo, transactionRepo)
	insightsService := service.NewInsightsService(transactionRepo, budgetPlanRepo, catalogRepo, materializationService, experienceService)

	// Initialize auth middleware and rate limiter
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.TokenIssuer, cfg.TokenAudience, cfg.IdentitySecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	recurringHandler := handler.NewRecurringHandler(recurringService, profileService)
	budgetPlanHandler := handler.NewBudgetPlanHandler(budgetPlanService)
	insightsHandler := handler.NewInsightsHandler(insightsService)
	experienceHandler := handler.NewExperienceHandler(experienceService)
	categoryHandler := handler.NewCategoryHandler(catalogRepo)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
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
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, profileHandler, transactionHandler, recurringHandler, budgetPlanHandler, insightsHandler, experienceHandler, categoryHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
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

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
