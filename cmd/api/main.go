package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"hiraya/internal/cache"
	"hiraya/internal/config"
	"hiraya/internal/database"
	"hiraya/internal/handler"
	"hiraya/internal/logger"
	"hiraya/internal/middleware"
	"hiraya/internal/repository"
	"hiraya/internal/service"
	"hiraya/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	stateStore := cache.NewRedisStateStore(redisClient)

	// Repositories
	userRepository := repository.NewSQLXUserRepository(db)
	contentRepository := repository.NewSQLXContentRepository(db)
	progressRepository := repository.NewSQLXProgressRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)

	// Services
	authService, err := service.NewAuthService(userRepository, stateStore, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	contentService := service.NewContentService(contentRepository, progressRepository)
	scoringService := service.NewScoringService(contentService, contentRepository, attemptRepository)
	progressService := service.NewProgressService(progressRepository, attemptRepository, contentRepository, contentService)

	validator := validation.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Auth.FrontendURL)
	contentHandler := handler.NewContentHandler(contentService, validator, db)
	progressHandler := handler.NewProgressHandler(progressService, scoringService, validator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.Origins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/github", authHandler.GitHubLogin)
	authGroup.Get("/github/callback", authHandler.GitHubCallback)
	authGroup.Get("/google", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Get("/me", middleware.Protected(authService), authHandler.Me)

	// Public content routes
	apiGroup.Get("/providers", contentHandler.GetProviders)
	apiGroup.Get("/provider-statistics", contentHandler.GetProviderStatistics)
	apiGroup.Get("/health", contentHandler.Health)

	// Protected routes
	protected := middleware.Protected(authService)
	apiGroup.Get("/exams/:examId", protected, contentHandler.GetExam)

	apiGroup.Get("/user-preference", protected, progressHandler.GetUserPreference)
	apiGroup.Post("/user-preference", protected, progressHandler.SetUserPreference)
	apiGroup.Post("/favorite", protected, progressHandler.ToggleFavorite)
	apiGroup.Get("/favorites/:examId", protected, progressHandler.GetFavorites)
	apiGroup.Post("/save-answer", protected, progressHandler.SaveAnswer)
	apiGroup.Get("/get-answers/:examId", protected, progressHandler.GetAnswers)
	apiGroup.Post("/submit-answers", protected, progressHandler.SubmitAnswers)
	apiGroup.Get("/incorrect-questions/:examId", protected, progressHandler.GetIncorrectQuestions)
	apiGroup.Get("/exam-progress", protected, progressHandler.GetExamProgress)
	apiGroup.Post("/track-exam-visit", protected, progressHandler.TrackExamVisit)
	apiGroup.Post("/delete-exams", protected, progressHandler.DeleteExams)
	apiGroup.Post("/delete-provider-exams", protected, progressHandler.DeleteProviderExams)
	apiGroup.Post("/delete-all-progress", protected, progressHandler.DeleteAllProgress)
	apiGroup.Get("/sidebar-state", protected, progressHandler.GetSidebarState)
	apiGroup.Post("/sidebar-state", protected, progressHandler.SetSidebarState)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
