package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/database"
	"github.com/saralgov/licence-backend/internal/exam"
	"github.com/saralgov/licence-backend/internal/handler"
	"github.com/saralgov/licence-backend/internal/logger"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/router"
	"github.com/saralgov/licence-backend/internal/service"
	"github.com/saralgov/licence-backend/internal/validator"
	"github.com/saralgov/licence-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Licence Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewExamResultRepository(pool)
	kycRepo := repository.NewKYCRepository(pool)
	blogRepo := repository.NewBlogRepository(pool)
	licenceRepo := repository.NewLicenceRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	adminService := service.NewAdminService(adminRepo, authService)
	questionService := service.NewQuestionService(questionRepo, rdb, log)
	kycService := service.NewKYCService(kycRepo)
	blogService := service.NewBlogService(blogRepo)
	mediaService := service.NewMediaService(cfg)
	integrityLog := service.NewIntegrityLog(rdb, log)

	questionPool := service.NewQuestionPool(questionRepo, rdb, log)
	resultRecorder := service.NewResultRecorder(resultRepo, licenceRepo, rdb, log)

	examManager := exam.NewManager(questionPool, resultRecorder, exam.SystemClock(), nil, exam.Config{
		TotalQuestions:       cfg.ExamTotalQuestions,
		Duration:             time.Duration(cfg.ExamDurationMinutes) * time.Minute,
		PassingScore:         cfg.ExamPassingScore,
		MaxIntegrityWarnings: cfg.ExamMaxWarnings,
	}, log)
	examService := service.NewExamService(cfg, examManager, kycRepo, resultRepo, licenceRepo, questionPool)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService, adminService),
		Exam:     handler.NewExamHandler(examService),
		Question: handler.NewQuestionHandler(questionService),
		KYC:      handler.NewKYCHandler(kycService),
		Blog:     handler.NewBlogHandler(blogService),
		Admin:    handler.NewAdminHandler(examService),
		Media:    handler.NewMediaHandler(mediaService),
		WS:       handler.NewWSHandler(examService, integrityLog, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(pool, rdb, licenceRepo, log)
	integrityWorker := worker.NewIntegrityWorker(pool, rdb, log)

	go resultWorker.Start(workerCtx)
	go integrityWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the question pools into Redis BEFORE accepting traffic, so
	// the first session of the day does not pay the cold-cache cost.
	for _, lang := range []string{model.LanguageEnglish, model.LanguageNepali, ""} {
		if _, err := questionPool.Pool(ctx, lang); err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("Question pool prewarm failed")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}
