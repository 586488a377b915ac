package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mechamind.backend/internal/config"
	"mechamind.backend/internal/infrastructure/datasources/postgres"
	"mechamind.backend/internal/infrastructure/jobs"
	"mechamind.backend/internal/infrastructure/llm"
	"mechamind.backend/internal/infrastructure/mail"
	"mechamind.backend/internal/infrastructure/repositories"
	"mechamind.backend/internal/interfaces/http/handlers"
	"mechamind.backend/internal/interfaces/http/middleware"
	"mechamind.backend/internal/interfaces/http/schema"
	"mechamind.backend/internal/usecases"
	"mechamind.backend/pkg/jwt"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = postgres.NewConnection
	migrateDB       = postgres.Migrate
	newSessionStore = redis.NewSessionStore
	newChatModel    = func(ctx context.Context, cfg config.AIConfig) (usecases.ChatModel, error) {
		return llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	}
	newMailer = func(cfg config.MailConfig) usecases.CodeSender {
		return mail.NewDispatcherFromConfig(cfg)
	}
	runServer = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)

	if err := migrateDB(db); err != nil {
		return err
	}
	logger.Info(ctx, "Connected to PostgreSQL")

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	chatModel, err := newChatModel(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to initialize chat model: %w", err)
	}

	chatValidator, err := schema.ChatRequest()
	if err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	partRepo := repositories.NewCarPartRepository(db)
	oilRepo := repositories.NewOilChangeRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, verificationRepo, uow, jwtService, newMailer(cfg.Mail), sessionStore, usecases.AuthOptions{
		CodeTTL:    cfg.OTP.TTL,
		ExposeCode: cfg.OTP.ExposeCode,
	})
	chatUsecase := usecases.NewChatUsecase(chatRepo, partRepo, chatModel, redis.NewLocker(), usecases.ChatOptions{
		MaxAttempts:     cfg.AI.MaxRetries,
		RetryDelay:      cfg.AI.RetryDelay,
		GenerateTimeout: cfg.AI.Timeout,
	})
	inventoryUsecase := usecases.NewInventoryUsecase(partRepo)
	maintenanceUsecase := usecases.NewMaintenanceUsecase(oilRepo)
	adminUsecase := usecases.NewAdminUsecase(userRepo, statsRepo, cfg.Security.AdminSecretKey)

	r := newRouter(cfg, routeDeps{
		authHandler:      handlers.NewAuthHandler(authUsecase, cfg.Server.IsProduction()),
		chatHandler:      handlers.NewChatHandler(chatUsecase, chatValidator),
		partHandler:      handlers.NewPartHandler(inventoryUsecase),
		oilChangeHandler: handlers.NewOilChangeHandler(maintenanceUsecase),
		adminHandler:     handlers.NewAdminHandler(adminUsecase),
		authMiddleware: middleware.SessionAuth(middleware.AuthConfig{
			JWT:               jwtService,
			Sessions:          sessionStore,
			AllowUserIDHeader: cfg.Security.AllowUserIDHeader && !cfg.Server.IsProduction(),
		}),
		adminMiddleware: middleware.RequireAdmin(adminUsecase),
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupJob := jobs.NewVerificationCleanupJob(verificationRepo, cfg.OTP.CleanupInterval, jobs.DefaultRetention)
	go cleanupJob.Start(runCtx)
	defer cleanupJob.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "MechaMind backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)
	if err := runServer(runCtx, srv); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
