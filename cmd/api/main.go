package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/leadintake/internal/auth"
	"github.com/BradenHooton/leadintake/internal/background"
	"github.com/BradenHooton/leadintake/internal/cache"
	"github.com/BradenHooton/leadintake/internal/config"
	"github.com/BradenHooton/leadintake/internal/database"
	"github.com/BradenHooton/leadintake/internal/handlers"
	middlewareCustom "github.com/BradenHooton/leadintake/internal/middleware"
	"github.com/BradenHooton/leadintake/internal/queue"
	"github.com/BradenHooton/leadintake/internal/repositories"
	"github.com/BradenHooton/leadintake/internal/routes"
	"github.com/BradenHooton/leadintake/internal/services"
	"github.com/BradenHooton/leadintake/internal/storage"
	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
	pkglogger "github.com/BradenHooton/leadintake/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// notificationTimeout bounds each background notifier call
const notificationTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("rate_limit_backend", cfg.RateLimit.Backend),
		slog.String("email_provider", cfg.Email.Provider),
	)

	ctx := context.Background()

	// Initialize database
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)

	// Submission limiter store
	var (
		attemptStore services.AttemptStore
		memoryStore  *cache.MemoryAttemptStore
		redisClient  *redis.Client
	)
	switch cfg.RateLimit.Backend {
	case "redis":
		redisClient, err = cache.Connect(ctx, cfg.RateLimit.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		// keep keys a little past the window so an entry never expires mid-window
		attemptStore = cache.NewRedisAttemptStore(redisClient, cfg.RateLimit.Window+time.Minute)
	default:
		memoryStore = cache.NewMemoryAttemptStore()
		attemptStore = memoryStore
	}

	limiter := services.NewSubmissionLimiter(attemptStore, services.SubmissionLimitConfig{
		MaxAttempts: cfg.RateLimit.MaxSubmissions,
		Window:      cfg.RateLimit.Window,
	}, logger)

	// Resume storage
	resumeStore := storage.NewResumeStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err := resumeStore.Init(); err != nil {
		logger.Error("failed to prepare upload directory", slog.Any("error", err))
		os.Exit(1)
	}

	// Notifiers
	sender, err := newEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email sender", slog.Any("error", err))
		os.Exit(1)
	}
	notifiers := []services.Notifier{services.NewConfirmationNotifier(sender)}

	var rabbit *queue.RabbitMQ
	if cfg.CRM.AMQPURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.CRM.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", slog.Any("error", err))
			os.Exit(1)
		}
		notifiers = append(notifiers, queue.NewCRMPublisher(rabbit.Ch))
	}
	dispatcher := services.NewNotificationDispatcher(notificationTimeout, logger, notifiers...)

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := services.NewAuthService(userRepo, tokenManager, logger, auditLogger)
	leadService := services.NewLeadService(leadRepo, limiter, resumeStore, dispatcher, logger, auditLogger)

	// Bootstrap first admin user if configured
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := authService.EnsureAdmin(bootCtx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		}
		cancel()
	}

	// Initialize handlers
	leadHandler := handlers.NewLeadHandler(leadService, cfg.Upload.MaxBytes)
	authHandler := handlers.NewAuthHandler(authService)

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.RealIP(ipConfig))
	router.Use(middlewareCustom.Metrics)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Dependencies{
		LeadHandler:     leadHandler,
		AuthHandler:     authHandler,
		TokenManager:    tokenManager,
		UserRepo:        userRepo,
		Health:          db,
		SubmitRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.IPRequestsPerMinute},
		LoginRateLimit:  middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.LoginPerMinute},
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task; redis keys expire on their own
	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()

	var cleanupManager *background.CleanupManager
	if memoryStore != nil {
		cleanupManager = background.NewCleanupManager(memoryStore, cfg.RateLimit.Window, logger, cfg.RateLimit.CleanupInterval)
		go cleanupManager.Start(cleanupCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// let in-flight notifications finish before their connections go away
	dispatcher.Wait()

	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			logger.Error("failed to close RabbitMQ", slog.Any("error", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis", slog.Any("error", err))
		}
	}

	logger.Info("server stopped")
}

func newEmailSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.EmailSender, error) {
	switch cfg.Email.Provider {
	case "ses":
		sender, err := services.NewAWSSESEmailSender(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case "smtp":
		return services.NewSMTPEmailSender(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromAddress,
		), nil
	default:
		return services.NewLogEmailSender(logger), nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
