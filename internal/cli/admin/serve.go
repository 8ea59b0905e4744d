package admin

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptuary/promptuary/internal/api/handlers"
	"github.com/promptuary/promptuary/internal/config"
	"github.com/promptuary/promptuary/internal/database"
	"github.com/promptuary/promptuary/internal/guardrails"
	"github.com/promptuary/promptuary/internal/jobs"
	"github.com/promptuary/promptuary/internal/logging"
	"github.com/promptuary/promptuary/internal/ollama"
	"github.com/promptuary/promptuary/internal/ratelimit"
	"github.com/promptuary/promptuary/internal/repository"
	"github.com/promptuary/promptuary/internal/server"
	"github.com/promptuary/promptuary/internal/service"
	"github.com/promptuary/promptuary/internal/storage"
	"github.com/promptuary/promptuary/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the promptuary API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Logger:           logger,
		})
		if err != nil {
			logger.Warn("telemetry init failed (continuing without tracing)", zap.Error(err))
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL, database.DefaultMigrationsURL, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	promptRepo := repository.NewPromptRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	libraryRepo := repository.NewLibraryRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	auditLogRepo := repository.NewAuditLogRepository(pool)
	guardrailConfigRepo := repository.NewGuardrailConfigRepository(pool)
	guardrailLogRepo := repository.NewGuardrailLogRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	auditSvc := service.NewAuditService(auditLogRepo, logger)
	authSvc := service.NewAuthService(libraryRepo, apiKeyRepo, uuidGen, logger)
	authSvc.SetAuditor(auditSvc)

	if cfg.InitLibraryName != "" {
		result, err := authSvc.EnsureDefaultLibrary(ctx, cfg.InitLibraryName, cfg.InitAPIKey)
		if err != nil {
			return fmt.Errorf("failed to bootstrap initial library: %w", err)
		}
		if result.Created {
			logger.Info("bootstrap: created library",
				zap.String("name", cfg.InitLibraryName),
				zap.String("library_id", result.Library.ID))
		} else {
			logger.Info("bootstrap: library already exists",
				zap.String("name", cfg.InitLibraryName),
				zap.String("library_id", result.Library.ID))
		}
	}

	ruleSet := guardrails.DefaultRuleSet()
	if cfg.GuardrailRulesPath != "" {
		loaded, err := guardrails.LoadFile(cfg.GuardrailRulesPath)
		if err != nil {
			return fmt.Errorf("failed to load guardrail rules: %w", err)
		}
		ruleSet = loaded
	}
	engine := guardrails.NewEngine(ruleSet)

	var rulesWatcher *guardrails.Watcher
	if cfg.GuardrailRulesPath != "" {
		rulesWatcher, err = guardrails.NewWatcher(engine, cfg.GuardrailRulesPath, logger)
		if err != nil {
			return fmt.Errorf("failed to watch guardrail rules: %w", err)
		}
		rulesWatcher.Start()
		logger.Info("guardrail rules watcher started", zap.String("path", cfg.GuardrailRulesPath))
	}

	guardrailSvc := service.NewGuardrailService(engine, guardrailConfigRepo, guardrailLogRepo, auditSvc, logger)
	if cfg.GuardrailRulesPath != "" {
		guardrailSvc.SetRulesPath(cfg.GuardrailRulesPath)
	}

	var ollamaClient *ollama.Client
	var assistSvc service.AssistServiceInterface = service.NoOpAssistService{}
	var embeddingClient service.EmbeddingClient
	var embeddingWorker *jobs.Worker
	if cfg.HasOllama() {
		ollamaClient, err = ollama.NewClientWithConfig(ollama.Config{
			BaseURL:             cfg.OllamaURL,
			ChatModel:           cfg.OllamaModel,
			EmbeddingModel:      cfg.OllamaEmbedModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
		if err != nil {
			return fmt.Errorf("failed to create ollama client: %w", err)
		}
		embeddingClient = ollamaClient
		assistSvc = service.NewAssistService(ollamaClient, engine, auditSvc)

		embeddingSvc := service.NewEmbeddingService(ollamaClient, promptRepo)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc, logger)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, 10*time.Second, logger)
		go embeddingWorker.Start(ctx)
		logger.Info("embedding worker started", zap.String("model", cfg.OllamaEmbedModel))
	} else {
		logger.Info("model server not configured, assist and semantic search disabled")
	}

	var exportSvc service.ExportServiceInterface = service.NoOpExportService{}
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("object storage ready", zap.String("bucket", cfg.S3Bucket))
		exportSvc = service.NewExportService(libraryRepo, categoryRepo, promptRepo, s3Client, auditSvc)
	} else {
		logger.Info("object storage not configured, export disabled")
	}

	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	if cfg.HasRedis() {
		redisLimiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RateLimitPerMinute)
		if err != nil {
			return fmt.Errorf("failed to create redis limiter: %w", err)
		}
		limiter = redisLimiter
		logger.Info("rate limiter enabled",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("limit_per_minute", cfg.RateLimitPerMinute))
	}

	searchSvc := service.NewSearchService(searchRepo, embeddingClient, searchLogRepo, logger)
	promptSvc := service.NewPromptService(promptRepo, embeddingJobRepo, txRunner, auditSvc, searchSvc)
	categorySvc := service.NewCategoryService(categoryRepo, auditSvc, searchSvc)
	themeSvc := service.NewThemeService()

	routerCfg := server.RouterConfig{
		AuthValidator:    authSvc,
		Limiter:          limiter,
		Auditor:          auditSvc,
		Logger:           logger,
		PromptHandler:    handlers.NewPromptHandler(promptSvc),
		CategoryHandler:  handlers.NewCategoryHandler(categorySvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		ThemeHandler:     handlers.NewThemeHandler(themeSvc),
		AssistHandler:    handlers.NewAssistHandler(assistSvc),
		GuardrailHandler: handlers.NewGuardrailHandler(guardrailSvc),
		AuditHandler:     handlers.NewAuditHandler(auditSvc),
		ExportHandler:    handlers.NewExportHandler(exportSvc),
		AuthHandler:      handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}
	if rulesWatcher != nil {
		rulesWatcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
