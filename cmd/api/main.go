package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/external/backend"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/external/recall"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/external/transcribe"
	httpmw "github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(echomiddleware.LoggerWithConfig(echomiddleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	log.Println("🔧 Initializing dependencies...")

	// Database is used only for run journaling; the pipeline works without it.
	var runRepo repositories.PipelineRunRepository
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Printf("⚠️  Database unavailable, run history disabled: %v", err)
	} else {
		defer database.CloseDB(db)
		if cfg.Server.Environment != "production" {
			log.Println("🔄 Applying schema migrations...")
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		} else {
			log.Println("🔄 Skipping migrations; manage schema with sql-migrate in CI/CD")
		}
		runRepo = repository.NewPipelineRunRepository(db)
	}

	// Redis backs run locks and roster caching; fall back to the in-process
	// store when it is unreachable so a single instance can still run.
	var locker pipeline.RunLocker
	var rosterCache pipeline.RosterCache
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg, logger)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, using in-process locks and cache: %v", err)
		memStore := cache.NewMemoryStore(cfg.Pipeline.LockTTL, cfg.Pipeline.RosterCacheTTL)
		locker = memStore
		rosterCache = memStore
	} else {
		defer redisClient.Close()
		locker = redisClient
		rosterCache = redisClient
	}

	// Recording archival is opt-in.
	var archiver pipeline.RecordingArchiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Initializing object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		archiver = minioClient
	}

	// Service-to-service tokens cover inbound verification and the outgoing
	// backend auth header.
	var jwtManager *jwt.Manager
	if cfg.Auth.JWTSecret != "" {
		log.Println("🔑 Initializing JWT manager...")
		jwtManager = jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	}

	log.Println("🤖 Initializing external clients...")
	backendClient := backend.NewClient(&cfg.Backend, jwtManager, logger)
	recallClient := recall.NewClient(&cfg.Recall)
	chatClient := pkgai.NewChatClient(&cfg.LLM)

	var transcriber pipeline.Transcriber
	switch cfg.Transcribe.Provider {
	case "http":
		transcriber = transcribe.NewHTTPTranscriber(&cfg.Transcribe)
		log.Printf("🎙️  Transcription via service at %s", cfg.Transcribe.ServiceURL)
	default:
		transcriber = transcribe.NewAssemblyAITranscriber(&cfg.Transcribe, logger)
		log.Println("🎙️  Transcription via AssemblyAI")
	}

	log.Println("⚙️  Initializing pipeline service...")
	pipelineService := pipeline.NewService(
		backendClient,
		recallClient,
		transcriber,
		chatClient,
		logger,
		pipeline.Options{
			Archiver:    archiver,
			Locker:      locker,
			RosterCache: rosterCache,
			RunRepo:     runRepo,
			RunTimeout:  cfg.Pipeline.RunTimeout,
		},
	)

	authMW := httpmw.NewAuthMiddleware(cfg.Auth.IncomingToken, jwtManager)

	log.Println("🛣️  Setting up routes...")
	pipelineHandler := handler.NewPipelineHandler(pipelineService, runRepo, logger)
	router := handler.NewRouter(cfg, pipelineHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
