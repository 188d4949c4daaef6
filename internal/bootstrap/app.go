package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studyhub-backend/internal/account"
	"studyhub-backend/internal/documents"
	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/flashcards"
	"studyhub-backend/internal/jobs"
	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/llm/openai"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/queue"
	"studyhub-backend/internal/quizzes"
	"studyhub-backend/internal/services/health"
	"studyhub-backend/internal/shared/auth"
	"studyhub-backend/internal/shared/config"
	"studyhub-backend/internal/shared/server"
	"studyhub-backend/internal/shared/storage/db"
	"studyhub-backend/internal/shared/storage/object"
	localstore "studyhub-backend/internal/shared/storage/object/local"
	miniostore "studyhub-backend/internal/shared/storage/object/minio"
	s3store "studyhub-backend/internal/shared/storage/object/s3"
	"studyhub-backend/internal/shared/telemetry"
	"studyhub-backend/internal/subjects"
)

const jobPollWindow = time.Second

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Queue    queue.Client
	JobStore jobs.Store
	Pipeline *pipeline.Pipeline
	Health   *health.Service

	SubjectsService  *subjects.Service
	DocumentsService *documents.Service
	Jobs             *jobs.Service
	Sweeper          *jobs.Sweeper

	closers []func() error
}

// Build wires every dependency and the router. ctx bounds connection setup
// and is the parent of in-process background jobs.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, sqlDB.Close)
		app.Health.Register("database", sqlDB.PingContext)
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	if app.JobStore, err = buildJobStore(ctx, app, cfg); err != nil {
		app.Close()
		return nil, err
	}

	if strings.TrimSpace(cfg.SQSQueueURL) != "" {
		q, err := queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.Store.Region)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Queue = q
	}

	p, extractor, err := NewPipeline(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Pipeline = p

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.Env == "production")
	if err != nil {
		app.Close()
		return nil, err
	}

	var (
		subjectRepo subjects.Repo
		docRepo     documents.DocumentsRepo
		cardRepo    flashcards.Repo
		quizRepo    quizzes.Repo
		claimers    account.Collections
	)
	if app.DB != nil {
		subjectRepo = &subjects.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		cardRepo = &flashcards.PGRepo{DB: app.DB}
		quizRepo = &quizzes.PGRepo{DB: app.DB}
	} else {
		ms, md, mf, mq := subjects.NewMemoryRepo(), documents.NewMemoryRepo(), flashcards.NewMemoryRepo(), quizzes.NewMemoryRepo()
		subjectRepo, docRepo, cardRepo, quizRepo = ms, md, mf, mq
		claimers = account.Collections{Subjects: ms, Documents: md, Flashcards: mf, Quizzes: mq}
	}

	app.SubjectsService = subjects.NewService(subjectRepo)
	app.DocumentsService = documents.NewService(docRepo, cardRepo, quizRepo, app.Store, app.Pipeline, extractor, app.SubjectsService)
	app.Jobs = jobs.NewService(ctx, app.JobStore, app.DocumentsService, app.Queue)

	app.Sweeper, err = jobs.NewSweeper(app.JobStore, cfg.JobStaleAfter, cfg.JobSweepSchedule)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: verifier,
		Health:   app.Health,
		Handlers: []server.RouteRegistrar{
			subjects.NewHandler(app.SubjectsService),
			documents.NewHandler(app.DocumentsService, app.Jobs, app.Queue != nil, cfg.Limits.MaxUploadBytes),
			flashcards.NewHandler(cardRepo),
			quizzes.NewHandler(quizRepo),
			jobs.NewHandler(app.Jobs, jobPollWindow),
			account.NewHandler(account.NewService(app.DB, claimers)),
		},
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": err})
		}
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.Store.Type {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.Store.Region,
			Bucket:   cfg.Store.Bucket,
			Prefix:   cfg.Store.Prefix,
			Endpoint: cfg.Store.Endpoint,
			KMSKeyID: cfg.Store.SSEKMSKeyID,
		})
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.Store.MinioEndpoint,
			AccessKey: cfg.Store.MinioAccessKey,
			SecretKey: cfg.Store.MinioSecretKey,
			Bucket:    cfg.Store.Bucket,
			UseSSL:    cfg.Store.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.Store.LocalDir), nil
	}
}

func buildJobStore(ctx context.Context, app *App, cfg config.Config) (jobs.Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if strings.TrimSpace(cfg.SQSQueueURL) != "" {
			return nil, errors.New("REDIS_URL is required when SQS_QUEUE_URL is set")
		}
		return jobs.NewMemoryStore(), nil
	}
	rs, err := jobs.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	app.closers = append(app.closers, rs.Close)
	app.Health.Register("redis", rs.Ping)
	return rs, nil
}

// NewPipeline builds the document pipeline and the extractor it validates
// uploads with.
func NewPipeline(cfg config.Config) (*pipeline.Pipeline, *extract.Extractor, error) {
	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}
	extractor := extract.New(cfg.Limits.MaxUploadBytes)
	return pipeline.New(extractor, generator, pipelineConfig(cfg)), extractor, nil
}

func buildGenerator(cfg config.Config) (*llm.Client, error) {
	provider, err := openai.NewClient(openai.Options{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		telemetry.Warn("bootstrap.llm.not_configured", map[string]any{"reason": "OPENAI_API_KEY empty"})
	}
	return llm.NewClient(llm.NewRetryingCompleter(provider, cfg.LLM.MaxRetries)), nil
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.ChunkSize = cfg.Limits.ChunkSize
	pc.ChunkPause = cfg.Limits.ChunkPause
	pc.MinTextLength = cfg.Limits.MinTextLength
	pc.DefaultModel = cfg.LLM.Model
	pc.AllowedModels = []string{config.ModelQuality, config.ModelFast}
	pc.DefaultFlashcardCount = cfg.Limits.DefaultFlashcardCount
	pc.DefaultQuizCount = cfg.Limits.DefaultQuizCount
	pc.MinCount = config.MinGenerationCount
	pc.MaxCount = config.MaxGenerationCount
	pc.Timeout = cfg.Limits.Timeout
	return pc
}
