package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported generation model selectors.
const (
	ModelQuality = "gpt-4-turbo-preview"
	ModelFast    = "gpt-3.5-turbo"
)

// Generation count bounds accepted from callers.
const (
	MinGenerationCount = 5
	MaxGenerationCount = 50
)

// Config holds application configuration.
type Config struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	Env               string        `envconfig:"APP_ENV" default:"dev"`
	CORSAllowOrigin   []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	SQSQueueURL       string        `envconfig:"SQS_QUEUE_URL"`
	JWTSecret         string        `envconfig:"JWT_SECRET"`
	RateLimitRPS      float64       `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst    int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"2"`
	JobStaleAfter     time.Duration `envconfig:"JOB_STALE_AFTER" default:"30m"`
	JobSweepSchedule  string        `envconfig:"JOB_SWEEP_SCHEDULE" default:"@every 5m"`

	Store  StoreConfig
	LLM    LLMConfig
	Limits PipelineConfig
}

// StoreConfig selects and configures the raw upload archive.
type StoreConfig struct {
	Type           string `envconfig:"OBJECT_STORE_TYPE" default:"local"`
	LocalDir       string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	Bucket         string `envconfig:"S3_BUCKET" default:"studyhub-files"`
	Region         string `envconfig:"S3_REGION"`
	Prefix         string `envconfig:"S3_PREFIX"`
	Endpoint       string `envconfig:"S3_ENDPOINT"`
	SSEKMSKeyID    string `envconfig:"SSE_KMS_KEY_ID"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

// LLMConfig configures the generation client.
type LLMConfig struct {
	APIKey      string        `envconfig:"OPENAI_API_KEY"`
	Model       string        `envconfig:"LLM_MODEL" default:"gpt-4-turbo-preview"`
	Timeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"120s"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"4000"`
	Temperature float32       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	MaxRetries  uint          `envconfig:"LLM_MAX_RETRIES" default:"3"`
}

// PipelineConfig bounds document processing.
type PipelineConfig struct {
	ChunkSize             int           `envconfig:"CHUNK_SIZE" default:"3000"`
	ChunkPause            time.Duration `envconfig:"CHUNK_PAUSE" default:"1s"`
	MinTextLength         int           `envconfig:"MIN_TEXT_LENGTH" default:"50"`
	MaxUploadBytes        int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	DefaultFlashcardCount int           `envconfig:"DEFAULT_FLASHCARD_COUNT" default:"10"`
	DefaultQuizCount      int           `envconfig:"DEFAULT_QUIZ_COUNT" default:"10"`
	Timeout               time.Duration `envconfig:"PIPELINE_TIMEOUT" default:"10m"`
}

// Load reads configuration from the environment, after a best-effort .env load.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	return cfg
}

// Parse processes the environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Store.Type = normalizeStoreType(cfg.Store.Type)
	cfg.CORSAllowOrigin = trimAll(cfg.CORSAllowOrigin)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges envconfig cannot express.
func (c Config) Validate() error {
	if !IsSupportedModel(c.LLM.Model) {
		return fmt.Errorf("unsupported LLM_MODEL %q", c.LLM.Model)
	}
	if err := ValidateCount("DEFAULT_FLASHCARD_COUNT", c.Limits.DefaultFlashcardCount); err != nil {
		return err
	}
	if err := ValidateCount("DEFAULT_QUIZ_COUNT", c.Limits.DefaultQuizCount); err != nil {
		return err
	}
	if c.Limits.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

// IsSupportedModel reports whether model is one of the two selectors.
func IsSupportedModel(model string) bool {
	return model == ModelQuality || model == ModelFast
}

// ValidateCount checks a flashcard or quiz target count.
func ValidateCount(name string, n int) error {
	if n < MinGenerationCount || n > MaxGenerationCount {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, MinGenerationCount, MaxGenerationCount, n)
	}
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, p := range in {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}
