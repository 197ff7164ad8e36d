package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Model        ModelConfig
	Knowledge    KnowledgeConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend     string
	DataDir     string
	PostgresDSN string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
}

// Supported document store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// ModelConfig holds the generative model API settings.
type ModelConfig struct {
	APIKey         string
	BaseURL        string
	DefaultModel   string
	TimeoutSeconds int
}

// KnowledgeConfig points at the local knowledge base files folded into
// prompts.
type KnowledgeConfig struct {
	FrameworkPath     string
	KnowledgeBasePath string
	WebsitePath       string
	BestPracticesPath string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := getEnv("STORE_BACKEND", BackendFile)
	switch backend {
	case BackendFile, BackendPostgres, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "training-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 120),
		},
		Store: StoreConfig{
			Backend:     backend,
			DataDir:     getEnv("STORE_DATA_DIR", "data"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPass:   os.Getenv("REDIS_PASSWORD"),
			RedisDB:     redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
		},
		Model: ModelConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			DefaultModel:   getEnv("GEMINI_DEFAULT_MODEL", "models/gemini-2.0-flash-exp"),
			TimeoutSeconds: getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 120),
		},
		Knowledge: KnowledgeConfig{
			FrameworkPath:     getEnv("KNOWLEDGE_FRAMEWORK_PATH", "guiding_north_framework.md"),
			KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", "HRLKnowledgeBase"),
			WebsitePath:       getEnv("KNOWLEDGE_WEBSITE_PATH", "und_housing_website.md"),
			BestPracticesPath: getEnv("KNOWLEDGE_BEST_PRACTICES_PATH", "housing_best_practices.md"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the model API call timeout.
func (m ModelConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
