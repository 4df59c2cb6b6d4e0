package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"studiodesk/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Mongo         MongoConfig
	Memory        MemoryConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	Kafka         KafkaConfig
	ClickHouse    ClickHouseConfig
	AI            AIConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"studiodesk"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port           int           `envconfig:"HTTP_PORT" default:"8000"`
	ReadTimeout    time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"90s"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"60s"`
	SessionHeader  string        `envconfig:"HTTP_SESSION_HEADER" default:"X-Session-ID"`
	DefaultSession string        `envconfig:"HTTP_DEFAULT_SESSION" default:"default_user"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type MongoConfig struct {
	URL            string        `envconfig:"MONGODB_URL" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"DATABASE_NAME" default:"fitness_studio"`
	MemoryDatabase string        `envconfig:"MEMORY_DATABASE_NAME" default:"agent_memory"`
	Timeout        time.Duration `envconfig:"MONGODB_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"MONGODB_MAX_POOL" default:"50"`
}

// MemoryConfig controls the per-session conversation log.
// Zero MaxPerSession or MaxAge disables that retention rule.
type MemoryConfig struct {
	Backend       string        `envconfig:"MEMORY_BACKEND" default:"mongo"`
	RecentLimit   int           `envconfig:"MEMORY_RECENT_LIMIT" default:"5"`
	MaxPerSession int           `envconfig:"MEMORY_MAX_PER_SESSION" default:"50"`
	MaxAge        time.Duration `envconfig:"MEMORY_MAX_AGE" default:"720h"`
	SweepInterval time.Duration `envconfig:"MEMORY_SWEEP_INTERVAL" default:"1h"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"studiodesk"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CacheConfig struct {
	DashboardTTL time.Duration `envconfig:"CACHE_DASHBOARD_TTL" default:"60s"`
}

type RateLimitConfig struct {
	AgentPerMinute int `envconfig:"RATE_LIMIT_AGENT_PER_MINUTE" default:"10"`
	Burst          int `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"studiodesk"`
}

type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"studiodesk"`
}

type AIConfig struct {
	Provider         string        `envconfig:"AI_PROVIDER" default:"gemini"`
	GoogleKey        string        `envconfig:"GOOGLE_API_KEY"`
	OpenAIKey        string        `envconfig:"OPENAI_API_KEY"`
	Model            string        `envconfig:"AI_MODEL" default:"gemini-1.5-flash"`
	TranslationModel string        `envconfig:"AI_TRANSLATION_MODEL"`
	Temperature      float32       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	MaxIterations    int           `envconfig:"AI_MAX_ITERATIONS" default:"3"`
	MaxRPM           int           `envconfig:"AI_MAX_RPM" default:"10"`
	Timeout          time.Duration `envconfig:"AI_TIMEOUT" default:"45s"`
}

// APIKey returns the credential of the selected provider.
func (c AIConfig) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case "openai":
		return c.OpenAIKey
	default:
		return c.GoogleKey
	}
}

// TranslationModelName falls back to the agent model when no dedicated model is set.
func (c AIConfig) TranslationModelName() string {
	if c.TranslationModel != "" {
		return c.TranslationModel
	}
	return c.Model
}

type ErrorTrackingConfig struct {
	Enabled     bool    `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string  `envconfig:"SENTRY_DSN"`
	Environment string  `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
	SampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	var errs errors.MultiError

	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai":
		if c.AI.APIKey() == "" {
			errs.Add(errors.Wrapf(errors.ErrMissingCredentials, "AI_PROVIDER=%s requires its API key (GOOGLE_API_KEY or OPENAI_API_KEY)", c.AI.Provider))
		}
	default:
		errs.Add(errors.NewValidationError("AI_PROVIDER", "must be gemini or openai", c.AI.Provider))
	}

	switch c.Memory.Backend {
	case "mongo", "postgres":
	default:
		errs.Add(errors.NewValidationError("MEMORY_BACKEND", "must be mongo or postgres", c.Memory.Backend))
	}

	if c.Memory.RecentLimit <= 0 {
		errs.Add(errors.NewValidationError("MEMORY_RECENT_LIMIT", "must be positive", c.Memory.RecentLimit))
	}
	if c.Memory.MaxPerSession < 0 {
		errs.Add(errors.NewValidationError("MEMORY_MAX_PER_SESSION", "must not be negative", c.Memory.MaxPerSession))
	}
	if c.AI.MaxIterations <= 0 {
		errs.Add(errors.NewValidationError("AI_MAX_ITERATIONS", "must be positive", c.AI.MaxIterations))
	}
	if c.ErrorTracking.Enabled && c.ErrorTracking.SentryDSN == "" {
		errs.Add(errors.NewValidationError("SENTRY_DSN", "required when error tracking is enabled", ""))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs.Add(errors.NewValidationError("KAFKA_BROKERS", "required when kafka is enabled", ""))
	}

	return errs.ToError()
}

// LoadForTools reads configuration without requiring LLM credentials.
// Used by the seeder, which only talks to MongoDB.
func LoadForTools() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	return &cfg, nil
}
