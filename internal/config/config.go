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
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Engine   EngineConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines actor-token parameters. APIKeyHash is a bcrypt hash of the
// engine API key; APIKey is a plaintext fallback for development setups.
type AuthConfig struct {
	JWTSecret       string
	APIKeyHash      string
	APIKey          string
	TokenTTLMinutes int
	BcryptCost      int
}

// EngineConfig carries the tunable triage policy parameters. The decision
// thresholds and RSI coefficients are deployment policy, not code.
type EngineConfig struct {
	AnalysisTimeoutMS     int
	AuditMaxRetries       int
	TopK                  int
	AutoResolveConfidence int
	AutoResolveSimilarity int
	ClassifierFloor       int
	DecisionCacheTTLSec   int

	RSIBaseline         int
	RSISimilarityWeight int
	RSIConsistencyBonus int
	RSIConsistencyCap   int
	RSIConsistencyFloor int
	RSIVarianceWeight   float64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "triage-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			APIKeyHash:      os.Getenv("AUTH_API_KEY_HASH"),
			APIKey:          getEnv("AUTH_API_KEY", "dev-key"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Engine: EngineConfig{
			AnalysisTimeoutMS:     getEnvAsInt("ENGINE_ANALYSIS_TIMEOUT_MS", 2000),
			AuditMaxRetries:       getEnvAsInt("ENGINE_AUDIT_MAX_RETRIES", 3),
			TopK:                  getEnvAsInt("ENGINE_SIMILARITY_TOP_K", 5),
			AutoResolveConfidence: getEnvAsInt("ENGINE_AUTO_RESOLVE_CONFIDENCE", 80),
			AutoResolveSimilarity: getEnvAsInt("ENGINE_AUTO_RESOLVE_SIMILARITY", 65),
			ClassifierFloor:       getEnvAsInt("ENGINE_CLASSIFIER_FLOOR", 25),
			DecisionCacheTTLSec:   getEnvAsInt("ENGINE_DECISION_CACHE_TTL_SECONDS", 3600),
			RSIBaseline:           getEnvAsInt("ENGINE_RSI_BASELINE", 20),
			RSISimilarityWeight:   getEnvAsInt("ENGINE_RSI_SIMILARITY_WEIGHT", 60),
			RSIConsistencyBonus:   getEnvAsInt("ENGINE_RSI_CONSISTENCY_BONUS", 4),
			RSIConsistencyCap:     getEnvAsInt("ENGINE_RSI_CONSISTENCY_CAP", 20),
			RSIConsistencyFloor:   getEnvAsInt("ENGINE_RSI_CONSISTENCY_FLOOR", 60),
			RSIVarianceWeight:     getEnvAsFloat("ENGINE_RSI_VARIANCE_WEIGHT", 0.5),
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

// AnalysisTimeout returns the latency budget for classification and similarity search.
func (e EngineConfig) AnalysisTimeout() time.Duration {
	if e.AnalysisTimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(e.AnalysisTimeoutMS) * time.Millisecond
}

// DecisionCacheTTL returns the Redis TTL for cached decision records.
func (e EngineConfig) DecisionCacheTTL() time.Duration {
	if e.DecisionCacheTTLSec <= 0 {
		return time.Hour
	}
	return time.Duration(e.DecisionCacheTTLSec) * time.Second
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
