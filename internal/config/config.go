package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Token ledger backends.
const (
	TokenLedgerMemory = "memory"
	TokenLedgerRedis  = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Token        TokenConfig
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

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Service     string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AdminName             string
	AdminEmail            string
	AdminPassword         string
}

// TokenConfig configures the soulbound token ledger and mint metadata.
type TokenConfig struct {
	Ledger    string
	KeyPrefix string
	Name      string
	Symbol    string
	URIBase   string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "identity-registry"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "identity-registry.db"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Service:     getEnv("APP_NAME", "identity-registry"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminName:             getEnv("ADMIN_NAME", "Registry Admin"),
			AdminEmail:            os.Getenv("ADMIN_EMAIL"),
			AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		},
		Token: TokenConfig{
			Ledger:    strings.ToLower(getEnv("TOKEN_LEDGER", TokenLedgerMemory)),
			KeyPrefix: getEnv("TOKEN_REDIS_PREFIX", "sbt"),
			Name:      getEnv("TOKEN_NAME", "Soulbound Identity"),
			Symbol:    getEnv("TOKEN_SYMBOL", "SBID"),
			URIBase:   getEnv("TOKEN_URI_BASE", "https://example.com/identities/"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Token.Ledger {
	case TokenLedgerMemory, TokenLedgerRedis:
	default:
		return fmt.Errorf("invalid TOKEN_LEDGER %q", c.Token.Ledger)
	}
	return nil
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
