package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Env  string
	Port int

	Storage    string
	DBURL      string
	SQLitePath string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	CORSOrigins  []string
	MaxBodyBytes int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	OTLPEndpoint    string
	ServiceName     string
	TraceSampleRate float64

	SeedEmail    string
	SeedPassword string
	SeedName     string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 4000),

		Storage:    strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBURL:      getEnv("DATABASE_URL", buildDBURL()),
		SQLitePath: getEnv("SQLITE_PATH", "taskhub.db"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTTTL:     getEnvDuration("JWT_TTL", 7*24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),

		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "taskhub-api"),
		TraceSampleRate: getEnvFloat("OTEL_TRACES_SAMPLE_RATE", 1),

		SeedEmail:    getEnv("SEED_EMAIL", ""),
		SeedPassword: getEnv("SEED_PASSWORD", ""),
		SeedName:     getEnv("SEED_NAME", ""),
	}
}

// Validate reports settings the server cannot safely start with.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageMemory, StoragePostgres, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be one of memory, postgres, sqlite (got %q)", c.Storage))
	}

	if c.JWTSecret == "" && !c.IsDevLike() {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 && !c.IsDevLike() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}

	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "test"
}

// Secret returns the signing secret, falling back to a fixed development value.
func (c Config) Secret() string {
	if c.JWTSecret == "" && c.IsDevLike() {
		return "taskhub-dev-secret-change-me"
	}
	return c.JWTSecret
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "taskhub")
	pass := getEnv("DB_PASSWORD", "taskhub")
	name := getEnv("DB_NAME", "taskhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			slog.Warn("invalid duration in environment, using default", "key", key, "default", fallback.String())
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)

		if err != nil {
			slog.Warn("invalid number in environment, using default", "key", key, "default", fallback)
			return fallback
		}

		return f
	}
	return fallback
}

func splitList(raw string) []string {
	out := make([]string, 0)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}
