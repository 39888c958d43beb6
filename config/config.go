package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3BucketName   string
	AWSRegion      string

	// Shopping list export
	FontPath string

	// Domain limits
	PageSize          int
	CookingTimeMin    int
	CookingTimeMax    int
	AmountMin         int
	AmountMax         int
	RecipeCreateLimit int

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI, Development, Test, Production:
		if err := loadConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadConfig(cfg *Config) error {
	cfg.ServerPort = lookup("SERVER_PORT", "server_port", "8000")
	cfg.ServerHost = lookup("SERVER_HOST", "server_host", "0.0.0.0")

	cfg.DBDriver = strings.ToLower(lookup("DB_DRIVER", "db_driver", DriverPostgres))
	cfg.DBHost = lookup("DB_HOST", "db_host", "localhost")
	cfg.DBPort = lookup("DB_PORT", "db_port", "5432")
	cfg.DBUser = lookup("DB_USER", "db_user", "postgres")
	cfg.DBPassword = lookup("DB_PASSWORD", "db_password", "")
	cfg.DBName = lookup("DB_NAME", "db_name", "foodgram")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.SQLitePath = lookup("SQLITE_PATH", "sqlite_path", "foodgram.db")

	cfg.RedisURL = lookup("REDIS_URL", "redis_url", "")
	cfg.RedisHost = lookup("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = lookup("REDIS_PORT", "redis_port", "6379")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "redis_password", "")
	cfg.RedisDB = 0

	cfg.JWTSecret = lookup("JWT_SECRET", "jwt_secret", "")
	if cfg.JWTSecret == "" && !cfg.Environment.IsProduction() {
		cfg.JWTSecret = "insecure-development-secret"
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(lookup("TOKEN_TTL", "", "24h")); err != nil {
		return fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg.StorageBackend = strings.ToLower(lookup("STORAGE_BACKEND", "", StorageLocal))
	cfg.MediaRoot = lookup("MEDIA_ROOT", "", "media")
	cfg.MediaURL = lookup("MEDIA_URL", "", "/media/")
	cfg.S3BucketName = lookup("S3_BUCKET_NAME", "s3_bucket_name", "foodgram-recipe-images")
	cfg.AWSRegion = lookup("AWS_REGION", "", "us-east-1")

	cfg.FontPath = lookup("FONT_PATH", "", "data/DejaVuSansCondensed.ttf")

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"PAGE_SIZE", 6, &cfg.PageSize},
		{"COOKING_TIME_MIN", 1, &cfg.CookingTimeMin},
		{"COOKING_TIME_MAX", 32000, &cfg.CookingTimeMax},
		{"AMOUNT_MIN", 1, &cfg.AmountMin},
		{"AMOUNT_MAX", 32000, &cfg.AmountMax},
		{"RECIPE_CREATE_LIMIT", 30, &cfg.RecipeCreateLimit},
	}
	for _, v := range ints {
		n, err := strconv.Atoi(lookup(v.key, "", strconv.Itoa(v.def)))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dest = n
	}

	cfg.CORSOrigins = splitList(lookup("CORS_ORIGINS", "", "http://localhost:3000"))

	cfg.LogLevel = lookup("LOG_LEVEL", "", "info")
	// Console output only where a person reads the terminal.
	defaultFormat := "json"
	if cfg.Environment.IsDevelopment() {
		defaultFormat = "console"
	}
	cfg.LogFormat = lookup("LOG_FORMAT", "", defaultFormat)

	return nil
}

// RedisEnabled reports whether a Redis server has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookup resolves a value from the environment first, then from a Docker
// secret, then falls back to def.
func lookup(envKey, secretName, def string) string {
	if v, ok := os.LookupEnv(envKey); ok && v != "" {
		return v
	}
	if secretName != "" {
		if v := readSecret(secretName); v != "" {
			return v
		}
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
