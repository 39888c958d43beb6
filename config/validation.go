package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	// RequirePostgresPassword rejects an empty DB password when the postgres driver is used.
	RequirePostgresPassword bool
	// RequireJWTSecret rejects an empty or development JWT secret.
	RequireJWTSecret bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI:          {RequirePostgresPassword: true},
	Production:  {RequirePostgresPassword: true, RequireJWTSecret: true},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Environment]

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if reqs.RequirePostgresPassword && cfg.DBPassword == "" {
			add("DB_PASSWORD", "required for the postgres driver")
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if reqs.RequireJWTSecret && cfg.JWTSecret == "" {
		add("JWT_SECRET", "required")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}

	switch cfg.StorageBackend {
	case StorageLocal:
		if cfg.MediaRoot == "" {
			add("MEDIA_ROOT", "required for local storage")
		}
	case StorageS3:
		if cfg.S3BucketName == "" {
			add("S3_BUCKET_NAME", "required for s3 storage")
		}
	default:
		add("STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}

	if cfg.PageSize <= 0 {
		add("PAGE_SIZE", "must be positive")
	}
	if cfg.CookingTimeMin > cfg.CookingTimeMax {
		add("COOKING_TIME_MIN", "must not exceed COOKING_TIME_MAX")
	}
	if cfg.AmountMin > cfg.AmountMax {
		add("AMOUNT_MIN", "must not exceed AMOUNT_MAX")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
