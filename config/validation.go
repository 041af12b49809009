package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that production has real credentials instead of
// the development defaults.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBPassword == "" || cfg.DBPassword == "postgres" {
		errors = append(errors, "db_password secret is required in production")
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == "dev-secret" {
		errors = append(errors, "jwt_secret secret is required in production")
	}
	if cfg.RedisPassword == "" {
		errors = append(errors, "redis_password secret is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}
