package config

import "os"

// Environment names the runtime environment, set through the ENV
// variable. CI is detected from the CI variable that runners export.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// Env reports the current environment, defaulting to development.
func Env() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether the server runs with production settings.
// Production requires real secrets; see ValidateConfig.
func IsProduction() bool {
	return Env() == Production
}
