package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI is detected
// automatically; otherwise PLANNER_ENV, then ENV, picks it.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	name := os.Getenv("PLANNER_ENV")
	if name == "" {
		name = os.Getenv("ENV")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
