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

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return "configuration validation failed:\n" + strings.Join(lines, "\n")
}

// ValidateConfig checks the configuration against the requirements of its
// environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.Server.Port == "" {
		add("server.port", "is required")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" {
			add("database.host", "is required for postgres")
		}
		if cfg.Database.Name == "" {
			add("database.name", "is required for postgres")
		}
	case "sqlite":
		if cfg.Database.Path == "" {
			add("database.path", "is required for sqlite")
		}
	default:
		add("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver))
	}

	if cfg.Planner.TimeLimit <= 0 {
		add("planner.time_limit", "must be positive")
	}
	if cfg.Planner.MaxServings < 1 {
		add("planner.max_servings", "must be at least 1")
	}
	if cfg.Planner.MaxDays < 1 {
		add("planner.max_days", "must be at least 1")
	}
	if cfg.Planner.MaxModelCells < 1 {
		add("planner.max_model_cells", "must be at least 1")
	}
	if p := cfg.Planner.CalorieBandPercent; p < 1 || p > 99 {
		add("planner.calorie_band_percent", "must be between 1 and 99")
	}
	if cfg.Planner.FlatMealCost <= 0 {
		add("planner.flat_meal_cost", "must be positive")
	}
	if w := cfg.Planner.Weights; w.CookSession < 0 || w.PrepMinute < 0 {
		add("planner.weights", "must not be negative")
	}

	if cfg.RateLimit.Limit < 1 {
		add("rate_limit.limit", "must be at least 1")
	}
	if cfg.Archive.Enabled && cfg.Archive.Bucket == "" {
		add("archive.bucket", "is required when the archive is enabled")
	}

	if cfg.Environment == Production || cfg.Environment == CI {
		if cfg.Auth.JWTSecret == "" {
			add("auth.jwt_secret", "is required")
		}
		if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
			add("database.password", "is required")
		}
	}
	if cfg.Environment == Production && cfg.Database.Driver != "postgres" {
		add("database.driver", "production requires postgres")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
