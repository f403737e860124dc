package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects postgres or a sqlite file through Driver.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig is optional. An empty URL and Host disables caching and the
// shared rate limiter.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlannerConfig tunes the optimization engine.
type PlannerConfig struct {
	TimeLimit          time.Duration   `mapstructure:"time_limit"`
	MaxBranches        int64           `mapstructure:"max_branches"`
	MaxServings        int             `mapstructure:"max_servings"`
	MaxDays            int             `mapstructure:"max_days"`
	MaxModelCells      int             `mapstructure:"max_model_cells"`
	CalorieBandPercent int             `mapstructure:"calorie_band_percent"`
	FlatMealCost       float64         `mapstructure:"flat_meal_cost"`
	Weights            planner.Weights `mapstructure:"weights"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Limit  int           `mapstructure:"limit"`
	// LocalRPS and LocalBurst drive the in-process limiter used without Redis.
	LocalRPS   float64 `mapstructure:"local_rps"`
	LocalBurst int     `mapstructure:"local_burst"`
}

// ArchiveConfig controls copying finished plans to S3.
type ArchiveConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	Endpoint      string        `mapstructure:"endpoint"`
	Prefix        string        `mapstructure:"prefix"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LoadConfig loads configuration from the file named by PLANNER_CONFIG_FILE
// (or ./config.yaml), PLANNER_* environment variables and Docker secrets.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("PLANNER_CONFIG_FILE"))
}

// Load reads configuration with configPath as the optional YAML file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Environment = GetEnvironment()
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "planner")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "planner.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("planner.time_limit", planner.DefaultTimeLimit.String())
	v.SetDefault("planner.max_branches", 0)
	v.SetDefault("planner.max_servings", planner.DefaultMaxServings)
	v.SetDefault("planner.max_days", 28)
	v.SetDefault("planner.max_model_cells", planner.DefaultMaxModelCells)
	v.SetDefault("planner.calorie_band_percent", planner.DefaultCalorieBandPercent)
	v.SetDefault("planner.flat_meal_cost", planner.DefaultFlatMealCost)
	v.SetDefault("planner.weights.cook_session", planner.DefaultWeights().CookSession)
	v.SetDefault("planner.weights.prep_minute", planner.DefaultWeights().PrepMinute)

	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("rate_limit.window", "1h")
	v.SetDefault("rate_limit.limit", 30)
	v.SetDefault("rate_limit.local_rps", 1.0)
	v.SetDefault("rate_limit.local_burst", 5)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "alchemorsel-meal-plans")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.prefix", "plans")
	v.SetDefault("archive.presign_expiry", "15m")
}

// applySecrets fills sensitive values that were not configured from Docker
// secrets.
func applySecrets(cfg *Config) {
	if cfg.Database.Password == "" {
		cfg.Database.Password = readSecret("db_password")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = readSecret("jwt_secret")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = readSecret("redis_password")
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = readSecret("redis_url")
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DSN returns the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != "" || c.Redis.Host != ""
}

// PlannerOptions converts the planner section into engine options.
func (c *Config) PlannerOptions() planner.Options {
	opts := planner.DefaultOptions()
	opts.TimeLimit = c.Planner.TimeLimit
	opts.MaxBranches = c.Planner.MaxBranches
	opts.MaxServings = c.Planner.MaxServings
	opts.CalorieBandPercent = c.Planner.CalorieBandPercent
	opts.FlatMealCost = c.Planner.FlatMealCost
	weights := c.Planner.Weights
	opts.Weights = &weights
	opts.MaxModelCells = c.Planner.MaxModelCells
	return opts
}
