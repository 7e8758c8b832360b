package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the API server.
// Values come from an optional YAML file; environment variables always win.
// Secrets (JWT key, database DSN) should only be set through the environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Retry    RetryConfig    `yaml:"retry"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:":8008"`
	Mode            string        `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig selects the gorm dialector and its connection string.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or mysql.
	Driver       string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN          string `yaml:"-" env:"DB_DSN" env-default:"project-management.db"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	LogLevel     string `yaml:"log_level" env:"DB_LOG_LEVEL" env-default:"warn"`
}

// JWTConfig controls token issuance and validation.
type JWTConfig struct {
	Secret   string        `yaml:"-" env:"JWT_SECRET" env-default:"development-insecure-secret-change-me"`
	Issuer   string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"project-management-api"`
	Lifetime time.Duration `yaml:"lifetime" env:"JWT_LIFETIME" env-default:"60m"`
}

// AuthConfig holds password hashing settings.
type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"12"`
}

// LogConfig selects zap level and encoder.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RetryConfig bounds retries around task read-modify-write-audit transactions.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"3"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"RETRY_INITIAL_DELAY" env-default:"50ms"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"RETRY_MAX_DELAY" env-default:"1s"`
}

// CacheConfig holds TTLs for static catalog data.
type CacheConfig struct {
	RoleCatalogTTL time.Duration `yaml:"role_catalog_ttl" env:"CACHE_ROLE_CATALOG_TTL" env-default:"1h"`
}

// Load reads path (if it exists) and applies environment overrides.
// An empty path or a missing file means environment-only configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			return cfg, cfg.validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.JWT.Lifetime <= 0 {
		return errors.New("jwt lifetime must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}
