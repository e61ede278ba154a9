package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr               string `yaml:"addr"`
	DatabaseURL        string `yaml:"databaseUrl"`
	IdentitySecret     string `yaml:"identitySecret"`
	FrontendDir        string `yaml:"frontendDir"`
	Environment        string `yaml:"environment"`
	MigrationsDir      string `yaml:"migrationsDir"`
	RunMigrations      bool   `yaml:"runMigrations"`
	RunSeed            bool   `yaml:"runSeed"`
	MaxBodyBytes       int64  `yaml:"maxBodyBytes"`
	RateLimitPerMinute int    `yaml:"rateLimitPerMinute"`
	MetricsEnabled     bool   `yaml:"metricsEnabled"`
	ExportDir          string `yaml:"exportDir"`
}

// Load reads configuration from the environment, with an optional YAML file
// (CONFIG_FILE) applied first so env vars win.
func Load() Config {
	cfg := Config{
		Addr:               ":8080",
		FrontendDir:        "frontend/dist",
		Environment:        "development",
		MigrationsDir:      "migrations",
		RunMigrations:      true,
		RunSeed:            false,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 120,
		MetricsEnabled:     true,
		ExportDir:          "storage/exports",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(raw, &cfg)
		}
	}

	cfg.Addr = getEnv("APP_ADDR", cfg.Addr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.IdentitySecret = getEnv("IDENTITY_SECRET", cfg.IdentitySecret)
	cfg.FrontendDir = getEnv("FRONTEND_DIR", cfg.FrontendDir)
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.RunMigrations = getEnvBool("RUN_MIGRATIONS", cfg.RunMigrations)
	cfg.RunSeed = getEnvBool("RUN_SEED", cfg.RunSeed)
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Environment == "production" && strings.TrimSpace(c.IdentitySecret) == "" {
		return fmt.Errorf("IDENTITY_SECRET must be set in production")
	}
	return nil
}
