package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr)
	}
	if !cfg.RunMigrations {
		t.Fatal("expected migrations enabled by default")
	}
	if cfg.RunSeed {
		t.Fatal("expected seeding disabled by default")
	}
}

func TestLoadYAMLFileOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte("addr: \":9000\"\ndatabaseUrl: \"postgres://file\"\nrateLimitPerMinute: 5\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("APP_ADDR", "")

	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Fatalf("expected addr from file, got %s", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://env" {
		t.Fatalf("expected env to win over file, got %s", cfg.DatabaseURL)
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Fatalf("expected rate limit 5 from file, got %d", cfg.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", MaxBodyBytes: 2048, RateLimitPerMinute: 10}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}

	cfg.DatabaseURL = "postgres://x"
	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing IDENTITY_SECRET in production")
	}
}
