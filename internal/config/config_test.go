package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wavebreaker.yml")
	raw := `
server:
  listen: ":9090"
  external_url: "https://wavebreaker.example"
database:
  driver: postgres
  host: db.internal
  port: "5433"
  user: wb
  password: hunter2
  name: wavebreaker
redis:
  addr: "redis.internal:6379"
  channel: "wb:notify"
steam:
  api_key: deadbeef
auth:
  jwt_secret_key: supersecret
  access_token_ttl: 600
  refresh_token_ttl: 86400
musicbrainz:
  enabled: true
news: "hello riders"
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WAVEBREAKER_CONFIG", path)

	cfg, err := Load(testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Host != "db.internal" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Steam.AppID != 12900 {
		t.Errorf("app id = %d, want default 12900", cfg.Steam.AppID)
	}
	if cfg.Auth.AccessTokenTTL != 10*time.Minute {
		t.Errorf("access ttl = %v, want 10m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Errorf("refresh ttl = %v, want 24h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.News != "hello riders" {
		t.Errorf("news = %q", cfg.News)
	}

	dsn := cfg.Database.PostgresDSN()
	for _, want := range []string{"wb:hunter2@db.internal:5433", "/wavebreaker", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("WAVEBREAKER_CONFIG", filepath.Join(t.TempDir(), "nope.yml"))

	cfg, err := Load(testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen == "" {
		t.Error("default listen address empty")
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		t.Errorf("ttl defaults not applied: %v / %v", cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WAVEBREAKER_CONFIG", filepath.Join(t.TempDir(), "nope.yml"))
	t.Setenv("STEAM_API_KEY", "env-key")
	t.Setenv("REDIS_ADDR", "envhost:6379")

	cfg, err := Load(testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Steam.APIKey != "env-key" {
		t.Errorf("steam key = %q, want env override", cfg.Steam.APIKey)
	}
	if cfg.Redis.Addr != "envhost:6379" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
}
