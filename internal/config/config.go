package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/utils"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Steam       SteamConfig       `yaml:"steam"`
	Auth        AuthConfig        `yaml:"auth"`
	MusicBrainz MusicBrainzConfig `yaml:"musicbrainz"`
	Media       MediaConfig       `yaml:"media"`
	News        string            `yaml:"news"`
	LogMode     string            `yaml:"log_mode"`
}

type ServerConfig struct {
	Listen      string `yaml:"listen"`
	ExternalURL string `yaml:"external_url"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"` // sqlite only
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type SteamConfig struct {
	APIKey string `yaml:"api_key"`
	AppID  int    `yaml:"app_id"`
}

type AuthConfig struct {
	JWTSecretKey    string        `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration `yaml:"-"`
	RefreshTokenTTL time.Duration `yaml:"-"`

	AccessTokenTTLSeconds  int `yaml:"access_token_ttl"`
	RefreshTokenTTLSeconds int `yaml:"refresh_token_ttl"`
}

type MusicBrainzConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type MediaConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the YAML config file and applies environment overrides on
// top of it. A missing file is not an error; everything has a default.
func Load(log *logger.Logger) (*Config, error) {
	cfg := defaults()

	path := utils.GetEnv("WAVEBREAKER_CONFIG", "config/wavebreaker.yml", log)
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	case os.IsNotExist(err):
		log.Warn("Config file not found, using defaults and environment", "path", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg, log)

	if cfg.Auth.AccessTokenTTLSeconds <= 0 {
		cfg.Auth.AccessTokenTTLSeconds = 3600
	}
	if cfg.Auth.RefreshTokenTTLSeconds <= 0 {
		cfg.Auth.RefreshTokenTTLSeconds = 86400 * 14
	}
	cfg.Auth.AccessTokenTTL = time.Duration(cfg.Auth.AccessTokenTTLSeconds) * time.Second
	cfg.Auth.RefreshTokenTTL = time.Duration(cfg.Auth.RefreshTokenTTLSeconds) * time.Second

	if cfg.Steam.APIKey == "" {
		log.Warn("No Steam Web API key configured, ticket auth will fail")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      ":8080",
			ExternalURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			Name:   "wavebreaker",
			Path:   "wavebreaker.db",
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Channel: "wavebreaker:notifications",
		},
		Steam: SteamConfig{
			AppID: 12900, // Audiosurf
		},
		MusicBrainz: MusicBrainzConfig{
			Enabled:   true,
			BaseURL:   "https://musicbrainz.org/ws/2",
			UserAgent: "Wavebreaker/1.0 (https://github.com/wavebreaker/wavebreaker)",
		},
		Media: MediaConfig{
			Dir: "media",
		},
		News:    "Welcome to Wavebreaker!",
		LogMode: "development",
	}
}

func applyEnvOverrides(cfg *Config, log *logger.Logger) {
	cfg.Server.Listen = utils.GetEnv("LISTEN_ADDR", cfg.Server.Listen, log)
	cfg.Server.ExternalURL = utils.GetEnv("EXTERNAL_URL", cfg.Server.ExternalURL, log)

	cfg.Database.Driver = utils.GetEnv("DB_DRIVER", cfg.Database.Driver, log)
	cfg.Database.Host = utils.GetEnv("POSTGRES_HOST", cfg.Database.Host, log)
	cfg.Database.Port = utils.GetEnv("POSTGRES_PORT", cfg.Database.Port, log)
	cfg.Database.User = utils.GetEnv("POSTGRES_USER", cfg.Database.User, log)
	cfg.Database.Password = utils.GetEnv("POSTGRES_PASSWORD", cfg.Database.Password, log)
	cfg.Database.Name = utils.GetEnv("POSTGRES_NAME", cfg.Database.Name, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Channel = utils.GetEnv("REDIS_CHANNEL", cfg.Redis.Channel, log)

	cfg.Steam.APIKey = utils.GetEnv("STEAM_API_KEY", cfg.Steam.APIKey, log)
	cfg.Steam.AppID = utils.GetEnvAsInt("STEAM_APP_ID", cfg.Steam.AppID, log)

	cfg.Auth.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.Auth.JWTSecretKey, log)
	cfg.Auth.AccessTokenTTLSeconds = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.Auth.AccessTokenTTLSeconds, log)
	cfg.Auth.RefreshTokenTTLSeconds = utils.GetEnvAsInt("REFRESH_TOKEN_TTL", cfg.Auth.RefreshTokenTTLSeconds, log)

	cfg.Media.Dir = utils.GetEnv("MEDIA_DIR", cfg.Media.Dir, log)
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
}

// PostgresDSN assembles the connection string the gorm postgres driver
// expects.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}
