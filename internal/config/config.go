package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		Color bool   `yaml:"color"`
	} `yaml:"log"`
	Store struct {
		// Driver selects the result and account store: memory, postgres or sqlite.
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Auth struct {
		JWTSecret  string `yaml:"jwt_secret"`
		TokenTTL   string `yaml:"token_ttl"`
		AdminEmail string `yaml:"admin_email"`
	} `yaml:"auth"`
	Quiz struct {
		Duration       string `yaml:"duration"`
		WarningAt      string `yaml:"warning_at"`
		Checkpoint     string `yaml:"checkpoint"`
		Tick           string `yaml:"tick"`
		SnapshotMaxAge string `yaml:"snapshot_max_age"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Default is the configuration used for any key the file leaves out.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Store.Driver = "memory"
	cfg.Store.SQLitePath = "quiz.db"
	cfg.Redis.TTL = "24h"
	cfg.Auth.TokenTTL = "24h"
	cfg.Quiz.Duration = "30m"
	cfg.Quiz.WarningAt = "5m"
	cfg.Quiz.Checkpoint = "1m"
	cfg.Quiz.Tick = "1s"
	cfg.Quiz.SnapshotMaxAge = "24h"
	return cfg
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Server.Port, "PORT")
	override(&c.Auth.JWTSecret, "JWT_SECRET")
	override(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	override(&c.Postgres.URL, "POSTGRES_URL")
	override(&c.Redis.Addr, "REDIS_ADDR")
	override(&c.Store.Driver, "STORE_DRIVER")
	c.Auth.AdminEmail = strings.ToLower(strings.TrimSpace(c.Auth.AdminEmail))
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
