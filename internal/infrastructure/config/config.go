package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment overrides for credentials.
const (
	EnvAPIKey    = "BACKPACK_API_KEY"
	EnvAPISecret = "BACKPACK_API_SECRET"
)

type Config struct {
	Client struct {
		BaseURL            string `toml:"base_url"`
		ProxyURL           string `toml:"proxy_url"`
		TimeoutSec         int    `toml:"timeout_sec"`
		InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	} `toml:"client"`

	Credentials struct {
		APIKey    string `toml:"api_key"`
		APISecret string `toml:"api_secret"`
	} `toml:"credentials"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`

	Journal struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Redis struct {
			Enabled      bool   `toml:"enabled"`
			Addr         string `toml:"addr"`
			Password     string `toml:"password"`
			DB           int    `toml:"db"`
			Prefix       string `toml:"prefix"`
			TTLSeconds   int    `toml:"ttl_seconds"`
			StreamMaxLen int64  `toml:"stream_max_len"` // 0 uses the repo default
		} `toml:"redis"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"journal"`
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Client.TimeoutSec) * time.Second
}

// Load reads a TOML file. An empty path skips the file and uses defaults
// plus environment overrides only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Client.BaseURL) == "" {
		cfg.Client.BaseURL = "https://api.backpack.exchange"
	}
	if cfg.Client.TimeoutSec <= 0 {
		cfg.Client.TimeoutSec = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = "data/journal.db"
	}
	if cfg.Journal.Redis.Prefix == "" {
		cfg.Journal.Redis.Prefix = "backpack"
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.Credentials.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPISecret)); v != "" {
		cfg.Credentials.APISecret = v
	}
}

func validate(cfg *Config) error {
	if cfg.Credentials.APIKey != "" && cfg.Credentials.APISecret == "" {
		return errors.New("credentials.api_secret empty but api_key set")
	}
	if cfg.Client.ProxyURL != "" {
		u, err := url.Parse(cfg.Client.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("client.proxy_url is not a valid url")
		}
	}
	if cfg.Journal.Redis.Enabled && strings.TrimSpace(cfg.Journal.Redis.Addr) == "" {
		return errors.New("journal.redis.addr empty but enabled")
	}
	if cfg.Journal.Postgres.Enabled && strings.TrimSpace(cfg.Journal.Postgres.DSN) == "" {
		return errors.New("journal.postgres.dsn empty but enabled")
	}
	return nil
}
