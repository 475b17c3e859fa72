package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config captures the gateway configuration.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	SessionSecret    string
	SessionTTL       time.Duration
	WebhookBaseURL   string
	WebhookAPIKey    string
	WebhookTimeout   time.Duration
	Timezone         string
	SessionPruneCron string
}

// Defaults returns the configuration used when nothing overrides a value.
func Defaults() Config {
	return Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:irfit.db",
		SessionTTL:       7 * 24 * time.Hour,
		WebhookTimeout:   15 * time.Second,
		Timezone:         "Europe/Moscow",
		SessionPruneCron: "@every 1h",
	}
}

// Location resolves the configured display time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load builds the configuration from defaults, the optional YAML file named by
// IRFIT_CONFIG_FILE, and the process environment, in that order of precedence.
//
// Missing required values and unparsable values are collected and reported
// together.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("IRFIT_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("IRFIT_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "IRFIT_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("IRFIT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("IRFIT_SESSION_SECRET")); secret != "" {
		cfg.SessionSecret = secret
	}
	if cfg.SessionSecret == "" {
		missing = append(missing, "IRFIT_SESSION_SECRET")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("IRFIT_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "IRFIT_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if base := strings.TrimSpace(os.Getenv("IRFIT_WEBHOOK_BASE_URL")); base != "" {
		cfg.WebhookBaseURL = base
	}
	if cfg.WebhookBaseURL == "" {
		missing = append(missing, "IRFIT_WEBHOOK_BASE_URL")
	} else if u, err := url.Parse(cfg.WebhookBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "IRFIT_WEBHOOK_BASE_URL")
	}

	if key := strings.TrimSpace(os.Getenv("IRFIT_WEBHOOK_API_KEY")); key != "" {
		cfg.WebhookAPIKey = key
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("IRFIT_WEBHOOK_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "IRFIT_WEBHOOK_TIMEOUT")
		} else {
			cfg.WebhookTimeout = timeout
		}
	}

	if tz := strings.TrimSpace(os.Getenv("IRFIT_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		invalid = append(invalid, "IRFIT_TIMEZONE")
	}

	if spec := strings.TrimSpace(os.Getenv("IRFIT_SESSION_PRUNE_CRON")); spec != "" {
		cfg.SessionPruneCron = spec
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("не заданы обязательные переменные окружения: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("некорректные значения переменных окружения: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return fileCfg.apply(cfg)
}

// fileConfig mirrors Config with durations as strings so YAML files can use
// values such as "15s" or "168h".
type fileConfig struct {
	HTTPPort         int    `yaml:"http_port"`
	SQLiteDSN        string `yaml:"sqlite_dsn"`
	SessionSecret    string `yaml:"session_secret"`
	SessionTTL       string `yaml:"session_ttl"`
	WebhookBaseURL   string `yaml:"webhook_base_url"`
	WebhookAPIKey    string `yaml:"webhook_api_key"`
	WebhookTimeout   string `yaml:"webhook_timeout"`
	Timezone         string `yaml:"timezone"`
	SessionPruneCron string `yaml:"session_prune_cron"`
}

func (f fileConfig) apply(cfg *Config) error {
	if f.HTTPPort > 0 {
		cfg.HTTPPort = f.HTTPPort
	}
	if f.SQLiteDSN != "" {
		cfg.SQLiteDSN = f.SQLiteDSN
	}
	if f.SessionSecret != "" {
		cfg.SessionSecret = f.SessionSecret
	}
	if f.SessionTTL != "" {
		ttl, err := time.ParseDuration(f.SessionTTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("config file: invalid session_ttl %q", f.SessionTTL)
		}
		cfg.SessionTTL = ttl
	}
	if f.WebhookBaseURL != "" {
		cfg.WebhookBaseURL = f.WebhookBaseURL
	}
	if f.WebhookAPIKey != "" {
		cfg.WebhookAPIKey = f.WebhookAPIKey
	}
	if f.WebhookTimeout != "" {
		timeout, err := time.ParseDuration(f.WebhookTimeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("config file: invalid webhook_timeout %q", f.WebhookTimeout)
		}
		cfg.WebhookTimeout = timeout
	}
	if f.Timezone != "" {
		cfg.Timezone = f.Timezone
	}
	if f.SessionPruneCron != "" {
		cfg.SessionPruneCron = f.SessionPruneCron
	}
	return nil
}
