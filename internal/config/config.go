package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"homekeep/internal/model"
)

const (
	DefaultPath             = "homekeep.yaml"
	DefaultDatabaseURL      = "homekeep.db"
	DefaultDigestTime       = "08:00"
	DefaultDispatchInterval = 30 * time.Second
	DefaultJobTimeout       = 30 * time.Second
	DefaultSendRatePerSec   = 5
)

// Config keeps runtime settings for the service.
type Config struct {
	TelegramToken    string                    `yaml:"telegram_token"`
	DatabaseURL      string                    `yaml:"database_url"`
	Timezone         string                    `yaml:"timezone"`
	DigestTime       string                    `yaml:"digest_time"`
	DispatchInterval time.Duration             `yaml:"dispatch_interval"`
	JobTimeout       time.Duration             `yaml:"job_timeout"`
	SendRatePerSec   int                       `yaml:"send_rate_per_sec"`
	LogLevel         string                    `yaml:"log_level"`
	LogFile          string                    `yaml:"log_file"`
	Reminders        model.ReminderPreferences `yaml:"reminders"`

	// Path is the YAML file the config was read from, empty if none existed.
	Path string `yaml:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DatabaseURL:      DefaultDatabaseURL,
		Timezone:         "Local",
		DigestTime:       DefaultDigestTime,
		DispatchInterval: DefaultDispatchInterval,
		JobTimeout:       DefaultJobTimeout,
		SendRatePerSec:   DefaultSendRatePerSec,
		LogLevel:         "info",
		Reminders:        model.DefaultReminderPreferences(),
	}
}

// Load reads .env, then the YAML file at path, then environment overrides.
// A missing YAML file is not an error. An empty path falls back to
// HOMEKEEP_CONFIG and then DefaultPath.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv("HOMEKEEP_CONFIG"))
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Timezone, "HOMEKEEP_TIMEZONE")
	setString(&c.DigestTime, "HOMEKEEP_DIGEST_TIME")
	setString(&c.LogLevel, "HOMEKEEP_LOG_LEVEL")
	setString(&c.LogFile, "HOMEKEEP_LOG_FILE")

	if raw := strings.TrimSpace(os.Getenv("HOMEKEEP_DISPATCH_INTERVAL")); raw != "" {
		d := parseInterval(raw)
		if d == 0 {
			return fmt.Errorf("HOMEKEEP_DISPATCH_INTERVAL: invalid duration %q", raw)
		}
		c.DispatchInterval = d
	}

	for _, v := range []struct {
		key string
		dst *int
	}{
		{"HOMEKEEP_SEND_RATE", &c.SendRatePerSec},
		{"REMINDER_HOUR", &c.Reminders.ReminderHour},
		{"REMINDER_MINUTE", &c.Reminders.ReminderMinute},
		{"REMINDER_DAYS_BEFORE", &c.Reminders.DaysBeforeDue},
	} {
		raw := strings.TrimSpace(os.Getenv(v.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", v.key, err)
		}
		*v.dst = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// parseInterval accepts a Go duration ("45s", "2m") or a bare number of seconds.
func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// Location resolves Timezone. "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
