package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOMEKEEP_CONFIG", "TELEGRAM_TOKEN", "DATABASE_URL", "HOMEKEEP_TIMEZONE",
		"HOMEKEEP_DIGEST_TIME", "HOMEKEEP_LOG_LEVEL", "HOMEKEEP_LOG_FILE",
		"HOMEKEEP_DISPATCH_INTERVAL", "HOMEKEEP_SEND_RATE",
		"REMINDER_HOUR", "REMINDER_MINUTE", "REMINDER_DAYS_BEFORE",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fieldNames(err error) []string {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, 9, cfg.Reminders.ReminderHour)
	assert.Equal(t, 1, cfg.Reminders.DaysBeforeDue)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "homekeep.yaml")
	writeFile(t, path, `
database_url: /var/lib/homekeep/homekeep.db
timezone: UTC
digest_time: "07:30"
dispatch_interval: 1m
reminders:
  hour: 18
  minute: 15
  days_before_due: 3
`)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REMINDER_MINUTE", "45")
	t.Setenv("HOMEKEEP_DISPATCH_INTERVAL", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "/var/lib/homekeep/homekeep.db", cfg.DatabaseURL)
	assert.Equal(t, "07:30", cfg.DigestTime)
	assert.Equal(t, 10*time.Second, cfg.DispatchInterval)
	assert.Equal(t, 18, cfg.Reminders.ReminderHour)
	assert.Equal(t, 45, cfg.Reminders.ReminderMinute)
	assert.Equal(t, 3, cfg.Reminders.DaysBeforeDue)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "log_level: debug\n")
	t.Setenv("HOMEKEEP_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "homekeep.yaml")
	writeFile(t, path, `
timezone: Mars/Olympus
digest_time: "25:00"
reminders:
  hour: 24
  days_before_due: 30
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ElementsMatch(t,
		[]string{"timezone", "digest_time", "reminders.hour", "reminders.days_before_due"},
		fieldNames(err))
}

func TestLoad_BadEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMINDER_HOUR", "nine")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_HOUR")
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "homekeep.yaml")
	writeFile(t, path, "reminders: [not, a, map\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"0", 0},
		{"-5s", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInterval(tt.raw))
		})
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "homekeep.yaml")
	writeFile(t, path, "reminders:\n  hour: 9\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func(cfg Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "reminders:\n  hour: 20\n")

	select {
	case cfg := <-changes:
		assert.Equal(t, 20, cfg.Reminders.ReminderHour)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_RequiresPath(t *testing.T) {
	err := Watch(context.Background(), "", zerolog.Nop(), func(Config) {})
	assert.Error(t, err)
}
