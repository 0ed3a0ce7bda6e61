package config

import (
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"homekeep/internal/service"
)

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("timezone", c.Timezone, validTimezone),
		criterio.Run("digest_time", c.DigestTime, validClock),
		criterio.Run("log_level", c.LogLevel, validLevel),
		criterio.Run("database_url", c.DatabaseURL, required),
		c.validateRuntime(),
		c.Reminders.Validate(),
	)
}

func (c Config) validateRuntime() error {
	var errs criterio.FieldErrorsBuilder
	if c.DispatchInterval < time.Second {
		errs = errs.Append("dispatch_interval", fmt.Errorf("must be at least 1s, got %s", c.DispatchInterval))
	}
	if c.JobTimeout <= 0 {
		errs = errs.Append("job_timeout", fmt.Errorf("must be positive, got %s", c.JobTimeout))
	}
	if c.SendRatePerSec <= 0 {
		errs = errs.Append("send_rate_per_sec", fmt.Errorf("must be positive, got %d", c.SendRatePerSec))
	}
	return errs.ToError()
}

func validTimezone(tz string) error {
	_, err := Config{Timezone: tz}.Location()
	return err
}

func validClock(s string) error {
	_, _, err := service.ParseClock(s)
	return err
}

func validLevel(s string) error {
	if s == "" {
		return nil
	}
	_, err := zerolog.ParseLevel(s)
	return err
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	return nil
}
