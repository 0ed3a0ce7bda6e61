package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"homekeep/internal/bot"
	"homekeep/internal/config"
	"homekeep/internal/logging"
	"homekeep/internal/model"
	"homekeep/internal/service"
)

// badgeRefreshInterval keeps the overdue count current as days roll over.
const badgeRefreshInterval = time.Hour

type RunCmd struct {
	flags *Flags

	// flags
	noWatch bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the reminder service and chat bot",
		UsageText: "homekeep run [--no-watch]",
		Description: `Starts the long-running service: the Telegram bot (when TELEGRAM_TOKEN is set),
the reminder dispatcher, the daily digest and the config file watcher.

Without a token, fired reminders are written to the log.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-watch",
				Usage:       "do not reload reminder preferences when the config file changes",
				Destination: &cmd.noWatch,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	app, closeApp, err := Open(cmd.flags)
	if err != nil {
		return err
	}
	defer closeApp()

	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken, app.Users, app.Tasks, app.Loc, logging.Component("bot"))
		if err != nil {
			return err
		}
		app.Dispatcher.SetSender(telegramBot)
	} else {
		log.Warn().Msg("TELEGRAM_TOKEN not set, reminders will only be logged")
	}

	// Bring every pending reminder in line with the current preferences.
	if err := app.Tasks.ApplyPreferences(ctx, cfg.Reminders, app.Now()); err != nil {
		return fmt.Errorf("reschedule reminders: %w", err)
	}

	scheduler := service.NewSchedulerService(app.Loc, cfg.JobTimeout, logging.Component("scheduler"))
	if _, err := scheduler.ScheduleInterval("dispatch", cfg.DispatchInterval, func(ctx context.Context, now time.Time) error {
		_, err := app.Dispatcher.Tick(ctx, now)
		return err
	}); err != nil {
		return fmt.Errorf("schedule dispatcher: %w", err)
	}
	if _, err := scheduler.ScheduleInterval("badge", badgeRefreshInterval, func(ctx context.Context, now time.Time) error {
		app.Tasks.RefreshBadge(ctx, now)
		return nil
	}); err != nil {
		return fmt.Errorf("schedule badge refresh: %w", err)
	}
	if telegramBot != nil {
		if _, err := scheduler.ScheduleDaily("digest", cfg.DigestTime, telegramBot.SendDigest); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Path != "" && !cmd.noWatch {
		go func() {
			err := config.Watch(ctx, cfg.Path, logging.Component("config"), func(next config.Config) {
				applyPreferences(ctx, app, next.Reminders)
			})
			if err != nil {
				log.Error().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug().Err(err).Msg("sd_notify ready")
	}
	defer func() {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	}()

	log.Info().
		Str("db", cfg.DatabaseURL).
		Str("tz", app.Loc.String()).
		Str("reminders", cfg.Reminders.String()).
		Int("jobs", scheduler.Entries()).
		Msg("homekeep started")

	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot stopped: %w", err)
		}
	} else {
		<-ctx.Done()
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// applyPreferences reschedules reminders when the reminders section of the
// config changed. Other edits to the file leave them alone.
func applyPreferences(ctx context.Context, app *App, prefs model.ReminderPreferences) bool {
	if prefs == app.Tasks.Preferences() {
		log.Debug().Msg("reminder preferences unchanged")
		return false
	}
	if err := app.Tasks.ApplyPreferences(ctx, prefs, app.Now()); err != nil {
		log.Error().Err(err).Msg("apply reminder preferences")
		return false
	}
	return true
}
