package commands

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"homekeep/internal/logging"
	"homekeep/internal/notify"
	"homekeep/internal/repository"
	"homekeep/internal/service"
)

// App is the wired service graph shared by every command.
type App struct {
	DB         *gorm.DB
	Users      *repository.UserRepository
	Reminders  *repository.ReminderRepository
	Dispatcher *notify.Dispatcher
	Tasks      *service.TaskService
	Loc        *time.Location
}

// Open connects the database and builds the services from flags.Config.
// Reminders go to the log until a chat transport is attached.
func Open(flags *Flags) (*App, func(), error) {
	cfg := flags.Config

	loc, err := cfg.Location()
	if err != nil {
		return nil, func() {}, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logging.Component("db"))
	if err != nil {
		return nil, func() {}, fmt.Errorf("open database: %w", err)
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	reminderRepo := repository.NewReminderRepository(db)
	dispatcher := notify.New(
		reminderRepo,
		notify.LogSender{Log: logging.Component("reminders")},
		cfg.SendRatePerSec,
		logging.Component("dispatcher"),
	)
	reminderSvc := service.NewReminderService(dispatcher, logging.Component("reminders"))
	taskSvc := service.NewTaskService(
		repository.NewTaskRepository(db),
		reminderSvc,
		cfg.Reminders,
		logging.Component("tasks"),
	)

	return &App{
		DB:         db,
		Users:      repository.NewUserRepository(db),
		Reminders:  reminderRepo,
		Dispatcher: dispatcher,
		Tasks:      taskSvc,
		Loc:        loc,
	}, closer, nil
}

// Now is the current time in the configured zone.
func (a *App) Now() time.Time {
	return time.Now().In(a.Loc)
}
