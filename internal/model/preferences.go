package model

import (
	"fmt"

	"github.com/hay-kot/criterio"
)

// ReminderPreferences controls when reminders fire relative to due dates.
type ReminderPreferences struct {
	ReminderHour   int `yaml:"hour"`
	ReminderMinute int `yaml:"minute"`
	DaysBeforeDue  int `yaml:"days_before_due"`
}

const MaxDaysBeforeDue = 14

func DefaultReminderPreferences() ReminderPreferences {
	return ReminderPreferences{ReminderHour: 9, ReminderMinute: 0, DaysBeforeDue: 1}
}

func (p ReminderPreferences) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if p.ReminderHour < 0 || p.ReminderHour > 23 {
		errs = errs.Append("reminders.hour", fmt.Errorf("must be 0-23, got %d", p.ReminderHour))
	}
	if p.ReminderMinute < 0 || p.ReminderMinute > 59 {
		errs = errs.Append("reminders.minute", fmt.Errorf("must be 0-59, got %d", p.ReminderMinute))
	}
	if p.DaysBeforeDue < 0 || p.DaysBeforeDue > MaxDaysBeforeDue {
		errs = errs.Append("reminders.days_before_due", fmt.Errorf("must be 0-%d, got %d", MaxDaysBeforeDue, p.DaysBeforeDue))
	}
	return errs.ToError()
}

// String renders e.g. "09:00, 1 day before due".
func (p ReminderPreferences) String() string {
	unit := "days"
	if p.DaysBeforeDue == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%02d:%02d, %d %s before due", p.ReminderHour, p.ReminderMinute, p.DaysBeforeDue, unit)
}
