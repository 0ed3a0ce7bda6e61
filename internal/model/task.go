package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
)

// DefaultIcon is used when a task is created without one.
const DefaultIcon = "wrench"

// Task is a recurring maintenance item.
type Task struct {
	ID                string `gorm:"primaryKey;size:36"`
	Name              string `gorm:"not null"`
	Icon              string
	Notes             *string
	Frequency         Frequency `gorm:"embedded;embeddedPrefix:frequency_"`
	LastCompletedDate *time.Time
	NextDueDate       time.Time `gorm:"index;not null"`
	IsPreloaded       bool      `gorm:"default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TaskParams holds the data required to create a task.
type TaskParams struct {
	Name        string
	Icon        string
	Notes       string
	Frequency   Frequency
	NextDueDate *time.Time
	IsPreloaded bool
}

// Validate checks the params before a task is built from them.
func (p TaskParams) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if strings.TrimSpace(p.Name) == "" {
		errs = errs.Append("name", fmt.Errorf("is required"))
	}
	if err := p.Frequency.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}
	return errs.ToError()
}

// NewTask builds a task, computing the first due date from now unless one is
// given explicitly.
func NewTask(p TaskParams, now time.Time) (*Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	icon := strings.TrimSpace(p.Icon)
	if icon == "" {
		icon = DefaultIcon
	}

	task := &Task{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(p.Name),
		Icon:        icon,
		Frequency:   p.Frequency,
		IsPreloaded: p.IsPreloaded,
		CreatedAt:   now,
	}
	if notes := strings.TrimSpace(p.Notes); notes != "" {
		task.Notes = &notes
	}
	if p.NextDueDate != nil {
		task.NextDueDate = *p.NextDueDate
	} else {
		task.NextDueDate = p.Frequency.Next(now)
	}

	return task, nil
}

// MarkComplete records a completion at now and advances the due date.
func (t *Task) MarkComplete(now time.Time) {
	t.LastCompletedDate = &now
	t.NextDueDate = t.Frequency.Next(now)
}

// SetFrequency replaces the recurrence rule and recomputes the due date from
// the last completion, or from now when the task was never completed.
func (t *Task) SetFrequency(f Frequency, now time.Time) error {
	if err := f.Validate(); err != nil {
		return err
	}
	t.Frequency = f

	base := now
	if t.LastCompletedDate != nil {
		base = *t.LastCompletedDate
	}
	t.NextDueDate = f.Next(base)
	return nil
}

// NotesText returns the notes or an empty string.
func (t Task) NotesText() string {
	if t.Notes == nil {
		return ""
	}
	return *t.Notes
}
