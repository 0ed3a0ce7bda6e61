package model

import "time"

// ReminderState tracks a pending reminder through delivery.
type ReminderState string

const (
	ReminderScheduled ReminderState = "scheduled"
	ReminderFired     ReminderState = "fired"
)

// Reminder is a notification for a task, pending or already delivered. There
// is at most one row per task. DueAt is the due date it was scheduled for.
type Reminder struct {
	ID        uint          `gorm:"primaryKey"`
	TaskID    string        `gorm:"size:36;uniqueIndex;not null"`
	FireAt    time.Time     `gorm:"index;not null"`
	DueAt     time.Time
	Title     string        `gorm:"not null"`
	Body      string        `gorm:"not null"`
	State     ReminderState `gorm:"size:16;index;default:scheduled"`
	FiredAt   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
