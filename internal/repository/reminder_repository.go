package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homekeep/internal/model"
)

// ReminderRepository stores pending reminders, at most one per task.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Replace drops any reminder for the task and inserts the new one in a single
// transaction, so a task never has zero-then-two or two live reminders.
func (r *ReminderRepository) Replace(ctx context.Context, reminder *model.Reminder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", reminder.TaskID).Delete(&model.Reminder{}).Error; err != nil {
			return err
		}
		reminder.ID = 0
		reminder.FireAt = reminder.FireAt.UTC()
		reminder.DueAt = reminder.DueAt.UTC()
		if reminder.State == "" {
			reminder.State = model.ReminderScheduled
		}
		return tx.Create(reminder).Error
	})
	if err != nil {
		return fmt.Errorf("replace reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) DeleteByTask(ctx context.Context, taskID string) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// DeletePending drops every reminder not yet delivered. Fired rows are kept so
// a reschedule can tell what already went out.
func (r *ReminderRepository) DeletePending(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("state = ?", model.ReminderScheduled).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete pending reminders: %w", err)
	}
	return nil
}

// FindByTask returns the task's reminder, or nil when it has none.
func (r *ReminderRepository) FindByTask(ctx context.Context, taskID string) (*model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Limit(1).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("find reminder: %w", err)
	}
	if len(reminders) == 0 {
		return nil, nil
	}
	return &reminders[0], nil
}

// Due returns scheduled reminders whose fire time is at or before now.
func (r *ReminderRepository) Due(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("state = ? AND fire_at <= ?", model.ReminderScheduled, now.UTC()).
		Order("fire_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	return reminders, nil
}

func (r *ReminderRepository) MarkFired(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":    model.ReminderFired,
			"fired_at": at.UTC(),
		}).Error; err != nil {
		return fmt.Errorf("mark reminder fired: %w", err)
	}
	return nil
}

// Pending lists scheduled reminders, soonest first.
func (r *ReminderRepository) Pending(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("state = ?", model.ReminderScheduled).
		Order("fire_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("pending reminders: %w", err)
	}
	return reminders, nil
}
