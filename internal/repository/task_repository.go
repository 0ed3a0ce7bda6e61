package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

var _ service.TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	normalizeTimes(task)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	normalizeTimes(task)
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find task %s: %w", id, service.ErrTaskNotFound)
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// ListByDueDate returns every task, soonest due first.
func (r *TaskRepository) ListByDueDate(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Order("next_due_date ASC, created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes a task by id.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %s: %w", id, service.ErrTaskNotFound)
	}
	return nil
}

// normalizeTimes stores instants in UTC; SQLite compares them as text.
func normalizeTimes(task *model.Task) {
	task.NextDueDate = task.NextDueDate.UTC()
	if task.LastCompletedDate != nil {
		completed := task.LastCompletedDate.UTC()
		task.LastCompletedDate = &completed
	}
	if !task.CreatedAt.IsZero() {
		task.CreatedAt = task.CreatedAt.UTC()
	}
}
