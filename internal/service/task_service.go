package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"homekeep/internal/model"
)

var (
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousTask is returned when a short id matches more than one task.
	ErrAmbiguousTask = errors.New("task id is ambiguous")
)

// ShortIDLen is how many leading id characters are shown to users.
const ShortIDLen = 8

// TaskStore persists tasks. Implementations return ErrTaskNotFound (possibly
// wrapped) for unknown ids.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	ListByDueDate(ctx context.Context) ([]model.Task, error)
}

// TaskUpdate carries edits made to an existing task. Nil fields are unchanged.
type TaskUpdate struct {
	Name      *string
	Icon      *string
	Notes     *string
	Frequency *model.Frequency
}

// TaskService wraps task-related business logic. Mutations are serialized and
// every one of them leaves the task's reminder in step with its due date.
type TaskService struct {
	store     TaskStore
	reminders *ReminderService
	log       zerolog.Logger

	mu    sync.Mutex
	prefs model.ReminderPreferences
}

func NewTaskService(store TaskStore, reminders *ReminderService, prefs model.ReminderPreferences, log zerolog.Logger) *TaskService {
	return &TaskService{store: store, reminders: reminders, prefs: prefs, log: log}
}

// Preferences returns the reminder preferences currently in effect.
func (s *TaskService) Preferences() model.ReminderPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// ApplyPreferences switches to new reminder preferences and reschedules every
// task's reminder.
func (s *TaskService) ApplyPreferences(ctx context.Context, prefs model.ReminderPreferences, now time.Time) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ListByDueDate(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	s.prefs = prefs
	s.reminders.RescheduleAll(ctx, tasks, prefs, now)
	return nil
}

// Create adds a task and schedules its first reminder.
func (s *TaskService) Create(ctx context.Context, params model.TaskParams, now time.Time) (*model.Task, error) {
	task, err := model.NewTask(params, now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, task, now)
}

func (s *TaskService) create(ctx context.Context, task *model.Task, now time.Time) (*model.Task, error) {
	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}
	s.reminders.Reschedule(ctx, *task, s.prefs, now)
	s.refreshBadge(ctx, now)

	s.log.Info().Str("task", task.ID).Str("name", task.Name).Time("due", task.NextDueDate).Msg("task created")
	return task, nil
}

// CreateFromTemplate instantiates a preloaded template.
func (s *TaskService) CreateFromTemplate(ctx context.Context, tpl model.Template, now time.Time) (*model.Task, error) {
	return s.Create(ctx, tpl.Params(now), now)
}

// FindTemplateTask returns the preloaded task created from the template with
// the given name, if any.
func (s *TaskService) FindTemplateTask(ctx context.Context, name string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findTemplateTask(ctx, name)
}

func (s *TaskService) findTemplateTask(ctx context.Context, name string) (*model.Task, error) {
	tasks, err := s.store.ListByDueDate(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].IsPreloaded && tasks[i].Name == name {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// ToggleTemplate adds the template as a task, or removes the task previously
// created from it. It returns the created task, or nil when one was removed.
func (s *TaskService) ToggleTemplate(ctx context.Context, tpl model.Template, now time.Time) (*model.Task, error) {
	task, err := model.NewTask(tpl.Params(now), now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findTemplateTask(ctx, tpl.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.delete(ctx, existing.ID, now)
	}
	return s.create(ctx, task, now)
}

// Update applies edits to a task. A frequency change recomputes the due date
// and the reminder.
func (s *TaskService) Update(ctx context.Context, id string, upd TaskUpdate, now time.Time) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		renamed = name != task.Name
		task.Name = name
	}
	if upd.Icon != nil {
		task.Icon = strings.TrimSpace(*upd.Icon)
		if task.Icon == "" {
			task.Icon = model.DefaultIcon
		}
	}
	if upd.Notes != nil {
		notes := strings.TrimSpace(*upd.Notes)
		if notes == "" {
			task.Notes = nil
		} else {
			task.Notes = &notes
		}
	}
	if upd.Frequency != nil {
		if err := task.SetFrequency(*upd.Frequency, now); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, task); err != nil {
		return nil, err
	}
	// The reminder body carries the name. Icon and notes edits leave it alone.
	if upd.Frequency != nil || renamed {
		s.reminders.Reschedule(ctx, *task, s.prefs, now)
	}
	if upd.Frequency != nil {
		s.refreshBadge(ctx, now)
	}
	return task, nil
}

// Complete marks a task done at now, advances its due date and replaces its
// reminder.
func (s *TaskService) Complete(ctx context.Context, id string, now time.Time) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.MarkComplete(now)
	if err := s.store.Save(ctx, task); err != nil {
		return nil, err
	}

	decision := s.reminders.Reschedule(ctx, *task, s.prefs, now)
	s.refreshBadge(ctx, now)

	s.log.Info().
		Str("task", task.ID).
		Time("next_due", task.NextDueDate).
		Stringer("reminder", decision.Kind).
		Msg("task completed")
	return task, nil
}

// Delete removes a task and its pending reminder.
func (s *TaskService) Delete(ctx context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, id, now)
}

func (s *TaskService) delete(ctx context.Context, id string, now time.Time) error {
	s.reminders.Cancel(ctx, id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshBadge(ctx, now)

	s.log.Info().Str("task", id).Msg("task deleted")
	return nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.store.FindByID(ctx, id)
}

// Resolve finds a task by full id or by a unique id prefix.
func (s *TaskService) Resolve(ctx context.Context, ref string) (*model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return nil, fmt.Errorf("resolve task: %w", ErrTaskNotFound)
	}
	tasks, err := s.store.ListByDueDate(ctx)
	if err != nil {
		return nil, err
	}
	var match *model.Task
	for i := range tasks {
		if tasks[i].ID == ref {
			return &tasks[i], nil
		}
		if strings.HasPrefix(tasks[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("resolve task %s: %w", ref, ErrAmbiguousTask)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("resolve task %s: %w", ref, ErrTaskNotFound)
	}
	return match, nil
}

// ShortID returns the prefix of id shown to users.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// List returns every task ordered by due date.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.store.ListByDueDate(ctx)
}

// Dashboard classifies all tasks at now.
func (s *TaskService) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	tasks, err := s.store.ListByDueDate(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Classify(tasks, now), nil
}

// RefreshBadge recomputes the overdue badge. Statuses drift with time, so
// this runs periodically as well as after mutations.
func (s *TaskService) RefreshBadge(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshBadge(ctx, now)
}

func (s *TaskService) refreshBadge(ctx context.Context, now time.Time) {
	tasks, err := s.store.ListByDueDate(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh badge: list tasks")
		return
	}
	s.reminders.UpdateBadge(ctx, tasks, now)
}
