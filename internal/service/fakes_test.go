package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"homekeep/internal/model"
)

// fakeNotifier records the delivery channel calls made by the services.
type fakeNotifier struct {
	mu        sync.Mutex
	pending   map[string]model.Reminder
	delivered map[string]time.Time
	calls     []string
	badge     int
	failNext  bool
	cancelled []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pending: map[string]model.Reminder{}, delivered: map[string]time.Time{}}
}

func (f *fakeNotifier) fail() error {
	if f.failNext {
		f.failNext = false
		return errors.New("channel unavailable")
	}
	return nil
}

func (f *fakeNotifier) Schedule(_ context.Context, r model.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "schedule:"+r.TaskID)
	if err := f.fail(); err != nil {
		return err
	}
	f.pending[r.TaskID] = r
	return nil
}

func (f *fakeNotifier) Cancel(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel:"+taskID)
	f.cancelled = append(f.cancelled, taskID)
	delete(f.pending, taskID)
	return f.fail()
}

func (f *fakeNotifier) CancelAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel-all")
	f.pending = map[string]model.Reminder{}
	return f.fail()
}

func (f *fakeNotifier) Delivered(_ context.Context, taskID string, due time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.delivered[taskID]
	return ok && at.Equal(due), nil
}

// deliver simulates the channel sending the task's pending reminder.
func (f *fakeNotifier) deliver(taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.pending[taskID]; ok {
		f.delivered[taskID] = r.DueAt
		delete(f.pending, taskID)
	}
}

func (f *fakeNotifier) SetBadge(_ context.Context, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("badge:%d", count))
	f.badge = count
	return f.fail()
}

// memoryStore is an in-memory TaskStore.
type memoryStore struct {
	mu    sync.Mutex
	tasks map[string]model.Task
}

func newMemoryStore(tasks ...model.Task) *memoryStore {
	s := &memoryStore{tasks: map[string]model.Task{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("duplicate id %s", task.ID)
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *memoryStore) Save(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("find task %s: %w", id, ErrTaskNotFound)
	}
	return &t, nil
}

func (s *memoryStore) ListByDueDate(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b model.Task) int {
		if c := a.NextDueDate.Compare(b.NextDueDate); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
	return out, nil
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
