package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"homekeep/internal/model"
)

// DefaultRatePerSec caps outgoing deliveries when no rate is configured.
const DefaultRatePerSec = 5

// Store persists reminders, at most one per task.
type Store interface {
	Replace(ctx context.Context, reminder *model.Reminder) error
	DeleteByTask(ctx context.Context, taskID string) error
	DeletePending(ctx context.Context) error
	FindByTask(ctx context.Context, taskID string) (*model.Reminder, error)
	Due(ctx context.Context, now time.Time) ([]model.Reminder, error)
	MarkFired(ctx context.Context, id uint, at time.Time) error
}

// Sender delivers a fired reminder to the household.
type Sender interface {
	Deliver(ctx context.Context, reminder model.Reminder) error
}

// Dispatcher is the local delivery channel. Reminders are queued in the
// store and sent when Tick finds them due.
type Dispatcher struct {
	store   Store
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	badge  int
	sender Sender

	tickMu sync.Mutex
}

func New(store Store, sender Sender, ratePerSec int, log zerolog.Logger) *Dispatcher {
	if ratePerSec <= 0 {
		ratePerSec = DefaultRatePerSec
	}
	return &Dispatcher{
		store:   store,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:     log,
	}
}

// SetSender swaps the transport used by Tick.
func (d *Dispatcher) SetSender(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sender = sender
}

// Schedule queues reminder, replacing any pending one for the same task.
func (d *Dispatcher) Schedule(ctx context.Context, reminder model.Reminder) error {
	if reminder.TaskID == "" {
		return fmt.Errorf("schedule reminder: empty task id")
	}
	return d.store.Replace(ctx, &reminder)
}

func (d *Dispatcher) Cancel(ctx context.Context, taskID string) error {
	return d.store.DeleteByTask(ctx, taskID)
}

// CancelAll drops pending reminders. Delivered ones are left alone.
func (d *Dispatcher) CancelAll(ctx context.Context) error {
	return d.store.DeletePending(ctx)
}

// Delivered reports whether the task's reminder for the due date has
// already been sent.
func (d *Dispatcher) Delivered(ctx context.Context, taskID string, due time.Time) (bool, error) {
	reminder, err := d.store.FindByTask(ctx, taskID)
	if err != nil || reminder == nil {
		return false, err
	}
	return reminder.State == model.ReminderFired && reminder.DueAt.Equal(due), nil
}

// SetBadge records the overdue count shown alongside deliveries.
func (d *Dispatcher) SetBadge(_ context.Context, count int) error {
	if count < 0 {
		count = 0
	}
	d.mu.Lock()
	changed := d.badge != count
	d.badge = count
	d.mu.Unlock()
	if changed {
		d.log.Debug().Int("badge", count).Msg("badge updated")
	}
	return nil
}

func (d *Dispatcher) Badge() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.badge
}

// Tick sends every reminder due at now and returns how many were delivered.
// A reminder whose delivery fails stays scheduled and is retried next tick.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) (int, error) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.mu.Lock()
	sender := d.sender
	d.mu.Unlock()
	if sender == nil {
		return 0, fmt.Errorf("dispatch reminders: no sender")
	}

	due, err := d.store.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reminder := range due {
		if err := d.limiter.Wait(ctx); err != nil {
			return sent, fmt.Errorf("dispatch reminders: %w", err)
		}
		if err := sender.Deliver(ctx, reminder); err != nil {
			d.log.Warn().Err(err).Str("task", reminder.TaskID).Msg("deliver reminder")
			continue
		}
		if err := d.store.MarkFired(ctx, reminder.ID, now); err != nil {
			d.log.Error().Err(err).Str("task", reminder.TaskID).Msg("mark reminder fired")
			continue
		}
		sent++
		d.log.Info().
			Str("task", reminder.TaskID).
			Time("fire_at", reminder.FireAt).
			Msg("reminder delivered")
	}
	return sent, nil
}

// LogSender writes reminders to the log. Used when no chat transport is
// configured.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Deliver(_ context.Context, reminder model.Reminder) error {
	s.Log.Info().
		Str("task", reminder.TaskID).
		Str("title", reminder.Title).
		Msg(reminder.Body)
	return nil
}
