package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"homekeep/internal/model"
)

const (
	// ImmediateDelay is how far from now a reminder fires when its lead time
	// has already elapsed but the task is not yet overdue.
	ImmediateDelay = 60 * time.Second

	ReminderTitle = "HomeKeep Reminder"
)

// FireKind says what the scheduler decided for a task's reminder.
type FireKind int

const (
	FireScheduled FireKind = iota
	FireImmediate
	FireSuppressed
	// FireDelivered means the reminder for this due date was already sent and
	// is not repeated.
	FireDelivered
)

func (k FireKind) String() string {
	switch k {
	case FireScheduled:
		return "scheduled"
	case FireImmediate:
		return "immediate"
	case FireSuppressed:
		return "suppressed"
	case FireDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("fire(%d)", int(k))
	}
}

// FireDecision is the outcome of ComputeFireTime. At is zero when suppressed
// or delivered.
type FireDecision struct {
	Kind FireKind
	At   time.Time
}

// ComputeFireTime derives when the reminder for task should fire.
//
// The notify instant is the due date moved back DaysBeforeDue calendar days,
// at the preferred time of day, in now's location. If that instant is already
// past the reminder fires ImmediateDelay from now, unless the task itself is
// overdue, in which case nothing is scheduled.
func ComputeFireTime(task model.Task, prefs model.ReminderPreferences, now time.Time) FireDecision {
	due := task.NextDueDate.In(now.Location())
	notifyDay := due.AddDate(0, 0, -prefs.DaysBeforeDue)
	at := time.Date(notifyDay.Year(), notifyDay.Month(), notifyDay.Day(),
		prefs.ReminderHour, prefs.ReminderMinute, 0, 0, now.Location())

	if !at.Before(now) {
		return FireDecision{Kind: FireScheduled, At: at}
	}
	if task.NextDueDate.Before(now) {
		return FireDecision{Kind: FireSuppressed}
	}
	return FireDecision{Kind: FireImmediate, At: now.Add(ImmediateDelay)}
}

// ReminderBody is the notification text for task.
func ReminderBody(task model.Task) string {
	return "Time to " + strings.ToLower(task.Name)
}

// Notifier is the delivery channel reminders are handed to. Schedule replaces
// any reminder for the same task. CancelAll drops pending reminders only.
// Delivered reports whether the reminder for a task's due date already went
// out.
type Notifier interface {
	Schedule(ctx context.Context, reminder model.Reminder) error
	Cancel(ctx context.Context, taskID string) error
	CancelAll(ctx context.Context) error
	Delivered(ctx context.Context, taskID string, due time.Time) (bool, error)
	SetBadge(ctx context.Context, count int) error
}

// ReminderService keeps the delivery channel in step with task due dates.
// Delivery failures are logged, never returned: task state stays correct
// whatever the channel does.
type ReminderService struct {
	notifier Notifier
	log      zerolog.Logger
	mu       sync.Mutex
}

func NewReminderService(notifier Notifier, log zerolog.Logger) *ReminderService {
	return &ReminderService{notifier: notifier, log: log}
}

// Reschedule replaces the pending reminder for task.
func (s *ReminderService) Reschedule(ctx context.Context, task model.Task, prefs model.ReminderPreferences, now time.Time) FireDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reschedule(ctx, task, prefs, now)
}

func (s *ReminderService) reschedule(ctx context.Context, task model.Task, prefs model.ReminderPreferences, now time.Time) FireDecision {
	decision := ComputeFireTime(task, prefs, now)

	if decision.Kind == FireSuppressed {
		if err := s.notifier.Cancel(ctx, task.ID); err != nil {
			s.log.Warn().Err(err).Str("task", task.ID).Msg("cancel reminder")
		}
		s.log.Debug().Str("task", task.ID).Msg("reminder suppressed, task overdue")
		return decision
	}

	// An immediate reminder is never repeated for a due date already notified.
	if decision.Kind == FireImmediate {
		delivered, err := s.notifier.Delivered(ctx, task.ID, task.NextDueDate)
		if err != nil {
			s.log.Warn().Err(err).Str("task", task.ID).Msg("check delivered reminder")
		}
		if delivered {
			s.log.Debug().Str("task", task.ID).Time("due", task.NextDueDate).Msg("reminder already delivered")
			return FireDecision{Kind: FireDelivered}
		}
	}

	reminder := model.Reminder{
		TaskID: task.ID,
		FireAt: decision.At,
		DueAt:  task.NextDueDate,
		Title:  ReminderTitle,
		Body:   ReminderBody(task),
		State:  model.ReminderScheduled,
	}
	if err := s.notifier.Schedule(ctx, reminder); err != nil {
		s.log.Warn().Err(err).Str("task", task.ID).Msg("schedule reminder")
		return decision
	}

	s.log.Debug().
		Str("task", task.ID).
		Stringer("kind", decision.Kind).
		Time("fire_at", decision.At).
		Msg("reminder scheduled")
	return decision
}

// Cancel drops the pending reminder for a deleted task.
func (s *ReminderService) Cancel(ctx context.Context, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.notifier.Cancel(ctx, taskID); err != nil {
		s.log.Warn().Err(err).Str("task", taskID).Msg("cancel reminder")
	}
}

// RescheduleAll drops every pending reminder and schedules each task again.
// Reminders already delivered for a task's current due date are not repeated.
func (s *ReminderService) RescheduleAll(ctx context.Context, tasks []model.Task, prefs model.ReminderPreferences, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notifier.CancelAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cancel all reminders")
	}
	for _, task := range tasks {
		s.reschedule(ctx, task, prefs, now)
	}
	s.updateBadge(ctx, tasks, now)
	s.log.Info().Int("tasks", len(tasks)).Str("prefs", prefs.String()).Msg("reminders rescheduled")
}

// UpdateBadge pushes the overdue count to the delivery channel.
func (s *ReminderService) UpdateBadge(ctx context.Context, tasks []model.Task, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateBadge(ctx, tasks, now)
}

func (s *ReminderService) updateBadge(ctx context.Context, tasks []model.Task, now time.Time) int {
	count := BadgeCount(tasks, now)
	if err := s.notifier.SetBadge(ctx, count); err != nil {
		s.log.Warn().Err(err).Int("count", count).Msg("set badge")
	}
	return count
}

// DailySummary builds the digest sent each morning.
func DailySummary(tasks []model.Task, now time.Time) string {
	d := Classify(tasks, now)

	var b strings.Builder
	fmt.Fprintf(&b, "🏠 <b>HomeKeep digest</b>\n🗓 %s\n\n", now.Format(model.MediumDateLayout))

	if d.Total() == 0 {
		b.WriteString("No maintenance tasks yet. Add some with /library or /newtask.")
		return b.String()
	}

	writeSection(&b, "⚠️ <b>Overdue</b>", d.Overdue, now)
	writeSection(&b, "⏳ <b>Due soon</b>", d.DueSoon, now)

	if d.Attention == 0 {
		b.WriteString("✅ Everything is on track.\n")
	} else {
		fmt.Fprintf(&b, "%d of %d tasks need attention.\n", d.Attention, d.Total())
	}
	return strings.TrimSpace(b.String())
}

func writeSection(b *strings.Builder, title string, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteByte('\n')
	for _, task := range tasks {
		fmt.Fprintf(b, "• %s — %s\n", html.EscapeString(task.Name), model.DueDescription(task, now))
	}
	b.WriteByte('\n')
}
