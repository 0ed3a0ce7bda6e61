package model

import (
	"fmt"
	"time"
)

// Status classifies a task's urgency at a given instant.
type Status int

const (
	StatusOverdue Status = iota
	StatusDueSoon
	StatusGood
)

// DueSoonWindowDays is how far ahead a due date counts as due soon.
const DueSoonWindowDays = 7

// MediumDateLayout renders dates like "Jun 18, 2024".
const MediumDateLayout = "Jan 2, 2006"

func (s Status) String() string {
	switch s {
	case StatusOverdue:
		return "overdue"
	case StatusDueSoon:
		return "due soon"
	case StatusGood:
		return "good"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Rank orders statuses by urgency, most urgent first.
func (s Status) Rank() int { return int(s) }

func (s Status) Color() string {
	switch s {
	case StatusOverdue:
		return "red"
	case StatusDueSoon:
		return "yellow"
	default:
		return "green"
	}
}

// StatusAt reports the status of task at now.
func StatusAt(task Task, now time.Time) Status {
	if task.NextDueDate.Before(now) {
		return StatusOverdue
	}
	if !task.NextDueDate.After(now.AddDate(0, 0, DueSoonWindowDays)) {
		return StatusDueSoon
	}
	return StatusGood
}

// DaysUntilDue counts calendar days from the day of now to the due day, in
// now's location. Negative values mean the task is overdue.
func DaysUntilDue(task Task, now time.Time) int {
	due := task.NextDueDate.In(now.Location())
	// Civil dates in UTC keep DST transitions out of the subtraction.
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DueDescription renders when the task is due relative to now.
func DueDescription(task Task, now time.Time) string {
	days := DaysUntilDue(task, now)
	switch {
	case days < 0:
		overdue := -days
		if overdue == 1 {
			return "1 day overdue"
		}
		return fmt.Sprintf("%d days overdue", overdue)
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	case days <= DueSoonWindowDays:
		return fmt.Sprintf("Due in %d days", days)
	default:
		return "Due " + task.NextDueDate.In(now.Location()).Format(MediumDateLayout)
	}
}

// LessByUrgency orders a before b by status rank, then by due date.
func LessByUrgency(a, b Task, now time.Time) bool {
	sa, sb := StatusAt(a, now), StatusAt(b, now)
	if sa != sb {
		return sa.Rank() < sb.Rank()
	}
	return a.NextDueDate.Before(b.NextDueDate)
}
