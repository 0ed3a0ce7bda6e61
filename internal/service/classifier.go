package service

import (
	"slices"
	"time"

	"homekeep/internal/model"
)

// Dashboard is a point-in-time partition of tasks by urgency.
type Dashboard struct {
	Now       time.Time
	Overdue   []model.Task
	DueSoon   []model.Task
	Good      []model.Task
	Attention int
}

// Total returns the number of classified tasks.
func (d Dashboard) Total() int {
	return len(d.Overdue) + len(d.DueSoon) + len(d.Good)
}

// Classify partitions tasks into urgency buckets, each sorted by due date.
// Tasks with equal due dates keep their input order.
func Classify(tasks []model.Task, now time.Time) Dashboard {
	d := Dashboard{Now: now}
	for _, task := range tasks {
		switch model.StatusAt(task, now) {
		case model.StatusOverdue:
			d.Overdue = append(d.Overdue, task)
		case model.StatusDueSoon:
			d.DueSoon = append(d.DueSoon, task)
		default:
			d.Good = append(d.Good, task)
		}
	}
	sortByDueDate(d.Overdue)
	sortByDueDate(d.DueSoon)
	sortByDueDate(d.Good)
	d.Attention = len(d.Overdue) + len(d.DueSoon)
	return d
}

func OverdueTasks(tasks []model.Task, now time.Time) []model.Task {
	return filterByStatus(tasks, now, model.StatusOverdue)
}

func DueSoonTasks(tasks []model.Task, now time.Time) []model.Task {
	return filterByStatus(tasks, now, model.StatusDueSoon)
}

func GoodTasks(tasks []model.Task, now time.Time) []model.Task {
	return filterByStatus(tasks, now, model.StatusGood)
}

// AttentionCount counts tasks that are overdue or due soon.
func AttentionCount(tasks []model.Task, now time.Time) int {
	n := 0
	for _, task := range tasks {
		if model.StatusAt(task, now) != model.StatusGood {
			n++
		}
	}
	return n
}

// BadgeCount is the number shown on the notification badge: overdue tasks.
func BadgeCount(tasks []model.Task, now time.Time) int {
	n := 0
	for _, task := range tasks {
		if model.StatusAt(task, now) == model.StatusOverdue {
			n++
		}
	}
	return n
}

// SortByUrgency orders tasks overdue first, then due soon, then good, each by
// due date.
func SortByUrgency(tasks []model.Task, now time.Time) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		switch {
		case model.LessByUrgency(a, b, now):
			return -1
		case model.LessByUrgency(b, a, now):
			return 1
		default:
			return 0
		}
	})
}

func filterByStatus(tasks []model.Task, now time.Time, status model.Status) []model.Task {
	var out []model.Task
	for _, task := range tasks {
		if model.StatusAt(task, now) == status {
			out = append(out, task)
		}
	}
	sortByDueDate(out)
	return out
}

func sortByDueDate(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return a.NextDueDate.Compare(b.NextDueDate)
	})
}
