package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// FrequencyKind is the calendar unit a task recurs in.
type FrequencyKind string

const (
	FrequencyDays     FrequencyKind = "days"
	FrequencyWeeks    FrequencyKind = "weeks"
	FrequencyMonths   FrequencyKind = "months"
	FrequencyYears    FrequencyKind = "years"
	FrequencySeasonal FrequencyKind = "seasonal"
)

// FrequencyKinds lists every kind in display order.
var FrequencyKinds = []FrequencyKind{
	FrequencyDays,
	FrequencyWeeks,
	FrequencyMonths,
	FrequencyYears,
	FrequencySeasonal,
}

const (
	defaultSeasonalMonth = time.October
	defaultSeasonalDay   = 1
	seasonalStepMonths   = 3
)

// ParseFrequencyKind accepts a kind name in any case, singular or plural.
func ParseFrequencyKind(raw string) (FrequencyKind, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, k := range FrequencyKinds {
		if s == string(k) || s+"s" == string(k) {
			return k, nil
		}
	}
	if s == "season" {
		return FrequencySeasonal, nil
	}
	return "", fmt.Errorf("unknown frequency %q", raw)
}

// Valid reports whether k is one of the known kinds.
func (k FrequencyKind) Valid() bool {
	for _, known := range FrequencyKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k FrequencyKind) DisplayName() string {
	switch k {
	case FrequencyDays:
		return "Days"
	case FrequencyWeeks:
		return "Weeks"
	case FrequencyMonths:
		return "Months"
	case FrequencyYears:
		return "Years"
	case FrequencySeasonal:
		return "Seasonal"
	default:
		return string(k)
	}
}

func (k FrequencyKind) PluralUnit() string {
	switch k {
	case FrequencySeasonal:
		return "season"
	default:
		return string(k)
	}
}

// Frequency is the recurrence rule attached to a task.
type Frequency struct {
	Kind          FrequencyKind `gorm:"size:16;not null"`
	Interval      int           `gorm:"not null;default:1"`
	SeasonalMonth *int
	SeasonalDay   *int
}

// Every returns an interval frequency, e.g. Every(3, FrequencyMonths).
func Every(n int, kind FrequencyKind) Frequency {
	return Frequency{Kind: kind, Interval: n}
}

// Seasonal returns a seasonal frequency anchored at month/day.
func Seasonal(month time.Month, day int) Frequency {
	m, d := int(month), day
	return Frequency{Kind: FrequencySeasonal, Interval: 1, SeasonalMonth: &m, SeasonalDay: &d}
}

// Validate rejects specs that would produce wrong due dates.
func (f Frequency) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if !f.Kind.Valid() {
		errs = errs.Append("frequency.kind", fmt.Errorf("unknown kind %q", f.Kind))
	}
	if f.Kind != FrequencySeasonal && f.Interval < 1 {
		errs = errs.Append("frequency.interval", fmt.Errorf("must be at least 1, got %d", f.Interval))
	}
	if f.SeasonalMonth != nil && (*f.SeasonalMonth < 1 || *f.SeasonalMonth > 12) {
		errs = errs.Append("frequency.seasonal_month", fmt.Errorf("must be 1-12, got %d", *f.SeasonalMonth))
	}
	if f.SeasonalDay != nil && (*f.SeasonalDay < 1 || *f.SeasonalDay > 31) {
		errs = errs.Append("frequency.seasonal_day", fmt.Errorf("must be 1-31, got %d", *f.SeasonalDay))
	}

	return errs.ToError()
}

// Next returns the occurrence following from. Seasonal frequencies advance a
// flat three months regardless of Interval.
//
// If no later date can be produced the result is from itself; callers should
// treat an unchanged date as a malformed frequency.
func (f Frequency) Next(from time.Time) time.Time {
	var next time.Time
	switch f.Kind {
	case FrequencyDays:
		if f.Interval < 1 {
			return from
		}
		next = from.AddDate(0, 0, f.Interval)
	case FrequencyWeeks:
		if f.Interval < 1 {
			return from
		}
		next = from.AddDate(0, 0, 7*f.Interval)
	case FrequencyMonths:
		if f.Interval < 1 {
			return from
		}
		next = addMonths(from, f.Interval)
	case FrequencyYears:
		if f.Interval < 1 {
			return from
		}
		next = addMonths(from, 12*f.Interval)
	case FrequencySeasonal:
		next = addMonths(from, seasonalStepMonths)
	default:
		return from
	}

	if !next.After(from) {
		return from
	}
	return next
}

// SeasonalAnchor returns the calendar date a seasonal task is pinned to.
func (f Frequency) SeasonalAnchor() (time.Month, int) {
	month, day := defaultSeasonalMonth, defaultSeasonalDay
	if f.SeasonalMonth != nil {
		month = time.Month(*f.SeasonalMonth)
	}
	if f.SeasonalDay != nil {
		day = *f.SeasonalDay
	}
	return month, day
}

// NextAnchorDate returns the first anchor date falling on or after the day of
// now, in now's location.
func (f Frequency) NextAnchorDate(now time.Time) time.Time {
	month, day := f.SeasonalAnchor()
	today := startOfDay(now)

	candidate := clampedDate(now.Year(), month, day, now.Location())
	if candidate.Before(today) {
		candidate = clampedDate(now.Year()+1, month, day, now.Location())
	}
	return candidate
}

// Description renders the frequency for display, e.g. "Every 3 months".
func (f Frequency) Description() string {
	if f.Kind == FrequencySeasonal {
		return "Seasonal"
	}
	unit := f.Kind.PluralUnit()
	if f.Interval == 1 && unit != "" {
		return "Every " + unit[:len(unit)-1]
	}
	return fmt.Sprintf("Every %d %s", f.Interval, unit)
}

// addMonths moves t forward by n calendar months, keeping the time of day and
// clamping the day to the end of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + n
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)

	if last := daysInMonth(targetMonth, targetYear); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(targetYear, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysInMonth(month, year); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
