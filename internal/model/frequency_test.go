package model

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		from time.Time
		want time.Time
	}{
		{name: "days", freq: Every(10, FrequencyDays), from: date(2024, 1, 25), want: date(2024, 2, 4)},
		{name: "weeks", freq: Every(2, FrequencyWeeks), from: date(2024, 12, 25), want: date(2025, 1, 8)},
		{name: "months", freq: Every(3, FrequencyMonths), from: date(2024, 1, 20), want: date(2024, 4, 20)},
		{name: "month end clamps in leap year", freq: Every(1, FrequencyMonths), from: date(2024, 1, 31), want: date(2024, 2, 29)},
		{name: "month end clamps", freq: Every(1, FrequencyMonths), from: date(2023, 1, 31), want: date(2023, 2, 28)},
		{name: "months across year", freq: Every(14, FrequencyMonths), from: date(2024, 11, 30), want: date(2026, 1, 30)},
		{name: "years", freq: Every(4, FrequencyYears), from: date(2024, 6, 1), want: date(2028, 6, 1)},
		{name: "leap day plus a year", freq: Every(1, FrequencyYears), from: date(2024, 2, 29), want: date(2025, 2, 28)},
		{name: "seasonal", freq: Frequency{Kind: FrequencySeasonal}, from: date(2024, 1, 1), want: date(2024, 4, 1)},
		{name: "seasonal ignores interval", freq: Frequency{Kind: FrequencySeasonal, Interval: 5}, from: date(2024, 1, 1), want: date(2024, 4, 1)},
		{name: "seasonal clamps", freq: Seasonal(time.October, 1), from: date(2024, 11, 30), want: date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.freq.Next(tt.from))
		})
	}
}

func TestFrequencyNext_KeepsTimeOfDay(t *testing.T) {
	from := time.Date(2024, 3, 15, 18, 42, 7, 0, time.UTC)
	got := Every(1, FrequencyMonths).Next(from)
	assert.Equal(t, time.Date(2024, 4, 15, 18, 42, 7, 0, time.UTC), got)
}

func TestFrequencyNext_Monotonic(t *testing.T) {
	from := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)
	for _, kind := range FrequencyKinds {
		for n := 1; n <= 24; n++ {
			next := Every(n, kind).Next(from)
			assert.True(t, next.After(from), "%s x%d returned %s", kind, n, next)
		}
	}
}

func TestFrequencyNext_FailsClosed(t *testing.T) {
	from := date(2024, 5, 5)
	assert.Equal(t, from, Every(0, FrequencyMonths).Next(from))
	assert.Equal(t, from, Every(-2, FrequencyDays).Next(from))
	assert.Equal(t, from, Frequency{Kind: "fortnights", Interval: 1}.Next(from))
}

func TestFrequencyDescription(t *testing.T) {
	assert.Equal(t, "Every month", Every(1, FrequencyMonths).Description())
	assert.Equal(t, "Every day", Every(1, FrequencyDays).Description())
	assert.Equal(t, "Every 3 months", Every(3, FrequencyMonths).Description())
	assert.Equal(t, "Every 2 weeks", Every(2, FrequencyWeeks).Description())
	assert.Equal(t, "Every year", Every(1, FrequencyYears).Description())
	assert.Equal(t, "Seasonal", Seasonal(time.March, 20).Description())
}

func TestFrequencyKindDisplayName(t *testing.T) {
	want := []string{"Days", "Weeks", "Months", "Years", "Seasonal"}
	for i, k := range FrequencyKinds {
		assert.Equal(t, want[i], k.DisplayName())
	}
}

func TestParseFrequencyKind(t *testing.T) {
	for raw, want := range map[string]FrequencyKind{
		"days":     FrequencyDays,
		"Week":     FrequencyWeeks,
		" MONTHS ": FrequencyMonths,
		"year":     FrequencyYears,
		"season":   FrequencySeasonal,
		"seasonal": FrequencySeasonal,
	} {
		got, err := ParseFrequencyKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseFrequencyKind("hourly")
	assert.Error(t, err)
}

func TestFrequencyValidate(t *testing.T) {
	require.NoError(t, Every(1, FrequencyDays).Validate())
	require.NoError(t, Frequency{Kind: FrequencySeasonal}.Validate())

	err := Frequency{Kind: FrequencyMonths, Interval: 0}.Validate()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "frequency.interval", fieldErrs[0].Field)

	month, day := 13, 0
	err = Frequency{Kind: FrequencySeasonal, SeasonalMonth: &month, SeasonalDay: &day}.Validate()
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)

	err = Frequency{Kind: "hourly", Interval: 1}.Validate()
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "frequency.kind", fieldErrs[0].Field)
}

func TestFrequencySeasonalAnchor(t *testing.T) {
	month, day := Frequency{Kind: FrequencySeasonal}.SeasonalAnchor()
	assert.Equal(t, time.October, month)
	assert.Equal(t, 1, day)

	f := Seasonal(time.April, 15)
	assert.Equal(t, date(2024, 4, 15), f.NextAnchorDate(time.Date(2024, 4, 15, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, date(2025, 4, 15), f.NextAnchorDate(date(2024, 4, 16)))
	assert.Equal(t, date(2024, 4, 15), f.NextAnchorDate(date(2024, 1, 1)))
}
