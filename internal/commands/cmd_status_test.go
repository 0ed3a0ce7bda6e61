package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

func TestRenderDashboard(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "aaaaaaaa-1", Name: "Gutter Cleaning", Frequency: model.Every(6, model.FrequencyMonths), NextDueDate: now.AddDate(0, 0, -3)},
		{ID: "bbbbbbbb-2", Name: "HVAC Filter Replacement", Frequency: model.Every(3, model.FrequencyMonths), NextDueDate: now.AddDate(0, 0, 1)},
		{ID: "cccccccc-3", Name: "Septic Pump", Frequency: model.Every(4, model.FrequencyYears), NextDueDate: now.AddDate(1, 0, 0)},
	}

	var buf bytes.Buffer
	renderDashboard(&buf, service.Classify(tasks, now), now)
	out := buf.String()

	overdue := strings.Index(out, "OVERDUE (1)")
	soon := strings.Index(out, "DUE SOON (1)")
	good := strings.Index(out, "GOOD (1)")
	assert.True(t, overdue >= 0 && soon > overdue && good > soon, out)

	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "3 days overdue")
	assert.Contains(t, out, "Due tomorrow")
	assert.Contains(t, out, "Every 4 years")
	assert.Contains(t, out, "2 of 3 tasks need attention")
}

func TestRenderDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	renderDashboard(&buf, service.Classify(nil, now), now)
	assert.Contains(t, buf.String(), "No tasks yet")
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, colorError, statusColor(model.StatusOverdue))
	assert.Equal(t, colorWarning, statusColor(model.StatusDueSoon))
	assert.Equal(t, colorSuccess, statusColor(model.StatusGood))
}
