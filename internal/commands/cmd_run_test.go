package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homekeep/internal/config"
	"homekeep/internal/model"
)

func TestApplyPreferences_OnlyWhenChanged(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "homekeep.db")
	cfg.Timezone = "UTC"

	app, closeApp, err := Open(&Flags{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(closeApp)

	ctx := context.Background()
	assert.False(t, applyPreferences(ctx, app, cfg.Reminders))

	next := cfg.Reminders
	next.DaysBeforeDue = 3
	assert.True(t, applyPreferences(ctx, app, next))
	assert.Equal(t, next, app.Tasks.Preferences())

	assert.False(t, applyPreferences(ctx, app, next))
	assert.False(t, applyPreferences(ctx, app, model.ReminderPreferences{ReminderHour: 30}))
	assert.Equal(t, next, app.Tasks.Preferences())
}
