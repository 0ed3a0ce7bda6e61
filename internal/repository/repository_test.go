package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTask(t *testing.T, name string, due time.Time) *model.Task {
	t.Helper()
	task, err := model.NewTask(model.TaskParams{
		Name:        name,
		Frequency:   model.Every(1, model.FrequencyMonths),
		NextDueDate: &due,
	}, day(2024, 1, 1))
	require.NoError(t, err)
	return task
}

func TestNewDB_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "homekeep.db")
	db, err := NewDB(path, zerolog.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.FileExists(t, path)
}

func TestTaskRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	task := newTask(t, "Roof Inspection", day(2024, 9, 1))
	notes := "bring binoculars"
	task.Notes = &notes
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roof Inspection", got.Name)
	assert.Equal(t, "bring binoculars", got.NotesText())
	assert.Equal(t, model.FrequencyMonths, got.Frequency.Kind)
	assert.Equal(t, 1, got.Frequency.Interval)
	assert.True(t, got.NextDueDate.Equal(day(2024, 9, 1)))
	assert.Nil(t, got.LastCompletedDate)

	got.MarkComplete(day(2024, 9, 3))
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, again.LastCompletedDate)
	assert.True(t, again.LastCompletedDate.Equal(day(2024, 9, 3)))
	assert.True(t, again.NextDueDate.Equal(day(2024, 10, 3)))

	require.NoError(t, repo.Delete(ctx, task.ID))
	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), service.ErrTaskNotFound)
}

func TestTaskRepository_SeasonalRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	due := day(2024, 10, 1)
	task, err := model.NewTask(model.TaskParams{
		Name:        "Winterize Spigots",
		Frequency:   model.Seasonal(time.October, 1),
		NextDueDate: &due,
		IsPreloaded: true,
	}, day(2024, 3, 1))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPreloaded)
	month, d := got.Frequency.SeasonalAnchor()
	assert.Equal(t, time.October, month)
	assert.Equal(t, 1, d)
}

func TestTaskRepository_ListByDueDate(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	loc := time.FixedZone("UTC+9", 9*60*60)
	for _, tt := range []struct {
		name string
		due  time.Time
	}{
		{"c", day(2024, 8, 1)},
		{"a", day(2024, 6, 1)},
		// 08:00 in UTC+9 on Jul 1 is 23:00 UTC on Jun 30.
		{"b", time.Date(2024, 7, 1, 8, 0, 0, 0, loc)},
	} {
		require.NoError(t, repo.Create(ctx, newTask(t, tt.name, tt.due)))
	}

	tasks, err := repo.ListByDueDate(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestReminderRepository_ReplaceKeepsOnePerTask(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepository(newTestDB(t))

	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "t1", FireAt: day(2024, 6, 1), Title: "x", Body: "first"}))
	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "t1", FireAt: day(2024, 7, 1), Title: "x", Body: "second"}))
	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "t2", FireAt: day(2024, 6, 15), Title: "x", Body: "other"}))

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "t2", pending[0].TaskID)
	assert.Equal(t, "second", pending[1].Body)
	assert.Equal(t, model.ReminderScheduled, pending[1].State)
}

func TestReminderRepository_DueAndFired(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepository(newTestDB(t))

	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "past", FireAt: day(2024, 6, 1), Title: "x", Body: "x"}))
	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "now", FireAt: day(2024, 6, 10), Title: "x", Body: "x"}))
	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "future", FireAt: day(2024, 6, 11), Title: "x", Body: "x"}))

	due, err := repo.Due(ctx, day(2024, 6, 10))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].TaskID)
	assert.Equal(t, "now", due[1].TaskID)

	require.NoError(t, repo.MarkFired(ctx, due[0].ID, day(2024, 6, 10)))
	due, err = repo.Due(ctx, day(2024, 6, 10))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "now", due[0].TaskID)

	require.NoError(t, repo.DeleteByTask(ctx, "now"))
	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "future", pending[0].TaskID)

	require.NoError(t, repo.DeletePending(ctx))
	pending, err = repo.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	fired, err := repo.FindByTask(ctx, "past")
	require.NoError(t, err)
	require.NotNil(t, fired)
	assert.Equal(t, model.ReminderFired, fired.State)

	missing, err := repo.FindByTask(ctx, "future")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReminderRepository_DueAtRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepository(newTestDB(t))

	loc := time.FixedZone("UTC-5", -5*60*60)
	due := time.Date(2024, 6, 5, 0, 0, 0, 0, loc)
	require.NoError(t, repo.Replace(ctx, &model.Reminder{TaskID: "t1", FireAt: day(2024, 6, 4), DueAt: due, Title: "x", Body: "x"}))

	got, err := repo.FindByTask(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DueAt.Equal(due))
}

func TestUserRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	u, err := repo.UpsertFromTelegram(ctx, 42, 4200, "Ada", "", "ada")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.UpsertFromTelegram(ctx, 42, 4201, "Ada", "Lovelace", "ada")
	require.NoError(t, err)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(4201), users[0].ChatID)
	assert.Equal(t, "Lovelace", users[0].LastName)

	require.NoError(t, repo.Unsubscribe(ctx, 42))
	users, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
