package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/pkg/database"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agenda.db")
	store, err := database.Open(context.Background(), path, database.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleActivity(title string, due database.Date) database.Activity {
	return database.Activity{
		Title:       title,
		Description: "description of " + title,
		DueDate:     due,
		Category:    database.CategoryWork,
		Reminders: []database.Reminder{
			{Amount: 15, Unit: database.Minutes},
			{Amount: 1, Unit: database.Days},
		},
	}
}

func TestStore_InsertAndGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := database.TimeOfDay{Hour: 9, Minute: 30}
	a := sampleActivity("write report", database.NewDate(2024, 1, 12))
	a.DueTime = &at

	id, err := store.Insert(ctx, a)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.True(t, got.CreatedAt.Equal(fixedNow))

	got.ID = 0
	got.CreatedAt = time.Time{}
	assert.Equal(t, a, *got)
}

func TestStore_GetByIDMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadPendingOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	late := sampleActivity("late", database.NewDate(2024, 3, 1))
	early := sampleActivity("early", database.NewDate(2024, 1, 2))
	done := sampleActivity("done", database.NewDate(2023, 12, 1))
	done.IsCompleted = true
	untimed := sampleActivity("untimed", database.NewDate(2024, 2, 1))
	timed := sampleActivity("timed", database.NewDate(2024, 2, 1))
	timed.DueTime = &database.TimeOfDay{Hour: 8}

	for _, a := range []database.Activity{late, early, done, untimed, timed} {
		_, err := store.Insert(ctx, a)
		require.NoError(t, err)
	}

	pending, err := store.LoadPending(ctx)
	require.NoError(t, err)

	var titles []string
	for _, a := range pending {
		assert.False(t, a.IsCompleted)
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"early", "timed", "untimed", "late"}, titles)

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_InsertReplacesExistingID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, sampleActivity("first", database.NewDate(2024, 1, 12)))
	require.NoError(t, err)

	replacement := sampleActivity("second", database.NewDate(2024, 1, 13))
	replacement.ID = id
	replacedID, err := store.Insert(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, id, replacedID)

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Title)
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, sampleActivity("draft", database.NewDate(2024, 1, 12)))
	require.NoError(t, err)

	a, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	createdAt := a.CreatedAt

	a.Title = "final"
	a.Reminders = nil
	a.CreatedAt = fixedNow.Add(48 * time.Hour)
	require.NoError(t, store.Update(ctx, *a))

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Empty(t, got.Reminders)
	assert.True(t, got.CreatedAt.Equal(createdAt), "created_at must not change on update")
}

func TestStore_UpdateMissing(t *testing.T) {
	store := newTestStore(t)

	a := sampleActivity("ghost", database.NewDate(2024, 1, 12))
	a.ID = 99

	err := store.Update(context.Background(), a)
	assert.ErrorIs(t, err, database.ErrActivityNotFound)

	err = store.SetCompleted(context.Background(), 99, true)
	assert.ErrorIs(t, err, database.ErrActivityNotFound)
}

func TestStore_RejectsUnreadableRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, sampleActivity("kept", database.NewDate(2024, 1, 12)))
	require.NoError(t, err)

	late := database.TimeOfDay{Hour: 25}
	odd := database.TimeOfDay{Hour: 10, Minute: 60}

	tests := []struct {
		name   string
		mutate func(a *database.Activity)
	}{
		{name: "missing due date", mutate: func(a *database.Activity) { a.DueDate = database.Date{} }},
		{name: "impossible day", mutate: func(a *database.Activity) { a.DueDate = database.Date{Year: 2024, Month: 2, Day: 31} }},
		{name: "year out of range", mutate: func(a *database.Activity) { a.DueDate = database.Date{Year: 10000, Month: 1, Day: 1} }},
		{name: "hour out of range", mutate: func(a *database.Activity) { a.DueTime = &late }},
		{name: "minute out of range", mutate: func(a *database.Activity) { a.DueTime = &odd }},
		{name: "non-positive reminder", mutate: func(a *database.Activity) {
			a.Reminders = []database.Reminder{{Amount: 0, Unit: database.Hours}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleActivity("broken", database.NewDate(2024, 1, 12))
			tt.mutate(&a)

			_, err := store.Insert(ctx, a)
			assert.ErrorIs(t, err, database.ErrInvalidActivity)

			a.ID = 1
			assert.ErrorIs(t, store.Update(ctx, a), database.ErrInvalidActivity)

			pending, err := store.LoadPending(ctx)
			require.NoError(t, err)
			require.Len(t, pending, 1)
			assert.Equal(t, "kept", pending[0].Title)
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, sampleActivity("keep", database.NewDate(2024, 1, 12)))
	require.NoError(t, err)

	before, err := store.LoadPending(ctx)
	require.NoError(t, err)

	require.NoError(t, store.DeleteByID(ctx, id+100))
	require.NoError(t, store.DeleteByID(ctx, id+100))

	after, err := store.LoadPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, store.Delete(ctx, after[0]))
	require.NoError(t, store.Delete(ctx, after[0]))

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CompleteAndPurge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, sampleActivity("finish", database.NewDate(2024, 1, 12)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, sampleActivity("open", database.NewDate(2024, 1, 13)))
	require.NoError(t, err)

	require.NoError(t, store.SetCompleted(ctx, id, true))

	pending, err := store.LoadPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "open", pending[0].Title)

	n, err := store.PurgeCompleted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_SecondOpenIsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.db")

	first, err := database.Open(context.Background(), path)
	require.NoError(t, err)

	_, err = database.Open(context.Background(), path)
	assert.ErrorIs(t, err, database.ErrStoreLocked)

	require.NoError(t, first.Close())

	second, err := database.Open(context.Background(), path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}
