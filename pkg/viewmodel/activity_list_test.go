package viewmodel_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/pkg/database"
	"agenda/pkg/repository"
	"agenda/pkg/viewmodel"
)

func newList(t *testing.T) (*viewmodel.ActivityList, *database.Store) {
	t.Helper()

	store, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "agenda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	list := viewmodel.New(repository.New(store))
	t.Cleanup(list.Close)
	return list, store
}

func waitFor(t *testing.T, ch <-chan viewmodel.State, cond func([]database.Activity) bool) []database.Activity {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-ch:
			require.True(t, ok, "subscription closed")
			if state.Err == nil && cond(state.Activities) {
				return state.Activities
			}
		case <-deadline:
			t.Fatal("timed out waiting for list state")
			return nil
		}
	}
}

func activity(title string, day int) database.Activity {
	return database.Activity{
		Title:    title,
		DueDate:  database.NewDate(2024, 1, day),
		Category: database.CategoryUniversity,
	}
}

func TestActivityList_RelaysStore(t *testing.T) {
	list, _ := newList(t)
	ctx := context.Background()

	ch, unsubscribe := list.Subscribe()
	defer unsubscribe()

	list.Start(ctx)

	id, err := list.Add(ctx, activity("thesis", 20))
	require.NoError(t, err)
	_, err = list.Add(ctx, activity("quiz", 12))
	require.NoError(t, err)

	items := waitFor(t, ch, func(items []database.Activity) bool { return len(items) == 2 })
	assert.Equal(t, "quiz", items[0].Title)
	assert.Equal(t, "thesis", items[1].Title)
	assert.Equal(t, items, list.Activities())

	fetched, err := list.FetchByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	fetched.DueDate = database.NewDate(2024, 1, 5)
	require.NoError(t, list.Update(ctx, *fetched))

	items = waitFor(t, ch, func(items []database.Activity) bool {
		return len(items) == 2 && items[0].ID == id
	})
	assert.Equal(t, "thesis", items[0].Title)

	require.NoError(t, list.Complete(ctx, id))
	items = waitFor(t, ch, func(items []database.Activity) bool { return len(items) == 1 })
	assert.Equal(t, "quiz", items[0].Title)

	require.NoError(t, list.Delete(ctx, items[0]))
	waitFor(t, ch, func(items []database.Activity) bool { return len(items) == 0 })
}

func TestActivityList_FetchMissing(t *testing.T) {
	list, _ := newList(t)

	got, err := list.FetchByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, list.DeleteByID(context.Background(), 7))
	assert.ErrorIs(t, list.Complete(context.Background(), 7), database.ErrActivityNotFound)
}

func TestActivityList_CommandSurvivesCancelledContext(t *testing.T) {
	list, store := newList(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id, err := list.Add(ctx, activity("write anyway", 3))
	require.NoError(t, err)

	got, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestActivityList_StopsPublishingAfterClose(t *testing.T) {
	list, store := newList(t)
	ctx := context.Background()

	ch, _ := list.Subscribe()
	list.Start(ctx)
	waitFor(t, ch, func(items []database.Activity) bool { return len(items) == 0 })

	list.Close()

	_, err := store.Insert(ctx, activity("after close", 4))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, list.Activities())

	for range ch {
		// drain until the subscription is closed
	}
}

type failingRepo struct {
	viewmodel.Repository
	err error
}

func (f failingRepo) WatchPending(ctx context.Context) <-chan database.PendingSnapshot {
	ch := make(chan database.PendingSnapshot, 1)
	ch <- database.PendingSnapshot{Err: f.err}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func TestActivityList_SurfacesQueryError(t *testing.T) {
	boom := errors.New("disk I/O error")
	list := viewmodel.New(failingRepo{err: boom})
	defer list.Close()

	ch, unsubscribe := list.Subscribe()
	defer unsubscribe()

	list.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-ch:
			if state.Err == nil {
				continue
			}
			assert.ErrorIs(t, state.Err, boom)
			assert.Empty(t, state.Activities)
			assert.ErrorIs(t, list.Err(), boom)
			return
		case <-deadline:
			t.Fatal("query error never reached the subscriber")
		}
	}
}
