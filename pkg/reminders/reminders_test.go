package reminders_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"agenda/pkg/database"
	"agenda/pkg/reminders"
	"agenda/pkg/reminders/mocks"
)

type staticSource []database.Activity

func (s staticSource) Activities() []database.Activity { return s }

func dueAt(hour, minute int) *database.TimeOfDay {
	return &database.TimeOfDay{Hour: hour, Minute: minute}
}

func openLedger(t *testing.T) *reminders.Ledger {
	t.Helper()
	ledger, err := reminders.OpenLedger(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestOccurrences(t *testing.T) {
	a := database.Activity{
		ID:       3,
		Title:    "exam",
		DueDate:  database.NewDate(2024, 1, 10),
		DueTime:  dueAt(18, 0),
		Category: database.CategoryUniversity,
		Reminders: []database.Reminder{
			{Amount: 1, Unit: database.Hours},
			{Amount: 2, Unit: database.Days},
			{Amount: 15, Unit: database.Minutes},
		},
	}

	got := reminders.Occurrences(a, time.UTC)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC), got[0].FireAt)
	assert.Equal(t, time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC), got[1].FireAt)
	assert.Equal(t, time.Date(2024, 1, 10, 17, 45, 0, 0, time.UTC), got[2].FireAt)
	assert.NotEqual(t, got[0].Key(), got[1].Key())

	t.Run("no due time fires from end of day", func(t *testing.T) {
		a := a
		a.DueTime = nil
		a.Reminders = []database.Reminder{{Amount: 30, Unit: database.Minutes}}

		got := reminders.Occurrences(a, time.UTC)
		require.Len(t, got, 1)
		assert.Equal(t, 23, got[0].FireAt.Hour())
		assert.Equal(t, 29, got[0].FireAt.Minute())
	})

	t.Run("completed activities have none", func(t *testing.T) {
		a := a
		a.IsCompleted = true
		assert.Empty(t, reminders.Occurrences(a, time.UTC))
	})
}

func TestLedger(t *testing.T) {
	ledger := openLedger(t)

	old := reminders.Occurrence{ActivityID: 1, FireAt: time.Date(2023, 11, 1, 9, 0, 0, 0, time.UTC),
		Reminder: database.Reminder{Amount: 1, Unit: database.Days}}
	recent := reminders.Occurrence{ActivityID: 2, FireAt: time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
		Reminder: database.Reminder{Amount: 1, Unit: database.Hours}}

	seen, err := ledger.Seen(old)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, ledger.Record(old))
	require.NoError(t, ledger.Record(recent))

	seen, err = ledger.Seen(old)
	require.NoError(t, err)
	assert.True(t, seen)

	removed, err := ledger.Cleanup(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := ledger.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	seen, err = ledger.Seen(recent)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMonitor_Check(t *testing.T) {
	source := staticSource{
		{
			ID:       1,
			Title:    "exam",
			DueDate:  database.NewDate(2024, 1, 10),
			DueTime:  dueAt(18, 0),
			Category: database.CategoryUniversity,
			Reminders: []database.Reminder{
				{Amount: 1, Unit: database.Hours},
				{Amount: 1, Unit: database.Days},
				{Amount: 10, Unit: database.Minutes},
			},
		},
		{
			ID:        2,
			Title:     "no reminders",
			DueDate:   database.NewDate(2024, 1, 10),
			Category:  database.CategoryHome,
			Reminders: []database.Reminder{},
		},
	}
	now := time.Date(2024, 1, 10, 17, 5, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(n *mocks.MockNotifier)
		checks    int
		wantErr   bool
	}{
		{
			name: "delivers only the occurrence inside the lookback window once",
			setupMock: func(n *mocks.MockNotifier) {
				n.EXPECT().
					Notify(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o reminders.Occurrence) error {
						assert.EqualValues(t, 1, o.ActivityID)
						assert.Equal(t, database.Reminder{Amount: 1, Unit: database.Hours}, o.Reminder)
						return nil
					}).
					Times(1)
			},
			checks: 2,
		},
		{
			name: "failed delivery is retried",
			setupMock: func(n *mocks.MockNotifier) {
				gomock.InOrder(
					n.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("terminal gone")),
					n.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
			checks:  1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			notifier := mocks.NewMockNotifier(ctrl)
			tt.setupMock(notifier)

			monitor, err := reminders.NewMonitor(source, notifier, openLedger(t), reminders.Config{
				Interval: time.Minute,
				Lookback: time.Hour,
				Location: time.UTC,
			})
			require.NoError(t, err)

			for i := 0; i < tt.checks; i++ {
				err := monitor.Check(context.Background(), now)
				if tt.wantErr {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			}
			if tt.wantErr {
				assert.NoError(t, monitor.Check(context.Background(), now))
			}
		})
	}
}

func TestMonitor_StartStop(t *testing.T) {
	delivered := make(chan reminders.Occurrence, 1)
	notifier := reminders.NotifierFunc(func(_ context.Context, o reminders.Occurrence) error {
		delivered <- o
		return nil
	})

	now := time.Date(2024, 1, 10, 17, 5, 0, 0, time.UTC)
	source := staticSource{{
		ID:        9,
		Title:     "call home",
		DueDate:   database.NewDate(2024, 1, 10),
		DueTime:   dueAt(17, 10),
		Category:  database.CategoryHome,
		Reminders: []database.Reminder{{Amount: 10, Unit: database.Minutes}},
	}}

	monitor, err := reminders.NewMonitor(source, notifier, openLedger(t), reminders.Config{Location: time.UTC},
		reminders.WithMonitorClock(func() time.Time { return now }))
	require.NoError(t, err)
	monitor.Start(context.Background())
	defer monitor.Stop(context.Background())

	select {
	case o := <-delivered:
		assert.EqualValues(t, 9, o.ActivityID)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder not delivered on start")
	}
}

func TestMonitor_FractionalInterval(t *testing.T) {
	_, err := reminders.NewMonitor(staticSource{}, reminders.LogNotifier{}, openLedger(t), reminders.Config{
		Interval: 1500 * time.Millisecond,
	})
	assert.NoError(t, err)
}

func TestMonitor_StoppedMonitorNeverStarts(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	now := time.Date(2024, 1, 10, 17, 5, 0, 0, time.UTC)
	source := staticSource{{
		ID:        3,
		Title:     "water plants",
		DueDate:   database.NewDate(2024, 1, 10),
		DueTime:   dueAt(17, 10),
		Category:  database.CategoryHome,
		Reminders: []database.Reminder{{Amount: 10, Unit: database.Minutes}},
	}}

	monitor, err := reminders.NewMonitor(source, notifier, openLedger(t), reminders.Config{Location: time.UTC},
		reminders.WithMonitorClock(func() time.Time { return now }))
	require.NoError(t, err)

	monitor.Stop(context.Background())
	monitor.Start(context.Background())
	monitor.Stop(context.Background())
}
