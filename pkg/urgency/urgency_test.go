package urgency_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"agenda/pkg/database"
	"agenda/pkg/urgency"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	at := func(h, m int) *database.TimeOfDay {
		return &database.TimeOfDay{Hour: h, Minute: m}
	}

	tests := []struct {
		name       string
		due        database.Date
		at         *database.TimeOfDay
		wantBucket urgency.Bucket
		wantTier   urgency.Tier
		wantLabel  string
	}{
		{
			name:       "same day without time is due at end of day",
			due:        database.NewDate(2024, 1, 10),
			wantBucket: urgency.DueToday,
			wantTier:   urgency.TierDay,
			wantLabel:  "due in 11h 59m",
		},
		{
			name:       "yesterday without time",
			due:        database.NewDate(2024, 1, 9),
			wantBucket: urgency.Overdue,
			wantTier:   urgency.TierOverdue,
			wantLabel:  "overdue by 12 hours",
		},
		{
			name:       "two days ago uses day wording",
			due:        database.NewDate(2024, 1, 8),
			wantBucket: urgency.Overdue,
			wantTier:   urgency.TierOverdue,
			wantLabel:  "overdue by 1 day",
		},
		{
			name:       "a week ago",
			due:        database.NewDate(2024, 1, 2),
			at:         at(12, 0),
			wantBucket: urgency.Overdue,
			wantTier:   urgency.TierOverdue,
			wantLabel:  "overdue by 8 days",
		},
		{
			name:       "minutes overdue",
			due:        database.NewDate(2024, 1, 10),
			at:         at(11, 59),
			wantBucket: urgency.Overdue,
			wantTier:   urgency.TierOverdue,
			wantLabel:  "overdue by 1 minute",
		},
		{
			name:       "hours overdue",
			due:        database.NewDate(2024, 1, 10),
			at:         at(9, 30),
			wantBucket: urgency.Overdue,
			wantTier:   urgency.TierOverdue,
			wantLabel:  "overdue by 2 hours",
		},
		{
			name:       "within the hour",
			due:        database.NewDate(2024, 1, 10),
			at:         at(12, 30),
			wantBucket: urgency.DueWithinHour,
			wantTier:   urgency.TierDay,
			wantLabel:  "due in 30 minutes",
		},
		{
			name:       "later today",
			due:        database.NewDate(2024, 1, 10),
			at:         at(15, 15),
			wantBucket: urgency.DueToday,
			wantTier:   urgency.TierDay,
			wantLabel:  "due in 3h 15m",
		},
		{
			name:       "tomorrow morning is still within a day",
			due:        database.NewDate(2024, 1, 11),
			at:         at(8, 0),
			wantBucket: urgency.DueToday,
			wantTier:   urgency.TierDay,
			wantLabel:  "due in 20h 0m",
		},
		{
			name:       "tomorrow without time",
			due:        database.NewDate(2024, 1, 11),
			wantBucket: urgency.DueTomorrow,
			wantTier:   urgency.TierWeek,
			wantLabel:  "due tomorrow",
		},
		{
			name:       "this week",
			due:        database.NewDate(2024, 1, 14),
			wantBucket: urgency.DueThisWeek,
			wantTier:   urgency.TierWeek,
			wantLabel:  "due in 4 days",
		},
		{
			name:       "later shows the date",
			due:        database.NewDate(2024, 1, 20),
			wantBucket: urgency.DueLater,
			wantTier:   urgency.TierLater,
			wantLabel:  "due on 20/01/2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urgency.Classify(now, tt.due, tt.at)
			assert.Equal(t, tt.wantBucket, got.Bucket)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantLabel, got.Label)
		})
	}
}

func TestClassify_MinutesUntilDue(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	got := urgency.Classify(now, database.NewDate(2024, 1, 10), &database.TimeOfDay{Hour: 12, Minute: 30})
	assert.EqualValues(t, 30, got.MinutesUntilDue)

	got = urgency.Classify(now, database.NewDate(2024, 1, 10), nil)
	assert.EqualValues(t, 719, got.MinutesUntilDue)
	assert.NotEqual(t, urgency.Overdue, got.Bucket)
}

func TestClassify_IsDeterministic(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	a := database.Activity{DueDate: database.NewDate(2024, 1, 13)}

	assert.Equal(t, urgency.ClassifyActivity(now, a), urgency.ClassifyActivity(now, a))
}

func TestClassify_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 1, 10, 23, 30, 0, 0, loc)

	got := urgency.Classify(now, database.NewDate(2024, 1, 10), nil)
	assert.Equal(t, urgency.DueWithinHour, got.Bucket)
	assert.Equal(t, "due in 29 minutes", got.Label)
}
