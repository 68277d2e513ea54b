// Package reminders delivers the reminder offsets stored on pending activities.
package reminders

import (
	"fmt"
	"sort"
	"time"

	"agenda/pkg/database"
)

// Occurrence is one reminder of one activity, pinned to the instant it fires
type Occurrence struct {
	ActivityID int64
	Title      string
	Reminder   database.Reminder
	DueAt      time.Time
	FireAt     time.Time
}

// Key identifies the occurrence in the ledger. Moving the due date or changing
// the offset produces a new key, so the reminder fires again.
func (o Occurrence) Key() string {
	return fmt.Sprintf("%020d/%020d/%d%s", o.ActivityID, o.FireAt.Unix(), o.Reminder.Amount, o.Reminder.Unit)
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%q is due %s (%s)", o.Title, o.DueAt.Format("02/01/2006 15:04"), o.Reminder)
}

// Occurrences computes when each reminder of a fires, earliest first. Completed
// activities have none.
func Occurrences(a database.Activity, loc *time.Location) []Occurrence {
	if a.IsCompleted || len(a.Reminders) == 0 {
		return nil
	}

	due := a.DueAt(loc)
	out := make([]Occurrence, 0, len(a.Reminders))
	for _, r := range a.Reminders {
		if r.Amount <= 0 {
			continue
		}
		out = append(out, Occurrence{
			ActivityID: a.ID,
			Title:      a.Title,
			Reminder:   r,
			DueAt:      due,
			FireAt:     due.Add(-time.Duration(r.ToMinutes()) * time.Minute),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}
