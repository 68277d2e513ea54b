// Package urgency classifies how soon an activity is due.
package urgency

import (
	"fmt"
	"time"

	"agenda/pkg/database"
)

// Bucket is a coarse classification of the time left until an activity is due
type Bucket int

const (
	DueLater Bucket = iota
	DueThisWeek
	DueTomorrow
	DueToday
	DueWithinHour
	Overdue
)

var bucketNames = map[Bucket]string{
	DueLater:      "due later",
	DueThisWeek:   "due this week",
	DueTomorrow:   "due tomorrow",
	DueToday:      "due today",
	DueWithinHour: "due within the hour",
	Overdue:       "overdue",
}

func (b Bucket) String() string {
	return bucketNames[b]
}

// Tier is the display emphasis of a bucket. Higher tiers are more urgent.
type Tier int

const (
	TierLater Tier = iota
	TierWeek
	TierDay
	TierOverdue
)

func (t Tier) String() string {
	switch t {
	case TierOverdue:
		return "overdue"
	case TierDay:
		return "day"
	case TierWeek:
		return "week"
	default:
		return "later"
	}
}

// Result is the outcome of Classify
type Result struct {
	Bucket          Bucket
	Tier            Tier
	Label           string
	MinutesUntilDue int64
}

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * 60
)

// Classify maps an activity due moment to its urgency relative to now. Without a
// due time the activity is due at the end of its day. All arithmetic truncates to
// whole minutes.
func Classify(now time.Time, due database.Date, at *database.TimeOfDay) Result {
	var effective time.Time
	if at != nil {
		effective = at.On(due, now.Location())
	} else {
		effective = due.EndOfDay(now.Location())
	}

	minutes := int64(effective.Sub(now) / time.Minute)
	hours := minutes / minutesPerHour
	days := minutes / minutesPerDay

	r := Result{MinutesUntilDue: minutes, Tier: tierFor(minutes, hours, days)}

	switch {
	case minutes < 0:
		r.Bucket = Overdue
		r.Label = "overdue by " + elapsed(-minutes)
	case minutes < minutesPerHour:
		r.Bucket = DueWithinHour
		r.Label = "due in " + plural(minutes, "minute")
	case hours < 24:
		r.Bucket = DueToday
		r.Label = fmt.Sprintf("due in %dh %dm", hours, minutes%minutesPerHour)
	case days == 0:
		r.Bucket = DueToday
		r.Label = "due today"
	case days == 1:
		r.Bucket = DueTomorrow
		r.Label = "due tomorrow"
	case days <= 7:
		r.Bucket = DueThisWeek
		r.Label = fmt.Sprintf("due in %d days", days)
	default:
		r.Bucket = DueLater
		r.Label = "due on " + due.Format("02/01/2006")
	}

	return r
}

// ClassifyActivity classifies an activity's due date and time
func ClassifyActivity(now time.Time, a database.Activity) Result {
	return Classify(now, a.DueDate, a.DueTime)
}

func tierFor(minutes, hours, days int64) Tier {
	switch {
	case minutes < 0:
		return TierOverdue
	case hours < 24:
		return TierDay
	case days <= 7:
		return TierWeek
	default:
		return TierLater
	}
}

func elapsed(minutes int64) string {
	switch {
	case minutes < minutesPerHour:
		return plural(minutes, "minute")
	case minutes < minutesPerDay:
		return plural(minutes/minutesPerHour, "hour")
	default:
		return plural(minutes/minutesPerDay, "day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
