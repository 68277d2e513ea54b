package ui

import (
	"time"

	"github.com/samber/lo"

	"agenda/pkg/database"
	"agenda/pkg/urgency"
)

// GroupBy selects how the pending list is split into sections
type GroupBy int

const (
	GroupByNone GroupBy = iota
	GroupByCategory
	GroupByUrgency
	groupByCount
)

func (g GroupBy) String() string {
	switch g {
	case GroupByCategory:
		return "category"
	case GroupByUrgency:
		return "urgency"
	default:
		return "none"
	}
}

// Next cycles to the following grouping
func (g GroupBy) Next() GroupBy {
	return (g + 1) % groupByCount
}

// ActivityGroup is one section of the list view
type ActivityGroup struct {
	Name       string
	Activities []database.Activity
}

var tierOrder = []urgency.Tier{urgency.TierOverdue, urgency.TierDay, urgency.TierWeek, urgency.TierLater}

var tierNames = map[urgency.Tier]string{
	urgency.TierOverdue: "Overdue",
	urgency.TierDay:     "Next 24 hours",
	urgency.TierWeek:    "This week",
	urgency.TierLater:   "Later",
}

// GroupActivities splits activities into sections. Within a section the order
// of the input is kept, and empty sections are left out.
func GroupActivities(activities []database.Activity, by GroupBy, now time.Time) []ActivityGroup {
	switch by {
	case GroupByCategory:
		groups := lo.GroupBy(activities, func(a database.Activity) database.Category {
			return a.Category
		})
		return lo.FilterMap(database.Categories, func(c database.Category, _ int) (ActivityGroup, bool) {
			items, ok := groups[c]
			return ActivityGroup{Name: c.Label(), Activities: items}, ok
		})

	case GroupByUrgency:
		groups := lo.GroupBy(activities, func(a database.Activity) urgency.Tier {
			return urgency.ClassifyActivity(now, a).Tier
		})
		return lo.FilterMap(tierOrder, func(t urgency.Tier, _ int) (ActivityGroup, bool) {
			items, ok := groups[t]
			return ActivityGroup{Name: tierNames[t], Activities: items}, ok
		})

	default:
		return []ActivityGroup{{Activities: activities}}
	}
}
