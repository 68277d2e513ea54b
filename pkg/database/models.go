package database

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Activity represents a single to-do entry with a due date and reminders
type Activity struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     Date       `db:"due_date" json:"due_date"`
	DueTime     *TimeOfDay `db:"due_time" json:"due_time,omitempty"`
	Category    Category   `db:"category" json:"category"`
	Reminders   []Reminder `db:"reminders" json:"reminders"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// DueAt returns the instant the activity is due in loc. Without a due time the
// activity is due at the very end of its day.
func (a Activity) DueAt(loc *time.Location) time.Time {
	if a.DueTime != nil {
		return a.DueTime.On(a.DueDate, loc)
	}
	return a.DueDate.EndOfDay(loc)
}

// Category groups activities by area of life
type Category string

const (
	CategoryUniversity Category = "University"
	CategoryHome       Category = "Home"
	CategoryWork       Category = "Work"
	CategoryOther      Category = "Other"
)

// Categories lists every category in display order
var Categories = []Category{CategoryUniversity, CategoryHome, CategoryWork, CategoryOther}

// ParseCategory maps a display label back to its category
func ParseCategory(label string) (Category, error) {
	for _, c := range Categories {
		if string(c) == label {
			return c, nil
		}
	}
	return "", errors.Errorf("unknown category %q", label)
}

// Label returns the text persisted and shown for the category
func (c Category) Label() string {
	return string(c)
}

// Date is a calendar day without a time zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate normalizes the given components, so NewDate(2024, 1, 32) is Feb 1st.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return DateOf(t), nil
}

// In returns midnight of the date in loc
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of the date in loc
func (d Date) EndOfDay(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, int(999*time.Millisecond), loc)
}

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	return d.In(time.UTC).Before(other.In(time.UTC))
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d == Date{}
}

// Valid reports whether the date names a real day between years 1 and 9999
func (d Date) Valid() bool {
	if d.Year < 1 || d.Year > 9999 {
		return false
	}
	return NewDate(d.Year, d.Month, d.Day) == d
}

// Format formats the date with a time layout
func (d Date) Format(layout string) string {
	return d.In(time.UTC).Format(layout)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall clock time with minute precision
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM time
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, errors.Wrapf(err, "invalid time %q", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On combines the time with a date in loc
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// Valid reports whether the hour and minute are within a day
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalText implements encoding.TextMarshaler
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
