package database

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ReminderUnit is the unit of a reminder offset
type ReminderUnit string

const (
	Minutes ReminderUnit = "MINUTES"
	Hours   ReminderUnit = "HOURS"
	Days    ReminderUnit = "DAYS"
)

// Reminder asks to be notified Amount units before an activity is due
type Reminder struct {
	Amount int          `json:"amount" validate:"gt=0"`
	Unit   ReminderUnit `json:"unit" validate:"oneof=MINUTES HOURS DAYS"`
}

// ToMinutes normalizes the offset to minutes
func (r Reminder) ToMinutes() int {
	switch r.Unit {
	case Hours:
		return r.Amount * 60
	case Days:
		return r.Amount * 1440
	default:
		return r.Amount
	}
}

// DisplayLabel returns the unit name, singular when the amount is one
func (r Reminder) DisplayLabel() string {
	var singular, plural string
	switch r.Unit {
	case Hours:
		singular, plural = "hour", "hours"
	case Days:
		singular, plural = "day", "days"
	default:
		singular, plural = "minute", "minutes"
	}
	if r.Amount == 1 {
		return singular
	}
	return plural
}

func (r Reminder) String() string {
	return fmt.Sprintf("%d %s before", r.Amount, r.DisplayLabel())
}

// encodeReminders serializes reminders for the reminders column
func encodeReminders(reminders []Reminder) (string, error) {
	if reminders == nil {
		reminders = []Reminder{}
	}
	b, err := json.Marshal(reminders)
	if err != nil {
		return "", errors.Wrap(err, "encode reminders")
	}
	return string(b), nil
}

// decodeReminders parses the reminders column
func decodeReminders(s string) ([]Reminder, error) {
	reminders := []Reminder{}
	if s == "" {
		return reminders, nil
	}
	if err := json.Unmarshal([]byte(s), &reminders); err != nil {
		return nil, errors.Wrap(err, "decode reminders")
	}
	return reminders, nil
}
