// Package forms validates activity input at the edge of the application, before
// anything reaches the store.
package forms

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"agenda/pkg/database"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
}

// ActivityInput is an activity as typed by the user
type ActivityInput struct {
	Title       string              `form:"title" validate:"required"`
	Description string              `form:"description"`
	Date        string              `form:"date" validate:"required,datetime=2006-01-02"`
	Time        string              `form:"time" validate:"omitempty,datetime=15:04"`
	Category    string              `form:"category" validate:"required,oneof=University Home Work Other"`
	Reminders   []database.Reminder `form:"reminders" validate:"dive"`
}

// ValidationError lists every field that failed validation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := lo.Keys(e.Fields)
	sort.Strings(keys)
	msgs := lo.Map(keys, func(k string, _ int) string { return e.Fields[k] })
	return strings.Join(msgs, "; ")
}

// Validate trims the input and checks every field
func (in *ActivityInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Category = strings.TrimSpace(in.Category)

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate activity")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "ActivityInput.")
		fields[field] = message(field, fe)
	}
	return &ValidationError{Fields: fields}
}

// Build validates the input and turns it into a new, unsaved activity
func (in *ActivityInput) Build() (database.Activity, error) {
	var a database.Activity
	if err := in.Apply(&a); err != nil {
		return database.Activity{}, err
	}
	return a, nil
}

// Apply validates the input and copies it onto an existing activity. The id,
// creation time and completion flag are left alone.
func (in *ActivityInput) Apply(a *database.Activity) error {
	if err := in.Validate(); err != nil {
		return err
	}

	due, err := database.ParseDate(in.Date)
	if err != nil {
		return err
	}
	var at *database.TimeOfDay
	if in.Time != "" {
		t, err := database.ParseTimeOfDay(in.Time)
		if err != nil {
			return err
		}
		at = &t
	}
	category, err := database.ParseCategory(in.Category)
	if err != nil {
		return err
	}

	a.Title = in.Title
	a.Description = in.Description
	a.DueDate = due
	a.DueTime = at
	a.Category = category
	a.Reminders = append([]database.Reminder{}, in.Reminders...)
	return nil
}

// FromActivity renders an activity back into editable input
func FromActivity(a database.Activity) ActivityInput {
	in := ActivityInput{
		Title:       a.Title,
		Description: a.Description,
		Date:        a.DueDate.String(),
		Category:    a.Category.Label(),
		Reminders:   append([]database.Reminder{}, a.Reminders...),
	}
	if a.DueTime != nil {
		in.Time = a.DueTime.String()
	}
	return in
}

var unitSuffixes = map[string]database.ReminderUnit{
	"m": database.Minutes,
	"h": database.Hours,
	"d": database.Days,
}

var suffixForUnit = lo.Invert(unitSuffixes)

// ParseReminders parses a comma separated list such as "15m, 2h, 1d". Order is kept.
func ParseReminders(s string) ([]database.Reminder, error) {
	parts := lo.Filter(lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.ToLower(strings.TrimSpace(p))
	}), func(p string, _ int) bool {
		return p != ""
	})

	reminders := make([]database.Reminder, 0, len(parts))
	for _, p := range parts {
		unit, ok := unitSuffixes[p[len(p)-1:]]
		if !ok {
			return nil, errors.Errorf("reminder %q must end in m, h or d", p)
		}
		amount, err := strconv.Atoi(strings.TrimSpace(p[:len(p)-1]))
		if err != nil {
			return nil, errors.Errorf("reminder %q needs a whole number", p)
		}
		reminders = append(reminders, database.Reminder{Amount: amount, Unit: unit})
	}
	return reminders, nil
}

// FormatReminders is the inverse of ParseReminders
func FormatReminders(reminders []database.Reminder) string {
	return strings.Join(lo.Map(reminders, func(r database.Reminder, _ int) string {
		return fmt.Sprintf("%d%s", r.Amount, suffixForUnit[r.Unit])
	}), ", ")
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
