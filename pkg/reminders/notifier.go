package reminders

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier delivers a due reminder to the user
type Notifier interface {
	Notify(ctx context.Context, o Occurrence) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, o Occurrence) error

func (f NotifierFunc) Notify(ctx context.Context, o Occurrence) error {
	return f(ctx, o)
}

// LogNotifier writes reminders to the application log
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, o Occurrence) error {
	log.Info().
		Int64("activity_id", o.ActivityID).
		Str("title", o.Title).
		Time("due_at", o.DueAt).
		Str("reminder", o.Reminder.String()).
		Msg("reminder")
	return nil
}

// Fanout delivers to every notifier and returns the first error
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, o Occurrence) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, o); err != nil && first == nil {
			first = err
		}
	}
	return first
}
