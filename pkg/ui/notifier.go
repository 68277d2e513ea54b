package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agenda/pkg/reminders"
)

// ReminderMsg shows a delivered reminder in the notification banner
type ReminderMsg struct {
	Occurrence reminders.Occurrence
}

// Sender is satisfied by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// Notifier posts reminders to a running program
type Notifier struct {
	program Sender
}

func NewNotifier(program Sender) *Notifier {
	return &Notifier{program: program}
}

// Notify never blocks; Send waits for the program loop, which may not run yet.
func (n *Notifier) Notify(_ context.Context, o reminders.Occurrence) error {
	go n.program.Send(ReminderMsg{Occurrence: o})
	return nil
}
