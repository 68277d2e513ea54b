package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"agenda/pkg/database"
	"agenda/pkg/forms"
	"agenda/pkg/urgency"
)

// List prints pending activities in due order with their urgency. With all set
// completed activities are included and marked.
func List(ctx context.Context, repo Repository, out io.Writer, now time.Time, all bool) error {
	load := repo.LoadPending
	if all {
		load = repo.LoadAll
	}
	activities, err := load(ctx)
	if err != nil {
		return err
	}

	if len(activities) == 0 {
		fmt.Fprintln(out, "Nothing pending.")
		return nil
	}

	for _, a := range activities {
		fmt.Fprintln(out, formatLine(a, now))
	}
	return nil
}

func formatLine(a database.Activity, now time.Time) string {
	status := " "
	label := urgency.ClassifyActivity(now, a).Label
	if a.IsCompleted {
		status = "x"
		label = "done"
	}

	due := a.DueDate.String()
	if a.DueTime != nil {
		due += " " + a.DueTime.String()
	}

	line := fmt.Sprintf("[%s] %4d  %-16s  %-10s  %-20s  %s", status, a.ID, due, a.Category.Label(), label, a.Title)
	if len(a.Reminders) > 0 {
		line += "  (" + forms.FormatReminders(a.Reminders) + ")"
	}
	return strings.TrimRight(line, " ")
}
