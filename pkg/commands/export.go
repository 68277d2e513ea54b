package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Export writes every activity to filename as json or as a plain text agenda
// grouped by due date
func Export(ctx context.Context, repo Repository, out io.Writer, filename, exportType string) error {
	activities, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	var content []byte
	switch exportType {
	case "json":
		content, err = json.MarshalIndent(activities, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode activities")
		}
	case "txt":
		var lines []string
		var lastDate string
		for _, a := range activities {
			dateStr := a.DueDate.Format("02.01.2006")
			if dateStr != lastDate {
				lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
				lastDate = dateStr
			}

			status := " "
			if a.IsCompleted {
				status = "x"
			}
			text := a.Title
			if a.DueTime != nil {
				text = a.DueTime.String() + " " + text
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s (%s)", status, text, a.Category.Label()))
		}
		content = []byte(strings.TrimSpace(strings.Join(lines, "\n")) + "\n")
	default:
		return errors.Errorf("unknown export type %q, use json or txt", exportType)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.Wrap(err, "create export directory")
	}
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}

	fmt.Fprintf(out, "Successfully exported %d activit%s to %s\n", len(activities), pluralY(int64(len(activities))), filename)
	return nil
}
