package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"agenda/pkg/database"
	"agenda/pkg/forms"
)

// Import reads a json export and adds every valid activity under a new id.
// Completion state and creation time are kept. Invalid entries are skipped and
// reported.
func Import(ctx context.Context, repo Repository, out io.Writer, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	var activities []database.Activity
	if err := json.Unmarshal(content, &activities); err != nil {
		return errors.Wrapf(err, "decode %s", filename)
	}

	added, skipped := 0, 0
	for i, a := range activities {
		in := forms.FromActivity(a)
		imported, err := in.Build()
		if err != nil {
			log.Warn().Err(err).Int("entry", i+1).Msg("skipping invalid activity")
			fmt.Fprintf(out, "Skipping entry %d (%q): %v\n", i+1, a.Title, err)
			skipped++
			continue
		}
		imported.IsCompleted = a.IsCompleted
		imported.CreatedAt = a.CreatedAt

		if _, err := repo.Insert(ctx, imported); err != nil {
			return errors.Wrapf(err, "import entry %d", i+1)
		}
		added++
	}

	fmt.Fprintf(out, "Successfully imported %d activit%s", added, pluralY(int64(added)))
	if skipped > 0 {
		fmt.Fprintf(out, ", skipped %d", skipped)
	}
	fmt.Fprintln(out)
	return nil
}
