package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"agenda/pkg/database"
)

// Done marks an activity completed
func Done(ctx context.Context, repo Repository, out io.Writer, id int64) error {
	if err := repo.SetCompleted(ctx, id, true); err != nil {
		if errors.Is(err, database.ErrActivityNotFound) {
			return errors.Errorf("no activity with id %d", id)
		}
		return err
	}
	fmt.Fprintf(out, "Completed activity %d\n", id)
	return nil
}

// Delete removes an activity. Deleting an id that does not exist is reported
// but is not an error.
func Delete(ctx context.Context, repo Repository, out io.Writer, id int64) error {
	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		fmt.Fprintf(out, "No activity with id %d\n", id)
		return nil
	}

	if err := repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted activity %d: %s\n", id, existing.Title)
	return nil
}
