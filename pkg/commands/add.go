package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"agenda/pkg/forms"
)

// Add validates the input and stores it as a new pending activity
func Add(ctx context.Context, repo Repository, out io.Writer, in forms.ActivityInput) (int64, error) {
	a, err := in.Build()
	if err != nil {
		return 0, err
	}

	id, err := repo.Insert(ctx, a)
	if err != nil {
		return 0, err
	}

	log.Info().Int64("id", id).Str("title", a.Title).Msg("activity added")
	fmt.Fprintf(out, "Added activity %d: %s\n", id, a.Title)
	return id, nil
}
