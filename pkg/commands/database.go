package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Purge deletes every completed activity, asking for confirmation on in unless
// skipConfirm is set
func Purge(ctx context.Context, repo Repository, in io.Reader, out io.Writer, skipConfirm bool) error {
	if !skipConfirm {
		fmt.Fprint(out, "Are you sure you want to delete all completed activities? (y/N): ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Operation cancelled.")
			return nil
		}
	}

	n, err := repo.PurgeCompleted(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully deleted %d activit%s\n", n, pluralY(n))
	return nil
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
