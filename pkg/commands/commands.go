// Package commands implements the non-interactive subcommands. Every command
// writes its report to out and returns errors instead of exiting.
package commands

import (
	"context"

	"agenda/pkg/database"
)

// Repository is the part of the activity repository the commands use
type Repository interface {
	LoadPending(ctx context.Context) ([]database.Activity, error)
	LoadAll(ctx context.Context) ([]database.Activity, error)
	GetByID(ctx context.Context, id int64) (*database.Activity, error)
	Insert(ctx context.Context, a database.Activity) (int64, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	DeleteByID(ctx context.Context, id int64) error
	PurgeCompleted(ctx context.Context) (int64, error)
}
