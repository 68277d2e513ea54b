// Package repository adapts the activity store to the calling convention of the
// list controller and the command line.
package repository

import (
	"context"

	"github.com/rs/zerolog/log"

	"agenda/pkg/database"
)

// Store is the storage API the repository passes calls through to
type Store interface {
	WatchPending(ctx context.Context) <-chan database.PendingSnapshot
	LoadPending(ctx context.Context) ([]database.Activity, error)
	LoadAll(ctx context.Context) ([]database.Activity, error)
	GetByID(ctx context.Context, id int64) (*database.Activity, error)
	Insert(ctx context.Context, a database.Activity) (int64, error)
	Update(ctx context.Context, a database.Activity) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, a database.Activity) error
	DeleteByID(ctx context.Context, id int64) error
	PurgeCompleted(ctx context.Context) (int64, error)
}

// Activities is a stateless pass-through over a Store
type Activities struct {
	store Store
}

// New creates the repository
func New(store Store) *Activities {
	return &Activities{store: store}
}

// WatchPending streams pending activities ordered by due date
func (r *Activities) WatchPending(ctx context.Context) <-chan database.PendingSnapshot {
	return r.store.WatchPending(ctx)
}

// LoadPending returns the pending activities once
func (r *Activities) LoadPending(ctx context.Context) ([]database.Activity, error) {
	return r.store.LoadPending(ctx)
}

// LoadAll returns every activity
func (r *Activities) LoadAll(ctx context.Context) ([]database.Activity, error) {
	return r.store.LoadAll(ctx)
}

// GetByID returns the activity or nil when it does not exist
func (r *Activities) GetByID(ctx context.Context, id int64) (*database.Activity, error) {
	return r.store.GetByID(ctx, id)
}

// Insert stores a new activity and returns its id
func (r *Activities) Insert(ctx context.Context, a database.Activity) (int64, error) {
	log.Debug().Str("title", a.Title).Msg("repository insert")
	return r.store.Insert(ctx, a)
}

// Update replaces an existing activity
func (r *Activities) Update(ctx context.Context, a database.Activity) error {
	log.Debug().Int64("id", a.ID).Msg("repository update")
	return r.store.Update(ctx, a)
}

// SetCompleted flips the completion flag
func (r *Activities) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return r.store.SetCompleted(ctx, id, completed)
}

// Delete removes an activity
func (r *Activities) Delete(ctx context.Context, a database.Activity) error {
	log.Debug().Int64("id", a.ID).Msg("repository delete")
	return r.store.Delete(ctx, a)
}

// DeleteByID removes an activity by id
func (r *Activities) DeleteByID(ctx context.Context, id int64) error {
	log.Debug().Int64("id", id).Msg("repository delete")
	return r.store.DeleteByID(ctx, id)
}

// PurgeCompleted removes completed activities
func (r *Activities) PurgeCompleted(ctx context.Context) (int64, error) {
	return r.store.PurgeCompleted(ctx)
}
