// Package viewmodel holds the observable list of pending activities that the
// user interface renders, and the commands that change it.
package viewmodel

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"agenda/pkg/database"
)

// Repository is what the list needs from the storage layer
type Repository interface {
	WatchPending(ctx context.Context) <-chan database.PendingSnapshot
	GetByID(ctx context.Context, id int64) (*database.Activity, error)
	Insert(ctx context.Context, a database.Activity) (int64, error)
	Update(ctx context.Context, a database.Activity) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, a database.Activity) error
	DeleteByID(ctx context.Context, id int64) error
}

// State is what observers see: the latest pending activities and the error of
// the live query, if its last run failed. Activities keep their previous value
// while Err is set.
type State struct {
	Activities []database.Activity
	Err        error
}

// ActivityList relays the pending activities live query into observable state.
// Commands write through the repository and never touch the state directly;
// the live query brings the change back.
type ActivityList struct {
	repo Repository

	mu         sync.RWMutex
	activities []database.Activity
	err        error
	observers  map[uint64]chan State
	nextID     uint64
	cancel     context.CancelFunc
	done       chan struct{}
	closed     bool
}

// New creates an idle list. Call Start to begin observing the store.
func New(repo Repository) *ActivityList {
	return &ActivityList{
		repo:       repo,
		activities: []database.Activity{},
		observers:  make(map[uint64]chan State),
	}
}

// Start subscribes to the pending activities. Calling it again is a no-op.
func (l *ActivityList) Start(ctx context.Context) {
	l.mu.Lock()
	if l.cancel != nil || l.closed {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	snapshots := l.repo.WatchPending(ctx)
	go func() {
		defer close(done)
		for snap := range snapshots {
			if ctx.Err() != nil {
				return
			}
			l.publish(snap)
		}
	}()
}

// Close stops relaying snapshots and closes every observer channel. Commands
// already in flight still complete against the store.
func (l *ActivityList) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.observers {
		close(ch)
		delete(l.observers, id)
	}
}

// Activities returns the latest published pending activities
func (l *ActivityList) Activities() []database.Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.activities
}

// Err returns the error of the latest failed live query, if any
func (l *ActivityList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Subscribe returns a channel carrying the latest state. It holds at most one
// value; a slow reader only ever sees the newest state.
func (l *ActivityList) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextID
	l.nextID++
	l.observers[id] = ch
	ch <- State{Activities: l.activities, Err: l.err}

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.observers[id]; ok {
			delete(l.observers, id)
			close(ch)
		}
	}
}

func (l *ActivityList) publish(snap database.PendingSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if snap.Err != nil {
		log.Error().Err(snap.Err).Msg("pending activities query failed")
		l.err = snap.Err
	} else {
		l.err = nil
		l.activities = snap.Activities
	}

	state := State{Activities: l.activities, Err: l.err}
	for _, ch := range l.observers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	log.Trace().Int("count", len(state.Activities)).Msg("pending activities published")
}

// Add inserts a new activity and returns its id
func (l *ActivityList) Add(ctx context.Context, a database.Activity) (int64, error) {
	return l.repo.Insert(context.WithoutCancel(ctx), a)
}

// Update replaces an existing activity
func (l *ActivityList) Update(ctx context.Context, a database.Activity) error {
	return l.repo.Update(context.WithoutCancel(ctx), a)
}

// Complete marks an activity completed, removing it from the pending list
func (l *ActivityList) Complete(ctx context.Context, id int64) error {
	return l.repo.SetCompleted(context.WithoutCancel(ctx), id, true)
}

// Delete removes an activity
func (l *ActivityList) Delete(ctx context.Context, a database.Activity) error {
	return l.repo.Delete(context.WithoutCancel(ctx), a)
}

// DeleteByID removes an activity by id
func (l *ActivityList) DeleteByID(ctx context.Context, id int64) error {
	return l.repo.DeleteByID(context.WithoutCancel(ctx), id)
}

// FetchByID reads one activity straight from the repository. The result is not
// reflected in the published list.
func (l *ActivityList) FetchByID(ctx context.Context, id int64) (*database.Activity, error) {
	return l.repo.GetByID(ctx, id)
}
