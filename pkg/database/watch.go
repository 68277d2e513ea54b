package database

import (
	"context"

	"github.com/rs/zerolog/log"
)

// PendingSnapshot is one emission of the pending activities live query
type PendingSnapshot struct {
	Activities []Activity
	Err        error
}

// WatchPending streams the pending activities ordered by due date. The current
// result is sent right away and again after every committed change. Changes that
// arrive while the consumer is busy are coalesced into one refresh. The channel
// is closed when ctx is done or the store is closed.
func (s *Store) WatchPending(ctx context.Context) <-chan PendingSnapshot {
	out := make(chan PendingSnapshot)
	changed, unsubscribe := s.subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			items, err := s.LoadPending(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("pending activities query failed")
			}

			select {
			case out <- PendingSnapshot{Activities: items, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-changed:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *Store) subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.watchers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// broadcast wakes every watcher after a committed mutation
func (s *Store) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
			// a refresh is already pending for this watcher
		}
	}
}
