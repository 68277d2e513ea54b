// Package lifecycle tears down the interactive session's components in reverse
// start order.
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager runs registered shutdown hooks once, newest first.
type Manager struct {
	timeout time.Duration

	mu    sync.Mutex
	hooks []hook
	done  bool
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{timeout: timeout}
}

// Register adds a shutdown hook. Hooks are executed in reverse order.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// RegisterCloser adds a hook for a component that only needs closing.
func (m *Manager) RegisterCloser(name string, close func() error) {
	m.Register(name, func(context.Context) error { return close() })
}

// Shutdown executes all registered hooks, respecting the configured timeout.
// Every hook runs even when an earlier one fails. Later calls do nothing.
func (m *Manager) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true

	var result error
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			log.Error().Err(err).Str("component", h.name).Msg("shutdown hook failed")
			result = errors.Join(result, err)
			continue
		}
		log.Debug().Str("component", h.name).Msg("component stopped")
	}
	return result
}
