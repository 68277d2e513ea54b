package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"agenda/pkg/database"
)

// Source supplies the pending activities to check. The activity list controller
// satisfies it with its latest published snapshot.
type Source interface {
	Activities() []database.Activity
}

// Config controls how often the monitor checks and how far back it looks.
type Config struct {
	// Interval between checks
	Interval time.Duration
	// Lookback bounds how late a reminder may still be delivered, e.g. after
	// the application was closed when it was due
	Lookback time.Duration
	// Retention is how long delivered occurrences stay in the ledger
	Retention time.Duration
	Location  *time.Location
}

// Monitor periodically delivers reminders whose fire instant has passed
type Monitor struct {
	source   Source
	notifier Notifier
	ledger   *Ledger
	cfg      Config
	now      func() time.Time
	cron     *cron.Cron

	mu sync.Mutex

	lifeMu  sync.Mutex
	running bool
	stopped bool
}

// MonitorOption customizes a Monitor
type MonitorOption func(*Monitor)

// WithMonitorClock replaces the wall clock used on scheduled checks
func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor schedules checks every cfg.Interval. The schedule runs once Start
// is called.
func NewMonitor(source Source, notifier Notifier, ledger *Ledger, cfg Config, opts ...MonitorOption) (*Monitor, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}

	m := &Monitor{
		source:   source,
		notifier: notifier,
		ledger:   ledger,
		cfg:      cfg,
		now:      time.Now,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	for _, opt := range opts {
		opt(m)
	}

	schedule := "@every " + cfg.Interval.String()
	if _, err := m.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := m.Check(ctx, m.now()); err != nil {
			log.Error().Err(err).Msg("reminder check failed")
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "schedule reminder checks %q", schedule)
	}

	return m, nil
}

// Start runs the first check right away, then launches the scheduler unless
// ctx is done or Stop was already called.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil || m.cron == nil || m.isStopped() {
		return
	}
	if err := m.Check(ctx, m.now()); err != nil {
		log.Error().Err(err).Msg("reminder check failed")
	}

	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	if m.stopped || m.running || ctx.Err() != nil {
		return
	}
	m.cron.Start()
	m.running = true
	log.Info().Dur("interval", m.cfg.Interval).Msg("reminder monitor started")
}

func (m *Monitor) isStopped() bool {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	return m.stopped
}

// Stop waits for a running check to finish or ctx to end. A monitor that was
// stopped never starts again.
func (m *Monitor) Stop(ctx context.Context) {
	if m == nil || m.cron == nil {
		return
	}
	m.lifeMu.Lock()
	m.stopped = true
	running := m.running
	m.running = false
	m.lifeMu.Unlock()
	if !running {
		return
	}

	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	log.Info().Msg("reminder monitor stopped")
}

// Check delivers every occurrence that fired in (now - lookback, now] and was
// not delivered before. A failed delivery is retried on the next check.
func (m *Monitor) Check(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	delivered := 0
	for _, a := range m.source.Activities() {
		for _, o := range Occurrences(a, m.cfg.Location) {
			if o.FireAt.After(now) || !o.FireAt.After(now.Add(-m.cfg.Lookback)) {
				continue
			}

			seen, err := m.ledger.Seen(o)
			if err != nil {
				return errors.Wrap(err, "read reminder ledger")
			}
			if seen {
				continue
			}

			if err := m.notifier.Notify(ctx, o); err != nil {
				log.Warn().Err(err).Int64("activity_id", o.ActivityID).Msg("reminder delivery failed")
				if first == nil {
					first = errors.Wrapf(err, "notify activity %d", o.ActivityID)
				}
				continue
			}
			if err := m.ledger.Record(o); err != nil {
				return errors.Wrap(err, "record reminder")
			}
			delivered++
		}
	}

	removed, err := m.ledger.Cleanup(now.Add(-m.cfg.Retention))
	if err != nil {
		return errors.Wrap(err, "clean reminder ledger")
	}

	log.Debug().Int("delivered", delivered).Int("forgotten", removed).Msg("reminder check")
	return first
}
