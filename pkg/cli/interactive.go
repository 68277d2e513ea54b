package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"agenda/pkg/database"
	"agenda/pkg/lifecycle"
	"agenda/pkg/reminders"
	"agenda/pkg/repository"
	"agenda/pkg/ui"
	"agenda/pkg/viewmodel"
)

// runInteractive wires the store, the list controller, the reminder monitor
// and the terminal UI, and tears them down when the UI exits.
func (a *App) runInteractive(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	shutdown := lifecycle.New(5 * time.Second)
	defer func() {
		cancel()
		if serr := shutdown.Shutdown(context.Background()); serr != nil && err == nil {
			err = serr
		}
	}()

	store, err := database.Open(ctx, a.config.Database)
	if err != nil {
		return err
	}
	shutdown.RegisterCloser("store", store.Close)

	list := viewmodel.New(repository.New(store))
	list.Start(ctx)
	shutdown.RegisterCloser("activity list", func() error {
		list.Close()
		return nil
	})

	model := ui.NewModel(list, a.config, a.styles, ui.WithClock(a.now))
	shutdown.RegisterCloser("ui", func() error {
		model.Close()
		return nil
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	ledger, err := reminders.OpenLedger(a.config.Ledger)
	if err != nil {
		return err
	}
	shutdown.RegisterCloser("reminder ledger", ledger.Close)

	monitor, err := reminders.NewMonitor(list,
		reminders.Fanout{ui.NewNotifier(program), reminders.LogNotifier{}},
		ledger,
		reminders.Config{
			Interval: a.config.ReminderInterval,
			Lookback: a.config.ReminderLookback,
		},
		reminders.WithMonitorClock(a.now),
	)
	if err != nil {
		return err
	}
	monitor.Start(ctx)
	shutdown.Register("reminder monitor", func(ctx context.Context) error {
		monitor.Stop(ctx)
		return nil
	})

	log.Info().Str("database", store.Path()).Msg("agenda started")
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run terminal ui")
	}
	return nil
}
