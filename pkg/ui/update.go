package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case listStateMsg:
		if msg.Err != nil {
			log.Error().Err(msg.Err).Msg("pending activities unavailable")
		}
		m.items = msg.Activities
		m.loadErr = msg.Err
		m.renderRows()
		return m, waitForActivities(m.updates)

	case tickMsg:
		m.renderRows()
		return m, tick()

	case listClosedMsg:
		return m, tea.Quit

	case editLoadedMsg:
		a := msg.activity
		m.mode = EditMode
		m.editingItem = &a
		m.loadForm(a)
		return m, nil

	case ReminderMsg:
		m.notice = msg.Occurrence.String()
		return m, nil

	case errMsg:
		log.Error().Err(msg.err).Msg("command failed")
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			switch {
			case key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = HelpViewMode

			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit

			case key.Matches(msg, m.keyMap.Cancel):
				m.notice = ""
				m.err = nil

			case key.Matches(msg, m.keyMap.CompleteActivity):
				if a, ok := m.selected(); ok {
					id := a.ID
					return m, run(func(ctx context.Context) error { return m.list.Complete(ctx, id) })
				}

			case key.Matches(msg, m.keyMap.AddActivity):
				m.mode = AddMode
				m.err = nil
				m.resetInputs()

			case key.Matches(msg, m.keyMap.EditActivity):
				if a, ok := m.selected(); ok {
					m.err = nil
					return m, m.fetchForEdit(a.ID)
				}

			case key.Matches(msg, m.keyMap.DeleteActivity):
				if a, ok := m.selected(); ok {
					m.mode = DeleteConfirmMode
					m.editingItem = &a
				}

			case key.Matches(msg, m.keyMap.ToggleGroupBy):
				m.groupBy = m.groupBy.Next()
				m.table.SetCursor(0)
				m.renderRows()
			}

		case AddMode, EditMode:
			switch {
			case key.Matches(msg, m.keyMap.Cancel):
				m.mode = NormalMode
				m.err = nil
				m.resetInputs()
				m.editingItem = nil
				return m, nil

			case key.Matches(msg, m.keyMap.Submit):
				cmd = m.submitForm()
				return m, cmd

			case key.Matches(msg, m.keyMap.CycleCategory):
				m.cycleCategory(1)
				return m, nil

			case key.Matches(msg, m.keyMap.NextField):
				m.focusInput(m.activeInput + 1)
				return m, nil

			case key.Matches(msg, m.keyMap.PrevField):
				m.focusInput(m.activeInput - 1)
				return m, nil

			case msg.Type == tea.KeyEnter:
				if m.activeInput == fieldReminders {
					cmd = m.submitForm()
					return m, cmd
				}
				m.focusInput(m.activeInput + 1)
				return m, nil
			}

			if m.activeInput == fieldCategory {
				switch msg.String() {
				case "left", "h":
					m.cycleCategory(-1)
				case "right", "l", " ":
					m.cycleCategory(1)
				}
				return m, nil
			}

			m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
			cmds = append(cmds, cmd)

		case DeleteConfirmMode:
			switch {
			case key.Matches(msg, m.keyMap.Confirm):
				if m.editingItem != nil {
					a := *m.editingItem
					log.Debug().Int64("id", a.ID).Msg("deleting activity")
					cmds = append(cmds, run(func(ctx context.Context) error { return m.list.Delete(ctx, a) }))
				}
				m.mode = NormalMode
				m.editingItem = nil

			case key.Matches(msg, m.keyMap.Deny), key.Matches(msg, m.keyMap.Cancel):
				m.mode = NormalMode
				m.editingItem = nil
			}

		case HelpViewMode:
			switch {
			case key.Matches(msg, m.keyMap.ShowHelp), key.Matches(msg, m.keyMap.Cancel):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(msg.Height - 8)
	}

	// Only update table in normal mode
	if m.mode == NormalMode {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
