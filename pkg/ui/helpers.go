package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"agenda/pkg/config"
	"agenda/pkg/database"
	"agenda/pkg/forms"
	"agenda/pkg/urgency"
	"agenda/pkg/viewmodel"
)

// listStateMsg carries a new state from the controller
type listStateMsg viewmodel.State

// listClosedMsg means the controller stopped publishing
type listClosedMsg struct{}

// editLoadedMsg carries the freshly fetched activity to edit
type editLoadedMsg struct{ activity database.Activity }

type errMsg struct{ err error }

// tickMsg re-renders the rows so urgency labels follow the clock
type tickMsg time.Time

const refreshInterval = time.Minute

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForActivities(ch <-chan viewmodel.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return listClosedMsg{}
		}
		return listStateMsg(state)
	}
}

// run executes a controller command off the update loop
func run(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) fetchForEdit(id int64) tea.Cmd {
	return func() tea.Msg {
		a, err := m.list.FetchByID(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		if a == nil {
			return errMsg{errors.Wrapf(database.ErrActivityNotFound, "activity %d", id)}
		}
		return editLoadedMsg{activity: *a}
	}
}

// renderRows rebuilds the table from the current items and grouping
func (m *Model) renderRows() {
	now := m.now()
	index := make(map[int64]int, len(m.items))
	for i, a := range m.items {
		index[a.ID] = i
	}

	var rows []table.Row
	m.rows = make([]int, 0, len(m.items)+len(database.Categories))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.styles.AccentColor))

	for _, group := range GroupActivities(m.items, m.groupBy, now) {
		if m.groupBy != GroupByNone {
			rows = append(rows, table.Row{headerStyle.Render("== " + group.Name + " =="), "", "", "", ""})
			m.rows = append(m.rows, -1)
		}
		for _, a := range group.Activities {
			rows = append(rows, activityRow(a, urgency.ClassifyActivity(now, a), m.styles))
			m.rows = append(m.rows, index[a.ID])
		}
	}

	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func activityRow(a database.Activity, u urgency.Result, styles config.Styles) table.Row {
	due := a.DueDate.Format("02/01/2006")
	if a.DueTime != nil {
		due += " " + a.DueTime.String()
	}

	return table.Row{
		a.Title,
		lipgloss.NewStyle().Foreground(lipgloss.Color(styles.CategoryColor)).Render(a.Category.Label()),
		due,
		lipgloss.NewStyle().Foreground(lipgloss.Color(tierColor(u.Tier, styles))).Render(u.Label),
		forms.FormatReminders(a.Reminders),
	}
}

func tierColor(t urgency.Tier, styles config.Styles) string {
	switch t {
	case urgency.TierOverdue:
		return styles.OverdueColor
	case urgency.TierDay:
		return styles.DayColor
	case urgency.TierWeek:
		return styles.WeekColor
	default:
		return styles.LaterColor
	}
}

// focusInput moves focus to the given form field
func (m *Model) focusInput(field int) {
	m.activeInput = (field + fieldCount) % fieldCount
	for i := range m.inputs {
		if i == m.activeInput && i != fieldCategory {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// cycleCategory steps the category picker by delta
func (m *Model) cycleCategory(delta int) {
	i := lo.IndexOf(database.Categories, m.category)
	n := len(database.Categories)
	m.category = database.Categories[((i+delta)%n+n)%n]
}

// loadForm fills the form with an existing activity
func (m *Model) loadForm(a database.Activity) {
	m.resetInputs()
	in := forms.FromActivity(a)
	m.inputs[fieldTitle].SetValue(in.Title)
	m.inputs[fieldDescription].SetValue(in.Description)
	m.inputs[fieldDate].SetValue(in.Date)
	m.inputs[fieldTime].SetValue(in.Time)
	m.inputs[fieldReminders].SetValue(forms.FormatReminders(in.Reminders))
	m.category = a.Category
}

// formInput collects the form into validated input
func (m Model) formInput() (forms.ActivityInput, error) {
	reminders, err := forms.ParseReminders(m.inputs[fieldReminders].Value())
	if err != nil {
		return forms.ActivityInput{}, err
	}
	return forms.ActivityInput{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		Date:        m.inputs[fieldDate].Value(),
		Time:        m.inputs[fieldTime].Value(),
		Category:    m.category.Label(),
		Reminders:   reminders,
	}, nil
}

// submitForm validates the form and sends the matching command. The form stays
// open while validation fails.
func (m *Model) submitForm() tea.Cmd {
	in, err := m.formInput()
	if err != nil {
		m.err = err
		return nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case AddMode:
		a, err := in.Build()
		if err != nil {
			m.err = err
			return nil
		}
		log.Debug().Str("title", a.Title).Msg("adding activity")
		cmd = run(func(ctx context.Context) error {
			_, err := m.list.Add(ctx, a)
			return err
		})

	case EditMode:
		if m.editingItem == nil {
			return nil
		}
		a := *m.editingItem
		if err := in.Apply(&a); err != nil {
			m.err = err
			return nil
		}
		log.Debug().Int64("id", a.ID).Msg("updating activity")
		cmd = run(func(ctx context.Context) error { return m.list.Update(ctx, a) })
	}

	m.err = nil
	m.mode = NormalMode
	m.editingItem = nil
	m.resetInputs()
	return cmd
}

func reminderSummary(a database.Activity) string {
	if len(a.Reminders) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(a.Reminders, func(r database.Reminder, _ int) string {
		return r.String()
	}), ", ")
}

func dueSummary(a database.Activity) string {
	if a.DueTime == nil {
		return a.DueDate.Format("Mon 02 Jan 2006")
	}
	return fmt.Sprintf("%s at %s", a.DueDate.Format("Mon 02 Jan 2006"), a.DueTime)
}
