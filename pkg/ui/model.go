package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agenda/pkg/config"
	"agenda/pkg/database"
	"agenda/pkg/keymaps"
	"agenda/pkg/viewmodel"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	HelpViewMode
)

// Form fields, in focus order
const (
	fieldTitle = iota
	fieldDescription
	fieldDate
	fieldTime
	fieldCategory
	fieldReminders
	fieldCount
)

// Model represents the application state
type Model struct {
	table         table.Model
	rows          []int // activity index per table row, -1 for group headers
	items         []database.Activity
	list          *viewmodel.ActivityList
	updates       <-chan viewmodel.State
	unsubscribe   func()
	now           func() time.Time
	width, height int
	err           error
	loadErr       error // last failed live query, cleared by the next good one
	notice        string

	// Configuration
	config *config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	// Form state
	mode        InputMode
	inputs      []textinput.Model
	category    database.Category
	activeInput int

	// Edit/delete state
	editingItem *database.Activity

	groupBy GroupBy
}

// Option customizes a Model
type Option func(*Model)

// WithClock replaces the wall clock used for urgency labels and form defaults
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// NewModel creates a new UI model rendering the given activity list
func NewModel(list *viewmodel.ActivityList, cfg *config.Config, styles config.Styles, opts ...Option) Model {
	columns := []table.Column{
		{Title: "Title", Width: 32},
		{Title: "Category", Width: 11},
		{Title: "Due", Width: 17},
		{Title: "Urgency", Width: 22},
		{Title: "Reminders", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.BorderColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	placeholders := map[int]string{
		fieldTitle:       "Title",
		fieldDescription: "Description",
		fieldDate:        "Due date (YYYY-MM-DD)",
		fieldTime:        "Due time (HH:MM, optional)",
		fieldCategory:    "",
		fieldReminders:   "Reminders, e.g. 15m, 2h, 1d",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].Width = 40
	}

	m := Model{
		table:    t,
		list:     list,
		now:      time.Now,
		config:   cfg,
		styles:   styles,
		keyMap:   keymaps.BuildKeyMap(cfg.KeyMap),
		mode:     NormalMode,
		inputs:   inputs,
		category: database.CategoryUniversity,
		groupBy:  GroupByNone,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.updates, m.unsubscribe = list.Subscribe()
	m.resetInputs()
	return m
}

// Init starts listening for list updates and the clock that refreshes
// urgency labels
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForActivities(m.updates), tick())
}

// Close stops listening for list updates
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.inputs[fieldDate].SetValue(database.DateOf(m.now()).String())
	m.category = database.CategoryUniversity

	m.activeInput = fieldTitle
	m.inputs[fieldTitle].Focus()
}

// selected returns the activity under the cursor, if the cursor is on one
func (m Model) selected() (database.Activity, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) || m.rows[cursor] < 0 {
		return database.Activity{}, false
	}
	return m.items[m.rows[cursor]], true
}
