package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"agenda/pkg/database"
)

func (m Model) titleBar(text, background string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(background)).
		Padding(0, 1).
		Render(text)
}

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		sb.WriteString(m.titleBar(" Agenda ", m.styles.AccentColor))
		sb.WriteString("\n")

		if m.notice != "" {
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
				Background(lipgloss.Color(m.styles.DayColor)).
				Padding(0, 1).
				Render("⏰ " + m.notice))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

		if len(m.items) == 0 {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).
				Render("Nothing pending. Press " + m.keyMap.AddActivity.Help().Key + " to add an activity."))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
		}

		if m.loadErr != nil {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).
				Render(fmt.Sprintf("Could not load activities: %v", m.loadErr)))
			sb.WriteString("\n")
		}

		viewInfo := fmt.Sprintf("%d pending", len(m.items))
		if m.groupBy != GroupByNone {
			viewInfo += fmt.Sprintf(" | grouped by %s", m.groupBy)
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(viewInfo))
		sb.WriteString("\n")

	case AddMode:
		sb.WriteString(m.titleBar(" Add Activity ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Activity ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Activity ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.editingItem != nil {
			sb.WriteString("Are you sure you want to delete this activity?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.editingItem.Title))
			sb.WriteString(fmt.Sprintf("Due: %s\n", dueSummary(*m.editingItem)))
			sb.WriteString(fmt.Sprintf("Reminders: %s\n", reminderSummary(*m.editingItem)))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Press %s to confirm, %s to cancel",
				m.keyMap.Confirm.Help().Key, m.keyMap.Deny.Help().Key)))
		}

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")

		keyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.AccentColor)).
			Bold(true)
		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.NormalTextColor))

		sections := []string{"List", "Form", "General"}
		for i, group := range m.keyMap.FullHelp() {
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render(sections[i]))
			sb.WriteString("\n")
			for _, binding := range group {
				sb.WriteString(fmt.Sprintf("%s: %s\n",
					descStyle.Render(binding.Help().Desc),
					keyStyle.Render(binding.Help().Key)))
			}
			sb.WriteString("\n")
		}
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render(fmt.Sprintf("\nError: %v", m.err)))
		sb.WriteString("\n")
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(b key.Binding, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(b.Help().Key), descStyle.Render(desc)))
	}

	switch m.mode {
	case NormalMode:
		addAction(m.keyMap.AddActivity, "add")
		addAction(m.keyMap.EditActivity, "edit")
		addAction(m.keyMap.CompleteActivity, "done")
		addAction(m.keyMap.DeleteActivity, "del")
		addAction(m.keyMap.ToggleGroupBy, "group")
		addAction(m.keyMap.ShowHelp, "help")
		addAction(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode:
		addAction(m.keyMap.NextField, "next field")
		addAction(m.keyMap.CycleCategory, "category")
		addAction(m.keyMap.Submit, "save")
		addAction(m.keyMap.Cancel, "cancel")

	case DeleteConfirmMode:
		addAction(m.keyMap.Confirm, "confirm")
		addAction(m.keyMap.Deny, "cancel")

	case HelpViewMode:
		addAction(m.keyMap.Cancel, "back")
		addAction(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for adding/editing activities
func (m Model) renderForm() string {
	var sb strings.Builder

	labels := []string{"Title:", "Description:", "Due date (YYYY-MM-DD):", "Due time (HH:MM, optional):", "Category:", "Reminders (15m, 2h, 1d):"}
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)

	for i, label := range labels {
		if i == m.activeInput {
			sb.WriteString(accent.Render(label))
		} else {
			sb.WriteString(label)
		}
		sb.WriteString("\n")

		if i == fieldCategory {
			sb.WriteString(m.renderCategories())
		} else {
			sb.WriteString(m.inputs[i].View())
		}
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (m Model) renderCategories() string {
	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor)).
		Padding(0, 1)
	normal := lipgloss.NewStyle().Padding(0, 1)

	parts := make([]string, 0, len(database.Categories))
	for _, c := range database.Categories {
		if c == m.category {
			parts = append(parts, selected.Render(c.Label()))
		} else {
			parts = append(parts, normal.Render(c.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
