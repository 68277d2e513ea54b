package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/samber/lo"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":         {"?", "show/hide commands"},
	"QuitApp":          {"q,ctrl+c", "quit"},
	"CompleteActivity": {"space,x", "mark activity done"},
	"AddActivity":      {"a", "add activity"},
	"EditActivity":     {"e,enter", "edit activity"},
	"DeleteActivity":   {"d", "delete activity"},
	"ToggleGroupBy":    {"g", "cycle group by"},
	"NextField":        {"tab,down", "next field"},
	"PrevField":        {"shift+tab,up", "previous field"},
	"CycleCategory":    {"ctrl+t", "cycle category"},
	"Submit":           {"ctrl+s", "save activity"},
	"Cancel":           {"esc", "cancel"},
	"Confirm":          {"y", "confirm"},
	"Deny":             {"n", "keep"},
}

type KeyMap struct {
	ShowHelp         key.Binding
	QuitApp          key.Binding
	CompleteActivity key.Binding
	AddActivity      key.Binding
	EditActivity     key.Binding
	DeleteActivity   key.Binding
	ToggleGroupBy    key.Binding
	NextField        key.Binding
	PrevField        key.Binding
	CycleCategory    key.Binding
	Submit           key.Binding
	Cancel           key.Binding
	Confirm          key.Binding
	Deny             key.Binding
}

func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":         &km.ShowHelp,
		"QuitApp":          &km.QuitApp,
		"CompleteActivity": &km.CompleteActivity,
		"AddActivity":      &km.AddActivity,
		"EditActivity":     &km.EditActivity,
		"DeleteActivity":   &km.DeleteActivity,
		"ToggleGroupBy":    &km.ToggleGroupBy,
		"NextField":        &km.NextField,
		"PrevField":        &km.PrevField,
		"CycleCategory":    &km.CycleCategory,
		"Submit":           &km.Submit,
		"Cancel":           &km.Cancel,
		"Confirm":          &km.Confirm,
		"Deny":             &km.Deny,
	}
}

// BuildKeyMap applies configured overrides on top of the defaults. Action names
// match case-insensitively since the config loader lowercases keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := lo.MapKeys(configOverrides, func(_ string, action string) string {
		return strings.ToLower(action)
	})

	km := KeyMap{}
	for action, binding := range km.bindings() {
		def := KeyDefinitions[action]
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		*binding = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

// ShortHelp is shown in the footer of the list view
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.AddActivity, km.EditActivity, km.CompleteActivity, km.DeleteActivity, km.ShowHelp, km.QuitApp}
}

// FullHelp is shown in the help view
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.AddActivity, km.EditActivity, km.CompleteActivity, km.DeleteActivity, km.ToggleGroupBy},
		{km.NextField, km.PrevField, km.CycleCategory, km.Submit, km.Cancel},
		{km.Confirm, km.Deny, km.ShowHelp, km.QuitApp},
	}
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	keys := strings.Split(keyStr, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
		if keys[i] == "space" {
			keys[i] = " "
		}
	}

	help := keys[0]
	if help == " " {
		help = "space"
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(help, helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
