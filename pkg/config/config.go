package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"agenda/pkg/keymaps"
)

// Config holds the application configuration
type Config struct {
	Database         string            `mapstructure:"database"`
	Ledger           string            `mapstructure:"ledger"`
	LogFile          string            `mapstructure:"log_file"`
	LogLevel         string            `mapstructure:"log_level"`
	Verbose          bool              `mapstructure:"verbose"`
	ReminderInterval time.Duration     `mapstructure:"reminder_interval"`
	ReminderLookback time.Duration     `mapstructure:"reminder_lookback"`
	StylesFile       string            `mapstructure:"styles_file"`
	KeyMap           map[string]string `mapstructure:"keymap"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `json:"border_color"`
	AccentColor string `json:"accent_color"`

	// Text colors
	NormalTextColor   string `json:"normal_text_color"`
	SelectedTextColor string `json:"selected_text_color"`
	SelectedBgColor   string `json:"selected_bg_color"`
	ErrorColor        string `json:"error_color"`

	// Category column
	CategoryColor string `json:"category_color"`

	// Urgency tiers
	OverdueColor string `json:"overdue_color"`
	DayColor     string `json:"day_color"`
	WeekColor    string `json:"week_color"`
	LaterColor   string `json:"later_color"`
}

// DefaultStyles are written to the styles file on first run
var DefaultStyles = Styles{
	BorderColor:       "240",
	AccentColor:       "205",
	NormalTextColor:   "86",
	SelectedTextColor: "229",
	SelectedBgColor:   "57",
	ErrorColor:        "9",
	CategoryColor:     "4",
	OverdueColor:      "196",
	DayColor:          "208",
	WeekColor:         "220",
	LaterColor:        "2",
}

// Dir returns the directory holding the configuration, database and ledger
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}
	return filepath.Join(homeDir, ".config", "agenda"), nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database", filepath.Join(configDir, "agenda.db"))
	v.SetDefault("ledger", filepath.Join(configDir, "reminders.db"))
	v.SetDefault("log_file", filepath.Join(os.TempDir(), "agenda.log"))
	v.SetDefault("log_level", "debug")
	v.SetDefault("verbose", false)
	v.SetDefault("reminder_interval", "30s")
	v.SetDefault("reminder_lookback", "1h")
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
}

// Load reads the configuration from configPath, or from the default location
// when it is empty. A missing file is created with the defaults. Environment
// variables prefixed AGENDA_ override file values.
func Load(configPath string) (*Config, Styles, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, Styles{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("AGENDA")
	v.AutomaticEnv()
	setDefaults(v, configDir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return nil, Styles{}, errors.Wrap(err, "create config directory")
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return nil, Styles{}, errors.Wrap(err, "write default config")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, Styles{}, errors.Wrapf(err, "read config %s", configPath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, Styles{}, errors.Wrap(err, "decode config")
	}

	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, errors.Wrap(err, "error loading styles")
	}

	return cfg, styles, nil
}

// loadStyles loads the application styles from the specified path. Colors
// missing from the file keep their defaults.
func loadStyles(stylesPath string) (Styles, error) {
	stylesData, err := os.ReadFile(stylesPath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0o755); err != nil {
			return DefaultStyles, err
		}
		stylesData, err = json.MarshalIndent(DefaultStyles, "", "  ")
		if err != nil {
			return DefaultStyles, err
		}
		return DefaultStyles, os.WriteFile(stylesPath, stylesData, 0o644)
	}
	if err != nil {
		return DefaultStyles, err
	}

	loadedStyles := DefaultStyles
	if err := json.Unmarshal(stylesData, &loadedStyles); err != nil {
		return DefaultStyles, err
	}
	return loadedStyles, nil
}
