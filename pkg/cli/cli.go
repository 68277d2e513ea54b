package cli

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agenda/pkg/commands"
	"agenda/pkg/config"
	"agenda/pkg/database"
	"agenda/pkg/forms"
	"agenda/pkg/repository"
	"agenda/pkg/utils"
)

// Args holds the persistent flags shared by every command
type Args struct {
	ConfigPath string
	Database   string
	Verbose    bool
}

// App carries what the commands need once flags and config are resolved
type App struct {
	args   Args
	config *config.Config
	styles config.Styles
	now    func() time.Time
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the interactive agenda.
func NewRootCommand() *cobra.Command {
	app := &App{now: time.Now}

	root := &cobra.Command{
		Use:   "agenda",
		Short: "Agenda - activities, due dates and reminders in the terminal",
		Long: `Agenda keeps track of activities with a due date, an optional due time,
a category and reminder offsets, and shows how urgent each one is.

Examples:
  # Open the interactive agenda
  agenda

  # Add an activity due tomorrow evening with two reminders
  agenda add "Submit report" --date 2024-01-11 --time 18:00 --category Work --remind 1d,2h

  # Print pending activities
  agenda list`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			utils.CloseLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runInteractive(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&app.args.ConfigPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&app.args.Database, "database", "", "Path to the database file (overrides config)")
	root.PersistentFlags().BoolVarP(&app.args.Verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		app.addCommand(),
		app.listCommand(),
		app.doneCommand(),
		app.deleteCommand(),
		app.exportCommand(),
		app.importCommand(),
		app.purgeCommand(),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *App) setup() error {
	cfg, styles, err := config.Load(a.args.ConfigPath)
	if err != nil {
		return err
	}
	if a.args.Database != "" {
		cfg.Database = a.args.Database
	}
	if a.args.Verbose {
		cfg.Verbose = true
	}
	a.config, a.styles = cfg, styles

	if err := utils.InitLogger(cfg); err != nil {
		return err
	}
	log.Debug().Str("database", cfg.Database).Msg("configuration loaded")
	return nil
}

// withRepository opens the store for the duration of fn
func (a *App) withRepository(ctx context.Context, fn func(repo *repository.Activities) error) error {
	store, err := database.Open(ctx, a.config.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()
	return fn(repository.New(store))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid activity id %q", arg)
	}
	return id, nil
}

func (a *App) addCommand() *cobra.Command {
	var date, at, category, remind, description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reminders, err := forms.ParseReminders(remind)
			if err != nil {
				return err
			}
			if date == "" {
				date = database.DateOf(a.now()).String()
			}
			in := forms.ActivityInput{
				Title:       args[0],
				Description: description,
				Date:        date,
				Time:        at,
				Category:    category,
				Reminders:   reminders,
			}
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				_, err := commands.Add(cmd.Context(), repo, cmd.OutOrStdout(), in)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Due date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&at, "time", "", "Due time (HH:MM)")
	cmd.Flags().StringVarP(&category, "category", "c", string(database.CategoryOther), "University, Home, Work or Other")
	cmd.Flags().StringVarP(&remind, "remind", "r", "", "Reminder offsets, e.g. 15m,2h,1d")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	return cmd
}

func (a *App) listCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print pending activities with their urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				return commands.List(cmd.Context(), repo, cmd.OutOrStdout(), a.now(), all)
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed activities")
	return cmd
}

func (a *App) idCommand(use, short string, run func(ctx context.Context, repo commands.Repository, out io.Writer, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				return run(cmd.Context(), repo, cmd.OutOrStdout(), id)
			})
		},
	}
}

func (a *App) doneCommand() *cobra.Command {
	return a.idCommand("done", "Mark an activity completed", commands.Done)
}

func (a *App) deleteCommand() *cobra.Command {
	return a.idCommand("delete", "Delete an activity", commands.Delete)
}

func (a *App) exportCommand() *cobra.Command {
	var exportType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all activities to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				return commands.Export(cmd.Context(), repo, cmd.OutOrStdout(), args[0], exportType)
			})
		},
	}
	cmd.Flags().StringVarP(&exportType, "type", "t", "json", "Export file type (json, txt)")
	return cmd
}

func (a *App) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import activities from a json export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				return commands.Import(cmd.Context(), repo, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func (a *App) purgeCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all completed activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepository(cmd.Context(), func(repo *repository.Activities) error {
				return commands.Purge(cmd.Context(), repo, cmd.InOrStdin(), cmd.OutOrStdout(), yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
