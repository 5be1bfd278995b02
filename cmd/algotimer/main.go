package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"algotimer/internal/bootstrap"
	configdto "algotimer/internal/modules/config/dto"
	"algotimer/internal/platform/config"
	"algotimer/internal/ui/components"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var settings config.Settings

	root := &cobra.Command{
		Use:           "algotimer",
		Short:         "Staged timer for algorithm practice sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), settings)
		},
	}
	if err := config.ParseEnv(&settings); err != nil {
		// Flags still work; report the bad environment on first use.
		root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
	}
	root.PersistentFlags().StringVar(&settings.Dir, "dir", settings.Dir, "directory holding config.json and the session logs")
	root.PersistentFlags().StringVar(&settings.NotesDir, "notes", settings.NotesDir, "Obsidian vault to write one note per session into (optional)")
	root.PersistentFlags().StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "log level: debug|info|warn|error")

	root.AddCommand(newTUICmd(&settings))
	root.AddCommand(newConfigCmd(&settings))
	root.AddCommand(newHistoryCmd(&settings))
	root.AddCommand(newTranscriptCmd(&settings))
	return root
}

// withApp builds the application for one command and releases it afterwards.
func withApp(settings config.Settings, fn func(app *bootstrap.App) error) (err error) {
	cfg, err := config.New(settings)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(app)
}

func runTUI(ctx context.Context, settings config.Settings) error {
	return withApp(settings, func(app *bootstrap.App) error {
		return bootstrap.RunTUI(ctx, app)
	})
}

func newTUICmd(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run a practice session in the terminal UI (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), *settings)
		},
	}
}

func newConfigCmd(settings *config.Settings) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Inspect or create the owner config"}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				out, err := app.ConfigCLI.Show(cmd.Context())
				if err != nil {
					return err
				}
				printConfig(cmd, out)
				return nil
			})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Run the setup wizard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				out, err := app.ConfigCLI.Init(cmd.Context(), force)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "config saved")
				printConfig(cmd, out)
				return nil
			})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "replace an existing config")

	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func printConfig(cmd *cobra.Command, out configdto.ConfigOutput) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "name\t%s\n", out.Name)
	_, _ = fmt.Fprintf(w, "read_time\t%d\n", out.ReadTime)
	_, _ = fmt.Fprintf(w, "think_time\t%d\n", out.ThinkTime)
	_, _ = fmt.Fprintf(w, "code_time\t%d\n", out.CodeTime)
	_, _ = fmt.Fprintf(w, "search_time\t%d\n", out.SearchTime)
	_ = w.Flush()
}

func newHistoryCmd(settings *config.Settings) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Query recorded sessions"}

	history.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				sessions, err := app.HistoryCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range sessions {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
						s.StartedAt.Format("2006-01-02 15:04:05"), components.Clock(s.TotalSeconds), s.Problem)
				}
				return w.Flush()
			})
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show aggregate practice statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				stats, err := app.HistoryCLI.Stats(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintf(w, "sessions\t%d\n", stats.Sessions)
				_, _ = fmt.Fprintf(w, "total\t%s\n", components.Clock(stats.TotalSeconds))
				for _, a := range stats.Averages {
					_, _ = fmt.Fprintf(w, "avg %s\t%s\n", a.Stage, components.Clock(int(a.Seconds)))
				}
				_, _ = fmt.Fprintf(w, "own ideas\t%d\n", stats.SelfThoughts)
				_, _ = fmt.Fprintf(w, "own answers\t%d\n", stats.SelfAnswers)
				return w.Flush()
			})
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the session index from the session log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				out, err := app.HistoryCLI.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d sessions\n", out.Indexed)
				return nil
			})
		},
	})
	return history
}

func newTranscriptCmd(settings *config.Settings) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print the markdown transcript",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*settings, func(app *bootstrap.App) error {
				return app.HistoryCLI.Transcript(cmd.Context(), cmd.OutOrStdout(), follow)
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new sessions as they are appended")
	return cmd
}
