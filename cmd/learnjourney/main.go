package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"learnjourney/internal/bootstrap"
	goaldto "learnjourney/internal/modules/goal/dto"
	"learnjourney/internal/platform/config"
	"learnjourney/internal/platform/logging"
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
	var dataPath string

	root := &cobra.Command{
		Use:           "learnjourney",
		Short:         "Track a learning goal one day at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadEnv()
		},
	}
	root.PersistentFlags().StringVar(&dataPath, "data", "", "data directory (default $LEARNJOURNEY_HOME or ~/.learnjourney)")

	root.AddCommand(newStartCmd(&dataPath))
	root.AddCommand(newRestartCmd(&dataPath))
	root.AddCommand(newLearnedCmd(&dataPath))
	root.AddCommand(newFreezeCmd(&dataPath))
	root.AddCommand(newStatusCmd(&dataPath))
	root.AddCommand(newWeekCmd(&dataPath))
	root.AddCommand(newHistoryCmd(&dataPath))
	root.AddCommand(newJournalCmd(&dataPath))
	root.AddCommand(newWatchCmd(&dataPath))
	root.AddCommand(newTUICmd(&dataPath))
	return root
}

// loadApp resolves configuration and opens the app with logs appended to
// the data directory's log file. The returned func releases both.
func loadApp(ctx context.Context, dataPath string) (*bootstrap.App, func(), error) {
	path, err := config.ResolveDataPath(dataPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.New(path)
	if err != nil {
		return nil, nil, err
	}
	logFile, err := logging.OpenFile(cfg.LogPath)
	if err != nil {
		return nil, nil, err
	}
	app, err := bootstrap.New(ctx, cfg, logFile)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, err
	}
	return app, func() {
		_ = app.Close()
		_ = logFile.Close()
	}, nil
}

// withApp runs fn against a freshly loaded app and closes it afterwards.
func withApp(cmd *cobra.Command, dataPath string, fn func(context.Context, *bootstrap.App) error) error {
	ctx := cmd.Context()
	app, closeApp, err := loadApp(ctx, dataPath)
	if err != nil {
		return err
	}
	defer closeApp()
	return fn(ctx, app)
}

func newStartCmd(dataPath *string) *cobra.Command {
	var title, duration string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new learning goal, archiving the current one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Start(ctx, title, duration)
				if err != nil {
					return err
				}
				printGoal(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "what you are learning")
	cmd.Flags().StringVar(&duration, "duration", "week", "goal length: week|month|year")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newRestartCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the current goal from today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Restart(ctx)
				if err != nil {
					return err
				}
				printGoal(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newLearnedCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "learned",
		Short: "Log today as learned",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Learned(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", describeOutcome(out.Outcome))
				printGoal(cmd.OutOrStdout(), out.Goal)
				return nil
			})
		},
	}
}

func newFreezeCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "freeze",
		Short: "Spend a freeze day on today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Freeze(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", describeOutcome(out.Outcome))
				printGoal(cmd.OutOrStdout(), out.Goal)
				return nil
			})
		},
	}
}

func newStatusCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Status(ctx)
				if err != nil {
					return err
				}
				printGoal(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newWeekCmd(dataPath *string) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show one week of the day log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.GoalCLI.Week(ctx, offset)
				if err != nil {
					return err
				}
				printWeek(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks relative to the current one")
	return cmd
}

func newHistoryCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List archived goals, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.GoalCLI.History(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no archived goals")
					return nil
				}
				for _, it := range items {
					done := "open"
					if it.PeriodFinished {
						done = "finished"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s..%s\tlearned=%d freezes=%d streak=%d\t%s\n",
						it.ArchivedAt.Format(time.DateOnly), it.Title, it.Duration,
						it.StartDate.Format(time.DateOnly), it.EndDate.Format(time.DateOnly),
						it.LearnedDays, it.FreezedDays, it.Streak, done)
				}
				return nil
			})
		},
	}
}

func newJournalCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Write the goal's day log into its markdown journal note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.JournalCLI.Export(ctx)
				if err != nil {
					return err
				}
				verb := "updated"
				if out.Created {
					verb = "created"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d days)\n", verb, out.Path, out.Days)
				return nil
			})
		},
	}
}

func newWatchCmd(dataPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay resident, roll the goal over at midnight and serve status and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, func(ctx context.Context, app *bootstrap.App) error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on %s\n", addr)
				return bootstrap.RunWatch(ctx, app, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "metrics-addr", "127.0.0.1:9464", "listen address for /status, /metrics and /healthz")
	return cmd
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the learnjourney terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataPath, bootstrap.RunTUI)
		},
	}
}

func describeOutcome(outcome string) string {
	switch outcome {
	case "recorded":
		return "logged"
	case "already_learned":
		return "today is already logged as learned"
	case "already_freezed":
		return "today is already a freeze day"
	case "freeze_limit_reached":
		return "no freeze days left for this goal"
	default:
		return outcome
	}
}

func printGoal(w io.Writer, g goaldto.GoalOutput) {
	if !g.HasGoal {
		_, _ = fmt.Fprintln(w, "no goal yet, run: learnjourney start --title <what> --duration week")
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%s) %s..%s\n", g.Title, g.Duration, g.StartDate.Format(time.DateOnly), g.EndDate.Format(time.DateOnly))
	_, _ = fmt.Fprintf(w, "streak %d, learned %d, freezes %d/%d\n", g.CurrentStreak, g.UsedLearned, g.UsedFreezes, g.FreezeQuota)
	today := "not logged"
	switch {
	case g.TodayLearned:
		today = "learned"
	case g.TodayFreezed:
		today = "freezed"
	}
	_, _ = fmt.Fprintf(w, "today %s: %s\n", g.Today.Format(time.DateOnly), today)
	if g.PeriodFinished {
		_, _ = fmt.Fprintln(w, "goal period finished")
	}
}

func printWeek(w io.Writer, week goaldto.WeekOutput) {
	labels := make([]string, 0, len(week.Days))
	cells := make([]string, 0, len(week.Days))
	for _, d := range week.Days {
		labels = append(labels, fmt.Sprintf("%-5s", d.Label))
		cell := fmt.Sprintf("%02d", d.Date.Day())
		switch d.Status {
		case "learned":
			cell += "*"
		case "freezed":
			cell += "~"
		default:
			cell += " "
		}
		if d.Today {
			cell = "[" + cell + "]"
		}
		cells = append(cells, fmt.Sprintf("%-5s", cell))
	}
	_, _ = fmt.Fprintf(w, "week of %s\n", week.Start.Format(time.DateOnly))
	_, _ = fmt.Fprintln(w, strings.Join(labels, " "))
	_, _ = fmt.Fprintln(w, strings.Join(cells, " "))
}
