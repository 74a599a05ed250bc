package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/tomato/internal/models"
	"github.com/joescharf/tomato/internal/output"
	"github.com/joescharf/tomato/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Resume, or advance to the next interval",
	Long: `Resume a paused interval. Otherwise advance the timer:
idle or break starts a focus interval, and a running focus interval
starts a break (a long one after every N focus intervals).

Running 'start' while an interval is running advances it; it does not
act as a no-op resume.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startRun(cmd.Context())
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running interval",
	Long: `Pause the running focus or break interval. The remaining time is frozen
until the next 'tomato start'. Pausing while idle or already paused does nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pauseRun(cmd.Context())
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and reset the focus count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopRun(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-line status for bars and prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(cmd.Context())
	},
}

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"print"},
	Short:   "Show the full timer state",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
}

func startRun(ctx context.Context) error {
	t, err := openTimer(ctx)
	if err != nil {
		return err
	}
	prev := t.Session()
	resumed := prev.Paused()

	if err := t.Start(ctx); err != nil {
		return err
	}

	s := t.Session()
	remaining := timer.FormatRemaining(t.Remaining(false))
	row := fmt.Sprintf("%d/%d", s.Count, t.Config().SessionsPerLongBreak)
	switch {
	case resumed:
		ui.Success("Resumed %s: %s left (%s)", s.Stage, remaining, row)
	case s.Stage == models.StageFocus:
		ui.Success("Focus started: %s (%s)", remaining, row)
	case t.LongBreakDue():
		ui.Success("Long break started: %s", remaining)
	default:
		ui.Success("Short break started: %s (%s)", remaining, row)
	}
	saved(t)
	return nil
}

func pauseRun(ctx context.Context) error {
	t, err := openTimer(ctx)
	if err != nil {
		return err
	}

	changed, err := t.Pause(ctx)
	if err != nil {
		return err
	}
	if !changed {
		if t.Session().Stage == models.StageIdle {
			ui.Info("Timer is idle, nothing to pause")
		} else {
			ui.Info("Already paused")
		}
		return nil
	}

	ui.Success("Paused %s with %s left", t.Session().Stage, timer.FormatRemaining(t.Remaining(false)))
	saved(t)
	return nil
}

func stopRun(ctx context.Context) error {
	t, err := openTimer(ctx)
	if err != nil {
		return err
	}
	if err := t.Stop(ctx); err != nil {
		return err
	}
	ui.Success("Timer stopped")
	saved(t)
	return nil
}

func statusRun(ctx context.Context) error {
	t, err := openTimer(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.Out, statusLine(t))
	return nil
}

func statusLine(t *timer.Timer) string {
	return output.StatusLine(glyphs(), t.Session(),
		timer.FormatRemaining(t.Remaining(false)),
		t.Config().SessionsPerLongBreak)
}

func reportRun(ctx context.Context) error {
	t, err := openTimer(ctx)
	if err != nil {
		return err
	}
	s := t.Session()
	cfg := t.Config()

	deadline := "-"
	switch {
	case s.Stage == models.StageIdle:
	case s.Paused():
		deadline = "(paused)"
	default:
		deadline = s.Deadline.Format("15:04:05")
	}

	nextBreak := "short"
	if t.LongBreakDue() {
		nextBreak = "long"
	}

	table := ui.Table([]string{"Field", "Value"})
	table.Append([]string{"Stage", output.StageColor(string(s.Stage))})
	table.Append([]string{"Status", output.StatusColor(string(s.Status))})
	table.Append([]string{"Session", fmt.Sprintf("%d/%d", s.Count, cfg.SessionsPerLongBreak)})
	table.Append([]string{"Deadline", deadline})
	table.Append([]string{"Remaining", timer.FormatRemaining(t.Remaining(false))})
	if d := t.Duration(); d > 0 {
		table.Append([]string{"Interval", timer.FormatRemaining(d)})
	}
	table.Append([]string{"Next break", nextBreak})
	if ui.Verbose {
		st, _ := getStore()
		if st != nil {
			table.Append([]string{"State file", st.Path()})
		}
	}
	table.Render()
	return nil
}

// saved reports where the new state went, or that it was not written.
func saved(t *timer.Timer) {
	if dryRun {
		ui.DryRunMsg("State not saved")
		return
	}
	ui.VerboseLog("Saved at %s", t.Now().Format("15:04:05"))
}
