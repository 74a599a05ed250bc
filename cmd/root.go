package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/tomato/internal/chooser"
	"github.com/joescharf/tomato/internal/output"
	"github.com/joescharf/tomato/internal/store"
	"github.com/joescharf/tomato/internal/timer"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

// clock is replaceable in tests.
var clock = time.Now

var rootCmd = &cobra.Command{
	Use:   "tomato",
	Short: "Pomodoro timer for the command line",
	Long: `tomato alternates focus intervals with short and long breaks.

The timer state lives in a small status file, so every invocation picks up
where the last one left off. Run 'tomato start' to begin a focus interval,
'tomato start' again to take a break, and 'tomato status' from your bar.`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints a command failure. Flag errors can arrive before
// initDeps has built the UI.
func reportError(err error) {
	if ui == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	ui.Error("%v", err)
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd, args)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without saving the timer state")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/tomato/config.yaml)")
	rootCmd.PersistentFlags().String("state-file", "", "Timer state file (default $XDG_RUNTIME_DIR/tomato)")
	_ = viper.BindPFlag("state_file", rootCmd.PersistentFlags().Lookup("state-file"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TOMATO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default value.
func setDefaults() {
	def := timer.DefaultConfig()
	g := output.DefaultGlyphs()

	viper.SetDefault("state_file", store.DefaultPath())
	viper.SetDefault("state.format", string(store.FormatLegacy))
	viper.SetDefault("timer.focus_minutes", def.Focus.Minutes())
	viper.SetDefault("timer.short_break_minutes", def.ShortBreak.Minutes())
	viper.SetDefault("timer.long_break_minutes", def.LongBreak.Minutes())
	viper.SetDefault("timer.sessions_per_long_break", def.SessionsPerLongBreak)
	viper.SetDefault("menu.chooser", chooser.KindExec)
	viper.SetDefault("menu.command", chooser.DefaultCommand)
	viper.SetDefault("menu.on_bare", false)
	viper.SetDefault("glyphs.focus", g.Focus)
	viper.SetDefault("glyphs.break", g.Break)
	viper.SetDefault("glyphs.idle", g.Idle)
	viper.SetDefault("glyphs.paused", g.Paused)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// rootRun handles `tomato` with no subcommand: print the status line, or open
// the menu when menu.on_bare is set. Unknown words get a usage hint.
func rootRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.Warning("Command %q not known. Use 'start', 'pause', 'stop', 'report' or 'status'.", args[0])
		return nil
	}
	if viper.GetBool("menu.on_bare") {
		return menuRun(cmd.Context())
	}
	return statusRun(cmd.Context())
}

// timerConfig builds the schedule from configuration.
func timerConfig() timer.Config {
	return timer.Config{
		Focus:                minutes(viper.GetFloat64("timer.focus_minutes")),
		ShortBreak:           minutes(viper.GetFloat64("timer.short_break_minutes")),
		LongBreak:            minutes(viper.GetFloat64("timer.long_break_minutes")),
		SessionsPerLongBreak: viper.GetInt("timer.sessions_per_long_break"),
	}
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// getStore returns the configured state file store.
func getStore() (*store.FileStore, error) {
	format, err := store.ParseFormat(viper.GetString("state.format"))
	if err != nil {
		return nil, err
	}
	path := viper.GetString("state_file")
	if path == "" {
		path = store.DefaultPath()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return store.NewFileStore(path, format), nil
}

// openTimer loads the timer state for this invocation.
func openTimer(ctx context.Context) (*timer.Timer, error) {
	st, err := getStore()
	if err != nil {
		return nil, err
	}
	ui.VerboseLog("State file: %s", st.Path())

	t, err := timer.Open(ctx, timerConfig(), st,
		timer.WithClock(clock),
		timer.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, err
	}
	if t.Fresh() {
		ui.VerboseLog("No saved state, starting idle")
	}
	return t, nil
}

// glyphs returns the configured status symbols.
func glyphs() output.Glyphs {
	return output.Glyphs{
		Focus:  viper.GetString("glyphs.focus"),
		Break:  viper.GetString("glyphs.break"),
		Idle:   viper.GetString("glyphs.idle"),
		Paused: viper.GetString("glyphs.paused"),
	}
}
