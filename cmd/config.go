package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tomato"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage tomato configuration.

Running bare 'tomato config' is the same as 'tomato config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# tomato configuration
# See: tomato config show (for effective values and sources)

# Timer state file (default: $XDG_RUNTIME_DIR/tomato)
# state_file: {{ .StateFile }}

state:
  # On-disk layout: "legacy" (five plain lines) or "yaml" (versioned)
  format: "{{ .StateFormat }}"

# Interval lengths in minutes
timer:
  focus_minutes: {{ .FocusMinutes }}
  short_break_minutes: {{ .ShortBreakMinutes }}
  long_break_minutes: {{ .LongBreakMinutes }}

  # Focus intervals before a long break
  sessions_per_long_break: {{ .SessionsPerLongBreak }}

menu:
  # "exec" runs menu.command, "prompt" shows an in-terminal menu
  chooser: "{{ .MenuChooser }}"

  # Any dmenu-compatible program (options on stdin, choice on stdout).
  # {prompt} is replaced by the current status line.
  command: "{{ .MenuCommand }}"

  # Open the menu when tomato runs without a command (default: false)
  on_bare: {{ .MenuOnBare }}

# Status line symbols
glyphs:
  focus: "{{ .GlyphFocus }}"
  break: "{{ .GlyphBreak }}"
  idle: "{{ .GlyphIdle }}"
  paused: "{{ .GlyphPaused }}"
`

type configTemplateData struct {
	StateFile            string
	StateFormat          string
	FocusMinutes         float64
	ShortBreakMinutes    float64
	LongBreakMinutes     float64
	SessionsPerLongBreak int
	MenuChooser          string
	MenuCommand          string
	MenuOnBare           bool
	GlyphFocus           string
	GlyphBreak           string
	GlyphIdle            string
	GlyphPaused          string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateFile:            viper.GetString("state_file"),
		StateFormat:          viper.GetString("state.format"),
		FocusMinutes:         viper.GetFloat64("timer.focus_minutes"),
		ShortBreakMinutes:    viper.GetFloat64("timer.short_break_minutes"),
		LongBreakMinutes:     viper.GetFloat64("timer.long_break_minutes"),
		SessionsPerLongBreak: viper.GetInt("timer.sessions_per_long_break"),
		MenuChooser:          viper.GetString("menu.chooser"),
		MenuCommand:          viper.GetString("menu.command"),
		MenuOnBare:           viper.GetBool("menu.on_bare"),
		GlyphFocus:           viper.GetString("glyphs.focus"),
		GlyphBreak:           viper.GetString("glyphs.break"),
		GlyphIdle:            viper.GetString("glyphs.idle"),
		GlyphPaused:          viper.GetString("glyphs.paused"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "state_file", EnvVar: "TOMATO_STATE_FILE"},
	{Key: "state.format", EnvVar: "TOMATO_STATE_FORMAT"},
	{Key: "timer.focus_minutes", EnvVar: "TOMATO_TIMER_FOCUS_MINUTES"},
	{Key: "timer.short_break_minutes", EnvVar: "TOMATO_TIMER_SHORT_BREAK_MINUTES"},
	{Key: "timer.long_break_minutes", EnvVar: "TOMATO_TIMER_LONG_BREAK_MINUTES"},
	{Key: "timer.sessions_per_long_break", EnvVar: "TOMATO_TIMER_SESSIONS_PER_LONG_BREAK"},
	{Key: "menu.chooser", EnvVar: "TOMATO_MENU_CHOOSER"},
	{Key: "menu.command", EnvVar: "TOMATO_MENU_COMMAND"},
	{Key: "menu.on_bare", EnvVar: "TOMATO_MENU_ON_BARE"},
	{Key: "glyphs.focus", EnvVar: "TOMATO_GLYPHS_FOCUS"},
	{Key: "glyphs.break", EnvVar: "TOMATO_GLYPHS_BREAK"},
	{Key: "glyphs.idle", EnvVar: "TOMATO_GLYPHS_IDLE"},
	{Key: "glyphs.paused", EnvVar: "TOMATO_GLYPHS_PAUSED"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-32s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set — set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'tomato config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
