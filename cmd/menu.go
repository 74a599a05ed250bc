package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/tomato/internal/chooser"
)

// menuActions are offered in this order.
var menuActions = []string{"start", "pause", "stop"}

// newChooser builds the configured chooser, replaceable in tests.
var newChooser = func() (chooser.Chooser, error) {
	return chooser.New(viper.GetString("menu.chooser"), viper.GetString("menu.command"))
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick an action from an interactive menu",
	Long: `Show a menu offering start, pause and stop, then run the chosen action.

By default the menu is shown with rofi (menu.command, any dmenu-compatible
program works). Set menu.chooser to "prompt" for an in-terminal menu.
Dismissing the menu does nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return menuRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func menuRun(ctx context.Context) error {
	ch, err := newChooser()
	if err != nil {
		return err
	}

	prompt := "tomato"
	if t, err := openTimer(ctx); err == nil {
		prompt = statusLine(t)
	}

	choice, err := ch.Choose(ctx, prompt, menuActions)
	if err != nil {
		return err
	}

	switch choice {
	case "start", "focus":
		return startRun(ctx)
	case "pause":
		return pauseRun(ctx)
	case "stop":
		return stopRun(ctx)
	}
	ui.VerboseLog("No action selected (%q)", choice)
	return nil
}
