// Package chooser asks the user to pick one of a set of labelled actions.
package chooser

import (
	"context"
	"fmt"
)

// Kinds of chooser selectable from configuration.
const (
	KindExec   = "exec"
	KindPrompt = "prompt"
)

// PromptPlaceholder in a chooser command argument is replaced by the prompt.
const PromptPlaceholder = "{prompt}"

// DefaultCommand is the external selector used by KindExec.
const DefaultCommand = "rofi -dmenu -i -p " + PromptPlaceholder

// Chooser presents options and returns the selected one.
// An empty string with a nil error means nothing was chosen.
type Chooser interface {
	Choose(ctx context.Context, prompt string, options []string) (string, error)
}

// New builds a chooser from configuration values.
func New(kind, command string) (Chooser, error) {
	switch kind {
	case KindExec, "":
		if command == "" {
			command = DefaultCommand
		}
		return NewExecChooser(command)
	case KindPrompt:
		return NewPromptChooser(), nil
	}
	return nil, fmt.Errorf("unknown chooser %q (want %s or %s)", kind, KindExec, KindPrompt)
}
