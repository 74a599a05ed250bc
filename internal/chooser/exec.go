package chooser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecChooser runs a dmenu-compatible program: options are written to its
// stdin one per line and the selection is read back from stdout.
type ExecChooser struct {
	Name string
	Args []string
}

// NewExecChooser splits command on whitespace into program and arguments.
// Arguments may contain PromptPlaceholder.
func NewExecChooser(command string) (*ExecChooser, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty chooser command")
	}
	return &ExecChooser{Name: fields[0], Args: fields[1:]}, nil
}

// Choose runs the selector. Exit status 1 is how rofi and dmenu report a
// dismissed menu, so it yields no selection rather than an error.
func (c *ExecChooser) Choose(ctx context.Context, prompt string, options []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.args(prompt)...)
	cmd.Stdin = strings.NewReader(strings.Join(options, "\n") + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w (%s)", c.Name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}

	lines := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)
	return strings.TrimSpace(lines[0]), nil
}

// args substitutes the prompt into the configured arguments.
func (c *ExecChooser) args(prompt string) []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = strings.ReplaceAll(a, PromptPlaceholder, prompt)
	}
	return out
}
