package chooser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6347")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// keyMap defines the menu key bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc/q", "cancel"),
		),
	}
}

// PromptChooser shows an in-terminal menu.
type PromptChooser struct {
	In  io.Reader
	Out io.Writer
}

// NewPromptChooser returns a chooser bound to the process terminal.
func NewPromptChooser() *PromptChooser {
	return &PromptChooser{}
}

// Choose runs the menu until the user selects or cancels.
func (c *PromptChooser) Choose(ctx context.Context, prompt string, options []string) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.In != nil {
		opts = append(opts, tea.WithInput(c.In))
	}
	if c.Out != nil {
		opts = append(opts, tea.WithOutput(c.Out))
	}

	final, err := tea.NewProgram(newMenuModel(prompt, options), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("run menu: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok {
		return "", nil
	}
	return m.choice, nil
}

// menuModel implements the Bubble Tea menu.
type menuModel struct {
	prompt  string
	options []string
	cursor  int
	choice  string
	done    bool
	keys    keyMap
}

func newMenuModel(prompt string, options []string) menuModel {
	return menuModel{
		prompt:  prompt,
		options: options,
		keys:    defaultKeyMap(),
	}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Select):
		m.choice = m.options[m.cursor]
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt))
	b.WriteString("\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(selectedStyle.Render(opt))
		} else {
			b.WriteString("  ")
			b.WriteString(optionStyle.Render(opt))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(m.keys)))
	b.WriteString("\n")
	return b.String()
}

func helpLine(k keyMap) string {
	bindings := []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
