package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/tomato/internal/models"
)

// UI provides colored output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("\u2713")
	warningPrefix = color.New(color.FgHiYellow).Sprint("\u26a0")
	errorPrefix   = color.New(color.FgHiRed).Sprint("\u2717")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  \u2192")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// StageColor returns the stage name colored by stage.
func StageColor(stage string) string {
	switch strings.ToLower(stage) {
	case "focus":
		return red(stage)
	case "break":
		return green(stage)
	case "idle":
		return cyan(stage)
	default:
		return stage
	}
}

// StatusColor returns the countdown status colored: paused stands out.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "running":
		return green(status)
	case "paused":
		return yellow(status)
	default:
		return status
	}
}

// Glyphs are the symbols used by the compact status line.
type Glyphs struct {
	Focus  string
	Break  string
	Idle   string
	Paused string
}

// DefaultGlyphs returns the built-in status symbols.
func DefaultGlyphs() Glyphs {
	return Glyphs{
		Focus:  "\u25cf",
		Break:  "\u2615",
		Idle:   "\u25cb",
		Paused: "\u23f8",
	}
}

// StatusLine renders the one-line status used by bars and bare invocations,
// e.g. "● 12:34 [2/4]". An idle timer renders its glyph alone.
func StatusLine(g Glyphs, s models.Session, remaining string, perRow int) string {
	var glyph string
	switch {
	case s.Stage == models.StageIdle:
		return g.Idle
	case s.Paused():
		glyph = g.Paused
	case s.Stage == models.StageBreak:
		glyph = g.Break
	default:
		glyph = g.Focus
	}
	return fmt.Sprintf("%s %s [%d/%d]", glyph, remaining, s.Count, perRow)
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
