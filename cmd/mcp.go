package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joescharf/tomato/internal/mcp"
	"github.com/joescharf/tomato/internal/timer"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an assistant read and drive the timer. Configure it with:

  {
    "mcpServers": {
      "tomato": { "command": "tomato", "args": ["mcp"] }
    }
  }

Available tools: tomato_status, tomato_start, tomato_pause, tomato_stop`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	cfg := timerConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	st, err := getStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(cfg, st, buildVersion, timer.WithClock(clock), timer.WithDryRun(dryRun))
	return srv.ServeStdio(ctx)
}
