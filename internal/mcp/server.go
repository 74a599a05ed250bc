package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/tomato/internal/store"
	"github.com/joescharf/tomato/internal/timer"
)

// Server exposes the timer transitions as MCP tools. Every call opens the
// state file fresh, exactly like a CLI invocation.
type Server struct {
	cfg     timer.Config
	store   store.Store
	opts    []timer.Option
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(cfg timer.Config, st store.Store, version string, opts ...timer.Option) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		opts:    opts,
		version: version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("tomato", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.statusTool())
	srv.AddTool(s.startTool())
	srv.AddTool(s.pauseTool())
	srv.AddTool(s.stopTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// sessionOut is the JSON shape returned by every tool.
type sessionOut struct {
	Stage            string  `json:"stage"`
	Status           string  `json:"status"`
	Count            int     `json:"count"`
	SessionsPerRow   int     `json:"sessions_per_row"`
	Deadline         string  `json:"deadline"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Remaining        string  `json:"remaining"`
	LongBreakDue     bool    `json:"long_break_due"`
	Changed          bool    `json:"changed"`
}

func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("tomato_status",
		mcp.WithDescription("Get the pomodoro timer state: stage (idle/focus/break), status (running/paused), focus count in the current row, deadline and remaining time. Does not change anything."),
	)
	return tool, s.handleStatus
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := timer.Open(ctx, s.cfg, s.store, s.opts...)
	if err != nil {
		return s.toolError("open timer", err), nil
	}
	return s.sessionResult(t, false)
}

func (s *Server) startTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("tomato_start",
		mcp.WithDescription("Resume a paused interval, or advance the timer: idle/break starts a focus interval, a running focus interval starts a break."),
	)
	return tool, s.handleStart
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := timer.Open(ctx, s.cfg, s.store, s.opts...)
	if err != nil {
		return s.toolError("open timer", err), nil
	}
	if err := t.Start(ctx); err != nil {
		return s.toolError("start", err), nil
	}
	return s.sessionResult(t, true)
}

func (s *Server) pauseTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("tomato_pause",
		mcp.WithDescription("Pause the running focus or break interval. Has no effect when idle or already paused."),
	)
	return tool, s.handlePause
}

func (s *Server) handlePause(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := timer.Open(ctx, s.cfg, s.store, s.opts...)
	if err != nil {
		return s.toolError("open timer", err), nil
	}
	changed, err := t.Pause(ctx)
	if err != nil {
		return s.toolError("pause", err), nil
	}
	return s.sessionResult(t, changed)
}

func (s *Server) stopTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("tomato_stop",
		mcp.WithDescription("Stop the timer and return to idle, clearing the focus count."),
	)
	return tool, s.handleStop
}

func (s *Server) handleStop(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := timer.Open(ctx, s.cfg, s.store, s.opts...)
	if err != nil {
		return s.toolError("open timer", err), nil
	}
	if err := t.Stop(ctx); err != nil {
		return s.toolError("stop", err), nil
	}
	return s.sessionResult(t, true)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Server) sessionResult(t *timer.Timer, changed bool) (*mcp.CallToolResult, error) {
	sess := t.Session()
	remaining := t.Remaining(false)
	out := sessionOut{
		Stage:            string(sess.Stage),
		Status:           string(sess.Status),
		Count:            sess.Count,
		SessionsPerRow:   s.cfg.SessionsPerLongBreak,
		Deadline:         sess.Deadline.Format("2006-01-02T15:04:05.000000Z07:00"),
		RemainingSeconds: remaining.Seconds(),
		Remaining:        timer.FormatRemaining(remaining),
		LongBreakDue:     t.LongBreakDue(),
		Changed:          changed,
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal session: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) toolError(action string, err error) *mcp.CallToolResult {
	slog.Warn("tomato tool failed", "action", action, "state_file", s.store.Path(), "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}
