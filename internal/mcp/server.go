package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/inputviz/internal/ipc"
)

const (
	ServerName    = "inputviz"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools need.
type Daemon interface {
	CreateWindow(label string) (*ipc.CreateWindowData, error)
	SetVisibility(action string) error
	ListWindows() ([]ipc.WindowInfo, error)
	GetStatus() (*ipc.StatusData, error)
}

// Server exposes overlay control over MCP. Every tool forwards to a running
// daemon; nothing is cached here.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that drives daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_overlay",
		Description: "Create a borderless always-on-top overlay window for a label. Idempotent: an existing label returns the current window with created=false. New overlays start hidden.",
	}, s.handleCreateOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_overlays_visibility",
		Description: "Show or hide every overlay, the same as the tray menu's Show/Hide entries. The primary window is told via a show-ui/hide-ui event instead of being toggled directly.",
	}, s.handleSetVisibility)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_overlays",
		Description: "List tracked overlays in creation order with their route, handle and visibility.",
	}, s.handleListOverlays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "daemon_status",
		Description: "Report daemon health: capture state, forwarded/dropped event counts, subscribers and compositor support.",
	}, s.handleStatus)
}

func (s *Server) handleCreateOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateOverlayInput) (*mcpsdk.CallToolResult, CreateOverlayOutput, error) {
	label := strings.TrimSpace(args.Label)
	if label == "" {
		return nil, CreateOverlayOutput{}, fmt.Errorf("label is required")
	}
	data, err := s.daemon.CreateWindow(label)
	if err != nil {
		return nil, CreateOverlayOutput{}, err
	}
	s.logger.Debug("create_overlay", "label", label, "created", data.Created)
	return nil, CreateOverlayOutput{Overlay: data.Window, Created: data.Created}, nil
}

func (s *Server) handleSetVisibility(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVisibilityInput) (*mcpsdk.CallToolResult, SetVisibilityOutput, error) {
	action := strings.ToLower(strings.TrimSpace(args.Action))
	// Quit stays with the tray and the CLI.
	if action != "show" && action != "hide" {
		return nil, SetVisibilityOutput{}, fmt.Errorf("action must be show or hide, got %q", args.Action)
	}
	if err := s.daemon.SetVisibility(action); err != nil {
		return nil, SetVisibilityOutput{}, err
	}
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, SetVisibilityOutput{}, err
	}
	return nil, SetVisibilityOutput{Action: action, Overlays: nonNil(windows)}, nil
}

func (s *Server) handleListOverlays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListOverlaysInput) (*mcpsdk.CallToolResult, ListOverlaysOutput, error) {
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListOverlaysOutput{}, err
	}
	return nil, ListOverlaysOutput{Overlays: nonNil(windows)}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: *status}, nil
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil(windows []ipc.WindowInfo) []ipc.WindowInfo {
	if windows == nil {
		return []ipc.WindowInfo{}
	}
	return windows
}
