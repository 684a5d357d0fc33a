package mcp

import "github.com/1broseidon/inputviz/internal/ipc"

// CreateOverlayInput is the input for the create_overlay tool.
type CreateOverlayInput struct {
	Label string `json:"label" jsonschema:"Unique overlay label, also used as the route fragment (e.g. KeyA)"`
}

// CreateOverlayOutput is the output for the create_overlay tool.
type CreateOverlayOutput struct {
	Overlay ipc.WindowInfo `json:"overlay"`
	Created bool           `json:"created"`
}

// SetVisibilityInput is the input for the set_overlays_visibility tool.
type SetVisibilityInput struct {
	Action string `json:"action" jsonschema:"Either show or hide. Applies to every overlay including the primary window."`
}

// SetVisibilityOutput is the output for the set_overlays_visibility tool.
type SetVisibilityOutput struct {
	Action   string           `json:"action"`
	Overlays []ipc.WindowInfo `json:"overlays"`
}

// ListOverlaysInput is the input for the list_overlays tool.
type ListOverlaysInput struct{}

// ListOverlaysOutput is the output for the list_overlays tool.
type ListOverlaysOutput struct {
	Overlays []ipc.WindowInfo `json:"overlays"`
}

// StatusInput is the input for the daemon_status tool.
type StatusInput struct{}

// StatusOutput is the output for the daemon_status tool.
type StatusOutput struct {
	Status ipc.StatusData `json:"status"`
}
