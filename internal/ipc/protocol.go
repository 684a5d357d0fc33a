package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandCreateWindow  CommandType = "CREATE_WINDOW"
	CommandSetVisibility CommandType = "SET_VISIBILITY"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListWindows   CommandType = "LIST_WINDOWS"
	// CommandSubscribe turns the connection into a stream: after the OK
	// response the server writes one Envelope per line until either side
	// closes.
	CommandSubscribe CommandType = "SUBSCRIBE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type CreateWindowPayload struct {
	Label string `json:"label"`
}

type CreateWindowData struct {
	Window  WindowInfo `json:"window"`
	Created bool       `json:"created"`
}

// SetVisibilityPayload carries a tray menu id: "show", "hide" or "quit".
type SetVisibilityPayload struct {
	Action string `json:"action"`
}

type SubscribePayload struct {
	// Label names the subscriber as a broadcast target. Subscribing as the
	// primary label also receives show-ui/hide-ui notifications.
	Label string `json:"label,omitempty"`
}

// WindowInfo describes one tracked overlay window.
type WindowInfo struct {
	Label      string `json:"label"`
	Route      string `json:"route"`
	Title      string `json:"title"`
	Handle     uint64 `json:"handle"`
	Visibility string `json:"visibility"`
	Primary    bool   `json:"primary,omitempty"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning   bool     `json:"daemon_running"`
	UptimeSeconds   int64    `json:"uptime_seconds"`
	CaptureRunning  bool     `json:"capture_running"`
	EventsForwarded uint64   `json:"events_forwarded"`
	EventsDropped   uint64   `json:"events_dropped"`
	WindowCount     int      `json:"window_count"`
	Targets         []string `json:"targets"`
	Channel         string   `json:"channel"`
	TrayMode        string   `json:"tray_mode"`
	Transparent     bool     `json:"transparent"`
}

// Envelope is one streamed message on a subscription.
type Envelope struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// NewEnvelope encodes payload for channel. A nil payload is omitted.
func NewEnvelope(channel string, payload any) (Envelope, error) {
	env := Envelope{Channel: channel}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", channel, err)
	}
	env.Payload = data
	return env, nil
}
