package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/1broseidon/inputviz/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; requests surface connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, command CommandType, payload any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends one request and decodes the response data into out (if non-nil).
func (c *Client) call(command CommandType, payload any, out any) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, command, payload); err != nil {
		return err
	}
	resp, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", command, err)
		}
	}
	return nil
}

// CreateWindow asks the daemon to ensure an overlay exists for label.
func (c *Client) CreateWindow(label string) (*CreateWindowData, error) {
	var data CreateWindowData
	if err := c.call(CommandCreateWindow, CreateWindowPayload{Label: label}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetVisibility sends a tray action ("show", "hide" or "quit").
func (c *Client) SetVisibility(action string) error {
	return c.call(CommandSetVisibility, SetVisibilityPayload{Action: action}, nil)
}

// Show shows every overlay.
func (c *Client) Show() error { return c.SetVisibility("show") }

// Hide hides every overlay.
func (c *Client) Hide() error { return c.SetVisibility("hide") }

// Quit stops the daemon.
func (c *Client) Quit() error { return c.SetVisibility("quit") }

// GetStatus returns daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	var data StatusData
	if err := c.call(CommandGetStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListWindows returns the tracked overlays in creation order.
func (c *Client) ListWindows() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Ping checks whether the daemon is reachable.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

// Subscribe streams envelopes to fn until ctx is cancelled, the daemon closes
// the stream, or fn returns an error. Cancellation returns nil.
func (c *Client) Subscribe(ctx context.Context, label string, fn func(Envelope) error) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, CommandSubscribe, SubscribePayload{Label: label}); err != nil {
		return err
	}
	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		return err
	}
	conn.SetDeadline(time.Time{})

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("daemon closed the event stream")
			}
			return fmt.Errorf("failed to read event: %w", err)
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}
		if err := fn(env); err != nil {
			return err
		}
	}
}
