package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/inputviz/internal/broadcast"
	"github.com/1broseidon/inputviz/internal/runtimepath"
	"github.com/1broseidon/inputviz/internal/tray"
)

// ErrAlreadyRunning is returned by Start when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("inputviz daemon is already running")

// Controller is the daemon surface the IPC server drives.
type Controller interface {
	CreateWindow(label string) (WindowInfo, bool, error)
	Dispatch(action tray.Action) error
	Windows() []WindowInfo
	Status() StatusData
	Subscribe(label string, target broadcast.Target) (detach func())
}

// subscriberWriteTimeout bounds a single envelope write to a stream client.
const subscriberWriteTimeout = 2 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	ctrl       Controller
	logger     *slog.Logger

	subscribers  atomic.Uint64
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath resolves the
// default runtime socket.
func NewServer(socketPath string, ctrl Controller, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. If a live daemon already owns
// the socket it returns ErrAlreadyRunning; a stale socket file is replaced.
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond); err == nil {
		conn.Close()
		return ErrAlreadyRunning
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandSubscribe {
		s.serveSubscription(conn, reader, req.Payload)
		return
	}

	resp, after := s.handleCommand(req)
	if !s.writeResponse(conn, resp) {
		return
	}
	if after != nil {
		after()
	}
}

// handleCommand processes a command. The returned func, when non-nil, runs
// after the response has been written.
func (s *Server) handleCommand(req *Request) (*Response, func()) {
	switch req.Command {
	case CommandCreateWindow:
		return s.handleCreateWindow(req.Payload), nil
	case CommandSetVisibility:
		return s.handleSetVisibility(req.Payload)
	case CommandGetStatus:
		resp, _ := NewOKResponse(s.ctrl.Status())
		return resp, nil
	case CommandListWindows:
		resp, _ := NewOKResponse(WindowsData{Windows: s.ctrl.Windows()})
		return resp, nil
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command)), nil
	}
}

func (s *Server) handleCreateWindow(payload json.RawMessage) *Response {
	var p CreateWindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	info, created, err := s.ctrl.CreateWindow(p.Label)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(CreateWindowData{Window: info, Created: created})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleSetVisibility(payload json.RawMessage) (*Response, func()) {
	var p SetVisibilityPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err)), nil
	}
	action, ok := tray.ParseAction(p.Action)
	if !ok {
		return NewErrorResponse(fmt.Sprintf("unknown action %q (expected show, hide or quit)", p.Action)), nil
	}

	if action == tray.ActionQuit {
		resp, _ := NewOKResponse(nil)
		return resp, func() {
			if err := s.ctrl.Dispatch(action); err != nil {
				s.logger.Warn("quit failed", "error", err)
			}
		}
	}

	if err := s.ctrl.Dispatch(action); err != nil {
		return NewErrorResponse(err.Error()), nil
	}
	resp, _ := NewOKResponse(nil)
	return resp, nil
}

func (s *Server) serveSubscription(conn net.Conn, reader *bufio.Reader, payload json.RawMessage) {
	var p SubscribePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err)))
			return
		}
	}
	label := p.Label
	if label == "" {
		label = "ipc-" + strconv.FormatUint(s.subscribers.Add(1), 10)
	}

	target := &streamTarget{conn: conn}
	// The OK line goes out under the target's lock so no envelope can
	// precede it.
	target.mu.Lock()
	resp, _ := NewOKResponse(map[string]string{"label": label})
	ok := s.writeResponse(conn, resp)
	detach := s.ctrl.Subscribe(label, target)
	target.mu.Unlock()
	defer detach()
	if !ok {
		return
	}

	s.logger.Debug("IPC subscriber attached", "label", label)
	// Block until the client hangs up; anything it sends is ignored.
	io.Copy(io.Discard, reader)
	s.logger.Debug("IPC subscriber detached", "label", label)
}

// streamTarget writes envelopes to a subscribed connection.
type streamTarget struct {
	mu   sync.Mutex
	conn net.Conn
}

func (t *streamTarget) Deliver(channel string, payload any) error {
	env, err := NewEnvelope(channel, payload)
	if err != nil {
		return err
	}
	line, err := json.Marshal(env)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(subscriberWriteTimeout))
	if _, err := t.conn.Write(line); err != nil {
		return fmt.Errorf("%w: %v", broadcast.ErrTargetClosed, err)
	}
	return nil
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal IPC response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
		return false
	}
	return true
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
