package x11

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/pkg/errors"
)

// EnableContext minor opcode.
const recordEnableContext = 5

// recordStream sits between xgb and the record data socket. The server
// answers EnableContext with an unbounded run of replies on one sequence
// number, which xgb's cookie matching cannot deliver, so the stream reads
// whole frames itself and diverts those replies to the replies channel.
// Everything else reaches xgb untouched.
type recordStream struct {
	net.Conn
	host    string
	display string

	replies chan []byte
	done    chan struct{}

	mu       sync.Mutex
	major    byte
	armed    bool
	enabled  bool
	seq      uint16
	writes   int
	readErr  error
	stopOnce sync.Once

	// Only xgb's reader touches these.
	setupRead bool
	pending   []byte
}

func newRecordStream(conn net.Conn, host, display string) *recordStream {
	return &recordStream{
		Conn:    conn,
		host:    host,
		display: display,
		replies: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

// dialRecordStream opens a socket to display the way Xlib resolves it.
func dialRecordStream(display string) (*recordStream, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	host, number, err := parseDisplay(display)
	if err != nil {
		return nil, err
	}
	var conn net.Conn
	if host == "" || host == "unix" {
		conn, err = net.Dial("unix", "/tmp/.X11-unix/X"+number)
	} else {
		n, _ := strconv.Atoi(number)
		conn, err = net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(6000+n)))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial X display %q", display)
	}
	return newRecordStream(conn, host, number), nil
}

// parseDisplay splits "host:N.S" into host and display number.
func parseDisplay(display string) (host, number string, err error) {
	colon := strings.LastIndex(display, ":")
	if colon < 0 {
		return "", "", errors.Errorf("bad display string %q", display)
	}
	host = display[:colon]
	if slash := strings.LastIndex(host, "/"); slash >= 0 {
		host = host[slash+1:]
	}
	number = display[colon+1:]
	if dot := strings.Index(number, "."); dot >= 0 {
		number = number[:dot]
	}
	if n, err := strconv.Atoi(number); err != nil || n < 0 {
		return "", "", errors.Errorf("bad display string %q", display)
	}
	return host, number, nil
}

// connect runs the X handshake over the stream.
func (s *recordStream) connect() (*xgb.Conn, error) {
	if cookie, err := authCookie(s.host, s.display); err == nil {
		return xgb.NewConnNetWithCookieHex(s, cookie)
	}
	return xgb.NewConnNet(s)
}

// arm starts watching outgoing requests for EnableContext under major.
func (s *recordStream) arm(major byte) {
	s.mu.Lock()
	s.major = major
	s.armed = true
	s.mu.Unlock()
}

// stop releases a reader blocked on a full replies channel.
func (s *recordStream) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *recordStream) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

// Write counts requests so the EnableContext sequence number is known before
// its first reply can arrive. The first write is the connection setup.
func (s *recordStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.writes > 0 && s.armed && !s.enabled && len(p) >= 2 && p[0] == s.major && p[1] == recordEnableContext {
		s.enabled = true
		s.seq = uint16(s.writes)
	}
	s.writes++
	s.mu.Unlock()
	return s.Conn.Write(p)
}

func (s *recordStream) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		frame, err := s.readFrame()
		if err != nil {
			s.mu.Lock()
			if s.readErr == nil {
				s.readErr = err
				close(s.replies)
			}
			s.mu.Unlock()
			return 0, err
		}
		if s.isRecorded(frame) {
			select {
			case s.replies <- frame:
			case <-s.done:
			}
			continue
		}
		s.pending = frame
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *recordStream) isRecorded(frame []byte) bool {
	if frame[0] != 1 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && xgb.Get16(frame[2:]) == s.seq
}

// readFrame reads the setup reply first, then one reply, error or event.
func (s *recordStream) readFrame() ([]byte, error) {
	if !s.setupRead {
		head := make([]byte, 8)
		if _, err := io.ReadFull(s.Conn, head); err != nil {
			return nil, err
		}
		frame := make([]byte, 8+int(xgb.Get16(head[6:]))*4)
		copy(frame, head)
		if _, err := io.ReadFull(s.Conn, frame[8:]); err != nil {
			return nil, err
		}
		s.setupRead = true
		return frame, nil
	}

	head := make([]byte, 32)
	if _, err := io.ReadFull(s.Conn, head); err != nil {
		return nil, err
	}
	if head[0] != 1 {
		return head, nil
	}
	size := int(xgb.Get32(head[4:])) * 4
	if size == 0 {
		return head, nil
	}
	frame := make([]byte, 32+size)
	copy(frame, head)
	if _, err := io.ReadFull(s.Conn, frame[32:]); err != nil {
		return nil, err
	}
	return frame, nil
}

func recordOpcode(c *xgb.Conn) byte {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	return c.Extensions["RECORD"]
}

// Xauthority address families.
const (
	familyLocal = 256
	familyWild  = 65535
)

// authCookie finds the MIT-MAGIC-COOKIE-1 for host:display in the
// Xauthority file, hex encoded.
func authCookie(host, display string) (string, error) {
	if host == "" || host == "unix" || host == "localhost" {
		name, err := os.Hostname()
		if err != nil {
			return "", err
		}
		host = name
	}
	path := os.Getenv("XAUTHORITY")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".Xauthority")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return findCookie(f, host, display)
}

func findCookie(r io.Reader, host, display string) (string, error) {
	for {
		var family uint16
		if err := binary.Read(r, binary.BigEndian, &family); err != nil {
			return "", errors.Errorf("no Xauthority entry for %s:%s", host, display)
		}
		var fields [4][]byte
		for i := range fields {
			b, err := authField(r)
			if err != nil {
				return "", errors.Wrap(err, "read Xauthority")
			}
			fields[i] = b
		}
		addr, disp, name, data := string(fields[0]), string(fields[1]), string(fields[2]), fields[3]
		if family != familyWild && !(family == familyLocal && addr == host) {
			continue
		}
		if disp != "" && disp != display {
			continue
		}
		if name != "MIT-MAGIC-COOKIE-1" || len(data) != 16 {
			continue
		}
		return hex.EncodeToString(data), nil
	}
}

func authField(r io.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
