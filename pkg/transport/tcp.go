package transport

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/scpi-protocol/scpi-go/pkg/log"
)

const (
	// DefaultPort is the conventional raw socket port for instruments.
	DefaultPort = 5025

	// DefaultDialTimeout is the default connection timeout.
	DefaultDialTimeout = 5 * time.Second

	// DefaultMaxMessageSize is the default maximum response size (1 MB).
	DefaultMaxMessageSize = 1 << 20

	// Terminator is the default message terminator in both directions.
	Terminator = '\n'
)

// TCPConfig configures a TCP transport.
type TCPConfig struct {
	// DialTimeout is the connection timeout (default: 5s).
	DialTimeout time.Duration

	// WriteTimeout is the timeout for write operations (0 = no timeout).
	WriteTimeout time.Duration

	// MaxMessageSize is the maximum response size (default: 1MB).
	MaxMessageSize int

	// Terminator marks the end of every message in both directions
	// (default: newline).
	Terminator byte

	// Logger receives frame events. Nil disables logging.
	Logger log.Logger

	// SessionID tags frame events with the owning session.
	SessionID string
}

// DefaultTCPConfig returns the default TCP transport configuration.
func DefaultTCPConfig() TCPConfig {
	return TCPConfig{
		DialTimeout:    DefaultDialTimeout,
		MaxMessageSize: DefaultMaxMessageSize,
		Terminator:     Terminator,
	}
}

// TCPTransport is a Transport over a raw TCP socket.
type TCPTransport struct {
	config TCPConfig

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	closed bool
}

// Dial connects to an instrument at addr. If addr carries no port, the
// conventional raw socket port 5025 is used.
func Dial(addr string, config TCPConfig) (*TCPTransport, error) {
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}

	conn, err := net.DialTimeout("tcp", addr, config.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewTCPTransport(conn, config), nil
}

// NewTCPTransport wraps an existing connection. Useful for tests and
// for connections established by a discovery browser.
func NewTCPTransport(conn net.Conn, config TCPConfig) *TCPTransport {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.Terminator == 0 {
		config.Terminator = Terminator
	}
	return &TCPTransport{
		config: config,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// RemoteAddr returns the instrument address, or "" when disconnected.
func (t *TCPTransport) RemoteAddr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ""
	}
	return t.conn.RemoteAddr().String()
}

// Send writes one message, appending the terminator.
func (t *TCPTransport) Send(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.conn == nil {
		return ErrNotConnected
	}

	if t.config.WriteTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	frame := make([]byte, 0, len(data)+1)
	frame = append(frame, data...)
	frame = append(frame, t.config.Terminator)

	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("%w: write frame: %v", ErrTransport, err)
	}

	t.logFrame(log.DirectionOut, frame)
	return nil
}

// Receive reads one terminated message. The terminator and any
// trailing carriage return are stripped from the returned bytes.
func (t *TCPTransport) Receive(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.conn == nil {
		return nil, ErrNotConnected
	}

	if timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	} else {
		if err := t.conn.SetReadDeadline(time.Time{}); err != nil {
			return nil, fmt.Errorf("clear read deadline: %w", err)
		}
	}

	// Accumulate buffer-sized chunks so an unterminated or oversized
	// response is rejected at the limit instead of growing without bound.
	var frame []byte
	for {
		chunk, err := t.reader.ReadSlice(t.config.Terminator)
		frame = append(frame, chunk...)
		if len(frame) > t.config.MaxMessageSize {
			return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(frame), t.config.MaxMessageSize)
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("%w: read frame: %v", ErrTransport, err)
	}

	t.logFrame(log.DirectionIn, frame)

	return bytes.TrimRight(frame, "\r\n"), nil
}

// Close closes the underlying connection.
// It is safe to call Close multiple times.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

func (t *TCPTransport) logFrame(dir log.Direction, frame []byte) {
	if t.config.Logger == nil {
		return
	}
	event := log.NewFrameEvent(t.config.SessionID, dir, frame)
	if t.conn != nil {
		event.RemoteAddr = t.conn.RemoteAddr().String()
	}
	t.config.Logger.Log(event)
}

// Compile-time interface satisfaction check.
var _ Transport = (*TCPTransport)(nil)
