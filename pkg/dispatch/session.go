package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scpi-protocol/scpi-go/pkg/codec"
	"github.com/scpi-protocol/scpi-go/pkg/log"
	"github.com/scpi-protocol/scpi-go/pkg/mnemonic"
	"github.com/scpi-protocol/scpi-go/pkg/model"
	"github.com/scpi-protocol/scpi-go/pkg/transport"
	"github.com/scpi-protocol/scpi-go/pkg/validate"
)

// Session errors.
var (
	// ErrSessionRecovering indicates the session is in ERROR_RECOVERY
	// and refuses operations until Reset.
	ErrSessionRecovering = errors.New("session requires reset")

	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotAttribute indicates Get/Set was called on a command path.
	ErrNotAttribute = errors.New("path is not an attribute")

	// ErrNotCommand indicates Invoke was called on an attribute path.
	ErrNotCommand = errors.New("path is not a command")
)

// clearStatus is sent during Reset to flush the instrument's event
// registers and error queue.
const clearStatus = "*CLS"

// SessionConfig configures a Session.
type SessionConfig struct {
	// DefaultTimeout applies to operations whose context carries no
	// deadline (default: 5s).
	DefaultTimeout time.Duration

	// DrainTimeout is the per-read timeout used when Reset drains
	// stale responses (default: 200ms).
	DrainTimeout time.Duration

	// Logger receives session events. Nil disables logging.
	Logger log.Logger
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		DefaultTimeout: 5 * time.Second,
		DrainTimeout:   200 * time.Millisecond,
	}
}

// Session dispatches Get/Set/Invoke operations for one instrument over
// a half-duplex transport. It is safe for concurrent use; operations
// are admitted strictly in arrival order.
type Session struct {
	id       string
	registry *model.Registry
	codec    *codec.Codec
	tr       transport.Transport
	config   SessionConfig
	logger   log.Logger

	mu        sync.Mutex
	state     State
	busy      bool
	waiters   []chan struct{}
	abandoned []string
	closed    bool
}

// NewSession creates a session over an open transport.
func NewSession(tr transport.Transport, registry *model.Registry, c *codec.Codec, config SessionConfig) *Session {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = 5 * time.Second
	}
	if config.DrainTimeout == 0 {
		config.DrainTimeout = 200 * time.Millisecond
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	if c == nil {
		c = codec.New(nil)
	}
	s := &Session{
		id:       uuid.NewString(),
		registry: registry,
		codec:    c,
		tr:       tr,
		config:   config,
		logger:   logger,
		state:    StateIdle,
	}
	logger.Log(log.NewStateChangeEvent(s.id, StateDisconnected.String(), StateIdle.String(), "connected"))
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Abandoned returns the operation IDs whose responses were never
// collected. Cleared by Reset.
func (s *Session) Abandoned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.abandoned))
	copy(out, s.abandoned)
	return out
}

// Get reads an attribute's current value.
func (s *Session) Get(ctx context.Context, path string) (any, error) {
	node, err := s.registry.Lookup(path)
	if err != nil {
		return nil, err
	}
	if node.Kind != model.KindAttribute {
		return nil, fmt.Errorf("%w: %s", ErrNotAttribute, path)
	}
	return s.exchange(ctx, node, mnemonic.Query(node.Path), true)
}

// Set writes an attribute. The value is validated against the node's
// type, range, and access before the transport is touched; a
// validation failure produces no traffic at all.
func (s *Session) Set(ctx context.Context, path string, value any) error {
	node, err := s.registry.Lookup(path)
	if err != nil {
		return err
	}
	if node.Kind != model.KindAttribute {
		return fmt.Errorf("%w: %s", ErrNotAttribute, path)
	}
	if err := validate.Validate(node, value); err != nil {
		return err
	}
	payload, err := s.codec.Encode(node, value)
	if err != nil {
		return err
	}
	_, err = s.exchange(ctx, node, mnemonic.Write(node.Path, payload), false)
	return err
}

// Invoke executes a command. arg may be nil for argument-less
// commands. The decoded response is returned for commands that produce
// one, nil otherwise.
func (s *Session) Invoke(ctx context.Context, path string, arg any) (any, error) {
	node, err := s.registry.Lookup(path)
	if err != nil {
		return nil, err
	}
	if node.Kind != model.KindCommand {
		return nil, fmt.Errorf("%w: %s", ErrNotCommand, path)
	}

	var payload string
	if arg != nil {
		if err := validate.Validate(node, arg); err != nil {
			return nil, err
		}
		payload, err = s.codec.Encode(node, arg)
		if err != nil {
			return nil, err
		}
	}

	var msg string
	switch {
	case node.HasResponse() && payload != "":
		msg = mnemonic.QueryArg(node.Path, payload)
	case node.HasResponse():
		msg = mnemonic.Query(node.Path)
	case payload != "":
		msg = mnemonic.Write(node.Path, payload)
	default:
		msg = mnemonic.Render(node.Path)
	}
	return s.exchange(ctx, node, msg, node.HasResponse())
}

// Reset clears the instrument's status and returns the session to
// IDLE. It is the only way out of ERROR_RECOVERY: it sends *CLS,
// drains any stale responses left on the link, and forgets abandoned
// operations.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	from := s.state
	s.setStateLocked(StateBusy, "reset")
	s.mu.Unlock()

	if err := s.tr.Send([]byte(clearStatus)); err != nil {
		s.transition(StateErrorRecovery, "reset send failed")
		return err
	}

	// Discard anything the instrument still had queued for us.
	for {
		if _, err := s.tr.Receive(s.config.DrainTimeout); err != nil {
			break
		}
	}

	s.mu.Lock()
	s.abandoned = nil
	s.setStateLocked(StateIdle, fmt.Sprintf("reset from %s", from))
	s.mu.Unlock()
	return nil
}

// Close closes the session and its transport. Queued operations fail
// with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, ch := range s.waiters {
		close(ch)
	}
	s.waiters = nil
	s.setStateLocked(StateDisconnected, "closed")
	s.mu.Unlock()

	return s.tr.Close()
}

// Exchange sends a raw message outside the compiled tree, subject to
// the same admission queue and state machine as every other operation.
// Common commands (*IDN?, *RST, *OPC?) use this path; the returned
// string is the raw response, "" for write-only messages.
func (s *Session) Exchange(ctx context.Context, msg string, wantResponse bool) (string, error) {
	label, _, _ := strings.Cut(msg, " ")
	return s.do(ctx, label, msg, wantResponse)
}

// exchange dispatches a compiled node and decodes its response.
func (s *Session) exchange(ctx context.Context, node *model.Node, msg string, wantResponse bool) (any, error) {
	raw, err := s.do(ctx, node.Mnemonic, msg, wantResponse)
	if err != nil || !wantResponse {
		return nil, err
	}
	return s.codec.Decode(node, raw)
}

// do performs one send (and optionally one receive) while holding the
// admission slot.
func (s *Session) do(ctx context.Context, label, msg string, wantResponse bool) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	if s.state == StateErrorRecovery {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrSessionRecovering, label)
	}
	s.setStateLocked(StateBusy, label)
	s.mu.Unlock()

	// Cancellation before the first byte is side-effect-free.
	if err := ctx.Err(); err != nil {
		s.transition(StateIdle, "cancelled before dispatch")
		return "", err
	}

	opID := uuid.NewString()
	timeout := s.config.DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			s.transition(StateIdle, "deadline expired before dispatch")
			return "", context.DeadlineExceeded
		}
	}

	start := time.Now()
	if err := s.tr.Send([]byte(msg)); err != nil {
		s.transition(StateErrorRecovery, "send failed")
		s.logger.Log(log.NewErrorEvent(s.id, err.Error(), msg))
		return "", err
	}

	if !wantResponse {
		s.logger.Log(log.NewExchangeEvent(s.id, label, msg, "", time.Since(start)))
		s.transition(StateIdle, "complete")
		return "", nil
	}

	raw, err := s.tr.Receive(timeout)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			s.mu.Lock()
			s.abandoned = append(s.abandoned, opID)
			s.setStateLocked(StateErrorRecovery, "response timeout")
			s.mu.Unlock()
		} else {
			s.transition(StateErrorRecovery, "receive failed")
		}
		s.logger.Log(log.NewErrorEvent(s.id, err.Error(), msg))
		return "", err
	}

	s.logger.Log(log.NewExchangeEvent(s.id, label, msg, string(raw), time.Since(start)))
	s.transition(StateIdle, "complete")
	return string(raw), nil
}

// acquire claims the admission slot, queuing FIFO behind earlier callers.
func (s *Session) acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.busy {
		s.busy = true
		s.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, w := range s.waiters {
			if w == ch {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// The slot was granted concurrently with cancellation; hand it on.
		s.release()
		return ctx.Err()
	}
}

// release hands the slot to the next queued caller, or frees it.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiters) > 0 {
		ch := s.waiters[0]
		s.waiters = s.waiters[1:]
		close(ch)
		return
	}
	s.busy = false
}

// transition changes state under the lock and logs the change.
func (s *Session) transition(to State, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(to, reason)
}

func (s *Session) setStateLocked(to State, reason string) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	s.logger.Log(log.NewStateChangeEvent(s.id, from.String(), to.String(), reason))
}
