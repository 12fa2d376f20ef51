package gpgcore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smnsjas/go-gpgcore/config"
	"github.com/smnsjas/go-gpgcore/data"
	"github.com/smnsjas/go-gpgcore/gpgerr"
	"github.com/smnsjas/go-gpgcore/iobridge"
	"github.com/smnsjas/go-gpgcore/passphrase"
	"github.com/smnsjas/go-gpgcore/status"
)

// Logger is an optional interface for debug logging.
// If not set, no logging is performed.
type Logger interface {
	// Printf formats and logs a debug message.
	Printf(format string, v ...interface{})
}

// SessionState represents the lifecycle state of a Session.
type SessionState int

const (
	// SessionStateActive is the state of a session that still accepts
	// status input.
	SessionStateActive SessionState = iota
	// SessionStateClosed is the state after Close.
	SessionStateClosed
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionStateActive:
		return "Active"
	case SessionStateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Session is one conversation with the backend. It owns the status
// dispatcher, the passphrase coordinator and the data objects registered
// with Track. It is not safe for concurrent use.
type Session struct {
	id         uuid.UUID
	state      SessionState
	dispatcher *status.Dispatcher
	coord      *passphrase.Coordinator
	tracked    []*data.Data

	prefix  string
	maxLine int
	cb      passphrase.Callback

	logger     Logger
	slogLogger *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPassphraseCallback sets the callback that answers passphrase queries.
func WithPassphraseCallback(cb passphrase.Callback) SessionOption {
	return func(s *Session) {
		s.cb = cb
	}
}

// WithStatusConfig applies the status section of a configuration file.
func WithStatusConfig(cfg config.StatusConfig) SessionOption {
	return func(s *Session) {
		s.prefix = cfg.Prefix
		if cfg.MaxLineLength > 0 {
			s.maxLine = cfg.MaxLineLength
		}
	}
}

// WithID sets the session identifier instead of a random one.
func WithID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// NewSession creates a session. Answers to interactive queries are
// written to cmdOut, normally the backend's command descriptor.
func NewSession(cmdOut io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		id:      uuid.New(),
		prefix:  status.DefaultPrefix,
		maxLine: status.DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher = status.NewDispatcher(s.id)
	s.dispatcher.SetPrefix(s.prefix)
	_ = s.dispatcher.SetMaxLineLength(s.maxLine)

	s.coord = passphrase.NewCoordinator(s.id, s.cb)
	s.coord.Start(s.dispatcher, cmdOut)
	if s.cb == nil {
		// Queries still need an answer or the backend stalls.
		s.dispatcher.SetCommandHandler(nil, cmdOut)
	}
	return s
}

// ID returns the unique identifier of the session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Dispatcher returns the session's status dispatcher.
func (s *Session) Dispatcher() *status.Dispatcher {
	return s.dispatcher
}

// Passphrase returns the session's passphrase coordinator.
func (s *Session) Passphrase() *passphrase.Coordinator {
	return s.coord
}

// AddHandler registers an additional status handler. It runs after the
// passphrase coordinator.
func (s *Session) AddHandler(h status.Handler) {
	s.dispatcher.AddHandler(h)
}

// SetLogger sets the logger for debug logging on the session and its
// components.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
	s.dispatcher.SetLogger(logger)
	s.coord.SetLogger(logger)
}

// SetSlogLogger sets a structured logger on the session and its components.
func (s *Session) SetSlogLogger(logger *slog.Logger) {
	s.slogLogger = logger
	s.dispatcher.SetSlogLogger(logger)
	s.coord.SetSlogLogger(logger)
}

// Track hands data objects to the session. They are released by Close.
func (s *Session) Track(objs ...*data.Data) {
	for _, d := range objs {
		if d != nil {
			s.tracked = append(s.tracked, d)
		}
	}
}

// PumpStatus relays one chunk from the status descriptor into the
// dispatcher. It reports complete=true once the descriptor reached end of
// stream; by then CodeEOF has been dispatched.
func (s *Session) PumpStatus(fd iobridge.Descriptor) (complete bool, err error) {
	if s.state == SessionStateClosed {
		return false, gpgerr.New(gpgerr.KindInvalidHandle, "session pump status")
	}
	return iobridge.LineInbound(fd, s.dispatcher)
}

// Run pumps a blocking status descriptor until end of stream or until ctx
// is cancelled. Cancellation is only noticed between reads.
func (s *Session) Run(ctx context.Context, fd iobridge.Descriptor) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := s.PumpStatus(fd)
		if err != nil {
			return err
		}
		if done {
			s.logf("[session] status channel closed")
			return nil
		}
	}
}

// Close ends the session: the dispatcher delivers EOF if it has not done so
// yet, the passphrase state is dropped and tracked data objects are
// released. Close is idempotent.
func (s *Session) Close() error {
	if s.state == SessionStateClosed {
		return nil
	}
	s.state = SessionStateClosed
	s.logf("[session] closing, releasing %d data objects", len(s.tracked))

	err := s.dispatcher.Close()
	s.coord.Release()
	for _, d := range s.tracked {
		d.Release()
	}
	s.tracked = nil

	return err
}

// logf logs a debug message if a logger is configured.
func (s *Session) logf(format string, v ...interface{}) {
	if s.slogLogger != nil {
		s.slogLogger.Debug(fmt.Sprintf(format, v...), "session_id", s.id.String())
		return
	}
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}
