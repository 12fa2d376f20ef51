package passphrase

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/smnsjas/go-gpgcore/gpgerr"
	"github.com/smnsjas/go-gpgcore/status"
)

// Prompt verbs. The first line of every prompt is one of these.
const (
	VerbEnter    = "ENTER"
	VerbTryAgain = "TRY_AGAIN"
)

// Placeholders used when the backend has not announced a hint or info line.
const (
	HintMissing = "[User ID hint missing]"
	InfoMissing = "[passphrase info missing]"
)

// KeyEnter is the query key gpg uses to ask for a passphrase.
const KeyEnter = "passphrase.enter"

// Callback supplies passphrases.
//
// desc is a three-line prompt (see Prompt) or empty when the session ends.
// handle points at an application value kept for the session; the callback
// may replace it to carry state between calls and should release whatever
// it refers to when called with an empty desc.
type Callback func(desc string, handle *any) (string, error)

// Static returns a Callback that always answers p.
func Static(p string) Callback {
	return func(desc string, _ *any) (string, error) {
		if desc == "" {
			return "", nil
		}
		return p, nil
	}
}

// Logger is an optional interface for debug logging.
// If not set, no logging is performed.
type Logger interface {
	// Printf formats and logs a debug message.
	Printf(format string, v ...interface{})
}

// State is the passphrase bookkeeping of one session.
type State struct {
	hint         *string
	info         *string
	bad          int
	noPassphrase bool
	handle       any
}

// Hint returns the last USERID_HINT argument.
func (s State) Hint() (string, bool) {
	if s.hint == nil {
		return "", false
	}
	return *s.hint, true
}

// Info returns the last NEED_PASSPHRASE or NEED_PASSPHRASE_SYM argument.
func (s State) Info() (string, bool) {
	if s.info == nil {
		return "", false
	}
	return *s.info, true
}

// Bad returns the number of BAD_PASSPHRASE events not yet consumed by a
// prompt or cleared by GOOD_PASSPHRASE.
func (s State) Bad() int {
	return s.bad
}

// NoPassphrase reports whether MISSING_PASSPHRASE was seen and not cleared.
func (s State) NoPassphrase() bool {
	return s.noPassphrase
}

// Handle returns the application handle last stored by the callback.
func (s State) Handle() any {
	return s.handle
}

// Coordinator tracks passphrase negotiation for one session. It is both a
// status.Handler and a status.CommandHandler. It is not safe for concurrent
// use.
type Coordinator struct {
	id    uuid.UUID
	cb    Callback
	state *State

	logger     Logger
	slogLogger *slog.Logger
}

// NewCoordinator creates a coordinator for the session id. cb may be nil,
// in which case every query is answered with an empty line.
func NewCoordinator(id uuid.UUID, cb Callback) *Coordinator {
	return &Coordinator{id: id, cb: cb}
}

// SetLogger sets the logger for debug logging.
func (c *Coordinator) SetLogger(logger Logger) {
	c.logger = logger
}

// SetSlogLogger sets a structured logger. It takes precedence over the
// Printf logger.
func (c *Coordinator) SetSlogLogger(logger *slog.Logger) {
	c.slogLogger = logger
}

// Start registers c with d: always as a status handler, and as the command
// handler answering on w when a callback is configured.
func (c *Coordinator) Start(d *status.Dispatcher, w io.Writer) {
	d.AddHandler(c)
	if c.cb != nil {
		d.SetCommandHandler(c, w)
	}
}

func (c *Coordinator) ensure() *State {
	if c.state == nil {
		c.state = &State{}
	}
	return c.state
}

// HandleStatus updates the session state.
//
// On CodeEOF it fails with gpgerr.ErrNoPassphrase when the backend reported
// a missing passphrase or a bad passphrase was never followed by a good one.
func (c *Coordinator) HandleStatus(code status.Code, args string) error {
	st := c.ensure()

	switch code {
	case status.CodeUserIDHint:
		hint := args
		st.hint = &hint

	case status.CodeBadPassphrase:
		st.bad++
		st.noPassphrase = false
		c.logf("[passphrase] bad passphrase (%d)", st.bad)

	case status.CodeGoodPassphrase:
		st.bad = 0
		st.noPassphrase = false

	case status.CodeNeedPassphrase, status.CodeNeedPassphraseSym:
		info := args
		st.info = &info

	case status.CodeMissingPassphrase:
		c.logf("[passphrase] missing passphrase, stop")
		st.noPassphrase = true

	case status.CodeEOF:
		if st.noPassphrase || st.bad > 0 {
			return gpgerr.New(gpgerr.KindNoPassphrase, "passphrase eof")
		}
	}
	return nil
}

// HandleCommand answers an interactive query.
//
// CodeNone is the cleanup call: the callback is told the session is over
// and the answer is empty. A GET_HIDDEN passphrase.enter query is turned
// into a prompt for the callback. Every other query, and every query when
// no callback is configured, gets an empty answer.
func (c *Coordinator) HandleCommand(code status.Code, key string) (string, error) {
	st := c.ensure()

	if code == status.CodeNone {
		if c.cb != nil {
			if _, err := c.cb("", &st.handle); err != nil {
				return "", fmt.Errorf("passphrase cleanup: %w", err)
			}
		}
		return "", nil
	}

	if key == "" || c.cb == nil {
		return "", nil
	}

	if code == status.CodeGetHidden && key == KeyEnter {
		verb := VerbEnter
		if st.bad > 0 {
			verb = VerbTryAgain
		}
		st.bad = 0

		hint, ok := st.Hint()
		if !ok {
			hint = HintMissing
		}
		info, ok := st.Info()
		if !ok {
			info = InfoMissing
		}

		c.logf("[passphrase] requesting passphrase (%s)", verb)
		return c.cb(verb+"\n"+hint+"\n"+info, &st.handle)
	}

	return "", nil
}

// State returns a snapshot of the session state. ok is false if no status
// event or query has been seen yet.
func (c *Coordinator) State() (State, bool) {
	if c.state == nil {
		return State{}, false
	}
	return *c.state, true
}

// Release drops the session state.
func (c *Coordinator) Release() {
	c.state = nil
}

// logf logs a debug message if a logger is configured.
func (c *Coordinator) logf(format string, v ...interface{}) {
	if c.slogLogger != nil {
		c.slogLogger.Debug(fmt.Sprintf(format, v...), "session_id", c.id.String())
		return
	}
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}

// Prompt is a decoded passphrase prompt.
type Prompt struct {
	Verb string
	Hint string
	Info string
}

// Retry reports whether the previous passphrase was rejected.
func (p Prompt) Retry() bool {
	return p.Verb == VerbTryAgain
}

// KeyID returns the key ID at the start of the hint, or "" if the hint is
// a placeholder.
func (p Prompt) KeyID() string {
	if p.Hint == HintMissing {
		return ""
	}
	id, _, _ := strings.Cut(p.Hint, " ")
	return id
}

// UserID returns the user ID part of the hint.
func (p Prompt) UserID() string {
	if p.Hint == HintMissing {
		return ""
	}
	_, uid, _ := strings.Cut(p.Hint, " ")
	return uid
}

// ParsePrompt splits a callback description into its three lines. It fails
// for the empty cleanup description and for anything not shaped like a
// prompt.
func ParsePrompt(desc string) (Prompt, bool) {
	parts := strings.SplitN(desc, "\n", 3)
	if len(parts) != 3 {
		return Prompt{}, false
	}
	if parts[0] != VerbEnter && parts[0] != VerbTryAgain {
		return Prompt{}, false
	}
	return Prompt{Verb: parts[0], Hint: parts[1], Info: parts[2]}, true
}
