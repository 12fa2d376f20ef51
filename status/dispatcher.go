package status

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// DefaultMaxLineLength bounds a single status line. gpg keeps its own lines
// well below this.
const DefaultMaxLineLength = 64 * 1024

// Handler receives decoded status events.
type Handler interface {
	HandleStatus(code Code, args string) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(code Code, args string) error

// HandleStatus calls f(code, args).
func (f HandlerFunc) HandleStatus(code Code, args string) error {
	return f(code, args)
}

// CommandHandler answers interactive queries (GET_BOOL, GET_LINE,
// GET_HIDDEN). key is the query's argument, e.g. "passphrase.enter".
//
// When the session ends the handler is called once more with CodeNone and
// an empty key so that it can release per-session resources; the response
// to that call is discarded.
type CommandHandler interface {
	HandleCommand(code Code, key string) (string, error)
}

// Logger is an optional interface for debug logging.
// If not set, no logging is performed.
type Logger interface {
	// Printf formats and logs a debug message.
	Printf(format string, v ...interface{})
}

// Dispatcher routes the status lines of one session to its handlers.
// It is not safe for concurrent use.
type Dispatcher struct {
	id       uuid.UUID
	handlers []Handler
	cmd      CommandHandler
	cmdOut   io.Writer

	prefix     string
	maxLine    int
	buf        []byte
	discarding bool // skipping the rest of an over-long line

	closed bool

	logger     Logger
	slogLogger *slog.Logger
}

// NewDispatcher creates a dispatcher for the session identified by id.
func NewDispatcher(id uuid.UUID) *Dispatcher {
	return &Dispatcher{
		id:      id,
		prefix:  DefaultPrefix,
		maxLine: DefaultMaxLineLength,
	}
}

// ID returns the session identifier.
func (d *Dispatcher) ID() uuid.UUID {
	return d.id
}

// SetPrefix changes the line prefix stripped before parsing. An empty
// prefix parses lines as they are.
func (d *Dispatcher) SetPrefix(prefix string) {
	d.prefix = prefix
}

// SetMaxLineLength changes the line length limit used by Feed.
func (d *Dispatcher) SetMaxLineLength(n int) error {
	if n <= 0 {
		return gpgerr.Invalid("status set max line length", "limit must be positive, got %d", n)
	}
	d.maxLine = n
	return nil
}

// AddHandler registers h. Handlers run in registration order.
func (d *Dispatcher) AddHandler(h Handler) {
	if h != nil {
		d.handlers = append(d.handlers, h)
	}
}

// SetCommandHandler registers the responder for interactive queries.
// Responses are written to w, one line each.
func (d *Dispatcher) SetCommandHandler(h CommandHandler, w io.Writer) {
	d.cmd = h
	d.cmdOut = w
}

// SetLogger sets the logger for debug logging.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetSlogLogger sets a structured logger. It takes precedence over the
// Printf logger.
func (d *Dispatcher) SetSlogLogger(logger *slog.Logger) {
	d.slogLogger = logger
}

// DispatchLine parses one status line and delivers it. Lines with unknown
// codes are ignored.
//
// Ordinary events go to every handler in turn; the first handler error
// stops delivery of this line and is returned. Interactive queries go to
// the command handler and its answer is written to the command writer
// followed by a newline.
func (d *Dispatcher) DispatchLine(line string) error {
	if d.closed {
		return gpgerr.New(gpgerr.KindInvalidHandle, "status dispatch")
	}

	code, args, ok := ParseLine(line, d.prefix)
	if !ok {
		d.logf("[status] ignoring line %q", truncate(line, 80))
		return nil
	}
	if code.IsCommand() {
		return d.answer(code, args)
	}
	return d.deliver(code, args)
}

func (d *Dispatcher) deliver(code Code, args string) error {
	d.logf("[status] %s %s", code, args)
	for _, h := range d.handlers {
		if err := h.HandleStatus(code, args); err != nil {
			d.logf("[status] handler failed on %s: %v", code, err)
			return err
		}
	}
	return nil
}

func (d *Dispatcher) answer(code Code, key string) error {
	const op = "status command"
	d.logf("[status] command %s %s", code, key)

	var resp string
	if d.cmd != nil {
		var err error
		resp, err = d.cmd.HandleCommand(code, key)
		if err != nil {
			return err
		}
	} else {
		d.logf("[status] no command handler, answering %s with an empty line", code)
	}

	if d.cmdOut == nil {
		return gpgerr.Invalid(op, "no command writer for %s %s", code, key)
	}
	if _, err := io.WriteString(d.cmdOut, resp+"\n"); err != nil {
		return gpgerr.IO(op+" write", err)
	}
	return nil
}

// Feed accepts raw bytes from the status channel and dispatches every
// complete line. A partial trailing line is kept for the next call.
//
// If a line fails, the lines after it stay buffered and are dispatched by
// the next Feed or Close. A line longer than the limit is reported once and
// dropped up to and including its newline, even when that arrives in later
// calls.
func (d *Dispatcher) Feed(p []byte) error {
	const op = "status feed"
	if d.closed {
		return gpgerr.New(gpgerr.KindInvalidHandle, op)
	}

	d.buf = append(d.buf, p...)
	if d.discarding {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			d.buf = d.buf[:0]
			return nil
		}
		d.buf = d.buf[i+1:]
		d.discarding = false
	}

	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		if i > d.maxLine {
			d.buf = d.buf[i+1:]
			d.compact()
			return gpgerr.Invalid(op, "status line exceeds %d bytes", d.maxLine)
		}
		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]
		if err := d.DispatchLine(line); err != nil {
			d.compact()
			return err
		}
	}

	if len(d.buf) > d.maxLine {
		d.buf = d.buf[:0]
		d.discarding = true
		return gpgerr.Invalid(op, "status line exceeds %d bytes", d.maxLine)
	}
	d.compact()
	return nil
}

// compact moves the buffered tail to the front of its backing array.
func (d *Dispatcher) compact() {
	if len(d.buf) == 0 {
		d.buf = d.buf[:0:cap(d.buf)]
		return
	}
	d.buf = append(d.buf[:0:0], d.buf...)
}

// Closed reports whether Close has been called.
func (d *Dispatcher) Closed() bool {
	return d.closed
}

// Close ends the session. It dispatches a buffered partial line, delivers
// CodeEOF to every handler and finally calls the command handler with
// CodeNone. Close is idempotent; only the first call does anything.
func (d *Dispatcher) Close() error {
	if d.closed {
		return nil
	}

	var errs []error
	if len(d.buf) > 0 {
		line := string(d.buf)
		d.buf = nil
		if err := d.DispatchLine(line); err != nil {
			errs = append(errs, err)
		}
	}
	d.closed = true

	if err := d.deliver(CodeEOF, ""); err != nil {
		errs = append(errs, err)
	}
	if d.cmd != nil {
		if _, err := d.cmd.HandleCommand(CodeNone, ""); err != nil {
			errs = append(errs, fmt.Errorf("command cleanup: %w", err))
		}
	}
	return errors.Join(errs...)
}

// logf logs a debug message if a logger is configured.
func (d *Dispatcher) logf(format string, v ...interface{}) {
	if d.slogLogger != nil {
		d.slogLogger.Debug(fmt.Sprintf(format, v...), "session_id", d.id.String())
		return
	}
	if d.logger != nil {
		d.logger.Printf(format, v...)
	}
}

// truncate shortens a string for log messages.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
