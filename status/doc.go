// Package status decodes the status side-channel of a gpg process.
//
// gpg reports progress on a dedicated descriptor as text lines:
//
//	[GNUPG:] USERID_HINT 0123456789ABCDEF Joe User <joe@example.org>
//	[GNUPG:] NEED_PASSPHRASE 0123456789ABCDEF 0123456789ABCDEF 1 0
//	[GNUPG:] GET_HIDDEN passphrase.enter
//
// Each line is a Code followed by an optional argument string. A Dispatcher
// owns one session's lines: ordinary events are delivered to the registered
// Handlers, while the interactive queries GET_BOOL, GET_LINE and GET_HIDDEN
// are answered by the CommandHandler, whose reply is written back to the
// backend's command descriptor.
//
//	d := status.NewDispatcher(uuid.New())
//	d.AddHandler(coord)
//	d.SetCommandHandler(coord, cmdPipe)
//
//	// From the readiness loop:
//	done, err := iobridge.LineInbound(statusFD, d)
//
// When the channel ends, Close delivers CodeEOF to the handlers and then
// calls the command handler with the CodeNone cleanup sentinel.
package status
