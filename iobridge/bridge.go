package iobridge

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/smnsjas/go-gpgcore/data"
	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// isWouldBlock reports whether err means "no progress possible right now".
func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

func isInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// readChunk reads from fd into p, retrying interrupted reads. An io.EOF
// from fd is folded into a zero-byte result.
func readChunk(fd Descriptor, p []byte) (int, error) {
	for {
		n, err := fd.Read(p)
		if err != nil && isInterrupted(err) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return n, err
	}
}

// errComplete reports a relay call made after end of stream was reported.
func errComplete(op string) error {
	return gpgerr.New(gpgerr.KindInvalidHandle, op+" after end of stream")
}

// closeFD closes fd at end of stream. A failing close is an IO error; the
// stream is still complete.
func closeFD(fd Descriptor, op string) (bool, error) {
	if err := fd.Close(); err != nil {
		return true, gpgerr.IO(op, err)
	}
	return true, nil
}

// Inbound moves up to one chunk from fd into d. It returns complete=true,
// after closing fd, once fd reports end of stream. Later calls for d fail
// with InvalidHandle.
func Inbound(fd Descriptor, d *data.Data) (complete bool, err error) {
	const op = "inbound"
	pending := d.Pending()
	if pending == nil {
		return false, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if pending.Done() {
		return false, errComplete(op)
	}

	var buf [data.ChunkSize]byte
	n, err := readChunk(fd, buf[:])
	if err != nil {
		if isWouldBlock(err) {
			return false, nil
		}
		return false, gpgerr.IO(op+" read", err)
	}
	if n == 0 {
		pending.MarkDone()
		return closeFD(fd, op+" close")
	}

	if err := data.Append(d, buf[:n]); err != nil {
		return false, err
	}
	return false, nil
}

// Outbound moves bytes from d to fd. When d's pending queue is empty it
// pulls one chunk from d first; when d is exhausted it closes fd and returns
// complete=true. A would-block or interrupted write leaves the unsent bytes
// queued and returns without error. After completion further calls fail
// with InvalidHandle until d is seeked.
func Outbound(fd Descriptor, d *data.Data) (complete bool, err error) {
	const op = "outbound"
	pending := d.Pending()
	if pending == nil {
		return false, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if pending.Done() {
		return false, errComplete(op)
	}

	if pending.Empty() {
		n, err := pending.Fill(d.Read)
		if err != nil && !errors.Is(err, io.EOF) {
			pending.Reset()
			return false, gpgerr.IO(op+" read", err)
		}
		if n == 0 {
			pending.MarkDone()
			return closeFD(fd, op+" close")
		}
	}

	nw, err := fd.Write(pending.Bytes())
	if nw > 0 {
		pending.Consume(nw)
	}
	if err != nil {
		if isWouldBlock(err) || isInterrupted(err) {
			return false, nil
		}
		return false, gpgerr.IO(op+" write", err)
	}
	if nw == 0 {
		return false, gpgerr.IO(op+" write", io.ErrShortWrite)
	}
	return false, nil
}

// LineSink consumes the raw bytes of a line-oriented channel. A sink that
// also has a Closed() bool method is not relayed to once it reports true.
type LineSink interface {
	// Feed hands over the next bytes read from the channel.
	Feed(p []byte) error
	// Close signals end of stream.
	Close() error
}

// LineInbound moves up to one chunk from fd into sink. At end of stream it
// closes fd, then closes sink, and returns complete=true. An error from the
// sink's Close is returned alongside complete=true.
func LineInbound(fd Descriptor, sink LineSink) (complete bool, err error) {
	const op = "line inbound"
	if sink == nil {
		return false, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if c, ok := sink.(interface{ Closed() bool }); ok && c.Closed() {
		return false, errComplete(op)
	}

	var buf [data.ChunkSize]byte
	n, err := readChunk(fd, buf[:])
	if err != nil {
		if isWouldBlock(err) {
			return false, nil
		}
		return false, gpgerr.IO(op+" read", err)
	}
	if n == 0 {
		complete, closeErr := closeFD(fd, op+" close")
		if err := sink.Close(); err != nil {
			return complete, err
		}
		return complete, closeErr
	}

	return false, sink.Feed(buf[:n])
}
