package iobridge

import (
	"io"

	"golang.org/x/sys/unix"
)

// Descriptor is the view of a process descriptor the relay needs. A
// non-blocking descriptor reports "try again later" by returning an error
// that matches unix.EAGAIN (or unix.EWOULDBLOCK).
type Descriptor interface {
	io.Reader
	io.Writer
	io.Closer
}

// FD is a Descriptor over a raw file descriptor. Read and Write return the
// unix errno unchanged so that EAGAIN and EINTR can be classified.
type FD struct {
	fd     int
	closed bool
}

// NewFD wraps fd. The FD takes ownership and closes fd on Close.
func NewFD(fd int) *FD {
	return &FD{fd: fd}
}

// Fd returns the wrapped descriptor number.
func (f *FD) Fd() int {
	return f.fd
}

// SetNonblock switches the descriptor to non-blocking mode.
func (f *FD) SetNonblock() error {
	return unix.SetNonblock(f.fd, true)
}

// Read implements io.Reader. A zero-byte read at end of stream returns 0
// and a nil error; the relay interprets that as end of stream.
func (f *FD) Read(p []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}
	n, err := unix.Read(f.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write implements io.Writer.
func (f *FD) Write(p []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}
	n, err := unix.Write(f.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Close closes the descriptor. Closing twice is a no-op.
func (f *FD) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return unix.Close(f.fd)
}
