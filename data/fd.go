package data

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// FDStore is a backing store over a raw file descriptor. The descriptor
// stays owned by the caller; releasing the data object does not close it.
type FDStore struct {
	fd int
}

// NewFromFD returns a data object that reads from and writes to fd.
func NewFromFD(fd int) (*Data, error) {
	if fd < 0 {
		return nil, gpgerr.Invalid("data new from fd", "bad descriptor %d", fd)
	}
	return New(&FDStore{fd: fd})
}

// FD returns the wrapped descriptor.
func (s *FDStore) FD() int {
	return s.fd
}

// Read implements io.Reader. Interrupted reads are retried.
func (s *FDStore) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write implements io.Writer. EINTR is returned to the caller, which
// decides whether to retry (see Append).
func (s *FDStore) Write(p []byte) (int, error) {
	n, err := unix.Write(s.fd, p)
	if err != nil {
		if n < 0 {
			n = 0
		}
		return n, err
	}
	return n, nil
}

// Seek implements io.Seeker.
func (s *FDStore) Seek(offset int64, whence int) (int64, error) {
	return unix.Seek(s.fd, offset, whence)
}
