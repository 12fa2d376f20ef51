package data

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// Append writes all of p to d. Interrupted writes are retried; a write that
// makes no progress is an IO error.
func Append(d *Data, p []byte) error {
	const op = "data append"
	if !d.valid() {
		return gpgerr.New(gpgerr.KindInvalidHandle, op)
	}

	for len(p) > 0 {
		n, err := d.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			return gpgerr.IO(op, io.ErrShortWrite)
		}
	}
	return nil
}

// AppendString writes all of s to d.
func AppendString(d *Data, s string) error {
	if s == "" {
		if !d.valid() {
			return gpgerr.New(gpgerr.KindInvalidHandle, "data append")
		}
		return nil
	}
	return Append(d, []byte(s))
}
