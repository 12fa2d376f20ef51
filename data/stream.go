package data

import (
	"io"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

type streamOptions struct {
	closeOnRelease bool
}

// StreamOption configures NewFromStream.
type StreamOption func(*streamOptions)

// CloseOnRelease closes the wrapped value, if it is an io.Closer, when the
// data object is released.
func CloseOnRelease() StreamOption {
	return func(o *streamOptions) {
		o.closeOnRelease = true
	}
}

// closerReleaser turns an io.Closer into a Releaser. Close errors have
// nowhere to go at release time and are dropped.
type closerReleaser struct {
	c io.Closer
}

func (r closerReleaser) Release() {
	_ = r.c.Close()
}

// NewFromStream returns a data object over v, which must implement at least
// one of io.Reader, io.Writer and io.Seeker. Its capabilities are whatever v
// implements.
func NewFromStream(v any, opts ...StreamOption) (*Data, error) {
	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}

	_, isReader := v.(io.Reader)
	_, isWriter := v.(io.Writer)
	_, isSeeker := v.(io.Seeker)
	if !isReader && !isWriter && !isSeeker {
		return nil, gpgerr.Invalid("data new from stream", "%T is not a reader, writer or seeker", v)
	}

	d, err := New(v)
	if err != nil {
		return nil, err
	}
	if c, ok := v.(io.Closer); ok && o.closeOnRelease && d.caps.releaser == nil {
		d.caps.releaser = closerReleaser{c: c}
	}
	return d, nil
}
