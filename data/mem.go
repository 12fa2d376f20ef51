package data

import (
	"errors"
	"io"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

var errNegativePosition = errors.New("negative position")

// Mem is a growable in-memory backing store with a read/write position.
// Released buffers are wiped.
type Mem struct {
	buf     []byte
	pos     int
	limit   int  // zero means unlimited
	aliased bool // buf belongs to the caller; read-only until the first write
}

// NewMem returns an empty memory-backed data object.
func NewMem() *Data {
	d, _ := New(&Mem{})
	return d
}

// NewMemLimit returns an empty memory-backed data object that refuses to
// grow beyond limit bytes. Writes past the limit fail with OutOfMemory.
func NewMemLimit(limit int) (*Data, error) {
	if limit <= 0 {
		return nil, gpgerr.Invalid("data new mem", "limit must be positive, got %d", limit)
	}
	return New(&Mem{limit: limit})
}

// NewFromBytes returns a memory-backed data object holding b. With copyBuf
// set the object owns a private copy. Otherwise it reads from b directly and
// the caller must not modify b while the object is alive; the first write
// switches the object to a private copy, so b itself is never written.
func NewFromBytes(b []byte, copyBuf bool) (*Data, error) {
	if b == nil {
		return nil, gpgerr.Invalid("data new from bytes", "nil buffer")
	}
	if !copyBuf {
		return New(&Mem{buf: b[:len(b):len(b)], aliased: true})
	}
	return New(&Mem{buf: append([]byte(nil), b...)})
}

// Bytes returns the current contents. The slice aliases the buffer.
func (m *Mem) Bytes() []byte {
	return m.buf
}

// Read implements io.Reader.
func (m *Mem) Read(p []byte) (int, error) {
	if m.pos >= len(m.buf) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

// Write implements io.Writer. It writes at the current position, growing
// the buffer as needed.
func (m *Mem) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if m.limit > 0 && end > m.limit {
		return 0, gpgerr.New(gpgerr.KindOutOfMemory, "data mem grow")
	}
	if m.aliased {
		m.own(end)
	}
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, len(m.buf), growCap(cap(m.buf), end))
			copy(grown, m.buf)
			m.buf = grown
		}
		m.buf = m.buf[:end]
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

// own replaces the caller's buffer with a private copy large enough for a
// write ending at end.
func (m *Mem) own(end int) {
	private := make([]byte, len(m.buf), growCap(len(m.buf), max(len(m.buf), end)))
	copy(private, m.buf)
	m.buf = private
	m.aliased = false
}

func growCap(have, need int) int {
	if have < ChunkSize {
		have = ChunkSize
	}
	for have < need {
		have *= 2
	}
	return have
}

// Seek implements io.Seeker. Seeking past the end is allowed; a later write
// fills the gap with zeros.
func (m *Mem) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(m.pos)
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, gpgerr.Invalid("data mem seek", "bad whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return 0, errNegativePosition
	}
	m.pos = int(pos)
	return pos, nil
}

// Release implements Releaser.
func (m *Mem) Release() {
	if !m.aliased {
		for i := range m.buf {
			m.buf[i] = 0
		}
	}
	m.buf = nil
	m.pos = 0
}

// take detaches the buffer so that a following Release does not wipe it.
func (m *Mem) take() []byte {
	out := m.buf
	m.buf = nil
	m.pos = 0
	if out == nil {
		out = []byte{}
	}
	return out
}
