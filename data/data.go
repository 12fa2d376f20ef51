package data

import (
	"errors"
	"fmt"
	"io"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// ChunkSize is the unit of transfer between a descriptor and a data object.
const ChunkSize = 4096

// Backend is a concrete backing store. It may implement any of io.Reader,
// io.Writer, io.Seeker and Releaser; the subset it implements is its
// capability table.
type Backend interface{}

// Releaser is implemented by backends that hold resources which must be
// freed when the data object is released.
type Releaser interface {
	Release()
}

// Encoding is metadata describing how a data object's contents are encoded.
// The core never interprets it.
type Encoding int

const (
	// EncodingNone means the encoding is unknown or unspecified.
	EncodingNone Encoding = iota
	// EncodingBinary marks raw binary contents.
	EncodingBinary
	// EncodingBase64 marks base64 encoded contents.
	EncodingBase64
	// EncodingArmor marks ASCII armored contents.
	EncodingArmor
)

// String returns the string representation of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "None"
	case EncodingBinary:
		return "Binary"
	case EncodingBase64:
		return "Base64"
	case EncodingArmor:
		return "Armor"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Valid reports whether e is one of the defined encodings.
func (e Encoding) Valid() bool {
	return e >= EncodingNone && e <= EncodingArmor
}

// capabilities is the immutable capability table of a data object.
type capabilities struct {
	reader   io.Reader
	writer   io.Writer
	seeker   io.Seeker
	releaser Releaser
}

// Data is a handle to a backing store. It is owned by exactly one session
// and is not safe for concurrent use.
type Data struct {
	backend  Backend
	caps     capabilities
	encoding Encoding
	pending  Pending
	released bool
}

// New creates a data object over backend.
func New(backend Backend) (*Data, error) {
	if backend == nil {
		return nil, gpgerr.Invalid("data new", "nil backend")
	}

	d := &Data{backend: backend}
	d.caps.reader, _ = backend.(io.Reader)
	d.caps.writer, _ = backend.(io.Writer)
	d.caps.seeker, _ = backend.(io.Seeker)
	d.caps.releaser, _ = backend.(Releaser)
	return d, nil
}

func (d *Data) valid() bool {
	return d != nil && !d.released
}

// Backend returns the backing store, or nil for a nil or released handle.
func (d *Data) Backend() Backend {
	if !d.valid() {
		return nil
	}
	return d.backend
}

// Read reads up to len(p) bytes. At the end of the data it returns 0 and
// io.EOF.
func (d *Data) Read(p []byte) (int, error) {
	const op = "data read"
	if !d.valid() {
		return 0, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if d.caps.reader == nil {
		return 0, gpgerr.New(gpgerr.KindUnsupported, op)
	}

	n, err := d.caps.reader.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, gpgerr.IO(op, err)
	}
	return n, err
}

// Write writes up to len(p) bytes and returns the number written.
func (d *Data) Write(p []byte) (int, error) {
	const op = "data write"
	if !d.valid() {
		return 0, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if d.caps.writer == nil {
		return 0, gpgerr.New(gpgerr.KindUnsupported, op)
	}

	n, err := d.caps.writer.Write(p)
	if err != nil {
		return n, gpgerr.IO(op, err)
	}
	return n, nil
}

// Seek sets the position for the next Read or Write. A successful seek
// lets the object be relayed again after an earlier relay completed.
func (d *Data) Seek(offset int64, whence int) (int64, error) {
	const op = "data seek"
	if !d.valid() {
		return -1, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if d.caps.seeker == nil {
		return -1, gpgerr.New(gpgerr.KindUnsupported, op)
	}

	pos, err := d.caps.seeker.Seek(offset, whence)
	if err != nil {
		return -1, gpgerr.IO(op, err)
	}
	d.pending.done = false
	return pos, nil
}

// Release releases the backing store. Calling Release more than once, or
// on a nil handle, is a no-op.
func (d *Data) Release() {
	if !d.valid() {
		return
	}
	d.released = true
	if d.caps.releaser != nil {
		d.caps.releaser.Release()
	}
	d.caps = capabilities{}
	d.backend = nil
	d.pending.Reset()
}

// Encoding returns the encoding tag. A nil handle reports EncodingNone.
func (d *Data) Encoding() Encoding {
	if d == nil {
		return EncodingNone
	}
	return d.encoding
}

// SetEncoding sets the encoding tag.
func (d *Data) SetEncoding(enc Encoding) error {
	const op = "data set encoding"
	if !d.valid() {
		return gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	if !enc.Valid() {
		return gpgerr.Invalid(op, "encoding %d out of range", int(enc))
	}
	d.encoding = enc
	return nil
}

// Pending returns the outbound queue, or nil for a nil or released handle.
func (d *Data) Pending() *Pending {
	if !d.valid() {
		return nil
	}
	return &d.pending
}

// ReleaseAndGetMem releases a memory-backed data object and returns its
// contents. Other backends report Unsupported and are left untouched.
func (d *Data) ReleaseAndGetMem() ([]byte, error) {
	const op = "data release and get mem"
	if !d.valid() {
		return nil, gpgerr.New(gpgerr.KindInvalidHandle, op)
	}
	mem, ok := d.backend.(*Mem)
	if !ok {
		return nil, gpgerr.New(gpgerr.KindUnsupported, op)
	}

	out := mem.take()
	d.Release()
	return out, nil
}
