package data

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// countingStore is a read-only backend that counts Release calls.
type countingStore struct {
	r        io.Reader
	released int
}

func (s *countingStore) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *countingStore) Release()                   { s.released++ }

// failingStore fails every operation it implements.
type failingStore struct{}

func (failingStore) Read([]byte) (int, error)  { return 0, io.ErrUnexpectedEOF }
func (failingStore) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestNewNilBackend(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, gpgerr.ErrInvalidValue) {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
}

func TestNilHandle(t *testing.T) {
	var d *Data

	if _, err := d.Read(make([]byte, 4)); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Read: expected InvalidHandle, got %v", err)
	}
	if _, err := d.Write([]byte("x")); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Write: expected InvalidHandle, got %v", err)
	}
	if _, err := d.Seek(0, io.SeekStart); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Seek: expected InvalidHandle, got %v", err)
	}
	if err := d.SetEncoding(EncodingArmor); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("SetEncoding: expected InvalidHandle, got %v", err)
	}
	if got := d.Encoding(); got != EncodingNone {
		t.Errorf("Encoding() = %v, want None", got)
	}
	if err := Append(d, []byte("x")); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Append: expected InvalidHandle, got %v", err)
	}
	d.Release() // must not panic
}

func TestCapabilityErrorsAreDistinct(t *testing.T) {
	store := &countingStore{r: strings.NewReader("abc")}
	d, err := New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = d.Write([]byte("x"))
	if !errors.Is(err, gpgerr.ErrUnsupported) {
		t.Errorf("Write: expected Unsupported, got %v", err)
	}
	if errors.Is(err, gpgerr.ErrIO) || errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Write: Unsupported must not match other kinds: %v", err)
	}
	if _, err := d.Seek(0, io.SeekStart); !errors.Is(err, gpgerr.ErrUnsupported) {
		t.Errorf("Seek: expected Unsupported, got %v", err)
	}

	failing, _ := New(failingStore{})
	_, err = failing.Read(make([]byte, 1))
	if !errors.Is(err, gpgerr.ErrIO) {
		t.Errorf("Read: expected IOError, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Read: expected cause to be preserved, got %v", err)
	}
}

func TestReadEOFPassesThrough(t *testing.T) {
	d, _ := NewFromBytes([]byte("hi"), true)
	buf := make([]byte, 8)

	n, err := d.Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("Read = %d, %v; want 2, nil", n, err)
	}
	n, err = d.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("Read at end = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	store := &countingStore{r: strings.NewReader("abc")}
	d, _ := New(store)

	d.Release()
	d.Release()

	if store.released != 1 {
		t.Errorf("backend released %d times, want 1", store.released)
	}
	if _, err := d.Read(make([]byte, 1)); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("Read after release: expected InvalidHandle, got %v", err)
	}
	if d.Pending() != nil {
		t.Error("Pending() after release should be nil")
	}
	if d.Backend() != nil {
		t.Error("Backend() after release should be nil")
	}
}

func TestSetEncoding(t *testing.T) {
	d := NewMem()

	for _, enc := range []Encoding{EncodingNone, EncodingBinary, EncodingBase64, EncodingArmor} {
		if err := d.SetEncoding(enc); err != nil {
			t.Fatalf("SetEncoding(%v) failed: %v", enc, err)
		}
		if got := d.Encoding(); got != enc {
			t.Errorf("Encoding() = %v, want %v", got, enc)
		}
	}

	for _, enc := range []Encoding{-1, EncodingArmor + 1} {
		err := d.SetEncoding(enc)
		if !errors.Is(err, gpgerr.ErrInvalidValue) {
			t.Errorf("SetEncoding(%d): expected InvalidValue, got %v", enc, err)
		}
	}
	if got := d.Encoding(); got != EncodingArmor {
		t.Errorf("rejected encoding changed the tag to %v", got)
	}
}

func TestEncodingString(t *testing.T) {
	tests := []struct {
		enc      Encoding
		expected string
	}{
		{EncodingNone, "None"},
		{EncodingBinary, "Binary"},
		{EncodingBase64, "Base64"},
		{EncodingArmor, "Armor"},
		{Encoding(42), "Unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.enc.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMemReadWriteSeek(t *testing.T) {
	d := NewMem()

	if err := AppendString(d, "hello world"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	if pos, err := d.Seek(6, io.SeekStart); err != nil || pos != 6 {
		t.Fatalf("Seek = %d, %v", pos, err)
	}
	if err := AppendString(d, "gophers"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	if _, err := d.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	got, err := io.ReadAll(d)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "hello gophers" {
		t.Errorf("contents = %q, want %q", got, "hello gophers")
	}

	if _, err := d.Seek(-1, io.SeekStart); !errors.Is(err, gpgerr.ErrIO) {
		t.Errorf("negative seek: expected IOError, got %v", err)
	}
	if pos, err := d.Seek(-3, io.SeekEnd); err != nil || pos != 10 {
		t.Errorf("Seek(-3, End) = %d, %v; want 10", pos, err)
	}
}

func TestMemLimit(t *testing.T) {
	d, err := NewMemLimit(4)
	if err != nil {
		t.Fatalf("NewMemLimit failed: %v", err)
	}

	if err := AppendString(d, "abcd"); err != nil {
		t.Fatalf("append within limit failed: %v", err)
	}
	err = AppendString(d, "e")
	if !errors.Is(err, gpgerr.ErrIO) || !errors.Is(err, gpgerr.ErrOutOfMemory) {
		t.Errorf("expected IOError caused by OutOfMemory, got %v", err)
	}

	if _, err := NewMemLimit(0); !errors.Is(err, gpgerr.ErrInvalidValue) {
		t.Errorf("NewMemLimit(0): expected InvalidValue, got %v", err)
	}
}

func TestReleaseAndGetMem(t *testing.T) {
	d := NewMem()
	_ = AppendString(d, "payload")

	got, err := d.ReleaseAndGetMem()
	if err != nil {
		t.Fatalf("ReleaseAndGetMem failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q, want %q", got, "payload")
	}
	if _, err := d.ReleaseAndGetMem(); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("second call: expected InvalidHandle, got %v", err)
	}

	other, _ := New(&countingStore{r: strings.NewReader("")})
	if _, err := other.ReleaseAndGetMem(); !errors.Is(err, gpgerr.ErrUnsupported) {
		t.Errorf("non-memory backend: expected Unsupported, got %v", err)
	}
}

func TestReleaseWipesOwnedBuffer(t *testing.T) {
	src := []byte("secret")

	aliased, _ := NewFromBytes(src, false)
	aliased.Release()
	if string(src) != "secret" {
		t.Errorf("aliased buffer was modified: %q", src)
	}

	owned := NewMem()
	_ = AppendString(owned, "secret")
	mem := owned.Backend().(*Mem)
	view := mem.Bytes()
	owned.Release()
	if !bytes.Equal(view, make([]byte, len("secret"))) {
		t.Errorf("owned buffer not wiped: %q", view)
	}
}

func TestAliasedBufferCopiedOnWrite(t *testing.T) {
	src := []byte("hello")
	d, _ := NewFromBytes(src, false)

	if err := AppendString(d, "XX"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	if string(src) != "hello" {
		t.Errorf("caller's buffer was written: %q", src)
	}
	_, _ = d.Seek(0, io.SeekStart)
	got, _ := io.ReadAll(d)
	if string(got) != "XXllo" {
		t.Errorf("contents = %q, want %q", got, "XXllo")
	}

	backing := make([]byte, 16)
	copy(backing, "abSECRETSECRET")
	short, _ := NewFromBytes(backing[:2], false)

	if _, err := short.Seek(8, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := AppendString(short, "Z"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	_, _ = short.Seek(0, io.SeekStart)
	got, _ = io.ReadAll(short)
	want := "ab\x00\x00\x00\x00\x00\x00Z"
	if string(got) != want {
		t.Errorf("contents = %q, want %q", got, want)
	}
	if string(backing[:14]) != "abSECRETSECRET" {
		t.Errorf("spare capacity was written: %q", backing)
	}
}

type closeTracker struct {
	bytes.Buffer
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func TestNewFromStream(t *testing.T) {
	tracker := &closeTracker{}
	d, err := NewFromStream(tracker, CloseOnRelease())
	if err != nil {
		t.Fatalf("NewFromStream failed: %v", err)
	}
	if err := AppendString(d, "abc"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	if _, err := d.Seek(0, io.SeekStart); !errors.Is(err, gpgerr.ErrUnsupported) {
		t.Errorf("bytes.Buffer cannot seek: expected Unsupported, got %v", err)
	}
	d.Release()
	d.Release()
	if tracker.closed != 1 {
		t.Errorf("closed %d times, want 1", tracker.closed)
	}
	if tracker.String() != "abc" {
		t.Errorf("buffer = %q", tracker.String())
	}

	plain := &closeTracker{}
	d, _ = NewFromStream(plain)
	d.Release()
	if plain.closed != 0 {
		t.Error("stream closed without CloseOnRelease")
	}

	if _, err := NewFromStream(42); !errors.Is(err, gpgerr.ErrInvalidValue) {
		t.Errorf("NewFromStream(int): expected InvalidValue, got %v", err)
	}
}

func TestFDStore(t *testing.T) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(fds[0])

	w, err := NewFromFD(fds[1])
	if err != nil {
		t.Fatalf("NewFromFD failed: %v", err)
	}
	if err := AppendString(w, "through the pipe"); err != nil {
		t.Fatalf("AppendString failed: %v", err)
	}
	w.Release()
	unix.Close(fds[1])

	r, _ := NewFromFD(fds[0])
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "through the pipe" {
		t.Errorf("got %q", got)
	}
	if _, err := r.Seek(0, io.SeekStart); !errors.Is(err, gpgerr.ErrIO) {
		t.Errorf("seek on pipe: expected IOError, got %v", err)
	}

	if _, err := NewFromFD(-1); !errors.Is(err, gpgerr.ErrInvalidValue) {
		t.Errorf("NewFromFD(-1): expected InvalidValue, got %v", err)
	}
}

// flakyWriter fails with EINTR every other call and accepts at most max
// bytes per successful call.
type flakyWriter struct {
	buf   bytes.Buffer
	max   int
	calls int
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls%2 == 1 {
		return 0, unix.EINTR
	}
	if len(p) > w.max {
		p = p[:w.max]
	}
	return w.buf.Write(p)
}

type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

func TestAppendRetriesInterrupted(t *testing.T) {
	w := &flakyWriter{max: 3}
	d, _ := New(w)

	if err := AppendString(d, "interrupted"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if w.buf.String() != "interrupted" {
		t.Errorf("got %q", w.buf.String())
	}
}

func TestAppendNoProgress(t *testing.T) {
	d, _ := New(stuckWriter{})
	err := Append(d, []byte("x"))
	if !errors.Is(err, gpgerr.ErrIO) {
		t.Errorf("expected IOError, got %v", err)
	}
}

func TestAppendHardFailure(t *testing.T) {
	d, _ := New(failingStore{})
	err := Append(d, []byte("x"))
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected cause io.ErrClosedPipe, got %v", err)
	}
}
