package gpgcore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/smnsjas/go-gpgcore/config"
	"github.com/smnsjas/go-gpgcore/data"
	"github.com/smnsjas/go-gpgcore/gpgerr"
	"github.com/smnsjas/go-gpgcore/passphrase"
	"github.com/smnsjas/go-gpgcore/status"
)

// transcriptFD serves a fixed status transcript in small reads.
type transcriptFD struct {
	r      *strings.Reader
	step   int
	closed bool
}

func newTranscriptFD(s string, step int) *transcriptFD {
	return &transcriptFD{r: strings.NewReader(s), step: step}
}

func (f *transcriptFD) Read(p []byte) (int, error) {
	if len(p) > f.step {
		p = p[:f.step]
	}
	return f.r.Read(p)
}

func (f *transcriptFD) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func (f *transcriptFD) Close() error {
	f.closed = true
	return nil
}

const goodTranscript = "[GNUPG:] USERID_HINT 0123ABCD Joe User\n" +
	"[GNUPG:] NEED_PASSPHRASE 0123ABCD 0123ABCD 1 0\n" +
	"[GNUPG:] GET_HIDDEN passphrase.enter\n" +
	"[GNUPG:] GOOD_PASSPHRASE\n" +
	"[GNUPG:] BEGIN_ENCRYPTION 2 9\n" +
	"[GNUPG:] END_ENCRYPTION\n"

func TestSessionRun(t *testing.T) {
	var cmd bytes.Buffer
	var prompts []string
	cb := func(desc string, _ *any) (string, error) {
		prompts = append(prompts, desc)
		return "abc", nil
	}

	s := NewSession(&cmd, WithPassphraseCallback(cb))
	fd := newTranscriptFD(goodTranscript, 5)

	if err := s.Run(context.Background(), fd); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !fd.closed {
		t.Error("status descriptor not closed at end of stream")
	}
	if cmd.String() != "abc\n" {
		t.Errorf("command output = %q", cmd.String())
	}
	want := "ENTER\n0123ABCD Joe User\n0123ABCD 0123ABCD 1 0"
	if len(prompts) != 2 || prompts[0] != want || prompts[1] != "" {
		t.Errorf("prompts = %q, want [%q, cleanup]", prompts, want)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if s.State() != SessionStateClosed {
		t.Errorf("state = %v", s.State())
	}
}

func TestSessionNoPassphrase(t *testing.T) {
	s := NewSession(io.Discard, WithPassphraseCallback(passphrase.Static("wrong")))
	transcript := "[GNUPG:] NEED_PASSPHRASE K K 1 0\n" +
		"[GNUPG:] GET_HIDDEN passphrase.enter\n" +
		"[GNUPG:] BAD_PASSPHRASE K\n"

	err := s.Run(context.Background(), newTranscriptFD(transcript, 64))
	if !errors.Is(err, gpgerr.ErrNoPassphrase) {
		t.Errorf("expected NoPassphrase, got %v", err)
	}
}

func TestSessionWithoutCallbackAnswersEmpty(t *testing.T) {
	var cmd bytes.Buffer
	s := NewSession(&cmd)

	err := s.Run(context.Background(), newTranscriptFD("[GNUPG:] GET_LINE keyedit.prompt\n", 64))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cmd.String() != "\n" {
		t.Errorf("command output = %q", cmd.String())
	}
}

func TestSessionCloseReleasesTracked(t *testing.T) {
	s := NewSession(io.Discard)
	a := data.NewMem()
	b, _ := data.NewFromBytes([]byte("x"), true)
	s.Track(a, nil, b)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	for i, d := range []*data.Data{a, b} {
		if _, err := d.Read(make([]byte, 1)); !errors.Is(err, gpgerr.ErrInvalidHandle) {
			t.Errorf("object %d not released: %v", i, err)
		}
	}
	if _, ok := s.Passphrase().State(); ok {
		t.Error("passphrase state survived Close")
	}

	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := s.PumpStatus(newTranscriptFD("", 1)); !errors.Is(err, gpgerr.ErrInvalidHandle) {
		t.Errorf("PumpStatus after Close: expected InvalidHandle, got %v", err)
	}
}

func TestSessionRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSession(io.Discard)
	if err := s.Run(ctx, newTranscriptFD(goodTranscript, 8)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSessionOptions(t *testing.T) {
	id := uuid.New()
	s := NewSession(io.Discard,
		WithID(id),
		WithStatusConfig(config.StatusConfig{Prefix: "", MaxLineLength: 8}))

	if s.ID() != id || s.Dispatcher().ID() != id {
		t.Errorf("IDs = %s / %s, want %s", s.ID(), s.Dispatcher().ID(), id)
	}

	var got []status.Code
	s.AddHandler(status.HandlerFunc(func(code status.Code, _ string) error {
		got = append(got, code)
		return nil
	}))

	if err := s.Dispatcher().Feed([]byte("GOT_IT\n")); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(got) != 1 || got[0] != status.CodeGotIt {
		t.Errorf("events = %v", got)
	}

	err := s.Dispatcher().Feed([]byte("PROGRESS a b c d\n"))
	if !errors.Is(err, gpgerr.ErrInvalidValue) {
		t.Errorf("expected the configured line limit to apply, got %v", err)
	}
}

func TestSessionSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := NewSession(io.Discard)
	s.SetSlogLogger(logger)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	first, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	var entry map[string]interface{}
	if err := json.Unmarshal(first, &entry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	if entry["session_id"] != s.ID().String() {
		t.Errorf("session_id = %v, want %s", entry["session_id"], s.ID())
	}
}

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected string
	}{
		{SessionStateActive, "Active"},
		{SessionStateClosed, "Closed"},
		{SessionState(7), "Unknown(7)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}
