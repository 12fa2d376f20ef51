// gpg-xml-escape escapes text for inclusion in XML the way gpgcore escapes
// status arguments.
//
// Standard input is read line by line. Each line is optionally decoded
// first (C-string escapes with --c-string, %XX sequences with --percent)
// and then written with <, >, & and NUL replaced by entities. With --encode
// the lines are instead encoded as C strings.
//
//	echo 'Joe %3Cjoe@example.org%3E' | gpg-xml-escape --percent
//	Joe &lt;joe@example.org&gt;
package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/smnsjas/go-gpgcore/data"
	"github.com/smnsjas/go-gpgcore/escape"
	"github.com/smnsjas/go-gpgcore/iobridge"
)

type mode struct {
	percent bool
	cString bool
	encode  bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var m mode
	var verbose bool

	flagSet := pflag.NewFlagSet("gpg-xml-escape", pflag.ContinueOnError)
	flagSet.BoolVar(&m.percent, "percent", false, "decode %XX sequences before escaping")
	flagSet.BoolVar(&m.cString, "c-string", false, "decode C-string escapes before escaping")
	flagSet.BoolVar(&m.encode, "encode", false, "encode lines as C strings instead of escaping for XML")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log relay progress to stderr")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if m.percent && m.cString {
		return fmt.Errorf("--percent and --c-string are mutually exclusive")
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inFD, err := unix.Dup(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("dup stdin: %w", err)
	}
	input, err := slurp(iobridge.NewFD(inFD))
	if err != nil {
		return err
	}
	logger.Debug("read input", "bytes", len(input))

	out, err := transform(input, m)
	if err != nil {
		return err
	}
	defer out.Release()

	outFD, err := unix.Dup(int(os.Stdout.Fd()))
	if err != nil {
		return fmt.Errorf("dup stdout: %w", err)
	}
	n, err := drain(iobridge.NewFD(outFD), out)
	if err != nil {
		return err
	}
	logger.Debug("wrote output", "calls", n)
	return nil
}

// slurp relays fd into a memory data object until end of stream.
func slurp(fd iobridge.Descriptor) ([]byte, error) {
	sink := data.NewMem()
	for {
		done, err := iobridge.Inbound(fd, sink)
		if err != nil {
			sink.Release()
			_ = fd.Close()
			return nil, fmt.Errorf("read input: %w", err)
		}
		if done {
			return sink.ReleaseAndGetMem()
		}
	}
}

// transform applies m to every line of input and collects the result in a
// fresh memory data object. Line terminators are kept as they are.
func transform(input []byte, m mode) (*data.Data, error) {
	out := data.NewMem()
	for len(input) > 0 {
		line, rest, found := bytes.Cut(input, []byte("\n"))
		input = rest

		if err := transformLine(out, string(line), m); err != nil {
			out.Release()
			return nil, err
		}
		if found {
			if err := data.AppendString(out, "\n"); err != nil {
				out.Release()
				return nil, err
			}
		}
	}

	if _, err := out.Seek(0, 0); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func transformLine(out *data.Data, line string, m mode) error {
	switch {
	case m.encode:
		return data.AppendString(out, escape.EncodeCString([]byte(line)))
	case m.percent:
		return escape.AppendPercentStringForXML(out, line)
	case m.cString:
		return escape.AppendStringForXML(out, escape.DecodeCString(line))
	default:
		return escape.AppendStringForXML(out, line)
	}
}

// drain relays d to fd until d is exhausted and returns the number of relay
// calls it took.
func drain(fd iobridge.Descriptor, d *data.Data) (int, error) {
	calls := 0
	for {
		calls++
		done, err := iobridge.Outbound(fd, d)
		if err != nil {
			_ = fd.Close()
			return calls, fmt.Errorf("write output: %w", err)
		}
		if done {
			return calls, nil
		}
	}
}
