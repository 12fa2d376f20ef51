// gpg-status-replay feeds a recorded gpg status transcript through a
// gpgcore session.
//
// Every interactive query in the transcript is answered as a live session
// would answer it, and the answers are written to stdout, one per line.
// Passphrases come from the terminal, a file or an environment variable.
// The exit status is 2 when the transcript ends without an accepted
// passphrase.
//
// Usage:
//
//	gpg --status-fd 3 --command-fd 0 ... 3>status.log
//	gpg-status-replay --transcript status.log --passphrase-file pw.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	gpgcore "github.com/smnsjas/go-gpgcore"
	"github.com/smnsjas/go-gpgcore/config"
	"github.com/smnsjas/go-gpgcore/gpgerr"
	"github.com/smnsjas/go-gpgcore/iobridge"
	"github.com/smnsjas/go-gpgcore/passphrase"
	"github.com/smnsjas/go-gpgcore/status"
)

// exitError carries a process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath     string
		transcriptPath string
		passphraseFile string
		source         string
		logJSON        bool
		logLevel       string
	)

	flagSet := pflag.NewFlagSet("gpg-status-replay", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringVarP(&transcriptPath, "transcript", "t", "-", "status transcript to replay, - for stdin")
	flagSet.StringVar(&passphraseFile, "passphrase-file", "", "read the passphrase from this file")
	flagSet.StringVar(&source, "passphrase-source", "", "terminal, file, env or none (overrides the config)")
	flagSet.BoolVar(&logJSON, "log-json", false, "write JSON log records to stderr")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides the config)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if passphraseFile != "" {
		cfg.Passphrase.Source = config.SourceFile
		cfg.Passphrase.File = passphraseFile
	}
	if source != "" {
		cfg.Passphrase.Source = config.Source(source)
	}
	if logJSON {
		cfg.Log.Format = "json"
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	cb, err := passphraseCallback(cfg.Passphrase)
	if err != nil {
		return err
	}

	fd, err := openTranscript(transcriptPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := gpgcore.NewSession(os.Stdout,
		gpgcore.WithPassphraseCallback(cb),
		gpgcore.WithStatusConfig(cfg.Status))
	session.SetSlogLogger(logger)
	session.AddHandler(status.HandlerFunc(func(code status.Code, args string) error {
		logger.Info("status", "code", code.String(), "args", args)
		return nil
	}))

	runErr := session.Run(ctx, fd)
	closeErr := session.Close()
	_ = fd.Close()

	if err := errors.Join(runErr, closeErr); err != nil {
		if errors.Is(err, gpgerr.ErrNoPassphrase) {
			return &exitError{code: 2, err: err}
		}
		return err
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openTranscript returns a descriptor for path. Standard input is
// duplicated so that closing the relay's descriptor leaves fd 0 alone.
func openTranscript(path string) (*iobridge.FD, error) {
	if path == "-" || path == "" {
		fd, err := unix.Dup(int(os.Stdin.Fd()))
		if err != nil {
			return nil, fmt.Errorf("dup stdin: %w", err)
		}
		return iobridge.NewFD(fd), nil
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return iobridge.NewFD(fd), nil
}

func passphraseCallback(cfg config.PassphraseConfig) (passphrase.Callback, error) {
	switch cfg.Source {
	case config.SourceNone:
		return nil, nil
	case config.SourceEnv:
		value, ok := os.LookupEnv(cfg.Env)
		if !ok {
			return nil, fmt.Errorf("passphrase variable %s is not set", cfg.Env)
		}
		return passphrase.Static(value), nil
	case config.SourceFile:
		value, err := readFirstLine(cfg.File)
		if err != nil {
			return nil, err
		}
		return passphrase.Static(value), nil
	case config.SourceTerminal:
		return terminalCallback, nil
	default:
		return nil, fmt.Errorf("invalid passphrase source: %q", cfg.Source)
	}
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open passphrase file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read passphrase file %s: %w", path, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalCallback prompts on the controlling terminal. The transcript may
// occupy standard input, so the prompt goes through /dev/tty.
func terminalCallback(desc string, _ *any) (string, error) {
	if desc == "" {
		return "", nil
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("no terminal available for the passphrase prompt (use --passphrase-file): %w", err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("/dev/tty is not a terminal")
	}

	fmt.Fprint(tty, promptText(desc))
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(tty)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	defer clear(pw)
	return string(pw), nil
}

func promptText(desc string) string {
	p, ok := passphrase.ParsePrompt(desc)
	if !ok {
		return "Passphrase: "
	}

	var b strings.Builder
	if p.Retry() {
		b.WriteString("Bad passphrase, try again. ")
	}
	if uid := p.UserID(); uid != "" {
		fmt.Fprintf(&b, "Passphrase for %s (%s): ", uid, p.KeyID())
	} else {
		b.WriteString("Passphrase: ")
	}
	return b.String()
}
