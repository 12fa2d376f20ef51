// Package gpgcore is the conversation core for driving a gpg backend over
// pipes.
//
// The library moves bytes and decodes the status side-channel; it does not
// spawn processes or implement any cryptography. Consumers start gpg
// themselves, hand the descriptors to this package and run their own
// readiness loop.
//
// # Architecture
//
// The library is organized into layers:
//
//   - Session: one conversation with the backend, bundling the pieces below
//   - data: data objects over pluggable backing stores
//   - iobridge: non-blocking relay between descriptors and data objects
//   - status: status line decoding and dispatch
//   - passphrase: passphrase negotiation on behalf of the application
//   - escape: C-string decoding and XML escaping of status arguments
//   - gpgerr: the error kinds shared by all packages
//
// # Basic Usage
//
//	s := gpgcore.NewSession(cmdPipe,
//	    gpgcore.WithPassphraseCallback(passphrase.Static("abc")))
//	defer s.Close()
//
//	plain, _ := data.NewFromBytes([]byte("Hallo Leute\n"), true)
//	cipher := data.NewMem()
//	s.Track(plain, cipher)
//
//	// In the readiness loop:
//	iobridge.Outbound(stdin, plain)
//	iobridge.Inbound(stdout, cipher)
//	s.PumpStatus(statusFD)
//
// # Errors
//
// Every error carries a gpgerr kind. A negotiation that never produced an
// accepted passphrase ends with gpgerr.ErrNoPassphrase when the status
// channel closes.
package gpgcore

// Version is the library version.
const Version = "0.1.0-dev"
