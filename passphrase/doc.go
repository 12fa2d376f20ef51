// Package passphrase negotiates passphrases with the backend on behalf of
// the application.
//
// A Coordinator watches the status events of a session (USERID_HINT,
// NEED_PASSPHRASE, BAD_PASSPHRASE, ...) and answers the backend's
// "GET_HIDDEN passphrase.enter" query by asking the application's Callback.
// The callback receives a three-line prompt:
//
//	ENTER
//	0123456789ABCDEF Joe User <joe@example.org>
//	0123456789ABCDEF 0123456789ABCDEF 1 0
//
// The first line is TRY_AGAIN instead of ENTER when the previous answer was
// rejected. ParsePrompt splits it back into its parts.
//
// At end of stream the coordinator reports gpgerr.ErrNoPassphrase if the
// backend never accepted a passphrase it asked for.
package passphrase
