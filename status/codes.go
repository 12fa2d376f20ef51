package status

import "fmt"

// Code identifies a status line emitted by the backend.
//
// The numbering is local to this package; on the wire codes are exchanged by
// name only.
type Code int

// CodeNone is the cleanup sentinel. It never appears on the wire; the
// dispatcher passes it to the command handler when a session ends.
const CodeNone Code = 0

// Status codes in the order gpg documents them.
const (
	CodeEnter Code = iota + 1
	CodeLeave
	CodeAbort
	CodeGoodSig
	CodeBadSig
	CodeErrSig
	CodeBadArmor
	CodeRSAOrIDEA
	CodeKeyExpired
	CodeKeyRevoked
	CodeTrustUndefined
	CodeTrustNever
	CodeTrustMarginal
	CodeTrustFully
	CodeTrustUltimate
	CodeShmInfo
	CodeShmGet
	CodeShmGetBool
	CodeShmGetHidden
	CodeNeedPassphrase
	CodeValidSig
	CodeSigID
	CodeEncTo
	CodeNoData
	CodeBadPassphrase
	CodeNoPubkey
	CodeNoSeckey
	CodeNeedPassphraseSym
	CodeDecryptionFailed
	CodeDecryptionOkay
	CodeMissingPassphrase
	CodeGoodPassphrase
	CodeGoodMDC
	CodeBadMDC
	CodeErrMDC
	CodeImported
	CodeImportOK
	CodeImportProblem
	CodeImportRes
	CodeFileStart
	CodeFileDone
	CodeFileError
	CodeBeginDecryption
	CodeEndDecryption
	CodeBeginEncryption
	CodeEndEncryption
	CodeDeleteProblem
	CodeGetBool
	CodeGetLine
	CodeGetHidden
	CodeGotIt
	CodeProgress
	CodeSigCreated
	CodeSessionKey
	CodeNotationName
	CodeNotationData
	CodePolicyURL
	CodeBeginStream
	CodeEndStream
	CodeKeyCreated
	CodeUserIDHint
	CodeUnexpected
	CodeInvRecp
	CodeNoRecp
	CodeAlreadySigned
	CodeSigExpired
	CodeExpSig
	CodeExpKeySig
	CodeTruncated
	CodeError
	CodeNewSig
	CodeRevKeySig
	CodeSigSubpacket
	CodeNeedPassphrasePin
	CodeSCOpFailure
	CodeSCOpSuccess
	CodeCardCtrl
	CodeBackupKeyCreated
	CodePKATrustBad
	CodePKATrustGood
	CodePlaintext

	// CodeEOF is synthesized by the dispatcher when the status channel
	// reaches end of stream. The backend never sends it.
	CodeEOF
)

var codeNames = map[Code]string{
	CodeEnter:             "ENTER",
	CodeLeave:             "LEAVE",
	CodeAbort:             "ABORT",
	CodeGoodSig:           "GOODSIG",
	CodeBadSig:            "BADSIG",
	CodeErrSig:            "ERRSIG",
	CodeBadArmor:          "BADARMOR",
	CodeRSAOrIDEA:         "RSA_OR_IDEA",
	CodeKeyExpired:        "KEYEXPIRED",
	CodeKeyRevoked:        "KEYREVOKED",
	CodeTrustUndefined:    "TRUST_UNDEFINED",
	CodeTrustNever:        "TRUST_NEVER",
	CodeTrustMarginal:     "TRUST_MARGINAL",
	CodeTrustFully:        "TRUST_FULLY",
	CodeTrustUltimate:     "TRUST_ULTIMATE",
	CodeShmInfo:           "SHM_INFO",
	CodeShmGet:            "SHM_GET",
	CodeShmGetBool:        "SHM_GET_BOOL",
	CodeShmGetHidden:      "SHM_GET_HIDDEN",
	CodeNeedPassphrase:    "NEED_PASSPHRASE",
	CodeValidSig:          "VALIDSIG",
	CodeSigID:             "SIG_ID",
	CodeEncTo:             "ENC_TO",
	CodeNoData:            "NODATA",
	CodeBadPassphrase:     "BAD_PASSPHRASE",
	CodeNoPubkey:          "NO_PUBKEY",
	CodeNoSeckey:          "NO_SECKEY",
	CodeNeedPassphraseSym: "NEED_PASSPHRASE_SYM",
	CodeDecryptionFailed:  "DECRYPTION_FAILED",
	CodeDecryptionOkay:    "DECRYPTION_OKAY",
	CodeMissingPassphrase: "MISSING_PASSPHRASE",
	CodeGoodPassphrase:    "GOOD_PASSPHRASE",
	CodeGoodMDC:           "GOODMDC",
	CodeBadMDC:            "BADMDC",
	CodeErrMDC:            "ERRMDC",
	CodeImported:          "IMPORTED",
	CodeImportOK:          "IMPORT_OK",
	CodeImportProblem:     "IMPORT_PROBLEM",
	CodeImportRes:         "IMPORT_RES",
	CodeFileStart:         "FILE_START",
	CodeFileDone:          "FILE_DONE",
	CodeFileError:         "FILE_ERROR",
	CodeBeginDecryption:   "BEGIN_DECRYPTION",
	CodeEndDecryption:     "END_DECRYPTION",
	CodeBeginEncryption:   "BEGIN_ENCRYPTION",
	CodeEndEncryption:     "END_ENCRYPTION",
	CodeDeleteProblem:     "DELETE_PROBLEM",
	CodeGetBool:           "GET_BOOL",
	CodeGetLine:           "GET_LINE",
	CodeGetHidden:         "GET_HIDDEN",
	CodeGotIt:             "GOT_IT",
	CodeProgress:          "PROGRESS",
	CodeSigCreated:        "SIG_CREATED",
	CodeSessionKey:        "SESSION_KEY",
	CodeNotationName:      "NOTATION_NAME",
	CodeNotationData:      "NOTATION_DATA",
	CodePolicyURL:         "POLICY_URL",
	CodeBeginStream:       "BEGIN_STREAM",
	CodeEndStream:         "END_STREAM",
	CodeKeyCreated:        "KEY_CREATED",
	CodeUserIDHint:        "USERID_HINT",
	CodeUnexpected:        "UNEXPECTED",
	CodeInvRecp:           "INV_RECP",
	CodeNoRecp:            "NO_RECP",
	CodeAlreadySigned:     "ALREADY_SIGNED",
	CodeSigExpired:        "SIGEXPIRED",
	CodeExpSig:            "EXPSIG",
	CodeExpKeySig:         "EXPKEYSIG",
	CodeTruncated:         "TRUNCATED",
	CodeError:             "ERROR",
	CodeNewSig:            "NEWSIG",
	CodeRevKeySig:         "REVKEYSIG",
	CodeSigSubpacket:      "SIG_SUBPACKET",
	CodeNeedPassphrasePin: "NEED_PASSPHRASE_PIN",
	CodeSCOpFailure:       "SC_OP_FAILURE",
	CodeSCOpSuccess:       "SC_OP_SUCCESS",
	CodeCardCtrl:          "CARDCTRL",
	CodeBackupKeyCreated:  "BACKUP_KEY_CREATED",
	CodePKATrustBad:       "PKA_TRUST_BAD",
	CodePKATrustGood:      "PKA_TRUST_GOOD",
	CodePlaintext:         "PLAINTEXT",
}

// codesByName is the wire lookup table. CodeNone and CodeEOF are absent.
var codesByName = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, name := range codeNames {
		m[name] = c
	}
	return m
}()

// String returns the wire name of the code.
func (c Code) String() string {
	switch c {
	case CodeNone:
		return "NONE"
	case CodeEOF:
		return "EOF"
	}
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(c))
}

// ParseCode looks up a wire name. Names are case sensitive.
func ParseCode(name string) (Code, bool) {
	c, ok := codesByName[name]
	return c, ok
}

// IsCommand reports whether the backend expects an answer on the command
// channel for this code.
func (c Code) IsCommand() bool {
	switch c {
	case CodeGetBool, CodeGetLine, CodeGetHidden:
		return true
	default:
		return false
	}
}
