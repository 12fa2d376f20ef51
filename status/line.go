package status

import "strings"

// DefaultPrefix is the marker gpg puts in front of every status line.
const DefaultPrefix = "[GNUPG:] "

// ParseLine splits a status line into its code and argument string.
//
// A leading prefix is stripped when present, as are a UTF-8 BOM and the
// trailing line terminator. The argument is everything after the first
// space and may be empty. ok is false for empty lines and unknown codes.
func ParseLine(line, prefix string) (code Code, args string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimPrefix(line, "\xEF\xBB\xBF")
	if prefix != "" {
		line = strings.TrimPrefix(line, prefix)
	}
	if line == "" {
		return CodeNone, "", false
	}

	name, args, _ := strings.Cut(line, " ")
	code, ok = ParseCode(name)
	if !ok {
		return CodeNone, "", false
	}
	return code, args, true
}
