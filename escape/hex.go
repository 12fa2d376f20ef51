// Package escape converts arbitrary bytes to and from the textual forms used
// on the backend's channels.
//
// Two encodings are handled:
//
//   - C-style escaped strings, as found in status line arguments and key
//     listings: backslash escapes such as \n, \\ and \xHH.
//   - XML-ish text, used when operation results are rendered as XML: the
//     characters <, > and & and the NUL byte are replaced by entities.
//
// # C Strings
//
//	s := escape.DecodeCString(`Joe \x3cjoe@example.org\x3e`)
//	// s == "Joe <joe@example.org>"
//
// Decoding is lenient. An escape that cannot be decoded (for example \x
// followed by non-hex characters) is copied through unchanged rather than
// rejected. A decoded NUL byte cannot be carried in the result text and is
// re-emitted as the two characters \0.
//
// # XML
//
// The XML helpers stream into a data object:
//
//	err := escape.AppendStringForXML(d, "a<b>c&d") // writes a&lt;b&gt;c&amp;d
//
// Only <, >, & and NUL are escaped. Callers embedding text in attribute
// values must escape quotes themselves.
package escape

const hexDigits = "0123456789ABCDEF"

// HexToByte converts the first two characters of s, which must be
// hexadecimal digits in either case, to the byte they represent. ok is
// false if s is shorter than two characters or either character is not a
// hex digit.
func HexToByte(s string) (b byte, ok bool) {
	if len(s) < 2 {
		return 0, false
	}
	hi, ok1 := hexValue(s[0])
	lo, ok2 := hexValue(s[1])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

// hexValue returns the value of a single hex digit.
func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
