package escape

import (
	"strings"

	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// simpleEscapes maps the character after a backslash to the byte it stands for.
var simpleEscapes = [256]byte{
	'\'': '\'',
	'"':  '"',
	'?':  '?',
	'\\': '\\',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// DecodeCString decodes the backslash escapes in src. The result is never
// longer than src.
func DecodeCString(src string) string {
	if strings.IndexByte(src, '\\') < 0 {
		return src
	}
	dst := make([]byte, len(src))
	n := decodeCString(dst, src)
	return string(dst[:n])
}

// DecodeCStringInto decodes src into dst and returns the number of bytes
// written. dst must be at least len(src) bytes long.
func DecodeCStringInto(dst []byte, src string) (int, error) {
	if len(dst) < len(src) {
		return 0, gpgerr.Invalid("decode c string", "destination holds %d bytes, need %d", len(dst), len(src))
	}
	return decodeCString(dst, src), nil
}

// decodeCString does the work for both entry points. Every escape consumes
// at least as many source bytes as it produces, so len(src) bytes of dst
// always suffice.
func decodeCString(dst []byte, src string) int {
	n := 0
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\\' {
			dst[n] = c
			n++
			i++
			continue
		}

		// Lone trailing backslash.
		if i+1 == len(src) {
			dst[n] = c
			n++
			i++
			continue
		}

		next := src[i+1]
		if r := simpleEscapes[next]; r != 0 {
			dst[n] = r
			n++
			i += 2
			continue
		}

		if next == 'x' {
			if val, ok := HexToByte(src[i+2:]); ok {
				if val == 0 {
					// A NUL cannot be carried in the text.
					dst[n] = '\\'
					dst[n+1] = '0'
					n += 2
				} else {
					dst[n] = val
					n++
				}
				i += 4
				continue
			}

			// Not a valid \xHH: copy the backslash, the x and up to two
			// following characters through unchanged.
			end := i + 4
			if end > len(src) {
				end = len(src)
			}
			n += copy(dst[n:], src[i:end])
			i = end
			continue
		}

		// Unknown escape: keep both characters.
		dst[n] = c
		dst[n+1] = next
		n += 2
		i += 2
	}
	return n
}

// EncodeCString escapes b so that DecodeCString restores it. Printable
// ASCII other than backslash and double quote is kept; the usual control
// characters get their named escapes; every other byte becomes \xHH.
func EncodeCString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + len(b)/4)

	for _, c := range b {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if c < 0x20 || c >= 0x7f {
				writeHexEscape(&sb, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	return sb.String()
}

// writeHexEscape writes a \xHH escape without going through fmt.
func writeHexEscape(sb *strings.Builder, c byte) {
	var buf [4]byte
	buf[0] = '\\'
	buf[1] = 'x'
	buf[2] = hexDigits[c>>4]
	buf[3] = hexDigits[c&0xF]
	sb.Write(buf[:])
}
