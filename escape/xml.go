package escape

import (
	"strings"

	"github.com/smnsjas/go-gpgcore/data"
	"github.com/smnsjas/go-gpgcore/gpgerr"
)

// xmlEntity returns the replacement for c, or "" if c is copied verbatim.
func xmlEntity(c byte) string {
	switch c {
	case '<':
		return "&lt;"
	case '>':
		return "&gt;"
	case '&':
		return "&amp;"
	case 0:
		return "&#00;"
	}
	return ""
}

// AppendForXML appends p to d with <, >, & and NUL replaced by entities.
// Runs of ordinary bytes are appended in one call; no zero-length append
// is ever issued.
func AppendForXML(d *data.Data, p []byte) error {
	if d.Pending() == nil {
		return gpgerr.New(gpgerr.KindInvalidHandle, "append for xml")
	}

	start := 0
	for i := 0; i < len(p); i++ {
		entity := xmlEntity(p[i])
		if entity == "" {
			continue
		}
		if i > start {
			if err := data.Append(d, p[start:i]); err != nil {
				return err
			}
		}
		if err := data.AppendString(d, entity); err != nil {
			return err
		}
		start = i + 1
	}
	if start < len(p) {
		return data.Append(d, p[start:])
	}
	return nil
}

// AppendStringForXML appends s to d, escaped as by AppendForXML.
func AppendStringForXML(d *data.Data, s string) error {
	return AppendForXML(d, []byte(s))
}

// AppendPercentStringForXML decodes the %XX escapes in s and appends the
// result to d, escaped as by AppendForXML. A % that is not followed by two
// hex digits is kept literally.
func AppendPercentStringForXML(d *data.Data, s string) error {
	return AppendForXML(d, DecodePercent(s))
}

// DecodePercent decodes %XX escapes in s. A % that is not followed by two
// hex digits is kept literally.
func DecodePercent(s string) []byte {
	out := make([]byte, 0, len(s))
	if strings.IndexByte(s, '%') < 0 {
		return append(out, s...)
	}

	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if val, ok := HexToByte(s[i+1:]); ok {
				out = append(out, val)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}
