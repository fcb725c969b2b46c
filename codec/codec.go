// Package codec implements the delimited-text encoding used by the
// flat-file ledger store: one record per line with RFC 4180 style quoting,
// plus the nested sub-format that packs a bill's line items into a single
// record field.
package codec

import (
	"fmt"
	"strings"
)

// EncodeRecord joins fields into one line. A field containing a comma, a
// double quote, or a line break is wrapped in double quotes with internal
// quotes doubled, so the line always splits back into the original fields.
func EncodeRecord(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		writeField(&b, f)
	}
	return b.String()
}

func writeField(b *strings.Builder, f string) {
	if !strings.ContainsAny(f, ",\"\n\r") {
		b.WriteString(f)
		return
	}
	b.WriteByte('"')
	for _, r := range f {
		if r == '"' {
			b.WriteString(`""`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// DecodeRecord splits one line into its fields. It walks the line rune by
// rune tracking whether the cursor is inside a quoted region: a doubled
// quote inside quotes emits one literal quote without toggling, a lone
// quote toggles the region, and a comma separates fields only outside
// quotes. Quoting is self-limiting, so decoding cannot fail; schema checks
// are the caller's concern.
func DecodeRecord(line string) []string {
	var (
		fields  []string
		field   strings.Builder
		inQuote bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == '"':
			if inQuote && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuote = !inQuote
			}
		case c == ',' && !inQuote:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// ParseError describes a persisted record that could not be decoded. Rows
// carrying a ParseError are skipped during load rather than failing the
// whole file.
type ParseError struct {
	Line   int // 1-based line number, 0 when unknown
	Reason string
	Err    error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("codec: line %d: %s", e.Line, msg)
	}
	return "codec: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }
