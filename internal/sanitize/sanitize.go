// Package sanitize repairs agent output before JSON decoding. Agents running
// on foreign-locale hosts occasionally emit UTF-16 files or mojibake for
// punctuation; both break the result pipeline if left alone.
package sanitize

import (
	"bytes"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Mojibake sequences observed in agent output, longest first so partial
// prefixes do not shadow fuller matches.
var replacements = []struct {
	from string
	to   string
}{
	// En/em dashes and ellipses read back through the wrong code page.
	{"Ã¢â‚¬â€œ", "-"},
	{"Ã¢â‚¬â€", "-"},
	{"â€“", "-"},
	{"â€”", "-"},
	{"â€¦", "..."},
	{"â€™", "'"},
	{"â€œ", "\""},
	{"â€", "\""},
	{"ÔÇô", "-"},
	{"ÔÇö", "-"},
	{"ÔÇª", "..."},
	{"ÔÇÖ", "'"},
	{"ÔÇ£", "\""},
	{"ÔÇ¥", "\""},
}

// Decode converts raw file bytes to a UTF-8 string, honoring UTF-16 and
// UTF-8 byte order marks. Invalid sequences are replaced, not rejected.
func Decode(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeUTF16(raw[2:], false)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeUTF16(raw[2:], true)
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return toValidUTF8(raw[3:])
	default:
		return toValidUTF8(raw)
	}
}

// Repair replaces known mojibake sequences in the text.
func Repair(text string) string {
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	return text
}

// Clean decodes and repairs raw agent output in one step.
func Clean(raw []byte) []byte {
	return []byte(Repair(Decode(raw)))
}

func decodeUTF16(raw []byte, bigEndian bool) string {
	if len(raw)%2 == 1 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		if bigEndian {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		} else {
			units = append(units, uint16(raw[i+1])<<8|uint16(raw[i]))
		}
	}
	return string(utf16.Decode(units))
}

func toValidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
