package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Encoding selects how rendered text is coerced before it is written out.
type Encoding string

const (
	// EncodingHTMLEntities escapes non-ASCII characters as numeric
	// character references. This is the default.
	EncodingHTMLEntities Encoding = "html_entities"
	// EncodingUTF8 passes rendered text through unchanged.
	EncodingUTF8 Encoding = "utf8"
	// EncodingStrictASCII drops non-ASCII characters entirely.
	EncodingStrictASCII Encoding = "strict_ascii"
)

// ParseEncoding maps a configuration value to an Encoding. The empty string
// selects the default; "utf-8" is accepted as a spelling of utf8.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EncodingHTMLEntities):
		return EncodingHTMLEntities, nil
	case string(EncodingUTF8), "utf-8":
		return EncodingUTF8, nil
	case string(EncodingStrictASCII):
		return EncodingStrictASCII, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

var asciiOnly = runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
}))

// Apply coerces rendered text to the encoding mode.
func (e Encoding) Apply(s string) string {
	switch e {
	case EncodingStrictASCII:
		out, _, err := transform.String(asciiOnly, s)
		if err != nil {
			return s
		}
		return out
	case EncodingHTMLEntities:
		var b strings.Builder
		for _, r := range s {
			if r > unicode.MaxASCII {
				fmt.Fprintf(&b, "&#%d;", r)
			} else {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return s
}
