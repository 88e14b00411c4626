// Package bannertitle transcodes UTF-8 banner title text into the UTF-16LE
// bytes written simultaneously into every language slot of an NDS banner.
//
// Walks the input rune by rune, classifying surrogate halves and
// out-of-range code points as distinct failure kinds, before handing each
// validated rune to golang.org/x/text/encoding/unicode's UTF-16LE transform
// engine for the final byte emission. x/text's own encoder would happily
// surrogate-pair-encode an astral code point; the banner format has no such
// representation, so every rune is validated before it ever reaches the
// encoder.
package bannertitle

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// MaxSlotBytes is the maximum byte length of a single language title slot.
const MaxSlotBytes = 0x100

// Newline is the UTF-16LE encoding of the line separator written between
// title, subtitle, and developer segments.
var Newline = [2]byte{0x0A, 0x00}

// ErrorKind classifies why a rune could not be written into a title slot.
type ErrorKind int

const (
	_ ErrorKind = iota
	OutOfRange
	SurrogateHalf
	InvalidPrefix
	SizeExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case OutOfRange:
		return "OutOfRange"
	case SurrogateHalf:
		return "SurrogateHalf"
	case InvalidPrefix:
		return "InvalidPrefix"
	case SizeExceeded:
		return "SizeExceeded"
	default:
		return "unknown"
	}
}

// Error reports a failed banner-title transcode, carrying the offending
// rune (or substring, for InvalidPrefix) so callers can build a diagnostic.
type Error struct {
	Kind    ErrorKind
	Rune    rune
	Snippet string
}

func (e *Error) Error() string {
	if e.Kind == InvalidPrefix {
		return fmt.Sprintf("bannertitle: %s: invalid UTF-8 prefix %q", e.Kind, e.Snippet)
	}
	return fmt.Sprintf("bannertitle: %s: code point U+%04X", e.Kind, e.Rune)
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeRune transcodes a single, already-validated BMP rune to its
// 2-byte little-endian UTF-16 form via the x/text encoder.
func encodeRune(r rune) ([2]byte, error) {
	out, err := utf16le.NewEncoder().Bytes([]byte(string(r)))
	if err != nil {
		return [2]byte{}, err
	}
	var b [2]byte
	copy(b[:], out)
	return b, nil
}

// Writer transcodes UTF-8 text into a set of language title slots
// simultaneously, tracking the shared write cursor (the original's
// endbannertitle) across successive title/subtitle/developer segments.
type Writer struct {
	slots  [][]byte
	cursor int
}

// NewWriter wraps one byte slice per language slot; each must be exactly
// MaxSlotBytes long. Every WriteText/WriteSeparator call writes the same
// bytes, at the same cursor, into every slot.
func NewWriter(slots [][]byte) *Writer {
	return &Writer{slots: slots}
}

// Cursor returns the current write position, shared across every slot.
func (w *Writer) Cursor() int { return w.cursor }

// WriteSeparator writes the UTF-16LE line separator (0x000A) into every
// slot, used before a subtitle or developer segment.
func (w *Writer) WriteSeparator() error {
	return w.writeUnit(Newline)
}

// WriteText decodes s as UTF-8 and writes each code point's UTF-16LE bytes
// into every slot. Non-BMP code points fail with OutOfRange; surrogate
// halves fail with SurrogateHalf; malformed UTF-8 prefixes fail with
// InvalidPrefix. Exceeding MaxSlotBytes in any slot fails with
// SizeExceeded.
func (w *Writer) WriteText(s string) error {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			// utf8 rejects an encoded surrogate (ED A0..BF 80..BF) as a
			// single invalid byte; classify it before reporting a bad prefix.
			if len(s) >= 3 && s[0] == 0xED && s[1] >= 0xA0 && s[1] <= 0xBF && s[2] >= 0x80 && s[2] <= 0xBF {
				return &Error{Kind: SurrogateHalf, Rune: 0xD000 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F)}
			}
			return &Error{Kind: InvalidPrefix, Snippet: s[:min(len(s), 4)]}
		}
		if r >= 0xD800 && r <= 0xDFFF {
			return &Error{Kind: SurrogateHalf, Rune: r}
		}
		if r > 0xFFFF {
			return &Error{Kind: OutOfRange, Rune: r}
		}

		unit, err := encodeRune(r)
		if err != nil {
			return &Error{Kind: InvalidPrefix, Snippet: string(r)}
		}
		if err := w.writeUnit(unit); err != nil {
			return err
		}
		s = s[size:]
	}
	return nil
}

func (w *Writer) writeUnit(unit [2]byte) error {
	if w.cursor+2 > MaxSlotBytes {
		return &Error{Kind: SizeExceeded}
	}
	for _, slot := range w.slots {
		slot[w.cursor] = unit[0]
		slot[w.cursor+1] = unit[1]
	}
	w.cursor += 2
	return nil
}
