// Package dsv implements the DSV (delimiter-separated values) event stream:
// a CSV-like scanner with configurable record delimiter, field delimiter,
// and optional field encloser.
package dsv

import (
	"errors"
	"fmt"
)

// MaxFields is the maximum number of fields permitted in a single record.
const MaxFields = 64

// ErrorKind classifies a DSV parse failure.
type ErrorKind int

const (
	_ ErrorKind = iota
	NumFields
	Unenclosed
	Unterminated
)

func (k ErrorKind) String() string {
	switch k {
	case NumFields:
		return "NumFields"
	case Unenclosed:
		return "Unenclosed"
	case Unterminated:
		return "Unterminated"
	default:
		return "unknown"
	}
}

// Error reports a DSV parse failure at a specific line.
type Error struct {
	Kind ErrorKind
	Line int
	Text string
}

func (e *Error) Error() string {
	return fmt.Sprintf("dsv:%d: %s: %q", e.Line, e.Kind, e.Text)
}

// Options configures the scanner's delimiters.
type Options struct {
	RecordDelim byte
	FieldDelim  byte
	Encloser    byte
}

// DefaultOptions returns the format's documented defaults: "\n" records,
// "," fields, and the `"` encloser.
func DefaultOptions() Options {
	return Options{RecordDelim: '\n', FieldDelim: ',', Encloser: '"'}
}

// Record is one emitted row: its field values, and a bitmask of which
// fields were written with an explicit encloser.
type Record struct {
	Fields   []string
	Enclosed uint64
}

// Parser scans text into Records under a fixed set of Options.
type Parser struct {
	opts Options
}

// New constructs a Parser. A zero-value Options field falls back to
// DefaultOptions' value for that field.
func New(opts Options) *Parser {
	def := DefaultOptions()
	if opts.RecordDelim == 0 {
		opts.RecordDelim = def.RecordDelim
	}
	if opts.FieldDelim == 0 {
		opts.FieldDelim = def.FieldDelim
	}
	if opts.Encloser == 0 {
		opts.Encloser = def.Encloser
	}
	return &Parser{opts: opts}
}

var (
	errUnterminated = errors.New("unterminated enclosed field")
	errUnenclosed   = errors.New("encloser inside unenclosed field")
)

type stopReason int

const (
	stopField stopReason = iota
	stopRecord
	stopEOF
)

// Parse scans text into records. The first record fixes the expected field
// count; any later record with a different count fails with NumFields.
func (p *Parser) Parse(text string) ([]Record, error) {
	data := []byte(text)
	pos := 0
	lineNo := 1
	expected := -1
	var records []Record

	for pos < len(data) {
		startLine := lineNo
		var fields []string
		var mask uint64

		for {
			field, enclosed, next, reason, err := p.scanField(data, pos)
			if err != nil {
				kind := Unenclosed
				if errors.Is(err, errUnterminated) {
					kind = Unterminated
				}
				return records, &Error{Kind: kind, Line: lineNo, Text: snippet(data, pos)}
			}
			if len(fields) >= MaxFields {
				return records, &Error{Kind: NumFields, Line: startLine, Text: "too many fields"}
			}
			fields = append(fields, field)
			if enclosed {
				mask |= 1 << uint(len(fields)-1)
			}
			lineNo += countByte(data[pos:next], p.opts.RecordDelim)
			pos = next
			if reason == stopField {
				continue
			}
			break
		}

		if expected == -1 {
			expected = len(fields)
		} else if len(fields) != expected {
			return records, &Error{
				Kind: NumFields,
				Line: startLine,
				Text: fmt.Sprintf("got %d fields, want %d", len(fields), expected),
			}
		}
		records = append(records, Record{Fields: fields, Enclosed: mask})
	}
	return records, nil
}

// scanField consumes one field starting at pos, returning its decoded
// value, whether it was written enclosed, the position just past it
// (including any consumed delimiter), and why the scan stopped.
func (p *Parser) scanField(data []byte, pos int) (value string, enclosed bool, next int, reason stopReason, err error) {
	n := len(data)
	if pos < n && data[pos] == p.opts.Encloser {
		return p.scanEnclosed(data, pos)
	}

	i := pos
	for i < n {
		c := data[i]
		switch c {
		case p.opts.Encloser:
			return "", false, i, stopEOF, errUnenclosed
		case p.opts.FieldDelim:
			return string(data[pos:i]), false, i + 1, stopField, nil
		case p.opts.RecordDelim:
			return string(data[pos:i]), false, i + 1, stopRecord, nil
		}
		i++
	}
	return string(data[pos:i]), false, i, stopEOF, nil
}

func (p *Parser) scanEnclosed(data []byte, pos int) (value string, enclosed bool, next int, reason stopReason, err error) {
	n := len(data)
	buf := make([]byte, 0, 16)
	i := pos + 1
	for {
		if i >= n {
			return "", true, i, stopEOF, errUnterminated
		}
		c := data[i]
		if c == p.opts.Encloser {
			if i+1 < n && data[i+1] == p.opts.Encloser {
				buf = append(buf, p.opts.Encloser)
				i += 2
				continue
			}
			i++ // consume the closing encloser
			break
		}
		buf = append(buf, c)
		i++
	}

	if i >= n {
		return string(buf), true, i, stopEOF, nil
	}
	switch data[i] {
	case p.opts.FieldDelim:
		return string(buf), true, i + 1, stopField, nil
	case p.opts.RecordDelim:
		return string(buf), true, i + 1, stopRecord, nil
	default:
		return "", true, i, stopEOF, errUnenclosed
	}
}

func countByte(b []byte, target byte) int {
	n := 0
	for _, c := range b {
		if c == target {
			n++
		}
	}
	return n
}

func snippet(data []byte, pos int) string {
	end := pos + 20
	if end > len(data) {
		end = len(data)
	}
	return string(data[pos:end])
}
