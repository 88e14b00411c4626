// Package armdefs parses an ARM definitions file: a fixed 0x10-byte header
// of load addresses followed by zero or more null-terminated overlay
// filenames.
//
// Uses a typed struct wrapping a byte window, with named Get methods at
// constant offsets, for the fixed-offset header fields.
package armdefs

import (
	"encoding/binary"
	"errors"
)

const headerLen = 0x10

// ErrTooShort is returned by Parse when the input is shorter than the fixed
// 0x10-byte header.
var ErrTooShort = errors.New("armdefs: definitions file shorter than 0x10 bytes")

// Header is the fixed leading portion of a definitions file.
type Header struct {
	data []byte
}

// ToHeader wraps the first 0x10 bytes of start as a Header. start must be at
// least 0x10 bytes long.
func ToHeader(start []byte) (Header, error) {
	if len(start) < headerLen {
		return Header{}, ErrTooShort
	}
	return Header{data: start[:headerLen:headerLen]}, nil
}

// RamLoadAddress is the address the static binary is loaded to at boot.
func (h Header) RamLoadAddress() uint32 { return binary.LittleEndian.Uint32(h.data[0x00:0x04]) }

// EntryPoint is the address execution begins at after load.
func (h Header) EntryPoint() uint32 { return binary.LittleEndian.Uint32(h.data[0x04:0x08]) }

// LoadSize is the byte size of the static binary as loaded into RAM.
func (h Header) LoadSize() uint32 { return binary.LittleEndian.Uint32(h.data[0x08:0x0C]) }

// AutoloadCallback is the address of the autoload list start/end callback.
func (h Header) AutoloadCallback() uint32 { return binary.LittleEndian.Uint32(h.data[0x0C:0x10]) }

// Definitions is a fully parsed ARM definitions file: the fixed header plus
// the overlay filenames that follow it, in file order.
type Definitions struct {
	RamLoadAddress   uint32
	EntryPoint       uint32
	LoadSize         uint32
	AutoloadCallback uint32
	OverlayNames     []string
}

// Parse reads the fixed header and then splits the remainder of buf on NUL
// bytes to recover the overlay filename list. A trailing NUL-free remainder
// (no terminator on the final name) is treated as an implicit terminator,
// matching a definitions file with no trailing padding.
func Parse(buf []byte) (*Definitions, error) {
	hdr, err := ToHeader(buf)
	if err != nil {
		return nil, err
	}

	d := &Definitions{
		RamLoadAddress:   hdr.RamLoadAddress(),
		EntryPoint:       hdr.EntryPoint(),
		LoadSize:         hdr.LoadSize(),
		AutoloadCallback: hdr.AutoloadCallback(),
	}

	rest := buf[headerLen:]
	start := 0
	for i, b := range rest {
		if b == 0x00 {
			if i > start {
				d.OverlayNames = append(d.OverlayNames, string(rest[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(rest) {
		d.OverlayNames = append(d.OverlayNames, string(rest[start:]))
	}
	return d, nil
}
