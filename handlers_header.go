package nitrorom

import (
	"log/slog"

	"github.com/lhearachel/nitrorom/internal/header"
)

// handleHeader dispatches [header] key/value events.
func (p *Packer) handleHeader(key, value string, line int) error {
	switch key {
	case "template":
		src, err := OpenFileSource(value)
		if err != nil {
			return err
		}
		defer src.Close()
		buf, err := src.ReadAll()
		if err != nil {
			return &PackerError{Kind: FileOpen, Path: value, Cause: err}
		}
		if len(buf) > header.Size {
			return &PackerError{Kind: SizeExceeded, Path: value}
		}
		copy(p.header.Bytes(), buf)
		p.debug("header:template", slog.String("path", value))

	case "title":
		b, err := parseText(key, value, 12)
		if err != nil {
			return err
		}
		var arr [12]byte
		copy(arr[:], b)
		p.header.SetTitle(arr)

	case "serial":
		b, err := parseText(key, value, 4)
		if err != nil {
			return err
		}
		var arr [4]byte
		copy(arr[:], b)
		p.header.SetSerial(arr)

	case "maker":
		b, err := parseText(key, value, 2)
		if err != nil {
			return err
		}
		var arr [2]byte
		copy(arr[:], b)
		p.header.SetMaker(arr)

	case "revision":
		v, err := parseDecimal(key, value, 255)
		if err != nil {
			return err
		}
		p.header.SetRevision(byte(v))

	case "secure-crc":
		v, err := parseHex(key, value, 0xFFFF)
		if err != nil {
			return err
		}
		p.header.SetSecureCRC(uint16(v))

	default:
		return &ConfigError{Kind: ConfigUser, Line: line, Text: "unknown header key: " + key}
	}
	return nil
}
