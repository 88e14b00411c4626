package nitrorom

import "log/slog"

// ROMCTRL and secure-delay constants for each storage type.
const (
	romctrlDecMROM = 0x00586000
	romctrlEncMROM = 0x001808F8
	secureDelayMROM = 0x051E

	romctrlDecPROM = 0x00416657
	romctrlEncPROM = 0x081808F8
	secureDelayPROM = 0x0D7E
)

// handleRom dispatches [rom] key/value events.
func (p *Packer) handleRom(key, value string, line int) error {
	switch key {
	case "storage-type":
		t, err := parseRomType(key, value)
		if err != nil {
			return err
		}
		p.prom = t == romTypePROM
		if p.prom {
			p.header.SetRomctrlDec(romctrlDecPROM)
			p.header.SetRomctrlEnc(romctrlEncPROM)
			p.header.SetSecureDelay(secureDelayPROM)
		} else {
			p.header.SetRomctrlDec(romctrlDecMROM)
			p.header.SetRomctrlEnc(romctrlEncMROM)
			p.header.SetSecureDelay(secureDelayMROM)
		}
		p.debug("rom:storage-type", slog.Bool("prom", p.prom))

	case "fill-tail":
		v, err := parseBool(key, value)
		if err != nil {
			return err
		}
		p.filltail = v

	case "fill-with":
		v, err := parseHex(key, value, 0xFF)
		if err != nil {
			return err
		}
		p.fillwith = byte(v)

	default:
		return &ConfigError{Kind: ConfigUser, Line: line, Text: "unknown rom key: " + key}
	}
	return nil
}
