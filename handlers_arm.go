package nitrorom

import "log/slog"

// handleArm9 dispatches [arm9] key/value events.
func (p *Packer) handleArm9(key, value string, line int) error {
	return p.handleArm(true, key, value, line)
}

// handleArm7 dispatches [arm7] key/value events.
func (p *Packer) handleArm7(key, value string, line int) error {
	return p.handleArm(false, key, value, line)
}

// handleArm implements the shared arm9/arm7 key set. Static binary and
// overlay-table sources attach to arm9/ovt9 or arm7/ovt7 by which section
// dispatched the event, matching each ARM core to its own overlay table:
// arm9 always feeds ovt9, arm7 always feeds ovt7.
func (p *Packer) handleArm(arm9 bool, key, value string, line int) error {
	section := "arm7"
	if arm9 {
		section = "arm9"
	}

	switch key {
	case "static-binary":
		src, err := OpenFileSource(value)
		if err != nil {
			return err
		}
		p.opened = append(p.opened, src)
		m := newMember(src)
		if arm9 {
			p.arm9 = &m
		} else {
			p.arm7 = &m
		}
		p.debug(section+":static-binary", slog.String("path", value))

	case "overlay-table":
		src, err := OpenFileSource(value)
		if err != nil {
			return err
		}
		p.opened = append(p.opened, src)
		m := newMember(src)
		if arm9 {
			p.ovt9 = &m
		} else {
			p.ovt7 = &m
		}
		p.debug(section+":overlay-table", slog.String("path", value))

	case "definitions":
		defs, err := p.loadOverlays(value, arm9)
		if err != nil {
			return err
		}
		if arm9 {
			p.header.SetARM9RamAddress(defs.RamLoadAddress)
			p.header.SetARM9EntryPoint(defs.EntryPoint)
			p.header.SetARM9Size(defs.LoadSize)
			p.header.SetARM9AutoloadCallback(defs.AutoloadCallback)
		} else {
			p.header.SetARM7RamAddress(defs.RamLoadAddress)
			p.header.SetARM7EntryPoint(defs.EntryPoint)
			p.header.SetARM7Size(defs.LoadSize)
			p.header.SetARM7AutoloadCallback(defs.AutoloadCallback)
		}

	default:
		return &ConfigError{Kind: ConfigUser, Line: line, Text: "unknown " + section + " key: " + key}
	}
	return nil
}
