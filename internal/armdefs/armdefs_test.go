package armdefs

import "testing"

func buf(names ...string) []byte {
	b := make([]byte, headerLen)
	// ram-load=0x02004000, entry=0x02004000, load-size=0x1000, autoload=0
	b[0], b[1], b[2], b[3] = 0x00, 0x40, 0x00, 0x02
	b[4], b[5], b[6], b[7] = 0x00, 0x40, 0x00, 0x02
	b[8], b[9], b[10], b[11] = 0x00, 0x10, 0x00, 0x00
	for _, n := range names {
		b = append(b, []byte(n)...)
		b = append(b, 0x00)
	}
	return b
}

func TestParseHeaderFields(t *testing.T) {
	d, err := Parse(buf("ovy_0000.bin", "ovy_0001.bin"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.RamLoadAddress != 0x02004000 {
		t.Fatalf("RamLoadAddress = %#08x, want 0x02004000", d.RamLoadAddress)
	}
	if d.EntryPoint != 0x02004000 {
		t.Fatalf("EntryPoint = %#08x, want 0x02004000", d.EntryPoint)
	}
	if d.LoadSize != 0x1000 {
		t.Fatalf("LoadSize = %#08x, want 0x1000", d.LoadSize)
	}
	if len(d.OverlayNames) != 2 || d.OverlayNames[0] != "ovy_0000.bin" || d.OverlayNames[1] != "ovy_0001.bin" {
		t.Fatalf("OverlayNames = %v", d.OverlayNames)
	}
}

func TestParseNoOverlays(t *testing.T) {
	d, err := Parse(buf())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.OverlayNames) != 0 {
		t.Fatalf("OverlayNames = %v, want empty", d.OverlayNames)
	}
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, 4))
	if err != ErrTooShort {
		t.Fatalf("Parse error = %v, want ErrTooShort", err)
	}
}

func TestParseTrailingNameWithoutTerminator(t *testing.T) {
	b := buf("a.bin")
	b = b[:len(b)-1] // drop the final NUL
	d, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.OverlayNames) != 1 || d.OverlayNames[0] != "a.bin" {
		t.Fatalf("OverlayNames = %v, want [a.bin]", d.OverlayNames)
	}
}
