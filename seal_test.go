package nitrorom

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lhearachel/nitrorom/internal/crc16"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
	return path
}

// writeSparseFile creates a file of exactly size bytes without allocating
// or writing its content, for tests that only care about the file's size.
func writeSparseFile(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Truncate(%s): %v", name, err)
	}
	return path
}

func minimalConfig(dir string) string {
	return "[header]\n" +
		"title=TEST\n" +
		"serial=ABCD\n" +
		"maker=01\n" +
		"revision=0\n" +
		"secure-crc=0xFFFF\n" +
		"[rom]\n" +
		"storage-type=MROM\n" +
		"fill-with=0xFF\n" +
		"[banner]\n" +
		"version=1\n" +
		"title=HELLO\n" +
		"[arm9]\n" +
		"static-binary=" + filepath.Join(dir, "arm9.bin") + "\n" +
		"definitions=" + filepath.Join(dir, "arm9.def") + "\n" +
		"[arm7]\n" +
		"static-binary=" + filepath.Join(dir, "arm7.bin") + "\n" +
		"definitions=" + filepath.Join(dir, "arm7.def") + "\n"
}

func newSealedMinimalPacker(t *testing.T) (*Packer, string) {
	t.Helper()
	dir := t.TempDir()
	writeTempFile(t, dir, "arm9.bin", bytes.Repeat([]byte{0x11}, 0x200))
	writeTempFile(t, dir, "arm7.bin", bytes.Repeat([]byte{0x22}, 0x200))
	writeTempFile(t, dir, "arm9.def", make([]byte, 0x10))
	writeTempFile(t, dir, "arm7.def", make([]byte, 0x10))

	p := New()
	if err := p.LoadConfig(minimalConfig(dir)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := p.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return p, dir
}

// TestSealMinimalRomLayout exercises a minimal build with no filesystem
// and no overlays: arm9 and arm7 land at 0x200-aligned offsets immediately
// after the header, in that order.
func TestSealMinimalRomLayout(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	if got := p.header.ARM9RomOffset(); got != 0x4000 {
		t.Errorf("ARM9RomOffset = %#x, want 0x4000", got)
	}
	if got := p.header.ARM7RomOffset(); got != 0x4200 {
		t.Errorf("ARM7RomOffset = %#x, want 0x4200", got)
	}
}

// TestSealMemberOffsetsAligned checks that every member lands on a
// 0x200-aligned offset.
func TestSealMemberOffsetsAligned(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	if p.arm9.Offset%0x200 != 0 {
		t.Errorf("arm9 offset %#x not 0x200-aligned", p.arm9.Offset)
	}
	if p.arm7.Offset%0x200 != 0 {
		t.Errorf("arm7 offset %#x not 0x200-aligned", p.arm7.Offset)
	}
}

// TestSealHeaderCRCRoundTrips checks that the CRC-16 over header[0x00..0x15E]
// equals the value stored at header[0x15E].
func TestSealHeaderCRCRoundTrips(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	want := crc16.Sum(p.header.CRCRegion())
	if got := p.header.HeaderCRC(); got != want {
		t.Errorf("HeaderCRC = %#x, want %#x", got, want)
	}
}

// TestSealRomSizeRoundTrips checks that the romsize read back from
// header[0x080..0x084] is nonzero and strictly under the chosen capacity.
func TestSealRomSizeRoundTrips(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	if p.header.RomSize() == 0 {
		t.Fatal("RomSize is zero")
	}
	if p.tailsize == 0 {
		t.Fatal("tailsize was never computed")
	}
	if p.header.RomSize() >= p.tailsize {
		t.Errorf("RomSize %#x should be strictly less than tailsize %#x", p.header.RomSize(), p.tailsize)
	}
}

// TestSealAlreadySealed checks the state machine rejects a second Seal.
func TestSealAlreadySealed(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	err := p.Seal()
	sErr, ok := err.(*SealError)
	if !ok || sErr.Kind != AlreadySealed {
		t.Fatalf("Seal() on already-sealed packer = %v, want AlreadySealed", err)
	}
}

// TestSealCapacityShiftIsSmallestFit checks that the chosen capacity shift
// is the smallest for which romsize fits under baseCapacity<<shift.
func TestSealCapacityShiftIsSmallestFit(t *testing.T) {
	p, _ := newSealedMinimalPacker(t)

	shift := p.header.Bytes()[0x014]
	romsize := p.header.RomSize()
	if romsize >= uint32(baseCapacity<<uint(shift)) {
		t.Fatalf("romsize %#x does not fit chosen shift %d", romsize, shift)
	}
	if shift > 0 && romsize < uint32(baseCapacity<<uint(shift-1)) {
		t.Fatalf("shift %d is not minimal: romsize %#x already fits shift %d", shift, romsize, shift-1)
	}
}

// TestSealOverCapacityRejects checks that Seal rejects a member layout whose
// romsize exceeds every capacity shift available to MROM storage, returning
// SealError{Kind: OverCapacity} instead of silently picking an oversized
// shift.
func TestSealOverCapacityRejects(t *testing.T) {
	dir := t.TempDir()
	oversizedArm9 := writeSparseFile(t, dir, "arm9.bin", int64(baseCapacity)<<uint(maxShiftMROM)+0x200)
	writeTempFile(t, dir, "arm7.bin", bytes.Repeat([]byte{0x22}, 0x200))
	writeTempFile(t, dir, "arm9.def", make([]byte, 0x10))
	writeTempFile(t, dir, "arm7.def", make([]byte, 0x10))

	cfg := "[header]\n" +
		"title=TEST\nserial=ABCD\nmaker=01\nrevision=0\nsecure-crc=0xFFFF\n" +
		"[rom]\nstorage-type=MROM\n" +
		"[arm9]\nstatic-binary=" + oversizedArm9 + "\ndefinitions=" + filepath.Join(dir, "arm9.def") + "\n" +
		"[arm7]\nstatic-binary=" + filepath.Join(dir, "arm7.bin") + "\ndefinitions=" + filepath.Join(dir, "arm7.def") + "\n"

	p := New()
	if err := p.LoadConfig(cfg); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	err := p.Seal()
	sErr, ok := err.(*SealError)
	if !ok || sErr.Kind != OverCapacity {
		t.Fatalf("Seal() with oversized arm9 = %v, want OverCapacity", err)
	}
}
