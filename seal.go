package nitrorom

import (
	"github.com/lhearachel/nitrorom/internal/crc16"
	"github.com/lhearachel/nitrorom/internal/fnt"
)

const (
	romStart = 0x4000

	baseCapacity = 0x00020000
	maxShiftMROM = 9
	maxShiftPROM = 5

	headerSizeField  = 0x4000
	reservedBiosFlag = 0x00004BA0
)

// Seal computes member offsets, builds the FNT and FATB, determines chip
// capacity, and writes every header/banner checksum. It transitions the
// packer from Open to Sealed and may be called exactly once.
func (p *Packer) Seal() error {
	if p.st != stateOpen {
		return &SealError{Kind: AlreadySealed}
	}

	overlayCount := len(p.ovy9) + len(p.ovy7)
	if len(p.filesys) > 0 || overlayCount > 0 {
		fatbSize := 8 * (overlayCount + len(p.filesys))
		p.fatb = make([]byte, int(pad200(int64(fatbSize)))+fatbSize)
	}

	cursor := uint32(romStart)
	var lastPad uint32
	advance := func(size, pad uint32) {
		cursor += size + pad
		lastPad = pad
	}

	if p.arm9 != nil {
		p.header.SetARM9RomOffset(cursor)
		p.arm9.Offset = cursor
		advance(p.arm9.Size(), p.arm9.Pad)
	}
	nextOverlayID := 0
	if p.ovt9 != nil {
		p.header.SetARM9OvtOffset(cursor)
		p.header.SetARM9OvtSize(p.ovt9.Size())
		p.ovt9.Offset = cursor
		advance(p.ovt9.Size(), p.ovt9.Pad)
	}
	for i := range p.ovy9 {
		m := &p.ovy9[i]
		m.Offset = cursor
		writeFatbSlot(p.fatb, nextOverlayID, cursor, m.Size())
		nextOverlayID++
		advance(m.Size(), m.Pad)
	}

	if p.arm7 != nil {
		p.header.SetARM7RomOffset(cursor)
		p.arm7.Offset = cursor
		advance(p.arm7.Size(), p.arm7.Pad)
	}
	if p.ovt7 != nil {
		p.header.SetARM7OvtOffset(cursor)
		p.header.SetARM7OvtSize(p.ovt7.Size())
		p.ovt7.Offset = cursor
		advance(p.ovt7.Size(), p.ovt7.Pad)
	}
	for i := range p.ovy7 {
		m := &p.ovy7[i]
		m.Offset = cursor
		writeFatbSlot(p.fatb, nextOverlayID, cursor, m.Size())
		nextOverlayID++
		advance(m.Size(), m.Pad)
	}

	paths := make([]string, len(p.filesys))
	for i, f := range p.filesys {
		paths[i] = f.TargetPath
	}
	table := fnt.Build(paths, overlayCount)
	for _, a := range table.Assignments() {
		p.filesys[a.Index].FilesysID = a.FilesysID
	}
	p.fntb = table.Serialize()

	p.header.SetFntOffset(cursor)
	p.header.SetFntSize(uint32(len(p.fntb)))
	advance(uint32(len(p.fntb)), pad200(int64(len(p.fntb))))

	if p.fatb != nil {
		p.header.SetFatbOffset(cursor)
		p.header.SetFatbSize(uint32(len(p.fatb)))
		advance(uint32(len(p.fatb)), pad200(int64(len(p.fatb))))
	}

	if p.banner.Bytes() != nil {
		p.header.SetBannerOffset(cursor)
		advance(uint32(len(p.banner.Bytes())), pad200(int64(len(p.banner.Bytes()))))
	}

	for i := range p.filesys {
		f := &p.filesys[i]
		f.Offset = cursor
		writeFatbSlot(p.fatb, int(f.FilesysID), cursor, f.Size())
		advance(f.Size(), f.Pad)
	}

	romsize := cursor - lastPad

	maxShift := maxShiftMROM
	if p.prom {
		maxShift = maxShiftPROM
	}
	shift := -1
	for s := 0; s <= maxShift; s++ {
		if romsize < uint32(baseCapacity<<uint(s)) {
			shift = s
			break
		}
	}
	if shift < 0 {
		return &SealError{Kind: OverCapacity, RomSize: romsize}
	}
	p.tailsize = uint32(baseCapacity << uint(shift))

	p.header.SetCapacityShift(byte(shift))
	p.header.SetRomSize(romsize)
	p.header.SetHeaderSize(headerSizeField)
	p.header.SetReservedBiosFlag(reservedBiosFlag)

	if p.banner.Bytes() != nil {
		p.banner.SetCRC(0, crc16.Sum(p.banner.CRCRegion(0x840)))
		if p.bannerver >= 2 {
			p.banner.SetCRC(1, crc16.Sum(p.banner.CRCRegion(0x940)))
		}
		if p.bannerver >= 3 {
			p.banner.SetCRC(2, crc16.Sum(p.banner.CRCRegion(0x1240)))
		}
	}

	p.header.SetHeaderCRC(crc16.Sum(p.header.CRCRegion()))

	p.st = stateSealed
	p.info("seal:complete")
	return nil
}

// writeFatbSlot writes the (start, start+size) byte range for filesystem ID
// id into its 8-byte FATB slot.
func writeFatbSlot(fatb []byte, id int, start, size uint32) {
	off := id * 8
	crc16.PutU32(fatb[off:off+4], start)
	crc16.PutU32(fatb[off+4:off+8], start+size)
}
