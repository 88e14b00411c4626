// Package header wraps the fixed-size NDS ROM header and banner buffers with
// named accessors at their documented byte offsets.
//
// A small struct holds the byte-slice window, with paired Get/Set methods
// reading and writing at constant offsets via encoding/binary, rather than
// scattering magic offsets through caller code.
package header

import (
	"encoding/binary"
	"errors"
)

// Size is the fixed length of the NDS ROM header buffer.
const Size = 0x4000

// ErrTooShort is returned when a buffer is too small to hold the structure
// being wrapped.
var ErrTooShort = errors.New("header: buffer too short")

// Header wraps the 0x4000-byte NDS ROM header.
type Header struct {
	data []byte
}

// New allocates a zeroed, owned 0x4000-byte header buffer.
func New() Header {
	return Header{data: make([]byte, Size)}
}

// ToHeader wraps an existing buffer (which must be at least Size bytes) as
// a Header, without copying.
func ToHeader(buf []byte) (Header, error) {
	if len(buf) < Size {
		return Header{}, ErrTooShort
	}
	return Header{data: buf[:Size:Size]}, nil
}

// Bytes returns the underlying buffer.
func (h Header) Bytes() []byte { return h.data }

func (h Header) SetTitle(title [12]byte)  { copy(h.data[0x000:0x00C], title[:]) }
func (h Header) SetSerial(serial [4]byte) { copy(h.data[0x00C:0x010], serial[:]) }
func (h Header) SetMaker(maker [2]byte)   { copy(h.data[0x010:0x012], maker[:]) }

func (h Header) SetRevision(rev byte) { h.data[0x01E] = rev }
func (h Header) Revision() byte       { return h.data[0x01E] }

func (h Header) SetCapacityShift(shift byte) { h.data[0x014] = shift }

func (h Header) SetSecureCRC(v uint16) { binary.LittleEndian.PutUint16(h.data[0x06C:0x06E], v) }
func (h Header) SecureCRC() uint16     { return binary.LittleEndian.Uint16(h.data[0x06C:0x06E]) }

func (h Header) SetSecureDelay(v uint16) { binary.LittleEndian.PutUint16(h.data[0x06E:0x070], v) }

func (h Header) SetARM9RomOffset(v uint32) { binary.LittleEndian.PutUint32(h.data[0x020:0x024], v) }
func (h Header) ARM9RomOffset() uint32     { return binary.LittleEndian.Uint32(h.data[0x020:0x024]) }
func (h Header) SetARM9EntryPoint(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x024:0x028], v)
}
func (h Header) SetARM9RamAddress(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x028:0x02C], v)
}
func (h Header) SetARM9Size(v uint32) { binary.LittleEndian.PutUint32(h.data[0x02C:0x030], v) }

func (h Header) SetARM7RomOffset(v uint32) { binary.LittleEndian.PutUint32(h.data[0x030:0x034], v) }
func (h Header) ARM7RomOffset() uint32     { return binary.LittleEndian.Uint32(h.data[0x030:0x034]) }
func (h Header) SetARM7EntryPoint(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x034:0x038], v)
}
func (h Header) SetARM7RamAddress(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x038:0x03C], v)
}
func (h Header) SetARM7Size(v uint32) { binary.LittleEndian.PutUint32(h.data[0x03C:0x040], v) }

func (h Header) SetFntOffset(v uint32) { binary.LittleEndian.PutUint32(h.data[0x040:0x044], v) }
func (h Header) SetFntSize(v uint32)   { binary.LittleEndian.PutUint32(h.data[0x044:0x048], v) }
func (h Header) SetFatbOffset(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x048:0x04C], v)
}
func (h Header) SetFatbSize(v uint32) { binary.LittleEndian.PutUint32(h.data[0x04C:0x050], v) }

func (h Header) SetARM9OvtOffset(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x050:0x054], v)
}
func (h Header) SetARM9OvtSize(v uint32) { binary.LittleEndian.PutUint32(h.data[0x054:0x058], v) }
func (h Header) SetARM7OvtOffset(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x058:0x05C], v)
}
func (h Header) SetARM7OvtSize(v uint32) { binary.LittleEndian.PutUint32(h.data[0x05C:0x060], v) }

func (h Header) SetRomctrlDec(v uint32) { binary.LittleEndian.PutUint32(h.data[0x060:0x064], v) }
func (h Header) SetRomctrlEnc(v uint32) { binary.LittleEndian.PutUint32(h.data[0x064:0x068], v) }

func (h Header) SetBannerOffset(v uint32) { binary.LittleEndian.PutUint32(h.data[0x068:0x06C], v) }

func (h Header) SetARM9AutoloadCallback(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x070:0x074], v)
}
func (h Header) SetARM7AutoloadCallback(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x074:0x078], v)
}

func (h Header) SetRomSize(v uint32) { binary.LittleEndian.PutUint32(h.data[0x080:0x084], v) }
func (h Header) RomSize() uint32     { return binary.LittleEndian.Uint32(h.data[0x080:0x084]) }
func (h Header) SetHeaderSize(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x084:0x088], v)
}
func (h Header) SetReservedBiosFlag(v uint32) {
	binary.LittleEndian.PutUint32(h.data[0x088:0x08C], v)
}

func (h Header) SetHeaderCRC(v uint16) { binary.LittleEndian.PutUint16(h.data[0x15E:0x160], v) }
func (h Header) HeaderCRC() uint16     { return binary.LittleEndian.Uint16(h.data[0x15E:0x160]) }

// CRCRegion returns the byte range the header CRC-16 is computed over.
func (h Header) CRCRegion() []byte { return h.data[0x000:0x15E] }

// Banner size classes, selected by the configured banner version.
const (
	BannerSizeV1 = 0x0840
	BannerSizeV2 = 0x0940
	BannerSizeV3 = 0x1240
)

// Language title slot offsets within the banner buffer; each slot is 0x100
// bytes of UTF-16LE text.
const (
	TitleOffsetJP = 0x240
	TitleOffsetEN = 0x340
	TitleOffsetFR = 0x440
	TitleOffsetDE = 0x540
	TitleOffsetIT = 0x640
	TitleOffsetES = 0x740
	TitleOffsetCN = 0x840 // version >= 2
	TitleOffsetKR = 0x940 // version >= 3
)

// TitleSlotLen is the fixed byte length of every language title slot.
const TitleSlotLen = 0x100

// Banner wraps a banner buffer sized per the configured version (1, 2, or
// 3), exposing its icon, palette, and title-slot regions.
type Banner struct {
	data []byte
}

// SizeForVersion returns the banner buffer size for a given version (1-3),
// or 0 if the version is not recognized.
func SizeForVersion(version int) int {
	switch version {
	case 1:
		return BannerSizeV1
	case 2:
		return BannerSizeV2
	case 3:
		return BannerSizeV3
	default:
		return 0
	}
}

// NewBanner allocates a zeroed banner buffer of the size matching version
// and writes the version byte at offset 0.
func NewBanner(version int) (Banner, error) {
	size := SizeForVersion(version)
	if size == 0 {
		return Banner{}, errors.New("header: unsupported banner version")
	}
	data := make([]byte, size)
	data[0] = byte(version)
	return Banner{data: data}, nil
}

// Bytes returns the underlying banner buffer.
func (b Banner) Bytes() []byte { return b.data }

// Version returns the banner version byte at offset 0.
func (b Banner) Version() int { return int(b.data[0]) }

// Icon4bpp returns the 0x200-byte 4bpp tile-indexed icon bitmap region.
func (b Banner) Icon4bpp() []byte { return b.data[0x020:0x220] }

// IconPalette returns the 0x20-byte (16-entry) BGR555 palette region.
func (b Banner) IconPalette() []byte { return b.data[0x220:0x240] }

// TitleSlot returns the 0x100-byte title region at the given banner offset
// (one of the TitleOffset* constants).
func (b Banner) TitleSlot(offset int) []byte { return b.data[offset : offset+TitleSlotLen] }

// AllTitleOffsets returns every language title-slot offset applicable to
// this banner's version.
func (b Banner) AllTitleOffsets() []int {
	offsets := []int{TitleOffsetJP, TitleOffsetEN, TitleOffsetFR, TitleOffsetDE, TitleOffsetIT, TitleOffsetES}
	if b.Version() >= 2 {
		offsets = append(offsets, TitleOffsetCN)
	}
	if b.Version() >= 3 {
		offsets = append(offsets, TitleOffsetKR)
	}
	return offsets
}

// SetCRC writes the CRC-16 for the given banner CRC slot (0, 1, or 2,
// corresponding to banner[0x02], [0x04], [0x06]).
func (b Banner) SetCRC(slot int, v uint16) {
	off := 0x02 + slot*2
	binary.LittleEndian.PutUint16(b.data[off:off+2], v)
}

// CRCRegion returns banner[0x20:upto], the region a given CRC slot is
// computed over.
func (b Banner) CRCRegion(upto int) []byte { return b.data[0x20:upto] }
