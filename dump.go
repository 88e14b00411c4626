package nitrorom

import (
	"io"
	"log/slog"
)

// dumpRegion is one member or owned buffer in dump order, with the pad it
// would contribute if it weren't the final region.
type dumpRegion struct {
	write func(w io.Writer) (int64, error)
	pad   uint32
}

func memberRegion(m RomMember) dumpRegion {
	return dumpRegion{write: m.Source.WriteTo, pad: m.Pad}
}

func bufferRegion(buf []byte) dumpRegion {
	return dumpRegion{
		write: func(w io.Writer) (int64, error) { n, err := w.Write(buf); return int64(n), err },
		pad:   pad200(int64(len(buf))),
	}
}

// dumpRegions builds the exact member sequence: header, arm9, ovt9, each
// ovy9 in order, arm7, ovt7, each ovy7 in order, fntb, fatb, banner, then
// each filesystem file in insertion order.
func (p *Packer) dumpRegions() []dumpRegion {
	regions := []dumpRegion{bufferRegion(p.header.Bytes())}
	regions[0].pad = 0 // header is always exactly 0x4000, already 0x200-aligned

	if p.arm9 != nil {
		regions = append(regions, memberRegion(*p.arm9))
	}
	if p.ovt9 != nil {
		regions = append(regions, memberRegion(*p.ovt9))
	}
	for _, m := range p.ovy9 {
		regions = append(regions, memberRegion(m))
	}

	if p.arm7 != nil {
		regions = append(regions, memberRegion(*p.arm7))
	}
	if p.ovt7 != nil {
		regions = append(regions, memberRegion(*p.ovt7))
	}
	for _, m := range p.ovy7 {
		regions = append(regions, memberRegion(m))
	}

	regions = append(regions, bufferRegion(p.fntb))
	if p.fatb != nil {
		regions = append(regions, bufferRegion(p.fatb))
	}
	if p.banner.Bytes() != nil {
		regions = append(regions, bufferRegion(p.banner.Bytes()))
	}

	for _, f := range p.filesys {
		regions = append(regions, memberRegion(f.RomMember))
	}
	return regions
}

// Dump streams the sealed image to w in the exact member order dumpRegions
// builds. Every region but the last is followed by its 0x200-alignment pad;
// the final region's pad is written only when fill-tail is set — without
// fill-tail, the image ends at the last member, excluding its trailing pad.
// When fill-tail is set, writing continues past that pad up to the sealed
// chip capacity. It may be called exactly once, after a successful Seal.
func (p *Packer) Dump(w io.Writer) error {
	if p.st != stateSealed {
		return &DumpError{Kind: Packing}
	}
	p.info("dump:start")

	regions := p.dumpRegions()
	var written int64
	for i, r := range regions {
		n, err := r.write(w)
		written += n
		if err != nil {
			return &DumpError{Kind: WriteFailed, Cause: err}
		}

		pad := r.pad
		if i == len(regions)-1 && !p.filltail {
			pad = 0
		}
		if pad > 0 {
			if err := writeFill(w, pad, p.fillwith); err != nil {
				return &DumpError{Kind: WriteFailed, Cause: err}
			}
			written += int64(pad)
		}
	}

	if p.filltail && uint32(written) < p.tailsize {
		if err := writeFill(w, p.tailsize-uint32(written), p.fillwith); err != nil {
			return &DumpError{Kind: WriteFailed, Cause: err}
		}
	}

	p.st = stateDisposable
	p.info("dump:complete", slog.Int64("bytes", written))
	return nil
}

// DumpBuffers writes the four dry-run artifacts — the raw header, banner,
// FNT, and FATB buffers, in that order — to w4, with no padding or member
// framing. A nil entry in w4 skips that artifact.
func (p *Packer) DumpBuffers(w4 [4]io.Writer) error {
	if p.st != stateSealed {
		return &DumpError{Kind: Packing}
	}
	buffers := [4][]byte{p.header.Bytes(), p.banner.Bytes(), p.fntb, p.fatb}
	for i, buf := range buffers {
		if w4[i] == nil || buf == nil {
			continue
		}
		if _, err := w4[i].Write(buf); err != nil {
			return &DumpError{Kind: WriteFailed, Cause: err}
		}
	}
	return nil
}

// MemberPlan describes one member's would-be byte range in the sealed
// image, without writing any bytes. Recovers the original CLI's dry-run
// trace (source name, target name, FATB id, offset range) as a structured
// slice.
type MemberPlan struct {
	Offset     uint32
	End        uint32
	FilesysID  uint16
	SourceName string
	TargetName string
}

// PlannedMembers enumerates every RomMember in dump order with its sealed
// offset range, for dry-run inspection. Valid only after Seal.
func (p *Packer) PlannedMembers() ([]MemberPlan, error) {
	if p.st != stateSealed {
		return nil, &DumpError{Kind: Packing}
	}

	var plans []MemberPlan
	add := func(m RomMember, filesysID uint16, sourceName, targetName string) {
		plans = append(plans, MemberPlan{
			Offset:     m.Offset,
			End:        m.Offset + m.Size(),
			FilesysID:  filesysID,
			SourceName: sourceName,
			TargetName: targetName,
		})
	}

	if p.arm9 != nil {
		add(*p.arm9, 0, p.arm9.Source.Name, "")
	}
	if p.ovt9 != nil {
		add(*p.ovt9, 0, p.ovt9.Source.Name, "")
	}
	for i, m := range p.ovy9 {
		name := ""
		if i < len(p.ovy9n) {
			name = p.ovy9n[i]
		}
		add(m, uint16(i), m.Source.Name, name)
	}

	if p.arm7 != nil {
		add(*p.arm7, 0, p.arm7.Source.Name, "")
	}
	if p.ovt7 != nil {
		add(*p.ovt7, 0, p.ovt7.Source.Name, "")
	}
	for i, m := range p.ovy7 {
		name := ""
		if i < len(p.ovy7n) {
			name = p.ovy7n[i]
		}
		add(m, uint16(len(p.ovy9)+i), m.Source.Name, name)
	}

	for _, f := range p.filesys {
		add(f.RomMember, f.FilesysID, f.Source.Name, f.TargetPath)
	}

	return plans, nil
}

// writeFill writes n bytes of value b to w, in bounded chunks.
func writeFill(w io.Writer, n uint32, b byte) error {
	const chunkSize = 4096
	chunk := make([]byte, chunkSize)
	for i := range chunk {
		chunk[i] = b
	}
	remaining := int64(n)
	for remaining > 0 {
		sz := int64(chunkSize)
		if remaining < sz {
			sz = remaining
		}
		if _, err := w.Write(chunk[:sz]); err != nil {
			return err
		}
		remaining -= sz
	}
	return nil
}
