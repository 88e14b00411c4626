package nitrorom

import (
	"bytes"
	"io"
	"os"
)

// Source is a named origin of bytes, backed by exactly one of: an
// already-open file handle held for the packer's lifetime (OpenFileSource),
// a file path stated up front but opened only when streamed and closed
// immediately after (StatFileSource), or an in-memory buffer owned by the
// packer (NewBufferSource).
type Source struct {
	Name string // informational, used in logs and diagnostics

	path string // set only for a StatFileSource not yet opened for streaming
	file *os.File
	buf  []byte
	size int64
}

// OpenFileSource opens path immediately and stats its size. The returned
// Source owns the file handle until Close is called. Used for sources the
// packer holds open across many handler calls: ARM static binaries, overlay
// tables, overlays, and ARM definitions files.
func OpenFileSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	return &Source{Name: path, file: f, size: info.Size()}, nil
}

// StatFileSource stats path without opening it. The file is opened only
// when the Source is actually streamed (WriteTo), and closed again
// immediately after — unlike OpenFileSource, no descriptor is held between
// calls. Used for filesystem entries, of which a single ROM may list many
// thousands; holding all of their handles open for the packer's lifetime
// risks exhausting the process's file-descriptor limit long before any
// limit the format itself imposes.
func StatFileSource(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	return &Source{Name: path, path: path, size: info.Size()}, nil
}

// NewBufferSource wraps an in-memory buffer the packer already owns (a
// computed header, banner, FNT, or FATB buffer).
func NewBufferSource(name string, buf []byte) *Source {
	return &Source{Name: name, buf: buf, size: int64(len(buf))}
}

// Size returns the source's byte length.
func (s *Source) Size() int64 { return s.size }

// Close releases the underlying file handle, if any. Buffer-backed sources
// and not-yet-opened StatFileSource sources are no-ops.
func (s *Source) Close() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// scratchBufSize bounds the copy buffer used for file-backed regions
// during dump.
const scratchBufSize = 4096

// ReadAll returns the source's full contents, reading a file-backed source
// from the start. Used for inputs the packer must inspect in full (ARM
// definitions files), as opposed to the large filesystem/overlay payloads
// WriteTo streams directly to the dump sink. A StatFileSource not yet
// opened is opened, read, and closed again before returning.
func (s *Source) ReadAll() ([]byte, error) {
	if s.buf != nil {
		return s.buf, nil
	}
	f := s.file
	if f == nil {
		var err error
		if f, err = os.Open(s.path); err != nil {
			return nil, err
		}
		defer f.Close()
	} else if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, s.size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Reader returns an io.Reader over the source's full contents, seeking a
// file-backed source back to its start first. Used where a caller needs
// streaming random access rather than a fully materialized buffer (the PNG
// icon decoder). Only valid on a buffer-backed or already-open Source — a
// StatFileSource is only ever consumed through WriteTo, which owns its own
// open/close around the copy.
func (s *Source) Reader() (io.Reader, error) {
	if s.buf != nil {
		return bytes.NewReader(s.buf), nil
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return s.file, nil
}

// WriteTo streams the source's full contents to w, seeking an already-open
// file-backed source back to its start first. A StatFileSource is opened
// here and closed again before returning, regardless of error.
func (s *Source) WriteTo(w io.Writer) (int64, error) {
	if s.buf != nil {
		n, err := w.Write(s.buf)
		return int64(n), err
	}
	if s.file != nil {
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
		scratch := make([]byte, scratchBufSize)
		return io.CopyBuffer(w, s.file, scratch)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	scratch := make([]byte, scratchBufSize)
	return io.CopyBuffer(w, f, scratch)
}

// pad200 returns the number of fill bytes required after a region of the
// given size to reach the next 0x200-byte boundary.
func pad200(size int64) uint32 {
	const align = 0x200
	rem := size % align
	if rem == 0 {
		return 0
	}
	return uint32(align - rem)
}

// RomMember is a Source plus its post-source padding and, after sealing,
// its absolute offset in the final image.
type RomMember struct {
	Source *Source
	Pad    uint32
	Offset uint32
}

func newMember(src *Source) RomMember {
	return RomMember{Source: src, Pad: pad200(src.Size())}
}

// Size returns the member's source size as a uint32 (ROM regions never
// approach the 4 GiB boundary where this would matter).
func (m RomMember) Size() uint32 { return uint32(m.Source.Size()) }

// RomFile is a filesystem entry: a RomMember plus its target path and the
// two ID fields that let dump (insertion order) and the FNT/FATB (sort
// order) agree on the same underlying file.
type RomFile struct {
	RomMember
	TargetPath string
	PackingID  int    // insertion index
	FilesysID  uint16 // assigned during Seal; = overlay_count + sort_rank
}
