// Package nitrorom builds a bit-exact Nintendo DS cartridge image from a
// declarative configuration and a flat source-to-target file listing.
//
// The Packer is the aggregate: it owns the header and banner buffers, the
// ARM9/ARM7 static binaries and their overlay collections, the computed FNT
// and FATB tables, and the filesystem file list. Handler calls mutate its
// in-memory model; Seal computes layout and checksums exactly once; Dump
// streams the sealed image to a sink exactly once; Dispose releases every
// owned resource.
//
// One dominant type split across files by concern: packer.go for the
// aggregate and its lifecycle, source.go for Source/RomMember/RomFile,
// value.go for value shape validation, handlers_*.go for section dispatch,
// seal.go and dump.go for the two core algorithms.
package nitrorom

import (
	"context"
	"log/slog"

	"github.com/lhearachel/nitrorom/internal/armdefs"
	"github.com/lhearachel/nitrorom/internal/bannertitle"
	"github.com/lhearachel/nitrorom/internal/cfgparse"
	"github.com/lhearachel/nitrorom/internal/dsv"
	"github.com/lhearachel/nitrorom/internal/header"
)

// state is the packer's position in its three-state lifecycle.
type state int

const (
	stateOpen state = iota
	stateSealed
	stateDisposable
)

// levelTrace is a custom slog level below Debug, for the byte-level
// config/DSV event trace.
const levelTrace = slog.LevelDebug - 2

// Packer is the aggregate ROM-under-construction.
type Packer struct {
	st      state
	verbose bool
	log     *slog.Logger

	bannerver int
	prom      bool
	filltail  bool
	fillwith  byte
	tailsize  uint32

	header header.Header
	banner header.Banner

	arm9, arm7   *RomMember
	ovt9, ovt7   *RomMember
	ovy9, ovy7   []RomMember
	ovy9n, ovy7n []string // overlay names, parallel to ovy9/ovy7

	fntb, fatb []byte

	filesys []RomFile

	bannerTitleState bannerTitleOrder
	titleWriter      *bannertitle.Writer

	cfg *cfgparse.Parser

	opened []*Source // every Source ever opened, for Dispose
}

// bannerTitleOrder tracks which banner title segments have been written, so
// handlers can enforce the title-before-subtitle-before-developer rule and
// reject duplicates.
type bannerTitleOrder struct {
	hasTitle, hasSubtitle, hasDeveloper bool
}

// Option configures a new Packer.
type Option func(*Packer)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Packer) { p.log = l }
}

// WithVerbose enables per-step diagnostic logging at levelTrace/Debug,
// mirroring the original's `if (verbose) fprintf` call sites.
func WithVerbose(v bool) Option {
	return func(p *Packer) { p.verbose = v }
}

// New creates an empty, Open-state Packer and registers its section
// handlers against the configuration event stream.
func New(opts ...Option) *Packer {
	p := &Packer{
		st:       stateOpen,
		log:      slog.Default(),
		fillwith: 0xFF,
	}
	for _, o := range opts {
		o(p)
	}
	p.header = header.New()
	p.cfg = cfgparse.New()
	p.registerHandlers()
	return p
}

func (p *Packer) registerHandlers() {
	p.cfg.Register("header", p.handleHeader)
	p.cfg.Register("rom", p.handleRom)
	p.cfg.Register("banner", p.handleBanner)
	p.cfg.Register("arm9", p.handleArm9)
	p.cfg.Register("arm7", p.handleArm7)
}

// LoadConfig parses INI-style configuration text, dispatching each
// key/value event to its section handler. It may be called multiple times
// before Seal; handler ordering rules (banner title segments, "version
// first") apply across all calls combined.
func (p *Packer) LoadConfig(text string) error {
	if p.st != stateOpen {
		return &PackerError{Kind: OrderingViolation, Path: "config"}
	}
	return p.cfg.Parse(text)
}

// LoadFilesystem parses a two-field (source,target) DSV listing and adds
// one RomFile per record, in insertion order.
func (p *Packer) LoadFilesystem(text string) error {
	if p.st != stateOpen {
		return &PackerError{Kind: OrderingViolation, Path: "filesystem"}
	}
	if text == "" {
		return nil
	}
	parser := dsv.New(dsv.Options{})
	records, err := parser.Parse(text)
	if err != nil {
		return translateSheetsError(err)
	}
	for _, rec := range records {
		if len(rec.Fields) != 2 {
			return &SheetsError{Kind: SheetsNumFields, Text: "expected 2 fields: source,target"}
		}
		if err := p.addFile(rec.Fields[0], rec.Fields[1]); err != nil {
			return err
		}
	}
	return nil
}

func translateSheetsError(err error) error {
	if dErr, ok := err.(*dsv.Error); ok {
		kind := SheetsUser
		switch dErr.Kind {
		case dsv.NumFields:
			kind = SheetsNumFields
		case dsv.Unenclosed:
			kind = SheetsUnenclosed
		case dsv.Unterminated:
			kind = SheetsUnterminated
		}
		return &SheetsError{Kind: kind, Line: dErr.Line, Text: dErr.Text}
	}
	return err
}

func (p *Packer) addFile(sourcePath, targetPath string) error {
	src, err := StatFileSource(sourcePath)
	if err != nil {
		return err
	}
	p.filesys = append(p.filesys, RomFile{
		RomMember:  newMember(src),
		TargetPath: targetPath,
		PackingID:  len(p.filesys),
	})
	p.trace("filesystem:add", slog.String("source", sourcePath), slog.String("target", targetPath))
	return nil
}

// loadOverlays opens definitions at path, populating either ovy9/ovy9n or
// ovy7/ovy7n and returning the parsed definitions for header field writes.
func (p *Packer) loadOverlays(path string, arm9 bool) (*armdefs.Definitions, error) {
	src, err := OpenFileSource(path)
	if err != nil {
		return nil, err
	}
	p.opened = append(p.opened, src)

	buf, err := src.ReadAll()
	if err != nil {
		return nil, &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	if len(buf) < 0x10 {
		return nil, &PackerError{Kind: FileTooSmall, Path: path}
	}

	defs, err := armdefs.Parse(buf)
	if err != nil {
		return nil, &PackerError{Kind: FileTooSmall, Path: path, Cause: err}
	}

	overlays := make([]RomMember, len(defs.OverlayNames))
	for i, name := range defs.OverlayNames {
		ovySrc, err := OpenFileSource(name)
		if err != nil {
			return nil, err
		}
		p.opened = append(p.opened, ovySrc)
		overlays[i] = newMember(ovySrc)
	}

	if arm9 {
		p.ovy9, p.ovy9n = overlays, defs.OverlayNames
	} else {
		p.ovy7, p.ovy7n = overlays, defs.OverlayNames
	}
	p.trace("arm:definitions-loaded", slog.Bool("arm9", arm9), slog.Int("overlays", len(overlays)))
	return defs, nil
}

// OverlayCount returns the total number of ARM9 and ARM7 overlays
// registered so far; filesystem IDs continue from here.
func (p *Packer) OverlayCount() int { return len(p.ovy9) + len(p.ovy7) }

// Dispose releases every owned buffer and closes every open file handle.
// Valid from any state; it is the only valid operation once Disposable.
func (p *Packer) Dispose() error {
	var firstErr error
	for _, src := range p.opened {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.opened = nil
	p.st = stateDisposable
	return firstErr
}

func (p *Packer) logAttrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if !p.verbose && level < slog.LevelInfo {
		return
	}
	if p.log != nil {
		p.log.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

func (p *Packer) trace(msg string, attrs ...slog.Attr)    { p.logAttrs(levelTrace, msg, attrs...) }
func (p *Packer) debug(msg string, attrs ...slog.Attr)    { p.logAttrs(slog.LevelDebug, msg, attrs...) }
func (p *Packer) info(msg string, attrs ...slog.Attr)     { p.logAttrs(slog.LevelInfo, msg, attrs...) }
func (p *Packer) warn(msg string, attrs ...slog.Attr)     { p.logAttrs(slog.LevelWarn, msg, attrs...) }
func (p *Packer) logerror(msg string, attrs ...slog.Attr) { p.logAttrs(slog.LevelError, msg, attrs...) }
