package nitrorom

import (
	"image"
	"image/png"
	"io"
	"log/slog"

	"github.com/lhearachel/nitrorom/internal/bannertitle"
	"github.com/lhearachel/nitrorom/internal/header"
	"github.com/lhearachel/nitrorom/internal/icon"
)

// handleBanner dispatches [banner] key/value events. Every key but
// "version" requires the banner buffer already allocated.
func (p *Packer) handleBanner(key, value string, line int) error {
	if key != "version" && p.banner.Bytes() == nil {
		return &PackerError{Kind: OrderingViolation, Path: "banner." + key}
	}

	switch key {
	case "version":
		return p.handleBannerVersion(key, value)
	case "icon4bpp":
		return p.handleBannerIcon4bpp(value)
	case "iconpal":
		return p.handleBannerIconPal(value)
	case "icon":
		return p.handleBannerIconPNG(value)
	case "title":
		return p.handleBannerTitle(value)
	case "subtitle":
		return p.handleBannerSubtitle(value)
	case "developer":
		return p.handleBannerDeveloper(value)
	default:
		return &ConfigError{Kind: ConfigUser, Line: line, Text: "unknown banner key: " + key}
	}
}

func (p *Packer) handleBannerVersion(key, value string) error {
	v, err := parseDecimal(key, value, 3)
	if err != nil || v < 1 {
		return &ValueError{Kind: ExpectedDecimal, Key: key, Value: value}
	}
	b, err := header.NewBanner(int(v))
	if err != nil {
		return &ValueError{Kind: ExpectedDecimal, Key: key, Value: value}
	}
	p.banner = b
	p.bannerver = int(v)

	slots := make([][]byte, 0, len(b.AllTitleOffsets()))
	for _, off := range b.AllTitleOffsets() {
		slots = append(slots, b.TitleSlot(off))
	}
	p.titleWriter = bannertitle.NewWriter(slots)

	p.debug("banner:version", slog.Int("version", p.bannerver))
	return nil
}

func (p *Packer) handleBannerIcon4bpp(path string) error {
	src, err := OpenFileSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	buf, err := src.ReadAll()
	if err != nil {
		return &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	dst := p.banner.Icon4bpp()
	if len(buf) > len(dst) {
		return &PackerError{Kind: SizeExceeded, Path: path}
	}
	copy(dst, buf)
	return nil
}

func (p *Packer) handleBannerIconPal(path string) error {
	src, err := OpenFileSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	buf, err := src.ReadAll()
	if err != nil {
		return &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}
	dst := p.banner.IconPalette()
	if len(buf) > len(dst) {
		return &PackerError{Kind: SizeExceeded, Path: path}
	}
	copy(dst, buf)
	return nil
}

func (p *Packer) handleBannerIconPNG(path string) error {
	src, err := OpenFileSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	r, err := src.Reader()
	if err != nil {
		return &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}

	decoder := icon.NewPNGDecoder(func(rd io.Reader) (image.Image, error) {
		return png.Decode(rd)
	})
	paletted, err := decoder.Decode(r)
	if err != nil {
		return &PackerError{Kind: FileOpen, Path: path, Cause: err}
	}

	bitmap, palette, err := icon.Encode(paletted)
	if err != nil {
		return &PackerError{Kind: SizeExceeded, Path: path, Cause: err}
	}
	copy(p.banner.Icon4bpp(), bitmap[:])
	copy(p.banner.IconPalette(), palette[:])
	p.debug("banner:icon", slog.String("path", path))
	return nil
}

func (p *Packer) handleBannerTitle(value string) error {
	if p.bannerTitleState.hasTitle {
		return &PackerError{Kind: OrderingViolation, Path: "banner.title"}
	}
	if err := p.writeTitleSegment(value); err != nil {
		return err
	}
	p.bannerTitleState.hasTitle = true
	return nil
}

func (p *Packer) handleBannerSubtitle(value string) error {
	if !p.bannerTitleState.hasTitle {
		return &PackerError{Kind: OrderingViolation, Path: "banner.subtitle"}
	}
	if p.bannerTitleState.hasSubtitle {
		return &PackerError{Kind: OrderingViolation, Path: "banner.subtitle"}
	}
	if p.bannerTitleState.hasDeveloper {
		return &PackerError{Kind: OrderingViolation, Path: "banner.subtitle"}
	}
	if err := p.titleWriter.WriteSeparator(); err != nil {
		return translateTitleErr("subtitle", value, err)
	}
	if err := p.writeTitleSegment(value); err != nil {
		return err
	}
	p.bannerTitleState.hasSubtitle = true
	return nil
}

func (p *Packer) handleBannerDeveloper(value string) error {
	if !p.bannerTitleState.hasTitle {
		return &PackerError{Kind: OrderingViolation, Path: "banner.developer"}
	}
	if p.bannerTitleState.hasDeveloper {
		return &PackerError{Kind: OrderingViolation, Path: "banner.developer"}
	}
	if err := p.titleWriter.WriteSeparator(); err != nil {
		return translateTitleErr("developer", value, err)
	}
	if err := p.writeTitleSegment(value); err != nil {
		return err
	}
	p.bannerTitleState.hasDeveloper = true
	return nil
}

func (p *Packer) writeTitleSegment(value string) error {
	if err := p.titleWriter.WriteText(value); err != nil {
		return translateTitleErr("title", value, err)
	}
	return nil
}

// translateTitleErr maps internal/bannertitle's error kinds onto the
// packer's own Value/Packer error taxonomy.
func translateTitleErr(key, value string, err error) error {
	tErr, ok := err.(*bannertitle.Error)
	if !ok {
		return err
	}
	switch tErr.Kind {
	case bannertitle.OutOfRange:
		return &ValueError{Kind: ValueOutOfRange, Key: key, Value: value}
	case bannertitle.SurrogateHalf:
		return &ValueError{Kind: ValueSurrogateHalf, Key: key, Value: value}
	case bannertitle.InvalidPrefix:
		return &ValueError{Kind: ValueInvalidPrefix, Key: key, Value: value}
	case bannertitle.SizeExceeded:
		return &PackerError{Kind: SizeExceeded, Path: key}
	default:
		return err
	}
}
