// Package icon decodes a 32x32 indexed-4bpp PNG banner icon and emits it in
// the Nintendo DS banner's native 8x8-tile-ordered 4bpp bitmap plus BGR555
// palette form.
//
// PNG decoding itself is treated as an opaque boundary: image/png (standard
// library) sits behind the IconDecoder interface defined here, keeping the
// decode step replaceable and the tile/palette re-encoding (the part this
// package actually owns) independent of it.
package icon

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// Dimensions of the banner icon, in pixels and tiles.
const (
	PixelsPerSide = 32
	TileSide      = 8
	TilesPerSide  = PixelsPerSide / TileSide

	// BitmapSize is the byte length of the 4bpp tile-ordered bitmap region.
	BitmapSize = 0x200
	// PaletteEntries is the number of 16-bit BGR555 palette slots.
	PaletteEntries = 16
	// PaletteSize is the byte length of the palette region.
	PaletteSize = PaletteEntries * 2
)

// IconDecoder decodes an image, returning it as an indexed (paletted) image.
// Satisfied by a thin adapter over image/png.Decode.
type IconDecoder interface {
	Decode(r io.Reader) (*image.Paletted, error)
}

// PNGDecoder adapts the standard library's image/png decoder to
// IconDecoder.
type PNGDecoder struct {
	decode func(io.Reader) (image.Image, error)
}

// NewPNGDecoder constructs a PNGDecoder. decode is the underlying decode
// function (image/png.Decode in production; swappable in tests).
func NewPNGDecoder(decode func(io.Reader) (image.Image, error)) *PNGDecoder {
	return &PNGDecoder{decode: decode}
}

func (d *PNGDecoder) Decode(r io.Reader) (*image.Paletted, error) {
	img, err := d.decode(r)
	if err != nil {
		return nil, err
	}
	pal, ok := img.(*image.Paletted)
	if !ok {
		return nil, errors.New("icon: PNG is not a palette-indexed image")
	}
	return pal, nil
}

// ErrWrongSize is returned when the decoded image is not exactly
// PixelsPerSide x PixelsPerSide.
var ErrWrongSize = fmt.Errorf("icon: image must be %dx%d pixels", PixelsPerSide, PixelsPerSide)

// ErrTooManyColors is returned when the decoded palette exceeds
// PaletteEntries colors.
var ErrTooManyColors = fmt.Errorf("icon: palette must have at most %d colors", PaletteEntries)

// Encode converts a decoded 32x32 indexed image into the banner's
// 8x8-tile-ordered 4bpp bitmap and 16-entry BGR555 palette.
//
// Tile order matches the NDS banner convention: the image is divided into
// 4x4 tiles of 8x8 pixels, tiles walked row-major, and within each tile
// pixels walked row-major, two 4-bit indices packed per byte (low nibble
// first).
func Encode(img *image.Paletted) (bitmap [BitmapSize]byte, palette [PaletteSize]byte, err error) {
	b := img.Bounds()
	if b.Dx() != PixelsPerSide || b.Dy() != PixelsPerSide {
		return bitmap, palette, ErrWrongSize
	}
	if len(img.Palette) > PaletteEntries {
		return bitmap, palette, ErrTooManyColors
	}

	for i, c := range img.Palette {
		if i >= PaletteEntries {
			break
		}
		r, g, bch, _ := c.RGBA()
		bgr555 := bgr555From8(uint8(r>>8), uint8(g>>8), uint8(bch>>8))
		palette[i*2] = byte(bgr555)
		palette[i*2+1] = byte(bgr555 >> 8)
	}

	pos := 0
	for tileY := 0; tileY < TilesPerSide; tileY++ {
		for tileX := 0; tileX < TilesPerSide; tileX++ {
			for y := 0; y < TileSide; y++ {
				for x := 0; x < TileSide; x += 2 {
					px := b.Min.X + tileX*TileSide + x
					py := b.Min.Y + tileY*TileSide + y
					lo := img.ColorIndexAt(px, py)
					hi := img.ColorIndexAt(px+1, py)
					bitmap[pos] = (hi << 4) | (lo & 0x0F)
					pos++
				}
			}
		}
	}
	return bitmap, palette, nil
}

// bgr555From8 packs 8-bit RGB channels into a BGR555 halfword: each channel
// right-shifted by 3 to fit 5 bits, assembled as B<<10 | G<<5 | R.
func bgr555From8(r, g, b uint8) uint16 {
	return uint16(b>>3)<<10 | uint16(g>>3)<<5 | uint16(r>>3)
}
