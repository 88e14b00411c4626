package icon

import (
	"image"
	"image/color"
	"testing"
)

func solidPalettedImage(index uint8) *image.Paletted {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{0xF8, 0xF8, 0xF8, 255}, // top 5 bits of each channel set
	}
	img := image.NewPaletted(image.Rect(0, 0, PixelsPerSide, PixelsPerSide), pal)
	for y := 0; y < PixelsPerSide; y++ {
		for x := 0; x < PixelsPerSide; x++ {
			img.SetColorIndex(x, y, index)
		}
	}
	return img
}

func TestEncodeWrongSize(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 16, 16), color.Palette{color.RGBA{}})
	_, _, err := Encode(img)
	if err != ErrWrongSize {
		t.Fatalf("err = %v, want ErrWrongSize", err)
	}
}

func TestEncodeTooManyColors(t *testing.T) {
	pal := make(color.Palette, 17)
	for i := range pal {
		pal[i] = color.RGBA{A: 255}
	}
	img := image.NewPaletted(image.Rect(0, 0, PixelsPerSide, PixelsPerSide), pal)
	_, _, err := Encode(img)
	if err != ErrTooManyColors {
		t.Fatalf("err = %v, want ErrTooManyColors", err)
	}
}

func TestEncodeSolidImagePacksNibbles(t *testing.T) {
	img := solidPalettedImage(1)
	bitmap, palette, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// every pixel is index 1: each byte packs two index-1 nibbles -> 0x11.
	for i, b := range bitmap {
		if b != 0x11 {
			t.Fatalf("bitmap[%d] = %#02x, want 0x11", i, b)
		}
	}
	// palette[1] = 0xF8F8F8 -> BGR555 with each channel >>3 = 0x1F -> B=G=R=0x1F.
	want := uint16(0x1F)<<10 | uint16(0x1F)<<5 | uint16(0x1F)
	got := uint16(palette[2]) | uint16(palette[3])<<8
	if got != want {
		t.Fatalf("palette[1] = %#04x, want %#04x", got, want)
	}
}

func TestEncodeBitmapSize(t *testing.T) {
	img := solidPalettedImage(0)
	bitmap, palette, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(bitmap) != BitmapSize {
		t.Fatalf("len(bitmap) = %d, want %#x", len(bitmap), BitmapSize)
	}
	if len(palette) != PaletteSize {
		t.Fatalf("len(palette) = %d, want %#x", len(palette), PaletteSize)
	}
}
