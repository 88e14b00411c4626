package nitrorom_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lhearachel/nitrorom"
)

// ExampleNew builds a minimal ROM from a static ARM9/ARM7 pair and a
// version-1 banner, then reports its sealed size, with no filesystem or
// overlays.
func ExampleNew() {
	dir, err := os.MkdirTemp("", "nitrorom-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	writeFile := func(name string, content []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			panic(err)
		}
		return path
	}

	arm9 := writeFile("arm9.bin", bytes.Repeat([]byte{0x11}, 0x200))
	arm7 := writeFile("arm7.bin", bytes.Repeat([]byte{0x22}, 0x200))
	arm9def := writeFile("arm9.def", make([]byte, 0x10))
	arm7def := writeFile("arm7.def", make([]byte, 0x10))

	cfg := fmt.Sprintf(
		"[header]\ntitle=TEST\nserial=ABCD\nmaker=01\nrevision=0\nsecure-crc=0xFFFF\n"+
			"[rom]\nstorage-type=MROM\nfill-with=0xFF\n"+
			"[banner]\nversion=1\ntitle=HELLO\n"+
			"[arm9]\nstatic-binary=%s\ndefinitions=%s\n"+
			"[arm7]\nstatic-binary=%s\ndefinitions=%s\n",
		arm9, arm9def, arm7, arm7def,
	)

	p := nitrorom.New()
	defer p.Dispose()

	if err := p.LoadConfig(cfg); err != nil {
		panic(err)
	}
	if err := p.Seal(); err != nil {
		panic(err)
	}

	var image bytes.Buffer
	if err := p.Dump(&image); err != nil {
		panic(err)
	}

	fmt.Println(image.Len())
	// Output:
	// 20032
}
