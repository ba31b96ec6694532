package cpu

import (
	"fmt"
	"maps"

	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

// Memory layout.
const (
	MEMORY_SIZE   = 0x1000 // Total addressable memory.
	FONT_BASE     = 0x050  // Address of the hexadecimal glyph set.
	PROGRAM_START = 0x200  // Load address of program images.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_START

	REGISTER_COUNT = 16  // v0 - vf
	REGISTER_FLAG  = 0xf // Carry, borrow and collision flag.

	GLYPH_SIZE  = 5  // Bytes per glyph.
	GLYPH_COUNT = 16 // Glyphs 0-F.
)

// glyphs is the built-in hexadecimal font, 4x5 pixels per digit.
var glyphs = [GLYPH_COUNT * GLYPH_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the bitmap of a hexadecimal digit.
func Glyph(digit uint8) []byte {
	base := int(digit&0xf) * GLYPH_SIZE
	return glyphs[base : base+GLYPH_SIZE]
}

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"FONT_BASE":     fmt.Sprintf("%#x", FONT_BASE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"GLYPH_SIZE":    fmt.Sprintf("%v", GLYPH_SIZE),
}

// sysEquate is the set of predefined assembler equates.
var sysEquate = func() (equ map[string]string) {
	equ = map[string]string{
		"LINENO": "0",
	}
	maps.Insert(equ, internal.IterSeq2Concat(maps.All(_cpu_defines),
		(&io.Keypad{}).Defines(),
		(&io.Display{}).Defines(),
	))
	return
}()
