package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int      // Source line number.
	Address   int      // Load address of the first byte.
	Words     []string // Source words, after equate substitution.
	Data      []byte   // Generated bytes.
	LinkLabel string   // Label resolved into the low 12 bits, if any.
}

// Program is an assembled CHIP-8 program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode that generated an address.
type Debug struct {
	*Opcode
	Index int // Byte offset within the opcode's data.
}

// Debug returns the opcode containing the address.
// The Opcode is nil if no opcode covers the address.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (image []byte) {
	for _, op := range prog.Opcodes {
		image = append(image, op.Data...)
	}

	return
}

// Codes returns an iterator over the instruction words of the program.
// Data directives of an odd length misalign the words that follow them.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		image := prog.Binary()
		for n := 0; n+1 < len(image); n += 2 {
			code := Code(uint16(image[n])<<8 | uint16(image[n+1]))
			if !yield(uint16(PROGRAM_START+n), code) {
				return
			}
		}
	}
}
