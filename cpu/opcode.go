package cpu

import (
	"fmt"
	"strings"
)

// Instruction is a decoded CHIP-8 operation.
type Instruction int

const (
	INS_INVALID   = Instruction(iota) // .word
	INS_CLS                           // 00E0
	INS_RET                           // 00EE
	INS_JP                            // 1nnn
	INS_CALL                          // 2nnn
	INS_SE_BYTE                       // 3xkk
	INS_SNE_BYTE                      // 4xkk
	INS_SE_REG                        // 5xy0
	INS_LD_BYTE                       // 6xkk
	INS_ADD_BYTE                      // 7xkk
	INS_LD_REG                        // 8xy0
	INS_OR                            // 8xy1
	INS_AND                           // 8xy2
	INS_XOR                           // 8xy3
	INS_ADD_REG                       // 8xy4
	INS_SUB                           // 8xy5
	INS_SHR                           // 8xy6
	INS_SUBN                          // 8xy7
	INS_SHL                           // 8xyE
	INS_SNE_REG                       // 9xy0
	INS_LD_I                          // Annn
	INS_JP_V0                         // Bnnn
	INS_RND                           // Cxkk
	INS_DRW                           // Dxyn
	INS_SKP                           // Ex9E
	INS_SKNP                          // ExA1
	INS_LD_VX_DT                      // Fx07
	INS_LD_VX_K                       // Fx0A
	INS_LD_DT_VX                      // Fx15
	INS_LD_ST_VX                      // Fx18
	INS_ADD_I                         // Fx1E
	INS_LD_F                          // Fx29
	INS_LD_B                          // Fx33
	INS_LD_MEM_VX                     // Fx55
	INS_LD_VX_MEM                     // Fx65
)

// Operand placeholders used by the opcode table. Any other operand is a
// literal keyword that must appear verbatim.
const (
	OPERAND_VX  = "v{x}"
	OPERAND_VY  = "v{y}"
	OPERAND_N   = "{n}"
	OPERAND_KK  = "{kk}"
	OPERAND_NNN = "{nnn}"
)

// OpcodeInfo describes the encoding and assembly syntax of an instruction.
type OpcodeInfo struct {
	Instruction Instruction
	Mask        uint16   // Bits that identify the instruction.
	Value       uint16   // Value of the identifying bits.
	Name        string   // Mnemonic.
	Operands    []string // Operand templates.
}

// Opcodes is the table of all defined instructions, indexed by Instruction.
var Opcodes = []OpcodeInfo{
	{INS_INVALID, 0x0000, 0x0000, ".word", []string{"{word}"}},
	{INS_CLS, 0xffff, 0x00e0, "cls", nil},
	{INS_RET, 0xffff, 0x00ee, "ret", nil},
	{INS_JP, 0xf000, 0x1000, "jp", []string{OPERAND_NNN}},
	{INS_CALL, 0xf000, 0x2000, "call", []string{OPERAND_NNN}},
	{INS_SE_BYTE, 0xf000, 0x3000, "se", []string{OPERAND_VX, OPERAND_KK}},
	{INS_SNE_BYTE, 0xf000, 0x4000, "sne", []string{OPERAND_VX, OPERAND_KK}},
	{INS_SE_REG, 0xf00f, 0x5000, "se", []string{OPERAND_VX, OPERAND_VY}},
	{INS_LD_BYTE, 0xf000, 0x6000, "ld", []string{OPERAND_VX, OPERAND_KK}},
	{INS_ADD_BYTE, 0xf000, 0x7000, "add", []string{OPERAND_VX, OPERAND_KK}},
	{INS_LD_REG, 0xf00f, 0x8000, "ld", []string{OPERAND_VX, OPERAND_VY}},
	{INS_OR, 0xf00f, 0x8001, "or", []string{OPERAND_VX, OPERAND_VY}},
	{INS_AND, 0xf00f, 0x8002, "and", []string{OPERAND_VX, OPERAND_VY}},
	{INS_XOR, 0xf00f, 0x8003, "xor", []string{OPERAND_VX, OPERAND_VY}},
	{INS_ADD_REG, 0xf00f, 0x8004, "add", []string{OPERAND_VX, OPERAND_VY}},
	{INS_SUB, 0xf00f, 0x8005, "sub", []string{OPERAND_VX, OPERAND_VY}},
	{INS_SHR, 0xf00f, 0x8006, "shr", []string{OPERAND_VX, OPERAND_VY}},
	{INS_SUBN, 0xf00f, 0x8007, "subn", []string{OPERAND_VX, OPERAND_VY}},
	{INS_SHL, 0xf00f, 0x800e, "shl", []string{OPERAND_VX, OPERAND_VY}},
	{INS_SNE_REG, 0xf00f, 0x9000, "sne", []string{OPERAND_VX, OPERAND_VY}},
	{INS_LD_I, 0xf000, 0xa000, "ld", []string{"i", OPERAND_NNN}},
	{INS_JP_V0, 0xf000, 0xb000, "jp", []string{"v0", OPERAND_NNN}},
	{INS_RND, 0xf000, 0xc000, "rnd", []string{OPERAND_VX, OPERAND_KK}},
	{INS_DRW, 0xf000, 0xd000, "drw", []string{OPERAND_VX, OPERAND_VY, OPERAND_N}},
	{INS_SKP, 0xf0ff, 0xe09e, "skp", []string{OPERAND_VX}},
	{INS_SKNP, 0xf0ff, 0xe0a1, "sknp", []string{OPERAND_VX}},
	{INS_LD_VX_DT, 0xf0ff, 0xf007, "ld", []string{OPERAND_VX, "dt"}},
	{INS_LD_VX_K, 0xf0ff, 0xf00a, "ld", []string{OPERAND_VX, "k"}},
	{INS_LD_DT_VX, 0xf0ff, 0xf015, "ld", []string{"dt", OPERAND_VX}},
	{INS_LD_ST_VX, 0xf0ff, 0xf018, "ld", []string{"st", OPERAND_VX}},
	{INS_ADD_I, 0xf0ff, 0xf01e, "add", []string{"i", OPERAND_VX}},
	{INS_LD_F, 0xf0ff, 0xf029, "ld", []string{"f", OPERAND_VX}},
	{INS_LD_B, 0xf0ff, 0xf033, "ld", []string{"b", OPERAND_VX}},
	{INS_LD_MEM_VX, 0xf0ff, 0xf055, "ld", []string{"[i]", OPERAND_VX}},
	{INS_LD_VX_MEM, 0xf0ff, 0xf065, "ld", []string{OPERAND_VX, "[i]"}},
}

// opcodeFamily groups the opcode table by the top nibble of the word.
var opcodeFamily [16][]*OpcodeInfo

func init() {
	for n := range Opcodes {
		info := &Opcodes[n]
		if info.Instruction == INS_INVALID {
			continue
		}
		family := (info.Value & 0xf000) >> 12
		opcodeFamily[family] = append(opcodeFamily[family], info)
	}
}

// String returns the mnemonic of the instruction.
func (ins Instruction) String() string {
	if ins < 0 || int(ins) >= len(Opcodes) {
		return fmt.Sprintf("Instruction(%d)", int(ins))
	}
	return Opcodes[ins].Name
}

// Info returns the opcode table entry for the instruction.
func (ins Instruction) Info() *OpcodeInfo {
	if ins < 0 || int(ins) >= len(Opcodes) {
		return &Opcodes[INS_INVALID]
	}
	return &Opcodes[ins]
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCode creates an instruction word with no operands.
func MakeCode(ins Instruction) Code {
	return Code(ins.Info().Value)
}

// MakeCodeNNN creates an instruction word with an address operand.
func MakeCodeNNN(ins Instruction, nnn uint16) Code {
	return Code(ins.Info().Value | (nnn & 0x0fff))
}

// MakeCodeX creates an instruction word with a single register operand.
func MakeCodeX(ins Instruction, x uint8) Code {
	return Code(ins.Info().Value | (uint16(x&0xf) << 8))
}

// MakeCodeXKK creates an instruction word with a register and byte operand.
func MakeCodeXKK(ins Instruction, x uint8, kk uint8) Code {
	return Code(ins.Info().Value | (uint16(x&0xf) << 8) | uint16(kk))
}

// MakeCodeXY creates an instruction word with two register operands.
func MakeCodeXY(ins Instruction, x, y uint8) Code {
	return Code(ins.Info().Value | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4))
}

// MakeCodeXYN creates an instruction word with two registers and a nibble.
func MakeCodeXYN(ins Instruction, x, y, n uint8) Code {
	return Code(ins.Info().Value | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(n&0xf))
}

// Family returns the top nibble of the word.
func (code Code) Family() uint8 {
	return uint8((code & 0xf000) >> 12)
}

// X returns the register index in bits 8-11.
func (code Code) X() uint8 {
	return uint8((code & 0x0f00) >> 8)
}

// Y returns the register index in bits 4-7.
func (code Code) Y() uint8 {
	return uint8((code & 0x00f0) >> 4)
}

// N returns the literal nibble in bits 0-3.
func (code Code) N() uint8 {
	return uint8(code & 0x000f)
}

// KK returns the literal byte in bits 0-7.
func (code Code) KK() uint8 {
	return uint8(code & 0x00ff)
}

// NNN returns the literal address in bits 0-11.
func (code Code) NNN() uint16 {
	return uint16(code & 0x0fff)
}

// Decode returns the instruction of the word, or INS_INVALID if the word
// matches no defined encoding.
func (code Code) Decode() Instruction {
	word := uint16(code)
	for _, info := range opcodeFamily[code.Family()] {
		if word&info.Mask == info.Value {
			return info.Instruction
		}
	}

	return INS_INVALID
}

// Operands returns the disassembled operands of the word.
func (code Code) Operands() (operands []string) {
	info := code.Decode().Info()

	if info.Instruction == INS_INVALID {
		return []string{fmt.Sprintf("0x%04x", uint16(code))}
	}

	for _, op := range info.Operands {
		switch op {
		case OPERAND_VX:
			op = fmt.Sprintf("v%x", code.X())
		case OPERAND_VY:
			op = fmt.Sprintf("v%x", code.Y())
		case OPERAND_N:
			op = fmt.Sprintf("%d", code.N())
		case OPERAND_KK:
			op = fmt.Sprintf("0x%02x", code.KK())
		case OPERAND_NNN:
			op = fmt.Sprintf("0x%03x", code.NNN())
		}
		operands = append(operands, op)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	name := code.Decode().String()
	operands := code.Operands()
	if len(operands) == 0 {
		return name
	}

	return name + " " + strings.Join(operands, ", ")
}
