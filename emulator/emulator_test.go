package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.False(emu.Strict)
	assert.NotNil(emu.Cpu.Keypad)
	assert.NotNil(emu.Cpu.Display)
	assert.Equal(uint16(cpu.PROGRAM_START), emu.Cpu.Pc)

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("0x200", defines["PROGRAM_START"])
	assert.Equal("64", defines["SCREEN_WIDTH"])
	assert.Equal("16", defines["KEY_COUNT"])
}

func doAssemble(emu *Emulator, program []string, t *testing.T) {
	err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"; count to three",
		"      ld v0, 0",
		"loop: add v0, 1",
		"      se v0, 3",
		"      jp loop",
		"done: jp done",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	lines := []int{2, 3, 4, 5, 3, 4, 5, 3, 4, 6, 6}
	for _, line := range lines {
		assert.Equal(line, emu.LineNo())
		assert.NoError(emu.Tick())
	}

	assert.Equal(uint8(3), emu.Cpu.Register[0])
	assert.Equal(len(lines), emu.Ticks())
}

func TestEmulatorDraw(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"      ld v0, 0xa",
		"      ld f, v0",
		"      ld v1, $(SCREEN_WIDTH - 4)",
		"      ld v2, 0",
		"      drw v1, v2, GLYPH_SIZE",
		"      ld st, v0",
		"halt: jp halt",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	err := emu.Run(6)
	assert.NoError(err)

	assert.True(emu.Display.Flush())
	assert.False(emu.Display.Flush())
	assert.True(emu.Sounding())

	rows := strings.Split(emu.Display.String(), "\n")
	assert.Equal(33, len(rows))
	assert.Equal("####", rows[0][60:])
	assert.Equal("#..#", rows[1][60:])
	assert.Equal("####", rows[2][60:])
	assert.Equal("#..#", rows[3][60:])
	assert.Equal("#..#", rows[4][60:])
	assert.Equal(strings.Repeat(".", 64), rows[5])

	// Ten more ticks run the sound timer down.
	err = emu.Run(10)
	assert.NoError(err)
	assert.False(emu.Sounding())
	assert.Equal(uint16(0x20c), emu.Cpu.Pc)
}

func TestEmulatorKeypad(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"wait: ld v5, k",
		"      skp v5",
		"      jp wait",
		"halt: jp halt",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	assert.NoError(emu.Run(5))
	assert.Equal(uint16(0x200), emu.Cpu.Pc)

	assert.NoError(emu.Keypad.Press(0x7))
	assert.NoError(emu.Run(3))
	assert.Equal(uint16(0x206), emu.Cpu.Pc)
	assert.Equal(uint8(0x7), emu.Cpu.Register[5])

	// Reset releases the keys.
	assert.NoError(emu.Reset())
	assert.Equal([16]bool{}, emu.Keypad.Snapshot())
}

func TestEmulatorDecode(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".word 0xffff",
		"cls",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	assert.NoError(emu.Tick())
	assert.Equal(uint16(0x202), emu.Cpu.Pc)

	emu.Strict = true
	assert.NoError(emu.Reset())

	err := emu.Tick()
	assert.ErrorIs(err, cpu.ErrOpcodeDecode)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(1, runtime.LineNo)
	}
	assert.Equal(uint16(0x202), emu.Cpu.Pc)
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"cls",
		"cls",
		"ret",
		"cls",
	}

	emu := NewEmulator()
	doAssemble(emu, program, t)

	err := emu.Run(10)
	assert.ErrorIs(err, cpu.ErrStackEmpty)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(3, runtime.LineNo)
	}
	assert.Equal(uint16(0x204), emu.Cpu.Pc)
	assert.Equal(2, emu.Ticks())
	assert.Equal(cpu.Code(0x00ee), emu.Code())
}

func TestEmulatorImage(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Image = []byte{0x61, 0x2a, 0x12, 0x02}

	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(3))
	assert.Equal(uint8(0x2a), emu.Cpu.Register[1])
	assert.Equal(0, emu.LineNo())

	emu.Image = make([]byte, cpu.PROGRAM_LIMIT+1)
	err := emu.Reset()
	assert.ErrorIs(err, cpu.ErrProgramTooLarge)
}

func TestEmulatorRandom(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"rnd v0, 0xff",
		"rnd v1, 0xff",
		"rnd v2, 0x0f",
	}

	emu := NewEmulator()
	emu.Cpu.Random = &cpu.Sequence{Data: []byte{0x12, 0x34, 0x56}}
	doAssemble(emu, program, t)

	assert.NoError(emu.Run(3))
	assert.Equal(uint8(0x12), emu.Cpu.Register[0])
	assert.Equal(uint8(0x34), emu.Cpu.Register[1])
	assert.Equal(uint8(0x06), emu.Cpu.Register[2])

	// Same seed, same sequence.
	first := NewEmulator()
	first.Cpu.Random = cpu.NewRandom(42)
	doAssemble(first, program, t)
	second := NewEmulator()
	second.Cpu.Random = cpu.NewRandom(42)
	doAssemble(second, program, t)

	assert.NoError(first.Run(3))
	assert.NoError(second.Run(3))
	assert.Equal(first.Cpu.Register, second.Cpu.Register)
}
