package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

// Cpu is the simulation context for a single CHIP-8 machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Random  Random      // Byte source for the rnd instruction.
	Keypad  *io.Keypad  // Key state, written by the host.
	Display *io.Display // Framebuffer.

	Pc         uint16                // Address of the next instruction.
	I          uint16                // Index register.
	Register   [REGISTER_COUNT]uint8 // Register bank v0 - vf.
	Stack      Stack                 // Return address stack.
	DelayTimer uint8                 // Delay timer, decays once per tick.
	SoundTimer uint8                 // Sound timer, decays once per tick.
	Memory     [MEMORY_SIZE]byte     // Main memory.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU with its own keypad and display, seeded from
// the wall clock.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	cpu.Reset()

	return
}

// Defines for the cpu and its devices.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_cpu_defines),
		cpu.Keypad.Defines(),
		cpu.Display.Defines(),
	)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("%5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%5s: %03X\n", "i", cpu.I)
	text += fmt.Sprintf("%5s: %d\n", "sp", cpu.Stack.Depth())
	if top, ok := cpu.Stack.Peek(); ok {
		text += fmt.Sprintf("%5s: %03X\n", "stack", top)
	} else {
		text += fmt.Sprintf("%5s: ---\n", "stack")
	}
	text += fmt.Sprintf("%5s: %02X\n", "dt", cpu.DelayTimer)
	text += fmt.Sprintf("%5s: %02X\n", "st", cpu.SoundTimer)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("%5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}

	return
}

// Reset the CPU state.
//   - Clears the registers, timers, stack, memory and framebuffer.
//   - Installs the glyph set at FONT_BASE.
//   - Sets the program counter to PROGRAM_START.
//
// The keypad belongs to the host and is left untouched. Missing devices and
// a missing Random are installed, so a zero Cpu is usable after a Reset.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	if cpu.Keypad == nil {
		cpu.Keypad = &io.Keypad{}
	}
	if cpu.Display == nil {
		cpu.Display = &io.Display{}
	}
	if cpu.Random == nil {
		cpu.Random = NewRandom(uint64(time.Now().UnixNano()))
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Stack.Reset()
	cpu.I = 0
	cpu.DelayTimer = 0
	cpu.SoundTimer = 0
	cpu.Ticks = 0

	copy(cpu.Memory[FONT_BASE:], glyphs[:])

	cpu.Display.Reset()

	cpu.Pc = PROGRAM_START
}

// Load copies a program image into memory at PROGRAM_START.
// Memory is left unchanged if the image does not fit.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > PROGRAM_LIMIT {
		err = errors.Join(ErrProgramTooLarge, ErrAddress{Address: PROGRAM_START, Length: len(image)})
		return
	}

	copy(cpu.Memory[PROGRAM_START:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes", len(image))
	}

	return
}

// Sounding returns true while the sound timer is active.
func (cpu *Cpu) Sounding() bool {
	return cpu.SoundTimer > 0
}

// span returns a checked slice of memory.
func (cpu *Cpu) span(addr int, length int) (mem []byte, err error) {
	if addr < 0 || length < 0 || addr+length > MEMORY_SIZE {
		err = ErrAddress{Address: addr, Length: length}
		return
	}

	mem = cpu.Memory[addr : addr+length]
	return
}

// Fetch reads the instruction word at the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	mem, err := cpu.span(int(cpu.Pc), 2)
	if err != nil {
		return
	}

	code = Code(uint16(mem[0])<<8 | uint16(mem[1]))
	return
}

// Step executes a single CPU instruction cycle.
//
// A decode failure is reported as an error wrapping ErrOpcodeDecode, but the
// cycle still completes as a no-op. Any other error is a fault, and leaves
// the machine state untouched.
func (cpu *Cpu) Step() (err error) {
	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(code)

	return
}

// tickTimers decays the delay and sound timers.
func (cpu *Cpu) tickTimers() {
	if cpu.DelayTimer > 0 {
		cpu.DelayTimer--
	}
	if cpu.SoundTimer > 0 {
		cpu.SoundTimer--
	}
}

// setFlag writes vf.
func (cpu *Cpu) setFlag(set bool) {
	if set {
		cpu.Register[REGISTER_FLAG] = 1
	} else {
		cpu.Register[REGISTER_FLAG] = 0
	}
}

// Execute executes a single instruction word, as if fetched from Pc.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	next_pc := cpu.Pc + 2

	vx := &cpu.Register[code.X()]
	vy := cpu.Register[code.Y()]

	switch code.Decode() {
	case INS_CLS:
		cpu.Display.Clear()
	case INS_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		next_pc = addr
	case INS_JP:
		next_pc = code.NNN()
	case INS_CALL:
		if !cpu.Stack.Push(next_pc) {
			err = ErrStackFull
			return
		}
		next_pc = code.NNN()
	case INS_SE_BYTE:
		if *vx == code.KK() {
			next_pc += 2
		}
	case INS_SNE_BYTE:
		if *vx != code.KK() {
			next_pc += 2
		}
	case INS_SE_REG:
		if *vx == vy {
			next_pc += 2
		}
	case INS_SNE_REG:
		if *vx != vy {
			next_pc += 2
		}
	case INS_LD_BYTE:
		*vx = code.KK()
	case INS_ADD_BYTE:
		*vx += code.KK()
	case INS_LD_REG:
		*vx = vy
	case INS_OR:
		*vx |= vy
	case INS_AND:
		*vx &= vy
	case INS_XOR:
		*vx ^= vy
	case INS_ADD_REG:
		sum := uint16(*vx) + uint16(vy)
		*vx = uint8(sum)
		cpu.setFlag(sum > 0xff)
	case INS_SUB:
		result := *vx - vy
		cpu.setFlag(*vx >= vy)
		*vx = result
	case INS_SHR:
		result := *vx >> 1
		cpu.Register[REGISTER_FLAG] = *vx & 0x01
		*vx = result
	case INS_SUBN:
		result := vy - *vx
		cpu.setFlag(vy >= *vx)
		*vx = result
	case INS_SHL:
		result := *vx << 1
		cpu.Register[REGISTER_FLAG] = (*vx & 0x80) >> 7
		*vx = result
	case INS_LD_I:
		cpu.I = code.NNN()
	case INS_JP_V0:
		target := int(cpu.Register[0]) + int(code.NNN())
		_, err = cpu.span(target, 2)
		if err != nil {
			return
		}
		next_pc = uint16(target)
	case INS_RND:
		*vx = cpu.Random.Byte() & code.KK()
	case INS_DRW:
		err = cpu.draw(*vx, vy, code.N())
		if err != nil {
			return
		}
	case INS_SKP, INS_SKNP:
		var pressed bool
		pressed, err = cpu.Keypad.Pressed(*vx)
		if err != nil {
			return
		}
		if pressed == (code.Decode() == INS_SKP) {
			next_pc += 2
		}
	case INS_LD_VX_DT:
		*vx = cpu.DelayTimer
	case INS_LD_VX_K:
		key, ok := cpu.Keypad.FirstPressed()
		if ok {
			*vx = key
		} else {
			// Retry until a key is down.
			next_pc = cpu.Pc
		}
	case INS_LD_DT_VX:
		cpu.DelayTimer = *vx
	case INS_LD_ST_VX:
		cpu.SoundTimer = *vx
	case INS_ADD_I:
		sum := int(cpu.I) + int(*vx)
		if sum > 0xffff {
			err = ErrAddress{Address: sum, Length: 0}
			return
		}
		cpu.I = uint16(sum)
	case INS_LD_F:
		cpu.I = FONT_BASE + GLYPH_SIZE*uint16(*vx)
	case INS_LD_B:
		var mem []byte
		mem, err = cpu.span(int(cpu.I), 3)
		if err != nil {
			return
		}
		mem[0] = *vx / 100
		mem[1] = (*vx / 10) % 10
		mem[2] = *vx % 10
	case INS_LD_MEM_VX:
		var mem []byte
		mem, err = cpu.span(int(cpu.I), int(code.X())+1)
		if err != nil {
			return
		}
		copy(mem, cpu.Register[:code.X()+1])
	case INS_LD_VX_MEM:
		var mem []byte
		mem, err = cpu.span(int(cpu.I), int(code.X())+1)
		if err != nil {
			return
		}
		copy(cpu.Register[:code.X()+1], mem)
	default:
		// Unknown words are skipped, so the cycle still completes.
		log.Printf("cpu: %03x: unknown opcode %04x", cpu.Pc, uint16(code))
		err = ErrOpcodeDecode
	}

	cpu.Pc = next_pc
	cpu.tickTimers()
	cpu.Ticks += 1

	return
}

// draw XORs an n row sprite from memory at I onto the display at (x, y).
// The origin wraps around the screen, the sprite itself is clipped.
func (cpu *Cpu) draw(x, y uint8, n uint8) (err error) {
	sprite, err := cpu.span(int(cpu.I), int(n))
	if err != nil {
		return
	}

	ox := int(x) % io.SCREEN_WIDTH
	oy := int(y) % io.SCREEN_HEIGHT

	cpu.Register[REGISTER_FLAG] = 0

	for row, bits := range sprite {
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if cpu.Display.Toggle(ox+col, oy+row) {
				cpu.Register[REGISTER_FLAG] = 1
			}
		}
	}

	return
}
