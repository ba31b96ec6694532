// Package cpu implements the CHIP-8 execution engine and assembler.
//
// The CPU consists of a program counter (Pc), a 16-bit index register (I),
// sixteen 8-bit general-purpose registers (v0-vf), a sixteen entry call
// stack, 4K of byte-addressed memory, and the delay and sound timers. The
// framebuffer and keypad live in the io package and are owned by the CPU.
//
// Register vf doubles as the carry, borrow and sprite collision flag.
//
// The assembler provides a Cowgod-style assembly language for the CHIP-8
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu
