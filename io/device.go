// Package io provides the peripheral devices of the CHIP-8 machine: the
// sixteen key hexadecimal Keypad and the 64x32 monochrome Display.
//
// Devices are owned by the CPU. The host writes key state into the Keypad
// between steps and reads the Display after them.
package io

import (
	"iter"
)

// Device defines the interface for all CHIP-8 peripherals.
type Device interface {
	// Reset returns the device to its power-on state.
	Reset()
	// Defines returns the assembler equates describing the device.
	Defines() iter.Seq2[string, string]
}
