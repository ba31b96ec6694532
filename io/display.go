package io

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

const (
	SCREEN_WIDTH  = 64
	SCREEN_HEIGHT = 32
)

// Display is the monochrome framebuffer.
type Display struct {
	On  rune // Rune used by String() for lit pixels. Defaults to '#'.
	Off rune // Rune used by String() for dark pixels. Defaults to '.'.

	Dirty bool // Set whenever the framebuffer changes.

	cell [SCREEN_HEIGHT][SCREEN_WIDTH]bool
}

var _ Device = (*Display)(nil)

// Defines returns an iter of defines for the display.
func (dp *Display) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"SCREEN_WIDTH":  fmt.Sprintf("%v", SCREEN_WIDTH),
		"SCREEN_HEIGHT": fmt.Sprintf("%v", SCREEN_HEIGHT),
	})
}

// Reset clears the framebuffer.
func (dp *Display) Reset() {
	dp.Clear()
}

// Clear turns off all pixels.
func (dp *Display) Clear() {
	for y := range dp.cell {
		clear(dp.cell[y][:])
	}
	dp.Dirty = true
}

// Pixel returns the state of a pixel. Pixels off-screen are always dark.
func (dp *Display) Pixel(x, y int) bool {
	if x < 0 || x >= SCREEN_WIDTH || y < 0 || y >= SCREEN_HEIGHT {
		return false
	}
	return dp.cell[y][x]
}

// Toggle inverts a pixel, and returns true if it was lit before.
// Pixels off-screen are clipped.
func (dp *Display) Toggle(x, y int) (erased bool) {
	if x < 0 || x >= SCREEN_WIDTH || y < 0 || y >= SCREEN_HEIGHT {
		return
	}
	erased = dp.cell[y][x]
	dp.cell[y][x] = !erased
	dp.Dirty = true
	return
}

// Rows returns an iterator over each row of pixels.
// The yielded slice aliases the framebuffer.
func (dp *Display) Rows() iter.Seq2[int, []bool] {
	return func(yield func(y int, row []bool) bool) {
		for y := range dp.cell {
			if !yield(y, dp.cell[y][:]) {
				return
			}
		}
	}
}

// Lit returns the number of lit pixels.
func (dp *Display) Lit() (count int) {
	for _, row := range dp.Rows() {
		for _, on := range row {
			if on {
				count++
			}
		}
	}
	return
}

// Flush clears the dirty flag, returning its prior value.
func (dp *Display) Flush() (dirty bool) {
	dirty = dp.Dirty
	dp.Dirty = false
	return
}

// String renders the framebuffer as text, one line per row.
func (dp *Display) String() string {
	on, off := dp.On, dp.Off
	if on == 0 {
		on = '#'
	}
	if off == 0 {
		off = '.'
	}

	var sb strings.Builder
	for _, row := range dp.Rows() {
		for _, lit := range row {
			if lit {
				sb.WriteRune(on)
			} else {
				sb.WriteRune(off)
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
