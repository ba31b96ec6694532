package io

import (
	"fmt"
	"iter"
	"maps"
	"sync"
)

const (
	KEY_COUNT = 16 // Keys 0-F.
)

// Keypad is the sixteen key hexadecimal input device.
//
// The host is the only writer. Readers take a shared lock, so key updates
// from a separate input goroutine are safe while the CPU is stepping.
type Keypad struct {
	mutex sync.RWMutex
	keys  [KEY_COUNT]bool
}

var _ Device = (*Keypad)(nil)

// Defines returns an iter of defines for the keypad.
func (kp *Keypad) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"KEY_COUNT": fmt.Sprintf("%v", KEY_COUNT),
	})
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	clear(kp.keys[:])
}

// Set the state of a key.
func (kp *Keypad) Set(key uint8, pressed bool) (err error) {
	if key >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.mutex.Lock()
	kp.keys[key] = pressed
	kp.mutex.Unlock()

	return
}

// Press a key.
func (kp *Keypad) Press(key uint8) error {
	return kp.Set(key, true)
}

// Release a key.
func (kp *Keypad) Release(key uint8) error {
	return kp.Set(key, false)
}

// Pressed returns true if the key is currently down.
func (kp *Keypad) Pressed(key uint8) (pressed bool, err error) {
	if key >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.mutex.RLock()
	pressed = kp.keys[key]
	kp.mutex.RUnlock()

	return
}

// FirstPressed returns the lowest numbered key that is down.
func (kp *Keypad) FirstPressed() (key uint8, ok bool) {
	kp.mutex.RLock()
	defer kp.mutex.RUnlock()

	for n, pressed := range kp.keys {
		if pressed {
			return uint8(n), true
		}
	}

	return
}

// Snapshot returns a copy of all key states.
func (kp *Keypad) Snapshot() (keys [KEY_COUNT]bool) {
	kp.mutex.RLock()
	keys = kp.keys
	kp.mutex.RUnlock()

	return
}
