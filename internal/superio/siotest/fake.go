// Package siotest provides an in-memory model of a Super-I/O chip's
// configuration space. It backs the package tests and the daemon's
// simulation driver, standing in for real hardware the same way the
// cube project's fake LED driver stood in for its SPI strip.
package siotest

import (
	"fmt"
	"sync"
)

// Write records one data-register write that reached the chip's
// configuration space while it was unlocked. Logical-device selects
// are tracked separately and do not appear here.
type Write struct {
	LD  byte // logical device selected at the time of the write
	Reg byte
	Val byte
}

// Chip models a single Super-I/O chip at a fixed base port. Reads and
// writes outside an unlocked state are ignored (reads return 0xff),
// matching how the real chip hides its configuration space when
// locked.
type Chip struct {
	base uint16
	id   uint16

	mu       sync.Mutex
	unlocked bool
	keyCount int // consecutive unlock-key writes seen while locked
	index    byte
	ld       byte
	regs     map[byte]map[byte]byte

	writes  []Write
	selects []byte
	enters  int
	exits   int
}

const (
	unlockKey = 0x87
	lockKey   = 0xaa

	regLogicalDevSel = 0x07
	regDevIDHigh     = 0x20
	regDevIDLow      = 0x21
)

// New returns a chip at base reporting the given 16-bit device ID.
func New(base, id uint16) *Chip {
	return &Chip{base: base, id: id, regs: map[byte]map[byte]byte{}}
}

// Base returns the chip's index-register port.
func (c *Chip) Base() uint16 { return c.base }

// Inb implements superio.PortIO for the chip's two ports.
func (c *Chip) Inb(port uint16) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch port {
	case c.base:
		return c.index, nil
	case c.base + 1:
		if !c.unlocked {
			return 0xff, nil
		}
		switch c.index {
		case regDevIDHigh:
			return byte(c.id >> 8), nil
		case regDevIDLow:
			return byte(c.id), nil
		case regLogicalDevSel:
			return c.ld, nil
		}
		return c.regs[c.ld][c.index], nil
	}
	return 0, fmt.Errorf("siotest: no device at port %#x", port)
}

// Outb implements superio.PortIO for the chip's two ports.
func (c *Chip) Outb(port uint16, val byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch port {
	case c.base:
		if !c.unlocked {
			if val == unlockKey {
				c.keyCount++
				if c.keyCount == 2 {
					c.unlocked = true
					c.enters++
				}
			} else {
				c.keyCount = 0
			}
			return nil
		}
		if val == lockKey {
			c.unlocked = false
			c.keyCount = 0
			c.exits++
			return nil
		}
		c.index = val
		return nil
	case c.base + 1:
		if !c.unlocked {
			return nil
		}
		if c.index == regLogicalDevSel {
			c.ld = val
			c.selects = append(c.selects, val)
			return nil
		}
		if c.regs[c.ld] == nil {
			c.regs[c.ld] = map[byte]byte{}
		}
		c.regs[c.ld][c.index] = val
		c.writes = append(c.writes, Write{LD: c.ld, Reg: c.index, Val: val})
		return nil
	}
	return fmt.Errorf("siotest: no device at port %#x", port)
}

// Reg returns the current value of a register, zero if never written.
func (c *Chip) Reg(ld, reg byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[ld][reg]
}

// SetReg presets a register value, as if firmware had programmed it.
func (c *Chip) SetReg(ld, reg, val byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regs[ld] == nil {
		c.regs[ld] = map[byte]byte{}
	}
	c.regs[ld][reg] = val
}

// Writes returns a copy of the recorded register writes.
func (c *Chip) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Write(nil), c.writes...)
}

// ResetLog clears the recorded writes and selects.
func (c *Chip) ResetLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = nil
	c.selects = nil
}

// Enters and Exits count completed unlock and lock sequences.
func (c *Chip) Enters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enters
}

func (c *Chip) Exits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exits
}

// Unlocked reports whether the configuration space is currently open.
func (c *Chip) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

// Board routes port accesses to one of several chips, so detection can
// be exercised against multiple candidate base ports.
type Board []*Chip

func (b Board) chipAt(port uint16) *Chip {
	for _, c := range b {
		if port == c.base || port == c.base+1 {
			return c
		}
	}
	return nil
}

func (b Board) Inb(port uint16) (byte, error) {
	c := b.chipAt(port)
	if c == nil {
		return 0, fmt.Errorf("siotest: no device at port %#x", port)
	}
	return c.Inb(port)
}

func (b Board) Outb(port uint16, val byte) error {
	c := b.chipAt(port)
	if c == nil {
		return fmt.Errorf("siotest: no device at port %#x", port)
	}
	return c.Outb(port, val)
}
