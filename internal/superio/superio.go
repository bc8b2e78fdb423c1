// Package superio implements the indexed register bus used to reach a
// Super-I/O chip through a pair of adjacent I/O ports (index register
// at the base port, data register at base+1).
//
// The chip's configuration space is only reachable inside a session:
// Enter claims the port pair and unlocks the chip, Close locks it back
// and releases the claim. The port pair is shared with other consumers
// on the same chip (hardware monitoring, fan control), so Enter never
// waits — it either acquires the claim immediately or fails with
// ErrBusy.
package superio

import (
	"errors"
	"fmt"
	"sync"
)

// PortIO is the raw byte-wide port access a Bus is built on. The real
// implementation is Ports; tests use an in-memory chip model.
type PortIO interface {
	Inb(port uint16) (byte, error)
	Outb(port uint16, val byte) error
}

// ErrBusy reports that the port pair is already claimed by another
// session. Callers decide whether to retry; the bus never does.
var ErrBusy = errors.New("superio: port pair busy")

// Extended Function Mode entry and exit key sequences, per the Nuvoton
// datasheets: two writes of 0x87 to the index port unlock the chip,
// 0xaa followed by 0x02/0x02 locks it again.
const (
	unlockKey = 0x87
	lockKey   = 0xaa
	lockArg   = 0x02
)

// regLogicalDevSel selects which logical device subsequent register
// accesses target.
const regLogicalDevSel = 0x07

// Bus arbitrates sessions over one or more Super-I/O port pairs
// reachable through a single PortIO backend.
type Bus struct {
	io PortIO

	mu      sync.Mutex
	claimed map[uint16]bool
}

// New returns a Bus over io.
func New(io PortIO) *Bus {
	return &Bus{io: io, claimed: map[uint16]bool{}}
}

// Enter claims the two-port range at base and unlocks the chip's
// configuration space. It fails with ErrBusy, without touching the
// hardware, when another session holds the claim. Every successful
// Enter must be matched by exactly one Session.Close, on every path.
func (b *Bus) Enter(base uint16) (*Session, error) {
	b.mu.Lock()
	if b.claimed[base] {
		b.mu.Unlock()
		return nil, fmt.Errorf("port %#x: %w", base, ErrBusy)
	}
	b.claimed[base] = true
	b.mu.Unlock()

	for i := 0; i < 2; i++ {
		if err := b.io.Outb(base, unlockKey); err != nil {
			b.release(base)
			return nil, fmt.Errorf("superio: unlock port %#x: %w", base, err)
		}
	}
	return &Session{bus: b, base: base}, nil
}

func (b *Bus) release(base uint16) {
	b.mu.Lock()
	delete(b.claimed, base)
	b.mu.Unlock()
}

// Session is an open, exclusive claim on a chip's configuration space.
// It is not safe for concurrent use and must not outlive the call that
// opened it.
type Session struct {
	bus    *Bus
	base   uint16
	closed bool
}

// Select makes logical device ld the target of subsequent register
// accesses.
func (s *Session) Select(ld byte) error {
	return s.WriteByte(regLogicalDevSel, ld)
}

// ReadByte reads register reg of the selected logical device.
func (s *Session) ReadByte(reg byte) (byte, error) {
	if err := s.bus.io.Outb(s.base, reg); err != nil {
		return 0, err
	}
	return s.bus.io.Inb(s.base + 1)
}

// WriteByte writes val to register reg of the selected logical device.
func (s *Session) WriteByte(reg, val byte) error {
	if err := s.bus.io.Outb(s.base, reg); err != nil {
		return err
	}
	return s.bus.io.Outb(s.base+1, val)
}

// Close locks the chip and releases the exclusive claim. Additional
// calls are no-ops, so it is safe to defer Close and also close early.
// The claim is released even when the lock sequence fails to write.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.bus.release(s.base)

	if err := s.bus.io.Outb(s.base, lockKey); err != nil {
		return fmt.Errorf("superio: lock port %#x: %w", s.base, err)
	}
	if err := s.bus.io.Outb(s.base, lockArg); err != nil {
		return fmt.Errorf("superio: lock port %#x: %w", s.base, err)
	}
	if err := s.bus.io.Outb(s.base+1, lockArg); err != nil {
		return fmt.Errorf("superio: lock port %#x: %w", s.base, err)
	}
	return nil
}
