package nct6795d

import (
	"fmt"

	"github.com/sioled/sioled/internal/superio"
)

// Programmer drives the RGB effect bank of a detected chip. Every
// method opens its own bus session and closes it before returning; a
// session Enter failure aborts the whole operation before any register
// is written.
type Programmer struct {
	bus     *superio.Bus
	port    uint16
	variant Variant
}

// NewProgrammer returns a Programmer for the chip found at port.
func NewProgrammer(bus *superio.Bus, port uint16, variant Variant) *Programmer {
	return &Programmer{bus: bus, port: port, variant: variant}
}

// Port returns the base port the programmer talks to.
func (p *Programmer) Port() uint16 { return p.port }

// Variant returns the detected chip model.
func (p *Programmer) Variant() Variant { return p.variant }

// Setup enables the lighting clock and the effect outputs and programs
// the static effect defaults. It must run before the first Commit and
// again after a resume from suspend, since the chip loses this state
// across a suspend cycle. Every step reads first and only writes when
// the register does not already hold the wanted bits, so a second call
// against unchanged hardware performs no writes, and bits owned by
// other functions of the chip are never cleared.
func (p *Programmer) Setup() error {
	s, err := p.bus.Enter(p.port)
	if err != nil {
		return err
	}
	defer s.Close()

	// Vendor notes: without the clock enable no effect reaches the
	// pins, static output included.
	if err := s.Select(ldACPI); err != nil {
		return err
	}
	if err := setBits(s, regClockEn, clockEnBit); err != nil {
		return err
	}

	if err := s.Select(ldRGB); err != nil {
		return err
	}
	if err := setBits(s, regGlobalEn, globalEnBits); err != nil {
		return err
	}

	flags := byte(effectFlagLEDOn)
	if p.variant == NCT6797D {
		flags |= effectFlagNoBoard
	}
	defaults := []struct{ reg, val byte }{
		{regEffect, 0}, // no fade-in, no inversion
		{regStepLo, defaultStepLo},
		{regEffectFlags, flags}, // solid output, no pulse, no blink
	}
	for _, d := range defaults {
		if err := writeIfChanged(s, d.reg, d.val); err != nil {
			return err
		}
	}
	return nil
}

// Commit writes the brightness of every channel present in mask to its
// cell registers, leaving the other channels at their last-written
// hardware state. Levels above MaxBrightness are rejected before any
// register is touched.
func (p *Programmer) Commit(levels [NumChannels]uint8, mask Mask) error {
	for ch := Red; ch < NumChannels; ch++ {
		if mask.Has(ch) && levels[ch] > MaxBrightness {
			return fmt.Errorf("nct6795d: %s level %d out of range", ch, levels[ch])
		}
	}

	s, err := p.bus.Enter(p.port)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Select(ldRGB); err != nil {
		return err
	}
	for ch := Red; ch < NumChannels; ch++ {
		if !mask.Has(ch) {
			continue
		}
		b := encode(levels[ch])
		cell := ch.cell()
		for i := byte(0); i < cellLen; i++ {
			if err := s.WriteByte(cell+i, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// encode spreads a 4-bit level across both nibbles of a byte. The
// chip keeps 8 intensity nibbles per channel, one per animation frame;
// driving them all to the same value yields a constant color.
func encode(level uint8) byte { return level<<4 | level }

func setBits(s *superio.Session, reg, bits byte) error {
	v, err := s.ReadByte(reg)
	if err != nil {
		return err
	}
	if v&bits == bits {
		return nil
	}
	return s.WriteByte(reg, v|bits)
}

func writeIfChanged(s *superio.Session, reg, val byte) error {
	v, err := s.ReadByte(reg)
	if err != nil {
		return err
	}
	if v == val {
		return nil
	}
	return s.WriteByte(reg, val)
}
