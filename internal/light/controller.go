// Package light holds the per-channel brightness state and turns
// brightness changes into chip commits.
package light

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sioled/sioled/internal/nct6795d"
)

// ErrBrightnessRange reports a level outside the chip's 4-bit range.
var ErrBrightnessRange = errors.New("light: brightness outside 0..15")

// Config carries the construction parameters for a Controller.
type Config struct {
	// Initial per-channel levels, committed at construction so the
	// configured startup colors are visible immediately.
	Initial [nct6795d.NumChannels]uint8
}

// Controller owns the brightness state of the three channels of one
// RGB header.
type Controller struct {
	mu     sync.Mutex
	prog   *nct6795d.Programmer
	levels [nct6795d.NumChannels]uint8
	log    zerolog.Logger
}

// New programs the chip with the configured startup levels: a full
// Setup followed by a commit of all three channels.
func New(prog *nct6795d.Programmer, cfg Config, logger zerolog.Logger) (*Controller, error) {
	for ch := nct6795d.Red; ch < nct6795d.NumChannels; ch++ {
		if cfg.Initial[ch] > nct6795d.MaxBrightness {
			return nil, fmt.Errorf("%s initial level %d: %w", ch, cfg.Initial[ch], ErrBrightnessRange)
		}
	}

	c := &Controller{prog: prog, levels: cfg.Initial, log: logger}
	if err := c.reprogram(); err != nil {
		return nil, err
	}
	logger.Info().
		Uint8("red", c.levels[nct6795d.Red]).
		Uint8("green", c.levels[nct6795d.Green]).
		Uint8("blue", c.levels[nct6795d.Blue]).
		Msg("startup colors committed")
	return c, nil
}

// SetBrightness updates one channel and commits only that channel,
// leaving the others' last-written hardware state untouched.
func (c *Controller) SetBrightness(ch nct6795d.Channel, level uint8) error {
	if ch < 0 || ch >= nct6795d.NumChannels {
		return fmt.Errorf("light: invalid channel %d", ch)
	}
	if level > nct6795d.MaxBrightness {
		return fmt.Errorf("%s level %d: %w", ch, level, ErrBrightnessRange)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[ch] = level
	if err := c.prog.Commit(c.levels, nct6795d.MaskOf(ch)); err != nil {
		return err
	}
	c.log.Debug().Stringer("channel", ch).Uint8("level", level).Msg("brightness set")
	return nil
}

// Brightness returns the current level of one channel.
func (c *Controller) Brightness(ch nct6795d.Channel) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[ch]
}

// Levels returns a snapshot of all three channels.
func (c *Controller) Levels() [nct6795d.NumChannels]uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels
}

// Suspend does nothing; the controller keeps all state in memory and
// the chip is reprogrammed from scratch on resume.
func (c *Controller) Suspend() {}

// Resume reprograms the chip after a suspend cycle. The hardware has
// been observed to need the whole sequence twice in a row to take
// effect reliably, so the first pass is allowed to fail and a second
// one always follows.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reprogram(); err != nil {
		c.log.Warn().Err(err).Msg("first resume pass failed")
	}
	if err := c.reprogram(); err != nil {
		return err
	}
	c.log.Info().Msg("resume reprogram done")
	return nil
}

func (c *Controller) reprogram() error {
	if err := c.prog.Setup(); err != nil {
		return err
	}
	return c.prog.Commit(c.levels, nct6795d.AllChannels)
}
