package nct6795d_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sioled/sioled/internal/nct6795d"
	"github.com/sioled/sioled/internal/superio"
	"github.com/sioled/sioled/internal/superio/siotest"
)

func TestDetectClassifiesDeviceIDs(t *testing.T) {
	cases := []struct {
		name    string
		id      uint16
		variant nct6795d.Variant
		found   bool
	}{
		{"nct6795d low revision", 0xd350, nct6795d.NCT6795D, true},
		{"nct6795d", 0xd351, nct6795d.NCT6795D, true},
		{"nct6795d high revision", 0xd357, nct6795d.NCT6795D, true},
		{"nct6797d", 0xd450, nct6795d.NCT6797D, true},
		{"nct6797d high revision", 0xd457, nct6795d.NCT6797D, true},
		{"unrelated nuvoton part", 0xc562, 0, false},
		{"bus floating high", 0xffff, 0, false},
		{"bus floating low", 0x0000, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chip := siotest.New(0x4e, tc.id)
			bus := superio.New(siotest.Board{chip})

			port, variant, err := nct6795d.Detect(bus, []uint16{0x4e})
			if !tc.found {
				assert.ErrorIs(t, err, nct6795d.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint16(0x4e), port)
			assert.Equal(t, tc.variant, variant)
			// Probe sessions must all be closed again.
			assert.Equal(t, chip.Enters(), chip.Exits())
		})
	}
}

func TestDetectReturnsFirstMatch(t *testing.T) {
	board := siotest.Board{
		siotest.New(0x4e, 0xd351),
		siotest.New(0x2e, 0xd451),
	}
	bus := superio.New(board)

	port, variant, err := nct6795d.Detect(bus, []uint16{0x4e, 0x2e})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4e), port)
	assert.Equal(t, nct6795d.NCT6795D, variant)
}

func TestDetectSkipsUnansweringPort(t *testing.T) {
	chip := siotest.New(0x2e, 0xd352)
	bus := superio.New(siotest.Board{chip}) // nothing at 0x4e

	port, variant, err := nct6795d.Detect(bus, []uint16{0x4e, 0x2e})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2e), port)
	assert.Equal(t, nct6795d.NCT6795D, variant)
}

func TestDetectSkipsBusyPort(t *testing.T) {
	board := siotest.Board{
		siotest.New(0x4e, 0xd351),
		siotest.New(0x2e, 0xd451),
	}
	bus := superio.New(board)

	// Another consumer holds the first candidate.
	held, err := bus.Enter(0x4e)
	require.NoError(t, err)
	defer held.Close()

	port, variant, err := nct6795d.Detect(bus, []uint16{0x4e, 0x2e})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2e), port)
	assert.Equal(t, nct6795d.NCT6797D, variant)
}

func TestDetectExhaustedIsNotFound(t *testing.T) {
	bus := superio.New(siotest.Board{})

	_, _, err := nct6795d.Detect(bus, []uint16{0x4e, 0x2e})
	assert.ErrorIs(t, err, nct6795d.ErrNotFound)
}
