package superio_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sioled/sioled/internal/superio"
	"github.com/sioled/sioled/internal/superio/siotest"
)

const basePort = 0x4e

func TestEnterUnlocksChip(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, chip.Unlocked())
	assert.Equal(t, 1, chip.Enters())
}

func TestEnterWhileHeldIsBusy(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	defer s.Close()

	_, err = bus.Enter(basePort)
	assert.ErrorIs(t, err, superio.ErrBusy)
	// Busy failure must not have touched the chip.
	assert.Equal(t, 1, chip.Enters())
}

func TestCloseLocksAndReleases(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.False(t, chip.Unlocked())
	assert.Equal(t, 1, chip.Exits())

	// The claim is released: a new session can start.
	s2, err := bus.Enter(basePort)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
	assert.Equal(t, 2, chip.Enters())
}

func TestCloseIsIdempotent(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 1, chip.Exits())
}

func TestReadWriteRoundTrip(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Select(0x12))
	require.NoError(t, s.WriteByte(0xf0, 0xaa))

	got, err := s.ReadByte(0xf0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), got)
	assert.Equal(t, byte(0xaa), chip.Reg(0x12, 0xf0))
}

func TestSelectScopesRegisters(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Select(0x09))
	require.NoError(t, s.WriteByte(0x2c, 0x10))
	require.NoError(t, s.Select(0x12))

	got, err := s.ReadByte(0x2c)
	require.NoError(t, err)
	assert.Equal(t, byte(0), got, "register must be scoped to its logical device")
	assert.Equal(t, byte(0x10), chip.Reg(0x09, 0x2c))
}

func TestDeviceIDReadable(t *testing.T) {
	chip := siotest.New(basePort, 0xd457)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	defer s.Close()

	hi, err := s.ReadByte(0x20)
	require.NoError(t, err)
	lo, err := s.ReadByte(0x21)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xd457), uint16(hi)<<8|uint16(lo))
}

func TestLockedChipHidesRegisters(t *testing.T) {
	chip := siotest.New(basePort, 0xd351)
	chip.SetReg(0x12, 0xf0, 0xaa)
	bus := superio.New(chip)

	s, err := bus.Enter(basePort)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Direct reads after lock see nothing.
	got, err := chip.Inb(basePort + 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), got)
}

func TestEnterFailureReleasesClaim(t *testing.T) {
	board := siotest.Board{} // no chip anywhere
	bus := superio.New(board)

	_, err := bus.Enter(basePort)
	require.Error(t, err)
	assert.False(t, errors.Is(err, superio.ErrBusy))

	// The failed Enter must not leave the port claimed forever.
	_, err = bus.Enter(basePort)
	require.Error(t, err)
	assert.False(t, errors.Is(err, superio.ErrBusy))
}
