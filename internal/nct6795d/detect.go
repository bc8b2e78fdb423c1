package nct6795d

import (
	"errors"
	"fmt"

	"github.com/sioled/sioled/internal/superio"
)

// ErrNotFound reports that no supported chip answered at any of the
// candidate ports.
var ErrNotFound = errors.New("nct6795d: no supported chip found")

// Variant is the chip model identified during detection.
type Variant int

const (
	Unknown Variant = iota
	NCT6795D
	NCT6797D
)

func (v Variant) String() string {
	switch v {
	case NCT6795D:
		return "NCT6795D"
	case NCT6797D:
		return "NCT6797D"
	}
	return "unknown"
}

// Detect probes the candidate base ports in order and returns the
// first one where a supported chip answers, along with its variant.
// Candidates that are busy, unreadable or report an unknown device ID
// are skipped, never retried. When the list is exhausted it returns
// ErrNotFound.
func Detect(bus *superio.Bus, ports []uint16) (uint16, Variant, error) {
	for _, port := range ports {
		v, err := probe(bus, port)
		if err != nil {
			continue
		}
		return port, v, nil
	}
	return 0, Unknown, ErrNotFound
}

func probe(bus *superio.Bus, port uint16) (Variant, error) {
	s, err := bus.Enter(port)
	if err != nil {
		return Unknown, err
	}
	defer s.Close()

	hi, err := s.ReadByte(regDevID)
	if err != nil {
		return Unknown, err
	}
	lo, err := s.ReadByte(regDevID + 1)
	if err != nil {
		return Unknown, err
	}

	id := uint16(hi)<<8 | uint16(lo)
	switch id & devIDMask {
	case devIDNCT6795:
		return NCT6795D, nil
	case devIDNCT6797:
		return NCT6797D, nil
	}
	return Unknown, fmt.Errorf("port %#x: device id %#04x: %w", port, id, ErrNotFound)
}
