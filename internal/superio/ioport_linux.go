//go:build linux && (amd64 || 386)

package superio

import "github.com/platinasystems/ioport"

// Ports accesses the CPU's I/O ports through /dev/port. Requires root.
type Ports struct{}

func (Ports) Inb(port uint16) (byte, error) { return ioport.Inb(port) }

func (Ports) Outb(port uint16, val byte) error { return ioport.Outb(port, val) }
