//go:build !linux || (!amd64 && !386)

package superio

import "errors"

var errNoPortIO = errors.New("superio: raw port access needs linux on x86")

// Ports is a placeholder on platforms without port-mapped I/O.
type Ports struct{}

func (Ports) Inb(port uint16) (byte, error) { return 0, errNoPortIO }

func (Ports) Outb(port uint16, val byte) error { return errNoPortIO }
