package nct6795d

// Register map of the RGB header interface, as observed on NCT6795D
// and NCT6797D parts on MSI boards. The exact addresses, masks and
// magic values are dictated by undocumented vendor behavior — do not
// rearrange them.

// Global configuration registers.
const (
	regDevID = 0x20 // device ID, high byte; low byte at regDevID+1
)

// Logical devices.
const (
	ldACPI = 0x09 // hosts the lighting clock enable
	ldRGB  = 0x12 // RGB effect bank
)

// Logical device 0x09 registers.
const (
	regClockEn = 0x2c
	clockEnBit = 0x10 // must be set for any effect, static included
)

// RGB bank registers.
const (
	// Global effect enable. The chip wants all three top bits set
	// before anything reaches the header pins.
	regGlobalEn  = 0xe0
	globalEnBits = 0xe0

	// Fade-in (bits 7:5) and per-channel invert (bits 2:0). Zero for
	// a flat static color.
	regEffect = 0xe4

	// Step duration of the animation clock, low byte. With all eight
	// frame nibbles equal the value is invisible, but the chip still
	// needs a sane one.
	regStepLo     = 0xfe
	defaultStepLo = 0x25

	// bit7 header output enable, bit6:4 blink mode (0 = solid),
	// bit3 pulse, bits 2:1 step duration high bits, bit0 onboard LED
	// disable (NCT6797D and later only).
	regEffectFlags    = 0xff
	effectFlagLEDOn   = 0x80
	effectFlagNoBoard = 0x01
)

// Per-channel cell base addresses. Each channel owns cellLen
// consecutive registers holding its 8 animation-frame nibbles.
const (
	cellRed   = 0xf0
	cellGreen = 0xf4
	cellBlue  = 0xf8
	cellLen   = 4
)

// Device identification. The low nibble of the ID varies with chip
// revision, so only the top 12 bits are compared.
const (
	devIDMask    = 0xfff0
	devIDNCT6795 = 0xd350
	devIDNCT6797 = 0xd450
)

// DefaultPorts are the candidate base ports probed by Detect, in
// order. 0x4e is what every supported MSI board uses; 0x2e is the
// other address Super-I/O chips historically answer at.
var DefaultPorts = []uint16{0x4e, 0x2e}
