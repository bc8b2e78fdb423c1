package nct6795d

import "fmt"

// Channel identifies one of the three fixed color channels of the RGB
// header.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	NumChannels
)

// MaxBrightness is the highest level a channel accepts. The chip
// stores one 4-bit intensity nibble per animation frame.
const MaxBrightness = 0xf

var channelNames = [NumChannels]string{"red", "green", "blue"}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel maps a channel name back to its Channel.
func ParseChannel(name string) (Channel, error) {
	for c, n := range channelNames {
		if n == name {
			return Channel(c), nil
		}
	}
	return 0, fmt.Errorf("nct6795d: unknown channel %q", name)
}

var channelCells = [NumChannels]byte{cellRed, cellGreen, cellBlue}

func (c Channel) cell() byte { return channelCells[c] }

// Mask is a set over the three channels.
type Mask uint8

// MaskOf builds a Mask containing the given channels.
func MaskOf(chs ...Channel) Mask {
	var m Mask
	for _, c := range chs {
		m |= 1 << uint(c)
	}
	return m
}

// AllChannels selects red, green and blue.
var AllChannels = MaskOf(Red, Green, Blue)

// Has reports whether c is in the mask.
func (m Mask) Has(c Channel) bool { return m&(1<<uint(c)) != 0 }
