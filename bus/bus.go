// Package bus shifts 16-bit command words into a chain of MAX7219/MAX7221
// LED drivers and latches them.
//
// Every word is framed MSB first as 4 padding bits (always 0, ignored by the
// chip), 4 register address bits and 8 data bits. A transfer is bracketed by
// Begin and End: Begin pulls the select line low so words ripple through the
// chain without being committed, End pulls it high and every device in the
// chain commits the last word it holds at the same time.
//
// Each device forwards what it previously held as a new word arrives, so after
// N words the first word shifted sits in the device furthest from the source.
package bus

import "errors"

// Register addresses of the MAX7219/MAX7221.
const (
	RegNoop        byte = 0x00
	RegDigit0      byte = 0x01 // Digit registers 1-8 hold the rows of an 8x8 matrix.
	RegDecodeMode  byte = 0x09
	RegIntensity   byte = 0x0a
	RegScanLimit   byte = 0x0b
	RegShutdown    byte = 0x0c
	RegDisplayTest byte = 0x0f
)

var (
	// ErrNotTransferring is returned when a word is sent, or a transfer is
	// ended, without a matching Begin.
	ErrNotTransferring = errors.New("bus: no transfer in progress")
	// ErrTransferring is returned by Begin when the previous transfer was
	// never ended.
	ErrTransferring = errors.New("bus: transfer already in progress")
)

// BitOrder selects how the 8 data bits of a row are read from the row byte.
type BitOrder bool

const (
	// MSBFirst sends bit 7 of the row byte first.
	MSBFirst BitOrder = false
	// LSBFirst sends bit 0 of the row byte first.
	LSBFirst BitOrder = true
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "LSBFirst"
	}
	return "MSBFirst"
}

// Bus is a synchronous write-only link to a chain of LED drivers.
//
// SendWord and SendRow are only valid between Begin and End.
type Bus interface {
	// Begin opens a transfer. Words sent afterwards are shifted but not
	// committed.
	Begin() error
	// SendWord shifts one word. address is clamped to [0, 15] and data to
	// [0, 255].
	SendWord(address, data int) error
	// SendRow shifts one word whose data bits come from row, read in the
	// given order.
	SendRow(address int, row byte, order BitOrder) error
	// End latches the words currently held by every device in the chain.
	End() error
}

// Word is a decoded 16-bit command word.
type Word struct {
	Address byte
	Data    byte
}

// Noop is the word that leaves a device unchanged.
var Noop = Word{Address: RegNoop}

// NewWord builds a word, saturating address and data to their register
// widths.
func NewWord(address, data int) Word {
	return Word{Address: byte(clamp(address, 0, 15)), Data: byte(clamp(data, 0, 255))}
}

// Encode returns the 16 bits sent on the wire, padding included.
func (w Word) Encode() uint16 {
	return uint16(w.Address&0x0f)<<8 | uint16(w.Data)
}

// Reverse returns b with its bit order reversed.
func Reverse(b byte) byte {
	b = b>>4 | b<<4
	b = (b&0xcc)>>2 | (b&0x33)<<2
	b = (b&0xaa)>>1 | (b&0x55)<<1
	return b
}

// Broadcast sends the same word to all n devices of the chain in a single
// transfer.
func Broadcast(b Bus, n int, address, data int) error {
	if err := b.Begin(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := b.SendWord(address, data); err != nil {
			return abort(b, err)
		}
	}
	return b.End()
}

// SendTo sends a word to the device at chain position target and a no-op to
// every other device of the n-device chain. Position 0 is the device nearest
// the bus, which receives the last word shifted.
func SendTo(b Bus, n, target int, address, data int) error {
	if err := b.Begin(); err != nil {
		return err
	}
	for pos := n - 1; pos >= 0; pos-- {
		a, d := int(RegNoop), 0
		if pos == target {
			a, d = address, data
		}
		if err := b.SendWord(a, d); err != nil {
			return abort(b, err)
		}
	}
	return b.End()
}

// abort closes a transfer that failed half way so the bus can be used again.
// The partial words are latched; the first error wins.
func abort(b Bus, err error) error {
	_ = b.End()
	return err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
