// Package bustest provides bus.Bus implementations for tests.
//
// Record keeps every transfer as a list of decoded words. Chain models the
// devices themselves: words shift through the chain and are committed to each
// device's registers when the transfer ends.
package bustest

import (
	"fmt"

	"github.com/flavioheleno/ledmatrix/bus"
)

// Transfer is the list of words shifted between one Begin and End.
type Transfer []bus.Word

// Record implements bus.Bus and records all transfers.
type Record struct {
	Transfers []Transfer

	open bool
	cur  Transfer
}

// Begin implements bus.Bus.
func (r *Record) Begin() error {
	if r.open {
		return bus.ErrTransferring
	}
	r.open = true
	r.cur = nil
	return nil
}

// SendWord implements bus.Bus.
func (r *Record) SendWord(address, data int) error {
	if !r.open {
		return bus.ErrNotTransferring
	}
	r.cur = append(r.cur, bus.NewWord(address, data))
	return nil
}

// SendRow implements bus.Bus.
func (r *Record) SendRow(address int, row byte, order bus.BitOrder) error {
	if !r.open {
		return bus.ErrNotTransferring
	}
	if order == bus.LSBFirst {
		row = bus.Reverse(row)
	}
	w := bus.NewWord(address, 0)
	w.Data = row
	r.cur = append(r.cur, w)
	return nil
}

// End implements bus.Bus.
func (r *Record) End() error {
	if !r.open {
		return bus.ErrNotTransferring
	}
	r.open = false
	r.Transfers = append(r.Transfers, r.cur)
	r.cur = nil
	return nil
}

// Reset forgets all recorded transfers.
func (r *Record) Reset() {
	r.Transfers = nil
}

// Device is the register file of one simulated MAX7219.
type Device struct {
	Digits      [8]byte
	Decode      byte
	Intensity   byte
	ScanLimit   byte
	Shutdown    bool // true while in shutdown mode
	DisplayTest bool
}

// Chain simulates n daisy-chained devices. Devices[0] is the device nearest
// the bus.
type Chain struct {
	Record
	Devices []Device

	shift []bus.Word
}

// NewChain returns a chain of n devices in their power-on state.
func NewChain(n int) *Chain {
	c := &Chain{Devices: make([]Device, n), shift: make([]bus.Word, n)}
	for i := range c.Devices {
		c.Devices[i].Shutdown = true
	}
	for i := range c.shift {
		c.shift[i] = bus.Noop
	}
	return c
}

// SendWord implements bus.Bus.
func (c *Chain) SendWord(address, data int) error {
	if err := c.Record.SendWord(address, data); err != nil {
		return err
	}
	c.push(c.cur[len(c.cur)-1])
	return nil
}

// SendRow implements bus.Bus.
func (c *Chain) SendRow(address int, row byte, order bus.BitOrder) error {
	if err := c.Record.SendRow(address, row, order); err != nil {
		return err
	}
	c.push(c.cur[len(c.cur)-1])
	return nil
}

// End implements bus.Bus. Every device commits the word it holds.
func (c *Chain) End() error {
	if err := c.Record.End(); err != nil {
		return err
	}
	for i, w := range c.shift {
		c.Devices[i].apply(w)
	}
	return nil
}

// Lit reports whether LED bit of digit row (0-7) is on in device dev, bit 0
// being the first data bit on the wire.
func (c *Chain) Lit(dev, row, bit int) bool {
	return c.Devices[dev].Digits[row]&(0x80>>uint(bit)) != 0
}

// String implements fmt.Stringer.
func (c *Chain) String() string {
	return fmt.Sprintf("bustest.Chain{%d}", len(c.Devices))
}

// push shifts w into the first device; every device hands its previous word
// to the next one.
func (c *Chain) push(w bus.Word) {
	if len(c.shift) == 0 {
		return
	}
	copy(c.shift[1:], c.shift[:len(c.shift)-1])
	c.shift[0] = w
}

func (d *Device) apply(w bus.Word) {
	switch {
	case w.Address == bus.RegNoop:
	case w.Address >= bus.RegDigit0 && w.Address < bus.RegDigit0+8:
		d.Digits[w.Address-bus.RegDigit0] = w.Data
	case w.Address == bus.RegDecodeMode:
		d.Decode = w.Data
	case w.Address == bus.RegIntensity:
		d.Intensity = w.Data & 0x0f
	case w.Address == bus.RegScanLimit:
		d.ScanLimit = w.Data & 0x07
	case w.Address == bus.RegShutdown:
		d.Shutdown = w.Data&0x01 == 0
	case w.Address == bus.RegDisplayTest:
		d.DisplayTest = w.Data&0x01 != 0
	}
}

var (
	_ bus.Bus = &Record{}
	_ bus.Bus = &Chain{}
)
