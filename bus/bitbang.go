package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// BitBang drives the chain through three general purpose output lines.
//
// It is not safe for concurrent use.
type BitBang struct {
	data  gpio.PinOut // DIN
	clock gpio.PinOut // CLK, data is sampled on the rising edge
	sel   gpio.PinOut // LOAD/CS, latches on the rising edge

	transferring bool
}

// NewBitBang returns a bus using the given lines. The select line is driven
// high and the clock low so the chain starts idle.
func NewBitBang(data, clock, sel gpio.PinOut) (*BitBang, error) {
	if data == nil || clock == nil || sel == nil {
		return nil, errors.New("bus: data, clock and select lines are required")
	}
	b := &BitBang{data: data, clock: clock, sel: sel}
	if err := b.sel.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("bus: failed to drive select high: %w", err)
	}
	if err := b.clock.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bus: failed to drive clock low: %w", err)
	}
	return b, nil
}

// Begin pulls the select line low.
func (b *BitBang) Begin() error {
	if b.transferring {
		return ErrTransferring
	}
	if err := b.sel.Out(gpio.Low); err != nil {
		return fmt.Errorf("bus: failed to pull select low: %w", err)
	}
	b.transferring = true
	return nil
}

// SendWord shifts one word, clamping address and data.
func (b *BitBang) SendWord(address, data int) error {
	return b.send(NewWord(address, data))
}

// SendRow shifts one word whose data bits are taken from row in the given
// order.
func (b *BitBang) SendRow(address int, row byte, order BitOrder) error {
	if order == LSBFirst {
		row = Reverse(row)
	}
	return b.send(Word{Address: byte(clamp(address, 0, 15)), Data: row})
}

// End pulls the select line high, latching the chain. The bus is idle
// afterwards even if the line could not be driven.
func (b *BitBang) End() error {
	if !b.transferring {
		return ErrNotTransferring
	}
	b.transferring = false
	if err := b.sel.Out(gpio.High); err != nil {
		return fmt.Errorf("bus: failed to pull select high: %w", err)
	}
	return nil
}

// String implements fmt.Stringer.
func (b *BitBang) String() string {
	return fmt.Sprintf("bus.BitBang{data=%s, clock=%s, select=%s}", b.data, b.clock, b.sel)
}

func (b *BitBang) send(w Word) error {
	if !b.transferring {
		return ErrNotTransferring
	}
	v := w.Encode()
	for i := 15; i >= 0; i-- {
		if err := b.clock.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: failed to pull clock low: %w", err)
		}
		if err := b.data.Out(gpio.Level(v&(1<<uint(i)) != 0)); err != nil {
			return fmt.Errorf("bus: failed to drive data: %w", err)
		}
		if err := b.clock.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: failed to pull clock high: %w", err)
		}
	}
	return nil
}

var _ Bus = &BitBang{}
