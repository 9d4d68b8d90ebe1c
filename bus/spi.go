package bus

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI drives the chain through a hardware SPI port whose chip select is wired
// to the LOAD/CS pin of the first device.
//
// Words of a transfer are buffered and written with a single Tx when the
// transfer ends, so chip select stays asserted for exactly one latch.
type SPI struct {
	c   conn.Conn
	buf []byte

	transferring bool
}

// NewSPI connects to p at 10MHz in Mode0 with 8 bit words.
func NewSPI(p spi.Port) (*SPI, error) {
	// The MAX7219 samples on the rising edge and tolerates up to 10MHz.
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	return &SPI{c: c}, nil
}

// Begin starts buffering a transfer.
func (s *SPI) Begin() error {
	if s.transferring {
		return ErrTransferring
	}
	s.buf = s.buf[:0]
	s.transferring = true
	return nil
}

// SendWord queues one word, clamping address and data.
func (s *SPI) SendWord(address, data int) error {
	return s.queue(NewWord(address, data))
}

// SendRow queues one word whose data bits are taken from row in the given
// order.
func (s *SPI) SendRow(address int, row byte, order BitOrder) error {
	if order == LSBFirst {
		row = Reverse(row)
	}
	return s.queue(Word{Address: byte(clamp(address, 0, 15)), Data: row})
}

// End writes the buffered words. Chip select is released when Tx returns,
// which latches the chain.
func (s *SPI) End() error {
	if !s.transferring {
		return ErrNotTransferring
	}
	s.transferring = false
	if len(s.buf) == 0 {
		return nil
	}
	if err := s.c.Tx(s.buf, nil); err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	return nil
}

// String implements fmt.Stringer.
func (s *SPI) String() string {
	return fmt.Sprintf("bus.SPI{%s}", s.c)
}

func (s *SPI) queue(w Word) error {
	if !s.transferring {
		return ErrNotTransferring
	}
	s.buf = append(s.buf, w.Address&0x0f, w.Data)
	return nil
}

var _ Bus = &SPI{}
