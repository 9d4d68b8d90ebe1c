package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// edge is one level change seen on one of the three lines.
type edge struct {
	line  string
	level gpio.Level
}

type lines struct {
	events []edge
	fail   map[string]error
}

// recPin is a gpiotest.Pin that appends every Out call to a shared log.
type recPin struct {
	gpiotest.Pin
	log *lines
}

func (p *recPin) Out(l gpio.Level) error {
	if err := p.log.fail[p.N]; err != nil {
		return err
	}
	p.log.events = append(p.log.events, edge{line: p.N, level: l})
	return p.Pin.Out(l)
}

func newLines() (*lines, *recPin, *recPin, *recPin) {
	l := &lines{fail: map[string]error{}}
	data := &recPin{Pin: gpiotest.Pin{N: "DIN", Num: 10}, log: l}
	clock := &recPin{Pin: gpiotest.Pin{N: "CLK", Num: 11}, log: l}
	sel := &recPin{Pin: gpiotest.Pin{N: "CS", Num: 8}, log: l}
	return l, data, clock, sel
}

// sampled returns the data level at every rising clock edge, the way the
// device sees it.
func (l *lines) sampled() []int {
	var bits []int
	clock := gpio.Low
	data := gpio.Low
	for _, e := range l.events {
		switch e.line {
		case "DIN":
			data = e.level
		case "CLK":
			if e.level == gpio.High && clock == gpio.Low {
				if data {
					bits = append(bits, 1)
				} else {
					bits = append(bits, 0)
				}
			}
			clock = e.level
		}
	}
	return bits
}

func bitsOf(s string) []int {
	var out []int
	for _, c := range s {
		switch c {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		}
	}
	return out
}

func newTestBitBang(t *testing.T) (*BitBang, *lines, *recPin, *recPin) {
	t.Helper()
	l, data, clock, sel := newLines()
	b, err := NewBitBang(data, clock, sel)
	require.NoError(t, err)
	l.events = nil
	return b, l, clock, sel
}

func TestNewBitBangIdleLevels(t *testing.T) {
	_, _, clock, sel := newLines()
	_, err := NewBitBang(&recPin{Pin: gpiotest.Pin{N: "DIN"}, log: clock.log}, clock, sel)
	require.NoError(t, err)
	assert.Equal(t, gpio.High, sel.L, "select must idle high")
	assert.Equal(t, gpio.Low, clock.L, "clock must idle low")
}

func TestNewBitBangMissingLine(t *testing.T) {
	_, data, clock, _ := newLines()
	_, err := NewBitBang(data, clock, nil)
	assert.Error(t, err)
}

func TestSendWordFraming(t *testing.T) {
	b, l, _, _ := newTestBitBang(t)

	require.NoError(t, b.Begin())
	require.NoError(t, b.SendWord(9, 0))

	assert.Equal(t, bitsOf("0000 1001 00000000"), l.sampled())

	rising := 0
	for i, e := range l.events {
		if e.line == "CLK" && e.level == gpio.High {
			rising++
			// The data line must be settled before the rising edge.
			require.Greater(t, i, 0)
			assert.Equal(t, "DIN", l.events[i-1].line)
		}
	}
	assert.Equal(t, 16, rising)
}

func TestSendWordClamps(t *testing.T) {
	tests := []struct {
		name          string
		address, data int
		want          string
	}{
		{"in range", 10, 0xA5, "0000 1010 10100101"},
		{"address too high", 99, 1, "0000 1111 00000001"},
		{"address negative", -3, 1, "0000 0000 00000001"},
		{"data too high", 1, 1000, "0000 0001 11111111"},
		{"data negative", 1, -1, "0000 0001 00000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, l, _, _ := newTestBitBang(t)
			require.NoError(t, b.Begin())
			require.NoError(t, b.SendWord(tt.address, tt.data))
			assert.Equal(t, bitsOf(tt.want), l.sampled())
		})
	}
}

func TestSendRowBitOrder(t *testing.T) {
	tests := []struct {
		order BitOrder
		want  string
	}{
		{MSBFirst, "0000 0011 11000001"},
		{LSBFirst, "0000 0011 10000011"},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			b, l, _, _ := newTestBitBang(t)
			require.NoError(t, b.Begin())
			require.NoError(t, b.SendRow(3, 0xC1, tt.order))
			assert.Equal(t, bitsOf(tt.want), l.sampled())
		})
	}
}

func TestLatchBarrier(t *testing.T) {
	b, l, _, sel := newTestBitBang(t)

	require.NoError(t, b.Begin())
	assert.Equal(t, gpio.Low, sel.L)
	require.NoError(t, b.SendWord(1, 1))
	require.NoError(t, b.SendWord(2, 2))
	assert.Equal(t, gpio.Low, sel.L, "select must stay low while shifting")
	require.NoError(t, b.End())
	assert.Equal(t, gpio.High, sel.L)

	// Exactly one falling and one rising edge on select.
	var selEvents []gpio.Level
	for _, e := range l.events {
		if e.line == "CS" {
			selEvents = append(selEvents, e.level)
		}
	}
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, selEvents)
	assert.Len(t, l.sampled(), 32)
}

func TestTransferStateMachine(t *testing.T) {
	b, l, _, _ := newTestBitBang(t)

	assert.ErrorIs(t, b.SendWord(1, 1), ErrNotTransferring)
	assert.ErrorIs(t, b.SendRow(1, 1, MSBFirst), ErrNotTransferring)
	assert.ErrorIs(t, b.End(), ErrNotTransferring)
	assert.Empty(t, l.events, "rejected calls must not touch the lines")

	require.NoError(t, b.Begin())
	n := len(l.events)
	assert.ErrorIs(t, b.Begin(), ErrTransferring)
	assert.Len(t, l.events, n)

	require.NoError(t, b.End())
	assert.ErrorIs(t, b.End(), ErrNotTransferring)
}

func TestPinFailureIsWrapped(t *testing.T) {
	b, l, _, _ := newTestBitBang(t)
	boom := errors.New("boom")

	require.NoError(t, b.Begin())
	l.fail["DIN"] = boom
	err := b.SendWord(1, 1)
	assert.ErrorIs(t, err, boom)

	// The bracket can still be closed and a new one opened.
	delete(l.fail, "DIN")
	require.NoError(t, b.End())
	require.NoError(t, b.Begin())
}

func TestEndFailureLeavesBusIdle(t *testing.T) {
	b, l, _, _ := newTestBitBang(t)
	boom := errors.New("boom")

	require.NoError(t, b.Begin())
	l.fail["CS"] = boom
	assert.ErrorIs(t, b.End(), boom)
	delete(l.fail, "CS")
	assert.NoError(t, b.Begin())
}
