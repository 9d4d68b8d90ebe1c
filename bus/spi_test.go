package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestSPIOneTxPerTransfer(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0x01, 0xAA, 0x01, 0x55, 0x00, 0x00}},
				{W: []byte{0x0C, 0x01}},
			},
		},
	}
	s, err := NewSPI(p)
	require.NoError(t, err)

	require.NoError(t, s.Begin())
	require.NoError(t, s.SendWord(1, 0xAA))
	require.NoError(t, s.SendRow(1, 0xAA, LSBFirst))
	require.NoError(t, s.SendWord(int(RegNoop), 0))
	require.NoError(t, s.End())

	require.NoError(t, Broadcast(s, 1, int(RegShutdown), 1))
	assert.NoError(t, p.Close())
}

func TestSPIStateMachine(t *testing.T) {
	p := &spitest.Playback{}
	s, err := NewSPI(p)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SendWord(1, 1), ErrNotTransferring)
	assert.ErrorIs(t, s.End(), ErrNotTransferring)
	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Begin(), ErrTransferring)
	// An empty transfer never reaches the port.
	require.NoError(t, s.End())
	assert.NoError(t, p.Close())
}

func TestSPIClampsWord(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{{W: []byte{0x0F, 0xFF}}},
		},
	}
	s, err := NewSPI(p)
	require.NoError(t, err)
	require.NoError(t, Broadcast(s, 1, 300, 300))
	assert.NoError(t, p.Close())
}
