package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadImage(t *testing.T) {
	t.Run("maps at the reset address", func(t *testing.T) {
		state, err := LoadImage([]byte{0x13, 0x00, 0x00, 0x00, 0xEF, 0xBE})
		require.NoError(t, err)
		require.Equal(t, ResetPC, state.PC)
		v, err := state.Memory.LoadWord(ResetPC)
		require.NoError(t, err)
		require.Equal(t, uint32(0x13), v, "image bytes are little-endian machine code")
		require.Equal(t, uint32(6), state.Memory.UsedBytes())
	})
	t.Run("zero-pads the window", func(t *testing.T) {
		state, err := LoadImage([]byte{1, 2, 3})
		require.NoError(t, err)
		v, err := state.Memory.LoadWord(ResetPC + 4)
		require.NoError(t, err)
		require.Zero(t, v)
	})
	t.Run("rejects an oversized image", func(t *testing.T) {
		_, err := LoadImage(make([]byte, MemorySize+1))
		require.ErrorIs(t, err, ErrMemRange)
	})
	t.Run("empty image is valid", func(t *testing.T) {
		state, err := LoadImage(nil)
		require.NoError(t, err)
		require.Zero(t, state.Memory.UsedBytes())
	})
}

func TestReadImage(t *testing.T) {
	state, err := ReadImage(bytes.NewReader([]byte{0x73, 0x00, 0x10, 0x00})) // ebreak
	require.NoError(t, err)
	require.NoError(t, Run(state, 10))
	require.True(t, state.Exited)
	require.Zero(t, state.Cycles)
}
