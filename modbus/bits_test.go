package modbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackBits(t *testing.T) {
	require := require.New(t)

	t.Run("RoundTrip", func(t *testing.T) {
		bits := []bool{true, false, true, true, false, false, true, false, true, true}
		packed := PackBits(bits)
		require.Len(packed, 2)
		require.Equal(byte(0x4D), packed[0])
		require.Equal(byte(0x03), packed[1])
		require.Equal(bits, UnpackBits(packed, len(bits)))
	})

	t.Run("Empty", func(t *testing.T) {
		require.Empty(PackBits(nil))
		require.Empty(UnpackBits(nil, 0))
	})

	t.Run("CountBeyondData", func(t *testing.T) {
		// Coils beyond the packed payload read as off.
		bits := UnpackBits([]byte{0xFF}, 12)
		require.Len(bits, 12)
		for i := 0; i < 8; i++ {
			require.True(bits[i])
		}
		for i := 8; i < 12; i++ {
			require.False(bits[i])
		}
	})
}

func TestPackUnpackRegisters(t *testing.T) {
	require := require.New(t)

	regs := []uint16{0x1234, 0xABCD, 0x0001}
	packed := PackRegisters(regs)
	require.Equal([]byte{0x12, 0x34, 0xAB, 0xCD, 0x00, 0x01}, packed)
	require.Equal(regs, UnpackRegisters(packed))

	// A trailing odd byte is ignored.
	require.Equal([]uint16{0x1234}, UnpackRegisters([]byte{0x12, 0x34, 0xFF}))
}
