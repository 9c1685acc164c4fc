package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFromConfigCopiesRangesAndRegisters(t *testing.T) {
	cfg := &Config{
		PC: 0x1000,
		Ranges: []MemoryRangeConfig{
			{Start: 0x1000, Length: 0x1000, Image: []byte{0x13, 0x00, 0x00, 0x00}},
		},
	}
	cfg.X[10] = 42

	s := NewFromConfig(cfg)
	require.Equal(t, uint64(0x1000), s.PC)
	require.Equal(t, uint64(42), s.X[10])
	require.Len(t, s.Pmas, 1)
	require.Equal(t, byte(0x13), s.Pmas[0].Data[0])
}

func TestPMAAtPastEndReturnsSentinel(t *testing.T) {
	s := New()
	p := s.PMAAt(5)
	require.True(t, p.Empty())
}

func TestPmaEntryContainsRejectsMisalignedAndSpanning(t *testing.T) {
	p := PmaEntry{Start: 0x1000, Length: 0x10, Flags: PmaFlags{Readable: true, Writable: true}}
	require.True(t, p.Contains(0x1000, 3))  // 8-byte aligned access at start
	require.True(t, p.Contains(0x1001, 0))  // 1-byte access is aligned anywhere
	require.False(t, p.Contains(0x1004, 3)) // misaligned for 8-byte access
	require.False(t, p.Contains(0x1008, 4)) // sizeLog2 out of range
	require.False(t, p.Contains(0x1010, 0)) // exactly past the end
}
