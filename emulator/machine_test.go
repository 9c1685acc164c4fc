package emulator

import (
	"testing"

	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/verifier"
	"github.com/stretchr/testify/require"
)

func encodeADDI(rd, rs1 int, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | uint32(rs1)<<15 | uint32(rd)<<7 | 0x13
}

func newTestMachine(t *testing.T, instrs []uint32) *Machine {
	t.Helper()
	data := make([]byte, 0x1000)
	for i, w := range instrs {
		data[i*4] = byte(w)
		data[i*4+1] = byte(w >> 8)
		data[i*4+2] = byte(w >> 16)
		data[i*4+3] = byte(w >> 24)
	}
	cfg := &machine.Config{
		PC: 0x1000,
		Ranges: []machine.MemoryRangeConfig{
			{Start: 0x1000, Length: 0x1000, Image: data},
		},
	}
	m, err := Create(cfg, nil)
	require.NoError(t, err)
	return m
}

func TestCreateSeedsRootDeterministically(t *testing.T) {
	m1 := newTestMachine(t, []uint32{encodeADDI(1, 0, 5)})
	m2 := newTestMachine(t, []uint32{encodeADDI(1, 0, 5)})
	require.Equal(t, m1.GetRootHash(), m2.GetRootHash())
}

func TestRunAdvancesUntilLimit(t *testing.T) {
	m := newTestMachine(t, []uint32{
		encodeADDI(1, 0, 1),
		encodeADDI(1, 1, 1),
		encodeADDI(1, 1, 1),
	})
	reason, err := m.Run(2)
	require.NoError(t, err)
	require.Equal(t, BreakReasonLimitReached, reason)
	require.Equal(t, uint64(2), m.State.X[1])
	require.Equal(t, uint64(0x1008), m.State.PC)
}

func TestLogStepUarchProducesVerifiableTransition(t *testing.T) {
	m := newTestMachine(t, []uint32{encodeADDI(1, 0, 42)})
	initialRoot := m.GetRootHash()

	log, err := m.LogStepUarch()
	require.NoError(t, err)
	require.NotZero(t, log.Len())

	finalRoot := m.GetRootHash()
	require.NoError(t, verifier.VerifyStateTransition(log, initialRoot, finalRoot))
	require.Equal(t, uint64(42), m.State.X[1])
}

func TestLogStepUarchOnHaltedMachineIsEmptyLog(t *testing.T) {
	m := newTestMachine(t, []uint32{encodeADDI(1, 0, 1)})
	m.State.IflagsH = true

	log, err := m.LogStepUarch()
	require.NoError(t, err)
	require.Equal(t, 0, log.Len())
}

func TestResetUarchRestoresRegistersPCAndHalt(t *testing.T) {
	m := newTestMachine(t, []uint32{encodeADDI(1, 0, 1)})
	_, err := m.Run(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), m.State.X[1])
	m.State.IflagsH = true

	m.ResetUarch()
	require.Equal(t, uint64(0), m.State.X[1])
	require.Equal(t, uint64(0x1000), m.State.PC)
	require.False(t, m.State.IflagsH)
}

func TestLogResetUarchIsVerifiable(t *testing.T) {
	m := newTestMachine(t, []uint32{encodeADDI(1, 0, 1)})
	_, err := m.Run(1)
	require.NoError(t, err)
	initialRoot := m.GetRootHash()

	log := m.LogResetUarch()
	finalRoot := m.GetRootHash()
	require.NoError(t, verifier.VerifyStateTransition(log, initialRoot, finalRoot))
}

func TestSendCmioResponseRequiresYieldFlag(t *testing.T) {
	m := newTestMachine(t, nil)
	err := m.SendCmioResponse(1, []byte("OK"))
	require.Error(t, err)
}

func TestSendCmioResponseWritesDataAndAck(t *testing.T) {
	m := newTestMachine(t, nil)
	m.State.IflagsY = true

	require.NoError(t, m.SendCmioResponse(0x0001, []byte("OK")))
	require.False(t, m.State.IflagsY)
	require.Equal(t, cmioAckWord(0x0001, 2), m.State.Fromhost)
}

func TestLogSendCmioResponseIsVerifiable(t *testing.T) {
	m := newTestMachine(t, nil)
	m.State.IflagsY = true
	m.seedTree() // State was changed directly, so bring Tree back in line
	initialRoot := m.GetRootHash()

	log, err := m.LogSendCmioResponse(0x0001, []byte("OK"))
	require.NoError(t, err)
	finalRoot := m.GetRootHash()
	require.NoError(t, verifier.VerifyStateTransition(log, initialRoot, finalRoot))
}

func TestGetProofRejectsWrongGranularity(t *testing.T) {
	m := newTestMachine(t, nil)
	_, err := m.GetProof(machine.ShadowPC, 2)
	require.Error(t, err)
}

func TestGetProofVerifiesAgainstRoot(t *testing.T) {
	m := newTestMachine(t, nil)
	p, err := m.GetProof(machine.ShadowPC, 3)
	require.NoError(t, err)
	require.True(t, p.Verify(3))
}
