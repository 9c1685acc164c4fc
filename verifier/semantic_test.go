package verifier

import (
	"testing"

	"github.com/W3W-EdU/machine-emulator/access"
	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/uarch"
	"github.com/stretchr/testify/require"
)

var fullRange = []AddressRange{
	ShadowRange,
	{Start: machine.ShadowStateSize, End: machine.ShadowStateSize + 0x2000},
	{Start: machine.CmioRxBufferStart, End: machine.CmioRxBufferStart + machine.CmioRxBufferLength},
}

func newStepLog(t *testing.T) (*alog.Log, merkletree.Digest, merkletree.Digest) {
	t.Helper()
	s := machine.New()
	s.PC = 0x1000
	s.Pmas = []machine.PmaEntry{{
		Start:  0x1000,
		Length: 0x1000,
		Kind:   machine.PmaKindMemory,
		Flags:  machine.PmaFlags{Readable: true, Writable: true, Executable: true},
		Data:   make([]byte, 0x1000),
	}}
	s.Pmas[0].Data[0] = uarch.OpOpImm // addi x0, x0, 0

	tree, err := merkletree.NewSparseTree(40, 3)
	require.NoError(t, err)
	seedTree(s, tree)
	initialRoot := tree.RootHash()

	log := &alog.Log{}
	a := access.NewLoggingAccess(s, tree, log)
	require.NoError(t, uarch.Step(a))

	return log, initialRoot, tree.RootHash()
}

func TestVerifyStepUarchStateTransitionAcceptsGenuineNOP(t *testing.T) {
	log, initialRoot, finalRoot := newStepLog(t)
	require.NoError(t, VerifyStepUarchStateTransition(log, initialRoot, finalRoot, fullRange))
}

func TestVerifyStepUarchLogDerivesConsistentRoots(t *testing.T) {
	log, initialRoot, finalRoot := newStepLog(t)
	gotInitial, gotFinal, err := VerifyStepUarchLog(log, fullRange)
	require.NoError(t, err)
	require.Equal(t, initialRoot, gotInitial)
	require.Equal(t, finalRoot, gotFinal)
}

func TestVerifyStepUarchRejectsUndeclaredAddress(t *testing.T) {
	log, initialRoot, finalRoot := newStepLog(t)
	err := VerifyStepUarchStateTransition(log, initialRoot, finalRoot, nil)
	require.Error(t, err)
}

func TestVerifyStepUarchRejectsForgedMcycleDelta(t *testing.T) {
	log, _, _ := newStepLog(t)
	for i := range log.Entries {
		if log.Entries[i].IsWrite() && log.Entries[i].Address == machine.ShadowMcycle {
			log.Entries[i].ValueWritten += 1
		}
	}
	_, _, err := VerifyStepUarchLog(log, fullRange)
	require.Error(t, err)
}

func TestVerifyCmioResponseRejectsTruncatedDataClaim(t *testing.T) {
	s := machine.New()
	s.IflagsY = true
	s.Pmas = []machine.PmaEntry{machine.NewCmioRxBufferPMA()}

	tree, err := merkletree.NewSparseTree(40, 3)
	require.NoError(t, err)
	seedTree(s, tree)
	initialRoot := tree.RootHash()

	log := &alog.Log{}
	a := access.NewLoggingAccess(s, tree, log)

	pma := a.ReadPMA(0)
	require.NoError(t, a.WriteMemory(pma, machine.CmioRxBufferStart, uint64('O')|uint64('K')<<8, 3))
	a.WriteFromhost(cmioAckWord(0x0001, 2))
	a.ResetIflagsY()

	finalRoot := tree.RootHash()

	require.NoError(t, VerifyCmioResponseStateTransition(log, initialRoot, finalRoot, fullRange, 0x0001, 2))
	err = VerifyCmioResponseStateTransition(log, initialRoot, finalRoot, fullRange, 0x0001, 1)
	require.Error(t, err)
}
