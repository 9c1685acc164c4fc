package verifier

import (
	"testing"

	"github.com/W3W-EdU/machine-emulator/access"
	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
	"github.com/W3W-EdU/machine-emulator/uarch"
	"github.com/stretchr/testify/require"
)

func encodeADDI(rd, rs1 int, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | uint32(rs1)<<15 | uint32(rd)<<7 | 0x13
}

// seedTree hashes s's current image into tree leaf by leaf, mirroring
// emulator.Machine.seedTree: a test tree built directly (not through
// emulator.Create/Load) starts out pristine, so it must be seeded before
// its root can stand in for the machine's real initialRoot.
func seedTree(s *machine.State, tree *merkletree.SparseTree) {
	for addr := uint64(0); addr < machine.ShadowStateSize; addr += 8 {
		tree.SetLeaf(addr, merkletree.WordDigest(s.ShadowWord(addr)))
	}
	for i := range s.Pmas {
		pma := &s.Pmas[i]
		if pma.Kind != machine.PmaKindMemory {
			continue
		}
		for off := uint64(0); off < pma.Length; off += 8 {
			word, err := pma.ReadWord(pma.Start+off, 3)
			if err != nil {
				panic(err)
			}
			tree.SetLeaf(machine.ShadowStateSize+pma.Start+off, merkletree.WordDigest(word))
		}
	}
}

func newLoggedStep(t *testing.T) (*alog.Log, merkletree.Digest, merkletree.Digest) {
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
	word := encodeADDI(1, 0, 7)
	s.Pmas[0].Data[0] = byte(word)
	s.Pmas[0].Data[1] = byte(word >> 8)
	s.Pmas[0].Data[2] = byte(word >> 16)
	s.Pmas[0].Data[3] = byte(word >> 24)

	tree, err := merkletree.NewSparseTree(40, 3)
	require.NoError(t, err)
	seedTree(s, tree)
	initialRoot := tree.RootHash()

	log := &alog.Log{}
	a := access.NewLoggingAccess(s, tree, log)
	require.NoError(t, uarch.Step(a))

	return log, initialRoot, tree.RootHash()
}

func TestVerifyStateTransitionAcceptsGenuineLog(t *testing.T) {
	log, initialRoot, finalRoot := newLoggedStep(t)
	require.NoError(t, VerifyStateTransition(log, initialRoot, finalRoot))
}

func TestVerifyStateTransitionRejectsWrongFinalRoot(t *testing.T) {
	log, initialRoot, _ := newLoggedStep(t)
	bogus := merkletree.Hash([]byte("not the real final root"))
	err := VerifyStateTransition(log, initialRoot, bogus)
	require.ErrorIs(t, err, merrors.ErrRootMismatch)
}

func TestVerifyStateTransitionRejectsWrongInitialRoot(t *testing.T) {
	log, _, finalRoot := newLoggedStep(t)
	bogus := merkletree.Hash([]byte("not the real initial root"))
	err := VerifyStateTransition(log, bogus, finalRoot)
	require.ErrorIs(t, err, merrors.ErrProofMismatch)
}

func TestVerifyStateTransitionRejectsTamperedEntry(t *testing.T) {
	log, initialRoot, finalRoot := newLoggedStep(t)
	require.NotZero(t, log.Len())
	log.Entries[0].ValueRead ^= 1

	err := VerifyStateTransition(log, initialRoot, finalRoot)
	require.Error(t, err)
}

func TestVerifyLogNeverConsultsAFinalRoot(t *testing.T) {
	log, initialRoot, finalRoot := newLoggedStep(t)
	got, err := VerifyLog(log, initialRoot)
	require.NoError(t, err)
	require.Equal(t, finalRoot, got)
}
