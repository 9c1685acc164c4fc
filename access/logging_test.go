package access

import (
	"testing"

	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/stretchr/testify/require"
)

func newLoggingAccess(t *testing.T) (*LoggingAccess, *machine.State) {
	t.Helper()
	s := machine.New()
	tree, err := merkletree.NewSparseTree(40, wordLog2Size)
	require.NoError(t, err)
	return NewLoggingAccess(s, tree, &alog.Log{}), s
}

func TestLoggingAccessRecordsReadThenWriteAsTwoEntries(t *testing.T) {
	a, _ := newLoggingAccess(t)

	a.WritePC(4)
	_ = a.ReadPC()

	require.Equal(t, 2, a.Log.Len())
	require.Equal(t, alog.KindWrite, a.Log.Entries[0].Kind)
	require.Equal(t, uint64(0), a.Log.Entries[0].ValueRead)
	require.Equal(t, uint64(4), a.Log.Entries[0].ValueWritten)
	require.Equal(t, alog.KindRead, a.Log.Entries[1].Kind)
	require.Equal(t, uint64(4), a.Log.Entries[1].ValueRead)
}

func TestLoggingAccessNeverCoalesces(t *testing.T) {
	a, _ := newLoggingAccess(t)
	a.WriteX(5, 1)
	a.WriteX(5, 2)
	require.Equal(t, 2, a.Log.Len())
}

func TestLoggingAccessSiblingPathReflectsPriorWritesInSameStep(t *testing.T) {
	a, _ := newLoggingAccess(t)

	a.WriteX(1, 0xAAAA)
	rootAfterFirst := a.Tree.RootHash()

	a.WriteX(2, 0xBBBB)
	proof := a.Tree.Proof(machine.ShadowX(2))

	// the second write's logged sibling path must already include the
	// first write: together with the value written it reconstructs the
	// root left by both writes, not one built on the pristine tree.
	require.NotEqual(t, rootAfterFirst, a.Tree.RootHash())
	require.True(t, proof.Verify(wordLog2Size))
	second := a.Log.Entries[1]
	require.Equal(t, a.Tree.RootHash(), merkletree.RootFromLeaf(merkletree.WordDigest(second.ValueWritten), second.Address, wordLog2Size, second.Siblings))
}

func TestPlainAccessX0StaysZero(t *testing.T) {
	s := machine.New()
	p := NewPlainAccess(s)
	p.WriteX(0, 123)
	require.Equal(t, uint64(0), p.ReadX(0))
}
