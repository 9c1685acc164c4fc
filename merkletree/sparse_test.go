package merkletree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSparseTreeMatchesBackTreeInOrderRoot(t *testing.T) {
	back, err := NewBackTree(4, 0, 0)
	require.NoError(t, err)
	sparse, err := NewSparseTree(4, 0)
	require.NoError(t, err)

	leaves := []Digest{Hash([]byte("a")), Hash([]byte("b")), Hash([]byte("c"))}
	for i, l := range leaves {
		require.NoError(t, back.PushBack(l))
		sparse.SetLeaf(uint64(i), l)
	}

	require.Equal(t, back.RootHash(), sparse.RootHash())
}

func TestSparseTreeProofVerifiesAfterUpdate(t *testing.T) {
	tr, err := NewSparseTree(5, 0)
	require.NoError(t, err)

	tr.SetLeaf(3, Hash([]byte("x")))
	proof := tr.Proof(3)
	require.Equal(t, tr.RootHash(), proof.RootHash)
	require.True(t, proof.Verify(0))

	// updating a different leaf changes the root but not the target proof's shape.
	tr.SetLeaf(7, Hash([]byte("y")))
	proof2 := tr.Proof(3)
	require.NotEqual(t, proof.RootHash, proof2.RootHash)
	require.True(t, proof2.Verify(0))
}
