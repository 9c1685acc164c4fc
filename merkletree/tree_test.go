package merkletree

import (
	"testing"

	"github.com/W3W-EdU/machine-emulator/merrors"
	"github.com/stretchr/testify/require"
)

func TestBackTreeThreeLeafRoot(t *testing.T) {
	tr, err := NewBackTree(3, 0, 0)
	require.NoError(t, err)

	a := Hash([]byte("a"))
	b := Hash([]byte("b"))
	c := Hash([]byte("c"))

	require.NoError(t, tr.PushBack(a))
	require.NoError(t, tr.PushBack(b))
	require.NoError(t, tr.PushBack(c))

	z0 := NewPristineTable(3).At(0)
	z1 := Concat(z0, z0)
	want := Concat(Concat(Concat(a, b), Concat(c, z0)), Concat(z1, z1))

	require.Equal(t, want, tr.RootHash())
}

func TestBackTreeFullSemantics(t *testing.T) {
	tr, err := NewBackTree(2, 0, 0)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.False(t, tr.Full())
		require.NoError(t, tr.PushBack(Hash([]byte{byte(i)})))
	}
	require.True(t, tr.Full())

	err = tr.PushBack(Hash([]byte("x")))
	require.ErrorIs(t, err, merrors.ErrOutOfRange)

	_, err = tr.NextLeafProof()
	require.ErrorIs(t, err, merrors.ErrOutOfRange)

	// root is still well-defined once full.
	require.NotEqual(t, Digest{}, tr.RootHash())
}

func TestBackTreeNextLeafProofVerifies(t *testing.T) {
	tr, err := NewBackTree(4, 1, 0)
	require.NoError(t, err)

	require.NoError(t, tr.PushBack(Hash([]byte("leaf0"))))

	proof, err := tr.NextLeafProof()
	require.NoError(t, err)
	require.Equal(t, tr.RootHash(), proof.RootHash)
	require.True(t, proof.Verify(tr.log2LeafSize))
}

func TestNewBackTreeRejectsInconsistentParams(t *testing.T) {
	_, err := NewBackTree(2, 3, 0) // leaf bigger than root
	require.Error(t, err)

	_, err = NewBackTree(3, 0, 1) // word bigger than leaf
	require.Error(t, err)

	_, err = NewBackTree(64, 0, 0) // does not fit uint64 with a spare bit
	require.Error(t, err)
}

func TestBackTreePushRootConsistency(t *testing.T) {
	tr, err := NewBackTree(5, 0, 0)
	require.NoError(t, err)

	var leaves []Digest
	for i := 0; i < 10; i++ {
		l := Hash([]byte{byte(i), byte(i * 7)})
		leaves = append(leaves, l)
		require.NoError(t, tr.PushBack(l))
		require.Equal(t, naiveRoot(leaves, tr.maxLeaves, 0), tr.RootHash())
	}
}

// naiveRoot computes the root the slow way: pad leaves with pristine
// zeros out to maxLeaves and hash bottom-up.
func naiveRoot(leaves []Digest, maxLeaves uint64, log2LeafSize int) Digest {
	pristine := NewPristineTable(64).At(log2LeafSize)
	level := make([]Digest, maxLeaves)
	for i := range level {
		if uint64(i) < uint64(len(leaves)) {
			level[i] = leaves[i]
		} else {
			level[i] = pristine
		}
	}
	for len(level) > 1 {
		next := make([]Digest, len(level)/2)
		for i := range next {
			next[i] = Concat(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}
