package merkletree

import "github.com/W3W-EdU/machine-emulator/merrors"

// nodeKey addresses one node of a SparseTree by (height, index-at-that-
// height).
type nodeKey struct {
	height int
	index  uint64
}

// SparseTree is a full binary Merkle tree of 2^depth leaves, addressed
// randomly (unlike BackTree, which only ever appends at the end). Only
// touched nodes are stored; an absent node is the pristine digest for
// its height. This is the structure the logging back-end uses to track
// the machine-state root as arbitrary shadow/memory words are read and
// written mid-step (spec.md §4.5's "internal mirror"), and it also
// backs get_proof for already-sealed state.
//
// Grounded on the pristine-fill discipline of
// rvgo/fast/memory.go's zeroHashes / radix.go, adapted from asterisc's
// paged radix structure to a flat map since a single step only ever
// touches a handful of addresses.
type SparseTree struct {
	log2RootSize int
	log2LeafSize int
	depth        int

	pristine *PristineTable
	nodes    map[nodeKey]Digest
}

// NewSparseTree constructs an empty (all-pristine) sparse tree with the
// given parameters. See BackTree for the parameter validation rules,
// which are identical.
func NewSparseTree(log2RootSize, log2LeafSize int) (*SparseTree, error) {
	if log2LeafSize < 0 || log2RootSize < 0 || log2LeafSize > log2RootSize {
		return nil, merrors.ErrInvalidArgument
	}
	if log2RootSize >= 64 {
		return nil, merrors.ErrOutOfRange
	}
	return &SparseTree{
		log2RootSize: log2RootSize,
		log2LeafSize: log2LeafSize,
		depth:        log2RootSize - log2LeafSize,
		pristine:     NewPristineTable(log2RootSize),
		nodes:        make(map[nodeKey]Digest),
	}, nil
}

func (t *SparseTree) node(height int, index uint64) Digest {
	if d, ok := t.nodes[nodeKey{height, index}]; ok {
		return d
	}
	return t.pristine.At(t.log2LeafSize + height)
}

// RootHash returns the current root.
func (t *SparseTree) RootHash() Digest {
	return t.node(t.depth, 0)
}

// GetLeaf returns the current digest at leaf address addr (rounded down
// to leaf granularity).
func (t *SparseTree) GetLeaf(addr uint64) Digest {
	idx := addr >> uint(t.log2LeafSize)
	return t.node(0, idx)
}

// SetLeaf writes a new leaf digest at addr and recomputes every ancestor
// up to the root, in O(depth) hashes.
func (t *SparseTree) SetLeaf(addr uint64, leaf Digest) {
	idx := addr >> uint(t.log2LeafSize)
	t.nodes[nodeKey{0, idx}] = leaf
	for h := 0; h < t.depth; h++ {
		leftIdx := idx &^ 1
		left := t.node(h, leftIdx)
		right := t.node(h, leftIdx+1)
		parentIdx := idx >> 1
		t.nodes[nodeKey{h + 1, parentIdx}] = Concat(left, right)
		idx = parentIdx
	}
}

// Proof returns the current inclusion proof for the leaf at addr.
func (t *SparseTree) Proof(addr uint64) *Proof {
	idx := addr >> uint(t.log2LeafSize)
	target := t.node(0, idx)
	siblings := make([]Digest, t.depth)
	for h := 0; h < t.depth; h++ {
		siblings[h] = t.node(h, idx^1)
		idx >>= 1
	}
	return &Proof{
		TargetAddress: addr &^ ((uint64(1) << uint(t.log2LeafSize)) - 1),
		TargetHash:    target,
		Siblings:      siblings,
		RootHash:      t.RootHash(),
	}
}
