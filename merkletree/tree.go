package merkletree

import "github.com/W3W-EdU/machine-emulator/merrors"

// BackTree is an append-only Merkle commitment over a leaf vector of
// size up to 2^depth. It keeps only the O(depth) "frontier" of completed
// subtrees that have not yet been absorbed into a larger one, per
// spec.md §4.2.
//
// The frontier is a slice of *Digest, nil until a slot is first filled.
// Whether a slot is meaningful is decided by the bit test on leafCount
// alone: a slot absorbed into a larger subtree keeps its old digest and
// is not reset to nil, so nil does not by itself mark a pristine slot.
type BackTree struct {
	log2RootSize int
	log2LeafSize int
	log2WordSize int
	depth        int
	maxLeaves    uint64

	leafCount uint64
	frontier  []*Digest // length depth+1; frontier[i] valid iff bit i of leafCount is set

	pristine *PristineTable
}

// NewBackTree constructs a back Merkle tree with the given height
// parameters, in O(depth) hashes. It rejects inconsistent parameters.
func NewBackTree(log2RootSize, log2LeafSize, log2WordSize int) (*BackTree, error) {
	if log2WordSize < 0 || log2LeafSize < 0 || log2RootSize < 0 {
		return nil, merrors.ErrInvalidArgument
	}
	if log2WordSize > log2LeafSize || log2LeafSize > log2RootSize {
		return nil, merrors.ErrInvalidArgument
	}
	// log2RootSize must fit a uint64 address with one bit to spare: a
	// tree spanning the full 64-bit space cannot be addressed by
	// 1<<log2RootSize without overflow.
	if log2RootSize >= 64 {
		return nil, merrors.ErrOutOfRange
	}

	depth := log2RootSize - log2LeafSize
	pristine := NewPristineTable(log2RootSize)

	return &BackTree{
		log2RootSize: log2RootSize,
		log2LeafSize: log2LeafSize,
		log2WordSize: log2WordSize,
		depth:        depth,
		maxLeaves:    uint64(1) << uint(depth),
		frontier:     make([]*Digest, depth+1),
		pristine:     pristine,
	}, nil
}

// LeafCount returns the number of leaves pushed so far.
func (t *BackTree) LeafCount() uint64 { return t.leafCount }

// MaxLeaves returns 2^depth, the tree's capacity.
func (t *BackTree) MaxLeaves() uint64 { return t.maxLeaves }

// Full reports whether the tree has reached capacity.
func (t *BackTree) Full() bool { return t.leafCount == t.maxLeaves }

// PushBack appends one leaf hash. It runs in amortised O(1), worst-case
// O(depth) hashes, and O(depth) memory total. It fails with
// ErrOutOfRange once the tree is full.
func (t *BackTree) PushBack(leafHash Digest) error {
	if t.Full() {
		return merrors.ErrOutOfRange
	}

	carry := leafHash
	for i := 0; ; i++ {
		if t.leafCount&(uint64(1)<<uint(i)) != 0 {
			merged := Concat(*t.frontier[i], carry)
			carry = merged
			continue
		}
		d := carry
		t.frontier[i] = &d
		break
	}
	t.leafCount++
	return nil
}

// RootHash returns the Merkle root over all leaves pushed so far, padded
// with pristine zero leaves out to MaxLeaves.
func (t *BackTree) RootHash() Digest {
	if t.Full() {
		return *t.frontier[t.depth]
	}

	root := t.pristine.At(t.log2LeafSize)
	for i := 0; i < t.depth; i++ {
		if t.leafCount&(uint64(1)<<uint(i)) != 0 {
			root = Concat(*t.frontier[i], root)
		} else {
			root = Concat(root, t.pristine.At(t.log2LeafSize+i))
		}
	}
	return root
}

// NextLeafProof returns a proof for the next (not-yet-pushed) leaf slot:
// its target address, the pristine leaf digest, the sibling path implied
// by the current frontier, and the current root. It fails with
// ErrOutOfRange once the tree is full.
func (t *BackTree) NextLeafProof() (*Proof, error) {
	if t.Full() {
		return nil, merrors.ErrOutOfRange
	}

	siblings := make([]Digest, t.depth)
	for i := 0; i < t.depth; i++ {
		if t.leafCount&(uint64(1)<<uint(i)) != 0 {
			siblings[i] = *t.frontier[i]
		} else {
			siblings[i] = t.pristine.At(t.log2LeafSize + i)
		}
	}

	return &Proof{
		TargetAddress: t.leafCount << uint(t.log2LeafSize),
		TargetHash:    t.pristine.At(t.log2LeafSize),
		Siblings:      siblings,
		RootHash:      t.RootHash(),
	}, nil
}
