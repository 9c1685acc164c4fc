package merkletree

// Proof is a Merkle inclusion proof for a single leaf: the leaf's target
// address, its (pristine, for NextLeafProof) digest, the sibling digests
// from the leaf upward to the root, and the root they should reconstruct
// to.
//
// Siblings are ordered leaf-first: Siblings[0] is the sibling of the leaf
// itself, Siblings[len-1] is the sibling just below the root.
type Proof struct {
	TargetAddress uint64
	TargetHash    Digest
	Siblings      []Digest
	RootHash      Digest
}

// rootFromLeaf reconstructs a root hash given a leaf digest, its address,
// and a sibling list ordered leaf-first. addr's bits select, at each
// height, whether the sibling is the left or right child.
func rootFromLeaf(leaf Digest, addr uint64, leafHeight int, siblings []Digest) Digest {
	h := leaf
	for i, sib := range siblings {
		bit := (addr >> uint(leafHeight+i)) & 1
		if bit == 0 {
			h = Concat(h, sib)
		} else {
			h = Concat(sib, h)
		}
	}
	return h
}

// Verify checks that the proof's target hash, combined with its sibling
// path, reconstructs exactly the claimed root hash.
func (p *Proof) Verify(leafHeight int) bool {
	return rootFromLeaf(p.TargetHash, p.TargetAddress, leafHeight, p.Siblings) == p.RootHash
}

// RootFromLeaf reconstructs a root hash given a leaf digest, its address,
// and a sibling path ordered leaf-first. Exported for the verifier
// package, which replays an access log against claimed roots without
// ever holding a live tree: each log entry carries its own sibling path,
// and the verifier must both check a claimed root and derive the next
// one, not merely compare two already-known roots.
func RootFromLeaf(leaf Digest, addr uint64, leafHeight int, siblings []Digest) Digest {
	return rootFromLeaf(leaf, addr, leafHeight, siblings)
}
