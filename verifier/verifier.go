// Package verifier replays an access log against claimed root hashes
// with zero access to real machine state (spec.md §4.8): the only
// inputs are the log itself and the two roots a prover claims bound the
// step. This is the trust boundary a dispute-resolution contract (or
// any other relying party) sits behind.
//
// Grounded on rvgo/oracle/state_oracle.go's VMStateOracle.Get, which
// verifies a claimed (left, right) pair against a key using nothing but
// the pair itself — no access to a live tree — and on
// rvgo/slow/vm.go's pure re-derivation of state fields from encoded
// bytes rather than from a live *VMState. Both are the same discipline
// this package generalizes to a full access log.
package verifier

import (
	"fmt"

	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
)

// leafHeight is the height of an access-log leaf above the tree floor:
// every entry addresses one 8-byte word (alog/wire.go, access/logging.go).
const leafHeight = 3

var wordDigest = merkletree.WordDigest

// VerifyLog replays log against initialRoot with no access to real
// state, checking only that each entry's own sibling path is internally
// consistent with the root as of that entry, and returns the resulting
// root after every entry has been applied. It never compares against a
// claimed final root; callers that have one should use
// VerifyStateTransition instead.
//
// An entry's ValueRead must match its pre-image at the claimed root; a
// write's ValueWritten becomes the new leaf for every subsequent entry.
// The n-th entry's Siblings were captured at the moment of that access
// (spec.md §4.6), so they verify against the root left by the (n-1)-th
// entry's effect, not against initialRoot directly past the first entry.
func VerifyLog(log *alog.Log, initialRoot merkletree.Digest) (merkletree.Digest, error) {
	root := initialRoot
	for i, e := range log.Entries {
		preProof := &merkletree.Proof{
			TargetAddress: e.Address,
			TargetHash:    wordDigest(e.ValueRead),
			Siblings:      e.Siblings,
			RootHash:      root,
		}
		if !preProof.Verify(leafHeight) {
			return root, fmt.Errorf("%w: entry %d (%s at 0x%x) does not reconstruct the current root", merrors.ErrProofMismatch, i, e.Kind, e.Address)
		}
		if e.IsWrite() {
			root = merkletree.RootFromLeaf(wordDigest(e.ValueWritten), e.Address, leafHeight, e.Siblings)
		}
	}
	return root, nil
}

// VerifyStateTransition replays log exactly as VerifyLog does, and
// additionally requires the log's starting and ending roots to match
// the caller's claims exactly (spec.md §4.8). This is the check a
// dispute-resolution contract performs: given a log a prover submitted
// plus the two roots it claims bound the disputed step, confirm the log
// is internally consistent AND actually connects those two roots.
func VerifyStateTransition(log *alog.Log, claimedInitialRoot, claimedFinalRoot merkletree.Digest) error {
	finalRoot, err := VerifyLog(log, claimedInitialRoot)
	if err != nil {
		return err
	}
	if finalRoot != claimedFinalRoot {
		return fmt.Errorf("%w: replayed root %x, claimed %x", merrors.ErrRootMismatch, finalRoot, claimedFinalRoot)
	}
	return nil
}
