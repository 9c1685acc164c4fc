package verifier

import (
	"fmt"

	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
)

// AddressRange is one declared shadow or memory extent an access log's
// addresses are checked against (spec.md §4.8 step 3's "addresses lie
// in declared shadow/memory ranges"). End is exclusive.
type AddressRange struct {
	Start uint64
	End   uint64
}

// ShadowRange is the AddressRange every step kind implicitly allows: the
// fixed scalar shadow region every operation may touch.
var ShadowRange = AddressRange{Start: 0, End: machine.ShadowStateSize}

func inRanges(addr uint64, ranges []AddressRange) bool {
	for _, r := range ranges {
		if addr >= r.Start && addr < r.End {
			return true
		}
	}
	return false
}

func checkAddressesDeclared(log *alog.Log, ranges []AddressRange) error {
	for i, e := range log.Entries {
		if !inRanges(e.Address, ranges) {
			return fmt.Errorf("%w: entry %d touches undeclared address 0x%x", merrors.ErrProofMismatch, i, e.Address)
		}
	}
	return nil
}

func findUniqueWrite(log *alog.Log, addr uint64) (*alog.Entry, error) {
	var found *alog.Entry
	for i := range log.Entries {
		e := &log.Entries[i]
		if e.IsWrite() && e.Address == addr {
			if found != nil {
				return nil, fmt.Errorf("%w: address 0x%x written more than once", merrors.ErrLogMalformed, addr)
			}
			found = e
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no write recorded to address 0x%x", merrors.ErrLogMalformed, addr)
	}
	return found, nil
}

// checkStepUarchShape applies spec.md §4.8 step 3's semantic checks
// specific to step_uarch: mcycle must advance by exactly one, and
// minstret by zero (a trapped/halting instruction) or one (a retired
// one) — never anything else.
func checkStepUarchShape(log *alog.Log, ranges []AddressRange) error {
	if err := checkAddressesDeclared(log, ranges); err != nil {
		return err
	}
	mcycle, err := findUniqueWrite(log, machine.ShadowMcycle)
	if err != nil {
		return err
	}
	if mcycle.ValueWritten != mcycle.ValueRead+1 {
		return fmt.Errorf("%w: mcycle advanced by %d, want 1", merrors.ErrLogMalformed, mcycle.ValueWritten-mcycle.ValueRead)
	}
	if minstret, err := findUniqueWrite(log, machine.ShadowMinstret); err == nil {
		delta := minstret.ValueWritten - minstret.ValueRead
		if delta != 0 && delta != 1 {
			return fmt.Errorf("%w: minstret advanced by %d, want 0 or 1", merrors.ErrLogMalformed, delta)
		}
	}
	return nil
}

// VerifyStepUarchLog checks a step_uarch log's internal consistency
// (proof chain plus shape) with no claimed roots, deriving its starting
// root from the log's own first entry. Returns the roots it derived so
// a caller with independent knowledge of the true initial root can
// compare against RootHash itself.
func VerifyStepUarchLog(log *alog.Log, ranges []AddressRange) (initialRoot, finalRoot merkletree.Digest, err error) {
	if log.Len() == 0 {
		return merkletree.Digest{}, merkletree.Digest{}, fmt.Errorf("%w: empty step_uarch log", merrors.ErrLogMalformed)
	}
	first := log.Entries[0]
	initialRoot = merkletree.RootFromLeaf(wordDigest(first.ValueRead), first.Address, leafHeight, first.Siblings)
	finalRoot, err = VerifyLog(log, initialRoot)
	if err != nil {
		return initialRoot, finalRoot, err
	}
	return initialRoot, finalRoot, checkStepUarchShape(log, ranges)
}

// VerifyStepUarchStateTransition additionally pins the log to a claimed
// initial and final root (spec.md §6's verify_step_uarch_state_transition).
func VerifyStepUarchStateTransition(log *alog.Log, claimedInitialRoot, claimedFinalRoot merkletree.Digest, ranges []AddressRange) error {
	if err := checkStepUarchShape(log, ranges); err != nil {
		return err
	}
	return VerifyStateTransition(log, claimedInitialRoot, claimedFinalRoot)
}

// checkResetUarchShape applies spec.md §4.8 step 3's semantic checks
// specific to reset_uarch: per this module's simplification
// (emulator.Machine's doc comment on resetUarch), mcycle and minstret
// are main-CPU counters reset_uarch never touches.
func checkResetUarchShape(log *alog.Log, ranges []AddressRange) error {
	if err := checkAddressesDeclared(log, ranges); err != nil {
		return err
	}
	for i, e := range log.Entries {
		if e.IsWrite() && (e.Address == machine.ShadowMcycle || e.Address == machine.ShadowMinstret) {
			return fmt.Errorf("%w: entry %d: reset_uarch must not touch mcycle/minstret", merrors.ErrLogMalformed, i)
		}
	}
	if _, err := findUniqueWrite(log, machine.ShadowPC); err != nil {
		return err
	}
	return nil
}

// VerifyResetUarchLog is reset_uarch's log-only verifier.
func VerifyResetUarchLog(log *alog.Log, ranges []AddressRange) (initialRoot, finalRoot merkletree.Digest, err error) {
	if log.Len() == 0 {
		return merkletree.Digest{}, merkletree.Digest{}, fmt.Errorf("%w: empty reset_uarch log", merrors.ErrLogMalformed)
	}
	first := log.Entries[0]
	initialRoot = merkletree.RootFromLeaf(wordDigest(first.ValueRead), first.Address, leafHeight, first.Siblings)
	finalRoot, err = VerifyLog(log, initialRoot)
	if err != nil {
		return initialRoot, finalRoot, err
	}
	return initialRoot, finalRoot, checkResetUarchShape(log, ranges)
}

// VerifyResetUarchStateTransition is reset_uarch's state-transition
// verifier.
func VerifyResetUarchStateTransition(log *alog.Log, claimedInitialRoot, claimedFinalRoot merkletree.Digest, ranges []AddressRange) error {
	if err := checkResetUarchShape(log, ranges); err != nil {
		return err
	}
	return VerifyStateTransition(log, claimedInitialRoot, claimedFinalRoot)
}

// cmioAckWord mirrors emulator.cmioAckWord's packing (reason in bits
// 32-47, length in bits 0-31); duplicated here rather than imported so
// the verifier package never depends on the machine-owning emulator
// package, keeping it independently embeddable in a dispute contract.
func cmioAckWord(reason uint16, length int) uint64 {
	return uint64(reason)<<32 | uint64(uint32(length))
}

// checkCmioResponseShape applies spec.md §4.8 step 3's semantic checks
// specific to send_cmio_response: the fromhost write must carry exactly
// the packed (reason, len(data)) the caller claims were delivered — a
// log claiming a shorter or longer payload than what was actually
// written is rejected here, which is what makes a verifier reject a
// log built from truncated data (spec.md §8's CMIO example).
func checkCmioResponseShape(log *alog.Log, ranges []AddressRange, reason uint16, dataLen int) error {
	if err := checkAddressesDeclared(log, ranges); err != nil {
		return err
	}
	fromhost, err := findUniqueWrite(log, machine.ShadowFromhost)
	if err != nil {
		return err
	}
	if want := cmioAckWord(reason, dataLen); fromhost.ValueWritten != want {
		return fmt.Errorf("%w: fromhost ack 0x%x does not match reason=0x%x len=%d", merrors.ErrLogMalformed, fromhost.ValueWritten, reason, dataLen)
	}
	// Log entries carry tree addresses: memory words sit at
	// ShadowStateSize plus their physical address.
	bufStart := uint64(machine.ShadowStateSize + machine.CmioRxBufferStart)
	dataWords := 0
	for _, e := range log.Entries {
		if e.IsWrite() && e.Address >= bufStart && e.Address < bufStart+machine.CmioRxBufferLength {
			dataWords++
		}
	}
	wantWords := (dataLen + 7) / 8
	if dataWords != wantWords {
		return fmt.Errorf("%w: cmio response wrote %d words, want %d for %d bytes", merrors.ErrLogMalformed, dataWords, wantWords, dataLen)
	}
	return nil
}

// VerifyCmioResponseLog is send_cmio_response's log-only verifier. reason
// and dataLen are the values the caller claims were delivered.
func VerifyCmioResponseLog(log *alog.Log, ranges []AddressRange, reason uint16, dataLen int) (initialRoot, finalRoot merkletree.Digest, err error) {
	if log.Len() == 0 {
		return merkletree.Digest{}, merkletree.Digest{}, fmt.Errorf("%w: empty send_cmio_response log", merrors.ErrLogMalformed)
	}
	first := log.Entries[0]
	initialRoot = merkletree.RootFromLeaf(wordDigest(first.ValueRead), first.Address, leafHeight, first.Siblings)
	finalRoot, err = VerifyLog(log, initialRoot)
	if err != nil {
		return initialRoot, finalRoot, err
	}
	return initialRoot, finalRoot, checkCmioResponseShape(log, ranges, reason, dataLen)
}

// VerifyCmioResponseStateTransition is send_cmio_response's
// state-transition verifier.
func VerifyCmioResponseStateTransition(log *alog.Log, claimedInitialRoot, claimedFinalRoot merkletree.Digest, ranges []AddressRange, reason uint16, dataLen int) error {
	if err := checkCmioResponseShape(log, ranges, reason, dataLen); err != nil {
		return err
	}
	return VerifyStateTransition(log, claimedInitialRoot, claimedFinalRoot)
}
