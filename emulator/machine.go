// Package emulator wires the access back-ends, the step engine, and the
// Merkle mirror into the single external handle spec.md §6 describes:
// create/load a machine, run it, step it with a log, reset its
// micro-architecture, deliver a CMIO response, and read back roots and
// proofs. It is the one package allowed to construct both
// access.PlainAccess and access.LoggingAccess and to own a live
// merkletree.SparseTree alongside a machine.State.
//
// Grounded on rvgo/cmd/run.go's Run loop (state, step function, proof-at
// predicate) and rvgo/fast/instrumented.go's InstrumentedState, which is
// exactly this kind of state+tree-mirror+step-function bundle, adapted
// from asterisc's fixed proof-at-every-N-steps policy to spec.md §6's
// explicit log_step_uarch/log_reset_uarch/log_send_cmio_response verbs.
package emulator

import (
	"fmt"

	"github.com/W3W-EdU/machine-emulator/access"
	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
	"github.com/W3W-EdU/machine-emulator/uarch"
)

// log2AddressSpace is the height of the machine-wide Merkle tree: large
// enough to cover the scalar shadow region, the CMIO buffer, and any
// memory range a config declares, while leaving the "one bit spare"
// invariant spec.md §3 requires for log2_root_size intact.
const log2AddressSpace = 48

// BreakReason explains why Run stopped.
type BreakReason int

const (
	BreakReasonLimitReached BreakReason = iota
	BreakReasonHalted
)

func (r BreakReason) String() string {
	switch r {
	case BreakReasonHalted:
		return "halted"
	default:
		return "limit_reached"
	}
}

// Machine is the external handle spec.md §6 exposes. It owns the
// machine state, a Merkle mirror kept continuously in sync with it, and
// the values needed to give reset_uarch a pristine image to return to.
type Machine struct {
	State *machine.State
	Tree  *merkletree.SparseTree
	rt    *machine.RuntimeConfig

	resetX  [32]uint64
	resetPC uint64
}

// Create builds a fresh Machine from cfg. runtimeConfig may be nil.
func Create(cfg *machine.Config, runtimeConfig *machine.RuntimeConfig) (*Machine, error) {
	s := machine.NewFromConfig(cfg)
	s.Pmas = append(s.Pmas, machine.NewCmioRxBufferPMA())

	tree, err := merkletree.NewSparseTree(log2AddressSpace, 3)
	if err != nil {
		return nil, err
	}

	m := &Machine{State: s, Tree: tree, rt: runtimeConfig, resetX: s.X, resetPC: s.PC}
	m.seedTree()
	return m, nil
}

// Load reads a Config from path and builds a Machine from it (spec.md
// §6's load(path, runtime_config)).
func Load(path string, runtimeConfig *machine.RuntimeConfig) (*Machine, error) {
	cfg, err := machine.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return Create(cfg, runtimeConfig)
}

var wordDigest = merkletree.WordDigest

// seedTree hashes the machine's current image into Tree leaf by leaf.
// Called at construction and after every unlogged operation (Run,
// ResetUarch, SendCmioResponse), since access.PlainAccess leaves Tree
// untouched; the logged operations go through access.LoggingAccess,
// which keeps Tree and State in lockstep itself.
func (m *Machine) seedTree() {
	for addr := uint64(0); addr < machine.ShadowStateSize; addr += 8 {
		m.Tree.SetLeaf(addr, wordDigest(m.State.ShadowWord(addr)))
	}
	for i := range m.State.Pmas {
		pma := &m.State.Pmas[i]
		if pma.Kind != machine.PmaKindMemory {
			continue
		}
		for off := uint64(0); off < pma.Length; off += 8 {
			word, err := pma.ReadWord(pma.Start+off, 3)
			if err != nil {
				panic(fmt.Errorf("%w: seeding tree at 0x%x", err, pma.Start+off))
			}
			m.Tree.SetLeaf(machine.ShadowStateSize+pma.Start+off, wordDigest(word))
		}
	}
}

// Run advances the machine by plain (unlogged) steps, stopping after
// limit steps or as soon as the machine halts, whichever comes first
// (spec.md §4.4, §4.7). PlainAccess skips proof-path bookkeeping for
// speed, so Tree is left stale by the steps taken here; reseeding it
// before returning keeps the State/Tree lockstep LoggingAccess relies on
// (see its doc comment) so a LogStepUarch/LogResetUarch/
// LogSendCmioResponse call immediately afterwards still reports a
// correct pre-root instead of replaying against a pre-Run root.
func (m *Machine) Run(limit uint64) (BreakReason, error) {
	a := access.NewPlainAccess(m.State)
	reason := BreakReasonLimitReached
	for i := uint64(0); i < limit; i++ {
		if m.State.IflagsH {
			reason = BreakReasonHalted
			break
		}
		if err := uarch.Step(a); err != nil {
			m.seedTree()
			return BreakReasonHalted, err
		}
	}
	if m.State.IflagsH {
		reason = BreakReasonHalted
	}
	m.seedTree()
	return reason, nil
}

// LogStepUarch performs exactly one logged micro-architectural step and
// returns the resulting access log (spec.md §6's log_step_uarch). A
// halted machine produces an empty log and takes no action: the halted
// check is this package's responsibility, not the step engine's (see
// uarch.Step's doc comment).
func (m *Machine) LogStepUarch() (*alog.Log, error) {
	log := &alog.Log{}
	if m.State.IflagsH {
		return log, nil
	}
	a := access.NewLoggingAccess(m.State, m.Tree, log)
	if err := uarch.Step(a); err != nil {
		return log, err
	}
	return log, nil
}

// resetUarch restores the register file and PC to the image captured at
// Create/Load time, and clears the halted flag, through the given
// access back-end. Simplification: this module conflates the uarch's
// own counters with the machine-wide mcycle/minstret (spec.md's
// decoder/ALU is out of scope, so there is only one instruction stream
// to count), so reset_uarch leaves those two counters untouched; see
// DESIGN.md.
func resetUarch(a access.StateAccess, resetX [32]uint64, resetPC uint64) {
	for i := 1; i < 32; i++ {
		a.WriteX(i, resetX[i])
	}
	a.WritePC(resetPC)
	a.ClearIflagsH()
}

// ResetUarch resets the micro-architecture sub-state without producing
// a log (spec.md §6's reset_uarch()).
func (m *Machine) ResetUarch() {
	resetUarch(access.NewPlainAccess(m.State), m.resetX, m.resetPC)
	m.seedTree()
}

// LogResetUarch performs the same reset as ResetUarch, but through the
// logging back-end, returning the resulting access log (spec.md §6's
// log_reset_uarch).
func (m *Machine) LogResetUarch() *alog.Log {
	log := &alog.Log{}
	resetUarch(access.NewLoggingAccess(m.State, m.Tree, log), m.resetX, m.resetPC)
	return log
}

// cmioAckWord packs reason and length exactly as
// original_source/src/send-cmio-response.cpp does: reason in bits
// 32-47, length in bits 0-31.
func cmioAckWord(reason uint16, length int) uint64 {
	return uint64(reason)<<32 | uint64(uint32(length))
}

// sendCmioResponse writes data into the CMIO receive buffer and the
// packed reason/length into fromhost, through the given access back-end
// (spec.md §6's send_cmio_response; original_source's
// send-cmio-response.cpp). Requires iflags.Y (the machine must be
// yielding, awaiting exactly this response) and data no larger than the
// receive buffer.
func sendCmioResponse(a access.StateAccess, reason uint16, data []byte) error {
	if !a.ReadIflagsY() {
		return fmt.Errorf("%w: iflags.Y is not set", merrors.ErrInvalidArgument)
	}
	if len(data) > machine.CmioRxBufferLength {
		return fmt.Errorf("%w: cmio response %d bytes exceeds buffer of %d", merrors.ErrInvalidArgument, len(data), machine.CmioRxBufferLength)
	}

	pma, err := findCmioPMA(a)
	if err != nil {
		return err
	}
	for off := 0; off < len(data); off += 8 {
		var word uint64
		for j := 0; j < 8 && off+j < len(data); j++ {
			word |= uint64(data[off+j]) << (8 * j)
		}
		if err := a.WriteMemory(pma, machine.CmioRxBufferStart+uint64(off), word, 3); err != nil {
			return err
		}
	}

	a.WriteFromhost(cmioAckWord(reason, len(data)))
	a.ResetIflagsY()
	return nil
}

func findCmioPMA(a access.StateAccess) (*machine.PmaEntry, error) {
	for i := 0; ; i++ {
		pma := a.ReadPMA(i)
		if pma.Empty() {
			return nil, fmt.Errorf("%w: cmio receive buffer PMA not found", merrors.ErrStateInvariant)
		}
		if pma.Contains(machine.CmioRxBufferStart, 3) {
			return pma, nil
		}
	}
}

// SendCmioResponse delivers a host-to-machine payload without producing
// a log (spec.md §6's send_cmio_response(reason, data)).
func (m *Machine) SendCmioResponse(reason uint16, data []byte) error {
	a := access.NewPlainAccess(m.State)
	err := sendCmioResponse(a, reason, data)
	m.seedTree()
	return err
}

// LogSendCmioResponse performs the same delivery through the logging
// back-end, returning the resulting access log (spec.md §6's
// log_send_cmio_response).
func (m *Machine) LogSendCmioResponse(reason uint16, data []byte) (*alog.Log, error) {
	log := &alog.Log{}
	a := access.NewLoggingAccess(m.State, m.Tree, log)
	if err := sendCmioResponse(a, reason, data); err != nil {
		return log, err
	}
	return log, nil
}

// GetRootHash returns the current whole-state Merkle root.
func (m *Machine) GetRootHash() merkletree.Digest {
	return m.Tree.RootHash()
}

// GetProof returns an inclusion proof for the 8-byte word at address
// (spec.md §6's get_proof). Only word-granularity proofs are meaningful
// against this tree, so sizeLog2 must be 3.
func (m *Machine) GetProof(address uint64, sizeLog2 uint) (*merkletree.Proof, error) {
	if sizeLog2 != 3 {
		return nil, fmt.Errorf("%w: get_proof only supports word-granularity (size_log2=3)", merrors.ErrInvalidArgument)
	}
	return m.Tree.Proof(address), nil
}
