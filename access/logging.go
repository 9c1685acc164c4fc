package access

import (
	"github.com/W3W-EdU/machine-emulator/alog"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
)

// wordLog2Size is this module's log2_word_size: every access-log entry
// addresses an 8-byte-aligned word, matching the shadow slot size
// (machine.slotSize) and the natural register width. Every memory access
// this back-end accepts must pass PmaEntry.Contains first, which rejects
// anything not naturally aligned to its own size; a naturally aligned
// access of at most 8 bytes can never cross an 8-byte-aligned word
// boundary, so spec.md §4.6's multi-word decomposition is structurally
// unreachable here rather than merely unexercised.
const wordLog2Size = 3
const wordSize = uint64(1) << wordLog2Size

// LoggingAccess is the StateAccess implementation used by step mode
// (spec.md §4.5). Every read and write is recorded exactly once, in
// order, into Log, carrying the Merkle sibling path against Tree at the
// moment of the access. Tree must already be primed to the same root as
// State's current content; callers (emulator.Machine) are responsible for
// keeping the two in sync across steps.
type LoggingAccess struct {
	State *machine.State
	Tree  *merkletree.SparseTree
	Log   *alog.Log
}

func NewLoggingAccess(s *machine.State, tree *merkletree.SparseTree, log *alog.Log) *LoggingAccess {
	return &LoggingAccess{State: s, Tree: tree, Log: log}
}

var _ StateAccess = (*LoggingAccess)(nil)

var wordDigest = merkletree.WordDigest

// recordRead appends a read entry for the word at addr carrying value,
// taking the sibling path against the tree's current state.
func (a *LoggingAccess) recordRead(addr uint64, value uint64) {
	proof := a.Tree.Proof(addr)
	a.Log.Append(alog.Entry{
		Kind:      alog.KindRead,
		Address:   proof.TargetAddress,
		SizeLog2:  wordLog2Size,
		ValueRead: value,
		Siblings:  proof.Siblings,
	})
}

// recordWrite appends a write entry for the word at addr (old -> new),
// capturing the sibling path before updating the tree, then updates the
// tree to reflect the new leaf.
func (a *LoggingAccess) recordWrite(addr uint64, oldValue, newValue uint64) {
	proof := a.Tree.Proof(addr)
	a.Log.Append(alog.Entry{
		Kind:         alog.KindWrite,
		Address:      proof.TargetAddress,
		SizeLog2:     wordLog2Size,
		ValueRead:    oldValue,
		ValueWritten: newValue,
		Siblings:     proof.Siblings,
	})
	a.Tree.SetLeaf(addr, wordDigest(newValue))
}

func (a *LoggingAccess) ReadX(reg int) uint64 {
	v := a.State.X[reg]
	a.recordRead(machine.ShadowX(reg), v)
	return v
}

func (a *LoggingAccess) WriteX(reg int, v uint64) {
	old := a.State.X[reg]
	if reg != 0 {
		a.State.X[reg] = v
	} else {
		v = 0 // x0 is hardwired to zero; still logged as a no-op write
	}
	a.recordWrite(machine.ShadowX(reg), old, v)
}

func (a *LoggingAccess) ReadPC() uint64 {
	v := a.State.PC
	a.recordRead(machine.ShadowPC, v)
	return v
}
func (a *LoggingAccess) WritePC(v uint64) {
	old := a.State.PC
	a.State.PC = v
	a.recordWrite(machine.ShadowPC, old, v)
}

func (a *LoggingAccess) ReadMinstret() uint64 {
	v := a.State.Minstret
	a.recordRead(machine.ShadowMinstret, v)
	return v
}
func (a *LoggingAccess) WriteMinstret(v uint64) {
	old := a.State.Minstret
	a.State.Minstret = v
	a.recordWrite(machine.ShadowMinstret, old, v)
}

func (a *LoggingAccess) ReadMcycle() uint64 {
	v := a.State.Mcycle
	a.recordRead(machine.ShadowMcycle, v)
	return v
}
func (a *LoggingAccess) WriteMcycle(v uint64) {
	old := a.State.Mcycle
	a.State.Mcycle = v
	a.recordWrite(machine.ShadowMcycle, old, v)
}

// csrField binds one CSR's shadow address to pointer-like get/set
// closures so every M/S-mode CSR accessor below can share one
// read/write body instead of forty near-identical copies.
type csrField struct {
	addr uint64
	get  func() uint64
	set  func(uint64)
}

func (a *LoggingAccess) csr(field csrField) uint64 {
	v := field.get()
	a.recordRead(field.addr, v)
	return v
}

func (a *LoggingAccess) writeCSR(field csrField, v uint64) {
	old := field.get()
	field.set(v)
	a.recordWrite(field.addr, old, v)
}

func (a *LoggingAccess) ReadMstatus() uint64 {
	return a.csr(csrField{machine.ShadowMstatus, func() uint64 { return a.State.Mstatus }, nil})
}
func (a *LoggingAccess) WriteMstatus(v uint64) {
	a.writeCSR(csrField{machine.ShadowMstatus, func() uint64 { return a.State.Mstatus }, func(x uint64) { a.State.Mstatus = x }}, v)
}
func (a *LoggingAccess) ReadMtvec() uint64 {
	return a.csr(csrField{machine.ShadowMtvec, func() uint64 { return a.State.Mtvec }, nil})
}
func (a *LoggingAccess) WriteMtvec(v uint64) {
	a.writeCSR(csrField{machine.ShadowMtvec, func() uint64 { return a.State.Mtvec }, func(x uint64) { a.State.Mtvec = x }}, v)
}
func (a *LoggingAccess) ReadMscratch() uint64 {
	return a.csr(csrField{machine.ShadowMscratch, func() uint64 { return a.State.Mscratch }, nil})
}
func (a *LoggingAccess) WriteMscratch(v uint64) {
	a.writeCSR(csrField{machine.ShadowMscratch, func() uint64 { return a.State.Mscratch }, func(x uint64) { a.State.Mscratch = x }}, v)
}
func (a *LoggingAccess) ReadMepc() uint64 {
	return a.csr(csrField{machine.ShadowMepc, func() uint64 { return a.State.Mepc }, nil})
}
func (a *LoggingAccess) WriteMepc(v uint64) {
	a.writeCSR(csrField{machine.ShadowMepc, func() uint64 { return a.State.Mepc }, func(x uint64) { a.State.Mepc = x }}, v)
}
func (a *LoggingAccess) ReadMcause() uint64 {
	return a.csr(csrField{machine.ShadowMcause, func() uint64 { return a.State.Mcause }, nil})
}
func (a *LoggingAccess) WriteMcause(v uint64) {
	a.writeCSR(csrField{machine.ShadowMcause, func() uint64 { return a.State.Mcause }, func(x uint64) { a.State.Mcause = x }}, v)
}
func (a *LoggingAccess) ReadMtval() uint64 {
	return a.csr(csrField{machine.ShadowMtval, func() uint64 { return a.State.Mtval }, nil})
}
func (a *LoggingAccess) WriteMtval(v uint64) {
	a.writeCSR(csrField{machine.ShadowMtval, func() uint64 { return a.State.Mtval }, func(x uint64) { a.State.Mtval = x }}, v)
}
func (a *LoggingAccess) ReadMisa() uint64 {
	return a.csr(csrField{machine.ShadowMisa, func() uint64 { return a.State.Misa }, nil})
}
func (a *LoggingAccess) WriteMisa(v uint64) {
	a.writeCSR(csrField{machine.ShadowMisa, func() uint64 { return a.State.Misa }, func(x uint64) { a.State.Misa = x }}, v)
}
func (a *LoggingAccess) ReadMie() uint64 {
	return a.csr(csrField{machine.ShadowMie, func() uint64 { return a.State.Mie }, nil})
}
func (a *LoggingAccess) WriteMie(v uint64) {
	a.writeCSR(csrField{machine.ShadowMie, func() uint64 { return a.State.Mie }, func(x uint64) { a.State.Mie = x }}, v)
}
func (a *LoggingAccess) ReadMip() uint64 {
	return a.csr(csrField{machine.ShadowMip, func() uint64 { return a.State.Mip }, nil})
}
func (a *LoggingAccess) WriteMip(v uint64) {
	a.writeCSR(csrField{machine.ShadowMip, func() uint64 { return a.State.Mip }, func(x uint64) { a.State.Mip = x }}, v)
}
func (a *LoggingAccess) ReadMedeleg() uint64 {
	return a.csr(csrField{machine.ShadowMedeleg, func() uint64 { return a.State.Medeleg }, nil})
}
func (a *LoggingAccess) WriteMedeleg(v uint64) {
	a.writeCSR(csrField{machine.ShadowMedeleg, func() uint64 { return a.State.Medeleg }, func(x uint64) { a.State.Medeleg = x }}, v)
}
func (a *LoggingAccess) ReadMideleg() uint64 {
	return a.csr(csrField{machine.ShadowMideleg, func() uint64 { return a.State.Mideleg }, nil})
}
func (a *LoggingAccess) WriteMideleg(v uint64) {
	a.writeCSR(csrField{machine.ShadowMideleg, func() uint64 { return a.State.Mideleg }, func(x uint64) { a.State.Mideleg = x }}, v)
}
func (a *LoggingAccess) ReadMcounteren() uint64 {
	return a.csr(csrField{machine.ShadowMcounteren, func() uint64 { return a.State.Mcounteren }, nil})
}
func (a *LoggingAccess) WriteMcounteren(v uint64) {
	a.writeCSR(csrField{machine.ShadowMcounteren, func() uint64 { return a.State.Mcounteren }, func(x uint64) { a.State.Mcounteren = x }}, v)
}

func (a *LoggingAccess) ReadStvec() uint64 {
	return a.csr(csrField{machine.ShadowStvec, func() uint64 { return a.State.Stvec }, nil})
}
func (a *LoggingAccess) WriteStvec(v uint64) {
	a.writeCSR(csrField{machine.ShadowStvec, func() uint64 { return a.State.Stvec }, func(x uint64) { a.State.Stvec = x }}, v)
}
func (a *LoggingAccess) ReadSscratch() uint64 {
	return a.csr(csrField{machine.ShadowSscratch, func() uint64 { return a.State.Sscratch }, nil})
}
func (a *LoggingAccess) WriteSscratch(v uint64) {
	a.writeCSR(csrField{machine.ShadowSscratch, func() uint64 { return a.State.Sscratch }, func(x uint64) { a.State.Sscratch = x }}, v)
}
func (a *LoggingAccess) ReadSepc() uint64 {
	return a.csr(csrField{machine.ShadowSepc, func() uint64 { return a.State.Sepc }, nil})
}
func (a *LoggingAccess) WriteSepc(v uint64) {
	a.writeCSR(csrField{machine.ShadowSepc, func() uint64 { return a.State.Sepc }, func(x uint64) { a.State.Sepc = x }}, v)
}
func (a *LoggingAccess) ReadScause() uint64 {
	return a.csr(csrField{machine.ShadowScause, func() uint64 { return a.State.Scause }, nil})
}
func (a *LoggingAccess) WriteScause(v uint64) {
	a.writeCSR(csrField{machine.ShadowScause, func() uint64 { return a.State.Scause }, func(x uint64) { a.State.Scause = x }}, v)
}
func (a *LoggingAccess) ReadStval() uint64 {
	return a.csr(csrField{machine.ShadowStval, func() uint64 { return a.State.Stval }, nil})
}
func (a *LoggingAccess) WriteStval(v uint64) {
	a.writeCSR(csrField{machine.ShadowStval, func() uint64 { return a.State.Stval }, func(x uint64) { a.State.Stval = x }}, v)
}
func (a *LoggingAccess) ReadSatp() uint64 {
	return a.csr(csrField{machine.ShadowSatp, func() uint64 { return a.State.Satp }, nil})
}
func (a *LoggingAccess) WriteSatp(v uint64) {
	a.writeCSR(csrField{machine.ShadowSatp, func() uint64 { return a.State.Satp }, func(x uint64) { a.State.Satp = x }}, v)
}
func (a *LoggingAccess) ReadScounteren() uint64 {
	return a.csr(csrField{machine.ShadowScounteren, func() uint64 { return a.State.Scounteren }, nil})
}
func (a *LoggingAccess) WriteScounteren(v uint64) {
	a.writeCSR(csrField{machine.ShadowScounteren, func() uint64 { return a.State.Scounteren }, func(x uint64) { a.State.Scounteren = x }}, v)
}

func (a *LoggingAccess) ReadIlrsc() uint64 {
	return a.csr(csrField{machine.ShadowIlrsc, func() uint64 { return a.State.Ilrsc }, nil})
}
func (a *LoggingAccess) WriteIlrsc(v uint64) {
	a.writeCSR(csrField{machine.ShadowIlrsc, func() uint64 { return a.State.Ilrsc }, func(x uint64) { a.State.Ilrsc = x }}, v)
}

func (a *LoggingAccess) currentIflags() uint64 {
	return machine.PackIflags(a.State.IflagsH, a.State.IflagsI, a.State.IflagsY, a.State.IflagsPRV)
}

func (a *LoggingAccess) ReadIflagsH() bool {
	a.recordRead(machine.ShadowIflags, a.currentIflags())
	return a.State.IflagsH
}
func (a *LoggingAccess) SetIflagsH() {
	old := a.currentIflags()
	a.State.IflagsH = true
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}
func (a *LoggingAccess) ClearIflagsH() {
	old := a.currentIflags()
	a.State.IflagsH = false
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}
func (a *LoggingAccess) ReadIflagsI() bool {
	a.recordRead(machine.ShadowIflags, a.currentIflags())
	return a.State.IflagsI
}
func (a *LoggingAccess) ResetIflagsI() {
	old := a.currentIflags()
	a.State.IflagsI = false
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}
func (a *LoggingAccess) ReadIflagsY() bool {
	a.recordRead(machine.ShadowIflags, a.currentIflags())
	return a.State.IflagsY
}
func (a *LoggingAccess) SetIflagsY() {
	old := a.currentIflags()
	a.State.IflagsY = true
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}
func (a *LoggingAccess) ResetIflagsY() {
	old := a.currentIflags()
	a.State.IflagsY = false
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}
func (a *LoggingAccess) ReadIflagsPRV() uint8 {
	a.recordRead(machine.ShadowIflags, a.currentIflags())
	return a.State.IflagsPRV
}
func (a *LoggingAccess) WriteIflagsPRV(v uint8) {
	old := a.currentIflags()
	a.State.IflagsPRV = v
	a.recordWrite(machine.ShadowIflags, old, a.currentIflags())
}

func (a *LoggingAccess) ReadMtimecmp() uint64 {
	return a.csr(csrField{machine.ShadowMtimecmp, func() uint64 { return a.State.Mtimecmp }, nil})
}
func (a *LoggingAccess) WriteMtimecmp(v uint64) {
	a.writeCSR(csrField{machine.ShadowMtimecmp, func() uint64 { return a.State.Mtimecmp }, func(x uint64) { a.State.Mtimecmp = x }}, v)
}
func (a *LoggingAccess) ReadFromhost() uint64 {
	return a.csr(csrField{machine.ShadowFromhost, func() uint64 { return a.State.Fromhost }, nil})
}
func (a *LoggingAccess) WriteFromhost(v uint64) {
	a.writeCSR(csrField{machine.ShadowFromhost, func() uint64 { return a.State.Fromhost }, func(x uint64) { a.State.Fromhost = x }}, v)
}
func (a *LoggingAccess) ReadTohost() uint64 {
	return a.csr(csrField{machine.ShadowTohost, func() uint64 { return a.State.Tohost }, nil})
}
func (a *LoggingAccess) WriteTohost(v uint64) {
	a.writeCSR(csrField{machine.ShadowTohost, func() uint64 { return a.State.Tohost }, func(x uint64) { a.State.Tohost = x }}, v)
}

func (a *LoggingAccess) ReadPMA(index int) *machine.PmaEntry {
	// PMA descriptors are immutable for the lifetime of a step (no
	// instruction changes the memory map), so reading one is not logged
	// against the Merkle tree; only the memory/scalar words the step
	// actually touches are.
	return a.State.PMAAt(index)
}

// pmaWordAddress maps a physical address inside a memory-kind PMA to its
// address in the machine-wide shadow+memory tree: memory ranges are
// placed immediately after the scalar shadow region, at an offset fixed
// by the PMA's own physical Start. This keeps every PMA's bytes at a
// stable, non-overlapping tree address regardless of load order.
func pmaWordAddress(pma *machine.PmaEntry, wordAddr uint64) uint64 {
	return machine.ShadowStateSize + wordAddr
}

// subWordMask returns the bitmask, in the space of a shift-left-aligned
// word, covering the 2^sizeLog2 bytes starting sizeLog2-"shift" bits in.
func subWordMask(sizeLog2 uint, shift uint64) uint64 {
	size := uint64(1) << sizeLog2
	if size >= 8 {
		return ^uint64(0)
	}
	return ((uint64(1) << (8 * size)) - 1) << shift
}

func (a *LoggingAccess) ReadMemory(pma *machine.PmaEntry, paddr uint64, sizeLog2 uint) (uint64, error) {
	if !pma.Contains(paddr, sizeLog2) {
		return 0, merrors.ErrBusError
	}
	wordAddr := paddr &^ (wordSize - 1)
	word, err := pma.ReadWord(wordAddr, wordLog2Size)
	if err != nil {
		return 0, err
	}
	a.recordRead(pmaWordAddress(pma, wordAddr), word)

	shift := (paddr - wordAddr) * 8
	return (word & subWordMask(sizeLog2, shift)) >> shift, nil
}

func (a *LoggingAccess) WriteMemory(pma *machine.PmaEntry, paddr uint64, value uint64, sizeLog2 uint) error {
	if !pma.Contains(paddr, sizeLog2) {
		return merrors.ErrBusError
	}
	wordAddr := paddr &^ (wordSize - 1)
	oldWord, err := pma.ReadWord(wordAddr, wordLog2Size)
	if err != nil {
		return err
	}

	shift := (paddr - wordAddr) * 8
	mask := subWordMask(sizeLog2, shift)
	newWord := (oldWord &^ mask) | ((value << shift) & mask)

	if err := pma.WriteWord(wordAddr, wordLog2Size, newWord); err != nil {
		return err
	}
	a.recordWrite(pmaWordAddress(pma, wordAddr), oldWord, newWord)
	return nil
}
