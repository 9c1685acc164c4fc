package access

import "github.com/W3W-EdU/machine-emulator/machine"

// PlainAccess is the direct, unlogged StateAccess implementation used by
// run mode. It performs no allocation and keeps no log; the cycle
// counter is incremented by the step engine, not here, per spec.md §4.4.
type PlainAccess struct {
	State *machine.State
}

func NewPlainAccess(s *machine.State) *PlainAccess { return &PlainAccess{State: s} }

var _ StateAccess = (*PlainAccess)(nil)

func (a *PlainAccess) ReadX(reg int) uint64   { return a.State.X[reg] }
func (a *PlainAccess) WriteX(reg int, v uint64) {
	if reg == 0 {
		return // x0 is hardwired to zero
	}
	a.State.X[reg] = v
}

func (a *PlainAccess) ReadPC() uint64    { return a.State.PC }
func (a *PlainAccess) WritePC(v uint64)  { a.State.PC = v }

func (a *PlainAccess) ReadMinstret() uint64   { return a.State.Minstret }
func (a *PlainAccess) WriteMinstret(v uint64) { a.State.Minstret = v }
func (a *PlainAccess) ReadMcycle() uint64     { return a.State.Mcycle }
func (a *PlainAccess) WriteMcycle(v uint64)   { a.State.Mcycle = v }

func (a *PlainAccess) ReadMstatus() uint64    { return a.State.Mstatus }
func (a *PlainAccess) WriteMstatus(v uint64)  { a.State.Mstatus = v }
func (a *PlainAccess) ReadMtvec() uint64      { return a.State.Mtvec }
func (a *PlainAccess) WriteMtvec(v uint64)    { a.State.Mtvec = v }
func (a *PlainAccess) ReadMscratch() uint64   { return a.State.Mscratch }
func (a *PlainAccess) WriteMscratch(v uint64) { a.State.Mscratch = v }
func (a *PlainAccess) ReadMepc() uint64       { return a.State.Mepc }
func (a *PlainAccess) WriteMepc(v uint64)     { a.State.Mepc = v }
func (a *PlainAccess) ReadMcause() uint64     { return a.State.Mcause }
func (a *PlainAccess) WriteMcause(v uint64)   { a.State.Mcause = v }
func (a *PlainAccess) ReadMtval() uint64      { return a.State.Mtval }
func (a *PlainAccess) WriteMtval(v uint64)    { a.State.Mtval = v }
func (a *PlainAccess) ReadMisa() uint64       { return a.State.Misa }
func (a *PlainAccess) WriteMisa(v uint64)     { a.State.Misa = v }
func (a *PlainAccess) ReadMie() uint64        { return a.State.Mie }
func (a *PlainAccess) WriteMie(v uint64)      { a.State.Mie = v }
func (a *PlainAccess) ReadMip() uint64        { return a.State.Mip }
func (a *PlainAccess) WriteMip(v uint64)      { a.State.Mip = v }
func (a *PlainAccess) ReadMedeleg() uint64    { return a.State.Medeleg }
func (a *PlainAccess) WriteMedeleg(v uint64)  { a.State.Medeleg = v }
func (a *PlainAccess) ReadMideleg() uint64    { return a.State.Mideleg }
func (a *PlainAccess) WriteMideleg(v uint64)  { a.State.Mideleg = v }
func (a *PlainAccess) ReadMcounteren() uint64 { return a.State.Mcounteren }
func (a *PlainAccess) WriteMcounteren(v uint64) { a.State.Mcounteren = v }

func (a *PlainAccess) ReadStvec() uint64      { return a.State.Stvec }
func (a *PlainAccess) WriteStvec(v uint64)    { a.State.Stvec = v }
func (a *PlainAccess) ReadSscratch() uint64   { return a.State.Sscratch }
func (a *PlainAccess) WriteSscratch(v uint64) { a.State.Sscratch = v }
func (a *PlainAccess) ReadSepc() uint64       { return a.State.Sepc }
func (a *PlainAccess) WriteSepc(v uint64)     { a.State.Sepc = v }
func (a *PlainAccess) ReadScause() uint64     { return a.State.Scause }
func (a *PlainAccess) WriteScause(v uint64)   { a.State.Scause = v }
func (a *PlainAccess) ReadStval() uint64      { return a.State.Stval }
func (a *PlainAccess) WriteStval(v uint64)    { a.State.Stval = v }
func (a *PlainAccess) ReadSatp() uint64       { return a.State.Satp }
func (a *PlainAccess) WriteSatp(v uint64)     { a.State.Satp = v }
func (a *PlainAccess) ReadScounteren() uint64 { return a.State.Scounteren }
func (a *PlainAccess) WriteScounteren(v uint64) { a.State.Scounteren = v }

func (a *PlainAccess) ReadIlrsc() uint64   { return a.State.Ilrsc }
func (a *PlainAccess) WriteIlrsc(v uint64) { a.State.Ilrsc = v }

func (a *PlainAccess) ReadIflagsH() bool  { return a.State.IflagsH }
func (a *PlainAccess) SetIflagsH()        { a.State.IflagsH = true }
func (a *PlainAccess) ClearIflagsH()      { a.State.IflagsH = false }
func (a *PlainAccess) ReadIflagsI() bool  { return a.State.IflagsI }
func (a *PlainAccess) ResetIflagsI()      { a.State.IflagsI = false }
func (a *PlainAccess) ReadIflagsY() bool  { return a.State.IflagsY }
func (a *PlainAccess) SetIflagsY()        { a.State.IflagsY = true }
func (a *PlainAccess) ResetIflagsY()      { a.State.IflagsY = false }
func (a *PlainAccess) ReadIflagsPRV() uint8       { return a.State.IflagsPRV }
func (a *PlainAccess) WriteIflagsPRV(v uint8)     { a.State.IflagsPRV = v }

func (a *PlainAccess) ReadMtimecmp() uint64   { return a.State.Mtimecmp }
func (a *PlainAccess) WriteMtimecmp(v uint64) { a.State.Mtimecmp = v }
func (a *PlainAccess) ReadFromhost() uint64   { return a.State.Fromhost }
func (a *PlainAccess) WriteFromhost(v uint64) { a.State.Fromhost = v }
func (a *PlainAccess) ReadTohost() uint64     { return a.State.Tohost }
func (a *PlainAccess) WriteTohost(v uint64)   { a.State.Tohost = v }

func (a *PlainAccess) ReadPMA(index int) *machine.PmaEntry {
	return a.State.PMAAt(index)
}

func (a *PlainAccess) ReadMemory(pma *machine.PmaEntry, paddr uint64, sizeLog2 uint) (uint64, error) {
	return pma.ReadWord(paddr, sizeLog2)
}

func (a *PlainAccess) WriteMemory(pma *machine.PmaEntry, paddr uint64, value uint64, sizeLog2 uint) error {
	return pma.WriteWord(paddr, sizeLog2, value)
}
