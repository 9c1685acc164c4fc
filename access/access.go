// Package access mediates every read and write the instruction step
// engine performs against machine state, behind one small capability
// interface with two concrete back-ends (spec.md §2, §4.3): PlainAccess
// for run (no logging) and LoggingAccess for step (records an access
// log with Merkle proofs).
//
// Grounded on rvgo/oracle.VMStateOracle's two-method capability
// interface (rvgo/oracle/state_oracle.go): one small interface, chosen
// once per step, generated into two concrete implementations — rather
// than the compile-time-polymorphic CRTP the C++ original uses (spec.md
// §9), which Go has no equivalent for.
//
// Every method here corresponds to exactly one item in spec.md §4.3's
// catalogue. Note: read_memory always goes through the read path below,
// never write — spec.md §9 flags the C++ source's apparent
// read-defined-in-terms-of-write typo; that mistake is not reproduced.
package access

import "github.com/W3W-EdU/machine-emulator/machine"

// StateAccess is the capability set the instruction step engine uses to
// touch machine state. Nothing outside a StateAccess implementation ever
// reads or writes State fields directly.
type StateAccess interface {
	ReadX(reg int) uint64
	WriteX(reg int, v uint64)

	ReadPC() uint64
	WritePC(v uint64)

	ReadMinstret() uint64
	WriteMinstret(v uint64)
	ReadMcycle() uint64
	WriteMcycle(v uint64)

	ReadMstatus() uint64
	WriteMstatus(v uint64)
	ReadMtvec() uint64
	WriteMtvec(v uint64)
	ReadMscratch() uint64
	WriteMscratch(v uint64)
	ReadMepc() uint64
	WriteMepc(v uint64)
	ReadMcause() uint64
	WriteMcause(v uint64)
	ReadMtval() uint64
	WriteMtval(v uint64)
	ReadMisa() uint64
	WriteMisa(v uint64)
	ReadMie() uint64
	WriteMie(v uint64)
	ReadMip() uint64
	WriteMip(v uint64)
	ReadMedeleg() uint64
	WriteMedeleg(v uint64)
	ReadMideleg() uint64
	WriteMideleg(v uint64)
	ReadMcounteren() uint64
	WriteMcounteren(v uint64)

	ReadStvec() uint64
	WriteStvec(v uint64)
	ReadSscratch() uint64
	WriteSscratch(v uint64)
	ReadSepc() uint64
	WriteSepc(v uint64)
	ReadScause() uint64
	WriteScause(v uint64)
	ReadStval() uint64
	WriteStval(v uint64)
	ReadSatp() uint64
	WriteSatp(v uint64)
	ReadScounteren() uint64
	WriteScounteren(v uint64)

	ReadIlrsc() uint64
	WriteIlrsc(v uint64)

	ReadIflagsH() bool
	SetIflagsH()
	ClearIflagsH()
	ReadIflagsI() bool
	ResetIflagsI()
	ReadIflagsY() bool
	SetIflagsY()
	ResetIflagsY()
	ReadIflagsPRV() uint8
	WriteIflagsPRV(v uint8)

	ReadMtimecmp() uint64
	WriteMtimecmp(v uint64)
	ReadFromhost() uint64
	WriteFromhost(v uint64)
	ReadTohost() uint64
	WriteTohost(v uint64)

	// ReadPMA returns the i-th PMA entry, or the sentinel empty entry
	// past the end of the list.
	ReadPMA(index int) *machine.PmaEntry

	// ReadMemory and WriteMemory perform one naturally-aligned access of
	// 1/2/4/8 bytes (sizeLog2 in [0,3]) within pma's extent. They fail
	// with ErrBusError on misalignment or out-of-range access.
	ReadMemory(pma *machine.PmaEntry, paddr uint64, sizeLog2 uint) (uint64, error)
	WriteMemory(pma *machine.PmaEntry, paddr uint64, value uint64, sizeLog2 uint) error
}
