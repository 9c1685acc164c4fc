package machine

// Privilege levels, per spec.md §3.
const (
	PrvU = 0
	PrvS = 1
	PrvM = 3
)

// State is the flat record of all architectural state: general
// registers, PC, counters, CSRs, internal flags, device latches, and the
// PMA list. It is mutated exclusively through the access.StateAccess
// back-end (spec.md §4.3) — nothing in this package reaches into these
// fields directly except the back-end implementations themselves and
// (read-only) Merkleization.
//
// Field names mirror rvgo/fast/state.go's VMState generalized to the
// full scalar set spec.md §3 requires, plus original_source's CSR names.
type State struct {
	X [32]uint64 // general registers x0..x31; x0 reads as zero by convention of the ISA, not enforced here
	PC uint64

	Minstret uint64
	Mcycle   uint64

	// Machine-mode CSRs.
	Mstatus    uint64
	Mtvec      uint64
	Mscratch   uint64
	Mepc       uint64
	Mcause     uint64
	Mtval      uint64
	Misa       uint64
	Mie        uint64
	Mip        uint64
	Medeleg    uint64
	Mideleg    uint64
	Mcounteren uint64

	// Supervisor-mode CSRs.
	Stvec      uint64
	Sscratch   uint64
	Sepc       uint64
	Scause     uint64
	Stval      uint64
	Satp       uint64
	Scounteren uint64

	Ilrsc uint64 // load-reserved address tracker

	IflagsH   bool // halted
	IflagsI   bool // idle / waiting-for-interrupt
	IflagsY   bool // yield: set while awaiting a CMIO response
	IflagsPRV uint8

	// Device-facing latches.
	Mtimecmp uint64
	Fromhost uint64
	Tohost   uint64

	Pmas []PmaEntry
}

// New returns a zeroed machine state with privilege level M and no PMA
// entries. Callers (configuration loading, out of scope here) populate
// Pmas and any non-zero reset values.
func New() *State {
	return &State{IflagsPRV: PrvM}
}

// PMACount returns the number of populated PMA entries.
func (s *State) PMACount() int { return len(s.Pmas) }

// PMAAt returns the i-th PMA entry, or the sentinel empty entry if i is
// past the end of the list (spec.md §4.3).
func (s *State) PMAAt(i int) *PmaEntry {
	if i < 0 || i >= len(s.Pmas) {
		return &emptyPMA
	}
	return &s.Pmas[i]
}

// FindPMA returns the PMA entry containing [paddr, paddr+1<<sizeLog2), or
// nil if no entry covers it.
func (s *State) FindPMA(paddr uint64, sizeLog2 uint) *PmaEntry {
	for i := range s.Pmas {
		if s.Pmas[i].Contains(paddr, sizeLog2) {
			return &s.Pmas[i]
		}
	}
	return nil
}

// ShadowWord returns the current value of the scalar occupying shadow
// slot addr, or 0 for an address this state has no field for. It covers
// the general registers, PC, counters, CSRs, ilrsc, iflags, and device
// latches. Used only to seed
// a Merkle tree's leaves from a freshly loaded state, never on the
// step's hot path (access.StateAccess owns that).
func (s *State) ShadowWord(addr uint64) uint64 {
	if addr < uint64(shadowXCount*slotSize) {
		return s.X[addr/slotSize]
	}
	switch addr {
	case ShadowPC:
		return s.PC
	case ShadowMinstret:
		return s.Minstret
	case ShadowMcycle:
		return s.Mcycle
	case ShadowMstatus:
		return s.Mstatus
	case ShadowMtvec:
		return s.Mtvec
	case ShadowMscratch:
		return s.Mscratch
	case ShadowMepc:
		return s.Mepc
	case ShadowMcause:
		return s.Mcause
	case ShadowMtval:
		return s.Mtval
	case ShadowMisa:
		return s.Misa
	case ShadowMie:
		return s.Mie
	case ShadowMip:
		return s.Mip
	case ShadowMedeleg:
		return s.Medeleg
	case ShadowMideleg:
		return s.Mideleg
	case ShadowMcounteren:
		return s.Mcounteren
	case ShadowStvec:
		return s.Stvec
	case ShadowSscratch:
		return s.Sscratch
	case ShadowSepc:
		return s.Sepc
	case ShadowScause:
		return s.Scause
	case ShadowStval:
		return s.Stval
	case ShadowSatp:
		return s.Satp
	case ShadowScounteren:
		return s.Scounteren
	case ShadowIlrsc:
		return s.Ilrsc
	case ShadowIflags:
		return PackIflags(s.IflagsH, s.IflagsI, s.IflagsY, s.IflagsPRV)
	case ShadowMtimecmp:
		return s.Mtimecmp
	case ShadowFromhost:
		return s.Fromhost
	case ShadowTohost:
		return s.Tohost
	default:
		return 0
	}
}

// NewCmioRxBufferPMA builds the fixed memory-kind PMA send_cmio_response
// writes into (original_source/src/send-cmio-response.cpp's
// replace_cmio_rx_buffer; see CmioRxBufferStart).
func NewCmioRxBufferPMA() PmaEntry {
	return PmaEntry{
		Start:  CmioRxBufferStart,
		Length: CmioRxBufferLength,
		Kind:   PmaKindMemory,
		Flags:  PmaFlags{Readable: true, Writable: true},
		Data:   make([]byte, CmioRxBufferLength),
	}
}
