// Package machine defines the machine state record, its shadow-region
// addressing, and the physical memory attribute (PMA) list.
package machine

// ShadowLayout assigns every named scalar in the machine state a fixed
// 8-byte slot inside one contiguous "shadow" byte range, so the whole
// state can be Merkle-addressed uniformly with memory (spec.md §3,
// §6 "Shadow region layout"). Offsets mirror the packed-struct layout of
// original_source/src/shadow-state.cpp: general registers first, then PC
// and counters, then machine-mode CSRs, then supervisor-mode CSRs, then
// flags and device latches.
const (
	slotSize = 8 // bytes per scalar slot

	// General registers x0..x31.
	ShadowX0 = 0 * slotSize
	// ShadowX(n) is defined below as a function since it is indexed.

	shadowXCount = 32

	ShadowPC       = (shadowXCount + 0) * slotSize
	ShadowMinstret = (shadowXCount + 1) * slotSize
	ShadowMcycle   = (shadowXCount + 2) * slotSize

	// Machine-mode CSRs.
	ShadowMstatus   = (shadowXCount + 3) * slotSize
	ShadowMtvec     = (shadowXCount + 4) * slotSize
	ShadowMscratch  = (shadowXCount + 5) * slotSize
	ShadowMepc      = (shadowXCount + 6) * slotSize
	ShadowMcause    = (shadowXCount + 7) * slotSize
	ShadowMtval     = (shadowXCount + 8) * slotSize
	ShadowMisa      = (shadowXCount + 9) * slotSize
	ShadowMie       = (shadowXCount + 10) * slotSize
	ShadowMip       = (shadowXCount + 11) * slotSize
	ShadowMedeleg   = (shadowXCount + 12) * slotSize
	ShadowMideleg   = (shadowXCount + 13) * slotSize
	ShadowMcounteren = (shadowXCount + 14) * slotSize

	// Supervisor-mode CSRs.
	ShadowStvec      = (shadowXCount + 15) * slotSize
	ShadowSscratch   = (shadowXCount + 16) * slotSize
	ShadowSepc       = (shadowXCount + 17) * slotSize
	ShadowScause     = (shadowXCount + 18) * slotSize
	ShadowStval      = (shadowXCount + 19) * slotSize
	ShadowSatp       = (shadowXCount + 20) * slotSize
	ShadowScounteren = (shadowXCount + 21) * slotSize

	ShadowIlrsc = (shadowXCount + 22) * slotSize

	// Internal flags, packed into a single 8-byte slot: bit 0 is H
	// (halted), bit 1 is I (idle/waiting-for-interrupt), bit 2 is Y
	// (yield), bits 3-4 are PRV (current privilege level). See PackIflags.
	ShadowIflags = (shadowXCount + 23) * slotSize

	// Device-facing latches.
	ShadowMtimecmp = (shadowXCount + 24) * slotSize
	ShadowFromhost = (shadowXCount + 25) * slotSize
	ShadowTohost   = (shadowXCount + 26) * slotSize

	// ShadowStateSize is the total size, in bytes, of the scalar shadow
	// region. Memory-kind PMA words are Merkle-addressed immediately after
	// it, at ShadowStateSize plus their physical address
	// (access/logging.go's pmaWordAddress); PMA descriptors are not part
	// of the Merkle tree.
	ShadowStateSize = (shadowXCount + 27) * slotSize

	// CmioRxBufferStart is the fixed physical address of the CMIO
	// receive buffer send_cmio_response writes into
	// (original_source/src/send-cmio-response.cpp's
	// replace_cmio_rx_buffer). Supplemented: the excerpt available here
	// does not give the real Cartesi Machine constant, so this address is
	// chosen to sit well clear of the shadow and any RAM range a test
	// config declares, documented here rather than left implicit.
	CmioRxBufferStart  = 0x60000000
	CmioRxBufferLength = 1 << 12

	// PmaDescriptorSize is the fixed size of one PMA descriptor slot in
	// the PMA shadow region.
	PmaDescriptorSize = 32
)

// ShadowX returns the shadow-region byte offset of general register n.
func ShadowX(n int) uint64 {
	if n < 0 || n >= shadowXCount {
		panic("machine: register index out of range")
	}
	return uint64(n * slotSize)
}

// iflags bit layout within the packed ShadowIflags slot.
const (
	IflagsHBit    = 0
	IflagsIBit    = 1
	IflagsYBit    = 2 // yield: set while the machine awaits a CMIO response
	IflagsPRVLow  = 3 // two bits: PRV occupies bits 3-4
	IflagsPRVMask = 0x3
)

// PackIflags packs the four scattered iflags fields into the single
// 8-byte word the shadow region and the Merkle tree address by, so
// H/I/Y/PRV changes are always hashed as one slot (spec.md §3).
func PackIflags(h, i, y bool, prv uint8) uint64 {
	var v uint64
	if h {
		v |= 1 << IflagsHBit
	}
	if i {
		v |= 1 << IflagsIBit
	}
	if y {
		v |= 1 << IflagsYBit
	}
	v |= uint64(prv&IflagsPRVMask) << IflagsPRVLow
	return v
}
