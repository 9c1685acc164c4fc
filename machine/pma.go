package machine

import "github.com/W3W-EdU/machine-emulator/merrors"

// PmaKind tags a physical memory attribute entry as either a plain
// backing-array memory range or a callback-driven device range. A tagged
// variant is used instead of an interface hierarchy, per spec.md §9.
type PmaKind uint8

const (
	PmaKindMemory PmaKind = iota
	PmaKindDevice
)

// PmaFlags mirrors the read/write/execute/IO bit layout of
// original_source/src/pma-defines.h, collapsed to the bits this core
// cares about.
type PmaFlags struct {
	Readable   bool
	Writable   bool
	Executable bool
	IsIO       bool
}

// DeviceReadFunc/DeviceWriteFunc are the callback signatures for a
// device-kind PMA. size is 1, 2, 4, or 8 bytes.
type DeviceReadFunc func(offset uint64, size int) (uint64, error)
type DeviceWriteFunc func(offset uint64, size int, value uint64) error

// PmaEntry describes one contiguous physical address range.
type PmaEntry struct {
	Start  uint64
	Length uint64
	Kind   PmaKind
	Flags  PmaFlags

	// Memory kind only.
	Data []byte

	// Device kind only.
	DeviceRead  DeviceReadFunc
	DeviceWrite DeviceWriteFunc
}

// emptyPMA is the sentinel "past the end" entry returned by ReadPMA when
// index is out of range, per spec.md §4.3.
var emptyPMA = PmaEntry{}

// Empty reports whether p is the sentinel empty PMA (zero length).
func (p *PmaEntry) Empty() bool { return p.Length == 0 }

// Contains reports whether the naturally-aligned access
// [paddr, paddr+1<<sizeLog2) lies fully within this PMA's extent, and
// that paddr is aligned to 1<<sizeLog2. Per spec.md §9's resolved open
// question, misaligned or spanning accesses are the caller's
// responsibility to reject with ErrBusError; this helper reports the
// verdict without side effects.
func (p *PmaEntry) Contains(paddr uint64, sizeLog2 uint) bool {
	if sizeLog2 > 3 {
		return false
	}
	size := uint64(1) << sizeLog2
	if paddr%size != 0 {
		return false
	}
	if paddr < p.Start {
		return false
	}
	end := paddr + size
	return end <= p.Start+p.Length
}

// ReadWord reads a naturally-aligned word of 1/2/4/8 bytes from a
// memory-kind PMA's backing array.
func (p *PmaEntry) ReadWord(paddr uint64, sizeLog2 uint) (uint64, error) {
	if !p.Contains(paddr, sizeLog2) {
		return 0, merrors.ErrBusError
	}
	off := paddr - p.Start
	size := uint64(1) << sizeLog2
	if p.Kind == PmaKindDevice {
		if p.DeviceRead == nil {
			return 0, merrors.ErrBusError
		}
		return p.DeviceRead(off, int(size))
	}
	var v uint64
	for i := uint64(0); i < size; i++ {
		v |= uint64(p.Data[off+i]) << (8 * i)
	}
	return v, nil
}

// WriteWord writes a naturally-aligned word of 1/2/4/8 bytes to a
// memory-kind PMA's backing array.
func (p *PmaEntry) WriteWord(paddr uint64, sizeLog2 uint, value uint64) error {
	if !p.Contains(paddr, sizeLog2) {
		return merrors.ErrBusError
	}
	if !p.Flags.Writable {
		return merrors.ErrBusError
	}
	off := paddr - p.Start
	size := uint64(1) << sizeLog2
	if p.Kind == PmaKindDevice {
		if p.DeviceWrite == nil {
			return merrors.ErrBusError
		}
		return p.DeviceWrite(off, int(size), value)
	}
	for i := uint64(0); i < size; i++ {
		p.Data[off+i] = byte(value >> (8 * i))
	}
	return nil
}
