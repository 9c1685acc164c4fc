package alog

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/W3W-EdU/machine-emulator/merrors"
)

// WireVersion1 is the only wire format version this module emits and
// accepts.
const WireVersion1 = uint32(1)

// Serialize writes the log in the version-tagged, length-prefixed binary
// format from spec.md §6, little-endian throughout. Layout:
//
//	version       uint32
//	entry_count   uint32
//	for each entry:
//	  kind          uint8
//	  address       uint64
//	  size_log2     uint8
//	  value_read    2^size_log2 bytes
//	  value_written 2^size_log2 bytes, present only if kind == write
//	  sibling_count uint16
//	  siblings      sibling_count * 32 bytes
//
// Grounded on rvgo/fast/memory.go's Serialize/Deserialize pair (prefixed
// counts, binary.Write per field) but little-endian per spec.md §6
// rather than the teacher's big-endian, since the wire format here is
// spec-mandated, not inherited.
func (l *Log) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, WireVersion1); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(l.Entries))); err != nil {
		return err
	}
	for _, e := range l.Entries {
		if err := writeEntry(w, &e); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(w io.Writer, e *Entry) error {
	if e.SizeLog2 > 3 {
		return fmt.Errorf("%w: size_log2 %d out of range", merrors.ErrLogMalformed, e.SizeLog2)
	}
	size := 1 << e.SizeLog2

	if err := binary.Write(w, binary.LittleEndian, uint8(e.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Address); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.SizeLog2); err != nil {
		return err
	}
	if err := writeValue(w, e.ValueRead, size); err != nil {
		return err
	}
	if e.IsWrite() {
		if err := writeValue(w, e.ValueWritten, size); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(e.Siblings))); err != nil {
		return err
	}
	for _, s := range e.Siblings {
		if _, err := w.Write(s[:]); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, v uint64, size int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:size])
	return err
}

// Deserialize reads a log previously written by Serialize. It rejects
// unknown versions, unknown entry kinds, and truncated input with
// ErrLogMalformed, naming the offending entry index where applicable.
func Deserialize(r io.Reader) (*Log, error) {
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", merrors.ErrLogMalformed, err)
	}
	if version != WireVersion1 {
		return nil, fmt.Errorf("%w: unsupported version %d", merrors.ErrLogMalformed, version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", merrors.ErrLogMalformed, err)
	}

	log := &Log{Entries: make([]Entry, 0, count)}
	for i := uint32(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", merrors.ErrLogMalformed, i, err)
		}
		log.Entries = append(log.Entries, *e)
	}
	return log, nil
}

func readEntry(r io.Reader) (*Entry, error) {
	var kindByte uint8
	if err := binary.Read(r, binary.LittleEndian, &kindByte); err != nil {
		return nil, err
	}
	if kindByte != uint8(KindRead) && kindByte != uint8(KindWrite) {
		return nil, fmt.Errorf("unknown entry kind %d", kindByte)
	}
	e := &Entry{Kind: Kind(kindByte)}

	if err := binary.Read(r, binary.LittleEndian, &e.Address); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &e.SizeLog2); err != nil {
		return nil, err
	}
	if e.SizeLog2 > 3 {
		return nil, fmt.Errorf("size_log2 %d out of range", e.SizeLog2)
	}
	size := 1 << e.SizeLog2

	v, err := readValue(r, size)
	if err != nil {
		return nil, err
	}
	e.ValueRead = v

	if e.IsWrite() {
		v, err := readValue(r, size)
		if err != nil {
			return nil, err
		}
		e.ValueWritten = v
	}

	var siblingCount uint16
	if err := binary.Read(r, binary.LittleEndian, &siblingCount); err != nil {
		return nil, err
	}
	e.Siblings = make([]merkletree.Digest, siblingCount)
	for i := range e.Siblings {
		if _, err := io.ReadFull(r, e.Siblings[i][:]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func readValue(r io.Reader, size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:size]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
