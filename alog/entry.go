// Package alog implements the access log produced by the logging
// state-access back-end (spec.md §4.5, §4.6) and its wire format
// (spec.md §6).
package alog

import "github.com/W3W-EdU/machine-emulator/merkletree"

// Kind distinguishes a read entry from a write entry.
type Kind uint8

const (
	KindRead Kind = iota
	KindWrite
)

func (k Kind) String() string {
	if k == KindWrite {
		return "write"
	}
	return "read"
}

// Entry is one recorded access: the word-aligned byte address of the
// accessed leaf, its size, the value observed, the value written (writes
// only), and the sibling path from that leaf to the root at the moment
// of the access, ordered leaf-first (spec.md §3, §4.6).
type Entry struct {
	Kind         Kind
	Address      uint64
	SizeLog2     uint8
	ValueRead    uint64
	ValueWritten uint64 // meaningful only when Kind == KindWrite
	Siblings     []merkletree.Digest
}

// IsWrite reports whether this entry is a write.
func (e *Entry) IsWrite() bool { return e.Kind == KindWrite }
