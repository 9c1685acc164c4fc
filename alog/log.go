package alog

// Log is an ordered, append-only sequence of access-log entries: exactly
// the order the step engine performed its reads and writes (spec.md
// §4.6). Once a step finishes, callers should treat the log as
// read-only; nothing here enforces that beyond convention, matching the
// teacher's StepWitness (rvgo/fast/witness.go), which is likewise a
// plain mutable struct assembled once per step.
type Log struct {
	Entries []Entry
}

// Append records one entry. Coalescing is forbidden by spec.md §4.5:
// every access is appended exactly once, even read-modify-write pairs
// that touch the same address.
func (l *Log) Append(e Entry) {
	l.Entries = append(l.Entries, e)
}

// Len returns the number of entries recorded so far.
func (l *Log) Len() int { return len(l.Entries) }
