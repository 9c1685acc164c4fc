// Package merrors defines the error taxonomy shared by every package in
// this module. Errors are created with fmt.Errorf and %w so callers can
// still use errors.Is against the sentinels below.
package merrors

import "errors"

var (
	// ErrInvalidArgument covers malformed config, out-of-range tree
	// parameters, misaligned access, and unknown CSR numbers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange covers a full Merkle tree or a PMA index past the end
	// of the PMA list.
	ErrOutOfRange = errors.New("out of range")

	// ErrBusError covers a memory access to an undefined physical
	// address, or a misaligned/spanning access within a PMA.
	ErrBusError = errors.New("bus error")

	// ErrProofMismatch is returned by the verifier when a reconstructed
	// path root disagrees with the current root.
	ErrProofMismatch = errors.New("proof mismatch")

	// ErrRootMismatch is returned by the verifier when the final
	// reconstructed root disagrees with the claimed root.
	ErrRootMismatch = errors.New("root mismatch")

	// ErrLogMalformed covers wire-format violations: unknown entry kind,
	// truncated entry, wrong sibling count.
	ErrLogMalformed = errors.New("access log malformed")

	// ErrStateInvariant is a fatal runtime inconsistency discovered
	// during a step; it is never expected to happen and is not meant to
	// be recovered from.
	ErrStateInvariant = errors.New("state invariant violated")

	// ErrConnectionClosed is returned by external transport collaborators
	// (not implemented by this module) when a remote call can no longer
	// be completed.
	ErrConnectionClosed = errors.New("connection closed")
)
