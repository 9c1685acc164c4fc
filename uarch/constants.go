// Package uarch implements the instruction step engine (spec.md §4.7):
// fetch, decode, and execute exactly one micro-architectural step,
// shared unmodified between run (over access.PlainAccess) and step
// (over access.LoggingAccess). Both callers pass a access.StateAccess;
// Step never knows which concrete back-end it is talking to.
//
// This package implements the micro-architecture replay ISA: a compact,
// RV64I-derived instruction set sufficient to express the deterministic
// state transitions this core needs to prove, per spec.md §1's framing
// of the full RISC-V decoder/ALU as an external collaborator. Grounded
// on rvgo/fast/vm.go's fetch/decode/execute structure and
// rvgo/riscv/constants.go's constant style, reworked to run over the
// access.StateAccess capability interface instead of direct state
// access (spec.md §9's "one step-engine implementation, two
// instantiations" requirement).
package uarch

// Opcode is the low 7 bits of a 32-bit instruction word.
const (
	OpLoad   = 0x03
	OpOpImm  = 0x13
	OpAuipc  = 0x17
	OpStore  = 0x23
	OpOp     = 0x33
	OpLui    = 0x37
	OpBranch = 0x63
	OpJalr   = 0x67
	OpJal    = 0x6F
	OpSystem = 0x73
)

// funct3 values, scoped per opcode.
const (
	F3Beq  = 0x0
	F3Bne  = 0x1
	F3Blt  = 0x4
	F3Bge  = 0x5
	F3Bltu = 0x6
	F3Bgeu = 0x7

	F3Lb  = 0x0
	F3Lh  = 0x1
	F3Lw  = 0x2
	F3Ld  = 0x3
	F3Lbu = 0x4
	F3Lhu = 0x5
	F3Lwu = 0x6

	F3Sb = 0x0
	F3Sh = 0x1
	F3Sw = 0x2
	F3Sd = 0x3

	F3AddSub = 0x0
	F3Sll    = 0x1
	F3Slt    = 0x2
	F3Sltu   = 0x3
	F3Xor    = 0x4
	F3SrlSra = 0x5
	F3Or     = 0x6
	F3And    = 0x7

	F3Ecall = 0x0
)

// funct7 values distinguishing ADD/SUB and SRL/SRA.
const (
	F7Zero = 0x00
	F7Sub  = 0x20
	F7Sra  = 0x20
)
