package uarch

import (
	"fmt"

	"github.com/W3W-EdU/machine-emulator/access"
	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merrors"
)

// regRead/regWrite special-case register x0: it is architecturally
// hardwired to zero, so the step engine never reads or writes its shadow
// slot (machine.ShadowX0) and touching it never produces an access-log
// entry, matching real hardware (and spec.md
// §8's concrete NOP scenario, whose log contains no register entries at
// all).
func regRead(a access.StateAccess, n int) uint64 {
	if n == 0 {
		return 0
	}
	return a.ReadX(n)
}

func regWrite(a access.StateAccess, n int, v uint64) {
	if n == 0 {
		return
	}
	a.WriteX(n, v)
}

// findPMA scans the (small, immutable-for-the-step) PMA list for the
// entry covering [addr, addr+1<<sizeLog2). Mirrors
// original_source/src/pma.cpp's linear PMA lookup: real machines keep
// only a handful of ranges, so a scan is the idiomatic approach the
// teacher pack uses (no interval tree).
func findPMA(a access.StateAccess, addr uint64, sizeLog2 uint) (*machine.PmaEntry, error) {
	for i := 0; ; i++ {
		pma := a.ReadPMA(i)
		if pma.Empty() {
			return nil, merrors.ErrBusError
		}
		if pma.Contains(addr, sizeLog2) {
			return pma, nil
		}
	}
}

// Step advances the machine by exactly one micro-architectural step:
// fetch the instruction at PC, decode it, execute it against a, and
// advance mcycle. It is the single implementation shared by run
// (PlainAccess) and step (LoggingAccess), per spec.md §4.7/§9.
//
// Determinism: Step reads only StateAccess methods, so two Steps run
// against byte-identical starting state, whether under PlainAccess or
// LoggingAccess, are indistinguishable in their effect on state.
func Step(a access.StateAccess) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", merrors.ErrStateInvariant, r)
		}
	}()

	// Whether the machine is halted is a precondition checked by the
	// caller (emulator.Machine), not part of the logged transition
	// itself: spec.md §8's concrete NOP scenario enumerates exactly five
	// log entries, none of which is an iflags.H read.
	pc := a.ReadPC()
	pma, ferr := findPMA(a, pc, 2)
	if ferr != nil {
		return ferr
	}
	word, ferr := a.ReadMemory(pma, pc, 2)
	if ferr != nil {
		return ferr
	}

	in := decode(uint32(word))

	nextPC := pc + 4

	switch in.opcode {
	case OpLui:
		regWrite(a, in.rd, uint64(in.immU))
	case OpAuipc:
		regWrite(a, in.rd, pc+uint64(in.immU))
	case OpJal:
		regWrite(a, in.rd, pc+4)
		nextPC = pc + uint64(in.immJ)
	case OpJalr:
		base := regRead(a, in.rs1)
		target := (base + uint64(in.immI)) &^ 1
		regWrite(a, in.rd, pc+4)
		nextPC = target
	case OpBranch:
		lhs := regRead(a, in.rs1)
		rhs := regRead(a, in.rs2)
		if branchTaken(in.funct3, lhs, rhs) {
			nextPC = pc + uint64(in.immB)
		}
	case OpLoad:
		if err := execLoad(a, &in); err != nil {
			return err
		}
	case OpStore:
		if err := execStore(a, &in); err != nil {
			return err
		}
	case OpOpImm:
		execOpImm(a, &in)
	case OpOp:
		execOp(a, &in)
	case OpSystem:
		// ECALL/EBREAK: the uarch replay ISA treats every SYSTEM
		// instruction with funct3 0 as a halt request and rejects the
		// other SYSTEM encodings (the CSR instructions); syscall semantics
		// live in the (out-of-scope) main CPU decoder, not the
		// microarchitecture.
		if in.funct3 == F3Ecall {
			a.SetIflagsH()
		} else {
			return fmt.Errorf("%w: unsupported system instruction", merrors.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown opcode 0x%02x", merrors.ErrInvalidArgument, in.opcode)
	}

	a.WritePC(nextPC)

	// minstret is not touched here: original_source/src/uarch-interpret.cpp's
	// uarch_interpret is read_cycle -> read_pc -> read insn -> execute ->
	// write_cycle, with no retired-instruction counter, and spec.md §8's
	// NOP scenario logs exactly five entries (pc read, insn read, pc
	// write, mcycle read, mcycle write) with no minstret entries at all.
	mcycle := a.ReadMcycle()
	a.WriteMcycle(mcycle + 1)

	return nil
}

func branchTaken(funct3 uint32, lhs, rhs uint64) bool {
	switch funct3 {
	case F3Beq:
		return lhs == rhs
	case F3Bne:
		return lhs != rhs
	case F3Blt:
		return int64(lhs) < int64(rhs)
	case F3Bge:
		return int64(lhs) >= int64(rhs)
	case F3Bltu:
		return lhs < rhs
	case F3Bgeu:
		return lhs >= rhs
	default:
		panic(fmt.Errorf("unknown branch funct3 %d", funct3))
	}
}
