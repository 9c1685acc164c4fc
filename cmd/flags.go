package cmd

import "github.com/urfave/cli/v2"

// Flags shared across the verbs below, named after spec.md §6's external
// interface rather than the teacher's cannon-specific ones (cannon's
// RunInputFlag etc. live in a dropped dependency — see DESIGN.md).
var (
	InputFlag = &cli.PathFlag{
		Name:     "input",
		Usage:    "path to a machine config JSON (register file, CSRs, memory ranges)",
		Value:    "state.json",
		Required: false,
	}
	OutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "path to write the resulting machine config JSON to",
		Value: "out.json",
	}
	LogOutputFlag = &cli.PathFlag{
		Name:  "log-output",
		Usage: "path to write the binary access log to (spec.md §6 wire format)",
	}
	StepsFlag = &cli.Uint64Flag{
		Name:  "steps",
		Usage: "number of unlogged steps to run; 0 runs until the machine halts",
		Value: 0,
	}
	AddressFlag = &cli.Uint64Flag{
		Name:     "address",
		Usage:    "word-aligned shadow or memory address",
		Required: true,
	}
	ReasonFlag = &cli.Uint64Flag{
		Name:  "reason",
		Usage: "CMIO response reason code",
	}
	DataFlag = &cli.PathFlag{
		Name:     "data",
		Usage:    "path to the raw CMIO response payload",
		Required: true,
	}
	InitialRootFlag = &cli.StringFlag{
		Name:     "initial-root",
		Usage:    "claimed initial Merkle root, hex-encoded",
		Required: true,
	}
	FinalRootFlag = &cli.StringFlag{
		Name:     "final-root",
		Usage:    "claimed final Merkle root, hex-encoded",
		Required: true,
	}
	KindFlag = &cli.StringFlag{
		Name:     "kind",
		Usage:    "step_uarch, reset_uarch, or cmio_response",
		Required: true,
	}
	MemStartFlag = &cli.Uint64Flag{
		Name:  "mem-start",
		Usage: "start address of the single declared memory range checked during verification",
	}
	MemLenFlag = &cli.Uint64Flag{
		Name:  "mem-len",
		Usage: "length of the single declared memory range checked during verification",
	}
	DataLenFlag = &cli.IntFlag{
		Name:  "data-len",
		Usage: "claimed length in bytes of a cmio_response payload being verified",
	}
	PProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "enable CPU profiling",
	}
)
