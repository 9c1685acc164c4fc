package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/W3W-EdU/machine-emulator/machine"
	"github.com/W3W-EdU/machine-emulator/merrors"
	"github.com/W3W-EdU/machine-emulator/verifier"
)

// Verify implements spec.md §6's verify_*_state_transition() family: load
// a previously written access log and check it against a claimed
// initial/final root, without ever touching a live machine (rvgo/cmd
// has no direct analogue for this — it is the fault-proof dispute step
// asterisc instead plays out onchain; grounded here on the verifier
// package's pure-function API built over several sessions).
func Verify(ctx *cli.Context) error {
	l, err := readLog(ctx.Path(LogOutputFlag.Name))
	if err != nil {
		return err
	}

	initialRoot := common.HexToHash(ctx.String(InitialRootFlag.Name))
	finalRoot := common.HexToHash(ctx.String(FinalRootFlag.Name))

	ranges := []verifier.AddressRange{
		verifier.ShadowRange,
		{Start: machine.ShadowStateSize + machine.CmioRxBufferStart, End: machine.ShadowStateSize + machine.CmioRxBufferStart + machine.CmioRxBufferLength},
	}
	if memStart := ctx.Uint64(MemStartFlag.Name); memStart != 0 || ctx.Uint64(MemLenFlag.Name) != 0 {
		ranges = append(ranges, verifier.AddressRange{Start: memStart, End: memStart + ctx.Uint64(MemLenFlag.Name)})
	}

	switch kind := ctx.String(KindFlag.Name); kind {
	case "step_uarch":
		err = verifier.VerifyStepUarchStateTransition(l, initialRoot, finalRoot, ranges)
	case "reset_uarch":
		err = verifier.VerifyResetUarchStateTransition(l, initialRoot, finalRoot, ranges)
	case "cmio_response":
		reason := uint16(ctx.Uint64(ReasonFlag.Name))
		err = verifier.VerifyCmioResponseStateTransition(l, initialRoot, finalRoot, ranges, reason, ctx.Int(DataLenFlag.Name))
	default:
		return fmt.Errorf("%w: unknown verify kind %q", merrors.ErrInvalidArgument, kind)
	}
	if err != nil {
		fmt.Println("REJECTED:", err)
		return err
	}
	fmt.Println("ACCEPTED")
	return nil
}

var VerifyCommand = &cli.Command{
	Name:        "verify",
	Usage:       "verify an access log against claimed roots",
	Description: "Replay a previously written access log (--log-output as input) and check it against --initial-root/--final-root for the given --kind.",
	Action:      Verify,
	Flags: []cli.Flag{
		LogOutputFlag,
		InitialRootFlag,
		FinalRootFlag,
		KindFlag,
		MemStartFlag,
		MemLenFlag,
		ReasonFlag,
		DataLenFlag,
	},
}
