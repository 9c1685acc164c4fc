package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"
)

// Run implements spec.md §6's run(limit): advance the machine by plain,
// unlogged steps until it halts or --steps is exhausted, then write its
// resulting image back out (rvgo/cmd/run.go's load/step-loop/write-back
// shape, generalized from cannon's fixed-size MIPS state to this
// module's configurable memory ranges).
func Run(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	l := Logger(os.Stderr, log.LvlInfo)

	m, err := loadMachine(ctx)
	if err != nil {
		return err
	}

	limit := ctx.Uint64(StepsFlag.Name)
	if limit == 0 {
		limit = math.MaxUint64
	}

	reason, err := m.Run(limit)
	if err != nil {
		return fmt.Errorf("run failed at pc=0x%x: %w", m.State.PC, err)
	}
	l.Info("run finished", "reason", reason.String(), "pc", fmt.Sprintf("0x%x", m.State.PC), "root", m.GetRootHash().Hex())

	return saveMachine(ctx, m)
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "advance the machine by unlogged steps",
	Description: "Run the machine until it halts or --steps is exhausted, then write the resulting state back out.",
	Action:      Run,
	Flags: []cli.Flag{
		InputFlag,
		OutputFlag,
		StepsFlag,
		PProfCPUFlag,
	},
}
