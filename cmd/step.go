package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// Step implements spec.md §6's log_step_uarch(): perform exactly one
// logged micro-architectural step, write the access log plus the
// resulting state, and print the pre/post roots, mirroring rvgo/cmd/run.go's
// proof-at-step JSON output but for this module's one-step-at-a-time log API.
func Step(ctx *cli.Context) error {
	l := Logger(os.Stderr, log.LvlInfo)

	m, err := loadMachine(ctx)
	if err != nil {
		return err
	}

	preRoot := m.GetRootHash()
	accessLog, err := m.LogStepUarch()
	if err != nil {
		return fmt.Errorf("log_step_uarch failed at pc=0x%x: %w", m.State.PC, err)
	}
	postRoot := m.GetRootHash()

	if logPath := ctx.Path(LogOutputFlag.Name); logPath != "" {
		if err := writeLog(logPath, accessLog); err != nil {
			return err
		}
	}

	l.Info("log_step_uarch finished", "entries", accessLog.Len(), "pre", preRoot.Hex(), "post", postRoot.Hex())
	return saveMachine(ctx, m)
}

var StepCommand = &cli.Command{
	Name:        "step",
	Usage:       "perform one logged micro-architectural step",
	Description: "Perform exactly one logged micro-architectural step (log_step_uarch) and write the access log and resulting state.",
	Action:      Step,
	Flags: []cli.Flag{
		InputFlag,
		OutputFlag,
		LogOutputFlag,
	},
}
