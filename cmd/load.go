package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/W3W-EdU/machine-emulator/emulator"
	"github.com/W3W-EdU/machine-emulator/machine"
)

// loadMachine builds an emulator.Machine from the --input config flag,
// the way rvgo/cmd/run.go loads its input VM state before stepping it.
func loadMachine(ctx *cli.Context) (*emulator.Machine, error) {
	m, err := emulator.Load(ctx.Path(InputFlag.Name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine config: %w", err)
	}
	return m, nil
}

// saveMachine writes m's current image back out to the --output config
// flag, so a later invocation can resume it (machine.State.ToConfig).
func saveMachine(ctx *cli.Context, m *emulator.Machine) error {
	if err := machine.SaveConfig(ctx.Path(OutputFlag.Name), m.State.ToConfig()); err != nil {
		return fmt.Errorf("failed to write machine config: %w", err)
	}
	return nil
}
