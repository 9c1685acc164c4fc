package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// GetRootHash implements spec.md §6's get_root_hash(), printing the
// current whole-state Merkle root to stdout (rvgo/cmd/witness.go's
// print-the-hash-to-stdout convention).
func GetRootHash(ctx *cli.Context) error {
	m, err := loadMachine(ctx)
	if err != nil {
		return err
	}
	fmt.Println(m.GetRootHash().Hex())
	return nil
}

var GetRootHashCommand = &cli.Command{
	Name:        "get-root-hash",
	Usage:       "print the machine's current Merkle root",
	Description: "Load a machine config and print its whole-state Merkle root to stdout.",
	Action:      GetRootHash,
	Flags: []cli.Flag{
		InputFlag,
	},
}
