package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/W3W-EdU/machine-emulator/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "machine-emulator"
	app.Usage = "RISC-V machine emulator with cryptographically verifiable execution traces"
	app.Description = "Create, run, and step a RISC-V machine, producing and verifying Merkle access logs for disputed steps."
	app.Commands = []*cli.Command{
		cmd.RunCommand,
		cmd.StepCommand,
		cmd.ResetUarchCommand,
		cmd.SendCmioResponseCommand,
		cmd.GetRootHashCommand,
		cmd.GetProofCommand,
		cmd.VerifyCommand,
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Println("\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintf(os.Stderr, "command interrupted")
			os.Exit(130)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v", err)
			os.Exit(1)
		}
	}
}
