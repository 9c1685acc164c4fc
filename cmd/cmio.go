package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// SendCmioResponse implements spec.md §6's send_cmio_response(reason,
// data)/log_send_cmio_response(reason, data), grounded on
// original_source/src/send-cmio-response.cpp's iflags.Y gate.
func SendCmioResponse(ctx *cli.Context) error {
	l := Logger(os.Stderr, log.LvlInfo)

	m, err := loadMachine(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(ctx.Path(DataFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to read cmio payload: %w", err)
	}
	reason := uint16(ctx.Uint64(ReasonFlag.Name))

	if logPath := ctx.Path(LogOutputFlag.Name); logPath != "" {
		preRoot := m.GetRootHash()
		accessLog, err := m.LogSendCmioResponse(reason, data)
		if err != nil {
			return fmt.Errorf("log_send_cmio_response failed: %w", err)
		}
		postRoot := m.GetRootHash()
		if err := writeLog(logPath, accessLog); err != nil {
			return err
		}
		l.Info("log_send_cmio_response finished", "entries", accessLog.Len(), "pre", preRoot.Hex(), "post", postRoot.Hex())
	} else {
		if err := m.SendCmioResponse(reason, data); err != nil {
			return fmt.Errorf("send_cmio_response failed: %w", err)
		}
		l.Info("send_cmio_response finished", "root", m.GetRootHash().Hex())
	}

	return saveMachine(ctx, m)
}

var SendCmioResponseCommand = &cli.Command{
	Name:        "send-cmio-response",
	Usage:       "deliver a host-to-machine CMIO payload",
	Description: "Deliver reason/data through the CMIO receive buffer. Requires the machine to be yielding (iflags.Y). Pass --log-output for the logged variant.",
	Action:      SendCmioResponse,
	Flags: []cli.Flag{
		InputFlag,
		OutputFlag,
		LogOutputFlag,
		ReasonFlag,
		DataFlag,
	},
}
