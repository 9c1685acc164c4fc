package cmd

import (
	"io"

	"github.com/ethereum/go-ethereum/log"
)

// Logger builds the logfmt logger every command below shares (rvgo/cmd/log.go).
func Logger(w io.Writer, lvl log.Lvl) log.Logger {
	l := log.New()
	l.SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(w, log.LogfmtFormat())))
	return l
}
