package cmd

import (
	"fmt"
	"os"

	"github.com/W3W-EdU/machine-emulator/alog"
)

// writeLog serializes an access log to path in spec.md §6's wire format
// (alog.Serialize), the binary counterpart of rvgo/cmd/witness.go's
// jsonutil.WriteJSON output.
func writeLog(path string, l *alog.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create log output %q: %w", path, err)
	}
	defer f.Close()

	if err := l.Serialize(f); err != nil {
		return fmt.Errorf("failed to serialize access log: %w", err)
	}
	return nil
}

// readLog deserializes an access log previously written by writeLog.
func readLog(path string) (*alog.Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %q: %w", path, err)
	}
	defer f.Close()

	return alog.Deserialize(f)
}
