package shared

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a stderr logger at the named level. debug forces
// DebugLevel. Unknown level names fall back to info.
func SetupLogger(level string, debug bool) *log.Logger {
	return NewLogger(os.Stderr, level, debug)
}

// NewLogger is SetupLogger writing to w.
func NewLogger(w io.Writer, level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}
