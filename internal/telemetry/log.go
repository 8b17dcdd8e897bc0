// Package telemetry wraps charmbracelet/log into the single
// package-level logger the CLI holds and hands to the APB decoder,
// writing to stderr so stdout stays reserved for the rendered
// transaction stream.
package telemetry

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
)

// SetVerbose switches the shared logger to Debug level when verbose is
// true, Info otherwise. Called once from the CLI's -v/--verbose flag.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// Logger returns the shared logger.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// UnboundSignal logs, at Debug, a decoder falling back to a none-valued
// Bits because a canonical signal name did not resolve against the VCD.
func UnboundSignal(bus, name string) {
	Logger().Debug("unbound signal", "bus", bus, "signal", name)
}

// DecodeError logs, at Warn, a decoder emitting an Error-variant
// transaction.
func DecodeError(bus string, timestamp uint64) {
	Logger().Warn("undecodable command", "bus", bus, "timestamp", timestamp)
}
