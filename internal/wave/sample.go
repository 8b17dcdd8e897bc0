// Package wave holds the per-signal sample history and the stateful
// cursor decoders walk across it.
package wave

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// Sample is one recorded value change: the simulation timestamp at which
// a signal took on a value, and that value.
type Sample struct {
	Timestamp uint64
	Value     bitval.Bits
}
