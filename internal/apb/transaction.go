// Package apb decodes an APB (Advanced Peripheral Bus) waveform into a
// stream of Read/Write/Error transactions.
package apb

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// Kind discriminates the closed set of APB transaction variants.
type Kind int

const (
	Read Kind = iota
	Write
	Error
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Transaction is one decoded APB access. Every field is populated from
// the sample at either RequestTimestamp or ResponseTimestamp, per spec
// section 4.4, whatever the Kind (a Read still carries the sampled
// pwdata); a field is zero-width only when its signal is unbound or has
// no sample at that timestamp.
type Transaction struct {
	Kind Kind

	RequestTimestamp  uint64
	ResponseTimestamp uint64

	Addr   bitval.Bits
	Prot   bitval.Bits
	Strobe bitval.Bits
	NSE    bitval.Bits // optional; none-valued when pnse isn't bound

	WriteData bitval.Bits
	ReadData  bitval.Bits
	SlvErr    bitval.Bits
}

// CanonicalNames lists the per-signal names the APB binder resolves
// against a signal-binding config.
var CanonicalNames = []string{
	"pclock", "psel", "penable", "pready",
	"paddr", "pprot", "pnse", "pwrite", "pstrb", "pwdata", "prdata", "pslverr",
}
