// Package axi decodes an AXI4 waveform into a stream of Write/Read
// transactions, handshaking each of the five independent channels.
package axi

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// Kind discriminates the AXI transaction variants. Unlike APB and the
// DRAM buses, AXI has no Error variant in this spec's closed set — an
// X/Z address phase still produces a Write/Read carrying whatever
// fields resolved, since AXI has no single "this access failed to
// decode" signal the way APB's pwrite or DDR5/HBM2e's command word do.
type Kind int

const (
	Write Kind = iota
	Read
)

func (k Kind) String() string {
	if k == Write {
		return "WRITE"
	}
	return "READ"
}

// Transaction is one decoded AXI burst.
type Transaction struct {
	Kind Kind

	AddressTimestamp   uint64
	FirstBeatTimestamp uint64
	LastBeatTimestamp  uint64
	ResponseTimestamp  uint64

	ID    bitval.Bits
	Addr  bitval.Bits
	Len   bitval.Bits
	Size  bitval.Bits
	Burst bitval.Bits
	Prot  bitval.Bits
	Resp  bitval.Bits

	Data bitval.Bits
}

// CanonicalNames lists the per-signal names the AXI binder resolves
// against a signal-binding config.
var CanonicalNames = []string{
	"aclock",
	"awid", "awaddr", "awlen", "awsize", "awburst", "awprot", "awvalid", "awready",
	"wdata", "wstrb", "wlast", "wvalid", "wready",
	"bid", "bresp", "bvalid", "bready",
	"arid", "araddr", "arlen", "arsize", "arburst", "arprot", "arvalid", "arready",
	"rid", "rresp", "rdata", "rlast", "rvalid", "rready",
}
