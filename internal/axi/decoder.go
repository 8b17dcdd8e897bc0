package axi

import (
	"iter"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

// Decoder walks an AXI4 waveform, handshaking AW/W/B for writes and
// AR/R for reads.
type Decoder struct {
	aclock *wave.Cursor

	awid, awaddr, awlen, awsize, awburst, awprot, awvalid, awready *wave.Cursor
	wdata, wstrb, wlast, wvalid, wready                            *wave.Cursor
	bid, bresp, bvalid, bready                                     *wave.Cursor

	arid, araddr, arlen, arsize, arburst, arprot, arvalid, arready *wave.Cursor
	rid, rresp, rdata, rlast, rvalid, rready                       *wave.Cursor
}

// NewDecoder builds a Decoder from the cursors busconfig.Bind resolved
// for CanonicalNames.
func NewDecoder(c map[string]*wave.Cursor) *Decoder {
	return &Decoder{
		aclock:  c["aclock"],
		awid:    c["awid"], awaddr: c["awaddr"], awlen: c["awlen"], awsize: c["awsize"],
		awburst: c["awburst"], awprot: c["awprot"], awvalid: c["awvalid"], awready: c["awready"],
		wdata: c["wdata"], wstrb: c["wstrb"], wlast: c["wlast"], wvalid: c["wvalid"], wready: c["wready"],
		bid: c["bid"], bresp: c["bresp"], bvalid: c["bvalid"], bready: c["bready"],
		arid: c["arid"], araddr: c["araddr"], arlen: c["arlen"], arsize: c["arsize"],
		arburst: c["arburst"], arprot: c["arprot"], arvalid: c["arvalid"], arready: c["arready"],
		rid: c["rid"], rresp: c["rresp"], rdata: c["rdata"], rlast: c["rlast"], rvalid: c["rvalid"], rready: c["rready"],
	}
}

func sampleAt(cur *wave.Cursor, t uint64) bitval.Bits {
	if cur == nil || !cur.Bound() {
		return bitval.None()
	}
	s, ok := cur.ValueAt(t, false)
	if !ok {
		return bitval.None()
	}
	return s.Value
}

func beatCount(lenField bitval.Bits) int {
	n, ok := lenField.ToDecimal()
	if !ok {
		return 1
	}
	return int(n) + 1
}

// NextWriteTransaction decodes the next AW/W*/B sequence.
func (d *Decoder) NextWriteTransaction() (Transaction, bool) {
	addrTS, ok := wave.Handshake(d.aclock, d.awvalid, d.awready)
	if !ok {
		return Transaction{}, false
	}

	txn := Transaction{
		Kind:             Write,
		AddressTimestamp: addrTS,
		ID:               sampleAt(d.awid, addrTS),
		Addr:             sampleAt(d.awaddr, addrTS),
		Len:              sampleAt(d.awlen, addrTS),
		Size:             sampleAt(d.awsize, addrTS),
		Burst:            sampleAt(d.awburst, addrTS),
		Prot:             sampleAt(d.awprot, addrTS),
	}

	beats := beatCount(txn.Len)
	var burst bitval.Bits
	for beat := 0; beat < beats; beat++ {
		beatTS, ok := wave.Handshake(d.aclock, d.wvalid, d.wready)
		if !ok {
			return Transaction{}, false
		}
		if beat == 0 {
			txn.FirstBeatTimestamp = beatTS
		}
		txn.LastBeatTimestamp = beatTS

		wdata := sampleAt(d.wdata, beatTS)
		// First beat ends up least significant: each new beat becomes
		// the more-significant operand of the running concatenation.
		if beat == 0 {
			burst = wdata
		} else {
			burst = bitval.Concat(wdata, burst)
		}
	}
	txn.Data = burst

	respTS, ok := wave.Handshake(d.aclock, d.bvalid, d.bready)
	if !ok {
		return Transaction{}, false
	}
	txn.ResponseTimestamp = respTS
	txn.ID = sampleAt(d.bid, respTS)
	txn.Resp = sampleAt(d.bresp, respTS)

	return txn, true
}

// NextReadTransaction decodes the next AR/R* sequence, symmetric to
// NextWriteTransaction. rid/rresp may be sampled fresh on every beat;
// the last beat's value is what's emitted, per spec.
func (d *Decoder) NextReadTransaction() (Transaction, bool) {
	addrTS, ok := wave.Handshake(d.aclock, d.arvalid, d.arready)
	if !ok {
		return Transaction{}, false
	}

	txn := Transaction{
		Kind:             Read,
		AddressTimestamp: addrTS,
		ID:               sampleAt(d.arid, addrTS),
		Addr:             sampleAt(d.araddr, addrTS),
		Len:              sampleAt(d.arlen, addrTS),
		Size:             sampleAt(d.arsize, addrTS),
		Burst:            sampleAt(d.arburst, addrTS),
		Prot:             sampleAt(d.arprot, addrTS),
	}

	beats := beatCount(txn.Len)
	var burst bitval.Bits
	for beat := 0; beat < beats; beat++ {
		beatTS, ok := wave.Handshake(d.aclock, d.rvalid, d.rready)
		if !ok {
			return Transaction{}, false
		}
		if beat == 0 {
			txn.FirstBeatTimestamp = beatTS
		}
		txn.LastBeatTimestamp = beatTS
		txn.ResponseTimestamp = beatTS
		txn.ID = sampleAt(d.rid, beatTS)
		txn.Resp = sampleAt(d.rresp, beatTS)

		rdata := sampleAt(d.rdata, beatTS)
		if beat == 0 {
			burst = rdata
		} else {
			burst = bitval.Concat(rdata, burst)
		}
	}
	txn.Data = burst

	return txn, true
}

// WriteTransactions is the lazy sequence of decoded write bursts.
func (d *Decoder) WriteTransactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for {
			txn, ok := d.NextWriteTransaction()
			if !ok || !yield(txn) {
				return
			}
		}
	}
}

// ReadTransactions is the lazy sequence of decoded read bursts.
func (d *Decoder) ReadTransactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for {
			txn, ok := d.NextReadTransaction()
			if !ok || !yield(txn) {
				return
			}
		}
	}
}
