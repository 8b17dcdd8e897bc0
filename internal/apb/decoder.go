package apb

import (
	"io"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

// Decoder walks an APB waveform one command at a time. It owns its
// cursors for the lifetime of the decode session; nothing else may read
// from them concurrently.
type Decoder struct {
	pclock, psel, penable, pready *wave.Cursor
	paddr, pprot, pnse            *wave.Cursor
	pwrite, pstrb, pwdata         *wave.Cursor
	prdata, pslverr               *wave.Cursor

	log *log.Logger
}

// NewDecoder builds a Decoder from the cursors busconfig.Bind resolved
// for CanonicalNames. logger may be nil, in which case a discarding
// logger is used.
func NewDecoder(cursors map[string]*wave.Cursor, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Decoder{
		pclock:  cursors["pclock"],
		psel:    cursors["psel"],
		penable: cursors["penable"],
		pready:  cursors["pready"],
		paddr:   cursors["paddr"],
		pprot:   cursors["pprot"],
		pnse:    cursors["pnse"],
		pwrite:  cursors["pwrite"],
		pstrb:   cursors["pstrb"],
		pwdata:  cursors["pwdata"],
		prdata:  cursors["prdata"],
		pslverr: cursors["pslverr"],
		log:     logger,
	}
}

// NextTransaction advances to, and decodes, the next APB command. It
// returns false once penable has no further rising edge — end of
// waveform.
func (d *Decoder) NextTransaction() (Transaction, bool) {
	penableEdge, ok := d.penable.NextEdge(wave.Rising(), true)
	if !ok {
		return Transaction{}, false
	}

	requestEdge, ok := d.pclock.EdgeAt(penableEdge.Timestamp, wave.Rising(), true)
	if !ok {
		return Transaction{}, false
	}
	requestTS := requestEdge.Timestamp

	addr := sampleAt(d.paddr, requestTS)
	prot := sampleAt(d.pprot, requestTS)
	nse := sampleAt(d.pnse, requestTS)
	writeBit := sampleAt(d.pwrite, requestTS)
	strobe := sampleAt(d.pstrb, requestTS)
	wdata := sampleAt(d.pwdata, requestTS)

	readyEdge, ok := d.pready.NextEdge(wave.Rising(), true)
	if !ok {
		return Transaction{}, false
	}
	responseEdge, ok := d.pclock.EdgeAt(readyEdge.Timestamp, wave.Rising(), true)
	if !ok {
		return Transaction{}, false
	}
	responseTS := responseEdge.Timestamp

	// prdata/pslverr are each sampled from their own cursor, not from
	// pprot, at the response-phase timestamp.
	rdata := sampleAt(d.prdata, responseTS)
	slverr := sampleAt(d.pslverr, responseTS)

	txn := Transaction{
		RequestTimestamp:  requestTS,
		ResponseTimestamp: responseTS,
		Addr:              addr,
		Prot:              prot,
		Strobe:            strobe,
		NSE:               nse,
		WriteData:         wdata,
		ReadData:          rdata,
		SlvErr:            slverr,
	}

	switch {
	case writeBit.HasXZ():
		txn.Kind = Error
		d.log.Warn("apb: sampled-X error on pwrite", "timestamp", requestTS)
	case writeBit.Bit(0) == bitval.One:
		txn.Kind = Write
	default:
		txn.Kind = Read
	}
	return txn, true
}

// sampleAt reads cur's value at t, substituting a none-valued Bits when
// cur is unbound — spec's "unbound optional signal" is not an error.
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

// Transactions returns the lazy sequence of decoded transactions,
// terminating cleanly at end of waveform.
func (d *Decoder) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for {
			txn, ok := d.NextTransaction()
			if !ok {
				return
			}
			if !yield(txn) {
				return
			}
		}
	}
}
