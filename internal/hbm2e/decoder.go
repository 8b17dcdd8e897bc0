package hbm2e

import (
	"iter"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

// Config carries the timing and feature-flag constants the source held
// as module-level globals (read_latency, write_latency,
// enable_data_bus_inversion), injected here instead.
type Config struct {
	ReadLatency            int
	WriteLatency           int
	EnableDataBusInversion bool
}

var DefaultConfig = Config{ReadLatency: 20, WriteLatency: 14, EnableDataBusInversion: true}

// Decoder walks the independent HBM2e row and column command buses and
// their shared data bus.
type Decoder struct {
	ckT, ckC, cke, r, c          *wave.Cursor
	rdqsT, rdqsC, wdqsT, wdqsC   *wave.Cursor
	dq, dbi, dm, par, derr, aerr *wave.Cursor
	cfg                          Config
}

// NewDecoder builds a Decoder from the cursors busconfig.Bind resolved
// for CanonicalNames.
func NewDecoder(cur map[string]*wave.Cursor, cfg Config) *Decoder {
	return &Decoder{
		ckT: cur["CK_T"], ckC: cur["CK_C"], cke: cur["CKE"], r: cur["R"], c: cur["C"],
		rdqsT: cur["RDQS_T"], rdqsC: cur["RDQS_C"], wdqsT: cur["WDQS_T"], wdqsC: cur["WDQS_C"],
		dq: cur["DQ"], dbi: cur["DBI"], dm: cur["DM"], par: cur["PAR"], derr: cur["DERR"], aerr: cur["AERR"],
		cfg: cfg,
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

func concat(parts ...bitval.Bits) bitval.Bits {
	if len(parts) == 0 {
		return bitval.None()
	}
	result := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		result = bitval.Concat(parts[i], result)
	}
	return result
}

func mask(pattern string) bitval.Bits {
	return bitval.FromToken("b"+pattern, len(pattern))
}

// NextRowCommand decodes the next row-bus command.
func (d *Decoder) NextRowCommand() (RowCommand, bool) {
	rSample, ok := d.r.NextEdge(wave.MaskedNotEquals(mask("xxxx111")), true)
	if !ok {
		return RowCommand{}, false
	}

	w0TS, ok := d.ckT.EdgeAt(rSample.Timestamp, wave.Rising(), true)
	if !ok {
		return RowCommand{}, false
	}
	w0 := sampleAt(d.r, w0TS.Timestamp)
	cke := sampleAt(d.cke, w0TS.Timestamp)

	w1TS, ok := d.ckT.NextEdge(wave.Falling(), true)
	if !ok {
		return RowCommand{}, false
	}
	w1 := sampleAt(d.r, w1TS.Timestamp)

	cmd := RowCommand{Timestamp: w0TS.Timestamp}

	switch {
	case w0.EqualMasked(mask("xxxxx10")):
		cmd.Kind = Activate
	case w0.EqualMasked(mask("xxxx011")) && w1.EqualMasked(mask("xx0xxxx")):
		cmd.Kind = Precharge
	case w0.EqualMasked(mask("xxxx011")) && w1.EqualMasked(mask("xx1xxxx")):
		cmd.Kind = PrechargeAll
	case w0.EqualMasked(mask("xxxx100")) && cke.Bit(0) == bitval.Zero:
		cmd.Kind = SelfRefreshEntry
	case w0.EqualMasked(mask("xxxx100")) && w1.EqualMasked(mask("xx0xxxx")):
		cmd.Kind = SingleBankRefresh
	case w0.EqualMasked(mask("xxxx100")) && w1.EqualMasked(mask("xx1xxxx")):
		cmd.Kind = Refresh
	case w0.EqualMasked(mask("xxxx111")) && cke.Bit(0) == bitval.Zero:
		cmd.Kind = PowerDownEntry
	default:
		cmd.Kind = RowError
		return cmd, true
	}

	if cmd.Kind == Activate {
		w2TS, ok := d.ckT.NextEdge(wave.Rising(), true)
		if !ok {
			return RowCommand{}, false
		}
		w2 := sampleAt(d.r, w2TS.Timestamp)
		w3TS, ok := d.ckT.NextEdge(wave.Falling(), true)
		if !ok {
			return RowCommand{}, false
		}
		w3 := sampleAt(d.r, w3TS.Timestamp)

		cmd.Timestamp = w2TS.Timestamp
		cmd.Parity = concat(w3.Slice(2, 3), w1.Slice(2, 3))
		cmd.PseudoChannel = w1.Slice(3, 4)
		cmd.StackID = concat(w1.Slice(6, 7), w0.Slice(2, 3))
		cmd.BankAddress = concat(w1.Slice(5, 6), w0.Slice(3, 5))
		cmd.RowAddress = concat(w0.Slice(6, 7), w1.Slice(4, 5), w1.Slice(0, 1), w2.Slice(0, 5), w3.Slice(3, 5), w3.Slice(0, 1))
		return cmd, true
	}

	switch cmd.Kind {
	case Precharge, SingleBankRefresh:
		cmd.Parity = w1.Slice(2, 3)
		cmd.PseudoChannel = w1.Slice(3, 4)
		cmd.StackID = concat(w0.Slice(6, 7), w1.Slice(1, 2))
		cmd.BankAddress = concat(w1.Slice(5, 6), w0.Slice(3, 5))
	case PrechargeAll, Refresh:
		cmd.Parity = w1.Slice(2, 3)
		cmd.PseudoChannel = w1.Slice(3, 4)
	case PowerDownEntry, SelfRefreshEntry:
		cmd.Parity = w1.Slice(2, 3)
	}
	return cmd, true
}

// RowCommands is the lazy sequence of decoded row commands.
func (d *Decoder) RowCommands() iter.Seq[RowCommand] {
	return func(yield func(RowCommand) bool) {
		for {
			cmd, ok := d.NextRowCommand()
			if !ok || !yield(cmd) {
				return
			}
		}
	}
}

// NextColumnCommand decodes the next column-bus command, including its
// data burst for the Read/Write variants.
func (d *Decoder) NextColumnCommand() (ColumnCommand, bool) {
	cSample, ok := d.c.NextEdge(wave.MaskedNotEquals(mask("xxxxxx111")), true)
	if !ok {
		return ColumnCommand{}, false
	}

	w0TS, ok := d.ckT.EdgeAt(cSample.Timestamp, wave.Rising(), true)
	if !ok {
		return ColumnCommand{}, false
	}
	w0 := sampleAt(d.c, w0TS.Timestamp)

	w1TS, ok := d.ckT.NextEdge(wave.Falling(), true)
	if !ok {
		return ColumnCommand{}, false
	}
	w1 := sampleAt(d.c, w1TS.Timestamp)

	cmd := ColumnCommand{Timestamp: w0TS.Timestamp}
	cmd.PseudoChannel = w1.Slice(3, 4)
	cmd.StackID = concat(w1.Slice(6, 7), w0.Slice(2, 3))
	cmd.BankAddress = concat(w1.Slice(5, 6), w0.Slice(3, 5))
	cmd.ColumnAddress = concat(w1.Slice(0, 3), w0.Slice(3, 6))
	cmd.ModeRegister = concat(w1.Slice(0, 6), w0.Slice(6, 7))

	switch {
	case w0.EqualMasked(mask("xxxxx0101")):
		cmd.Kind = Read
	case w0.EqualMasked(mask("xxxxx1101")):
		cmd.Kind = ReadAutoPrecharge
	case w0.EqualMasked(mask("xxxxx0001")):
		cmd.Kind = Write
	case w0.EqualMasked(mask("xxxxx1001")):
		cmd.Kind = WriteAutoPrecharge
	case w0.EqualMasked(mask("xxxxxx000")):
		cmd.Kind = ModeRegisterSet
		return cmd, true
	default:
		cmd.Kind = ColumnError
		return cmd, true
	}

	pc := 0
	if n, ok := cmd.PseudoChannel.ToDecimal(); ok && n == 1 {
		pc = 1
	}

	var latency int
	var strobeT, strobeC *wave.Cursor
	switch cmd.Kind {
	case Read, ReadAutoPrecharge:
		latency = d.cfg.ReadLatency
		strobeT, strobeC = d.rdqsT, d.rdqsC
	default:
		latency = d.cfg.WriteLatency
		strobeT, strobeC = d.wdqsT, d.wdqsC
	}
	cmd.Data = d.captureBurst(cmd.Timestamp, latency-1, strobeT, strobeC, pc)
	return cmd, true
}

// ColumnCommands is the lazy sequence of decoded column commands.
func (d *Decoder) ColumnCommands() iter.Seq[ColumnCommand] {
	return func(yield func(ColumnCommand) bool) {
		for {
			cmd, ok := d.NextColumnCommand()
			if !ok || !yield(cmd) {
				return
			}
		}
	}
}

// captureBurst gathers 4 beats alternating t/c strobe edges, each
// reading the pseudo-channel's half of DQ, applying DBI inversion and
// the half-swap byte-ordering rule, then concatenating beats MSB-first
// (beat 0 is the most significant).
func (d *Decoder) captureBurst(anchor uint64, latencyEdges int, strobeT, strobeC *wave.Cursor, pc int) bitval.Bits {
	edge, ok := d.ckC.EdgeAt(anchor, wave.Rising(), true)
	if !ok {
		return bitval.None()
	}
	for i := 0; i < latencyEdges; i++ {
		edge, ok = d.ckC.NextEdge(wave.Rising(), true)
		if !ok {
			return bitval.None()
		}
	}

	lo, hi := 0, 64
	if pc == 1 {
		lo, hi = 64, 128
	}

	beats := make([]bitval.Bits, 0, 4)
	t := edge.Timestamp
	strobeT.ValueAt(t, true)
	strobeC.ValueAt(t, true)
	for beat := 0; beat < 4; beat++ {
		strobe := strobeT
		if beat%2 == 1 {
			strobe = strobeC
		}
		s, ok := strobe.NextEdge(wave.Rising(), true)
		if !ok {
			break
		}
		t = s.Timestamp
		half := sampleAt(d.dq, t)
		if half.Width() >= hi {
			half = half.Slice(lo, hi)
		}
		half = d.applyDBI(half, t, pc)
		beats = append(beats, swapHalves(half))
	}
	if len(beats) == 0 {
		return bitval.None()
	}
	return concat(beats...)
}

// swapHalves swaps the upper and lower 32-bit sub-halves of a 64-bit
// beat, per this bus's byte-ordering convention.
func swapHalves(half bitval.Bits) bitval.Bits {
	if half.Width() != 64 {
		return half
	}
	low := half.Slice(0, 32)
	high := half.Slice(32, 64)
	return concat(low, high)
}

// applyDBI inverts each byte of half whose corresponding DBI bit is set,
// when data bus inversion is enabled in the config.
func (d *Decoder) applyDBI(half bitval.Bits, t uint64, pc int) bitval.Bits {
	if !d.cfg.EnableDataBusInversion || d.dbi == nil || !d.dbi.Bound() {
		return half
	}
	dbi := sampleAt(d.dbi, t)
	bytes := half.Width() / 8
	parts := make([]bitval.Bits, bytes)
	for i := 0; i < bytes; i++ {
		byteLo, byteHi := i*8, i*8+8
		b := half.Slice(byteLo, byteHi)
		dbiBit := i + pc*8
		if dbi.Bit(dbiBit) == bitval.One {
			b = b.Complement()
		}
		parts[bytes-1-i] = b
	}
	return concat(parts...)
}
