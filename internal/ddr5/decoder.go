package ddr5

import (
	"iter"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

// Config carries the timing constants the source hard-coded as
// module-level globals. DefaultConfig reproduces the 5200 Mbps
// reference the protocol table documents.
type Config struct {
	ReadLatency  int
	WriteLatency int
	BurstBeats   int
}

// DefaultConfig is the 5200 MT/s reference timing used when a caller
// doesn't supply its own.
var DefaultConfig = Config{ReadLatency: 46, WriteLatency: 34, BurstBeats: 16}

// Decoder walks a DDR5 CA/CS_N/CK_T command bus and its DQ/DQS data bus.
type Decoder struct {
	ckT, ckC, csN, ca, dqsT, dqsC, dq, cb, wdqsT *wave.Cursor
	cfg                                          Config
}

// NewDecoder builds a Decoder from the cursors busconfig.Bind resolved
// for CanonicalNames.
func NewDecoder(c map[string]*wave.Cursor, cfg Config) *Decoder {
	return &Decoder{
		ckT: c["CK_T"], ckC: c["CK_C"], csN: c["CS_N"], ca: c["CA"],
		dqsT: c["DQS_T"], dqsC: c["DQS_C"], dq: c["DQ"], cb: c["CB"],
		wdqsT: c["WDQS_T"], cfg: cfg,
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

// concat folds parts right-to-left so the leftmost part ends up the most
// significant, matching the source's chained `a ** b ** c` convention.
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

func idlePattern(width int) bitval.Bits {
	digits := make([]byte, width)
	for i := range digits {
		digits[i] = '1'
	}
	return bitval.FromToken("b"+string(digits), width)
}

func chipSelectIndex(cs bitval.Bits) int {
	for i := 0; i < cs.Width(); i++ {
		if cs.Bit(i) == bitval.Zero {
			return i
		}
	}
	return 0
}

// mask builds a don't-care truth-table pattern like "xx01001".
func mask(pattern string) bitval.Bits {
	return bitval.FromToken("b"+pattern, len(pattern))
}

// NextCommand decodes the next four-UI DDR5 command.
func (d *Decoder) NextCommand() (Transaction, bool) {
	idle := idlePattern(d.csN.Width())
	csSample, ok := d.csN.NextEdge(wave.MaskedNotEquals(idle), true)
	if !ok {
		return Transaction{}, false
	}
	chipSelect := chipSelectIndex(csSample.Value)

	firstEdge, ok := d.ckT.EdgeAt(csSample.Timestamp, wave.Rising(), true)
	if !ok {
		return Transaction{}, false
	}

	words := make([]bitval.Bits, 4)
	wordTimestamps := make([]uint64, 4)
	wordTS := firstEdge.Timestamp
	for i := 0; i < 4; i++ {
		words[i] = sampleAt(d.ca, wordTS)
		wordTimestamps[i] = wordTS
		if i < 3 {
			edge, ok := d.ckT.NextEdge(wave.Rising(), true)
			if !ok {
				return Transaction{}, false
			}
			wordTS = edge.Timestamp
		}
	}

	return d.dispatch(chipSelect, words, wordTimestamps), true
}

func (d *Decoder) dispatch(chipSelect int, w []bitval.Bits, ts []uint64) Transaction {
	base := Transaction{ChipSelect: chipSelect, Timestamp: ts[0]}

	bankAddress := func() bitval.Bits { return concat(w[1].Slice(0, 1), w[0].Slice(6, 7)) }

	switch {
	case w[0].EqualMasked(mask("xxxxx00")):
		t := base
		t.Kind = Activate
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Row = concat(w[3].Slice(0, 6), w[2].Slice(0, 6), w[0].Slice(2, 5))
		return t

	case w[0].EqualMasked(mask("xx01001")) && w[3].EqualMasked(mask("xxx1xxx")):
		t := base
		t.Kind = WritePattern
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(1, 6), w[3].Slice(0, 1)).ShiftLeft(3)
		return t

	case w[0].EqualMasked(mask("xx01001")) && w[3].EqualMasked(mask("xxx0xxx")):
		t := base
		t.Kind = WritePatternAutoPrecharge
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(1, 6), w[3].Slice(0, 1)).ShiftLeft(3)
		return t

	case w[0].EqualMasked(mask("xx00101")):
		t := base
		t.Kind = ModeRegisterWrite
		t.Timestamp = ts[2]
		t.ModeRegister = concat(w[0].Slice(5, 6), w[1].Slice(0, 5))
		t.Operation = concat(w[2].Slice(0, 6), w[3].Slice(0, 1))
		t.ControlWord = w[3].Slice(3, 4)
		return t

	case w[0].EqualMasked(mask("xx10101")):
		t := base
		t.Kind = ModeRegisterRead
		t.Timestamp = ts[2]
		t.ModeRegister = concat(w[0].Slice(5, 6), w[1].Slice(0, 5))
		t.ControlWord = w[3].Slice(3, 4)
		return t

	case w[0].EqualMasked(mask("xx01101")) && w[3].EqualMasked(mask("xxx1xxx")):
		t := base
		t.Kind = Write
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(1, 6), w[3].Slice(0, 1)).ShiftLeft(3)
		t.BurstLength = w[0].Slice(5, 6)
		t.PartialWrite = w[3].Slice(4, 5)
		return t

	case w[0].EqualMasked(mask("xx01101")) && w[3].EqualMasked(mask("xxx0xxx")):
		t := base
		t.Kind = WriteAutoPrecharge
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(1, 6), w[3].Slice(0, 1)).ShiftLeft(3)
		t.BurstLength = w[0].Slice(5, 6)
		t.PartialWrite = w[3].Slice(4, 5)
		return t

	case w[0].EqualMasked(mask("xx11101")) && w[3].EqualMasked(mask("xxx1xxx")):
		t := base
		t.Kind = Read
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(0, 6), w[3].Slice(0, 1)).ShiftLeft(2)
		t.BurstLength = w[0].Slice(5, 6)
		return t

	case w[0].EqualMasked(mask("xx11101")) && w[3].EqualMasked(mask("xxx0xxx")):
		t := base
		t.Kind = ReadAutoPrecharge
		t.Timestamp = ts[2]
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		t.Column = concat(w[2].Slice(0, 6), w[3].Slice(0, 1)).ShiftLeft(2)
		t.BurstLength = w[0].Slice(5, 6)
		return t

	case w[0].EqualMasked(mask("xx00011")) && w[1].EqualMasked(mask("x0xxxxx")):
		t := base
		t.Kind = VrefCA
		t.Operation = concat(w[1].Slice(0, 4), w[0].Slice(5, 6))
		return t

	case w[0].EqualMasked(mask("xx00011")) && w[1].EqualMasked(mask("x1xxxxx")):
		t := base
		t.Kind = VrefCS
		t.Operation = concat(w[1].Slice(0, 4), w[0].Slice(5, 6))
		return t

	case w[0].EqualMasked(mask("xx10011")) && w[1].EqualMasked(mask("xxx01xx")):
		t := base
		t.Kind = RefreshAll
		t.ChipID = w[1].Slice(4, 6)
		t.RefreshIntervalRate = w[1].Slice(1, 2)
		return t

	case w[0].EqualMasked(mask("xx10011")) && w[1].EqualMasked(mask("xxx00xx")):
		t := base
		t.Kind = RefreshManagementAll
		t.ChipID = w[1].Slice(4, 6)
		return t

	case w[0].EqualMasked(mask("xx10011")) && w[1].EqualMasked(mask("xxx11xx")):
		t := base
		t.Kind = RefreshSameBank
		t.ChipID = w[1].Slice(4, 6)
		t.Bank = bankAddress()
		t.RefreshIntervalRate = w[1].Slice(1, 2)
		return t

	case w[0].EqualMasked(mask("xx10011")) && w[1].EqualMasked(mask("xxx10xx")):
		t := base
		t.Kind = RefreshManagementSameBank
		t.ChipID = w[1].Slice(4, 6)
		t.Bank = bankAddress()
		return t

	case w[0].EqualMasked(mask("xx01011")) && w[1].EqualMasked(mask("xxx0xxx")):
		t := base
		t.Kind = PrechargeAll
		t.ChipID = w[1].Slice(4, 6)
		return t

	case w[0].EqualMasked(mask("xx01011")) && w[1].EqualMasked(mask("xxx1xxx")):
		t := base
		t.Kind = PrechargeSameBank
		t.ChipID = w[1].Slice(4, 6)
		t.Bank = bankAddress()
		return t

	case w[0].EqualMasked(mask("xx11011")):
		t := base
		t.Kind = Precharge
		t.ChipID = w[1].Slice(4, 6)
		t.BankGroup = w[1].Slice(1, 3)
		t.Bank = bankAddress()
		return t

	case w[0].EqualMasked(mask("xx10111")) && w[1].EqualMasked(mask("xxx01xx")):
		t := base
		t.Kind = SelfRefreshEntry
		return t

	case w[0].EqualMasked(mask("xx10111")) && w[1].EqualMasked(mask("xxx00xx")):
		t := base
		t.Kind = SelfRefreshEntryFreqChange
		return t

	case w[0].EqualMasked(mask("xx10111")) && w[1].EqualMasked(mask("xxx1xxx")):
		t := base
		t.Kind = PowerDownEntry
		t.OnDieTermination = w[1].Slice(4, 5)
		return t

	case w[0].EqualMasked(mask("xx01111")):
		t := base
		t.Kind = MultiPurposeCommand
		t.Operation = concat(w[1].Slice(0, 5), w[0].Slice(5, 6))
		return t

	default:
		t := base
		t.Kind = Error
		return t
	}
}

// captureBurst reads BurstBeats beats alternating DQS_T/DQS_C rising
// edges starting latencyEdges clock cycles after the command's anchor
// timestamp, concatenating beats with the first beat as least
// significant. strobeT/strobeC are DQS_T/DQS_C for reads, WDQS_T/DQS_C
// for writes (the source's unbound WDQS_T is resolved explicitly here,
// per spec's corrected binding).
func (d *Decoder) captureBurst(anchor uint64, latencyEdges int, strobeT, strobeC *wave.Cursor) bitval.Bits {
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

	var burst bitval.Bits
	t := edge.Timestamp
	strobeT.ValueAt(t, true)
	strobeC.ValueAt(t, true)
	for beat := 0; beat < d.cfg.BurstBeats; beat++ {
		var strobe *wave.Cursor
		if beat%2 == 0 {
			strobe = strobeT
		} else {
			strobe = strobeC
		}
		s, ok := strobe.NextEdge(wave.Rising(), true)
		if !ok {
			break
		}
		t = s.Timestamp
		word := sampleAt(d.dq, t)
		if beat == 0 {
			burst = word
		} else {
			burst = bitval.Concat(word, burst)
		}
	}
	return burst
}

// ReadBurst captures a Read/ReadAutoPrecharge data burst anchored at the
// command's word-2 timestamp.
func (d *Decoder) ReadBurst(anchor uint64) bitval.Bits {
	return d.captureBurst(anchor, d.cfg.ReadLatency-1, d.dqsT, d.dqsC)
}

// WriteBurst captures a Write/WriteAutoPrecharge/WritePattern data burst
// anchored at the command's word-2 timestamp.
func (d *Decoder) WriteBurst(anchor uint64) bitval.Bits {
	return d.captureBurst(anchor, d.cfg.WriteLatency-1, d.wdqsT, d.dqsC)
}

// Commands is the lazy sequence of decoded commands, with Data populated
// for the variants that carry a burst.
func (d *Decoder) Commands() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for {
			txn, ok := d.NextCommand()
			if !ok {
				return
			}
			switch txn.Kind {
			case Read, ReadAutoPrecharge:
				txn.Data = d.ReadBurst(txn.Timestamp)
			case Write, WriteAutoPrecharge, WritePattern, WritePatternAutoPrecharge:
				txn.Data = d.WriteBurst(txn.Timestamp)
			}
			if !yield(txn) {
				return
			}
		}
	}
}
