// Package ddr5 decodes a DDR5 command/address bus into the closed set
// of JEDEC DDR5 commands, dispatching on a four-word (four-UI) command
// truth table sampled from CA at successive CK_T rising edges.
package ddr5

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// Kind discriminates the closed set of DDR5 command variants.
type Kind int

const (
	Activate Kind = iota
	WritePattern
	WritePatternAutoPrecharge
	ModeRegisterWrite
	ModeRegisterRead
	Write
	WriteAutoPrecharge
	Read
	ReadAutoPrecharge
	VrefCA
	VrefCS
	RefreshAll
	RefreshManagementAll
	RefreshSameBank
	RefreshManagementSameBank
	PrechargeAll
	PrechargeSameBank
	Precharge
	SelfRefreshEntry
	SelfRefreshEntryFreqChange
	PowerDownEntry
	MultiPurposeCommand
	Error
)

func (k Kind) String() string {
	switch k {
	case Activate:
		return "ACT"
	case WritePattern:
		return "WRP"
	case WritePatternAutoPrecharge:
		return "WRPA"
	case ModeRegisterWrite:
		return "MRW"
	case ModeRegisterRead:
		return "MRR"
	case Write:
		return "WR"
	case WriteAutoPrecharge:
		return "WRA"
	case Read:
		return "RD"
	case ReadAutoPrecharge:
		return "RDA"
	case VrefCA:
		return "VrefCA"
	case VrefCS:
		return "VrefCS"
	case RefreshAll:
		return "REFab"
	case RefreshManagementAll:
		return "RFMab"
	case RefreshSameBank:
		return "REFsb"
	case RefreshManagementSameBank:
		return "RFMsb"
	case PrechargeAll:
		return "PREab"
	case PrechargeSameBank:
		return "PREsb"
	case Precharge:
		return "PREpb"
	case SelfRefreshEntry:
		return "SRE"
	case SelfRefreshEntryFreqChange:
		return "SREF"
	case PowerDownEntry:
		return "PDE"
	case MultiPurposeCommand:
		return "MPC"
	default:
		return "ERROR"
	}
}

// Transaction is one decoded DDR5 command. Only the fields relevant to
// Kind are meaningfully populated; the rest carry a none-valued Bits.
type Transaction struct {
	Kind      Kind
	Timestamp uint64

	ChipSelect int
	ChipID     bitval.Bits

	BankGroup bitval.Bits
	Bank      bitval.Bits
	Row       bitval.Bits
	Column    bitval.Bits

	BurstLength  bitval.Bits
	PartialWrite bitval.Bits

	ModeRegister bitval.Bits
	Operation    bitval.Bits
	ControlWord  bitval.Bits

	RefreshIntervalRate bitval.Bits
	OnDieTermination    bitval.Bits

	// Data is populated for Read/ReadAutoPrecharge/Write/WriteAutoPrecharge
	// and WritePattern/WritePatternAutoPrecharge by the burst-capture pass.
	Data bitval.Bits
}

// CanonicalNames lists the per-signal names the DDR5 binder resolves
// against a signal-binding config. WDQS_T is the write-data strobe
// WriteBurst reads, bound as its own signal rather than reusing DQS_T.
var CanonicalNames = []string{
	"CK_T", "CK_C", "CS_N", "CA", "DQS_T", "DQS_C", "DQ", "CB", "WDQS_T",
}
