// Package hbm2e decodes the two independent HBM2e command buses — row
// (R) and column (C) — into their respective closed command sets.
package hbm2e

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// RowKind discriminates the closed set of HBM2e row command variants.
type RowKind int

const (
	Activate RowKind = iota
	Precharge
	PrechargeAll
	SingleBankRefresh
	Refresh
	PowerDownEntry
	SelfRefreshEntry
	RowError
)

func (k RowKind) String() string {
	switch k {
	case Activate:
		return "ACT"
	case Precharge:
		return "PRE"
	case PrechargeAll:
		return "PREA"
	case SingleBankRefresh:
		return "REFSB"
	case Refresh:
		return "REF"
	case PowerDownEntry:
		return "PDE"
	case SelfRefreshEntry:
		return "SRE"
	default:
		return "ERROR"
	}
}

// RowCommand is one decoded HBM2e row-bus command.
type RowCommand struct {
	Kind      RowKind
	Timestamp uint64

	Parity        bitval.Bits
	PseudoChannel bitval.Bits
	StackID       bitval.Bits
	BankAddress   bitval.Bits
	RowAddress    bitval.Bits
}

// ColumnKind discriminates the closed set of HBM2e column command
// variants.
type ColumnKind int

const (
	Read ColumnKind = iota
	ReadAutoPrecharge
	Write
	WriteAutoPrecharge
	ModeRegisterSet
	ColumnError
)

func (k ColumnKind) String() string {
	switch k {
	case Read:
		return "RD"
	case ReadAutoPrecharge:
		return "RDA"
	case Write:
		return "WR"
	case WriteAutoPrecharge:
		return "WRA"
	case ModeRegisterSet:
		return "MRS"
	default:
		return "ERROR"
	}
}

// ColumnCommand is one decoded HBM2e column-bus command, including its
// captured data burst for the Read/Write variants.
type ColumnCommand struct {
	Kind      ColumnKind
	Timestamp uint64

	PseudoChannel bitval.Bits
	StackID       bitval.Bits
	BankAddress   bitval.Bits
	ColumnAddress bitval.Bits
	ModeRegister  bitval.Bits

	Data bitval.Bits
}

// CanonicalNames lists the per-signal names the HBM2e binder resolves
// against a signal-binding config.
var CanonicalNames = []string{
	"CK_T", "CK_C", "CKE", "R", "C",
	"RDQS_T", "RDQS_C", "WDQS_T", "WDQS_C",
	"DQ", "DBI", "DM", "PAR", "DERR", "AERR",
}
