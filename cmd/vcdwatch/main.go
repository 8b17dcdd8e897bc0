// Command vcdwatch decodes a VCD waveform dump into a time-ordered
// stream of bus transactions and renders them as colorized,
// column-aligned command lines, optionally threaded through the
// per-bank/per-page annotators and a pager subprocess.
package main

import (
	"fmt"
	"iter"
	"os"

	"github.com/spf13/pflag"

	"github.com/vcdwatch/vcdwatch/internal/annotate"
	"github.com/vcdwatch/vcdwatch/internal/apb"
	"github.com/vcdwatch/vcdwatch/internal/axi"
	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/busconfig"
	"github.com/vcdwatch/vcdwatch/internal/ddr5"
	"github.com/vcdwatch/vcdwatch/internal/format"
	"github.com/vcdwatch/vcdwatch/internal/hbm2e"
	"github.com/vcdwatch/vcdwatch/internal/merge"
	"github.com/vcdwatch/vcdwatch/internal/pager"
	"github.com/vcdwatch/vcdwatch/internal/telemetry"
	"github.com/vcdwatch/vcdwatch/internal/vcdscope"
)

func main() {
	var (
		vcdPath      = pflag.String("vcd", "", "Path to the VCD waveform dump to decode (required)")
		bus          = pflag.String("bus", "", "Bus family to decode: apb, axi, ddr5 or hbm2e (required)")
		bindPath     = pflag.String("bind", "", "Path to the signal-binding YAML config (required)")
		usePager     = pflag.Bool("pager", false, "Pipe the rendered stream through a `less` pager instead of stdout")
		noColor      = pflag.BoolP("no-color", "n", false, "Disable ANSI color output")
		wantAnnotate = pflag.Bool("annotate", false, "Append per-bank/per-page annotator side panels (ddr5, hbm2e)")
		ranks        = pflag.Int("ranks", 1, "Number of ranks in the annotated channel")
		banks        = pflag.Int("banks", 8, "Banks per rank in the annotated channel")
		columns      = pflag.Int("columns", 1024, "Columns per bank in the annotated channel")
		verbose      = pflag.BoolP("verbose", "v", false, "Verbose logging to stderr")
		help         = pflag.Bool("help", false, "Display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - decode a VCD waveform into a bus-transaction stream.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Reads --vcd, binds its signals per --bind, decodes --bus, and prints\n")
		fmt.Fprintf(os.Stderr, "one colorized line per transaction.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	telemetry.SetVerbose(*verbose)
	if *noColor {
		os.Setenv("NO_COLOR", "1")
	}

	if *vcdPath == "" || *bus == "" || *bindPath == "" {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*vcdPath, *bus, *bindPath, *usePager, *wantAnnotate, *ranks, *banks, *columns); err != nil {
		fmt.Fprintln(os.Stderr, "vcdwatch:", err)
		os.Exit(1)
	}
}

func run(vcdPath, bus, bindPath string, usePager, wantAnnotate bool, ranks, banks, columns int) error {
	f, err := os.Open(vcdPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", vcdPath, err)
	}
	defer f.Close()

	scope, err := vcdscope.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", vcdPath, err)
	}

	binding, err := busconfig.LoadBindingFile(bindPath)
	if err != nil {
		return err
	}

	var lines func(yield func(string) bool)
	switch bus {
	case "apb":
		lines = apbLines(scope, binding)
	case "axi":
		lines = axiLines(scope, binding)
	case "ddr5":
		lines = ddr5Lines(scope, binding, wantAnnotate, ranks, banks, columns)
	case "hbm2e":
		lines = hbm2eLines(scope, binding, wantAnnotate, ranks, banks, columns)
	default:
		return fmt.Errorf("unknown --bus %q (want apb, axi, ddr5 or hbm2e)", bus)
	}

	if usePager {
		return pager.Pipe(pager.DefaultOptions, lines)
	}
	for line := range lines {
		fmt.Println(line)
	}
	return nil
}

func hexOr(b bitval.Bits, dash string) string {
	if b.Width() == 0 {
		return dash
	}
	return b.ToHex()
}

func toInt(b bitval.Bits) int {
	n, ok := b.ToDecimal()
	if !ok {
		return 0
	}
	return int(n)
}

func apbLines(scope *vcdscope.Scope, binding busconfig.Binding) iter.Seq[string] {
	cursors := busconfig.Bind(scope, binding, apb.CanonicalNames)
	dec := apb.NewDecoder(cursors, telemetry.Logger())
	return func(yield func(string) bool) {
		for txn := range dec.Transactions() {
			var class format.Class
			switch txn.Kind {
			case apb.Write:
				class = format.ClassWrite
			case apb.Read:
				class = format.ClassRead
			default:
				class = format.ClassError
			}
			params := []format.Param{
				{Key: "ADDR ", Value: hexOr(txn.Addr, "--")},
			}
			switch txn.Kind {
			case apb.Write:
				params = append(params, format.Param{Key: "DATA ", Value: hexOr(txn.WriteData, "--")})
			case apb.Read:
				params = append(params, format.Param{Key: "DATA ", Value: hexOr(txn.ReadData, "--")})
			}
			params = append(params, format.Param{Key: "RESP ", Value: hexOr(txn.SlvErr, "-")})
			line := format.Line(txn.RequestTimestamp, "", txn.Kind.String(), params, class, format.DefaultWidths)
			if !yield(line) {
				return
			}
		}
	}
}

func axiLines(scope *vcdscope.Scope, binding busconfig.Binding) iter.Seq[string] {
	cursors := busconfig.Bind(scope, binding, axi.CanonicalNames)
	dec := axi.NewDecoder(cursors)
	merged := merge.Streams(func(t axi.Transaction) uint64 { return t.AddressTimestamp },
		dec.WriteTransactions(), dec.ReadTransactions())
	return func(yield func(string) bool) {
		for txn := range merged {
			class := format.ClassWrite
			if txn.Kind == axi.Read {
				class = format.ClassRead
			}
			params := []format.Param{
				{Key: "ID   ", Value: hexOr(txn.ID, "--")},
				{Key: "ADDR ", Value: hexOr(txn.Addr, "--")},
				{Key: "LEN  ", Value: hexOr(txn.Len, "--")},
				{Key: "DATA ", Value: hexOr(txn.Data, "--")},
				{Key: "RESP ", Value: hexOr(txn.Resp, "-")},
			}
			line := format.Line(txn.AddressTimestamp, "", txn.Kind.String(), params, class, format.DefaultWidths)
			if !yield(line) {
				return
			}
		}
	}
}

// ddr5Event maps a decoded DDR5 command onto the protocol-agnostic
// annotate.Event the bank/page annotators consume.
func ddr5Event(txn ddr5.Transaction) (annotate.Event, bool) {
	ev := annotate.Event{Rank: txn.ChipSelect, Bank: toInt(txn.Bank), Column: toInt(txn.Column)}
	switch txn.Kind {
	case ddr5.Activate:
		ev.Action = annotate.Activate
	case ddr5.Precharge, ddr5.PrechargeSameBank:
		ev.Action = annotate.Precharge
	case ddr5.PrechargeAll:
		ev.Action = annotate.PrechargeAll
	case ddr5.RefreshAll:
		ev.Action = annotate.RefreshAll
	case ddr5.RefreshSameBank, ddr5.RefreshManagementAll, ddr5.RefreshManagementSameBank:
		ev.Action = annotate.Refresh
	case ddr5.Read, ddr5.ReadAutoPrecharge:
		ev.Action = annotate.Read
		ev.AutoPrecharge = txn.Kind == ddr5.ReadAutoPrecharge
	case ddr5.Write, ddr5.WriteAutoPrecharge, ddr5.WritePattern, ddr5.WritePatternAutoPrecharge:
		ev.Action = annotate.Write
		ev.AutoPrecharge = txn.Kind == ddr5.WriteAutoPrecharge || txn.Kind == ddr5.WritePatternAutoPrecharge
	default:
		return ev, false
	}
	return ev, true
}

func ddr5Class(k ddr5.Kind) format.Class {
	switch k {
	case ddr5.Activate:
		return format.ClassActivate
	case ddr5.Read, ddr5.ReadAutoPrecharge:
		return format.ClassRead
	case ddr5.Write, ddr5.WriteAutoPrecharge, ddr5.WritePattern, ddr5.WritePatternAutoPrecharge:
		return format.ClassWrite
	case ddr5.Precharge, ddr5.PrechargeSameBank, ddr5.PrechargeAll:
		return format.ClassPrecharge
	case ddr5.RefreshAll, ddr5.RefreshSameBank, ddr5.RefreshManagementAll, ddr5.RefreshManagementSameBank:
		return format.ClassRefresh
	case ddr5.ModeRegisterWrite, ddr5.ModeRegisterRead, ddr5.VrefCA, ddr5.VrefCS, ddr5.MultiPurposeCommand:
		return format.ClassModeRegister
	case ddr5.SelfRefreshEntry, ddr5.SelfRefreshEntryFreqChange, ddr5.PowerDownEntry:
		return format.ClassPower
	case ddr5.Error:
		return format.ClassError
	default:
		return format.ClassPlain
	}
}

func ddr5Lines(scope *vcdscope.Scope, binding busconfig.Binding, wantAnnotate bool, ranks, banks, columns int) iter.Seq[string] {
	cursors := busconfig.Bind(scope, binding, ddr5.CanonicalNames)
	dec := ddr5.NewDecoder(cursors, ddr5.DefaultConfig)

	bankAnn := annotate.NewBankAnnotator(ranks, banks)
	pageAnn := annotate.NewPageAnnotator(ranks, banks, columns)

	return func(yield func(string) bool) {
		for txn := range dec.Commands() {
			if wantAnnotate {
				if ev, ok := ddr5Event(txn); ok {
					bankAnn.Update(ev)
					pageAnn.Update(ev)
				}
			}
			params := []format.Param{
				{Key: "CS   ", Value: fmt.Sprintf("%d", txn.ChipSelect)},
				{Key: "BANK ", Value: hexOr(txn.Bank, "--")},
				{Key: "ROW  ", Value: hexOr(txn.Row, "--")},
				{Key: "COL  ", Value: hexOr(txn.Column, "--")},
				{Key: "DATA ", Value: hexOr(txn.Data, "--")},
			}
			line := format.Line(txn.Timestamp, "", txn.Kind.String(), params, ddr5Class(txn.Kind), format.DefaultWidths)
			if wantAnnotate {
				line += "  " + bankAnn.Render() + " " + pageAnn.Render()
			}
			if !yield(line) {
				return
			}
		}
	}
}

func hbm2eRowEvent(cmd hbm2e.RowCommand) (annotate.Event, bool) {
	ev := annotate.Event{Rank: toInt(cmd.StackID), Bank: toInt(cmd.BankAddress)}
	switch cmd.Kind {
	case hbm2e.Activate:
		ev.Action = annotate.Activate
	case hbm2e.Precharge:
		ev.Action = annotate.Precharge
	case hbm2e.PrechargeAll:
		ev.Action = annotate.PrechargeAll
	case hbm2e.Refresh:
		ev.Action = annotate.RefreshAll
	case hbm2e.SingleBankRefresh:
		ev.Action = annotate.Refresh
	default:
		return ev, false
	}
	return ev, true
}

func hbm2eRowClass(k hbm2e.RowKind) format.Class {
	switch k {
	case hbm2e.Activate:
		return format.ClassActivate
	case hbm2e.Precharge, hbm2e.PrechargeAll:
		return format.ClassPrecharge
	case hbm2e.Refresh, hbm2e.SingleBankRefresh:
		return format.ClassRefresh
	case hbm2e.PowerDownEntry, hbm2e.SelfRefreshEntry:
		return format.ClassPower
	default:
		return format.ClassError
	}
}

func hbm2eColumnEvent(cmd hbm2e.ColumnCommand) (annotate.Event, bool) {
	ev := annotate.Event{Rank: toInt(cmd.StackID), Bank: toInt(cmd.BankAddress), Column: toInt(cmd.ColumnAddress)}
	switch cmd.Kind {
	case hbm2e.Read, hbm2e.ReadAutoPrecharge:
		ev.Action = annotate.Read
		ev.AutoPrecharge = cmd.Kind == hbm2e.ReadAutoPrecharge
	case hbm2e.Write, hbm2e.WriteAutoPrecharge:
		ev.Action = annotate.Write
		ev.AutoPrecharge = cmd.Kind == hbm2e.WriteAutoPrecharge
	default:
		return ev, false
	}
	return ev, true
}

func hbm2eColumnClass(k hbm2e.ColumnKind) format.Class {
	switch k {
	case hbm2e.Read, hbm2e.ReadAutoPrecharge:
		return format.ClassRead
	case hbm2e.Write, hbm2e.WriteAutoPrecharge:
		return format.ClassWrite
	case hbm2e.ModeRegisterSet:
		return format.ClassModeRegister
	default:
		return format.ClassError
	}
}

// hbm2eLine is the common rendered-line shape merge.Streams orders by
// timestamp across the independent row and column command buses.
type hbm2eLine struct {
	timestamp uint64
	text      string
}

func hbm2eLines(scope *vcdscope.Scope, binding busconfig.Binding, wantAnnotate bool, ranks, banks, columns int) iter.Seq[string] {
	cursors := busconfig.Bind(scope, binding, hbm2e.CanonicalNames)
	dec := hbm2e.NewDecoder(cursors, hbm2e.DefaultConfig)

	bankAnn := annotate.NewBankAnnotator(ranks, banks)
	pageAnn := annotate.NewPageAnnotator(ranks, banks, columns)

	rowLines := func(yield func(hbm2eLine) bool) {
		for cmd := range dec.RowCommands() {
			if wantAnnotate {
				if ev, ok := hbm2eRowEvent(cmd); ok {
					bankAnn.Update(ev)
					pageAnn.Update(ev)
				}
			}
			params := []format.Param{
				{Key: "SID  ", Value: hexOr(cmd.StackID, "--")},
				{Key: "BANK ", Value: hexOr(cmd.BankAddress, "--")},
				{Key: "ROW  ", Value: hexOr(cmd.RowAddress, "--")},
			}
			line := format.Line(cmd.Timestamp, "R", cmd.Kind.String(), params, hbm2eRowClass(cmd.Kind), format.DefaultWidths)
			if wantAnnotate {
				line += "  " + bankAnn.Render() + " " + pageAnn.Render()
			}
			if !yield(hbm2eLine{timestamp: cmd.Timestamp, text: line}) {
				return
			}
		}
	}
	columnLines := func(yield func(hbm2eLine) bool) {
		for cmd := range dec.ColumnCommands() {
			if wantAnnotate {
				if ev, ok := hbm2eColumnEvent(cmd); ok {
					bankAnn.Update(ev)
					pageAnn.Update(ev)
				}
			}
			params := []format.Param{
				{Key: "SID  ", Value: hexOr(cmd.StackID, "--")},
				{Key: "BANK ", Value: hexOr(cmd.BankAddress, "--")},
				{Key: "COL  ", Value: hexOr(cmd.ColumnAddress, "--")},
				{Key: "DATA ", Value: hexOr(cmd.Data, "--")},
			}
			line := format.Line(cmd.Timestamp, "C", cmd.Kind.String(), params, hbm2eColumnClass(cmd.Kind), format.DefaultWidths)
			if wantAnnotate {
				line += "  " + bankAnn.Render() + " " + pageAnn.Render()
			}
			if !yield(hbm2eLine{timestamp: cmd.Timestamp, text: line}) {
				return
			}
		}
	}

	merged := merge.Streams(func(l hbm2eLine) uint64 { return l.timestamp }, rowLines, columnLines)
	return func(yield func(string) bool) {
		for l := range merged {
			if !yield(l.text) {
				return
			}
		}
	}
}
