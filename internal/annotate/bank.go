// Package annotate implements stateful per-bank, per-page and per-burst
// observers: consumers of a decoded command stream that render a
// colorized status string reflecting controller-visible state,
// independent of the protocol that produced the stream.
package annotate

import "github.com/charmbracelet/lipgloss"

// Action discriminates the bank-addressed operations a BankAnnotator or
// PageAnnotator reacts to. It is deliberately protocol-agnostic: DDR5
// and HBM2e decoders both translate their own Kind into one of these.
type Action int

const (
	Activate Action = iota
	Precharge
	PrechargeAll
	Refresh
	RefreshAll
	Read
	Write
)

// Event is one bank-addressed command, reduced to the fields the
// annotators care about. Rank/Bank are a flat address within the
// channel; Column only matters to the page annotator.
type Event struct {
	Action        Action
	Rank          int
	Bank          int
	Column        int
	AutoPrecharge bool
}

var (
	styleActivate  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true) // green
	stylePrecharge = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true) // red
	styleRefresh   = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true) // blue
	styleRead      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))            // cyan
	styleWrite     = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))            // magenta
	styleActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))            // white
	styleInactive  = lipgloss.NewStyle().Faint(true)
)

func glyphFor(a Action) (string, lipgloss.Style) {
	switch a {
	case Activate:
		return "A", styleActivate
	case Precharge, PrechargeAll:
		return "P", stylePrecharge
	case Refresh, RefreshAll:
		return "R", styleRefresh
	case Read:
		return "r", styleRead
	case Write:
		return "w", styleWrite
	default:
		return "?", styleActive
	}
}

// BankAnnotator tracks the active/precharged flag of every bank in a
// channel (sized ranks x chips x banks; chip dimension is folded into
// the caller's own Rank numbering since neither DDR5 nor HBM2e decoders
// expose a separate chip index to the annotator layer).
//
// active[b] is true iff the most recent Activate, Precharge,
// PrechargeAll or auto-precharge access touching b was an Activate;
// plain reads, writes and refreshes leave it unchanged.
type BankAnnotator struct {
	ranks, banksPerRank int
	active              []bool
	overlay             []bool
	overlayAction       []Action
}

// NewBankAnnotator builds an annotator for a channel of the given
// dimensions, starting with every bank precharged (inactive).
func NewBankAnnotator(ranks, banksPerRank int) *BankAnnotator {
	total := ranks * banksPerRank
	return &BankAnnotator{
		ranks:         ranks,
		banksPerRank:  banksPerRank,
		active:        make([]bool, total),
		overlay:       make([]bool, total),
		overlayAction: make([]Action, total),
	}
}

func (a *BankAnnotator) index(rank, bank int) int { return rank*a.banksPerRank + bank }

func (a *BankAnnotator) clearOverlay() {
	for i := range a.overlay {
		a.overlay[i] = false
	}
}

func (a *BankAnnotator) paint(idx int, action Action) {
	a.overlay[idx] = true
	a.overlayAction[idx] = action
}

// Update applies one transaction's bank-level effect.
func (a *BankAnnotator) Update(ev Event) {
	a.clearOverlay()
	idx := a.index(ev.Rank, ev.Bank)

	switch ev.Action {
	case Activate:
		a.active[idx] = true
		a.paint(idx, Activate)
	case Precharge:
		a.active[idx] = false
		a.paint(idx, Precharge)
	case PrechargeAll:
		for b := 0; b < a.banksPerRank; b++ {
			i := a.index(ev.Rank, b)
			a.active[i] = false
			a.paint(i, PrechargeAll)
		}
	case Refresh:
		a.paint(idx, Refresh)
	case RefreshAll:
		for b := 0; b < a.banksPerRank; b++ {
			a.paint(a.index(ev.Rank, b), RefreshAll)
		}
	case Read:
		a.paint(idx, Read)
		if ev.AutoPrecharge {
			a.active[idx] = false
		}
	case Write:
		a.paint(idx, Write)
		if ev.AutoPrecharge {
			a.active[idx] = false
		}
	}
}

// Render produces one glyph per bank: the colored action glyph for any
// bank the last Update touched, otherwise a plain active/inactive
// glyph.
func (a *BankAnnotator) Render() string {
	out := make([]byte, 0, len(a.active)*2)
	for i := range a.active {
		var cell string
		if a.overlay[i] {
			glyph, style := glyphFor(a.overlayAction[i])
			cell = style.Render(glyph)
		} else if a.active[i] {
			cell = styleActive.Render("#")
		} else {
			cell = styleInactive.Render(".")
		}
		out = append(out, cell...)
	}
	return string(out)
}

// Active reports whether the given bank currently holds an open page.
func (a *BankAnnotator) Active(rank, bank int) bool {
	return a.active[a.index(rank, bank)]
}
