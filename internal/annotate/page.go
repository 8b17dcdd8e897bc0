package annotate

import "github.com/charmbracelet/lipgloss"

// PageStatus is a single column's status within a bank's page-status
// row.
type PageStatus int

const (
	Inactive PageStatus = iota
	Unused
	ReadStatus
	Written
)

var (
	stylePageUnused  = lipgloss.NewStyle().Faint(true)
	stylePageRead    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stylePageWritten = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// PageAnnotator tracks, for every bank, a row of per-column status
// values. WRITTEN dominates a later READ to the same column (spec
// section 4.8 and property 10); a precharge applies a reset overlay and
// clears the row back to INACTIVE, an activate clears it to UNUSED.
type PageAnnotator struct {
	ranks, banksPerRank, columns int
	rows                         [][]PageStatus
	lastTouched                  int
	lastAction                   Action
	lastHasTouch                 bool
}

// NewPageAnnotator builds a page annotator for a channel with the given
// dimensions and per-bank column count.
func NewPageAnnotator(ranks, banksPerRank, columns int) *PageAnnotator {
	total := ranks * banksPerRank
	rows := make([][]PageStatus, total)
	for i := range rows {
		rows[i] = make([]PageStatus, columns)
	}
	return &PageAnnotator{ranks: ranks, banksPerRank: banksPerRank, columns: columns, rows: rows}
}

func (a *PageAnnotator) index(rank, bank int) int { return rank*a.banksPerRank + bank }

func (a *PageAnnotator) resetRow(idx int, to PageStatus) {
	row := a.rows[idx]
	for i := range row {
		row[i] = to
	}
}

// Update applies one transaction's page-level effect.
func (a *PageAnnotator) Update(ev Event) {
	a.lastHasTouch = true
	a.lastAction = ev.Action
	idx := a.index(ev.Rank, ev.Bank)
	a.lastTouched = idx

	switch ev.Action {
	case Activate:
		a.resetRow(idx, Unused)
	case Precharge:
		a.resetRow(idx, Inactive)
	case PrechargeAll:
		for b := 0; b < a.banksPerRank; b++ {
			a.resetRow(a.index(ev.Rank, b), Inactive)
		}
	case Write:
		a.rows[idx][ev.Column] = Written
		if ev.AutoPrecharge {
			a.resetRow(idx, Inactive)
		}
	case Read:
		if a.rows[idx][ev.Column] != Written {
			a.rows[idx][ev.Column] = ReadStatus
		}
		if ev.AutoPrecharge {
			a.resetRow(idx, Inactive)
		}
	}
}

// dominant summarizes a bank's row to the single glyph the side panel
// has room for: WRITTEN beats READ beats UNUSED beats INACTIVE.
func dominant(row []PageStatus) PageStatus {
	best := Inactive
	for _, s := range row {
		if s > best {
			best = s
		}
	}
	return best
}

// Render summarizes every bank's row to one glyph, overprinting the
// bank touched by the last Update (every bank of the rank for
// PrechargeAll) with its precharge/activate action color the same way
// BankAnnotator does.
func (a *PageAnnotator) Render() string {
	out := make([]byte, 0, len(a.rows)*2)
	for i, row := range a.rows {
		var cell string
		switch {
		case a.lastHasTouch && a.lastAction == PrechargeAll && i/a.banksPerRank == a.lastTouched/a.banksPerRank:
			glyph, style := glyphFor(a.lastAction)
			cell = style.Render(glyph)
		case a.lastHasTouch && i == a.lastTouched && (a.lastAction == Precharge || a.lastAction == Activate):
			glyph, style := glyphFor(a.lastAction)
			cell = style.Render(glyph)
		default:
			switch dominant(row) {
			case Written:
				cell = stylePageWritten.Render("W")
			case ReadStatus:
				cell = stylePageRead.Render("R")
			case Unused:
				cell = stylePageUnused.Render("U")
			default:
				cell = styleInactive.Render(".")
			}
		}
		out = append(out, cell...)
	}
	return string(out)
}

// Status returns the current status of one bank/column for tests and
// for callers that want the raw state instead of the rendered summary.
func (a *PageAnnotator) Status(rank, bank, column int) PageStatus {
	return a.rows[a.index(rank, bank)][column]
}
