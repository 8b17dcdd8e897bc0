// Package format renders a decoded transaction as a single colorized
// command line: a timestamp block, an optional context token, a
// mnemonic, and a parameter list of KEY VALUE pairs padded to a
// configured width, using manual fixed-width column padding since the
// exact configurable key/value widths required here rule out
// text/tabwriter's automatic sizing.
package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Class is a command's color class, selecting its ANSI SGR styling.
type Class int

const (
	ClassRead Class = iota
	ClassWrite
	ClassActivate
	ClassPrecharge
	ClassRefresh
	ClassModeRegister
	ClassPower
	ClassError
	ClassPlain
)

var classStyle = map[Class]lipgloss.Style{
	ClassRead:         lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
	ClassWrite:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	ClassActivate:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	ClassPrecharge:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	ClassRefresh:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	ClassModeRegister: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	ClassPower:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Background(lipgloss.Color("0")),
	ClassError:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Background(lipgloss.Color("0")).Blink(true),
	ClassPlain:        lipgloss.NewStyle(),
}

// Param is one KEY VALUE pair in the parameter list, in emission order
// (Go maps have no stable order, so packet_string's dict iteration
// becomes an explicit slice here).
type Param struct {
	Key   string
	Value string
}

// Widths configures the fixed column widths a Line is padded to.
type Widths struct {
	Timestamp int
	Context   int
	Command   int
	Value     int
	Line      int
}

// DefaultWidths mirrors packet_string's own defaults.
var DefaultWidths = Widths{Command: 5, Value: 2, Line: 50}

// Line renders one command line. color selects the SGR class applied
// to the context/command/parameter run; timestamp and command are
// always present, context is only rendered when non-empty.
func Line(timestamp uint64, context, command string, params []Param, color Class, w Widths) string {
	style := classStyle[color]
	var plain strings.Builder
	var out strings.Builder

	ts := fmt.Sprintf("[ %*d ]", w.Timestamp, timestamp)
	out.WriteString(lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")).Bold(true).Render(ts))
	plain.WriteString(ts)

	if context != "" {
		padded := " " + padRight(context, w.Context)
		out.WriteString(style.Render(padded))
		plain.WriteString(padded)
	}

	cmd := " " + padRight(command, w.Command) + " "
	out.WriteString(style.Bold(true).Render(cmd))
	plain.WriteString(cmd)

	for _, p := range params {
		kv := p.Key + padRight(p.Value, w.Value) + " "
		out.WriteString(style.Render(kv))
		plain.WriteString(kv)
	}

	if pad := w.Line - plain.Len(); pad > 0 {
		out.WriteString(strings.Repeat(" ", pad))
	}

	return out.String()
}

// padRight right-pads s to width with spaces, leaving it unchanged if
// it already meets or exceeds width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
