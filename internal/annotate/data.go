package annotate

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
)

var (
	styleDataZero  = lipgloss.NewStyle().Faint(true)
	styleDataDigit = lipgloss.NewStyle()
)

// DataAnnotator renders a burst's contents as space-separated 32-bit
// hex words, split MSB-first, with a faint overlay on '0' digits.
// Non-data commands render as spaces of the same width so the side
// panel stays column-aligned.
type DataAnnotator struct {
	maxWords int
}

// NewDataAnnotator sizes the annotator for a burst of up to maxBits
// bits, rounded up to a whole number of 32-bit words.
func NewDataAnnotator(maxBits int) *DataAnnotator {
	words := (maxBits + 31) / 32
	if words == 0 {
		words = 1
	}
	return &DataAnnotator{maxWords: words}
}

func (a *DataAnnotator) wordWidth() int {
	// 8 hex digits per 32-bit word plus one separating space.
	return 9
}

// Render returns the colorized hex rendering of data, or a blank field
// of the same width when data carries no bits (a non-data command).
func (a *DataAnnotator) Render(data bitval.Bits) string {
	if data.Width() == 0 {
		return strings.Repeat(" ", a.maxWords*a.wordWidth())
	}

	var sb strings.Builder
	width := data.Width()
	for hi := width; hi > 0; hi -= 32 {
		lo := hi - 32
		if lo < 0 {
			lo = 0
		}
		word := data.Slice(lo, hi)
		sb.WriteString(renderHexFaintZero(word.ToHex()))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// renderHexFaintZero styles each '0' digit of hex faint and every other
// digit at normal intensity.
func renderHexFaintZero(hex string) string {
	var sb strings.Builder
	for _, r := range hex {
		if r == '0' {
			sb.WriteString(styleDataZero.Render("0"))
		} else {
			sb.WriteString(styleDataDigit.Render(string(r)))
		}
	}
	return sb.String()
}
