package annotate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcdwatch/vcdwatch/internal/annotate"
)

// Concrete scenario: bank annotator sequence.
func TestBankAnnotator_ActivateReadPrecharge(t *testing.T) {
	a := annotate.NewBankAnnotator(1, 8)

	a.Update(annotate.Event{Action: annotate.Activate, Bank: 3})
	assert.True(t, a.Active(0, 3))

	a.Update(annotate.Event{Action: annotate.Read, Bank: 3})
	assert.True(t, a.Active(0, 3), "a plain read must not close the page")

	a.Update(annotate.Event{Action: annotate.Precharge, Bank: 3})
	assert.False(t, a.Active(0, 3))

	for b := 0; b < 8; b++ {
		if b == 3 {
			continue
		}
		assert.False(t, a.Active(0, b))
	}
}

func TestBankAnnotator_AutoPrechargeClosesPage(t *testing.T) {
	a := annotate.NewBankAnnotator(1, 4)
	a.Update(annotate.Event{Action: annotate.Activate, Bank: 1})
	assert.True(t, a.Active(0, 1))

	a.Update(annotate.Event{Action: annotate.Write, Bank: 1, AutoPrecharge: true})
	assert.False(t, a.Active(0, 1))
}

func TestBankAnnotator_PrechargeAllClearsRank(t *testing.T) {
	a := annotate.NewBankAnnotator(2, 4)
	a.Update(annotate.Event{Action: annotate.Activate, Rank: 0, Bank: 0})
	a.Update(annotate.Event{Action: annotate.Activate, Rank: 0, Bank: 2})
	a.Update(annotate.Event{Action: annotate.Activate, Rank: 1, Bank: 0})

	a.Update(annotate.Event{Action: annotate.PrechargeAll, Rank: 0})

	assert.False(t, a.Active(0, 0))
	assert.False(t, a.Active(0, 2))
	assert.True(t, a.Active(1, 0), "precharge-all must only clear the targeted rank")
}

func TestBankAnnotator_RefreshAllDoesNotChangeActiveFlags(t *testing.T) {
	a := annotate.NewBankAnnotator(1, 4)
	a.Update(annotate.Event{Action: annotate.Activate, Bank: 2})

	a.Update(annotate.Event{Action: annotate.RefreshAll})

	assert.True(t, a.Active(0, 2))
	assert.False(t, a.Active(0, 0))
}
