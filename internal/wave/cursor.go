package wave

import (
	"sort"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
)

// Predicate decides whether a candidate sample counts as a matching edge.
type Predicate func(s Sample) bool

// Rising matches a single-bit signal whose value resolves to 1.
func Rising() Predicate {
	return func(s Sample) bool { return s.Value.Bit(0) == bitval.One }
}

// Falling matches a single-bit signal whose value resolves to 0.
func Falling() Predicate {
	return func(s Sample) bool { return s.Value.Bit(0) == bitval.Zero }
}

// Any matches every sample; used when only "the next transition,
// whatever it is" matters.
func Any() Predicate {
	return func(Sample) bool { return true }
}

// MaskedEquals matches a sample whose value compares equal, under
// EqualMasked, to pattern.
func MaskedEquals(pattern bitval.Bits) Predicate {
	return func(s Sample) bool { return s.Value.EqualMasked(pattern) }
}

// MaskedNotEquals is the negation of MaskedEquals.
func MaskedNotEquals(pattern bitval.Bits) Predicate {
	return func(s Sample) bool { return !s.Value.EqualMasked(pattern) }
}

// Cursor is a per-signal stateful walker: an ordered, strictly
// timestamp-increasing sample history plus a mutable read position.
//
// A Cursor is owned by exactly one decoder for the lifetime of a decode
// session; it is never shared between two concurrently-running decoders.
type Cursor struct {
	samples []Sample
	width   int
	pos     int
	done    bool
	bound   bool
}

// NewCursor wraps an ordered sample history for a signal of the given
// declared width.
func NewCursor(samples []Sample, width int) *Cursor {
	return &Cursor{samples: samples, width: width, bound: true}
}

// Unbound returns a cursor standing in for a signal that was not present
// in the waveform. Every read against it reports "no match" so that
// decoders transparently substitute a none-valued Bits per spec.
func Unbound(width int) *Cursor {
	return &Cursor{width: width, bound: false, done: true}
}

// Bound reports whether this cursor backs a real signal.
func (c *Cursor) Bound() bool { return c.bound }

// Width is the signal's declared bit width.
func (c *Cursor) Width() int { return c.width }

// Position is the current read index into the sample history.
func (c *Cursor) Position() int { return c.pos }

// Done reports whether the cursor has been advanced past the last
// sample.
func (c *Cursor) Done() bool { return c.done }

// ValueAt returns the sample whose timestamp is the greatest one that is
// <= t, found by binary search. If advance is set, the cursor's position
// moves to that sample.
func (c *Cursor) ValueAt(t uint64, advance bool) (Sample, bool) {
	if !c.bound || len(c.samples) == 0 {
		return Sample{}, false
	}
	idx := sort.Search(len(c.samples), func(i int) bool {
		return c.samples[i].Timestamp > t
	}) - 1
	if idx < 0 {
		return Sample{}, false
	}
	if advance {
		c.pos = idx
		c.done = false
	}
	return c.samples[idx], true
}

// NextEdge scans forward from the current position for the first sample
// matching pred. If advance is set, the cursor's position and done flag
// are updated; the search scans without side effects when advance is
// false, regardless of how far it had to look.
func (c *Cursor) NextEdge(pred Predicate, advance bool) (Sample, bool) {
	if !c.bound || c.done {
		return Sample{}, false
	}
	for i := c.pos + 1; i < len(c.samples); i++ {
		if pred(c.samples[i]) {
			if advance {
				c.pos = i
				c.done = false
			}
			return c.samples[i], true
		}
	}
	if advance {
		c.pos = len(c.samples)
		c.done = true
	}
	return Sample{}, false
}

// PrevEdge is the symmetric backward scan.
func (c *Cursor) PrevEdge(pred Predicate, advance bool) (Sample, bool) {
	if !c.bound {
		return Sample{}, false
	}
	for i := c.pos - 1; i >= 0; i-- {
		if pred(c.samples[i]) {
			if advance {
				c.pos = i
				c.done = false
			}
			return c.samples[i], true
		}
	}
	return Sample{}, false
}

// EdgeAt first positions to ValueAt(t); if that sample itself matches
// pred and sits exactly at t, it is returned directly, otherwise the
// search continues forward via NextEdge.
func (c *Cursor) EdgeAt(t uint64, pred Predicate, advance bool) (Sample, bool) {
	if !c.bound {
		return Sample{}, false
	}
	s, ok := c.ValueAt(t, advance)
	if ok && s.Timestamp == t && pred(s) {
		return s, true
	}
	return c.NextEdge(pred, advance)
}

// Snapshot/Restore let a caller run a speculative advance=true search and
// roll it back. Nothing in this repository calls them; Handshake
// advances its cursors directly.
type Snapshot struct {
	pos  int
	done bool
}

func (c *Cursor) Save() Snapshot          { return Snapshot{pos: c.pos, done: c.done} }
func (c *Cursor) Restore(s Snapshot)      { c.pos, c.done = s.pos, s.done }
