package wave

import "github.com/vcdwatch/vcdwatch/internal/bitval"

// Handshake advances clock, valid and ready to the timestamp of the next
// clock cycle at which valid and ready are both asserted, starting from
// ready's current position:
//
//  1. Re-anchor clock to ready's current timestamp.
//  2. Advance clock to its next rising edge.
//  3. Sample valid at that timestamp; if already asserted use it as-is,
//     otherwise advance valid to its next rising edge.
//  4. Sample ready at the valid timestamp; if already asserted that is
//     the handshake timestamp, otherwise advance ready to its next
//     rising edge from the valid timestamp.
//  5. Re-align to the clock rising edge at or after the handshake
//     timestamp found in step 4; that is the returned timestamp.
//
// All three cursors are left positioned at the samples that produced the
// result, enabling a side-effecting walk across calls. Back-to-back
// transfers keep valid asserted with no intermediate edge, which is why
// steps 3 and 4 check the sampled value before falling back to a
// forward edge search. Because ready can stay asserted across many
// beats without its own position ever moving, step 1 only re-anchors
// from ready's timestamp when that's actually ahead of where the clock
// already is; otherwise it simply continues the clock cursor forward so
// repeated calls make progress instead of re-finding the same edge.
func Handshake(clock, valid, ready *Cursor) (uint64, bool) {
	anchor := ready.current()

	// If the clock has already been advanced past ready's last consumed
	// position (back-to-back beats with ready held asserted never move
	// ready's own position forward), re-seeking from anchor would walk
	// the clock cursor backward and re-find the edge already consumed.
	// Continue forward from the clock's own position instead.
	var clockEdge Sample
	var ok bool
	if anchor > clock.current() {
		clockEdge, ok = clock.EdgeAt(anchor, Rising(), true)
	} else {
		clockEdge, ok = clock.NextEdge(Rising(), true)
	}
	if !ok {
		return 0, false
	}

	validTimestamp, ok := sampleThenAdvance(valid, clockEdge.Timestamp)
	if !ok {
		return 0, false
	}

	handshakeTimestamp, ok := sampleThenAdvance(ready, validTimestamp)
	if !ok {
		return 0, false
	}

	finalEdge, ok := clock.EdgeAt(handshakeTimestamp, Rising(), true)
	if !ok {
		return 0, false
	}
	return finalEdge.Timestamp, true
}

// sampleThenAdvance samples sig's held value at t; if it is already
// asserted (whether held since an earlier transition or not), that is
// the result, otherwise sig is advanced to its next rising edge and that
// timestamp is used instead.
func sampleThenAdvance(sig *Cursor, t uint64) (uint64, bool) {
	s, ok := sig.ValueAt(t, true)
	if ok && s.Value.Bit(0) == bitval.One {
		return t, true
	}
	edge, ok := sig.NextEdge(Rising(), true)
	if !ok {
		return 0, false
	}
	return edge.Timestamp, true
}

// current returns the timestamp of the sample the cursor currently sits
// on, without moving it. Used to re-anchor the clock to ready's position
// at the start of a handshake.
func (c *Cursor) current() uint64 {
	if len(c.samples) == 0 {
		return 0
	}
	idx := c.pos
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.samples) {
		idx = len(c.samples) - 1
	}
	return c.samples[idx].Timestamp
}
