// Package vcdscope is a minimal VCD file parser: it yields a scope tree
// with per-signal transition lists. It implements just the two
// operations the rest of the system depends on — look up a leaf by
// dotted path, and fetch its declared width and ordered transitions —
// and nothing else. How a VCD file is tokenized is deliberately not a
// concern any decoder, cursor, or annotator package imports.
package vcdscope

// RawSample is one (timestamp, raw VCD token) pair exactly as recorded
// in the dump, before any 4-valued bit interpretation.
type RawSample struct {
	Timestamp uint64
	Token     string
}

// Signal is a VCD leaf: a declared bit width and its ordered value-change
// history.
type Signal struct {
	width       int
	transitions []RawSample
}

// Width is the signal's declared bit width, the size given in its $var
// declaration (also for a VCD "real" signal).
func (s *Signal) Width() int { return s.width }

// Transitions returns the signal's recorded value changes in timestamp
// order.
func (s *Signal) Transitions() []RawSample { return s.transitions }

// Scope is a fully parsed VCD file: every declared signal, indexed by
// its dotted scope path (e.g. "top.apb0.paddr").
type Scope struct {
	signals map[string]*Signal
}

// Lookup finds a leaf by its dotted scope path. It returns false if no
// such signal was declared in the dump — the caller (busconfig) treats
// that as an unbound signal, not an error.
func (s *Scope) Lookup(path string) (*Signal, bool) {
	sig, ok := s.signals[path]
	return sig, ok
}
