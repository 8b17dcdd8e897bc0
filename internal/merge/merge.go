// Package merge combines several decoded transaction streams into one
// timestamp-ordered stream using a container/heap k-way merge, plus a
// helper for pairing a merged stream with per-event annotators.
package merge

import (
	"container/heap"
	"iter"
)

// Streams merges any number of key-ordered iter.Seq[T] streams into one
// stream ordered by key, the way transactions are ordered across
// decoders: within a stream, key must be
// non-decreasing (each decoder already guarantees this for its own
// variant's chosen timestamp field); across streams no such guarantee
// is required, equal keys may interleave in either order.
func Streams[T any](key func(T) uint64, seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		h := make(sourceHeap[T], 0, len(seqs))
		for _, seq := range seqs {
			next, stop := iter.Pull(seq)
			defer stop()
			if v, ok := next(); ok {
				heap.Push(&h, &source[T]{val: v, key: key(v), next: next})
			}
		}
		heap.Init(&h)

		for h.Len() > 0 {
			s := h[0]
			if !yield(s.val) {
				return
			}
			if v, ok := s.next(); ok {
				s.val = v
				s.key = key(v)
				heap.Fix(&h, 0)
			} else {
				heap.Pop(&h)
			}
		}
	}
}

type source[T any] struct {
	val  T
	key  uint64
	next func() (T, bool)
}

type sourceHeap[T any] []*source[T]

func (h sourceHeap[T]) Len() int            { return len(h) }
func (h sourceHeap[T]) Less(i, j int) bool  { return h[i].key < h[j].key }
func (h sourceHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *sourceHeap[T]) Push(x interface{}) { *h = append(*h, x.(*source[T])) }
func (h *sourceHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Annotated is one merged line: the rendered transaction text plus the
// side panel produced by every annotator it was run through, mirroring
// packet_and_annotator_generator's repr(packet) + annotator reprs.
type Annotated struct {
	Line      string
	SidePanel string
}

// WithAnnotators threads a merged transaction stream through one update
// callback and two render callbacks, producing one Annotated line per
// transaction. update is called on each transaction before render and
// sidePanel, so the side panel reflects the state after that
// transaction.
func WithAnnotators[T any](
	seq iter.Seq[T],
	render func(T) string,
	update func(T),
	sidePanel func() string,
) iter.Seq[Annotated] {
	return func(yield func(Annotated) bool) {
		for txn := range seq {
			update(txn)
			line := Annotated{Line: render(txn), SidePanel: sidePanel()}
			if !yield(line) {
				return
			}
		}
	}
}
