package merge_test

import (
	"iter"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcdwatch/vcdwatch/internal/merge"
)

type stamped struct {
	Timestamp uint64
	Tag       string
}

func seqOf(items ...stamped) iter.Seq[stamped] {
	return func(yield func(stamped) bool) {
		for _, it := range items {
			if !yield(it) {
				return
			}
		}
	}
}

func TestStreams_MergesByTimestamp(t *testing.T) {
	a := seqOf(stamped{10, "a0"}, stamped{30, "a1"}, stamped{50, "a2"})
	b := seqOf(stamped{20, "b0"}, stamped{40, "b1"})

	var got []string
	for s := range merge.Streams(func(s stamped) uint64 { return s.Timestamp }, a, b) {
		got = append(got, s.Tag)
	}

	assert.Equal(t, []string{"a0", "b0", "a1", "b1", "a2"}, got)
}

func TestStreams_EmptyStreamIsSkipped(t *testing.T) {
	a := seqOf(stamped{5, "only"})
	empty := seqOf()

	var got []string
	for s := range merge.Streams(func(s stamped) uint64 { return s.Timestamp }, a, empty) {
		got = append(got, s.Tag)
	}

	assert.Equal(t, []string{"only"}, got)
}

func TestStreams_StopsOnEarlyBreak(t *testing.T) {
	a := seqOf(stamped{1, "a0"}, stamped{2, "a1"}, stamped{3, "a2"})

	var got []string
	for s := range merge.Streams(func(s stamped) uint64 { return s.Timestamp }, a) {
		got = append(got, s.Tag)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a0", "a1"}, got)
}

func TestWithAnnotators_UpdatesBeforeRendering(t *testing.T) {
	a := seqOf(stamped{1, "x"}, stamped{2, "y"})
	var total int

	lines := merge.WithAnnotators(a,
		func(s stamped) string { return s.Tag },
		func(s stamped) { total++ },
		func() string { return strconv.Itoa(total) },
	)

	var rendered []string
	for l := range lines {
		rendered = append(rendered, l.Line+":"+l.SidePanel)
	}

	assert.Equal(t, []string{"x:1", "y:2"}, rendered)
	assert.Equal(t, 2, total)
}
