package pager_test

import (
	"iter"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcdwatch/vcdwatch/internal/pager"
)

func linesOf(s ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range s {
			if !yield(l) {
				return
			}
		}
	}
}

func TestPipe_WritesEveryLineToSubprocess(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	out, err := os.CreateTemp(t.TempDir(), "pager-out")
	require.NoError(t, err)
	defer out.Close()

	opts := pager.Options{Command: "cat", Stdout: out}
	err = pager.Pipe(opts, linesOf("first", "second", "third"))
	require.NoError(t, err)

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(data))
}

func TestPipe_UnknownCommandErrors(t *testing.T) {
	opts := pager.Options{Command: "this-command-does-not-exist-vcdwatch"}
	err := pager.Pipe(opts, linesOf("x"))
	assert.Error(t, err)
}
