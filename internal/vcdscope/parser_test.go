package vcdscope_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcdwatch/vcdwatch/internal/vcdscope"
)

const sampleVCD = `$timescale 1ns $end
$scope module top $end
$scope module apb0 $end
$var wire 1 ! psel $end
$var wire 8 " paddr $end
$upscope $end
$upscope $end
$enddefinitions $end
$dumpvars
0!
b00000000 "
$end
#10
1!
#20
b00001111 "
#30
0!
`

func TestParse_BasicScopeAndTransitions(t *testing.T) {
	scope, err := vcdscope.Parse(strings.NewReader(sampleVCD))
	require.NoError(t, err)

	psel, ok := scope.Lookup("top.apb0.psel")
	require.True(t, ok)
	assert.Equal(t, 1, psel.Width())
	require.Len(t, psel.Transitions(), 3)
	assert.Equal(t, "0", psel.Transitions()[0].Token)
	assert.EqualValues(t, 10, psel.Transitions()[1].Timestamp)
	assert.Equal(t, "1", psel.Transitions()[1].Token)

	paddr, ok := scope.Lookup("top.apb0.paddr")
	require.True(t, ok)
	assert.Equal(t, 8, paddr.Width())
	require.Len(t, paddr.Transitions(), 2)
	assert.Equal(t, "b00001111", paddr.Transitions()[1].Token)

	_, ok = scope.Lookup("top.apb0.nonexistent")
	assert.False(t, ok)
}
