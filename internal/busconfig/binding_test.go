package busconfig_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcdwatch/vcdwatch/internal/busconfig"
	"github.com/vcdwatch/vcdwatch/internal/vcdscope"
)

const miniVCD = `$scope module top $end
$scope module apb0 $end
$var wire 1 ! PSEL $end
$var wire 1 " PENABLE $end
$upscope $end
$upscope $end
$enddefinitions $end
#0
0!
0"
#10
1!
`

func TestBind_BaseAffixTemplate(t *testing.T) {
	scope, err := vcdscope.Parse(strings.NewReader(miniVCD))
	require.NoError(t, err)

	b := busconfig.Binding{Base: "top.apb0", Uppercase: true}
	cursors := busconfig.Bind(scope, b, []string{"psel", "penable", "pready"})

	require.True(t, cursors["psel"].Bound())
	require.True(t, cursors["penable"].Bound())
	assert.False(t, cursors["pready"].Bound(), "unbound signal should yield an Unbound cursor")
}

func TestBind_ExplicitOverridesTemplate(t *testing.T) {
	scope, err := vcdscope.Parse(strings.NewReader(miniVCD))
	require.NoError(t, err)

	b := busconfig.Binding{
		Base:     "top.apb0",
		Explicit: map[string]string{"psel": "top.apb0.PSEL"},
	}
	cursors := busconfig.Bind(scope, b, []string{"psel"})
	assert.True(t, cursors["psel"].Bound())
}
