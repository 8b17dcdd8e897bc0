// Package busconfig resolves a per-bus signal-binding configuration
// into live signal cursors, loading that configuration from YAML.
package busconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/vcdscope"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

// Binding supplies either an explicit dotted path per canonical signal
// name, or a base path plus optional prefix/suffix/uppercase rule the
// binder composes as {base}.{prefix}{name}{suffix}.
type Binding struct {
	Explicit  map[string]string `yaml:"explicit,omitempty"`
	Base      string            `yaml:"base"`
	Prefix    string            `yaml:"prefix,omitempty"`
	Suffix    string            `yaml:"suffix,omitempty"`
	Uppercase bool              `yaml:"uppercase,omitempty"`
}

// LoadBindingFile parses a YAML signal-binding configuration from disk.
func LoadBindingFile(path string) (Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Binding{}, fmt.Errorf("busconfig: reading %s: %w", path, err)
	}
	var b Binding
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Binding{}, fmt.Errorf("busconfig: parsing %s: %w", path, err)
	}
	return b, nil
}

// pathFor composes the dotted VCD path for one canonical signal name.
func (b Binding) pathFor(canonical string) string {
	if b.Explicit != nil {
		if p, ok := b.Explicit[canonical]; ok {
			return p
		}
	}
	name := canonical
	if b.Uppercase {
		name = strings.ToUpper(name)
	} else {
		name = strings.ToLower(name)
	}
	return b.Base + "." + b.Prefix + name + b.Suffix
}

// Bind resolves every canonical signal name against scope using binding,
// returning a cursor per name. A name absent from the VCD resolves to an
// Unbound cursor rather than an error — decoders substitute a
// none-valued Bits when they read one.
func Bind(scope *vcdscope.Scope, binding Binding, canonicalNames []string) map[string]*wave.Cursor {
	out := make(map[string]*wave.Cursor, len(canonicalNames))
	for _, name := range canonicalNames {
		path := binding.pathFor(name)
		sig, ok := scope.Lookup(path)
		if !ok {
			out[name] = wave.Unbound(0)
			continue
		}
		samples := make([]wave.Sample, len(sig.Transitions()))
		for i, t := range sig.Transitions() {
			samples[i] = wave.Sample{
				Timestamp: t.Timestamp,
				Value:     bitval.FromToken(t.Token, sig.Width()),
			}
		}
		out[name] = wave.NewCursor(samples, sig.Width())
	}
	return out
}
