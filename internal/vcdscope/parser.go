package vcdscope

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a VCD file and builds its scope tree. It supports the
// subset of the format this repository's decoders actually need:
// $scope/$upscope nesting, $var declarations (including vector ranges),
// $enddefinitions, and the value-change section (#<time>, scalar
// changes, and b/B/r/R vector and real changes).
func Parse(r io.Reader) (*Scope, error) {
	p := &parser{
		sc:       bufio.NewScanner(r),
		byID:     make(map[string]*Signal),
		signals:  make(map[string]*Signal),
		scopeTop: []string{},
	}
	p.sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	p.sc.Split(bufio.ScanWords)
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Scope{signals: p.signals}, nil
}

type parser struct {
	sc  *bufio.Scanner
	tok string

	scopeTop []string
	byID     map[string]*Signal
	signals  map[string]*Signal

	timestamp uint64
}

func (p *parser) next() bool {
	if !p.sc.Scan() {
		return false
	}
	p.tok = p.sc.Text()
	return true
}

func (p *parser) skipToEnd() {
	for p.next() {
		if p.tok == "$end" {
			return
		}
	}
}

func (p *parser) run() error {
	for p.next() {
		switch {
		case p.tok == "$scope":
			if err := p.handleScope(); err != nil {
				return err
			}
		case p.tok == "$upscope":
			if len(p.scopeTop) > 0 {
				p.scopeTop = p.scopeTop[:len(p.scopeTop)-1]
			}
			p.skipToEnd()
		case p.tok == "$var":
			if err := p.handleVar(); err != nil {
				return err
			}
		case strings.HasPrefix(p.tok, "$") && p.tok != "$dumpvars" && p.tok != "$dumpall" && p.tok != "$dumpon" && p.tok != "$dumpoff" && p.tok != "$end":
			p.skipToEnd()
		case strings.HasPrefix(p.tok, "#"):
			ts, err := strconv.ParseUint(p.tok[1:], 10, 64)
			if err != nil {
				return fmt.Errorf("vcdscope: bad timestamp %q: %w", p.tok, err)
			}
			p.timestamp = ts
		case p.tok == "$dumpvars", p.tok == "$dumpall", p.tok == "$dumpoff", p.tok == "$dumpon", p.tok == "$end":
			// section markers around the initial value dump; no-op
		default:
			p.handleValueChange()
		}
	}
	return nil
}

// handleScope consumes: $scope <type> <name> $end
func (p *parser) handleScope() error {
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $scope")
	}
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $scope")
	}
	name := p.tok
	p.scopeTop = append(p.scopeTop, name)
	p.skipToEnd()
	return nil
}

// handleVar consumes: $var <type> <size> <id> <name> [<bit-range>] $end
func (p *parser) handleVar() error {
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $var")
	}
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $var")
	}
	width, err := strconv.Atoi(p.tok)
	if err != nil {
		return fmt.Errorf("vcdscope: bad $var size %q: %w", p.tok, err)
	}
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $var")
	}
	id := p.tok
	if !p.next() {
		return fmt.Errorf("vcdscope: truncated $var")
	}
	name := p.tok

	sig := &Signal{width: width}
	path := strings.Join(append(append([]string{}, p.scopeTop...), name), ".")
	p.signals[path] = sig
	// Multiple names (aliases/bit-slices of the same id) can share an
	// id code; the first one wins for lookup, all receive the samples.
	if existing, ok := p.byID[id]; ok {
		p.signals[path] = existing
	} else {
		p.byID[id] = sig
	}

	p.skipToEnd()
	return nil
}

func (p *parser) handleValueChange() {
	var id, token string
	switch p.tok[0] {
	case 'b', 'B', 'r', 'R':
		token = p.tok
		if !p.next() {
			return
		}
		id = p.tok
	default:
		token = p.tok[:1]
		id = p.tok[1:]
	}
	sig, ok := p.byID[id]
	if !ok {
		return
	}
	sig.transitions = append(sig.transitions, RawSample{Timestamp: p.timestamp, Token: token})
}
