// Package template implements the Template Registry: scanning AUTO_TEMPLATE
// comment blocks and exposing per-(instance site, target module) pin
// override lookups (spec §4.2).
package template

import (
	"strings"

	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

// Binding is one ".pin(connection)" override, connection kept verbatim.
type Binding struct {
	Pin        string
	Connection string
}

// Block is one AUTO_TEMPLATE comment, possibly naming several target
// modules that all share its binding group.
type Block struct {
	Targets    map[string]bool
	Regex      string // captured, never applied as a selector (spec §1, §9)
	Bindings   []Binding
	// LexPos is the byte offset of the comment itself, used to order blocks
	// lexically for override/lookup resolution.
	LexPos int
}

func (b *Block) binding(pin string) (string, bool) {
	for _, bd := range b.Bindings {
		if bd.Pin == pin {
			return bd.Connection, true
		}
	}
	return "", false
}

// Registry is the ordered sequence of Blocks as they appear lexically in
// the file.
type Registry struct {
	Blocks []Block
}

// Build scans f's template comments (already collected by internal/verilog)
// into a Registry. Malformed blocks (missing AUTO_TEMPLATE keyword after a
// name, unbalanced parens in the binding group) are skipped silently, per
// spec §7 "malformed template block".
func Build(f *verilog.File) *Registry {
	r := &Registry{}
	for _, c := range f.TemplateComments {
		if blk, ok := parseBlock(c); ok {
			r.Blocks = append(r.Blocks, blk)
		}
	}
	return r
}

// Lookup resolves bindings for an instance of targetModule sited at
// instanceSite (byte offset). It walks the registry in lexical order and
// keeps the last block whose position precedes instanceSite and whose
// targets include targetModule; later blocks override earlier ones as a
// whole (spec §4.2 "no per-pin merge").
func (r *Registry) Lookup(instanceSite int, targetModule string) map[string]string {
	var chosen *Block
	for i := range r.Blocks {
		b := &r.Blocks[i]
		if b.LexPos >= instanceSite {
			continue
		}
		if !b.Targets[targetModule] {
			continue
		}
		chosen = b
	}
	if chosen == nil {
		return nil
	}
	out := make(map[string]string, len(chosen.Bindings))
	for _, bd := range chosen.Bindings {
		out[bd.Pin] = bd.Connection
	}
	return out
}

// parseBlock implements the small finite automaton described in spec §9:
// expect_target_name -> expect_AUTO_TEMPLATE -> optional_regex ->
// (another target | bindings_open).
func parseBlock(c verilog.Token) (Block, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
	toks := verilog.Lex([]byte(inner))

	blk := Block{Targets: map[string]bool{}, LexPos: c.Start}
	i := 0
	next := func() verilog.Token {
		for i < len(toks) && (toks[i].Kind == verilog.LineComment) {
			i++
		}
		if i >= len(toks) {
			return verilog.Token{Kind: verilog.EOF}
		}
		t := toks[i]
		i++
		return t
	}
	peek := func() verilog.Token {
		save := i
		t := next()
		i = save
		return t
	}

	sawTarget := false
	for {
		t := peek()
		if t.Kind != verilog.Ident {
			break
		}
		name := next().Text
		kw := next()
		if kw.Kind != verilog.Ident || kw.Text != "AUTO_TEMPLATE" {
			return Block{}, false // malformed: missing AUTO_TEMPLATE keyword
		}
		blk.Targets[name] = true
		sawTarget = true
		if peek().Kind == verilog.Str {
			blk.Regex = next().Text
		}
		// either another "<Name> AUTO_TEMPLATE" header, or the bindings
		// group opens with '('.
		if peek().Kind == verilog.Punct && peek().Text == "(" {
			break
		}
	}
	if !sawTarget {
		return Block{}, false
	}
	if !(peek().Kind == verilog.Punct && peek().Text == "(") {
		return Block{}, false
	}
	next() // consume '('
	depth := 1
	for {
		t := peek()
		if t.Kind == verilog.EOF {
			return Block{}, false // unbalanced parens
		}
		if t.Kind == verilog.Punct && t.Text == "." {
			next()
			pinTok := next()
			if pinTok.Kind != verilog.Ident {
				return Block{}, false
			}
			openTok := next()
			if !(openTok.Kind == verilog.Punct && openTok.Text == "(") {
				return Block{}, false
			}
			exprStart := i
			exprDepth := 1
			for exprDepth > 0 {
				et := next()
				if et.Kind == verilog.EOF {
					return Block{}, false
				}
				if et.Kind == verilog.Punct && et.Text == "(" {
					exprDepth++
				} else if et.Kind == verilog.Punct && et.Text == ")" {
					exprDepth--
				}
			}
			conn := verbatimText(inner, toks[exprStart].Start, toks[i-1].Start)
			blk.Bindings = append(blk.Bindings, Binding{Pin: pinTok.Text, Connection: conn})
			continue
		}
		if t.Kind == verilog.Punct && t.Text == ")" {
			next()
			depth--
			if depth == 0 {
				break
			}
			continue
		}
		if t.Kind == verilog.Punct && t.Text == "," {
			next()
			continue
		}
		next()
	}
	return blk, true
}

// verbatimText returns src[start:end] with only surrounding whitespace
// removed.
func verbatimText(src string, start, end int) string {
	return strings.TrimSpace(src[start:end])
}
