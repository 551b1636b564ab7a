// Package locator implements the Directive Locator: finding accepted
// AUTOARG/AUTOINST sites in a scanned file and computing their replacement
// regions, preexisting bindings, and indentation base (spec §4.3).
package locator

import (
	"strings"

	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

// Kind distinguishes an AUTOARG site from an AUTOINST site.
type Kind int

const (
	AUTOARG Kind = iota
	AUTOINST
)

// Site is an accepted directive occurrence, ready for expansion.
type Site struct {
	Kind Kind

	// DirectiveStart/End bound the directive comment token itself.
	DirectiveStart, DirectiveEnd int

	// ReplacementRegion is [Start, End): everything from just after the
	// directive's closing "*/" to just before the closing ')' of the
	// enclosing port/connection list. All of it is discarded and
	// regenerated.
	RegionStart, RegionEnd int

	// Indent is the leading whitespace of the line containing the enclosing
	// module header or instance declaration's start; it is the
	// indentation base for generated text (see DESIGN.md for why this, not
	// the directive's own line, is used).
	Indent string

	OwningModule string
	// InstanceModule is set only for AUTOINST.
	InstanceModule string

	PreexistingBindings map[string]bool

	// Source is the enclosing file's full source, so the Expander can
	// compare a freshly generated region against what is already there and
	// skip emitting a no-op edit (spec §4.4/§7: "resolves to no change
	// contributes no edit" applies just as much to a second expansion pass
	// as to a missing module).
	Source []byte
}

// Locate walks f's scanned modules and instances, returning every accepted
// directive site. Directives found outside a module header's port list or
// an instance's connection list are never returned (spec §4.3 "otherwise
// the directive is ignored").
func Locate(f *verilog.File) []Site {
	var sites []Site
	for _, m := range f.Modules {
		if m.Header != nil && m.Header.DirectiveStart >= 0 {
			sites = append(sites, buildAutoargSite(f, m))
		}
		for _, inst := range m.Instances {
			if inst.DirectiveStart >= 0 {
				sites = append(sites, buildAutoinstSite(f, m, inst))
			}
		}
	}
	return sites
}

// indentOf returns the leading whitespace of the line whose first
// non-whitespace byte is at firstNonWS.
func indentOf(src []byte, firstNonWS int) string {
	lineBegin := firstNonWS
	for lineBegin > 0 && src[lineBegin-1] != '\n' {
		lineBegin--
	}
	return string(src[lineBegin:firstNonWS])
}

func buildAutoargSite(f *verilog.File, m verilog.Module) Site {
	hdr := m.Header
	prefix := f.Source[hdr.OpenParen+1 : hdr.DirectiveStart]
	bindings := parseIdentList(prefix)
	return Site{
		Kind:                AUTOARG,
		DirectiveStart:      hdr.DirectiveStart,
		DirectiveEnd:        hdr.DirectiveEnd,
		RegionStart:         hdr.DirectiveEnd,
		RegionEnd:           hdr.CloseParen,
		Indent:              indentOf(f.Source, m.LineStart),
		OwningModule:        m.Name,
		PreexistingBindings: bindings,
		Source:              f.Source,
	}
}

func buildAutoinstSite(f *verilog.File, m verilog.Module, inst verilog.Instance) Site {
	prefix := f.Source[inst.OpenParen+1 : inst.DirectiveStart]
	bindings := parseDotBindings(prefix)
	return Site{
		Kind:                AUTOINST,
		DirectiveStart:      inst.DirectiveStart,
		DirectiveEnd:        inst.DirectiveEnd,
		RegionStart:         inst.DirectiveEnd,
		RegionEnd:           inst.CloseParen,
		Indent:              indentOf(f.Source, inst.LineStart),
		OwningModule:        m.Name,
		InstanceModule:      inst.ModuleName,
		PreexistingBindings: bindings,
		Source:              f.Source,
	}
}

// parseIdentList extracts bare identifiers from text preceding an AUTOARG
// directive inside a module header (spec §4.3 "identifiers listed before
// the directive"), ignoring direction/type keywords and punctuation.
func parseIdentList(src []byte) map[string]bool {
	out := map[string]bool{}
	for _, t := range verilog.Lex(src) {
		if t.Kind != verilog.Ident {
			continue
		}
		if isDirectionOrType(t.Text) {
			continue
		}
		out[t.Text] = true
	}
	return out
}

func isDirectionOrType(s string) bool {
	switch s {
	case "input", "output", "inout", "logic", "reg", "wire", "signed", "unsigned":
		return true
	}
	return false
}

// parseDotBindings extracts pin names of ".name(...)" connections preceding
// an AUTOINST directive inside an instance's connection list (spec §4.3).
func parseDotBindings(src []byte) map[string]bool {
	out := map[string]bool{}
	toks := verilog.Lex(src)
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind == verilog.Punct && toks[i].Text == "." {
			if i+1 < len(toks) && toks[i+1].Kind == verilog.Ident {
				out[toks[i+1].Text] = true
			}
		}
	}
	return out
}

// TextAt returns the literal source text of a byte range, for diagnostics
// and tests.
func TextAt(f *verilog.File, start, end int) string {
	if start < 0 || end > len(f.Source) || start > end {
		return ""
	}
	return strings.TrimSpace(string(f.Source[start:end]))
}
