// Package expander implements the Expander: the orchestrator that, given a
// located directive site, the Module Index, and the Template Registry,
// computes generated port text after subtracting user-supplied bindings
// and emits a TextEdit (spec §4.4).
package expander

import (
	"strings"

	"github.com/qshan/verible-autoexpand-ls/internal/locator"
	"github.com/qshan/verible-autoexpand-ls/internal/modindex"
	"github.com/qshan/verible-autoexpand-ls/internal/port"
	"github.com/qshan/verible-autoexpand-ls/internal/template"
)

// TextEdit is a single replacement: Start/End bound the region to replace
// (byte offsets), NewText is the replacement.
type TextEdit struct {
	Start, End int
	NewText    string
}

// Expand computes the edits for every site located in sites, consulting
// symtab for module ports and reg for template overrides. Sites that
// resolve to no change (missing module, empty expansion) contribute no
// edit, per spec §4.4/§7.
func Expand(sites []locator.Site, symtab modindex.SymbolTable, reg *template.Registry) []TextEdit {
	var edits []TextEdit
	for _, s := range sites {
		switch s.Kind {
		case locator.AUTOARG:
			if e, ok := expandAutoarg(s, symtab); ok {
				edits = append(edits, e)
			}
		case locator.AUTOINST:
			if e, ok := expandAutoinst(s, symtab, reg); ok {
				edits = append(edits, e)
			}
		}
	}
	return edits
}

func expandAutoarg(s locator.Site, symtab modindex.SymbolTable) (TextEdit, bool) {
	mp, ok := symtab.LookupModule(s.OwningModule)
	if !ok {
		return TextEdit{}, false
	}
	itemIndent := s.Indent + "  "

	inputs := namesOf(mp.Inputs(), s.PreexistingBindings)
	inouts := namesOf(mp.Inouts(), s.PreexistingBindings)
	outputs := namesOf(mp.Outputs(), s.PreexistingBindings)

	var body strings.Builder
	wrote := false
	writeBucket := func(label string, names []string) {
		if len(names) == 0 {
			return
		}
		if wrote {
			body.WriteString(",\n")
		}
		body.WriteString(itemIndent + "// " + label + "\n")
		body.WriteString(itemIndent + strings.Join(names, ", "))
		wrote = true
	}
	writeBucket("Inputs", inputs)
	writeBucket("Inouts", inouts)
	writeBucket("Outputs", outputs)

	if !wrote {
		return TextEdit{}, false
	}
	newText := "\n" + body.String() + "\n" + itemIndent
	if unchanged(s, newText) {
		return TextEdit{}, false
	}
	return TextEdit{Start: s.RegionStart, End: s.RegionEnd, NewText: newText}, true
}

func expandAutoinst(s locator.Site, symtab modindex.SymbolTable, reg *template.Registry) (TextEdit, bool) {
	mp, ok := symtab.LookupModule(s.InstanceModule)
	if !ok {
		return TextEdit{}, false
	}
	bindings := reg.Lookup(s.DirectiveStart, s.InstanceModule)
	itemIndent := s.Indent + "  "

	connOf := func(p port.Port) string {
		if c, ok := bindings[p.Name]; ok {
			return c
		}
		return p.Name
	}
	conns := func(ports []port.Port) []string {
		var out []string
		for _, p := range ports {
			if s.PreexistingBindings[p.Name] {
				continue
			}
			out = append(out, "."+p.Name+"("+connOf(p)+")")
		}
		return out
	}

	groups := []struct {
		label string
		lines []string
	}{
		{"Inputs", conns(mp.Inputs())},
		{"Inouts", conns(mp.Inouts())},
		{"Outputs", conns(mp.Outputs())},
	}

	total := 0
	for _, g := range groups {
		total += len(g.lines)
	}
	if total == 0 {
		return TextEdit{}, false
	}

	var body strings.Builder
	first := true
	for _, g := range groups {
		if len(g.lines) == 0 {
			continue
		}
		if !first {
			body.WriteString(",\n")
		}
		body.WriteString(itemIndent + "// " + g.label + "\n")
		body.WriteString(itemIndent + strings.Join(g.lines, ",\n"+itemIndent))
		first = false
	}

	newText := "\n" + body.String()
	if unchanged(s, newText) {
		return TextEdit{}, false
	}
	return TextEdit{Start: s.RegionStart, End: s.RegionEnd, NewText: newText}, true
}

// unchanged reports whether newText is byte-identical to what already
// occupies s's replacement region, so a second expansion pass over an
// already-expanded buffer emits no edit at all rather than a no-op
// replacement (spec §4.4/§7's "resolves to no change" principle, and the
// idempotence invariant expanding a second time must satisfy).
func unchanged(s locator.Site, newText string) bool {
	if s.Source == nil {
		return false
	}
	if s.RegionStart < 0 || s.RegionEnd > len(s.Source) || s.RegionStart > s.RegionEnd {
		return false
	}
	return string(s.Source[s.RegionStart:s.RegionEnd]) == newText
}

func namesOf(ports []port.Port, preexisting map[string]bool) []string {
	var out []string
	for _, p := range ports {
		if preexisting[p.Name] {
			continue
		}
		out = append(out, p.Name)
	}
	return out
}
