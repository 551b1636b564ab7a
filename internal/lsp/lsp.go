// Package lsp exposes the engine's LSP-shaped entry points
// (GenerateAutoExpandTextEdits / GenerateAutoExpandCodeActions) and the
// wire-shaped DTOs they return (spec §6).
package lsp

import (
	"sort"
	"unicode/utf16"

	"github.com/qshan/verible-autoexpand-ls/internal/expander"
	"github.com/qshan/verible-autoexpand-ls/internal/locator"
	"github.com/qshan/verible-autoexpand-ls/internal/modindex"
	"github.com/qshan/verible-autoexpand-ls/internal/template"
	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

// Position is zero-based, UTF-16-code-unit-aligned, per LSP.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span of Positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextEdit is the wire-shaped replacement the engine emits.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit mirrors LSP's edit.changes: one URI to its list of edits.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// CodeAction is the wire-shaped action the engine exposes for range-limited
// expansion (spec §4.6).
type CodeAction struct {
	Title string        `json:"title"`
	Kind  string        `json:"kind"`
	Edit  WorkspaceEdit `json:"edit"`
}

// ExpandAllTitle is the single always-available code action title (spec §4.6).
const ExpandAllTitle = "Expand all AUTOs in selected range"

// RefactorRewriteKind is the LSP code action kind used for AUTO expansion.
const RefactorRewriteKind = "refactor.rewrite"

// SymbolTable is re-exported for callers that only need the LSP surface.
type SymbolTable = modindex.SymbolTable

// Tracker is the buffer-tracker collaborator (spec §6): yields the current
// document's URI and text; callers scan the text themselves.
type Tracker interface {
	CurrentURI() string
	CurrentText() []byte
}

// LineIndex maps byte offsets to zero-based, UTF-16-code-unit-aligned
// line/character positions.
type LineIndex struct {
	src         []byte
	lineOffsets []int // byte offset of the first byte of each line
}

// NewLineIndex builds a LineIndex over src.
func NewLineIndex(src []byte) *LineIndex {
	li := &LineIndex{src: src, lineOffsets: []int{0}}
	for i, b := range src {
		if b == '\n' {
			li.lineOffsets = append(li.lineOffsets, i+1)
		}
	}
	return li
}

// Position converts a byte offset to a Position.
func (li *LineIndex) Position(offset int) Position {
	line := sort.Search(len(li.lineOffsets), func(i int) bool {
		return li.lineOffsets[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	lineStart := li.lineOffsets[line]
	char := len(utf16.Encode([]rune(string(li.src[lineStart:offset]))))
	return Position{Line: line, Character: char}
}

// Range converts a byte [start,end) span to an LSP Range.
func (li *LineIndex) Range(start, end int) Range {
	return Range{Start: li.Position(start), End: li.Position(end)}
}

// convert turns engine-internal edits into wire-shaped TextEdits, sorted by
// end position descending (spec §4.4 "callers sort by end position
// descending before applying").
func convert(li *LineIndex, edits []expander.TextEdit) []TextEdit {
	out := make([]TextEdit, len(edits))
	for i, e := range edits {
		out[i] = TextEdit{Range: li.Range(e.Start, e.End), NewText: e.NewText}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.End.Line != out[j].Range.End.Line {
			return out[i].Range.End.Line > out[j].Range.End.Line
		}
		return out[i].Range.End.Character > out[j].Range.End.Character
	})
	return out
}

// GenerateAutoExpandTextEdits expands every accepted AUTOARG/AUTOINST
// directive in the current buffer (spec §6).
func GenerateAutoExpandTextEdits(symtab SymbolTable, tracker Tracker) []TextEdit {
	src := tracker.CurrentText()
	f := verilog.Parse(src)
	sites := locator.Locate(f)
	reg := template.Build(f)
	edits := expander.Expand(sites, symtab, reg)
	return convert(NewLineIndex(src), edits)
}

// CodeActionParams mirrors the LSP request shape for a range-limited
// expansion request.
type CodeActionParams struct {
	URI   string
	Range Range
}

// GenerateAutoExpandCodeActions returns the range-limited form: only edits
// whose replacement region intersects params.Range are returned, wrapped in
// the single "Expand all AUTOs in selected range" action (spec §4.6).
func GenerateAutoExpandCodeActions(symtab SymbolTable, tracker Tracker, params CodeActionParams) []CodeAction {
	src := tracker.CurrentText()
	f := verilog.Parse(src)
	sites := locator.Locate(f)
	reg := template.Build(f)
	edits := expander.Expand(sites, symtab, reg)
	li := NewLineIndex(src)

	var inRange []expander.TextEdit
	for _, e := range edits {
		r := li.Range(e.Start, e.End)
		if rangesIntersect(r, params.Range) {
			inRange = append(inRange, e)
		}
	}
	if len(inRange) == 0 {
		return nil
	}
	uri := params.URI
	if uri == "" {
		uri = tracker.CurrentURI()
	}
	return []CodeAction{{
		Title: ExpandAllTitle,
		Kind:  RefactorRewriteKind,
		Edit: WorkspaceEdit{Changes: map[string][]TextEdit{
			uri: convert(li, inRange),
		}},
	}}
}

func posLess(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// rangesIntersect reports whether a and b share at least one position.
// Code-action range requests commonly set only Line (spec seed scenario 6),
// leaving Character at its zero value, which this comparison handles
// correctly since it is a legitimate position.
func rangesIntersect(a, b Range) bool {
	return !posLess(a.End, b.Start) && !posLess(b.End, a.Start)
}
