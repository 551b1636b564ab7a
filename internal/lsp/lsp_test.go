package lsp

import (
	"testing"

	"github.com/qshan/verible-autoexpand-ls/internal/modindex"
	"github.com/qshan/verible-autoexpand-ls/internal/verilog"
)

type fakeTracker struct {
	uri  string
	text []byte
}

func (f *fakeTracker) CurrentURI() string  { return f.uri }
func (f *fakeTracker) CurrentText() []byte { return f.text }

func buildSymtab(src []byte) *modindex.ProjectIndex {
	idx := modindex.NewProjectIndex()
	idx.AddFile("mem://buf", verilog.Parse(src))
	return idx
}

func TestLineIndexPositionASCII(t *testing.T) {
	src := []byte("abc\ndef\nghi")
	li := NewLineIndex(src)
	pos := li.Position(5) // 'e' on line 1
	if pos.Line != 1 || pos.Character != 1 {
		t.Fatalf("got %+v, want line=1 character=1", pos)
	}
}

func TestLineIndexPositionUTF16Surrogates(t *testing.T) {
	// U+1F600 (😀) encodes as 2 UTF-16 code units but 4 UTF-8 bytes.
	src := []byte("a😀b")
	li := NewLineIndex(src)
	pos := li.Position(len("a😀")) // right after the emoji, before 'b'
	if pos.Character != 3 {
		t.Fatalf("expected character offset 3 (a=1 + surrogate pair=2), got %d", pos.Character)
	}
}

func TestGenerateAutoExpandTextEditsSortedDescendingByEndPosition(t *testing.T) {
	src := []byte(`module sub(clk, dout);
  input clk;
  output dout;
endmodule

module top;
  sub u_a(/*AUTOINST*/);
  sub u_b(/*AUTOINST*/);
endmodule`)
	symtab := buildSymtab(src)
	edits := GenerateAutoExpandTextEdits(symtab, &fakeTracker{uri: "mem://buf", text: src})
	if len(edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(edits))
	}
	if posLess(edits[0].Range.End, edits[1].Range.End) {
		t.Fatalf("expected edits sorted by descending end position, got %+v then %+v",
			edits[0].Range.End, edits[1].Range.End)
	}
}

func TestGenerateAutoExpandCodeActionsFiltersByRange(t *testing.T) {
	src := []byte(`module sub(clk, dout);
  input clk;
  output dout;
endmodule

module top;
  sub u_a(/*AUTOINST*/);
  sub u_b(/*AUTOINST*/);
endmodule`)
	symtab := buildSymtab(src)
	tracker := &fakeTracker{uri: "mem://buf", text: src}

	allEdits := GenerateAutoExpandTextEdits(symtab, tracker)
	if len(allEdits) != 2 {
		t.Fatalf("expected 2 edits total, got %d", len(allEdits))
	}

	// Select exactly the earlier edit's own range (allEdits is sorted
	// descending by end position, so [1] is the earlier one, u_a's).
	selected := allEdits[1].Range
	actions := GenerateAutoExpandCodeActions(symtab, tracker, CodeActionParams{Range: selected})
	if len(actions) != 1 {
		t.Fatalf("expected exactly 1 code action, got %d", len(actions))
	}
	if actions[0].Title != ExpandAllTitle {
		t.Fatalf("unexpected title %q", actions[0].Title)
	}
	if len(actions[0].Edit.Changes["mem://buf"]) != 1 {
		t.Fatalf("expected the range-limited action to carry only 1 edit, got %d", len(actions[0].Edit.Changes["mem://buf"]))
	}
}

func TestGenerateAutoExpandCodeActionsEmptyWhenNoOverlap(t *testing.T) {
	src := []byte(`module sub(clk, dout);
  input clk;
  output dout;
endmodule

module top;
  sub u_a(/*AUTOINST*/);
endmodule`)
	symtab := buildSymtab(src)
	tracker := &fakeTracker{uri: "mem://buf", text: src}
	actions := GenerateAutoExpandCodeActions(symtab, tracker, CodeActionParams{
		Range: Range{Start: Position{Line: 0}, End: Position{Line: 0}},
	})
	if actions != nil {
		t.Fatalf("expected nil actions when no edit overlaps the selected range, got %v", actions)
	}
}
