package verilog

import "testing"

func TestLexBasicTokens(t *testing.T) {
	src := []byte("module foo(a, b); // trailing\nendmodule")
	toks := Lex(src)

	var kinds []TokenKind
	for _, tok := range toks {
		if tok.Kind == EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []TokenKind{Ident, Ident, Punct, Ident, Punct, Ident, Punct, Punct, LineComment, Ident}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got kind %d, want %d", i, kinds[i], want[i])
		}
	}
}

func TestLexBlockComment(t *testing.T) {
	toks := Lex([]byte("/*AUTOARG*/"))
	if len(toks) != 2 || toks[0].Kind != BlockComment {
		t.Fatalf("expected a single block comment token, got %v", toks)
	}
	if toks[0].Text != "/*AUTOARG*/" {
		t.Fatalf("unexpected text %q", toks[0].Text)
	}
}

func TestLexUnterminatedBlockCommentConsumesToEOF(t *testing.T) {
	toks := Lex([]byte("/* never closes"))
	if len(toks) != 2 || toks[0].Kind != BlockComment {
		t.Fatalf("expected a single block comment token, got %v", toks)
	}
	if toks[0].End != len("/* never closes") {
		t.Fatalf("expected comment to extend to EOF, got End=%d", toks[0].End)
	}
}

func TestLexStringWithEscapedQuote(t *testing.T) {
	toks := Lex([]byte(`"a\"b"`))
	if len(toks) != 2 || toks[0].Kind != Str {
		t.Fatalf("expected a single string token, got %v", toks)
	}
}

func TestLexOffsetsAreByteAccurate(t *testing.T) {
	src := []byte("  clk")
	toks := Lex(src)
	if toks[0].Start != 2 || toks[0].End != 5 {
		t.Fatalf("expected ident at [2,5), got [%d,%d)", toks[0].Start, toks[0].End)
	}
}

func TestDirectiveName(t *testing.T) {
	cases := map[string]string{
		"/*AUTOARG*/":       "AUTOARG",
		"/* AUTOARG */":     "AUTOARG",
		"/*AUTOINST*/":      "AUTOINST",
		"/* something */":   "",
		"/*AUTO_TEMPLATE*/": "",
	}
	for in, want := range cases {
		if got := DirectiveName(in); got != want {
			t.Errorf("DirectiveName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsTemplateComment(t *testing.T) {
	if !IsTemplateComment("/* foo AUTO_TEMPLATE (.a(b)); */") {
		t.Errorf("expected AUTO_TEMPLATE comment to be recognized")
	}
	if IsTemplateComment("/*AUTOARG*/") {
		t.Errorf("expected AUTOARG comment not to be a template comment")
	}
}
