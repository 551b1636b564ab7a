package verilog

import "github.com/qshan/verible-autoexpand-ls/internal/port"

// PortDecl is a single port name observed while scanning a header port list
// or a body input/inout/output statement.
type PortDecl struct {
	Name      string
	Direction port.Direction
	Start     int // byte offset of the identifier
}

// HeaderPortList is the parenthesized port list following a module name
// (and an optional #(...) parameter list, which is skipped).
type HeaderPortList struct {
	OpenParen  int // offset of '('
	CloseParen int // offset of ')'
	Decls      []PortDecl
	// DirectiveStart/End bound the AUTOARG comment token, or are -1 if none
	// was found directly inside this list.
	DirectiveStart, DirectiveEnd int
}

// Instance is a module instantiation statement: "ModuleName instName(...);".
type Instance struct {
	ModuleName string
	InstName   string
	// LineStart is the byte offset of the first non-whitespace character on
	// the line containing ModuleName; used as the indentation base.
	LineStart      int
	OpenParen      int
	CloseParen     int
	DirectiveStart int // offset of the AUTOINST comment token, or -1
	DirectiveEnd   int
}

// Module is a single module...endmodule block.
type Module struct {
	Name string
	// LineStart is the byte offset of the first non-whitespace character on
	// the line containing the "module" keyword.
	LineStart int
	Header    *HeaderPortList // nil if the module has no parenthesized port list
	BodyPorts []PortDecl
	Instances []Instance
	Start, End int
}

// File is the scanned structural facts for one source buffer.
type File struct {
	Source  []byte
	Tokens  []Token
	Modules []Module
	// TemplateComments are every block comment containing AUTO_TEMPLATE,
	// regardless of where they appear; internal/template parses them.
	TemplateComments []Token
}

// Parse scans src into structural facts. It never returns an error: a
// malformed or partially-understood file simply yields fewer facts rather
// than aborting the whole scan.
func Parse(src []byte) *File {
	toks := Lex(src)
	f := &File{Source: src, Tokens: toks}
	p := &parser{f: f, toks: toks}
	p.run()
	return f
}

type parser struct {
	f    *File
	toks []Token
	pos  int
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) run() {
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == BlockComment && IsTemplateComment(t.Text) {
			p.f.TemplateComments = append(p.f.TemplateComments, t)
			p.advance()
			continue
		}
		if t.Kind == Ident && t.Text == "module" {
			p.parseModule()
			continue
		}
		p.advance()
	}
}

func (p *parser) lineStart(offset int) int {
	i := offset
	src := p.f.Source
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	// skip leading whitespace to the first non-whitespace byte on the line
	for i < offset && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

func (p *parser) parseModule() {
	modTok := p.advance() // "module"
	mod := Module{LineStart: p.lineStart(modTok.Start), Start: modTok.Start}
	if p.cur().Kind == Ident {
		mod.Name = p.advance().Text
	}
	// optional parameter port list "#( ... )" — skip balanced
	if p.cur().Kind == Punct && p.cur().Text == "#" {
		p.advance()
		if p.cur().Kind == Punct && p.cur().Text == "(" {
			p.skipBalancedParen()
		}
	}
	if p.cur().Kind == Punct && p.cur().Text == "(" {
		mod.Header = p.parseHeaderPortList()
	}
	// consume up to the statement-terminating ';' of the module header
	for !(p.cur().Kind == Punct && p.cur().Text == ";") && p.cur().Kind != EOF {
		p.advance()
	}
	if p.cur().Kind != EOF {
		p.advance() // ';'
	}
	p.parseModuleBody(&mod)
	mod.End = p.cur().End
	p.f.Modules = append(p.f.Modules, mod)
}

// skipBalancedParen assumes the current token is '(' and consumes up to and
// including its matching ')'.
func (p *parser) skipBalancedParen() {
	depth := 0
	for p.cur().Kind != EOF {
		t := p.advance()
		if t.Kind == Punct && t.Text == "(" {
			depth++
		} else if t.Kind == Punct && t.Text == ")" {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) parseHeaderPortList() *HeaderPortList {
	open := p.advance() // '('
	hdr := &HeaderPortList{OpenParen: open.Start, DirectiveStart: -1, DirectiveEnd: -1}
	depth := 1
	curDir := port.Unresolved
	sawDirective := false
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Punct && t.Text == "(" {
			depth++
			p.advance()
			continue
		}
		if t.Kind == Punct && t.Text == ")" {
			depth--
			p.advance()
			if depth == 0 {
				hdr.CloseParen = t.Start
				return hdr
			}
			continue
		}
		if t.Kind == Punct && t.Text == "[" {
			p.skipBalancedBracket()
			continue
		}
		if t.Kind == BlockComment {
			if depth == 1 && DirectiveName(t.Text) == "AUTOARG" {
				hdr.DirectiveStart = t.Start
				hdr.DirectiveEnd = t.End
				sawDirective = true
			}
			if IsTemplateComment(t.Text) {
				p.f.TemplateComments = append(p.f.TemplateComments, t)
			}
			p.advance()
			continue
		}
		if t.Kind == LineComment {
			p.advance()
			continue
		}
		if t.Kind == Ident {
			switch {
			case sawDirective:
				// Everything after the directive inside the list is stale
				// generated content; discard rather than treat as a real
				// header declaration (spec §4.3).
				p.advance()
			case directionKeywords[t.Text]:
				curDir = dirFromKeyword(t.Text)
				p.advance()
			case typeKeywords[t.Text]:
				p.advance()
			default:
				if depth == 1 {
					hdr.Decls = append(hdr.Decls, PortDecl{Name: t.Text, Direction: curDir, Start: t.Start})
				}
				p.advance()
			}
			continue
		}
		p.advance()
	}
	return hdr
}

func (p *parser) skipBalancedBracket() {
	depth := 0
	for p.cur().Kind != EOF {
		t := p.advance()
		if t.Kind == Punct && t.Text == "[" {
			depth++
		} else if t.Kind == Punct && t.Text == "]" {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func dirFromKeyword(kw string) port.Direction {
	switch kw {
	case "input":
		return port.Input
	case "inout":
		return port.Inout
	case "output":
		return port.Output
	default:
		return port.Unresolved
	}
}

var bodyStopKeywords = map[string]bool{
	"endmodule": true,
}

// parseModuleBody scans statements until "endmodule", collecting
// input/inout/output declarations and instance declarations.
func (p *parser) parseModuleBody(mod *Module) {
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Ident && t.Text == "endmodule" {
			p.advance()
			return
		}
		if t.Kind == BlockComment {
			if IsTemplateComment(t.Text) {
				p.f.TemplateComments = append(p.f.TemplateComments, t)
			}
			p.advance()
			continue
		}
		if t.Kind == LineComment {
			p.advance()
			continue
		}
		if t.Kind == Ident && directionKeywords[t.Text] {
			p.parseBodyPortDecl(mod)
			continue
		}
		if t.Kind == Ident && !isReservedKeyword(t.Text) {
			if p.looksLikeInstance() {
				p.parseInstance(mod)
				continue
			}
		}
		p.skipStatement()
	}
}

func (p *parser) parseBodyPortDecl(mod *Module) {
	dirTok := p.advance()
	dir := dirFromKeyword(dirTok.Text)
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Punct && t.Text == ";" {
			p.advance()
			return
		}
		if t.Kind == Punct && t.Text == "[" {
			p.skipBalancedBracket()
			continue
		}
		if t.Kind == Ident {
			if typeKeywords[t.Text] {
				p.advance()
				continue
			}
			mod.BodyPorts = append(mod.BodyPorts, PortDecl{Name: t.Text, Direction: dir, Start: t.Start})
			p.advance()
			continue
		}
		if t.Kind == Punct && t.Text == "=" {
			// skip an initializer expression up to the next ',' or ';'
			p.skipExprUntilCommaOrSemi()
			continue
		}
		p.advance()
	}
}

func (p *parser) skipExprUntilCommaOrSemi() {
	depth := 0
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{") {
			depth++
			p.advance()
			continue
		}
		if t.Kind == Punct && (t.Text == ")" || t.Text == "]" || t.Text == "}") {
			if depth == 0 {
				return
			}
			depth--
			p.advance()
			continue
		}
		if depth == 0 && t.Kind == Punct && (t.Text == "," || t.Text == ";") {
			return
		}
		p.advance()
	}
}

// looksLikeInstance peeks ahead without consuming: Ident (module name),
// optional "#( ... )", Ident (instance name), "(".
func (p *parser) looksLikeInstance() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.advance() // module name ident
	if p.cur().Kind == Punct && p.cur().Text == "#" {
		p.advance()
		if p.cur().Kind == Punct && p.cur().Text == "(" {
			p.skipBalancedParen()
		}
	}
	if p.cur().Kind != Ident {
		return false
	}
	p.advance() // instance name
	return p.cur().Kind == Punct && p.cur().Text == "("
}

func (p *parser) parseInstance(mod *Module) {
	nameTok := p.cur()
	lineStart := p.lineStart(nameTok.Start)
	modName := p.advance().Text
	if p.cur().Kind == Punct && p.cur().Text == "#" {
		p.advance()
		if p.cur().Kind == Punct && p.cur().Text == "(" {
			p.skipBalancedParen()
		}
	}
	for {
		instTok := p.advance() // instance name
		inst := Instance{
			ModuleName:     modName,
			InstName:       instTok.Text,
			LineStart:      lineStart,
			DirectiveStart: -1,
			DirectiveEnd:   -1,
		}
		if p.cur().Kind == Punct && p.cur().Text == "(" {
			open := p.advance()
			inst.OpenParen = open.Start
			inst.CloseParen = p.parseInstanceConnList(&inst)
		}
		mod.Instances = append(mod.Instances, inst)
		if p.cur().Kind == Punct && p.cur().Text == "," {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind == Punct && p.cur().Text == ";" {
		p.advance()
	}
}

// parseInstanceConnList consumes tokens up to and including the matching
// ')', recording an AUTOINST marker found directly inside (depth 1). It
// returns the offset of the closing ')'.
func (p *parser) parseInstanceConnList(inst *Instance) int {
	depth := 1
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Punct && t.Text == "(" {
			depth++
			p.advance()
			continue
		}
		if t.Kind == Punct && t.Text == ")" {
			depth--
			p.advance()
			if depth == 0 {
				return t.Start
			}
			continue
		}
		if t.Kind == BlockComment {
			if depth == 1 && DirectiveName(t.Text) == "AUTOINST" {
				inst.DirectiveStart = t.Start
				inst.DirectiveEnd = t.End
			}
			if IsTemplateComment(t.Text) {
				p.f.TemplateComments = append(p.f.TemplateComments, t)
			}
			p.advance()
			continue
		}
		p.advance()
	}
	return p.cur().Start
}

// skipStatement consumes one statement whose boundaries are unknown to this
// scanner (assign, always, generate, function, etc.), tracking paren/brace
// depth and begin/end nesting so it cannot mistake directive comments
// inside arbitrary expressions for accepted directive sites.
func (p *parser) skipStatement() {
	parenDepth := 0
	beginDepth := 0
	opened := false
	for p.cur().Kind != EOF {
		t := p.cur()
		if t.Kind == Ident && t.Text == "endmodule" && parenDepth == 0 && beginDepth == 0 {
			return
		}
		if t.Kind == Ident && t.Text == "begin" {
			beginDepth++
			opened = true
			p.advance()
			continue
		}
		if t.Kind == Ident && t.Text == "end" {
			if beginDepth > 0 {
				beginDepth--
			}
			p.advance()
			if opened && beginDepth == 0 {
				return
			}
			continue
		}
		if t.Kind == Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{") {
			parenDepth++
			p.advance()
			continue
		}
		if t.Kind == Punct && (t.Text == ")" || t.Text == "]" || t.Text == "}") {
			if parenDepth > 0 {
				parenDepth--
			}
			p.advance()
			continue
		}
		if t.Kind == Punct && t.Text == ";" && parenDepth == 0 && beginDepth == 0 {
			p.advance()
			return
		}
		p.advance()
	}
}

var reservedKeywords = map[string]bool{
	"input": true, "output": true, "inout": true, "wire": true, "reg": true,
	"logic": true, "assign": true, "always": true, "always_ff": true,
	"always_comb": true, "initial": true, "parameter": true, "localparam": true,
	"function": true, "endfunction": true, "task": true, "endtask": true,
	"generate": true, "endgenerate": true, "if": true, "else": true,
	"case": true, "endcase": true, "for": true, "while": true, "begin": true,
	"end": true, "genvar": true, "typedef": true, "struct": true, "enum": true,
	"import": true, "package": true, "endpackage": true, "module": true,
	"endmodule": true, "signed": true, "unsigned": true, "tri": true,
	"supply0": true, "supply1": true, "posedge": true, "negedge": true,
}

func isReservedKeyword(s string) bool {
	return reservedKeywords[s]
}
