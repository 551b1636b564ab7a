// Package verilog implements a lightweight, spec-scoped tokenizer and
// structural scanner for SystemVerilog/Verilog source: module and instance
// boundaries, header and body port declarations, and the byte spans of
// AUTOARG/AUTOINST/AUTO_TEMPLATE comment markers. It intentionally does not
// attempt to be a full Verilog grammar; the real lexer/parser/symbol table
// is treated as an external collaborator everywhere outside this package
// (see the symbol table wiring in internal/modindex).
package verilog

import (
	"strings"
	"unicode/utf8"
)

// TokenKind classifies a lexed token.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Number
	Str
	Punct
	LineComment
	BlockComment
)

// Token is a single lexed unit. Start and End are byte offsets into the
// source buffer; End is exclusive.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// keywords that terminate ANSI direction continuation or otherwise need
// special recognition while scanning a port list or statement.
var directionKeywords = map[string]bool{
	"input": true, "output": true, "inout": true,
}

// typeKeywords may appear between a direction keyword and a port name; they
// do not reset the current ANSI direction.
var typeKeywords = map[string]bool{
	"logic": true, "reg": true, "wire": true, "signed": true,
	"unsigned": true, "tri": true, "supply0": true, "supply1": true,
}

// Lex tokenizes src in full. Every character outside identifiers, numbers,
// strings and comments (punctuation included) is returned as its own Punct
// token covering one UTF-8 encoded rune, so the scanner never loses
// position sync.
func Lex(src []byte) []Token {
	var toks []Token
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			toks = append(toks, Token{Kind: LineComment, Text: string(src[start:i]), Start: start, End: i})
		case c == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			toks = append(toks, Token{Kind: BlockComment, Text: string(src[start:i]), Start: start, End: i})
		case c == '"':
			start := i
			i++
			for i < n && src[i] != '"' {
				if src[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i < n {
				i++
			}
			toks = append(toks, Token{Kind: Str, Text: string(src[start:i]), Start: start, End: i})
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: Ident, Text: string(src[start:i]), Start: start, End: i})
		case isDigit(c):
			start := i
			for i < n && (isDigit(src[i]) || isIdentPart(src[i]) || src[i] == '.' || src[i] == '\'') {
				i++
			}
			toks = append(toks, Token{Kind: Number, Text: string(src[start:i]), Start: start, End: i})
		default:
			start := i
			_, size := utf8.DecodeRune(src[i:])
			if size == 0 {
				size = 1
			}
			i += size
			toks = append(toks, Token{Kind: Punct, Text: string(src[start:i]), Start: start, End: i})
		}
	}
	toks = append(toks, Token{Kind: EOF, Start: n, End: n})
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// DirectiveName returns the bare directive keyword inside a block comment
// such as "/*AUTOARG*/" or "/* AUTOARG */", or "" if the comment does not
// carry one of the recognized directives.
func DirectiveName(commentText string) string {
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(commentText, "/*"), "*/"))
	switch inner {
	case "AUTOARG":
		return "AUTOARG"
	case "AUTOINST":
		return "AUTOINST"
	default:
		return ""
	}
}

// IsTemplateComment reports whether a block comment contains an
// AUTO_TEMPLATE hint block.
func IsTemplateComment(commentText string) bool {
	return strings.Contains(commentText, "AUTO_TEMPLATE")
}
