// Package parser implements spec.md §4.2: top-down recursive descent with
// operator-precedence climbing for expressions.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/lexer"
)

// Parser holds the token stream and accumulates diagnostics.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string

	diags []*errors.Report
}

// Parse tokenizes is not performed here; call lexer.Lex first. Parse
// builds an *ast.File from a token stream, per spec.md §4.2.
func Parse(file string, toks []lexer.Token) (*ast.File, []*errors.Report) {
	p := &Parser{toks: toks, file: file}
	f := p.parseFile()
	return f, p.diags
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) peek() lexer.Token { return p.peekAt(1) }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if t.Type != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) accept(tt lexer.TokenType) (lexer.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) expect(tt lexer.TokenType, code string) (lexer.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	p.errorf(code, "expected %s but found %s (%q)", tt, p.cur().Type, p.cur().Literal)
	return lexer.Token{}, false
}

func (p *Parser) errorf(code, format string, args ...any) {
	t := p.cur()
	sp := &errors.Span{File: p.file, Line: t.Line, Column: t.Column, ByteStart: t.ByteStart, ByteEnd: t.ByteEnd}
	p.diags = append(p.diags, errors.New(errors.KindParse, code, "parser", fmt.Sprintf(format, args...), sp))
}

func tokSpan(file string, t lexer.Token) ast.Span {
	p := ast.Pos{File: file, Line: t.Line, Column: t.Column, Offset: t.ByteStart}
	e := ast.Pos{File: file, Line: t.Line, Column: t.Column, Offset: t.ByteEnd}
	return ast.Span{Start: p, End: e}
}

func (p *Parser) spanFrom(start lexer.Token) ast.Span {
	end := p.toks[p.pos-1]
	return ast.Span{
		Start: ast.Pos{File: p.file, Line: start.Line, Column: start.Column, Offset: start.ByteStart},
		End:   ast.Pos{File: p.file, Line: end.Line, Column: end.Column, Offset: end.ByteEnd},
	}
}

// ============================================================================
// Top level
// ============================================================================

func (p *Parser) parseFile() *ast.File {
	start := p.cur()
	f := &ast.File{}

	if p.at(lexer.MOD) {
		f.Module = p.parseModuleDecl()
	}

	for p.at(lexer.USE) {
		f.Imports = append(f.Imports, p.parseUseDecls()...)
	}

	for !p.at(lexer.EOF) {
		item := p.parseItem()
		if item != nil {
			f.Items = append(f.Items, item)
		} else {
			p.recoverToItemBoundary()
		}
	}
	f.Span = p.spanFrom(start)
	return f
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.advance() // 'mod'
	path := p.parsePath()
	p.expect(lexer.SEMI, "PAR008")
	return &ast.ModuleDecl{Path: path, Span: p.spanFrom(start)}
}

func (p *Parser) parsePath() []string {
	var segs []string
	tok, ok := p.expect(lexer.IDENT, "PAR007")
	if !ok {
		return segs
	}
	segs = append(segs, tok.Literal)
	for p.at(lexer.DCOLON) && p.peek().Type == lexer.IDENT {
		p.advance()
		t := p.advance()
		segs = append(segs, t.Literal)
	}
	return segs
}

// parseUseDecls handles both "use a::b::c;" and "use a::b::{c,d};" (the
// latter desugars to two UseDecls, per spec.md §4.3).
func (p *Parser) parseUseDecls() []*ast.UseDecl {
	start := p.advance() // 'use'
	var path []string
	for {
		tok, ok := p.expect(lexer.IDENT, "PAR007")
		if !ok {
			p.recoverToItemBoundary()
			return nil
		}
		if p.at(lexer.DCOLON) {
			if p.peek().Type == lexer.LBRACE {
				path = append(path, tok.Literal)
				p.advance() // '::'
				p.advance() // '{'
				var names []string
				for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
					n, ok := p.expect(lexer.IDENT, "PAR007")
					if ok {
						names = append(names, n.Literal)
					}
					if !p.at(lexer.RBRACE) {
						p.expect(lexer.COMMA, "PAR007")
					}
				}
				p.expect(lexer.RBRACE, "PAR002")
				p.expect(lexer.SEMI, "PAR007")
				sp := p.spanFrom(start)
				var out []*ast.UseDecl
				for _, n := range names {
					out = append(out, &ast.UseDecl{Path: path, Names: []string{n}, Span: sp})
				}
				return out
			}
			path = append(path, tok.Literal)
			p.advance() // '::'
			continue
		}
		// tok is the final segment; the imported name is its last component.
		p.expect(lexer.SEMI, "PAR007")
		sp := p.spanFrom(start)
		return []*ast.UseDecl{{Path: path, Names: []string{tok.Literal}, Span: sp}}
	}
}

func (p *Parser) parseItem() ast.Item {
	start := p.cur()
	pub := false
	if p.at(lexer.PUB) {
		p.advance()
		pub = true
	}

	switch {
	case p.at(lexer.PURE), p.at(lexer.FUNC):
		return p.parseFuncDecl(start, pub)
	case p.at(lexer.TYPE):
		return p.parseTypeAlias(start, pub)
	case p.at(lexer.STRUCT):
		return p.parseStructDecl(start, pub)
	case p.at(lexer.ENUM):
		return p.parseEnumDecl(start, pub)
	case p.at(lexer.MOD):
		return p.parseModuleItem(start, pub)
	default:
		p.errorf("PAR001", "expected an item (fn/type/struct/enum/mod) but found %s", p.cur().Type)
		return nil
	}
}

// recoverToItemBoundary skips tokens until a semicolon or a top-level
// keyword, per spec.md §4.2 "Error recovery". It never silently drops
// tokens without having already emitted a diagnostic at the call site.
func (p *Parser) recoverToItemBoundary() {
	for !p.at(lexer.EOF) {
		if p.at(lexer.SEMI) {
			p.advance()
			return
		}
		switch p.cur().Type {
		case lexer.FUNC, lexer.PURE, lexer.TYPE, lexer.STRUCT, lexer.ENUM, lexer.MOD, lexer.PUB, lexer.USE:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseGenerics() []string {
	if !p.at(lexer.LT) {
		return nil
	}
	p.advance()
	var gens []string
	for !p.at(lexer.GT) && !p.at(lexer.EOF) {
		t, ok := p.expect(lexer.IDENT, "PAR005")
		if ok {
			gens = append(gens, t.Literal)
		}
		if !p.at(lexer.GT) {
			p.expect(lexer.COMMA, "PAR005")
		}
	}
	p.expect(lexer.GT, "PAR005")
	return gens
}

func parseIntText(text string) (int64, string) {
	suffix := ""
	for _, s := range []string{"i128", "u128", "i64", "u64", "isize", "usize", "i32", "u32", "i16", "u16", "i8", "u8"} {
		if strings.HasSuffix(text, s) {
			suffix = s
			text = strings.TrimSuffix(text, s)
			break
		}
	}
	clean := strings.ReplaceAll(text, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(clean, "0x"):
		base = 16
		clean = clean[2:]
	case strings.HasPrefix(clean, "0o"):
		base = 8
		clean = clean[2:]
	case strings.HasPrefix(clean, "0b"):
		base = 2
		clean = clean[2:]
	}
	v, _ := strconv.ParseInt(clean, base, 64)
	return v, suffix
}

func parseFloatText(text string) (float64, string) {
	suffix := ""
	for _, s := range []string{"f32", "f64"} {
		if strings.HasSuffix(text, s) {
			suffix = s
			text = strings.TrimSuffix(text, s)
			break
		}
	}
	v, _ := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	return v, suffix
}
