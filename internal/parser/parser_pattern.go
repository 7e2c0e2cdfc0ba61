package parser

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/lexer"
)

// parsePattern parses a match-arm or let-binding pattern per spec.md §3
// "Pattern": wildcard, binding (optionally "mut"), literal, tuple,
// struct, and enum-variant forms.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur()
	switch {
	case p.at(lexer.UNDERSCORE):
		p.advance()
		return &ast.WildcardPattern{Span: p.spanFrom(start)}

	case p.at(lexer.MUT):
		p.advance()
		nameTok, _ := p.expect(lexer.IDENT, "PAR006")
		return &ast.BindingPattern{Name: nameTok.Literal, Mut: true, Span: p.spanFrom(start)}

	case p.at(lexer.MINUS), p.at(lexer.INT), p.at(lexer.FLOAT), p.at(lexer.TRUE), p.at(lexer.FALSE), p.at(lexer.STRING), p.at(lexer.CHAR):
		return p.parseLiteralPattern()

	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.Pattern
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parsePattern())
			if !p.at(lexer.RPAREN) {
				p.expect(lexer.COMMA, "PAR006")
			}
		}
		p.expect(lexer.RPAREN, "PAR002")
		return &ast.TuplePattern{Elems: elems, Span: p.spanFrom(start)}

	case p.at(lexer.IDENT):
		return p.parseIdentStartingPattern(start)

	default:
		p.errorf("PAR006", "expected a pattern but found %s", p.cur().Type)
		p.advance()
		return &ast.WildcardPattern{Span: p.spanFrom(start)}
	}
}

func (p *Parser) parseLiteralPattern() ast.Pattern {
	start := p.cur()
	lit := p.parsePrimary()
	if lit == nil {
		return &ast.WildcardPattern{Span: p.spanFrom(start)}
	}
	return &ast.LiteralPattern{Value: lit, Span: p.spanFrom(start)}
}

// parseIdentStartingPattern disambiguates a bare binding ("x"), an
// enum-variant path ("Opt::Some(v)" or "Opt::None"), and a struct pattern
// ("Point { x, y }" or "Point { x, .. }").
func (p *Parser) parseIdentStartingPattern(start lexer.Token) ast.Pattern {
	segs := []string{p.advance().Literal}
	for p.at(lexer.DCOLON) && p.peek().Type == lexer.IDENT {
		p.advance()
		segs = append(segs, p.advance().Literal)
	}

	if p.at(lexer.LPAREN) {
		p.advance()
		var fields []ast.Pattern
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			fields = append(fields, p.parsePattern())
			if !p.at(lexer.RPAREN) {
				p.expect(lexer.COMMA, "PAR006")
			}
		}
		p.expect(lexer.RPAREN, "PAR002")
		enum, variant := splitVariantPath(segs)
		return &ast.VariantPattern{Enum: enum, Variant: variant, Fields: fields, Span: p.spanFrom(start)}
	}

	if p.at(lexer.LBRACE) {
		p.advance()
		var fields []*ast.FieldPattern
		rest := false
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			if p.at(lexer.DOTDOT) {
				p.advance()
				rest = true
				break
			}
			fStart := p.cur()
			fn, ok := p.expect(lexer.IDENT, "PAR006")
			if !ok {
				break
			}
			var sub ast.Pattern
			if p.at(lexer.COLON) {
				p.advance()
				sub = p.parsePattern()
			} else {
				// Field shorthand "{ x }" binds a variable named x.
				sub = &ast.BindingPattern{Name: fn.Literal, Span: p.spanFrom(fStart)}
			}
			fields = append(fields, &ast.FieldPattern{Name: fn.Literal, Pattern: sub, Span: p.spanFrom(fStart)})
			if !p.at(lexer.RBRACE) {
				p.expect(lexer.COMMA, "PAR006")
			}
		}
		p.expect(lexer.RBRACE, "PAR002")
		return &ast.StructPattern{Type: segs[len(segs)-1], Fields: fields, Rest: rest, Span: p.spanFrom(start)}
	}

	if len(segs) > 1 {
		// A multi-segment path with no following "(" or "{" is a unit
		// enum variant, e.g. "Opt::None".
		enum, variant := splitVariantPath(segs)
		return &ast.VariantPattern{Enum: enum, Variant: variant, Span: p.spanFrom(start)}
	}

	return &ast.BindingPattern{Name: segs[0], Span: p.spanFrom(start)}
}

func splitVariantPath(segs []string) (enum, variant string) {
	if len(segs) == 1 {
		return "", segs[0]
	}
	return segs[len(segs)-2], segs[len(segs)-1]
}
