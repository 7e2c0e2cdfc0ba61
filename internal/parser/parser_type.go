package parser

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/lexer"
)

// parseType parses a type expression per spec.md §3 "Type expression",
// including trailing "?" (optional) and "where <predicate>" (refinement)
// suffixes, which bind loosest so "T where P?" parses as expected.
func (p *Parser) parseType() ast.TypeExpr {
	base := p.parseTypeAtom()
	for {
		if p.at(lexer.QUESTION) {
			q := p.advance()
			base = &ast.OptionalType{Elem: base, Span: spanUnion(base.Pos(), tokSpan(p.file, q))}
			continue
		}
		if p.at(lexer.WHERE) {
			p.advance()
			pred := p.parseExpr()
			base = &ast.RefinementType{Base: base, Predicate: pred, Span: base.Pos()}
			continue
		}
		break
	}
	return base
}

func spanUnion(a, b ast.Span) ast.Span {
	return ast.Span{Start: a.Start, End: b.End}
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	start := p.cur()
	switch {
	case p.at(lexer.AMP):
		p.advance()
		if p.at(lexer.LBRACKET) {
			p.advance()
			elem := p.parseType()
			p.expect(lexer.RBRACKET, "PAR005")
			return &ast.SliceType{Elem: elem, Span: p.spanFrom(start)}
		}
		mut := false
		if p.at(lexer.MUT) {
			p.advance()
			mut = true
		}
		elem := p.parseType()
		return &ast.RefType{Mut: mut, Elem: elem, Span: p.spanFrom(start)}

	case p.at(lexer.FUNC):
		p.advance()
		p.expect(lexer.LPAREN, "PAR005")
		var params []ast.TypeExpr
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			params = append(params, p.parseType())
			if !p.at(lexer.RPAREN) {
				p.expect(lexer.COMMA, "PAR005")
			}
		}
		p.expect(lexer.RPAREN, "PAR002")
		p.expect(lexer.ARROW, "PAR005")
		result := p.parseType()
		return &ast.FuncType{Params: params, Result: result, Span: p.spanFrom(start)}

	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.TypeExpr
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseType())
			if !p.at(lexer.RPAREN) {
				p.expect(lexer.COMMA, "PAR005")
			}
		}
		p.expect(lexer.RPAREN, "PAR002")
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TupleType{Elems: elems, Span: p.spanFrom(start)}

	case p.at(lexer.IDENT):
		nameTok := p.advance()
		var args []ast.TypeExpr
		if p.at(lexer.LT) {
			p.advance()
			for !p.at(lexer.GT) && !p.at(lexer.EOF) {
				args = append(args, p.parseType())
				if !p.at(lexer.GT) {
					p.expect(lexer.COMMA, "PAR005")
				}
			}
			p.expect(lexer.GT, "PAR005")
		}
		return &ast.NamedType{Name: nameTok.Literal, Args: args, Span: p.spanFrom(start)}

	default:
		p.errorf("PAR005", "expected a type expression but found %s", p.cur().Type)
		p.advance()
		return &ast.NamedType{Name: "<error>", Span: p.spanFrom(start)}
	}
}
