package parser

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/lexer"
)

// parseFuncDecl handles both forms of spec.md §4.2 "Function syntax":
//
//	fn name(p: T, …) -> R <contracts> = <expr>;
//	fn name(p: T, …) -> R <contracts> { <block> };
//
// Contract clauses follow the return type and precede the body, in any
// order.
func (p *Parser) parseFuncDecl(start lexer.Token, pub bool) ast.Item {
	pure := false
	if p.at(lexer.PURE) {
		p.advance()
		pure = true
	}
	p.expect(lexer.FUNC, "PAR003")
	nameTok, _ := p.expect(lexer.IDENT, "PAR003")

	generics := p.parseGenerics()

	p.expect(lexer.LPAREN, "PAR003")
	var params []*ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		pStart := p.cur()
		nameTok, ok := p.expect(lexer.IDENT, "PAR003")
		if !ok {
			break
		}
		p.expect(lexer.COLON, "PAR003")
		typ := p.parseType()
		params = append(params, &ast.Param{Name: nameTok.Literal, Type: typ, Span: p.spanFrom(pStart)})
		if !p.at(lexer.RPAREN) {
			p.expect(lexer.COMMA, "PAR003")
		}
	}
	p.expect(lexer.RPAREN, "PAR002")
	p.expect(lexer.ARROW, "PAR003")
	ret := p.parseType()

	var contracts []*ast.Contract
	for p.at(lexer.PRE) || p.at(lexer.POST) || p.at(lexer.INVARIANT) {
		contracts = append(contracts, p.parseContract())
	}

	var body ast.Expr
	if p.at(lexer.ASSIGN) {
		p.advance()
		body = p.parseExpr()
		p.expect(lexer.SEMI, "PAR003")
	} else if p.at(lexer.LBRACE) {
		body = p.parseBlock()
		if p.at(lexer.SEMI) {
			p.advance()
		}
	} else {
		p.errorf("PAR003", "expected '=' or '{' to start function body")
	}

	return &ast.FuncDecl{
		Name: nameTok.Literal, Pub: pub, Pure: pure, Generics: generics,
		Params: params, ReturnType: ret, Contracts: contracts, Body: body,
		Span: p.spanFrom(start),
	}
}

func (p *Parser) parseContract() *ast.Contract {
	start := p.cur()
	var kind ast.ContractKind
	switch p.cur().Type {
	case lexer.PRE:
		kind = ast.ContractPre
	case lexer.POST:
		kind = ast.ContractPost
	case lexer.INVARIANT:
		kind = ast.ContractInvariant
	}
	p.advance()
	// A predicate never contains assignment, so it is parsed from the
	// implies level; "post P = body" leaves "= body" for the caller.
	pred := p.parseImplies()
	if pred == nil {
		p.errorf("PAR004", "expected a predicate expression after contract keyword")
	}
	return &ast.Contract{Kind: kind, Predicate: pred, Span: p.spanFrom(start)}
}

func (p *Parser) parseTypeAlias(start lexer.Token, pub bool) ast.Item {
	p.advance() // 'type'
	nameTok, _ := p.expect(lexer.IDENT, "PAR005")
	generics := p.parseGenerics()
	p.expect(lexer.ASSIGN, "PAR005")
	typ := p.parseType()
	p.expect(lexer.SEMI, "PAR005")
	return &ast.TypeAliasDecl{Name: nameTok.Literal, Pub: pub, Generics: generics, Type: typ, Span: p.spanFrom(start)}
}

func (p *Parser) parseStructDecl(start lexer.Token, pub bool) ast.Item {
	p.advance() // 'struct'
	nameTok, _ := p.expect(lexer.IDENT, "PAR005")
	generics := p.parseGenerics()
	p.expect(lexer.LBRACE, "PAR002")
	var fields []*ast.FieldDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fStart := p.cur()
		fn, ok := p.expect(lexer.IDENT, "PAR005")
		if !ok {
			break
		}
		p.expect(lexer.COLON, "PAR005")
		typ := p.parseType()
		fields = append(fields, &ast.FieldDecl{Name: fn.Literal, Type: typ, Span: p.spanFrom(fStart)})
		if !p.at(lexer.RBRACE) {
			p.expect(lexer.COMMA, "PAR005")
		}
	}
	p.expect(lexer.RBRACE, "PAR002")
	return &ast.StructDecl{Name: nameTok.Literal, Pub: pub, Generics: generics, Fields: fields, Span: p.spanFrom(start)}
}

func (p *Parser) parseEnumDecl(start lexer.Token, pub bool) ast.Item {
	p.advance() // 'enum'
	nameTok, _ := p.expect(lexer.IDENT, "PAR005")
	generics := p.parseGenerics()
	p.expect(lexer.LBRACE, "PAR002")
	var variants []*ast.VariantDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		vStart := p.cur()
		vn, ok := p.expect(lexer.IDENT, "PAR005")
		if !ok {
			break
		}
		var fields []ast.TypeExpr
		if p.at(lexer.LPAREN) {
			p.advance()
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				fields = append(fields, p.parseType())
				if !p.at(lexer.RPAREN) {
					p.expect(lexer.COMMA, "PAR005")
				}
			}
			p.expect(lexer.RPAREN, "PAR002")
		}
		variants = append(variants, &ast.VariantDecl{Name: vn.Literal, Fields: fields, Span: p.spanFrom(vStart)})
		if !p.at(lexer.RBRACE) {
			p.expect(lexer.COMMA, "PAR005")
		}
	}
	p.expect(lexer.RBRACE, "PAR002")
	return &ast.EnumDecl{Name: nameTok.Literal, Pub: pub, Generics: generics, Variants: variants, Span: p.spanFrom(start)}
}

func (p *Parser) parseModuleItem(start lexer.Token, pub bool) ast.Item {
	p.advance() // 'mod'
	nameTok, _ := p.expect(lexer.IDENT, "PAR005")
	p.expect(lexer.LBRACE, "PAR002")
	var items []ast.Item
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		it := p.parseItem()
		if it != nil {
			items = append(items, it)
		} else {
			p.recoverToItemBoundary()
		}
	}
	p.expect(lexer.RBRACE, "PAR002")
	return &ast.ModuleItem{Name: nameTok.Literal, Pub: pub, Items: items, Span: p.spanFrom(start)}
}
