package parser

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/lexer"
)

// Precedence levels, low to high, per spec.md §4.2:
//  1. assignment (right-assoc)
//  2. implies (right-assoc)
//  3. or
//  4. and
//  5. comparison (non-chaining)
//  6. additive
//  7. multiplicative
//  8. unary prefix
//  9. cast
//  10. call/index/field (left-assoc, handled in parsePostfix)
const (
	precLowest = iota
	precAssign
	precImplies
	precOr
	precAnd
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precCast
)

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	left := p.parseImplies()
	if p.at(lexer.ASSIGN) {
		p.advance()
		right := p.parseAssign() // right-associative
		return &ast.AssignExpr{Target: left, Value: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

func (p *Parser) parseImplies() ast.Expr {
	left := p.parseOr()
	if p.at(lexer.IMPLIES) {
		p.advance()
		right := p.parseImplies() // right-associative
		return &ast.BinaryExpr{Op: ast.BinImplies, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(lexer.OR) {
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: ast.BinOr, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseCompare()
	for p.at(lexer.AND) {
		p.advance()
		right := p.parseCompare()
		left = &ast.BinaryExpr{Op: ast.BinAnd, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

var compareOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.EQ: ast.BinEq, lexer.NEQ: ast.BinNeq,
	lexer.LT: ast.BinLt, lexer.LTE: ast.BinLe,
	lexer.GT: ast.BinGt, lexer.GTE: ast.BinGe,
}

// parseCompare is deliberately non-chaining (spec.md §4.2): it parses at
// most one comparison operator, so in "a < b < c" the second "<" is left
// unconsumed and the enclosing construct reports it as unexpected.
func (p *Parser) parseCompare() ast.Expr {
	left := p.parseAdditive()
	if op, ok := compareOps[p.cur().Type]; ok {
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

var additiveOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS: ast.BinAdd, lexer.MINUS: ast.BinSub,
	lexer.PLUS_WRAP: ast.BinAddWrap, lexer.MINUS_WRAP: ast.BinSubWrap,
	lexer.PLUS_SAT: ast.BinAddSat, lexer.MINUS_SAT: ast.BinSubSat,
	lexer.PLUS_CHECK: ast.BinAddChecked, lexer.MINUS_CHECK: ast.BinSubChecked,
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for {
		op, ok := additiveOps[p.cur().Type]
		if !ok {
			break
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

var multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.STAR: ast.BinMul, lexer.SLASH: ast.BinDiv, lexer.PERCENT: ast.BinMod,
	lexer.STAR_WRAP: ast.BinMulWrap, lexer.STAR_SAT: ast.BinMulSat, lexer.STAR_CHECK: ast.BinMulChecked,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		op, ok := multiplicativeOps[p.cur().Type]
		if !ok {
			break
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: spanUnion(left.Pos(), right.Pos())}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(lexer.MINUS) {
		start := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.UnaryNeg, Operand: operand, Span: p.spanFrom(start)}
	}
	if p.at(lexer.NOT) {
		start := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.UnaryNot, Operand: operand, Span: p.spanFrom(start)}
	}
	return p.parseCast()
}

func (p *Parser) parseCast() ast.Expr {
	left := p.parsePostfix()
	for p.at(lexer.AS) {
		p.advance()
		typ := p.parseType()
		left = &ast.CastExpr{Value: left, Type: typ, Span: spanUnion(left.Pos(), typ.Pos())}
	}
	return left
}

// parsePostfix handles call/index/field/method chains, left-associative,
// the highest-precedence level in spec.md §4.2.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(lexer.LPAREN):
			start := p.toks[p.pos]
			p.advance()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseExpr())
				if !p.at(lexer.RPAREN) {
					p.expect(lexer.COMMA, "PAR001")
				}
			}
			p.expect(lexer.RPAREN, "PAR002")
			expr = &ast.CallExpr{Callee: expr, Args: args, Span: spanUnion(expr.Pos(), p.spanFrom(start))}

		case p.at(lexer.DOT):
			p.advance()
			nameTok, ok := p.expect(lexer.IDENT, "PAR001")
			if !ok {
				return expr
			}
			if p.at(lexer.LPAREN) {
				start := p.toks[p.pos]
				p.advance()
				var args []ast.Expr
				for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
					args = append(args, p.parseExpr())
					if !p.at(lexer.RPAREN) {
						p.expect(lexer.COMMA, "PAR001")
					}
				}
				p.expect(lexer.RPAREN, "PAR002")
				expr = &ast.MethodCallExpr{Receiver: expr, Method: nameTok.Literal, Args: args, Span: spanUnion(expr.Pos(), p.spanFrom(start))}
			} else {
				expr = &ast.FieldExpr{Receiver: expr, Field: nameTok.Literal, Span: spanUnion(expr.Pos(), tokSpan(p.file, nameTok))}
			}

		case p.at(lexer.LBRACKET):
			p.advance()
			idx := p.parseExpr()
			end, _ := p.expect(lexer.RBRACKET, "PAR002")
			expr = &ast.IndexExpr{Receiver: expr, Index: idx, Span: spanUnion(expr.Pos(), tokSpan(p.file, end))}

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur()
	switch start.Type {
	case lexer.INT:
		p.advance()
		v, suffix := parseIntText(start.Literal)
		return &ast.IntLit{Text: start.Literal, Value: v, Suffix: suffix, Span: p.spanFrom(start)}
	case lexer.FLOAT:
		p.advance()
		v, suffix := parseFloatText(start.Literal)
		return &ast.FloatLit{Text: start.Literal, Value: v, Suffix: suffix, Span: p.spanFrom(start)}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Span: p.spanFrom(start)}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Span: p.spanFrom(start)}
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Value: start.Literal, Span: p.spanFrom(start)}
	case lexer.CHAR:
		p.advance()
		r := rune(0)
		for _, c := range start.Literal {
			r = c
			break
		}
		return &ast.CharLit{Value: r, Span: p.spanFrom(start)}
	case lexer.IDENT:
		return p.parsePathOrStructLit()
	case lexer.LPAREN:
		p.advance()
		if p.at(lexer.RPAREN) {
			p.advance()
			return &ast.TupleLitExpr{Span: p.spanFrom(start)}
		}
		first := p.parseExpr()
		if p.at(lexer.COMMA) {
			elems := []ast.Expr{first}
			for p.at(lexer.COMMA) {
				p.advance()
				if p.at(lexer.RPAREN) {
					break
				}
				elems = append(elems, p.parseExpr())
			}
			p.expect(lexer.RPAREN, "PAR002")
			return &ast.TupleLitExpr{Elems: elems, Span: p.spanFrom(start)}
		}
		p.expect(lexer.RPAREN, "PAR002")
		return first
	case lexer.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseExpr())
			if !p.at(lexer.RBRACKET) {
				p.expect(lexer.COMMA, "PAR001")
			}
		}
		p.expect(lexer.RBRACKET, "PAR002")
		return &ast.ArrayLitExpr{Elems: elems, Span: p.spanFrom(start)}
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.LET:
		return p.parseLet()
	case lexer.IF:
		return p.parseIf()
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.LOOP:
		p.advance()
		body := p.parseBlock()
		return &ast.LoopExpr{Body: body, Span: p.spanFrom(start)}
	case lexer.BREAK:
		p.advance()
		var val ast.Expr
		if !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) {
			val = p.parseExpr()
		}
		return &ast.BreakExpr{Value: val, Span: p.spanFrom(start)}
	case lexer.CONTINUE:
		p.advance()
		return &ast.ContinueExpr{Span: p.spanFrom(start)}
	case lexer.RETURN:
		p.advance()
		var val ast.Expr
		if !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) {
			val = p.parseExpr()
		}
		return &ast.ReturnExpr{Value: val, Span: p.spanFrom(start)}
	case lexer.PIPE:
		return p.parseClosure()
	default:
		p.errorf("PAR001", "unexpected token %s (%q) in expression position", start.Type, start.Literal)
		p.advance()
		return nil
	}
}

// parsePathOrStructLit disambiguates "a::b::c", "ret", "self",
// "old(...)", "Name { field: v }" struct literals, and plain paths.
func (p *Parser) parsePathOrStructLit() ast.Expr {
	start := p.cur()
	if start.Literal == "ret" {
		p.advance()
		return &ast.RetExpr{Span: p.spanFrom(start)}
	}
	if start.Literal == "self" {
		p.advance()
		return &ast.SelfExpr{Span: p.spanFrom(start)}
	}
	if start.Literal == "old" && p.peek().Type == lexer.LPAREN {
		p.advance()
		p.advance()
		v := p.parseExpr()
		p.expect(lexer.RPAREN, "PAR002")
		return &ast.OldExpr{Value: v, Span: p.spanFrom(start)}
	}

	segs := []string{start.Literal}
	p.advance()
	for p.at(lexer.DCOLON) && p.peek().Type == lexer.IDENT {
		p.advance()
		t := p.advance()
		segs = append(segs, t.Literal)
	}

	// Struct literal: "Name { field: value, ... }". A path followed by '{'
	// is also the head of "if c {", "while i < n {", "match x {" and
	// "for x in xs {", so the literal is recognized only when the brace is
	// followed by "ident :". An empty literal "Name {}" is not recognized.
	if p.at(lexer.LBRACE) && p.peek().Type == lexer.IDENT && p.peekAt(2).Type == lexer.COLON {
		p.advance()
		var fields []*ast.FieldInit
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			fStart := p.cur()
			fn, ok := p.expect(lexer.IDENT, "PAR001")
			if !ok {
				break
			}
			p.expect(lexer.COLON, "PAR001")
			val := p.parseExpr()
			fields = append(fields, &ast.FieldInit{Name: fn.Literal, Value: val, Span: p.spanFrom(fStart)})
			if !p.at(lexer.RBRACE) {
				p.expect(lexer.COMMA, "PAR001")
			}
		}
		p.expect(lexer.RBRACE, "PAR002")
		return &ast.StructLitExpr{Type: segs[len(segs)-1], Fields: fields, Span: p.spanFrom(start)}
	}

	return &ast.PathExpr{Segments: segs, Span: p.spanFrom(start)}
}

func (p *Parser) parseClosure() ast.Expr {
	start := p.advance() // '|'
	var params []*ast.Param
	for !p.at(lexer.PIPE) && !p.at(lexer.EOF) {
		pStart := p.cur()
		nameTok, ok := p.expect(lexer.IDENT, "PAR001")
		if !ok {
			break
		}
		var typ ast.TypeExpr
		if p.at(lexer.COLON) {
			p.advance()
			typ = p.parseType()
		}
		params = append(params, &ast.Param{Name: nameTok.Literal, Type: typ, Span: p.spanFrom(pStart)})
		if !p.at(lexer.PIPE) {
			p.expect(lexer.COMMA, "PAR001")
		}
	}
	p.expect(lexer.PIPE, "PAR001")
	var result ast.TypeExpr
	if p.at(lexer.ARROW) {
		p.advance()
		result = p.parseType()
	}
	body := p.parseExpr()
	return &ast.ClosureExpr{Params: params, Result: result, Body: body, Span: p.spanFrom(start)}
}

// ============================================================================
// Blocks and statements
// ============================================================================

// parseBlock parses "{ stmt; stmt; ...; [tail] }". Blocks are expressions:
// the last semicolon-terminated statement yields unit; a trailing
// expression without ';' yields the block's value (spec.md §4.2
// "Statement vs expression").
func (p *Parser) parseBlock() ast.Expr {
	start := p.advance() // '{'
	var stmts []ast.Expr
	var tail ast.Expr
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		e := p.parseExpr()
		if e == nil {
			p.recoverToStmtBoundary()
			continue
		}
		if p.at(lexer.SEMI) {
			p.advance()
			stmts = append(stmts, e)
			continue
		}
		// No semicolon: either this is the block's tail expression, or
		// (for let/if/match/while/for/block forms that already consumed
		// their own terminator) it's a statement.
		if p.at(lexer.RBRACE) {
			tail = e
			break
		}
		stmts = append(stmts, e)
	}
	p.expect(lexer.RBRACE, "PAR002")
	return &ast.BlockExpr{Statements: stmts, Tail: tail, Span: p.spanFrom(start)}
}

func (p *Parser) recoverToStmtBoundary() {
	for !p.at(lexer.EOF) && !p.at(lexer.RBRACE) {
		if p.at(lexer.SEMI) {
			p.advance()
			return
		}
		p.advance()
	}
}

// parseLet parses "let [mut] name [: T] = value; body" where Body is the
// remainder of the enclosing block, chained so nested lets form a single
// expression tree (spec.md §3 "let-binding").
func (p *Parser) parseLet() ast.Expr {
	start := p.advance() // 'let'
	mut := false
	if p.at(lexer.MUT) {
		p.advance()
		mut = true
	}
	nameTok, _ := p.expect(lexer.IDENT, "PAR001")
	var typ ast.TypeExpr
	if p.at(lexer.COLON) {
		p.advance()
		typ = p.parseType()
	}
	p.expect(lexer.ASSIGN, "PAR001")
	val := p.parseExpr()
	p.expect(lexer.SEMI, "PAR001")

	var body ast.Expr
	if !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		body = p.parseExpr()
	}
	return &ast.LetExpr{Mut: mut, Name: nameTok.Literal, Type: typ, Value: val, Body: body, Span: p.spanFrom(start)}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.advance() // 'if'
	cond := p.parseExpr()
	if p.at(lexer.THEN) {
		p.advance()
	}
	then := p.parseExprOrBlock()
	var elseExpr ast.Expr
	if p.at(lexer.ELSE) {
		p.advance()
		elseExpr = p.parseExprOrBlock()
	}
	return &ast.IfExpr{Cond: cond, Then: then, Else: elseExpr, Span: p.spanFrom(start)}
}

// parseExprOrBlock is used by if/else arms: a block is the common case
// but a bare expression is also legal (e.g. "if c then 1 else 2").
func (p *Parser) parseExprOrBlock() ast.Expr {
	if p.at(lexer.LBRACE) {
		return p.parseBlock()
	}
	return p.parseExpr()
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.advance() // 'match'
	scrutinee := p.parseExpr()
	p.expect(lexer.LBRACE, "PAR002")
	var arms []*ast.MatchArm
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		aStart := p.cur()
		pat := p.parsePattern()
		var guard ast.Expr
		if p.at(lexer.IF) {
			p.advance()
			guard = p.parseExpr()
		}
		p.expect(lexer.FARROW, "PAR008")
		body := p.parseExpr()
		arms = append(arms, &ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: p.spanFrom(aStart)})
		if !p.at(lexer.RBRACE) {
			p.expect(lexer.COMMA, "PAR008")
		}
	}
	p.expect(lexer.RBRACE, "PAR002")
	return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Span: p.spanFrom(start)}
}

func (p *Parser) parseWhile() ast.Expr {
	start := p.advance() // 'while'
	cond := p.parseExpr()
	var invariants []*ast.Contract
	for p.at(lexer.INVARIANT) {
		invariants = append(invariants, p.parseContract())
	}
	body := p.parseBlock()
	return &ast.WhileExpr{Cond: cond, Body: body, Invariants: invariants, Span: p.spanFrom(start)}
}

func (p *Parser) parseFor() ast.Expr {
	start := p.advance() // 'for'
	nameTok, _ := p.expect(lexer.IDENT, "PAR001")
	p.expect(lexer.IN, "PAR001")
	iter := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForExpr{Binding: nameTok.Literal, Iter: iter, Body: body, Span: p.spanFrom(start)}
}
