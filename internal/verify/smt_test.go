package verify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/types"
)

func TestSortOf(t *testing.T) {
	require.Equal(t, "Bool", sortOf(types.Bool))
	require.Equal(t, "Int", sortOf(types.I64))
	require.Equal(t, "Real", sortOf(types.F64))
	require.Equal(t, "Opaque", sortOf(types.String))
}

func TestExprToSMT_Literals(t *testing.T) {
	require.Equal(t, "true", exprToSMT(&ast.BoolLit{Value: true}))
	require.Equal(t, "false", exprToSMT(&ast.BoolLit{Value: false}))
	require.Equal(t, "42", exprToSMT(&ast.IntLit{Value: 42}))
	require.Equal(t, "(- 3)", exprToSMT(&ast.IntLit{Value: -3}))
}

func TestExprToSMT_PathSanitizesDoubleColon(t *testing.T) {
	got := exprToSMT(&ast.PathExpr{Segments: []string{"a", "b"}})
	require.Equal(t, "a_b", got)
}

func TestExprToSMT_RetAndOld(t *testing.T) {
	require.Equal(t, "result", exprToSMT(&ast.RetExpr{}))
	got := exprToSMT(&ast.OldExpr{Value: &ast.PathExpr{Segments: []string{"x"}}})
	require.Equal(t, "old_x", got)
}

func TestExprToSMT_UnaryAndBinary(t *testing.T) {
	neg := &ast.UnaryExpr{Op: ast.UnaryNeg, Operand: &ast.IntLit{Value: 1}}
	require.Equal(t, "(- 1)", exprToSMT(neg))

	not := &ast.UnaryExpr{Op: ast.UnaryNot, Operand: &ast.BoolLit{Value: true}}
	require.Equal(t, "(not true)", exprToSMT(not))

	bin := &ast.BinaryExpr{Op: ast.BinAdd, Left: &ast.IntLit{Value: 1}, Right: &ast.IntLit{Value: 2}}
	require.Equal(t, "(+ 1 2)", exprToSMT(bin))
}

func TestExprToSMT_MethodCallsIndexAndCall(t *testing.T) {
	opt := &ast.PathExpr{Segments: []string{"o"}}
	require.Equal(t, "(is-Some o)", exprToSMT(&ast.MethodCallExpr{Receiver: opt, Method: "is_some"}))
	require.Equal(t, "(is-None o)", exprToSMT(&ast.MethodCallExpr{Receiver: opt, Method: "is_none"}))
	require.Equal(t, "(len o)", exprToSMT(&ast.MethodCallExpr{Receiver: opt, Method: "len"}))

	idx := &ast.IndexExpr{Receiver: &ast.PathExpr{Segments: []string{"xs"}}, Index: &ast.IntLit{Value: 0}}
	require.Equal(t, "(select xs 0)", exprToSMT(idx))

	call := &ast.CallExpr{
		Callee: &ast.PathExpr{Segments: []string{"foo"}},
		Args:   []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}},
	}
	require.Equal(t, "(foo 1 2)", exprToSMT(call))
}

func TestExprToSMT_UnsupportedConstructIsConservativelyTrue(t *testing.T) {
	require.Equal(t, "true", exprToSMT(&ast.LetExpr{}))
}

func TestExprToSMT_FloatFormatsWithDecimal(t *testing.T) {
	got := exprToSMT(&ast.FloatLit{Value: 3.5})
	require.Equal(t, "3.500000", got)
}

func TestBuildQuery_IncludesDeclarationsAssumptionsAndNegatedGoal(t *testing.T) {
	ctx := (&Context{}).Add(&ast.BinaryExpr{
		Op:    ast.BinGe,
		Left:  &ast.PathExpr{Segments: []string{"x"}},
		Right: &ast.IntLit{Value: 0},
	})

	formula := &ast.BinaryExpr{
		Op:    ast.BinGt,
		Left:  &ast.PathExpr{Segments: []string{"x"}},
		Right: &ast.IntLit{Value: -1},
	}

	q := BuildQuery(ctx, formula, ast.Span{}, types.ObligationDivByZero, map[string]types.Type{"x": types.I64})

	require.Contains(t, q.Script, "(set-logic ALL)")
	require.Contains(t, q.Script, "(declare-const x Int)")
	require.Contains(t, q.Script, "(assert (>= x 0))")
	require.Contains(t, q.Script, "(assert (not (> x (- 1))))")
	require.True(t, strings.HasSuffix(strings.TrimSpace(q.Script), "(check-sat)"))
	require.Equal(t, types.ObligationDivByZero, q.Kind)
}

func TestBuildQuery_DeterministicDeclarationOrder(t *testing.T) {
	vars := map[string]types.Type{"z": types.I64, "a": types.I64, "m": types.I64}
	q := BuildQuery(&Context{}, &ast.BoolLit{Value: true}, ast.Span{}, types.ObligationIndexBounds, vars)

	aIdx := strings.Index(q.Script, "(declare-const a")
	mIdx := strings.Index(q.Script, "(declare-const m")
	zIdx := strings.Index(q.Script, "(declare-const z")
	require.True(t, aIdx >= 0 && aIdx < mIdx && mIdx < zIdx, "declarations must be sorted by name")
}

func TestContextAdd_NilExprIsNoop(t *testing.T) {
	ctx := &Context{}
	same := ctx.Add(nil)
	require.Same(t, ctx, same)
}

func TestSanitizeIdent(t *testing.T) {
	require.Equal(t, "a_b_c", sanitizeIdent("a::b.c"))
}
