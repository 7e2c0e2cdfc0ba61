package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/lexer"
	"github.com/sunholo/bmb/internal/module"
	"github.com/sunholo/bmb/internal/parser"
	"github.com/sunholo/bmb/internal/types"
)

// checkSource parses src as a single-file, unnamed-module program, resolves
// it, and runs the checker over every registered function, returning the
// accumulated diagnostics.
func checkSource(t *testing.T, src string) []string {
	t.Helper()

	toks, lexDiags := lexer.Lex(0, "test", lexer.Normalize([]byte(src)))
	require.Empty(t, lexDiags)
	f, parseDiags := parser.Parse("test", toks)
	require.Empty(t, parseDiags)

	res := module.NewResolver()
	res.AddFile(f)
	tables, resolveDiags := res.Resolve()
	require.Empty(t, resolveDiags)

	m, ok := tables.Module("")
	require.True(t, ok)

	checker := types.NewChecker(tables, "")
	for _, sig := range m.Functions {
		checker.CheckFunc(sig)
	}

	codes := make([]string, 0, len(checker.Diagnostics()))
	for _, d := range checker.Diagnostics() {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestChecker_NonExhaustiveMatchReportsTYP003(t *testing.T) {
	codes := checkSource(t, `enum Opt { Some(i64), None }

fn f(x: Opt) -> i64 = match x { Opt::Some(v) => v };
`)
	require.Contains(t, codes, "TYP003")
}

func TestChecker_ExhaustiveMatchIsClean(t *testing.T) {
	codes := checkSource(t, `enum Opt { Some(i64), None }

fn f(x: Opt) -> i64 = match x { Opt::Some(v) => v, Opt::None => 0 };
`)
	require.NotContains(t, codes, "TYP003")
}

func TestChecker_WildcardArmSatisfiesExhaustiveness(t *testing.T) {
	codes := checkSource(t, `enum Opt { Some(i64), None }

fn f(x: Opt) -> i64 = match x { Opt::Some(v) => v, _ => 0 };
`)
	require.NotContains(t, codes, "TYP003")
}

func TestChecker_UnreachableArmReportsTYP004(t *testing.T) {
	codes := checkSource(t, `enum Opt { Some(i64), None }

fn f(x: Opt) -> i64 = match x { Opt::Some(v) => v, Opt::Some(w) => w, Opt::None => 0 };
`)
	require.Contains(t, codes, "TYP004")
}

func TestChecker_PurityViolationReportsTYP005(t *testing.T) {
	codes := checkSource(t, `pure fn f(x: i64) -> i64 {
  x = x + 1;
  x
};
`)
	require.Contains(t, codes, "TYP005")
}

func TestChecker_LocalMutableReassignStaysPure(t *testing.T) {
	codes := checkSource(t, `pure fn f(x: i64) -> i64 {
  let mut y: i64 = x;
  y = y + 1;
  y
};
`)
	require.NotContains(t, codes, "TYP005")
}

func TestChecker_DivByZeroRecordsObligation(t *testing.T) {
	toks, lexDiags := lexer.Lex(0, "test", lexer.Normalize([]byte("fn f(x: i64) -> i64 = x / 0;\n")))
	require.Empty(t, lexDiags)
	f, parseDiags := parser.Parse("test", toks)
	require.Empty(t, parseDiags)

	res := module.NewResolver()
	res.AddFile(f)
	tables, resolveDiags := res.Resolve()
	require.Empty(t, resolveDiags)

	m, ok := tables.Module("")
	require.True(t, ok)

	checker := types.NewChecker(tables, "")
	for _, sig := range m.Functions {
		checker.CheckFunc(sig)
	}

	found := false
	for _, ob := range checker.Obligations {
		if ob.Kind == types.ObligationDivByZero {
			found = true
		}
	}
	require.True(t, found, "expected a div-by-zero obligation")
}
