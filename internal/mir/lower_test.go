package mir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/iface"
	"github.com/sunholo/bmb/internal/lexer"
	"github.com/sunholo/bmb/internal/module"
	"github.com/sunholo/bmb/internal/parser"
	"github.com/sunholo/bmb/internal/types"
)

// buildCallGraph mirrors the direct-call resolution the real pipeline
// performs before lowering: every single-segment call is qualified against
// its enclosing (here: root, unnamed) module, matching Lowerer.lowerExpr's
// own *ast.CallExpr naming convention.
func buildCallGraph(m *iface.Module) *types.CallGraph {
	modPath := m.PathString()
	cg := types.NewCallGraph()
	resolve := func(e ast.Expr) (string, bool) {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return "", false
		}
		path, ok := call.Callee.(*ast.PathExpr)
		if !ok {
			return "", false
		}
		if len(path.Segments) == 1 {
			return modPath + "::" + path.Segments[0], true
		}
		return joinSegs(path.Segments), true
	}
	for _, sig := range m.Functions {
		if sig.Decl == nil || sig.Decl.Body == nil {
			continue
		}
		cg.CollectCalls(modPath+"::"+sig.Name, sig.Decl.Body, resolve)
	}
	return cg
}

// lowerSource parses and resolves src (a single, unnamed-module program),
// builds a direct-call graph over its functions, and lowers the function
// named name, returning the resulting MIR function.
func lowerSource(t *testing.T, src, name string) *Function {
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

	cg := buildCallGraph(m)

	sig, ok := tables.Function(name)
	require.True(t, ok, "function %s not registered", name)

	l := NewLowerer(tables, "", nil, cg)
	return l.LowerFunc(sig, sig.Module+"::"+sig.Name)
}

func TestLowerFunc_SimpleArithmeticReturnsBinOp(t *testing.T) {
	fn := lowerSource(t, "fn inc(x: i64) -> i64 = x + 1;\n", "::inc")

	entry := fn.Blocks[fn.Entry]
	require.Len(t, entry.Statements, 1)
	assign, ok := entry.Statements[0].(*Assign)
	require.True(t, ok)
	bin, ok := assign.Value.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)

	ret, ok := entry.Term.(*Return)
	require.True(t, ok)
	local, ok := ret.Value.(LocalRef)
	require.True(t, ok)
	require.Equal(t, assign.Dst, local.ID)
}

func TestLowerFunc_DirectSelfRecursionRewritesToJump(t *testing.T) {
	fn := lowerSource(t, `fn count(n: i64) -> i64 = count(n - 1);
`, "::count")

	entry := fn.Blocks[fn.Entry]
	jump, ok := entry.Term.(*Jump)
	require.True(t, ok, "self-recursive tail call must rewrite to a Jump, not a Call")
	require.Equal(t, fn.Entry, jump.Target)

	for _, s := range entry.Statements {
		_, isCall := s.(*Call)
		require.False(t, isCall, "tail call must not lower to a Call statement")
	}
}

func TestLowerFunc_NonTailRecursionStaysACall(t *testing.T) {
	fn := lowerSource(t, `fn count(n: i64) -> i64 = count(n - 1) + 1;
`, "::count")

	entry := fn.Blocks[fn.Entry]
	var sawCall bool
	for _, s := range entry.Statements {
		if call, ok := s.(*Call); ok {
			sawCall = true
			require.Equal(t, "::count", call.Callee)
		}
	}
	require.True(t, sawCall, "a recursive call outside tail position must lower to a Call")
}

func TestLowerFunc_UnqualifiedCallGetsModulePrefixed(t *testing.T) {
	fn := lowerSource(t, `fn helper(x: i64) -> i64 = x;

fn caller(x: i64) -> i64 = helper(x) + 1;
`, "::caller")

	entry := fn.Blocks[fn.Entry]
	var callee string
	for _, s := range entry.Statements {
		if call, ok := s.(*Call); ok {
			callee = call.Callee
		}
	}
	require.Equal(t, "::helper", callee)
}

func TestLowerFunc_ShortCircuitAndLowersToBranch(t *testing.T) {
	fn := lowerSource(t, "fn both(a: bool, b: bool) -> bool = a and b;\n", "::both")

	entry := fn.Blocks[fn.Entry]
	_, ok := entry.Term.(*Branch)
	require.True(t, ok, "short-circuit \"and\" must lower to a conditional branch")

	var sawFalseConst bool
	for _, b := range fn.Blocks {
		for _, s := range b.Statements {
			if assign, ok := s.(*Assign); ok {
				if use, ok := assign.Value.(*UseOperand); ok {
					if c, ok := use.Op.(ConstBool); ok && !c.Val {
						sawFalseConst = true
					}
				}
			}
		}
	}
	require.True(t, sawFalseConst, "short-circuit false path must assign the constant false")
}

func TestLowerFunc_MatchOnEnumCompilesToSwitch(t *testing.T) {
	fn := lowerSource(t, `enum Opt { Some(i64), None }

fn unwrap_or_zero(o: Opt) -> i64 = match o { Opt::Some(v) => v, Opt::None => 0 };
`, "::unwrap_or_zero")

	var sawSwitch bool
	for _, b := range fn.Blocks {
		if _, ok := b.Term.(*Switch); ok {
			sawSwitch = true
		}
	}
	require.True(t, sawSwitch, "a match over an enum scrutinee must compile to a Switch terminator")
}

func TestLowerFunc_WhileLoopHasHeaderBodyExitShape(t *testing.T) {
	fn := lowerSource(t, `fn sum_upto(n: i64) -> i64 {
  let mut acc: i64 = 0;
  while acc < n {
    acc = acc + 1;
  }
  acc
}
`, "::sum_upto")

	var branches int
	for _, b := range fn.Blocks {
		if _, ok := b.Term.(*Branch); ok {
			branches++
		}
	}
	require.Equal(t, 1, branches, "exactly one loop-condition branch expected")

	var jumpsToHeader int
	for _, b := range fn.Blocks {
		if j, ok := b.Term.(*Jump); ok {
			if _, isBranch := fn.Blocks[j.Target].Term.(*Branch); isBranch {
				jumpsToHeader++
			}
		}
	}
	require.GreaterOrEqual(t, jumpsToHeader, 1, "loop body must jump back to the header")
}
