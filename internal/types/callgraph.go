package types

import "github.com/sunholo/bmb/internal/ast"

// CallGraph is the direct-call graph over a module's functions, used for
// two purposes per SPEC_FULL.md §12: propagating purity transitively (a
// `pure` function may only call functions that are themselves pure) and
// determining tail-call-optimization eligibility (direct self-recursion
// only, never mutual recursion, per spec.md §4.6).
type CallGraph struct {
	edges map[string]map[string]bool // caller -> set of callees, by qualified name
}

func NewCallGraph() *CallGraph {
	return &CallGraph{edges: make(map[string]map[string]bool)}
}

func (g *CallGraph) AddEdge(caller, callee string) {
	if g.edges[caller] == nil {
		g.edges[caller] = make(map[string]bool)
	}
	g.edges[caller][callee] = true
}

// CollectCalls walks a function body recording every CallExpr/MethodCallExpr
// target reachable without descending into nested closures' own bodies
// being attributed to the closure rather than the enclosing function —
// closures share their enclosing function's purity obligation, so calls
// inside a ClosureExpr body are still attributed to caller.
func (g *CallGraph) CollectCalls(caller string, body ast.Expr, resolve func(ast.Expr) (string, bool)) {
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		if callee, ok := resolve(e); ok {
			g.AddEdge(caller, callee)
		}
		switch n := e.(type) {
		case *ast.CallExpr:
			walk(n.Callee)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.MethodCallExpr:
			walk(n.Receiver)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.AssignExpr:
			walk(n.Target)
			walk(n.Value)
		case *ast.LetExpr:
			walk(n.Value)
			walk(n.Body)
		case *ast.BlockExpr:
			for _, s := range n.Statements {
				walk(s)
			}
			walk(n.Tail)
		case *ast.IfExpr:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.MatchExpr:
			walk(n.Scrutinee)
			for _, arm := range n.Arms {
				walk(arm.Guard)
				walk(arm.Body)
			}
		case *ast.WhileExpr:
			walk(n.Cond)
			walk(n.Body)
		case *ast.ForExpr:
			walk(n.Iter)
			walk(n.Body)
		case *ast.LoopExpr:
			walk(n.Body)
		case *ast.BreakExpr:
			walk(n.Value)
		case *ast.ReturnExpr:
			walk(n.Value)
		case *ast.FieldExpr:
			walk(n.Receiver)
		case *ast.IndexExpr:
			walk(n.Receiver)
			walk(n.Index)
		case *ast.CastExpr:
			walk(n.Value)
		case *ast.ClosureExpr:
			walk(n.Body)
		case *ast.TupleLitExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		case *ast.ArrayLitExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		case *ast.OldExpr:
			walk(n.Value)
		}
	}
	walk(body)
}

// SCCs returns the strongly-connected components of the call graph via
// Tarjan's algorithm, in no particular order. A component of size 1 whose
// sole member has no self-edge is a leaf with no recursion; size 1 with a
// self-edge is direct self-recursion (TCO-eligible); size > 1 is mutual
// recursion (never TCO-eligible, per spec.md §4.6).
func (g *CallGraph) SCCs() [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var out [][]string

	var nodes []string
	seen := make(map[string]bool)
	for caller, callees := range g.edges {
		if !seen[caller] {
			seen[caller] = true
			nodes = append(nodes, caller)
		}
		for callee := range callees {
			if !seen[callee] {
				seen[callee] = true
				nodes = append(nodes, callee)
			}
		}
	}

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for w := range g.edges[v] {
			if _, ok := indices[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			out = append(out, comp)
		}
	}

	for _, v := range nodes {
		if _, ok := indices[v]; !ok {
			strongconnect(v)
		}
	}
	return out
}

// IsDirectSelfRecursive reports whether fn calls itself directly, making
// it eligible for tail-call optimization at the call site (spec.md §4.6:
// "TCO restricted to direct self-recursion only, not mutual recursion").
func (g *CallGraph) IsDirectSelfRecursive(fn string) bool {
	return g.edges[fn] != nil && g.edges[fn][fn]
}

// PropagatePurity marks, given an initial set of functions already known
// to be impure (those with I/O or mutation in their own body), every
// function that transitively calls an impure function as impure too —
// spec.md §4.4 "purity violation" checking for `pure`-annotated functions.
func (g *CallGraph) PropagatePurity(impure map[string]bool) map[string]bool {
	changed := true
	for changed {
		changed = false
		for caller, callees := range g.edges {
			if impure[caller] {
				continue
			}
			for callee := range callees {
				if impure[callee] {
					impure[caller] = true
					changed = true
					break
				}
			}
		}
	}
	return impure
}
