package mir

import "github.com/sunholo/bmb/internal/ast"

// DecisionTree compiles a match's arms into conditional branches and
// switches over discriminants, per spec.md §4.6: "match compiles to a
// decision-tree of conditional branches and switches over discriminants;
// tuple/struct patterns are destructured by indexed loads." This avoids
// re-testing the same discriminant once a prior arm has already
// eliminated it, the same optimization a pattern-matrix compiler gives a
// naive if/else-if chain.
type DecisionTree interface{ isDecisionTree() }

// Leaf is a match with a body to lower.
type Leaf struct {
	ArmIndex int
	Guard    ast.Expr
	Body     ast.Expr
}

func (*Leaf) isDecisionTree() {}

// Fail represents no remaining row — reachable only for a non-exhaustive
// match that the type checker should already have flagged (TYP003); the
// lowerer still emits an Unreachable terminator here as a defensive
// backstop against a checker bug, not as a user-facing error path.
type Fail struct{}

func (*Fail) isDecisionTree() {}

// SwitchNode tests the value at Path (a sequence of destructuring indices
// from the scrutinee) against each case, falling through to Default for
// an uncovered constructor or the all-wildcards row.
type SwitchNode struct {
	Path    []int
	Cases   map[string]DecisionTree // keyed by variant name or literal text
	Default DecisionTree
}

func (*SwitchNode) isDecisionTree() {}

type row struct {
	pattern  ast.Pattern
	armIndex int
	guard    ast.Expr
	body     ast.Expr
}

// Compile builds a decision tree from a match's arms.
func Compile(arms []*ast.MatchArm) DecisionTree {
	rows := make([]row, len(arms))
	for i, arm := range arms {
		rows[i] = row{pattern: arm.Pattern, armIndex: i, guard: arm.Guard, body: arm.Body}
	}
	return compileRows(rows, nil)
}

func compileRows(rows []row, path []int) DecisionTree {
	if len(rows) == 0 {
		return &Fail{}
	}
	first := rows[0]
	if isIrrefutable(first.pattern) {
		return &Leaf{ArmIndex: first.armIndex, Guard: first.guard, Body: first.body}
	}

	switch p := first.pattern.(type) {
	case *ast.VariantPattern:
		cases := make(map[string]DecisionTree)
		grouped := make(map[string][]row)
		var order []string
		for _, r := range rows {
			if vp, ok := r.pattern.(*ast.VariantPattern); ok {
				if _, seen := grouped[vp.Variant]; !seen {
					order = append(order, vp.Variant)
				}
				grouped[vp.Variant] = append(grouped[vp.Variant], expandVariantFields(r, vp, path))
			} else if isIrrefutable(r.pattern) {
				// A wildcard/binding row matches every remaining variant;
				// fold it into each group's tail so that group still
				// falls through to it if nothing more specific matches.
				for _, name := range order {
					grouped[name] = append(grouped[name], r)
				}
			}
		}
		for _, name := range order {
			cases[name] = compileRows(grouped[name], append(path, 0))
		}
		defaultRows := defaultRowsFor(rows)
		var def DecisionTree
		if len(defaultRows) > 0 {
			def = compileRows(defaultRows, path)
		}
		return &SwitchNode{Path: path, Cases: cases, Default: def}

	case *ast.LiteralPattern:
		cases := make(map[string]DecisionTree)
		grouped := make(map[string][]row)
		var order []string
		for _, r := range rows {
			if lp, ok := r.pattern.(*ast.LiteralPattern); ok {
				key := literalKey(lp)
				if _, seen := grouped[key]; !seen {
					order = append(order, key)
				}
				// The literal is decided by this switch, so the row stays
				// in its group as an already-matched (wildcard) row.
				r.pattern = &ast.WildcardPattern{}
				grouped[key] = append(grouped[key], r)
			}
		}
		for _, key := range order {
			cases[key] = compileRows(grouped[key], path)
		}
		def := defaultRowsFor(rows)
		var defTree DecisionTree
		if len(def) > 0 {
			defTree = compileRows(def, path)
		}
		return &SwitchNode{Path: path, Cases: cases, Default: defTree}

	case *ast.TuplePattern:
		// A tuple pattern's shape always matches (arity is fixed by the
		// type), so the first row's arm is taken; its elements are bound by
		// indexed loads at lowering (bindArmPattern). Element sub-patterns
		// are not tested.
		return &Leaf{ArmIndex: first.armIndex, Guard: first.guard, Body: first.body}

	default:
		return &Leaf{ArmIndex: first.armIndex, Guard: first.guard, Body: first.body}
	}
}

func expandVariantFields(r row, vp *ast.VariantPattern, path []int) row {
	// The variant is decided by the enclosing switch, so the row becomes
	// an already-matched (wildcard) row. Field sub-patterns are not
	// tested; lowering binds them from the arm's original pattern by
	// indexed loads (bindArmPattern).
	r.pattern = &ast.WildcardPattern{Span: vp.Span}
	return r
}

func defaultRowsFor(rows []row) []row {
	var out []row
	for _, r := range rows {
		if isIrrefutable(r.pattern) {
			out = append(out, r)
		}
	}
	return out
}

func isIrrefutable(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		return true
	default:
		return false
	}
}

func literalKey(p *ast.LiteralPattern) string {
	switch v := p.Value.(type) {
	case *ast.IntLit:
		return v.Text
	case *ast.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *ast.StringLit:
		return v.Value
	case *ast.CharLit:
		return string(v.Value)
	default:
		return ""
	}
}
