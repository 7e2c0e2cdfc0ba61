package types

import "github.com/sunholo/bmb/internal/ast"

// MissingArm describes one combination of constructors not covered by any
// match arm, reported as a TYP003 diagnostic by the checker.
type MissingArm struct {
	Description string
}

// CheckExhaustiveness checks arms against the declared variant set of an
// enum scrutinee (spec.md §4.4 "Exhaustiveness": "checked ... over the
// declared sum structure of the scrutinee type"). The caller only calls
// it for enum scrutinees; matches on tuple, struct, or literal scrutinees
// are not checked for exhaustiveness.
func CheckExhaustiveness(variants []string, arms []*ast.MatchArm) []MissingArm {
	covered := make(map[string]bool, len(variants))
	wildcard := false
	for _, arm := range arms {
		if arm.Guard != nil {
			// A guarded arm never counts toward exhaustiveness: the guard
			// may reject the match at runtime.
			continue
		}
		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			wildcard = true
		case *ast.VariantPattern:
			covered[p.Variant] = true
		}
	}
	if wildcard {
		return nil
	}
	var missing []MissingArm
	for _, v := range variants {
		if !covered[v] {
			missing = append(missing, MissingArm{Description: v})
		}
	}
	return missing
}

// UnreachableArms returns the indices of arms that can never match because
// an earlier, unguarded arm already covers the same variant (or is a
// wildcard/binding that covers everything) — spec.md §4.4 "reachability".
func UnreachableArms(arms []*ast.MatchArm) []int {
	covered := make(map[string]bool)
	sawWildcard := false
	var unreachable []int
	for i, arm := range arms {
		if sawWildcard {
			unreachable = append(unreachable, i)
			continue
		}
		if arm.Guard != nil {
			continue
		}
		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			sawWildcard = true
		case *ast.VariantPattern:
			if covered[p.Variant] {
				unreachable = append(unreachable, i)
			}
			covered[p.Variant] = true
		}
	}
	return unreachable
}
