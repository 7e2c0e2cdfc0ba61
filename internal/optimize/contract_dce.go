package optimize

import "github.com/sunholo/bmb/internal/mir"

// contractDCE implements spec.md §4.7 pass 3: if a branch condition is
// implied by a proved precondition or refinement predicate, the dead arm
// and its block are removed. proved carries two kinds of entries: cache
// keys (not looked up by this pass) and, for ObligationCallPre and
// ObligationRefinementCoercion obligations the solver proved,
// ast.UnparseExpr(predicate) text (internal/verify's record records
// both). A branch's Cond carries its own source text as Branch.CondText
// (set at lowering time), so a branch whose condition's text is a key in
// proved is known true regardless of what constant folding (pass 1)
// managed to reduce it to, and the else arm can be collapsed away; a
// branch already folded to a literal ConstBool (by pass 1, or by a prior
// iteration of this pass acting on a nested branch) is handled the same
// way. Either way the dead arm's block is cleared to an Unreachable
// terminator; the block itself stays in fn.Blocks, and the LLVM emitter
// still emits it as a block holding only `unreachable`.
func contractDCE(fn *mir.Function, proved map[string]bool) bool {
	changed := false
	for _, b := range fn.Blocks {
		branch, ok := b.Term.(*mir.Branch)
		if !ok {
			continue
		}

		var live, dead mir.BlockID
		switch cond := branch.Cond.(type) {
		case mir.ConstBool:
			live, dead = branch.Then, branch.Else
			if !cond.Val {
				live, dead = branch.Else, branch.Then
			}
		default:
			if branch.CondText == "" || !proved[branch.CondText] {
				continue
			}
			live, dead = branch.Then, branch.Else
		}

		b.Term = &mir.Jump{Target: live}
		changed = true
		if deadBlock, ok := fn.Blocks[dead]; ok && !blockReachableFrom(fn, live, dead) {
			deadBlock.Statements = nil
			deadBlock.Term = &mir.Unreachable{}
		}
	}
	return changed
}

// blockReachableFrom reports whether target is reachable from start by
// following Jump/Branch/Switch edges, used to avoid blanking out a block
// that both arms of some other branch still jump to.
func blockReachableFrom(fn *mir.Function, start, target mir.BlockID) bool {
	seen := map[mir.BlockID]bool{}
	stack := []mir.BlockID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		b, ok := fn.Blocks[id]
		if !ok {
			continue
		}
		switch t := b.Term.(type) {
		case *mir.Jump:
			stack = append(stack, t.Target)
		case *mir.Branch:
			stack = append(stack, t.Then, t.Else)
		case *mir.Switch:
			for _, c := range t.Cases {
				stack = append(stack, c.Target)
			}
			stack = append(stack, t.Default)
		}
	}
	return false
}
