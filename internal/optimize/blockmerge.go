package optimize

import "github.com/sunholo/bmb/internal/mir"

// mergeBlocks implements spec.md §4.7 pass 5: merge a block with its
// unique successor if the latter has a unique predecessor, folding the
// successor's statements and terminator into the predecessor and
// deleting the now-unreachable successor block.
func mergeBlocks(fn *mir.Function) bool {
	changed := false
	for {
		preds := predecessorCounts(fn)
		mergedThisPass := false
		for id, b := range fn.Blocks {
			jump, ok := b.Term.(*mir.Jump)
			if !ok || jump.Target == id || jump.Target == fn.Entry {
				continue
			}
			if preds[jump.Target] != 1 {
				continue
			}
			succ, ok := fn.Blocks[jump.Target]
			if !ok {
				continue
			}
			b.Statements = append(b.Statements, succ.Statements...)
			b.Term = succ.Term
			delete(fn.Blocks, jump.Target)
			changed = true
			mergedThisPass = true
			break // predecessor counts are now stale; recompute
		}
		if !mergedThisPass {
			return changed
		}
	}
}

func predecessorCounts(fn *mir.Function) map[mir.BlockID]int {
	counts := make(map[mir.BlockID]int)
	for _, b := range fn.Blocks {
		switch t := b.Term.(type) {
		case *mir.Jump:
			counts[t.Target]++
		case *mir.Branch:
			counts[t.Then]++
			counts[t.Else]++
		case *mir.Switch:
			for _, c := range t.Cases {
				counts[c.Target]++
			}
			counts[t.Default]++
		}
	}
	return counts
}
