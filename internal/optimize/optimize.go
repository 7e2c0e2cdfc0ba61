// Package optimize implements spec.md §4.7's fixed MIR optimizer pass
// sequence, run to fixpoint (or a cap of 5 iterations) over each function
// independently. Every pass is required to preserve MIR's invariants
// (single entry, exactly one terminator per block, type-tagged operands);
// none of the five passes here introduces a new block or statement shape
// that §3 doesn't already define.
package optimize

import (
	"github.com/sunholo/bmb/internal/mir"
)

const maxIterations = 5

// Run applies the fixed pass sequence to fn until no pass reports a
// change, or maxIterations is reached, whichever comes first (spec.md
// §4.7: "runs until fixpoint or a cap of 5 iterations").
func Run(fn *mir.Function, proved map[string]bool) {
	for i := 0; i < maxIterations; i++ {
		changed := false
		changed = foldConstants(fn) || changed
		changed = eliminateDeadCode(fn) || changed
		changed = contractDCE(fn, proved) || changed
		changed = propagateCopies(fn) || changed
		changed = mergeBlocks(fn) || changed
		if !changed {
			return
		}
	}
}
