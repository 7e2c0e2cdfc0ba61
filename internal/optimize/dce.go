package optimize

import "github.com/sunholo/bmb/internal/mir"

// eliminateDeadCode implements spec.md §4.7 pass 2: remove statements
// whose result is never used and which have no side effects. Call and
// Store statements are kept unconditionally — the optimizer has no
// per-callee purity table to consult here, so only the purely
// data-constructing Assign statements are eligible.
func eliminateDeadCode(fn *mir.Function) bool {
	used := collectUsedLocals(fn)
	changed := false
	for _, b := range fn.Blocks {
		kept := b.Statements[:0]
		for _, s := range b.Statements {
			if asn, ok := s.(*mir.Assign); ok && !used[asn.Dst] {
				changed = true
				continue
			}
			kept = append(kept, s)
		}
		b.Statements = kept
	}
	return changed
}

func collectUsedLocals(fn *mir.Function) map[mir.LocalID]bool {
	used := make(map[mir.LocalID]bool)
	mark := func(op mir.Operand) {
		if ref, ok := op.(mir.LocalRef); ok {
			used[ref.ID] = true
		}
	}
	for _, b := range fn.Blocks {
		for _, s := range b.Statements {
			markStatementOperands(s, mark)
		}
		markTerminatorOperands(b.Term, mark)
	}
	return used
}

func markStatementOperands(s mir.Statement, mark func(mir.Operand)) {
	switch v := s.(type) {
	case *mir.Assign:
		markRValueOperands(v.Value, mark)
	case *mir.Store:
		mark(v.Addr)
		mark(v.Value)
	case *mir.Call:
		for _, a := range v.Args {
			mark(a)
		}
	case *mir.Intrinsic:
		for _, a := range v.Args {
			mark(a)
		}
	}
}

func markRValueOperands(rv mir.RValue, mark func(mir.Operand)) {
	switch v := rv.(type) {
	case *mir.UseOperand:
		mark(v.Op)
	case *mir.BinOp:
		mark(v.Left)
		mark(v.Right)
	case *mir.UnOp:
		mark(v.Operand)
	case *mir.FieldLoad:
		mark(v.Base)
	case *mir.IndexLoad:
		mark(v.Base)
		mark(v.Index)
	case *mir.MakeTuple:
		for _, e := range v.Elems {
			mark(e)
		}
	case *mir.MakeVariant:
		for _, f := range v.Fields {
			mark(f)
		}
	}
}

func markTerminatorOperands(t mir.Terminator, mark func(mir.Operand)) {
	switch v := t.(type) {
	case *mir.Return:
		if v.Value != nil {
			mark(v.Value)
		}
	case *mir.Branch:
		mark(v.Cond)
	case *mir.Switch:
		mark(v.Discriminant)
	}
}
