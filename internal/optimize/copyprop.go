package optimize

import "github.com/sunholo/bmb/internal/mir"

// propagateCopies implements spec.md §4.7 pass 4: replace uses of a local
// x defined by `x = y` with y. The copy's own Assign statement is left in
// place for eliminateDeadCode to remove once it observes x is unused —
// keeping this pass single-purpose matches the rest of the sequence.
func propagateCopies(fn *mir.Function) bool {
	copyOf := make(map[mir.LocalID]mir.Operand)
	for _, b := range fn.Blocks {
		for _, s := range b.Statements {
			asn, ok := s.(*mir.Assign)
			if !ok {
				continue
			}
			if use, ok := asn.Value.(*mir.UseOperand); ok {
				copyOf[asn.Dst] = use.Op
			}
		}
	}
	if len(copyOf) == 0 {
		return false
	}

	resolve := func(op mir.Operand) mir.Operand {
		seen := make(map[mir.LocalID]bool)
		for {
			ref, ok := op.(mir.LocalRef)
			if !ok {
				return op
			}
			if seen[ref.ID] {
				return op // copy cycle guard; should not happen in well-formed MIR
			}
			seen[ref.ID] = true
			src, ok := copyOf[ref.ID]
			if !ok {
				return op
			}
			op = src
		}
	}

	changed := false
	rewrite := func(op mir.Operand) mir.Operand {
		r := resolve(op)
		if r != op {
			changed = true
		}
		return r
	}

	for _, b := range fn.Blocks {
		for i, s := range b.Statements {
			b.Statements[i] = rewriteStatementOperands(s, rewrite)
		}
		b.Term = rewriteTerminatorOperands(b.Term, rewrite)
	}
	return changed
}

func rewriteStatementOperands(s mir.Statement, f func(mir.Operand) mir.Operand) mir.Statement {
	switch v := s.(type) {
	case *mir.Assign:
		return &mir.Assign{Dst: v.Dst, Value: rewriteRValueOperands(v.Value, f)}
	case *mir.Store:
		return &mir.Store{Addr: f(v.Addr), Value: f(v.Value)}
	case *mir.Call:
		args := make([]mir.Operand, len(v.Args))
		for i, a := range v.Args {
			args[i] = f(a)
		}
		return &mir.Call{Dst: v.Dst, Callee: v.Callee, Args: args}
	case *mir.Intrinsic:
		args := make([]mir.Operand, len(v.Args))
		for i, a := range v.Args {
			args[i] = f(a)
		}
		return &mir.Intrinsic{Dst: v.Dst, Name: v.Name, Args: args}
	default:
		return s
	}
}

func rewriteRValueOperands(rv mir.RValue, f func(mir.Operand) mir.Operand) mir.RValue {
	switch v := rv.(type) {
	case *mir.UseOperand:
		return &mir.UseOperand{Op: f(v.Op)}
	case *mir.BinOp:
		return &mir.BinOp{Op: v.Op, Left: f(v.Left), Right: f(v.Right)}
	case *mir.UnOp:
		return &mir.UnOp{Op: v.Op, Operand: f(v.Operand)}
	case *mir.FieldLoad:
		return &mir.FieldLoad{Base: f(v.Base), Index: v.Index}
	case *mir.IndexLoad:
		return &mir.IndexLoad{Base: f(v.Base), Index: f(v.Index)}
	case *mir.MakeTuple:
		elems := make([]mir.Operand, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = f(e)
		}
		return &mir.MakeTuple{Elems: elems}
	case *mir.MakeVariant:
		fields := make([]mir.Operand, len(v.Fields))
		for i, field := range v.Fields {
			fields[i] = f(field)
		}
		return &mir.MakeVariant{Enum: v.Enum, Variant: v.Variant, Fields: fields}
	default:
		return rv
	}
}

func rewriteTerminatorOperands(t mir.Terminator, f func(mir.Operand) mir.Operand) mir.Terminator {
	switch v := t.(type) {
	case *mir.Return:
		if v.Value == nil {
			return v
		}
		return &mir.Return{Value: f(v.Value)}
	case *mir.Branch:
		return &mir.Branch{Cond: f(v.Cond), Then: v.Then, Else: v.Else, CondText: v.CondText}
	case *mir.Switch:
		return &mir.Switch{Discriminant: f(v.Discriminant), Cases: v.Cases, Default: v.Default}
	default:
		return t
	}
}
