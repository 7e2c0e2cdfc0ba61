package optimize

import "github.com/sunholo/bmb/internal/mir"

// foldConstants implements spec.md §4.7 pass 1: evaluate pure binary/unary
// ops on constant operands, replacing the Assign's RValue with a
// UseOperand of the folded constant.
func foldConstants(fn *mir.Function) bool {
	changed := false
	for _, b := range fn.Blocks {
		for i, s := range b.Statements {
			asn, ok := s.(*mir.Assign)
			if !ok {
				continue
			}
			if folded, ok := foldRValue(asn.Value); ok {
				b.Statements[i] = &mir.Assign{Dst: asn.Dst, Value: &mir.UseOperand{Op: folded}}
				changed = true
			}
		}
	}
	return changed
}

func foldRValue(rv mir.RValue) (mir.Operand, bool) {
	switch v := rv.(type) {
	case *mir.BinOp:
		return foldBinOp(v)
	case *mir.UnOp:
		return foldUnOp(v)
	}
	return nil, false
}

func foldBinOp(v *mir.BinOp) (mir.Operand, bool) {
	li, lok := v.Left.(mir.ConstInt)
	ri, rok := v.Right.(mir.ConstInt)
	if lok && rok {
		return foldIntOp(v.Op, li, ri)
	}
	lb, lok := v.Left.(mir.ConstBool)
	rb, rok := v.Right.(mir.ConstBool)
	if lok && rok {
		return foldBoolOp(v.Op, lb, rb)
	}
	return nil, false
}

func foldIntOp(op string, l, r mir.ConstInt) (mir.Operand, bool) {
	switch op {
	case "+":
		return mir.ConstInt{Val: l.Val + r.Val, Ty: l.Ty}, true
	case "-":
		return mir.ConstInt{Val: l.Val - r.Val, Ty: l.Ty}, true
	case "*":
		return mir.ConstInt{Val: l.Val * r.Val, Ty: l.Ty}, true
	case "/":
		if r.Val == 0 {
			return nil, false // division by zero is a verifier obligation, not a fold
		}
		return mir.ConstInt{Val: l.Val / r.Val, Ty: l.Ty}, true
	case "%":
		if r.Val == 0 {
			return nil, false
		}
		return mir.ConstInt{Val: l.Val % r.Val, Ty: l.Ty}, true
	case "==":
		return mir.ConstBool{Val: l.Val == r.Val}, true
	case "!=":
		return mir.ConstBool{Val: l.Val != r.Val}, true
	case "<":
		return mir.ConstBool{Val: l.Val < r.Val}, true
	case "<=":
		return mir.ConstBool{Val: l.Val <= r.Val}, true
	case ">":
		return mir.ConstBool{Val: l.Val > r.Val}, true
	case ">=":
		return mir.ConstBool{Val: l.Val >= r.Val}, true
	default:
		// Overflow-variant operators (+% +| +? ...) are left for the LLVM
		// emitter, which lowers their exact wrap/saturate/option semantics
		// directly — folding them here would have to duplicate that logic.
		return nil, false
	}
}

func foldBoolOp(op string, l, r mir.ConstBool) (mir.Operand, bool) {
	switch op {
	case "and":
		return mir.ConstBool{Val: l.Val && r.Val}, true
	case "or":
		return mir.ConstBool{Val: l.Val || r.Val}, true
	case "implies":
		return mir.ConstBool{Val: !l.Val || r.Val}, true
	case "==":
		return mir.ConstBool{Val: l.Val == r.Val}, true
	case "!=":
		return mir.ConstBool{Val: l.Val != r.Val}, true
	default:
		return nil, false
	}
}

func foldUnOp(v *mir.UnOp) (mir.Operand, bool) {
	switch operand := v.Operand.(type) {
	case mir.ConstInt:
		if v.Op == "-" {
			return mir.ConstInt{Val: -operand.Val, Ty: operand.Ty}, true
		}
	case mir.ConstBool:
		if v.Op == "not" {
			return mir.ConstBool{Val: !operand.Val}, true
		}
	}
	return nil, false
}
