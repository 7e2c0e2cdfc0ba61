package llvmir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/bmb/internal/mir"
)

// generateFunction emits one MIR function as an LLVM `define` block.
// Block labels are assigned in strictly ascending BlockID order (spec.md
// §4.8 "label numbering is per-function and strictly sequential"), not
// map-iteration order, since fn.Blocks is a Go map.
func (g *Generator) generateFunction(fn *mir.Function) string {
	g.fn = fn
	g.regs = make(map[mir.LocalID]string)

	var out strings.Builder

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		reg := "%p" + sanitizeName(p.Name)
		g.regs[p.Local] = reg
		params[i] = fmt.Sprintf("%s %s", mapType(p.Type), reg)
	}

	fmt.Fprintf(&out, "define %s @%s(%s) {\n", mapType(fn.Result), sanitizeName(fn.Name), strings.Join(params, ", "))

	for _, id := range orderedBlockIDs(fn) {
		out.WriteString(g.generateBlock(fn.Blocks[id]))
	}

	out.WriteString("}\n\n")
	return out.String()
}

func orderedBlockIDs(fn *mir.Function) []mir.BlockID {
	ids := make([]mir.BlockID, 0, len(fn.Blocks))
	for id := range fn.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Generator) generateBlock(b *mir.Block) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s:\n", blockLabel(b.ID))
	for _, s := range b.Statements {
		out.WriteString(g.generateStatement(s))
	}
	out.WriteString(g.generateTerminator(b.Term))
	return out.String()
}

func blockLabel(id mir.BlockID) string {
	if id == 0 {
		return "entry"
	}
	return fmt.Sprintf("bb%d", int(id))
}

func (g *Generator) reg(op mir.Operand) string {
	switch v := op.(type) {
	case mir.ConstInt:
		return fmt.Sprintf("%d", v.Val)
	case mir.ConstFloat:
		return fmt.Sprintf("%g", v.Val)
	case mir.ConstBool:
		if v.Val {
			return "1"
		}
		return "0"
	case mir.ConstString:
		return g.internString(v.Val)
	case mir.ConstUnit:
		return "undef"
	case mir.LocalRef:
		if r, ok := g.regs[v.ID]; ok {
			return r
		}
		r := fmt.Sprintf("%%l%d", int(v.ID))
		g.regs[v.ID] = r
		return r
	case mir.GlobalRef:
		return "@" + sanitizeName(v.Name)
	default:
		return "undef"
	}
}

func (g *Generator) destReg(id mir.LocalID) string {
	if r, ok := g.regs[id]; ok {
		return r
	}
	r := fmt.Sprintf("%%l%d", int(id))
	g.regs[id] = r
	return r
}

func (g *Generator) generateStatement(s mir.Statement) string {
	switch v := s.(type) {
	case *mir.Assign:
		return g.generateAssign(v)
	case *mir.Store:
		return fmt.Sprintf("  store i64 %s, i64* %s\n", g.reg(v.Value), g.reg(v.Addr))
	case *mir.Call:
		return g.generateCall(v)
	case *mir.Intrinsic:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = g.reg(a)
		}
		return fmt.Sprintf("  %s = call i64 @%s(%s)\n", g.destReg(v.Dst), v.Name, strings.Join(args, ", "))
	case *mir.DebugMarker:
		return fmt.Sprintf("  ; %s\n", v.Note)
	default:
		return ""
	}
}

func (g *Generator) generateCall(v *mir.Call) string {
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = fmt.Sprintf("i64 %s", g.reg(a))
	}
	call := fmt.Sprintf("call i64 @%s(%s)", sanitizeName(v.Callee), strings.Join(args, ", "))
	if v.Dst == nil {
		return fmt.Sprintf("  %s\n", call)
	}
	return fmt.Sprintf("  %s = %s\n", g.destReg(*v.Dst), call)
}

func (g *Generator) generateAssign(v *mir.Assign) string {
	dst := g.destReg(v.Dst)
	switch rv := v.Value.(type) {
	case *mir.UseOperand:
		// A plain copy has no LLVM instruction of its own; subsequent
		// references to dst are redirected straight to the source operand
		// so no `alloca`/`load` pair is ever emitted for it.
		g.regs[v.Dst] = g.reg(rv.Op)
		return ""
	case *mir.BinOp:
		if rv.Op == "implies" {
			notReg := fmt.Sprintf("%s.not", dst)
			return fmt.Sprintf("  %s = xor i1 %s, 1\n  %s = or i1 %s, %s\n", notReg, g.reg(rv.Left), dst, notReg, g.reg(rv.Right))
		}
		return fmt.Sprintf("  %s = %s\n", dst, g.binOpInstr(rv))
	case *mir.UnOp:
		if rv.Op == "not" {
			return fmt.Sprintf("  %s = xor i1 %s, 1\n", dst, g.reg(rv.Operand))
		}
		return fmt.Sprintf("  %s = sub i64 0, %s\n", dst, g.reg(rv.Operand))
	case *mir.FieldLoad:
		return fmt.Sprintf("  %s = extractvalue i64 %s, %d\n", dst, g.reg(rv.Base), rv.Index)
	case *mir.IndexLoad:
		return fmt.Sprintf("  %s = call i64 @vec_get(i8* %s, i64 %s)\n", dst, g.reg(rv.Base), g.reg(rv.Index))
	case *mir.MakeTuple:
		elems := make([]string, len(rv.Elems))
		for i, e := range rv.Elems {
			elems[i] = g.reg(e)
		}
		return fmt.Sprintf("  %s = call i64 @bmb_make_tuple(%s) ; tuple\n", dst, strings.Join(elems, ", "))
	case *mir.MakeVariant:
		fields := make([]string, len(rv.Fields))
		for i, f := range rv.Fields {
			fields[i] = g.reg(f)
		}
		return fmt.Sprintf("  %s = call %%enum.%s* @bmb_make_%s_%s(%s)\n", dst, sanitizeName(rv.Enum), sanitizeName(rv.Enum), sanitizeName(rv.Variant), strings.Join(fields, ", "))
	default:
		return ""
	}
}

// binOpInstr maps a MIR BinOp's textual operator (spec.md §4.1's four
// overflow-variant families plus comparisons/logic) to an LLVM
// instruction. Plain arithmetic uses ordinary add/sub/mul — the proof
// that it fits was already discharged as a verify obligation, so no
// runtime overflow check accompanies it. The wrapping `+% -% *%`
// operators use the same add/sub/mul, since LLVM's add/sub/mul without
// nsw/nuw flags already wrap in two's complement.
func (g *Generator) binOpInstr(v *mir.BinOp) string {
	l, r := g.reg(v.Left), g.reg(v.Right)
	switch v.Op {
	case "+", "+%":
		return fmt.Sprintf("add i64 %s, %s", l, r)
	case "-", "-%":
		return fmt.Sprintf("sub i64 %s, %s", l, r)
	case "*", "*%":
		return fmt.Sprintf("mul i64 %s, %s", l, r)
	case "/":
		return fmt.Sprintf("sdiv i64 %s, %s", l, r)
	case "%":
		return fmt.Sprintf("srem i64 %s, %s", l, r)
	case "+|":
		return fmt.Sprintf("call i64 @llvm.sadd.sat.i64(i64 %s, i64 %s)", l, r)
	case "-|":
		return fmt.Sprintf("call i64 @llvm.ssub.sat.i64(i64 %s, i64 %s)", l, r)
	case "*|":
		return fmt.Sprintf("call i64 @bmb_mul_sat_i64(i64 %s, i64 %s)", l, r)
	case "+?", "-?", "*?":
		return fmt.Sprintf("call { i1, i64 } @llvm.%s.with.overflow.i64(i64 %s, i64 %s)", overflowOpName(v.Op), l, r)
	case "==":
		return fmt.Sprintf("icmp eq i64 %s, %s", l, r)
	case "!=":
		return fmt.Sprintf("icmp ne i64 %s, %s", l, r)
	case "<":
		return fmt.Sprintf("icmp slt i64 %s, %s", l, r)
	case "<=":
		return fmt.Sprintf("icmp sle i64 %s, %s", l, r)
	case ">":
		return fmt.Sprintf("icmp sgt i64 %s, %s", l, r)
	case ">=":
		return fmt.Sprintf("icmp sge i64 %s, %s", l, r)
	case "and":
		return fmt.Sprintf("and i1 %s, %s", l, r)
	case "or":
		return fmt.Sprintf("or i1 %s, %s", l, r)
	default:
		return fmt.Sprintf("add i64 %s, %s ; unknown op %s", l, r, v.Op)
	}
}

func overflowOpName(op string) string {
	switch op {
	case "+?":
		return "sadd"
	case "-?":
		return "ssub"
	default:
		return "smul"
	}
}

func (g *Generator) generateTerminator(t mir.Terminator) string {
	switch v := t.(type) {
	case *mir.Return:
		if v.Value == nil {
			return "  ret void\n"
		}
		if _, ok := v.Value.(mir.ConstUnit); ok {
			return "  ret void\n"
		}
		return fmt.Sprintf("  ret i64 %s\n", g.reg(v.Value))
	case *mir.Jump:
		return fmt.Sprintf("  br label %%%s\n", blockLabel(v.Target))
	case *mir.Branch:
		return fmt.Sprintf("  br i1 %s, label %%%s, label %%%s\n", g.reg(v.Cond), blockLabel(v.Then), blockLabel(v.Else))
	case *mir.Switch:
		cases := make([]string, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = fmt.Sprintf("i64 %d, label %%%s", c.Value, blockLabel(c.Target))
		}
		return fmt.Sprintf("  switch i64 %s, label %%%s [ %s ]\n", g.reg(v.Discriminant), blockLabel(v.Default), strings.Join(cases, " "))
	case *mir.Unreachable:
		return "  unreachable\n"
	default:
		return "  unreachable\n"
	}
}
