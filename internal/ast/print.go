package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Unparse renders a File back to BMB source text. It is the basis of
// spec.md §8 P2 (parser round-trip): `unparse(parse(P))` must re-parse to
// an AST equal to `parse(P)` up to spans. Formatting is stable but not
// required to match the original program's whitespace.
func Unparse(f *File) string {
	var sb strings.Builder
	if f.Module != nil {
		sb.WriteString("mod " + strings.Join(f.Module.Path, "::") + ";\n")
	}
	for _, u := range f.Imports {
		sb.WriteString(unparseUse(u))
		sb.WriteString("\n")
	}
	for i, item := range f.Items {
		if i > 0 || len(f.Imports) > 0 || f.Module != nil {
			sb.WriteString("\n")
		}
		sb.WriteString(unparseItem(item))
		sb.WriteString("\n")
	}
	return sb.String()
}

func unparseUse(u *UseDecl) string {
	path := strings.Join(u.Path, "::")
	if len(u.Names) == 1 {
		return fmt.Sprintf("use %s::%s;", path, u.Names[0])
	}
	return fmt.Sprintf("use %s::{%s};", path, strings.Join(u.Names, ", "))
}

func unparseItem(item Item) string {
	switch it := item.(type) {
	case *FuncDecl:
		return unparseFunc(it)
	case *TypeAliasDecl:
		pub := pubPrefix(it.Pub)
		return fmt.Sprintf("%stype %s%s = %s;", pub, it.Name, genericsSuffix(it.Generics), unparseType(it.Type))
	case *StructDecl:
		pub := pubPrefix(it.Pub)
		fields := make([]string, len(it.Fields))
		for i, fld := range it.Fields {
			fields[i] = fmt.Sprintf("%s: %s", fld.Name, unparseType(fld.Type))
		}
		return fmt.Sprintf("%sstruct %s%s { %s }", pub, it.Name, genericsSuffix(it.Generics), strings.Join(fields, ", "))
	case *EnumDecl:
		pub := pubPrefix(it.Pub)
		variants := make([]string, len(it.Variants))
		for i, v := range it.Variants {
			if len(v.Fields) == 0 {
				variants[i] = v.Name
				continue
			}
			parts := make([]string, len(v.Fields))
			for j, t := range v.Fields {
				parts[j] = unparseType(t)
			}
			variants[i] = fmt.Sprintf("%s(%s)", v.Name, strings.Join(parts, ", "))
		}
		return fmt.Sprintf("%senum %s%s { %s }", pub, it.Name, genericsSuffix(it.Generics), strings.Join(variants, ", "))
	case *ModuleItem:
		pub := pubPrefix(it.Pub)
		parts := make([]string, len(it.Items))
		for i, sub := range it.Items {
			parts[i] = unparseItem(sub)
		}
		return fmt.Sprintf("%smod %s { %s }", pub, it.Name, strings.Join(parts, " "))
	default:
		return "/* unknown item */"
	}
}

func pubPrefix(pub bool) string {
	if pub {
		return "pub "
	}
	return ""
}

func genericsSuffix(gens []string) string {
	if len(gens) == 0 {
		return ""
	}
	return "<" + strings.Join(gens, ", ") + ">"
}

func unparseFunc(f *FuncDecl) string {
	var sb strings.Builder
	sb.WriteString(pubPrefix(f.Pub))
	if f.Pure {
		sb.WriteString("pure ")
	}
	sb.WriteString("fn " + f.Name + genericsSuffix(f.Generics) + "(")
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, unparseType(p.Type))
	}
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(") -> ")
	sb.WriteString(unparseType(f.ReturnType))
	for _, c := range f.Contracts {
		sb.WriteString(" " + c.Kind.String() + " " + unparseExpr(c.Predicate))
	}
	if block, ok := f.Body.(*BlockExpr); ok {
		sb.WriteString(" " + unparseExpr(block) + ";")
	} else {
		sb.WriteString(" = " + unparseExpr(f.Body) + ";")
	}
	return sb.String()
}

func unparseType(t TypeExpr) string {
	switch tt := t.(type) {
	case *NamedType:
		if len(tt.Args) == 0 {
			return tt.Name
		}
		parts := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			parts[i] = unparseType(a)
		}
		return fmt.Sprintf("%s<%s>", tt.Name, strings.Join(parts, ", "))
	case *TupleType:
		parts := make([]string, len(tt.Elems))
		for i, e := range tt.Elems {
			parts[i] = unparseType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *FuncType:
		parts := make([]string, len(tt.Params))
		for i, p := range tt.Params {
			parts[i] = unparseType(p)
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), unparseType(tt.Result))
	case *SliceType:
		return "&[" + unparseType(tt.Elem) + "]"
	case *RefType:
		if tt.Mut {
			return "&mut " + unparseType(tt.Elem)
		}
		return "&" + unparseType(tt.Elem)
	case *OptionalType:
		return unparseType(tt.Elem) + "?"
	case *RefinementType:
		return fmt.Sprintf("%s where %s", unparseType(tt.Base), unparseExpr(tt.Predicate))
	default:
		return "?"
	}
}

// UnparseExpr renders a single expression back to BMB source text, the
// same canonical form unparseItem/unparseFunc produce when walking a
// whole File. Exported for callers outside this package (internal/mir's
// lowerer, internal/optimize's contract-driven DCE) that need a stable
// textual key for an expression without round-tripping a whole File.
func UnparseExpr(e Expr) string {
	return unparseExpr(e)
}

func unparseExpr(e Expr) string {
	switch ex := e.(type) {
	case nil:
		return ""
	case *IntLit:
		return ex.Text
	case *FloatLit:
		return ex.Text
	case *BoolLit:
		return strconv.FormatBool(ex.Value)
	case *StringLit:
		return strconv.Quote(ex.Value)
	case *CharLit:
		return "'" + string(ex.Value) + "'"
	case *PathExpr:
		return strings.Join(ex.Segments, "::")
	case *RetExpr:
		return "ret"
	case *SelfExpr:
		return "self"
	case *OldExpr:
		return "old(" + unparseExpr(ex.Value) + ")"
	case *LetExpr:
		mut := ""
		if ex.Mut {
			mut = "mut "
		}
		typ := ""
		if ex.Type != nil {
			typ = ": " + unparseType(ex.Type)
		}
		return fmt.Sprintf("let %s%s%s = %s; %s", mut, ex.Name, typ, unparseExpr(ex.Value), unparseExpr(ex.Body))
	case *BlockExpr:
		var sb strings.Builder
		sb.WriteString("{ ")
		for _, s := range ex.Statements {
			sb.WriteString(unparseExpr(s))
			sb.WriteString("; ")
		}
		if ex.Tail != nil {
			sb.WriteString(unparseExpr(ex.Tail))
			sb.WriteString(" ")
		}
		sb.WriteString("}")
		return sb.String()
	case *IfExpr:
		s := fmt.Sprintf("if %s %s", unparseExpr(ex.Cond), unparseExpr(ex.Then))
		if ex.Else != nil {
			s += " else " + unparseExpr(ex.Else)
		}
		return s
	case *MatchExpr:
		var sb strings.Builder
		sb.WriteString("match " + unparseExpr(ex.Scrutinee) + " { ")
		for _, arm := range ex.Arms {
			sb.WriteString(unparsePattern(arm.Pattern))
			if arm.Guard != nil {
				sb.WriteString(" if " + unparseExpr(arm.Guard))
			}
			sb.WriteString(" => " + unparseExpr(arm.Body) + ", ")
		}
		sb.WriteString("}")
		return sb.String()
	case *WhileExpr:
		s := "while " + unparseExpr(ex.Cond) + " "
		for _, inv := range ex.Invariants {
			s += "invariant " + unparseExpr(inv.Predicate) + " "
		}
		return s + unparseExpr(ex.Body)
	case *ForExpr:
		return fmt.Sprintf("for %s in %s %s", ex.Binding, unparseExpr(ex.Iter), unparseExpr(ex.Body))
	case *LoopExpr:
		return "loop " + unparseExpr(ex.Body)
	case *BreakExpr:
		if ex.Value != nil {
			return "break " + unparseExpr(ex.Value)
		}
		return "break"
	case *ContinueExpr:
		return "continue"
	case *ReturnExpr:
		if ex.Value != nil {
			return "return " + unparseExpr(ex.Value)
		}
		return "return"
	case *CallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = unparseExpr(a)
		}
		return fmt.Sprintf("%s(%s)", unparseExpr(ex.Callee), strings.Join(args, ", "))
	case *MethodCallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = unparseExpr(a)
		}
		return fmt.Sprintf("%s.%s(%s)", unparseExpr(ex.Receiver), ex.Method, strings.Join(args, ", "))
	case *FieldExpr:
		return unparseExpr(ex.Receiver) + "." + ex.Field
	case *IndexExpr:
		return fmt.Sprintf("%s[%s]", unparseExpr(ex.Receiver), unparseExpr(ex.Index))
	case *ArrayLitExpr:
		parts := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			parts[i] = unparseExpr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *TupleLitExpr:
		parts := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			parts[i] = unparseExpr(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *StructLitExpr:
		parts := make([]string, len(ex.Fields))
		for i, fl := range ex.Fields {
			parts[i] = fl.Name + ": " + unparseExpr(fl.Value)
		}
		return fmt.Sprintf("%s { %s }", ex.Type, strings.Join(parts, ", "))
	case *ClosureExpr:
		params := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			if p.Type != nil {
				params[i] = p.Name + ": " + unparseType(p.Type)
			} else {
				params[i] = p.Name
			}
		}
		s := "|" + strings.Join(params, ", ") + "|"
		if ex.Result != nil {
			s += " -> " + unparseType(ex.Result)
		}
		return s + " " + unparseExpr(ex.Body)
	case *CastExpr:
		return unparseExpr(ex.Value) + " as " + unparseType(ex.Type)
	case *UnaryExpr:
		op := "-"
		if ex.Op == UnaryNot {
			op = "not "
		}
		return op + unparseExpr(ex.Operand)
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", unparseExpr(ex.Left), ex.Op.String(), unparseExpr(ex.Right))
	case *AssignExpr:
		return unparseExpr(ex.Target) + " = " + unparseExpr(ex.Value)
	default:
		return "?"
	}
}

func unparsePattern(p Pattern) string {
	switch pt := p.(type) {
	case *WildcardPattern:
		return "_"
	case *BindingPattern:
		if pt.Mut {
			return "mut " + pt.Name
		}
		return pt.Name
	case *LiteralPattern:
		return unparseExpr(pt.Value)
	case *TuplePattern:
		parts := make([]string, len(pt.Elems))
		for i, e := range pt.Elems {
			parts[i] = unparsePattern(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *StructPattern:
		parts := make([]string, len(pt.Fields))
		for i, f := range pt.Fields {
			parts[i] = f.Name + ": " + unparsePattern(f.Pattern)
		}
		rest := ""
		if pt.Rest {
			rest = ", .."
		}
		return fmt.Sprintf("%s { %s%s }", pt.Type, strings.Join(parts, ", "), rest)
	case *VariantPattern:
		prefix := pt.Variant
		if pt.Enum != "" {
			prefix = pt.Enum + "::" + pt.Variant
		}
		if len(pt.Fields) == 0 {
			return prefix
		}
		parts := make([]string, len(pt.Fields))
		for i, f := range pt.Fields {
			parts[i] = unparsePattern(f)
		}
		return fmt.Sprintf("%s(%s)", prefix, strings.Join(parts, ", "))
	default:
		return "_"
	}
}
