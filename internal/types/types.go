// Package types implements spec.md §3's resolved "Type (internal)" lattice
// and §4.4's bidirectional, generics-aware, refinement-carrying type
// checker.
package types

import (
	"fmt"
	"strings"

	"github.com/sunholo/bmb/internal/ast"
)

// Type is a resolved, monomorphic-or-generic type. Equality is structural
// and ignores refinement predicates (spec.md §3 "Type (internal)");
// refinement compatibility is a verifier concern, not a structural one.
type Type interface {
	String() string
	Equals(Type) bool
	Substitute(map[string]Type) Type
}

// Prim is a primitive scalar type.
type Prim struct {
	Name string // "i8".."i128", "u8".."u128", "f32", "f64", "bool", "unit", "char", "String"
}

func (t *Prim) String() string { return t.Name }

func (t *Prim) Equals(other Type) bool {
	o, ok := other.(*Prim)
	return ok && o.Name == t.Name
}

func (t *Prim) Substitute(map[string]Type) Type { return t }

var (
	Bool   = &Prim{Name: "bool"}
	Unit   = &Prim{Name: "unit"}
	Char   = &Prim{Name: "char"}
	String = &Prim{Name: "String"}
	I64    = &Prim{Name: "i64"}
	F64    = &Prim{Name: "f64"}
)

// IsInteger reports whether a primitive name is one of the integer widths.
func IsInteger(name string) bool {
	switch name {
	case "i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize":
		return true
	}
	return false
}

// IsFloat reports whether a primitive name is a float width.
func IsFloat(name string) bool { return name == "f32" || name == "f64" }

// IsUnsigned reports whether an integer primitive name is unsigned.
func IsUnsigned(name string) bool { return strings.HasPrefix(name, "u") }

// TVar is an unresolved type variable, either a generic parameter awaiting
// monomorphization or (pre-defaulting) a polymorphic integer literal.
type TVar struct {
	Name string
}

func (t *TVar) String() string { return "'" + t.Name }

func (t *TVar) Equals(other Type) bool {
	o, ok := other.(*TVar)
	return ok && o.Name == t.Name
}

func (t *TVar) Substitute(subs map[string]Type) Type {
	if sub, ok := subs[t.Name]; ok {
		return sub
	}
	return t
}

// Named is a (possibly generic) user-declared type reference, after
// monomorphization carrying a fully-instantiated Args vector.
type Named struct {
	Module string // declaring module path, joined with "::"
	Name   string
	Args   []Type
}

func (t *Named) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

func (t *Named) Equals(other Type) bool {
	o, ok := other.(*Named)
	if !ok || o.Name != t.Name || o.Module != t.Module || len(o.Args) != len(t.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t *Named) Substitute(subs map[string]Type) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(subs)
	}
	return &Named{Module: t.Module, Name: t.Name, Args: args}
}

// MangledName returns the monomorphization-stable name used by the MIR
// lowerer and LLVM emitter for this instantiation (spec.md §4.8 "mangled
// monomorphization names").
func (t *Named) MangledName() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = mangleOne(a)
	}
	return t.Name + "$" + strings.Join(parts, "$")
}

func mangleOne(t Type) string {
	switch v := t.(type) {
	case *Prim:
		return v.Name
	case *Named:
		return v.MangledName()
	default:
		return strings.NewReplacer("<", "_", ">", "_", " ", "", ",", "_").Replace(t.String())
	}
}

// Tuple is a fixed-arity product type.
type Tuple struct {
	Elems []Type
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) Equals(other Type) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (t *Tuple) Substitute(subs map[string]Type) Type {
	elems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.Substitute(subs)
	}
	return &Tuple{Elems: elems}
}

// Func is a function type.
type Func struct {
	Params []Type
	Result Type
}

func (t *Func) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Result.String())
}

func (t *Func) Equals(other Type) bool {
	o, ok := other.(*Func)
	if !ok || len(o.Params) != len(t.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return t.Result.Equals(o.Result)
}

func (t *Func) Substitute(subs map[string]Type) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Substitute(subs)
	}
	return &Func{Params: params, Result: t.Result.Substitute(subs)}
}

// Ref is "&T" (Mut=false) or "&mut T" (Mut=true).
type Ref struct {
	Mut  bool
	Elem Type
}

func (t *Ref) String() string {
	if t.Mut {
		return "&mut " + t.Elem.String()
	}
	return "&" + t.Elem.String()
}

func (t *Ref) Equals(other Type) bool {
	o, ok := other.(*Ref)
	return ok && o.Mut == t.Mut && o.Elem.Equals(t.Elem)
}

func (t *Ref) Substitute(subs map[string]Type) Type {
	return &Ref{Mut: t.Mut, Elem: t.Elem.Substitute(subs)}
}

// Slice is "&[T]".
type Slice struct {
	Elem Type
}

func (t *Slice) String() string { return "&[" + t.Elem.String() + "]" }

func (t *Slice) Equals(other Type) bool {
	o, ok := other.(*Slice)
	return ok && o.Elem.Equals(t.Elem)
}

func (t *Slice) Substitute(subs map[string]Type) Type {
	return &Slice{Elem: t.Elem.Substitute(subs)}
}

// Optional is "T?".
type Optional struct {
	Elem Type
}

func (t *Optional) String() string { return t.Elem.String() + "?" }

func (t *Optional) Equals(other Type) bool {
	o, ok := other.(*Optional)
	return ok && o.Elem.Equals(t.Elem)
}

func (t *Optional) Substitute(subs map[string]Type) Type {
	return &Optional{Elem: t.Elem.Substitute(subs)}
}

// Refinement is "(base_type, predicate)": a pair whose predicate is a
// closed expression over a distinguished `self` identifier (spec.md §3
// "Type (internal)"). Equals ignores Predicate, matching the spec's
// structural-equality rule; refinement compatibility is checked by
// internal/verify, not here.
type Refinement struct {
	Base      Type
	Predicate ast.Expr
}

func (t *Refinement) String() string { return fmt.Sprintf("%s where <predicate>", t.Base.String()) }

func (t *Refinement) Equals(other Type) bool {
	o, ok := other.(*Refinement)
	return ok && t.Base.Equals(o.Base)
}

func (t *Refinement) Substitute(subs map[string]Type) Type {
	return &Refinement{Base: t.Base.Substitute(subs), Predicate: t.Predicate}
}

// Unrefine strips any number of Refinement wrappers, returning the
// underlying structural base type. Used wherever structural equality or
// MIR/LLVM lowering needs the non-refined shape.
func Unrefine(t Type) Type {
	for {
		r, ok := t.(*Refinement)
		if !ok {
			return t
		}
		t = r.Base
	}
}

// Scheme is a quantified type "∀α₁..αₙ. T" (spec.md §3 "Type scheme").
type Scheme struct {
	Vars []string
	Type Type
}

// Instantiate produces a monomorphic Type by substituting each quantified
// variable with the corresponding entry in args, in declaration order.
func (s *Scheme) Instantiate(args []Type) Type {
	subs := make(map[string]Type, len(s.Vars))
	for i, v := range s.Vars {
		if i < len(args) {
			subs[v] = args[i]
		}
	}
	return s.Type.Substitute(subs)
}
