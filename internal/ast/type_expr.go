package ast

// TypeExpr is the tagged variant of type-expression syntax (spec.md §3
// "Type expression"): named (with generic arguments), tuple, function
// type, slice, reference, optional, refinement.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedType is a (possibly generic) named type reference, e.g. "i64",
// "Vec<T>", "Opt<Point>".
type NamedType struct {
	Name string
	Args []TypeExpr
	Span Span
}

func (*NamedType) typeExprNode() {}
func (n *NamedType) Pos() Span   { return n.Span }

// TupleType is "(T1, T2, ...)".
type TupleType struct {
	Elems []TypeExpr
	Span  Span
}

func (*TupleType) typeExprNode() {}
func (t *TupleType) Pos() Span   { return t.Span }

// FuncType is "fn(T, ...) -> T".
type FuncType struct {
	Params []TypeExpr
	Result TypeExpr
	Span   Span
}

func (*FuncType) typeExprNode() {}
func (f *FuncType) Pos() Span   { return f.Span }

// SliceType is "&[T]".
type SliceType struct {
	Elem TypeExpr
	Span Span
}

func (*SliceType) typeExprNode() {}
func (s *SliceType) Pos() Span   { return s.Span }

// RefType is "&T" (shared) or "&mut T" (mutable).
type RefType struct {
	Mut  bool
	Elem TypeExpr
	Span Span
}

func (*RefType) typeExprNode() {}
func (r *RefType) Pos() Span   { return r.Span }

// OptionalType is "T?".
type OptionalType struct {
	Elem TypeExpr
	Span Span
}

func (*OptionalType) typeExprNode() {}
func (o *OptionalType) Pos() Span   { return o.Span }

// RefinementType is "T where <predicate>"; the predicate is an expression
// over a distinguished `self` identifier denoting the refined value.
type RefinementType struct {
	Base      TypeExpr
	Predicate Expr
	Span      Span
}

func (*RefinementType) typeExprNode() {}
func (r *RefinementType) Pos() Span   { return r.Span }
