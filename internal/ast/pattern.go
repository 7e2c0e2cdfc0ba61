package ast

// Pattern is the tagged variant of pattern syntax (spec.md §3 "Pattern").
// Pattern nodes carry no type annotation; the type checker records the
// names a pattern binds in its environment (internal/types/env.go).
type Pattern interface {
	Node
	patternNode()
}

type WildcardPattern struct {
	Span Span
}

func (*WildcardPattern) patternNode() {}
func (p *WildcardPattern) Pos() Span  { return p.Span }

type BindingPattern struct {
	Name string
	Mut  bool
	Span Span
}

func (*BindingPattern) patternNode() {}
func (p *BindingPattern) Pos() Span  { return p.Span }

type LiteralPattern struct {
	Value Expr // one of IntLit, FloatLit, BoolLit, StringLit, CharLit
	Span  Span
}

func (*LiteralPattern) patternNode() {}
func (p *LiteralPattern) Pos() Span  { return p.Span }

type TuplePattern struct {
	Elems []Pattern
	Span  Span
}

func (*TuplePattern) patternNode() {}
func (p *TuplePattern) Pos() Span  { return p.Span }

type StructPattern struct {
	Type   string
	Fields []*FieldPattern
	Rest   bool // trailing ".." to allow unmatched fields
	Span   Span
}

func (*StructPattern) patternNode() {}
func (p *StructPattern) Pos() Span  { return p.Span }

type FieldPattern struct {
	Name    string
	Pattern Pattern
	Span    Span
}

// VariantPattern matches an enum variant, e.g. "Opt::Some(v)" or
// "Opt::None".
type VariantPattern struct {
	Enum    string // enum type name, "" if elided and resolved from scrutinee type
	Variant string
	Fields  []Pattern // positional nested patterns; empty for a unit variant
	Span    Span
}

func (*VariantPattern) patternNode() {}
func (p *VariantPattern) Pos() Span  { return p.Span }
