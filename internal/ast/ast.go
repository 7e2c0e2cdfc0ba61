// Package ast defines BMB's abstract syntax tree: the tagged-variant node
// shapes of spec.md §3 ("AST Node"). Every node carries a Span; spans are
// contiguous and monotonically non-decreasing within a file (§3 invariant
// i).
package ast

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int // byte offset, used for SID calculation and sink ordering
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a contiguous byte range within one file.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface every AST node satisfies.
type Node interface {
	Pos() Span
}

// ============================================================================
// File / items
// ============================================================================

// File is a parsed compilation unit.
type File struct {
	Module  *ModuleDecl
	Imports []*UseDecl
	Items   []Item
	Span    Span
}

func (f *File) Pos() Span { return f.Span }

// ModuleDecl declares the module path of a file ("mod a::b;").
type ModuleDecl struct {
	Path []string
	Span Span
}

func (m *ModuleDecl) Pos() Span { return m.Span }

// UseDecl binds one or more names from a module path into scope.
// "use a::b::c" produces one UseDecl with Names=["c"]; "use a::b::{c,d}" is
// sugar for two UseDecls, one per name, per spec.md §4.3.
type UseDecl struct {
	Path  []string
	Names []string // local bindings introduced; len==1 for a plain "use a::b::c"
	Span  Span
}

func (u *UseDecl) Pos() Span { return u.Span }

// Item is a top-level declaration: function, type alias, struct, enum, or
// nested module.
type Item interface {
	Node
	itemNode()
}

// FuncDecl is a function declaration/definition.
type FuncDecl struct {
	Name       string
	Pub        bool
	Pure       bool
	Generics   []string
	Params     []*Param
	ReturnType TypeExpr
	Contracts  []*Contract
	Body       Expr // a Block expression, or the RHS of "= expr;" form
	Span       Span
}

func (*FuncDecl) itemNode()  {}
func (f *FuncDecl) Pos() Span { return f.Span }

// Param is one function parameter.
type Param struct {
	Name string
	Type TypeExpr
	Span Span
}

// TypeAliasDecl is "type Name<gens> = TypeExpr;".
type TypeAliasDecl struct {
	Name     string
	Pub      bool
	Generics []string
	Type     TypeExpr
	Span     Span
}

func (*TypeAliasDecl) itemNode()   {}
func (t *TypeAliasDecl) Pos() Span { return t.Span }

// StructDecl is "struct Name<gens> { field: Type, ... }".
type StructDecl struct {
	Name     string
	Pub      bool
	Generics []string
	Fields   []*FieldDecl
	Span     Span
}

func (*StructDecl) itemNode()   {}
func (s *StructDecl) Pos() Span { return s.Span }

type FieldDecl struct {
	Name string
	Type TypeExpr
	Span Span
}

// EnumDecl is "enum Name<gens> { Variant(Type,...), ... }".
type EnumDecl struct {
	Name     string
	Pub      bool
	Generics []string
	Variants []*VariantDecl
	Span     Span
}

func (*EnumDecl) itemNode()   {}
func (e *EnumDecl) Pos() Span { return e.Span }

type VariantDecl struct {
	Name   string
	Fields []TypeExpr // positional tuple-style payload; empty for a unit variant
	Span   Span
}

// ModuleItem is a nested "mod name { items... }".
type ModuleItem struct {
	Name  string
	Pub   bool
	Items []Item
	Span  Span
}

func (*ModuleItem) itemNode()   {}
func (m *ModuleItem) Pos() Span { return m.Span }

// ============================================================================
// Contracts
// ============================================================================

// ContractKind distinguishes pre/post/invariant clauses (spec.md §3
// "Contract clause").
type ContractKind int

const (
	ContractPre ContractKind = iota
	ContractPost
	ContractInvariant
)

func (k ContractKind) String() string {
	switch k {
	case ContractPre:
		return "pre"
	case ContractPost:
		return "post"
	case ContractInvariant:
		return "invariant"
	default:
		return "?"
	}
}

// Contract is one "pre P", "post Q", or "invariant I" clause. Its
// Predicate is restricted to the pure sub-language (no mutation, no I/O,
// no impure calls) — enforced by the type checker's purity analysis, not
// by the parser.
type Contract struct {
	Kind      ContractKind
	Predicate Expr
	Span      Span
}

func (c *Contract) Pos() Span { return c.Span }
