// Package iface holds the three process-wide, stage-local symbol tables
// spec.md §3 "Symbol Tables" says resolution produces: a module registry, a
// type registry, and a function registry. Each is built once by
// internal/module and is read-only to every later stage (type checker,
// verifier, MIR lowerer) — enforced here by a Builder/immutable split
// rather than by convention alone.
package iface

import (
	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/types"
)

// FuncSig is a function registry entry: spec.md §3 "function name ->
// signature (parameter types, return type, contract clauses, purity
// flag)".
type FuncSig struct {
	Module     string
	Name       string
	Generics   []string
	Params     []types.Type
	ParamNames []string
	Result     types.Type
	Contracts  []*ast.Contract
	Pure       bool
	Pub        bool
	Decl       *ast.FuncDecl
}

// TypeDecl is a type registry entry: a struct, enum, or alias declaration.
// No stage fills in Struct or Enum; they stay nil, and later stages read
// the declaration's shape from AST.
type TypeDecl struct {
	Module   string
	Name     string
	Generics []string
	Pub      bool
	AST      ast.Item // *ast.StructDecl, *ast.EnumDecl, or *ast.TypeAliasDecl
	Struct   *StructShape
	Enum     *EnumShape
}

type StructShape struct {
	Fields     []string
	FieldTypes map[string]types.Type
}

type EnumShape struct {
	Variants     []string
	VariantArity map[string]int
	VariantTypes map[string][]types.Type
}

// Module is one compiled module's exported surface: the subset of its
// declarations visible to importers (spec.md §4.3 "Visibility").
type Module struct {
	Path      []string
	Functions map[string]*FuncSig
	Types     map[string]*TypeDecl
}

func (m *Module) PathString() string {
	s := ""
	for i, seg := range m.Path {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}

// Tables is the immutable bundle of the three registries, returned by
// Builder.Finish. Lookups are a single map access (spec.md §3: "a cached
// string-keyed index backs hot lookups (O(1) per query)").
type Tables struct {
	modules   map[string]*Module
	types     map[string]*TypeDecl // keyed "module::Name"
	functions map[string]*FuncSig  // keyed "module::name"
	built     bool
}

// Module returns the registered module at path, if any.
func (t *Tables) Module(path string) (*Module, bool) {
	m, ok := t.modules[path]
	return m, ok
}

// Type looks up a type declaration by fully-qualified "module::Name".
func (t *Tables) Type(qualifiedName string) (*TypeDecl, bool) {
	d, ok := t.types[qualifiedName]
	return d, ok
}

// Function looks up a function signature by fully-qualified
// "module::name".
func (t *Tables) Function(qualifiedName string) (*FuncSig, bool) {
	f, ok := t.functions[qualifiedName]
	return f, ok
}

// AllModules returns every registered module, for callers (such as
// internal/pipeline) that need to iterate deterministically; callers must
// sort the result themselves if order matters, since map iteration order
// is not guaranteed.
func (t *Tables) AllModules() []*Module {
	out := make([]*Module, 0, len(t.modules))
	for _, m := range t.modules {
		out = append(out, m)
	}
	return out
}

// Builder constructs Tables incrementally during resolution; once Finish
// is called the result is treated as immutable by every later stage
// (spec.md §5 "Symbol tables are built once and then immutable; no
// synchronization").
type Builder struct {
	tables *Tables
}

func NewBuilder() *Builder {
	return &Builder{tables: &Tables{
		modules:   make(map[string]*Module),
		types:     make(map[string]*TypeDecl),
		functions: make(map[string]*FuncSig),
	}}
}

func (b *Builder) ensureModule(path []string) *Module {
	key := joinPath(path)
	m, ok := b.tables.modules[key]
	if !ok {
		m = &Module{Path: path, Functions: make(map[string]*FuncSig), Types: make(map[string]*TypeDecl)}
		b.tables.modules[key] = m
	}
	return m
}

// AddFunction registers a function signature under its declaring module.
func (b *Builder) AddFunction(modulePath []string, sig *FuncSig) {
	m := b.ensureModule(modulePath)
	sig.Module = joinPath(modulePath)
	m.Functions[sig.Name] = sig
	b.tables.functions[sig.Module+"::"+sig.Name] = sig
}

// AddType registers a type declaration under its declaring module.
func (b *Builder) AddType(modulePath []string, decl *TypeDecl) {
	m := b.ensureModule(modulePath)
	decl.Module = joinPath(modulePath)
	m.Types[decl.Name] = decl
	b.tables.types[decl.Module+"::"+decl.Name] = decl
}

// Finish seals the builder and returns the immutable Tables. Calling any
// Add* method after Finish is a programming error in the caller
// (internal/module never does this — resolution completes, then the
// pipeline moves on); Finish itself is cheap to call more than once.
func (b *Builder) Finish() *Tables {
	b.tables.built = true
	return b.tables
}

func joinPath(path []string) string {
	s := ""
	for i, seg := range path {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}
