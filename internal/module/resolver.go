// Package module implements spec.md §4.3, the Name & Module Resolver: it
// registers every declaration into the three symbol tables of §3
// (internal/iface) and reports duplicate declarations and cyclic `use`
// imports. It does not bind identifier occurrences to declarations, does
// not check that `use` paths name existing items, and does not report
// unknown references (RES001 is reported later by internal/types).
package module

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/iface"
	"github.com/sunholo/bmb/internal/types"
)

// Resolver walks a set of parsed files and produces the symbol tables. It
// keeps no binding map from identifier occurrences to declarations.
type Resolver struct {
	builder *iface.Builder
	files   map[string]*ast.File // keyed by module path string
	diags   []*errors.Report
}

func NewResolver() *Resolver {
	return &Resolver{builder: iface.NewBuilder(), files: make(map[string]*ast.File)}
}

// AddFile registers a parsed file under the module path its ModuleDecl
// names (or the empty root module if absent).
func (r *Resolver) AddFile(f *ast.File) {
	path := ""
	if f.Module != nil {
		path = strings.Join(f.Module.Path, "::")
	}
	r.files[path] = f
}

// Resolve runs name/module resolution over every registered file and
// returns the built symbol tables. Cycle diagnostics come first; then
// diagnostics follow module path order (sorted by path string), then
// declaration order within each file, so resolver output is reproducible
// independent of map iteration.
func (r *Resolver) Resolve() (*iface.Tables, []*errors.Report) {
	var modulePaths []string
	for path := range r.files {
		modulePaths = append(modulePaths, path)
	}
	sort.Strings(modulePaths)

	r.checkCycles(modulePaths)

	for _, path := range modulePaths {
		r.registerDecls(path, r.files[path])
	}

	return r.builder.Finish(), r.diags
}

func (r *Resolver) errorf(code string, span ast.Span, format string, args ...any) {
	sp := &errors.Span{File: span.Start.File, Line: span.Start.Line, Column: span.Start.Column, ByteStart: span.Start.Offset, ByteEnd: span.End.Offset}
	r.diags = append(r.diags, errors.New(errors.KindResolve, code, "resolver", fmt.Sprintf(format, args...), sp))
}

func (r *Resolver) registerDecls(path string, f *ast.File) {
	pathSegs := strings.Split(path, "::")
	if path == "" {
		pathSegs = nil
	}
	seen := make(map[string]ast.Span)
	for _, item := range f.Items {
		r.registerItem(pathSegs, item, seen)
	}
}

func (r *Resolver) registerItem(pathSegs []string, item ast.Item, seen map[string]ast.Span) {
	switch d := item.(type) {
	case *ast.FuncDecl:
		if prev, ok := seen[d.Name]; ok {
			r.errorf("RES002", d.Span, "duplicate declaration %q (first declared at %s)", d.Name, prev.Start)
			return
		}
		seen[d.Name] = d.Span
		r.builder.AddFunction(pathSegs, funcSigOf(d))

	case *ast.TypeAliasDecl:
		if prev, ok := seen[d.Name]; ok {
			r.errorf("RES002", d.Span, "duplicate declaration %q (first declared at %s)", d.Name, prev.Start)
			return
		}
		seen[d.Name] = d.Span
		r.builder.AddType(pathSegs, &iface.TypeDecl{Name: d.Name, Generics: d.Generics, Pub: d.Pub, AST: d})

	case *ast.StructDecl:
		if prev, ok := seen[d.Name]; ok {
			r.errorf("RES002", d.Span, "duplicate declaration %q (first declared at %s)", d.Name, prev.Start)
			return
		}
		seen[d.Name] = d.Span
		r.builder.AddType(pathSegs, &iface.TypeDecl{Name: d.Name, Generics: d.Generics, Pub: d.Pub, AST: d})

	case *ast.EnumDecl:
		if prev, ok := seen[d.Name]; ok {
			r.errorf("RES002", d.Span, "duplicate declaration %q (first declared at %s)", d.Name, prev.Start)
			return
		}
		seen[d.Name] = d.Span
		r.builder.AddType(pathSegs, &iface.TypeDecl{Name: d.Name, Generics: d.Generics, Pub: d.Pub, AST: d})

	case *ast.ModuleItem:
		nested := append(append([]string{}, pathSegs...), d.Name)
		nestedSeen := make(map[string]ast.Span)
		for _, sub := range d.Items {
			r.registerItem(nested, sub, nestedSeen)
		}
	}
}

func funcSigOf(d *ast.FuncDecl) *iface.FuncSig {
	sig := &iface.FuncSig{Name: d.Name, Generics: d.Generics, Contracts: d.Contracts, Pure: d.Pure, Pub: d.Pub, Decl: d}
	for _, p := range d.Params {
		sig.ParamNames = append(sig.ParamNames, p.Name)
		sig.Params = append(sig.Params, placeholderType(p.Type))
	}
	sig.Result = placeholderType(d.ReturnType)
	return sig
}

// placeholderType produces a coarse types.Type from unresolved AST syntax
// so the function registry is usable for arity/name lookups immediately
// after resolution; internal/types replaces these with fully-elaborated
// types during checking (spec.md §4.4 runs after §4.3 and owns type
// identity).
func placeholderType(t ast.TypeExpr) types.Type {
	if t == nil {
		return types.Unit
	}
	switch v := t.(type) {
	case *ast.NamedType:
		if types.IsInteger(v.Name) || types.IsFloat(v.Name) {
			return &types.Prim{Name: v.Name}
		}
		switch v.Name {
		case "bool":
			return types.Bool
		case "unit":
			return types.Unit
		case "char":
			return types.Char
		case "String":
			return types.String
		}
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = placeholderType(a)
		}
		return &types.Named{Name: v.Name, Args: args}
	case *ast.RefType:
		return &types.Ref{Mut: v.Mut, Elem: placeholderType(v.Elem)}
	case *ast.SliceType:
		return &types.Slice{Elem: placeholderType(v.Elem)}
	case *ast.OptionalType:
		return &types.Optional{Elem: placeholderType(v.Elem)}
	case *ast.RefinementType:
		return &types.Refinement{Base: placeholderType(v.Base), Predicate: v.Predicate}
	case *ast.TupleType:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = placeholderType(e)
		}
		return &types.Tuple{Elems: elems}
	case *ast.FuncType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = placeholderType(p)
		}
		return &types.Func{Params: params, Result: placeholderType(v.Result)}
	default:
		return types.Unit
	}
}
