// Package llvmir implements spec.md §4.8: emit(mir_module, symbols) ->
// textual LLVM IR consumable by external opt/llc at LLVM version >= 20.
// Determinism (spec.md §4.8 "Determinism") is the package's central
// constraint: symbol-table iteration uses insertion order, string
// interning uses a deterministic dictionary, and label numbering is
// per-function and strictly sequential — two runs over the same MIR
// module must produce byte-identical text.
package llvmir

import (
	"fmt"
	"strings"

	"github.com/sunholo/bmb/internal/mir"
	"github.com/sunholo/bmb/internal/types"
)

// Generator accumulates emitted LLVM IR text for one module. A Generator
// is single-use: call Generate once per module.
type Generator struct {
	builder strings.Builder

	targetTriple string

	// strings maps literal content to its interned @.str.N global name, in
	// first-use order (spec.md §4.8 "content-deduplicated string interning").
	strings    map[string]string
	stringsOrd []string

	regs map[mir.LocalID]string
	fn   *mir.Function
}

// NewGenerator creates a Generator targeting triple (spec.md §6.3's
// minimum-supported set is x86_64-pc-windows-msvc and
// x86_64-unknown-linux-gnu).
func NewGenerator(triple string) *Generator {
	if triple == "" {
		triple = "x86_64-unknown-linux-gnu"
	}
	return &Generator{targetTriple: triple, strings: make(map[string]string)}
}

func (g *Generator) emit(line string) {
	g.builder.WriteString(line)
	g.builder.WriteByte('\n')
}

func (g *Generator) emitf(format string, args ...interface{}) {
	g.emit(fmt.Sprintf(format, args...))
}

// Generate lowers module to textual LLVM IR. Functions are emitted in the
// order they appear in module.Functions, which the pipeline populates
// sorted by module path and then function name — not map iteration order
// — so output is reproducible.
func (g *Generator) Generate(module *mir.Module) string {
	g.emitHeader()
	g.emitRuntimeDecls()
	g.emitCommonTypes()

	var body strings.Builder
	for _, fn := range module.Functions {
		body.WriteString(g.generateFunction(fn))
	}

	g.emitStringConstants()
	g.builder.WriteString(body.String())
	return g.builder.String()
}

func (g *Generator) emitHeader() {
	g.emit("; ModuleID = 'bmb'")
	g.emit(`source_filename = "bmb"`)
	g.emitf(`target triple = %q`, g.targetTriple)
	g.emit("")
}

// emitRuntimeDecls declares every externally-provided symbol from spec.md
// §6.3 the emitter may reference; an unused declare is harmless, so the
// full table is always emitted rather than computed per-module.
func (g *Generator) emitRuntimeDecls() {
	g.emit("; runtime ABI (spec.md section 6.3)")
	decls := []string{
		"declare void @print_str(%BmbString*)",
		"declare void @println_str(%BmbString*)",
		"declare void @print_i64(i64)",
		"declare void @println_i64(i64)",
		"declare i64 @read_int()",
		"declare %BmbString* @string_new(i8*, i64)",
		"declare %BmbString* @string_from_cstr(i8*)",
		"declare i64 @string_len(%BmbString*)",
		"declare i64 @string_char_at(%BmbString*, i64)",
		"declare %BmbString* @string_slice(%BmbString*, i64, i64)",
		"declare %BmbString* @string_concat(%BmbString*, %BmbString*)",
		"declare i1 @string_eq(%BmbString*, %BmbString*)",
		"declare i8* @vec_new()",
		"declare i8* @vec_with_capacity(i64)",
		"declare void @vec_push(i8*, i64)",
		"declare i64 @vec_pop(i8*)",
		"declare i64 @vec_get(i8*, i64)",
		"declare void @vec_set(i8*, i64, i64)",
		"declare i64 @vec_len(i8*)",
		"declare void @vec_free(i8*)",
		"declare i8* @sb_new()",
		"declare void @sb_push(i8*, %BmbString*)",
		"declare void @sb_push_char(i8*, i64)",
		"declare void @sb_push_int(i8*, i64)",
		"declare %BmbString* @sb_build(i8*)",
		"declare void @sb_clear(i8*)",
		"declare i64 @sb_len(i8*)",
		"declare %BmbString* @read_file(%BmbString*)",
		"declare i64 @write_file(%BmbString*, %BmbString*)",
		"declare i1 @file_exists(%BmbString*)",
		"declare i64 @arg_count()",
		"declare %BmbString* @get_arg(i64)",
		"declare %BmbString* @getenv(%BmbString*)",
	}
	for _, d := range decls {
		g.emit(d)
	}
	g.emit("")
}

func (g *Generator) emitCommonTypes() {
	g.emit("; common types")
	g.emit("%BmbString = type opaque")
	g.emit("")
}

func (g *Generator) emitStringConstants() {
	if len(g.stringsOrd) == 0 {
		return
	}
	g.emit("; interned string literals")
	for _, content := range g.stringsOrd {
		name := g.strings[content]
		g.emitf("%s = private unnamed_addr constant [%d x i8] c\"%s\", align 1", name, len(content), escapeLLVMString(content))
	}
	g.emit("")
}

// internString returns the stable @.str.N name for content, interning it
// on first use in encounter order (spec.md §4.8 "content-deduplicated").
func (g *Generator) internString(content string) string {
	if name, ok := g.strings[content]; ok {
		return name
	}
	name := fmt.Sprintf("@.str.%d", len(g.stringsOrd))
	g.strings[content] = name
	g.stringsOrd = append(g.stringsOrd, content)
	return name
}

func escapeLLVMString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 32 && b < 127 && b != '"' && b != '\\' {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\%02X", b)
		}
	}
	return sb.String()
}

// mapType implements spec.md §4.8's "Mapping" table.
func mapType(t types.Type) string {
	switch v := t.(type) {
	case nil:
		return "void"
	case *types.Prim:
		switch v.Name {
		case "bool":
			return "i1"
		case "unit":
			return "void"
		case "char":
			return "i32"
		case "f32":
			return "float"
		case "f64":
			return "double"
		case "String":
			return "%BmbString*"
		default:
			if types.IsInteger(v.Name) {
				return "i" + bitsOf(v.Name)
			}
			return "i64"
		}
	case *types.Ref:
		return mapType(v.Elem) + "*"
	case *types.Slice:
		return "%Slice*"
	case *types.Optional:
		return fmt.Sprintf("{ i1, %s }", mapType(v.Elem))
	case *types.Tuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = mapType(e)
		}
		return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
	case *types.Named:
		return "%enum." + sanitizeName(v.Name) + "*"
	case *types.Refinement:
		return mapType(v.Base)
	default:
		return "i64"
	}
}

func bitsOf(name string) string {
	switch name {
	case "i8", "u8":
		return "8"
	case "i16", "u16":
		return "16"
	case "i32", "u32":
		return "32"
	case "i128", "u128":
		return "128"
	default:
		return "64"
	}
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "::", ".")
}
