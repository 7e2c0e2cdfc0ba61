package module

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/lexer"
	"github.com/sunholo/bmb/internal/parser"
)

func mustParseFile(t *testing.T, name, src string) *ast.File {
	t.Helper()
	toks, lexDiags := lexer.Lex(0, name, lexer.Normalize([]byte(src)))
	require.Empty(t, lexDiags)
	f, parseDiags := parser.Parse(name, toks)
	require.Empty(t, parseDiags)
	return f
}

func TestResolver_SingleModule(t *testing.T) {
	r := NewResolver()
	r.AddFile(mustParseFile(t, "a.bmb", "mod a;\n\npub fn foo(x: i64) -> i64 = x;\n"))

	tables, diags := r.Resolve()
	require.Empty(t, diags)

	_, ok := tables.Function("a::foo")
	require.True(t, ok)
}

func TestResolver_DuplicateDeclaration(t *testing.T) {
	r := NewResolver()
	r.AddFile(mustParseFile(t, "a.bmb", `mod a;

fn foo(x: i64) -> i64 = x;
fn foo(x: i64) -> i64 = x;
`))

	_, diags := r.Resolve()
	require.Len(t, diags, 1)
	require.Equal(t, "RES002", diags[0].Code)
}

func TestResolver_CyclicUseImportDetected(t *testing.T) {
	r := NewResolver()
	r.AddFile(mustParseFile(t, "a.bmb", "mod a;\n\nuse b::helper;\n\nfn foo() -> i64 = 0;\n"))
	r.AddFile(mustParseFile(t, "b.bmb", "mod b;\n\nuse a::foo;\n\nfn helper() -> i64 = 0;\n"))

	_, diags := r.Resolve()
	require.NotEmpty(t, diags)
	require.Equal(t, "RES003", diags[0].Code)
}

func TestResolver_MultipleModulesCoexist(t *testing.T) {
	r := NewResolver()
	r.AddFile(mustParseFile(t, "a.bmb", "mod a;\n\npub fn foo(x: i64) -> i64 = x;\n"))
	r.AddFile(mustParseFile(t, "b.bmb", "mod b;\n\nfn call_it() -> i64 = a::foo(3);\n"))

	tables, diags := r.Resolve()
	require.Empty(t, diags)
	require.Len(t, tables.AllModules(), 2)
}
