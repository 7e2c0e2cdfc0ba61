package parser

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/lexer"
)

// update controls whether golden files are written or compared against.
// Usage: go test -update ./internal/parser
var update = flag.Bool("update", false, "update golden files")

// parseSource lexes and parses src as a standalone file named "test" and
// fails the test on any lex or parse diagnostic.
func parseSource(t *testing.T, src string) *ast.File {
	t.Helper()

	toks, lexReports := lexer.Lex(0, "test", lexer.Normalize([]byte(src)))
	if len(lexReports) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexReports)
	}

	f, parseReports := Parse("test", toks)
	if len(parseReports) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", parseReports)
	}
	return f
}

// mustParseErrors lexes and parses src and returns the parse diagnostics,
// failing the test if parsing produced none.
//
// Usage:
//
//	reports := mustParseErrors(t, "fn f(x: i64) -> i64 = x")
//	require.Equal(t, "PAR003", reports[0].Code)
func mustParseErrors(t *testing.T, src string) []*errors.Report {
	t.Helper()

	toks, lexReports := lexer.Lex(0, "test", lexer.Normalize([]byte(src)))
	if len(lexReports) != 0 {
		return lexReports
	}

	_, parseReports := Parse("test", toks)
	if len(parseReports) == 0 {
		t.Fatalf("expected parse diagnostics for %q but got none", src)
	}
	return parseReports
}

// goldenCompare renders f via ast.Unparse and compares it against
// testdata/parser/<name>.golden, matching the corpus's own golden-file
// convention (-update rewrites the fixture instead of failing).
func goldenCompare(t *testing.T, name string, f *ast.File) {
	t.Helper()

	got := ast.Unparse(f)
	path := filepath.Join("testdata", "parser", name+".golden")

	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("writing golden file %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading golden file %s: %v (run with -update to create it)", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", name, diff)
	}
}
