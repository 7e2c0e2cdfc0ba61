package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/ast"
)

// ignoreSpans drops every Span field before comparing two ASTs: spans
// carry byte offsets that differ between an original parse and a
// re-parse of its own unparsed text, even when the two trees are
// otherwise identical.
var ignoreSpans = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && sf.Name() == "Span"
}, cmp.Ignore())

func TestGolden_FuncWithPostcondition(t *testing.T) {
	f := parseSource(t, "fn inc(x: i64) -> i64 post ret == x + 1 = x + 1;\n")
	goldenCompare(t, "fn_inc", f)
}

// TestRoundTrip_UnparseReparse exercises spec.md §8 P2: for every program
// below, unparsing a parsed file and re-parsing the result must produce an
// AST equal to the original, up to spans.
func TestRoundTrip_UnparseReparse(t *testing.T) {
	cases := map[string]string{
		"simple_func": "fn inc(x: i64) -> i64 post ret == x + 1 = x + 1;\n",

		"struct_enum_match": `use a::b;

struct Point { x: i64, y: i64 }

enum Opt { Some(i64), None }

fn use_opt(o: Opt) -> i64 = match o { Opt::Some(v) => v, Opt::None => 0 };
`,

		"while_loop_block_body": `fn sum_upto(n: i64) -> i64 {
  let mut acc: i64 = 0;
  while acc < n invariant acc >= 0 {
    acc = acc + 1;
  }
  acc
}
`,

		"for_loop_and_closure": `fn apply_all(xs: &[i64]) -> i64 {
  for x in xs {
    x
  }
  0
}

fn adder(n: i64) -> fn(i64) -> i64 = |y: i64| -> i64 y + n;
`,

		"generics_and_refs": `fn first<T>(xs: &[T]) -> T = xs[0];

pure fn double(x: i64) -> i64 = x *% 2;
`,
	}

	for name, src := range cases {
		src := src
		t.Run(name, func(t *testing.T) {
			first := parseSource(t, src)

			again := parseSource(t, ast.Unparse(first))

			if diff := cmp.Diff(first, again, ignoreSpans); diff != "" {
				t.Errorf("round trip changed the AST (-orig +reparsed):\n%s", diff)
			}
		})
	}
}

func TestParse_MissingSemicolonIsDiagnosed(t *testing.T) {
	reports := mustParseErrors(t, "fn bad(x: i64) -> i64 = x\nfn next() -> i64 = 0;\n")
	require.Equal(t, "PAR003", reports[0].Code)
}
