package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/bmb/internal/pipeline"
)

func TestScenarios_S1ThroughS5(t *testing.T) {
	specs, err := LoadDir("testdata")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(specs), 5, "expected at least S1-S5 fixtures")

	for _, s := range specs {
		s := s
		t.Run(s.ID, func(t *testing.T) {
			out, err := Run(context.Background(), s, pipeline.Config{NoVerify: false})
			require.NoError(t, err)
			require.Empty(t, out.Failures, "scenario %s: %v", s.ID, out.Failures)
		})
	}
}

// TestScenario_S6_CrossModuleCall exercises spec.md §8's S6: a two-file
// program where one module's exported function is called, with a
// constant argument, from a second module. Multi-file compilation isn't
// expressible as a single-source Spec, so it is driven directly against
// internal/pipeline rather than through the YAML loader.
func TestScenario_S6_CrossModuleCall(t *testing.T) {
	dir := t.TempDir()

	fileA := filepath.Join(dir, "a.bmb")
	fileB := filepath.Join(dir, "b.bmb")

	require.NoError(t, os.WriteFile(fileA, []byte(`mod a;

pub fn foo(x: i64) -> i64 post ret >= x = x;
`), 0644))

	require.NoError(t, os.WriteFile(fileB, []byte(`mod b;

fn call_it() -> i64 = a::foo(3);
`), 0644))

	res, err := pipeline.New(pipeline.Config{CacheDir: dir}).CompileFiles(context.Background(), []string{fileA, fileB})
	require.NoError(t, err)
	require.False(t, res.Sink.HasErrors(), "S6: %v", res.Sink.Reports())
	require.Contains(t, res.IR, "@a.foo")
}
