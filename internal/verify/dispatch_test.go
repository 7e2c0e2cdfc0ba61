package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSolver_DefaultsTimeoutWhenNonPositive(t *testing.T) {
	s := NewSolver("z3", 0)
	require.Equal(t, 5000*time.Millisecond, s.Timeout)
	require.Equal(t, []string{"-in"}, s.Args)
}

func TestNewSolver_KeepsExplicitTimeout(t *testing.T) {
	s := NewSolver("z3", 200*time.Millisecond)
	require.Equal(t, 200*time.Millisecond, s.Timeout)
}

func TestVerdict_String(t *testing.T) {
	require.Equal(t, "proved", VerdictProved.String())
	require.Equal(t, "counterexample", VerdictCounterexample.String())
	require.Equal(t, "unknown", VerdictUnknown.String())
	require.Equal(t, "timeout", VerdictTimeout.String())
	require.Equal(t, "solver-failed", VerdictSolverFailed.String())
}

func TestLoadCache_MissingFileYieldsEmptyCache(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadCache(dir)
	require.NoError(t, err)

	_, ok := c.Lookup("nonexistent")
	require.False(t, ok)
}

func TestCache_StoreFlushAndReload(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadCache(dir)
	require.NoError(t, err)

	key := Key("x >= 0", "x > -1")
	c.Store(key, VerdictProved, "unsat")
	require.NoError(t, c.Flush())

	_, err = os.Stat(filepath.Join(dir, ".bmb-cache", "obligations.yaml"))
	require.NoError(t, err)

	reloaded, err := LoadCache(dir)
	require.NoError(t, err)

	v, ok := reloaded.Lookup(key)
	require.True(t, ok)
	require.Equal(t, VerdictProved, v)
}

func TestCache_FlushIsNoopWithoutChanges(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadCache(dir)
	require.NoError(t, err)

	require.NoError(t, c.Flush())
	_, err = os.Stat(filepath.Join(dir, ".bmb-cache"))
	require.True(t, os.IsNotExist(err), "Flush must not write a cache dir when nothing was stored")
}

func TestKey_IsDeterministicAndContentAddressed(t *testing.T) {
	k1 := Key("ctx", "formula")
	k2 := Key("ctx", "formula")
	require.Equal(t, k1, k2)

	k3 := Key("ctx", "different formula")
	require.NotEqual(t, k1, k3)
}

func TestSolver_Dispatch_UnknownBinaryReportsSolverFailed(t *testing.T) {
	s := NewSolver("bmb-test-definitely-not-a-real-solver-binary", 2*time.Second)
	verdict, _ := s.Dispatch(context.Background(), "(check-sat)")
	require.Equal(t, VerdictSolverFailed, verdict)
}
