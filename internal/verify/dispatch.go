package verify

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/bmb/internal/sid"
)

// Verdict is the classified outcome of one SMT dispatch, per spec.md
// §4.5's verdict-mapping table.
type Verdict int

const (
	VerdictProved Verdict = iota
	VerdictCounterexample
	VerdictUnknown
	VerdictTimeout
	VerdictSolverFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictProved:
		return "proved"
	case VerdictCounterexample:
		return "counterexample"
	case VerdictUnknown:
		return "unknown"
	case VerdictTimeout:
		return "timeout"
	default:
		return "solver-failed"
	}
}

// Solver dispatches one SMT-LIB2 script to an external process with a
// per-query wall-clock timeout (spec.md §4.5 "Dispatch"; default 5000ms,
// configurable). Each query is a fresh process invocation — no pooled
// state is shared across queries (spec.md §5 "Shared resources").
type Solver struct {
	Path    string // e.g. "z3", "cvc5"; resolved via exec.LookPath at call time
	Args    []string
	Timeout time.Duration
}

func NewSolver(path string, timeout time.Duration) *Solver {
	if timeout <= 0 {
		timeout = 5000 * time.Millisecond
	}
	return &Solver{Path: path, Args: []string{"-in"}, Timeout: timeout}
}

// Dispatch runs the script through the external solver and classifies its
// stdout as a Verdict. A context deadline exceeded or explicit process
// kill is reported as VerdictTimeout; any other process error is
// VerdictSolverFailed (a VER004 diagnostic, not a proof failure).
func (s *Solver) Dispatch(ctx context.Context, script string) (Verdict, string) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	cmd.Stdin = strings.NewReader(script)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return VerdictTimeout, out.String()
	}
	if err != nil {
		return VerdictSolverFailed, err.Error()
	}

	reply := strings.TrimSpace(out.String())
	switch {
	case strings.HasPrefix(reply, "unsat"):
		return VerdictProved, reply
	case strings.HasPrefix(reply, "sat"):
		return VerdictCounterexample, reply
	default:
		return VerdictUnknown, reply
	}
}

// obligationCacheEntry is one record in the on-disk obligation cache
// (SPEC_FULL.md §11.1): keyed by a content hash of (formula, context), it
// never changes verdicts — a changed formula or context produces a new
// key, so a cache hit is always sound to reuse as-is.
type obligationCacheEntry struct {
	Key     string `yaml:"key"`
	Verdict string `yaml:"verdict"`
	Reply   string `yaml:"reply,omitempty"`
}

// Cache is a disk-backed map from obligation content hash to its last
// verdict, stored at .bmb-cache/obligations.yaml.
type Cache struct {
	path    string
	entries map[string]obligationCacheEntry
	dirty   bool
}

// LoadCache reads the cache file at dir/.bmb-cache/obligations.yaml, or
// returns an empty cache if it does not yet exist.
func LoadCache(dir string) (*Cache, error) {
	path := filepath.Join(dir, ".bmb-cache", "obligations.yaml")
	c := &Cache{path: path, entries: make(map[string]obligationCacheEntry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	var list []obligationCacheEntry
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	for _, e := range list {
		c.entries[e.Key] = e
	}
	return c, nil
}

// Key computes the content-addressed cache key for one obligation.
func Key(contextText, formulaText string) string {
	return string(sid.ForObligation(contextText, formulaText))
}

// Lookup returns a previously-recorded verdict for key, if present.
func (c *Cache) Lookup(key string) (Verdict, bool) {
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return parseVerdict(e.Verdict), true
}

// Store records a verdict under key; the result is written back lazily by
// Flush so a run that fails partway still gets to keep the obligations it
// already discharged.
func (c *Cache) Store(key string, v Verdict, reply string) {
	c.entries[key] = obligationCacheEntry{Key: key, Verdict: v.String(), Reply: reply}
	c.dirty = true
}

// Flush writes the cache back to disk if it has unsaved changes.
func (c *Cache) Flush() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	list := make([]obligationCacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

func parseVerdict(s string) Verdict {
	switch s {
	case "proved":
		return VerdictProved
	case "counterexample":
		return VerdictCounterexample
	case "timeout":
		return VerdictTimeout
	case "solver-failed":
		return VerdictSolverFailed
	default:
		return VerdictUnknown
	}
}
