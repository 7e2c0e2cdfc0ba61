// Package scenario loads YAML-described compiler scenarios (spec.md §8
// "Concrete scenarios" S1-S6) and runs each through internal/pipeline,
// checking its expectations. The YAML shape and loader pattern are
// grounded on the corpus's own benchmark-spec loader for evaluation
// harnesses, repurposed here from language-model benchmarks to
// compiler-behavior fixtures.
package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/bmb/internal/pipeline"
)

// Spec is one scenario's expectations, loaded from a single YAML
// document per fixture file.
type Spec struct {
	ID                string   `yaml:"id"`
	Description       string   `yaml:"description"`
	Source            string   `yaml:"source"`
	ExpectVerified    bool     `yaml:"expect_verified"`
	ExpectDiagnostics []string `yaml:"expect_diagnostics"` // diagnostic codes expected to fire, e.g. "VER001"
	ExpectIRContains  []string `yaml:"expect_ir_contains"` // substrings the emitted IR must contain
	ExpectNoIR        bool     `yaml:"expect_no_ir"`
}

// LoadSpec reads one scenario fixture from path.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("scenario %s missing required field: id", path)
	}
	return &s, nil
}

// LoadDir loads every *.yaml scenario fixture in dir, sorted by file name
// so a test run's scenario order never depends on directory iteration
// order.
func LoadDir(dir string) ([]*Spec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	var specs []*Spec
	for _, n := range names {
		s, err := LoadSpec(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Outcome reports what actually happened when Run executed one Spec.
type Outcome struct {
	IR             string
	DiagnosticCode []string
	Failures       []string // human-readable mismatches against the spec's expectations; empty means pass
}

// Run compiles one scenario's inline source through a temporary file and
// checks the result against its expectations. The source is written to a
// scratch file because internal/pipeline's entrypoint is file-based, same
// as the real CLI (spec.md §6.2 takes a file path, not inline text).
func Run(ctx context.Context, s *Spec, cfg pipeline.Config) (*Outcome, error) {
	dir, err := os.MkdirTemp("", "bmb-scenario-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, s.ID+".bmb")
	if err := os.WriteFile(srcPath, []byte(s.Source), 0644); err != nil {
		return nil, err
	}
	cfg.CacheDir = dir

	res, err := pipeline.New(cfg).CompileFiles(ctx, []string{srcPath})
	if err != nil {
		return nil, err
	}

	out := &Outcome{IR: res.IR}
	for _, r := range res.Sink.Reports() {
		out.DiagnosticCode = append(out.DiagnosticCode, r.Code)
	}

	verified := !res.Sink.HasErrors()
	if verified != s.ExpectVerified {
		out.Failures = append(out.Failures, fmt.Sprintf("expected verified=%v, got %v", s.ExpectVerified, verified))
	}
	for _, code := range s.ExpectDiagnostics {
		if !containsString(out.DiagnosticCode, code) {
			out.Failures = append(out.Failures, fmt.Sprintf("expected diagnostic %s, not present", code))
		}
	}
	for _, sub := range s.ExpectIRContains {
		if !strings.Contains(out.IR, sub) {
			out.Failures = append(out.Failures, fmt.Sprintf("expected IR to contain %q", sub))
		}
	}
	if s.ExpectNoIR && out.IR != "" && !res.Sink.HasErrors() {
		out.Failures = append(out.Failures, "expected no IR to be emitted, but compilation succeeded")
	}

	return out, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
