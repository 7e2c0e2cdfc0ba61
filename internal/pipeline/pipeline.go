// Package pipeline orchestrates the compiler's linear stage sequence
// end to end (spec.md §2): lex -> parse -> resolve -> type-check ->
// verify -> lower to MIR -> optimize -> emit LLVM IR, threading the
// diagnostic sink and symbol tables through every stage.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/iface"
	"github.com/sunholo/bmb/internal/lexer"
	"github.com/sunholo/bmb/internal/llvmir"
	"github.com/sunholo/bmb/internal/mir"
	"github.com/sunholo/bmb/internal/module"
	"github.com/sunholo/bmb/internal/optimize"
	"github.com/sunholo/bmb/internal/parser"
	"github.com/sunholo/bmb/internal/types"
	"github.com/sunholo/bmb/internal/verify"
)

// Config holds every flag the CLI (§6.2) accepts that changes pipeline
// behavior.
type Config struct {
	SolverPath    string
	SolverTimeout time.Duration
	NoVerify      bool
	EmitMIR       bool
	CacheDir      string // directory holding .bmb-cache/, defaults to "."
}

// Result is everything a caller (cmd/bmbc or internal/scenario) needs
// after running the pipeline once.
type Result struct {
	Sink    *errors.Sink
	IR      string
	MIRText string // only populated when Config.EmitMIR is set
}

// Pipeline runs the fixed stage sequence over one or more source files
// that together form a single compilation unit.
type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	if cfg.CacheDir == "" {
		cfg.CacheDir = "."
	}
	if cfg.SolverPath == "" {
		cfg.SolverPath = "z3"
	}
	return &Pipeline{cfg: cfg}
}

// CompileFiles runs every stage over the given source files and returns
// the generated IR (or a partial Result with diagnostics on failure).
// Stage order and early-exit-on-error follow spec.md §2/§7: a stage with
// outstanding errors still lets remaining diagnostics from that stage
// surface, but later stages never run over a broken symbol table.
func (p *Pipeline) CompileFiles(ctx context.Context, paths []string) (*Result, error) {
	sink := errors.NewSink()
	for _, stage := range []string{"lex", "parse", "resolve", "typecheck", "verify", "lower", "optimize", "emit"} {
		sink.RegisterStage(stage)
	}

	res := module.NewResolver()

	for fileID, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		normalized := lexer.Normalize(src)

		toks, lexReports := lexer.Lex(uint32(fileID), path, normalized)
		for _, r := range lexReports {
			r.Phase = "lex"
			sink.Add(r)
		}

		f, parseReports := parser.Parse(path, toks)
		for _, r := range parseReports {
			r.Phase = "parse"
			sink.Add(r)
		}
		if f != nil {
			res.AddFile(f)
		}
	}

	tables, resolveReports := res.Resolve()
	for _, r := range resolveReports {
		r.Phase = "resolve"
		sink.Add(r)
	}
	if sink.HasErrors() {
		return &Result{Sink: sink}, nil
	}

	allObligations, proved, callGraphs, typeDiags := p.checkAll(tables)
	for _, r := range typeDiags {
		sink.Add(r)
	}
	if sink.HasErrors() {
		return &Result{Sink: sink}, nil
	}

	if !p.cfg.NoVerify {
		verifyDiags := p.verifyAll(ctx, allObligations, proved)
		for _, r := range verifyDiags {
			sink.Add(r)
		}
	}
	if sink.HasErrors() {
		return &Result{Sink: sink}, nil
	}

	mirModule, mirText := p.lowerAll(tables, callGraphs, proved)

	gen := llvmir.NewGenerator("")
	ir := gen.Generate(mirModule)

	return &Result{Sink: sink, IR: ir, MIRText: mirText}, nil
}

// checkAll type-checks every function of every resolved module, one
// Checker per module so that module-local unqualified-name resolution
// and the module's own call graph (used for purity propagation and TCO
// eligibility, SPEC_FULL.md §12) stay correctly scoped. Modules and
// functions within them are visited in a sorted, deterministic order so
// diagnostics and proof-obligation collection order never depend on map
// iteration (spec.md §8 P1).
func (p *Pipeline) checkAll(tables *iface.Tables) ([]types.Obligation, map[string]bool, map[string]*types.CallGraph, []*errors.Report) {
	var obligations []types.Obligation
	var diags []*errors.Report
	callGraphs := make(map[string]*types.CallGraph)
	proved := make(map[string]bool)

	modules := tables.AllModules()
	sort.Slice(modules, func(i, j int) bool { return modules[i].PathString() < modules[j].PathString() })

	for _, m := range modules {
		checker := types.NewChecker(tables, m.PathString())

		names := make([]string, 0, len(m.Functions))
		for name := range m.Functions {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			checker.CheckFunc(m.Functions[name])
		}

		obligations = append(obligations, checker.Obligations...)
		diags = append(diags, checker.Diagnostics()...)
		callGraphs[m.PathString()] = checker.CallGraph()
	}

	return obligations, proved, callGraphs, diags
}

// verifyAll discharges every collected obligation against a shared
// on-disk cache (SPEC_FULL.md §11.1) and a fresh solver process per
// query (spec.md §4.5 "Dispatch"). The scope map passed to VerifyAll
// here is intentionally empty: each Obligation now carries its own
// precondition/branch/invariant assumptions and local-variable scope,
// snapshotted by internal/types at the point it was recorded (see
// Obligation.Context and Obligation.Scope, and DESIGN.md's "Context
// assembly" entry), so verifyOne builds the real per-obligation query
// context itself instead of needing one threaded in from here.
func (p *Pipeline) verifyAll(ctx context.Context, obligations []types.Obligation, proved map[string]bool) []*errors.Report {
	cache, err := verify.LoadCache(p.cfg.CacheDir)
	if err != nil {
		return []*errors.Report{errors.New(errors.KindInternal, errors.INT002, "verify", fmt.Sprintf("loading obligation cache: %v", err), nil)}
	}

	solver := verify.NewSolver(p.cfg.SolverPath, p.cfg.SolverTimeout)
	verifier := verify.NewVerifier(solver, cache)
	verifier.VerifyAll(ctx, obligations, map[string]types.Type{})

	for k := range verifier.Proved {
		proved[k] = true
	}

	if err := cache.Flush(); err != nil {
		return append(verifier.Diagnostics(), errors.New(errors.KindInternal, errors.INT002, "verify", fmt.Sprintf("flushing obligation cache: %v", err), nil))
	}
	return verifier.Diagnostics()
}

// lowerAll lowers every function of every module to MIR, runs the fixed
// five-pass optimizer to fixpoint (spec.md §4.7), and assembles the
// resulting functions into one mir.Module in deterministic (module,
// function name) order so that LLVM emission is reproducible (spec.md
// §4.8 "Determinism").
func (p *Pipeline) lowerAll(tables *iface.Tables, callGraphs map[string]*types.CallGraph, proved map[string]bool) (*mir.Module, string) {
	out := &mir.Module{}

	modules := tables.AllModules()
	sort.Slice(modules, func(i, j int) bool { return modules[i].PathString() < modules[j].PathString() })

	var mirText string
	for _, m := range modules {
		lowerer := mir.NewLowerer(tables, m.PathString(), proved, callGraphs[m.PathString()])

		names := make([]string, 0, len(m.Functions))
		for name := range m.Functions {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			sig := m.Functions[name]
			if sig.Decl == nil || sig.Decl.Body == nil {
				continue
			}
			fn := lowerer.LowerFunc(sig, m.PathString()+"::"+sig.Name)
			optimize.Run(fn, proved)
			out.Functions = append(out.Functions, fn)
			if p.cfg.EmitMIR {
				mirText += dumpFunction(fn)
			}
		}
	}

	return out, mirText
}

// dumpFunction renders a function's block structure as plain text for
// --emit-mir debugging; it is not parsed back by anything, only read by
// a human.
func dumpFunction(fn *mir.Function) string {
	s := fmt.Sprintf("fn %s -> %s {\n", fn.Name, fn.Result)
	ids := make([]int, 0, len(fn.Blocks))
	for id := range fn.Blocks {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		s += fmt.Sprintf("  bb%d:\n", id)
		b := fn.Blocks[mir.BlockID(id)]
		for range b.Statements {
			s += "    <stmt>\n"
		}
	}
	s += "}\n\n"
	return s
}
