package verify

import (
	"context"
	"fmt"

	"github.com/sunholo/bmb/internal/ast"
	"github.com/sunholo/bmb/internal/errors"
	"github.com/sunholo/bmb/internal/types"
)

// Verifier discharges the obligations internal/types collected while
// checking, dispatching each to a Solver and recording a Verify
// diagnostic for anything that isn't proved (spec.md §4.5's verdict
// table). Obligations whose verdict is VerdictProved are recorded in
// Proved, which internal/optimize's contract-driven DCE pass reads.
type Verifier struct {
	solver *Solver
	cache  *Cache
	diags  []*errors.Report

	// Proved maps two different kinds of keys to true once an obligation's
	// verdict is VerdictProved: every proved obligation's cache key (no
	// later stage looks these up), plus, for ObligationCallPre and
	// ObligationRefinementCoercion obligations specifically,
	// ast.UnparseExpr of the proved predicate itself (consulted by
	// internal/optimize's contract-driven DCE pass, spec.md §4.7 pass 3,
	// to collapse a branch whose condition is that same predicate).
	Proved map[string]bool
}

func NewVerifier(solver *Solver, cache *Cache) *Verifier {
	return &Verifier{solver: solver, cache: cache, Proved: make(map[string]bool)}
}

func (v *Verifier) Diagnostics() []*errors.Report { return v.diags }

// VerifyAll discharges every obligation the checker collected, in
// collection order (which is source order, since the checker walks each
// body depth-first) so diagnostics come out in a stable, reproducible
// sequence.
func (v *Verifier) VerifyAll(ctx context.Context, obligations []types.Obligation, scope map[string]types.Type) {
	for _, ob := range obligations {
		v.verifyOne(ctx, ob, scope)
	}
}

func (v *Verifier) verifyOne(ctx context.Context, ob types.Obligation, scope map[string]types.Type) {
	var formulaText string
	if ob.Formula != nil {
		formulaText = exprToSMT(ob.Formula)
	}
	key := Key(obligationContextText(ob), formulaText)

	if verdict, hit := v.cache.Lookup(key); hit {
		v.record(ob, verdict, key, "(cached)")
		return
	}

	// spec.md §4.5 "Context assembly": ob.Context is the stack of
	// assumptions internal/types had in scope when it recorded this
	// obligation (function precondition, branch predicates along the
	// current path, enclosing loop invariants, in-scope refinement
	// predicates, pure let-binding equalities) — replayed through Add so
	// the query conjoins them instead of checking the formula in a vacuum.
	sctx := &Context{}
	for _, a := range ob.Context {
		sctx = sctx.Add(a)
	}

	merged := scope
	if len(ob.Scope) > 0 {
		merged = make(map[string]types.Type, len(scope)+len(ob.Scope))
		for name, t := range scope {
			merged[name] = t
		}
		for name, t := range ob.Scope {
			merged[name] = t
		}
	}

	query := BuildQuery(sctx, ob.Formula, ob.Span, ob.Kind, merged)
	verdict, reply := v.solver.Dispatch(ctx, query.Script)
	v.cache.Store(key, verdict, reply)
	v.record(ob, verdict, key, reply)
}

func (v *Verifier) record(ob types.Obligation, verdict Verdict, key, detail string) {
	if verdict == VerdictProved {
		v.Proved[key] = true
		if ob.Formula != nil && (ob.Kind == types.ObligationCallPre || ob.Kind == types.ObligationRefinementCoercion) {
			v.Proved[ast.UnparseExpr(ob.Formula)] = true
		}
		return
	}
	sp := &errors.Span{File: ob.Span.Start.File, Line: ob.Span.Start.Line, Column: ob.Span.Start.Column, ByteStart: ob.Span.Start.Offset, ByteEnd: ob.Span.End.Offset}

	var code, msg string
	switch verdict {
	case VerdictCounterexample:
		code, msg = "VER001", fmt.Sprintf("%s: solver found a counterexample", obligationLabel(ob.Kind))
	case VerdictTimeout:
		code, msg = "VER003", fmt.Sprintf("%s: solver timed out before reaching a verdict", obligationLabel(ob.Kind))
	case VerdictSolverFailed:
		code, msg = "VER004", fmt.Sprintf("%s: solver process failed: %s", obligationLabel(ob.Kind), detail)
	default:
		code, msg = "VER002", fmt.Sprintf("%s: solver returned unknown", obligationLabel(ob.Kind))
	}
	r := errors.New(errors.KindVerify, code, "verify", msg, sp)
	if verdict == VerdictUnknown || verdict == VerdictTimeout {
		r = r.WithFix("consider adding an explicit refinement or loop invariant to help the solver", "")
	}
	v.diags = append(v.diags, r)
}

func obligationLabel(k types.ObligationKind) string {
	switch k {
	case types.ObligationCallPre:
		return "precondition"
	case types.ObligationPostcondition:
		return "postcondition"
	case types.ObligationUnwrap:
		return "unwrap() requires is_some()"
	case types.ObligationIndexBounds:
		return "array index bounds"
	case types.ObligationDivByZero:
		return "division by zero"
	case types.ObligationArithFits:
		return "arithmetic overflow"
	case types.ObligationRefinementCoercion:
		return "refinement coercion"
	case types.ObligationLoopInvariantEntry:
		return "loop invariant (entry)"
	case types.ObligationLoopInvariantBackedge:
		return "loop invariant (back-edge)"
	default:
		return "obligation"
	}
}

// obligationContextText renders a stable textual key for an obligation's
// site and its assumption context, used alongside the formula text as the
// cache key input; it need not be human-readable, only stable and
// collision-resistant for identical (formula, site, context) triples
// across runs. Folding ob.Context in means a formula proved under a
// weaker context (e.g. no precondition in scope) is never confused with
// the same formula proved under a stronger one.
func obligationContextText(ob types.Obligation) string {
	var ctxText string
	for _, a := range ob.Context {
		ctxText += "|" + ast.UnparseExpr(a)
	}
	return fmt.Sprintf("%s:%d:%d:%d%s", ob.Span.Start.File, ob.Span.Start.Line, ob.Span.Start.Column, ob.Kind, ctxText)
}
