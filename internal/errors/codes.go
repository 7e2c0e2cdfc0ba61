// Package errors provides the compiler's structured diagnostic taxonomy.
// Every diagnostic kind named in spec.md §7 (Lex, Parse, Resolve, Type,
// Verify, Internal) owns a stable code prefix so tooling and tests can key
// off a code instead of a message string.
package errors

// Kind is the diagnostic kind from spec.md §7.
type Kind string

const (
	KindLex      Kind = "Lex"
	KindParse    Kind = "Parse"
	KindResolve  Kind = "Resolve"
	KindType     Kind = "Type"
	KindVerify   Kind = "Verify"
	KindInternal Kind = "Internal"
)

// Severity is the diagnostic severity from spec.md §7.
type Severity string

const (
	SevError   Severity = "error"
	SevWarning Severity = "warning"
	SevNote    Severity = "note"
)

// ============================================================================
// Lexer errors (LEX###) — spec.md §4.1
// ============================================================================

const (
	// LEX001 indicates an unterminated string literal
	LEX001 = "LEX001"
	// LEX002 indicates an invalid escape sequence
	LEX002 = "LEX002"
	// LEX003 indicates an unterminated character literal
	LEX003 = "LEX003"
	// LEX004 indicates a malformed numeric literal (bad suffix, bad digits for base)
	LEX004 = "LEX004"
	// LEX005 indicates an unrecognized character/token
	LEX005 = "LEX005"
	// LEX006 indicates a legacy '@' path separator (rejected per spec.md §9 open question)
	LEX006 = "LEX006"
)

// ============================================================================
// Parser errors (PAR###) — spec.md §4.2
// ============================================================================

const (
	// PAR001 indicates an unexpected token
	PAR001 = "PAR001"
	// PAR002 indicates a missing closing delimiter
	PAR002 = "PAR002"
	// PAR003 indicates invalid function declaration syntax
	PAR003 = "PAR003"
	// PAR004 indicates invalid contract clause syntax (pre/post/invariant)
	PAR004 = "PAR004"
	// PAR005 indicates invalid type expression syntax
	PAR005 = "PAR005"
	// PAR006 indicates invalid pattern syntax
	PAR006 = "PAR006"
	// PAR007 indicates invalid use-import syntax
	PAR007 = "PAR007"
	// PAR008 indicates a statement/expression that could not be recovered from
	PAR008 = "PAR008"
)

// ============================================================================
// Resolver errors (RES###) — spec.md §4.3
// ============================================================================

const (
	// RES001 indicates an unknown identifier reference
	RES001 = "RES001"
	// RES002 indicates a duplicate declaration in one scope
	RES002 = "RES002"
	// RES003 indicates a cyclic use-import graph
	RES003 = "RES003"
	// RES004 indicates a reference to a non-exported (non-pub) item from another module
	RES004 = "RES004"
	// RES005 indicates an unresolvable use-path
	RES005 = "RES005"
)

// ============================================================================
// Type checker errors (TYP###) — spec.md §4.4
// ============================================================================

const (
	// TYP001 indicates a type mismatch between expected and synthesized types
	TYP001 = "TYP001"
	// TYP002 indicates an arithmetic operand type mismatch
	TYP002 = "TYP002"
	// TYP003 indicates a non-exhaustive match
	TYP003 = "TYP003"
	// TYP004 indicates an unreachable (overlapping) match arm
	TYP004 = "TYP004"
	// TYP005 indicates a purity violation (impure call or mutation inside a pure function/contract)
	TYP005 = "TYP005"
	// TYP006 indicates an ownership violation (mutation through a shared reference, non-unique mutable reference)
	TYP006 = "TYP006"
	// TYP007 indicates a generic instantiation arity mismatch
	TYP007 = "TYP007"
	// TYP008 indicates an unknown type name
	TYP008 = "TYP008"
	// TYP009 indicates a call-argument count mismatch
	TYP009 = "TYP009"
	// TYP010 indicates use of a non-`pure` function where §4.4 requires purity
	TYP010 = "TYP010"
)

// ============================================================================
// Verifier errors (VER###) — spec.md §4.5
// ============================================================================

const (
	// VER001 indicates a counterexample was found (solver returned sat)
	VER001 = "VER001"
	// VER002 indicates an inconclusive result (solver returned unknown)
	VER002 = "VER002"
	// VER003 indicates a solver timeout
	VER003 = "VER003"
	// VER004 indicates the external solver process could not be started
	VER004 = "VER004"
	// VER005 indicates a floating-point predicate that reduces to a
	// solver-unsupported query (spec.md §9 open question: rejected, not
	// silently accepted)
	VER005 = "VER005"
)

// ============================================================================
// Internal compiler errors (INT###)
// ============================================================================

const (
	// INT001 indicates an invariant violation caught by a post-pass
	// well-formedness check (e.g. MIR invariants, spec.md §8 P5)
	INT001 = "INT001"
	// INT002 indicates a panic recovered during a compiler stage
	INT002 = "INT002"
)
