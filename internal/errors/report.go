package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Span mirrors ast.Span without importing internal/ast, avoiding an import
// cycle (ast nodes themselves carry diagnostics produced against them).
type Span struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	EndLine    int    `json:"end_line,omitempty"`
	EndColumn  int    `json:"end_column,omitempty"`
	ByteStart  int    `json:"byte_start"`
	ByteEnd    int    `json:"byte_end"`
}

// Fix is an optional suggested fix attached to a Report.
type Fix struct {
	Message     string `json:"message"`
	Replacement string `json:"replacement,omitempty"`
}

// Report is the canonical structured diagnostic. Every stage constructs
// these instead of returning bare error strings, so that the Sink can
// sort, dedupe, and render them uniformly (spec.md §7 "Output form").
type Report struct {
	Schema    string         `json:"schema"`
	Code      string         `json:"code"`
	Kind      Kind           `json:"kind"`
	Severity  Severity       `json:"severity"`
	Phase     string         `json:"phase"`
	Message   string         `json:"message"`
	Span      *Span          `json:"span,omitempty"`
	Secondary *Span          `json:"secondary_span,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Fix       *Fix           `json:"fix,omitempty"`
}

const schemaVersion = "bmb.diagnostic/v1"

// New constructs a Report with the schema and default severity filled in.
func New(kind Kind, code, phase, message string, span *Span) *Report {
	return &Report{
		Schema:   schemaVersion,
		Code:     code,
		Kind:     kind,
		Severity: SevError,
		Phase:    phase,
		Message:  message,
		Span:     span,
		Data:     map[string]any{},
	}
}

// WithSeverity returns a copy of the report with a different severity.
func (r *Report) WithSeverity(s Severity) *Report {
	cp := *r
	cp.Severity = s
	return &cp
}

// WithData attaches a structured data field, returning the same report for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// WithFix attaches a suggested fix.
func (r *Report) WithFix(message, replacement string) *Report {
	r.Fix = &Fix{Message: message, Replacement: replacement}
	return r
}

// WithSecondary attaches a secondary span (e.g. the declaration a
// duplicate or cycle refers back to).
func (r *Report) WithSecondary(s *Span) *Report {
	r.Secondary = s
	return r
}

// ReportError wraps a Report so it can travel through the standard error
// interface and still be recovered with errors.As at call sites that need
// the structured form back.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// Internal constructs an Internal-kind report from a recovered panic,
// per spec.md §7 ("Internal panics are caught and reported with the
// originating span if known").
func Internal(phase string, recovered any, span *Span) *Report {
	return New(KindInternal, INT002, phase, fmt.Sprintf("internal compiler error: %v", recovered), span).
		WithSeverity(SevError)
}

// ToJSON renders the report as deterministic JSON. encoding/json sorts
// map keys when marshaling a map[string]any, so Data is stable without
// extra bookkeeping (spec.md §8 P1 determinism).
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// String renders a one-line human-readable form:
// file:line:col: severity[code]: message
func (r *Report) String() string {
	loc := "<unknown>"
	if r.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", r.Span.File, r.Span.Line, r.Span.Column)
	}
	s := fmt.Sprintf("%s: %s[%s]: %s", loc, r.Severity, r.Code, r.Message)
	if r.Fix != nil {
		s += fmt.Sprintf("\n  hint: %s", r.Fix.Message)
	}
	return s
}
