package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_FillsSchemaAndDefaultSeverity(t *testing.T) {
	r := New(KindType, "TYP003", "check", "non-exhaustive match", nil)
	require.Equal(t, schemaVersion, r.Schema)
	require.Equal(t, SevError, r.Severity)
	require.Equal(t, "TYP003", r.Code)
	require.NotNil(t, r.Data)
}

func TestWithSeverity_ReturnsCopyNotMutatingOriginal(t *testing.T) {
	r := New(KindType, "TYP003", "check", "msg", nil)
	warn := r.WithSeverity(SevWarning)
	require.Equal(t, SevError, r.Severity)
	require.Equal(t, SevWarning, warn.Severity)
}

func TestWithData_Chaining(t *testing.T) {
	r := New(KindVerify, "VER001", "verify", "msg", nil).WithData("obligation", "div_by_zero")
	require.Equal(t, "div_by_zero", r.Data["obligation"])
}

func TestWithFix(t *testing.T) {
	r := New(KindParse, "PAR003", "parse", "missing semicolon", nil).WithFix("insert ';'", ";")
	require.Equal(t, "insert ';'", r.Fix.Message)
	require.Equal(t, ";", r.Fix.Replacement)
}

func TestWrapAndAsReport_RoundTrip(t *testing.T) {
	r := New(KindResolve, "RES002", "resolve", "duplicate declaration", nil)
	err := Wrap(r)
	require.Error(t, err)
	require.Equal(t, "RES002: duplicate declaration", err.Error())

	got, ok := AsReport(err)
	require.True(t, ok)
	require.Same(t, r, got)
}

func TestWrap_NilReportYieldsNilError(t *testing.T) {
	require.NoError(t, Wrap(nil))
}

func TestAsReport_NonReportErrorFails(t *testing.T) {
	_, ok := AsReport(errors.New("plain error"))
	require.False(t, ok)
}

func TestInternal_UsesInternalKindAndCode(t *testing.T) {
	r := Internal("lower", "nil pointer dereference", nil)
	require.Equal(t, KindInternal, r.Kind)
	require.Equal(t, INT002, r.Code)
	require.Contains(t, r.Message, "nil pointer dereference")
}

func TestReport_StringFormatsLocationWhenSpanPresent(t *testing.T) {
	r := New(KindLex, "LEX001", "lex", "unterminated string", &Span{File: "a.bmb", Line: 3, Column: 5})
	require.Equal(t, "a.bmb:3:5: error[LEX001]: unterminated string", r.String())
}

func TestReport_StringFallsBackToUnknownLocation(t *testing.T) {
	r := New(KindLex, "LEX001", "lex", "unterminated string", nil)
	require.Equal(t, "<unknown>: error[LEX001]: unterminated string", r.String())
}

func TestReport_ToJSONRoundTripsCode(t *testing.T) {
	r := New(KindType, "TYP005", "check", "purity violation", nil)
	js, err := r.ToJSON(false)
	require.NoError(t, err)
	require.Contains(t, js, `"code":"TYP005"`)
}
