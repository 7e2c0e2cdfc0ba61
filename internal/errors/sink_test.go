package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSink_AddIgnoresNil(t *testing.T) {
	s := NewSink()
	s.Add(nil)
	require.Empty(t, s.Reports())
}

func TestSink_HasErrorsAndExitCode(t *testing.T) {
	s := NewSink()
	require.False(t, s.HasErrors())
	require.Equal(t, 0, s.ExitCode())

	s.Add(New(KindType, "TYP003", "check", "non-exhaustive match", nil))
	require.True(t, s.HasErrors())
	require.Equal(t, 1, s.ExitCode())
}

func TestSink_WarningAloneDoesNotSetExitCode(t *testing.T) {
	s := NewSink()
	s.Add(New(KindType, "TYP003", "check", "msg", nil).WithSeverity(SevWarning))
	require.False(t, s.HasErrors())
	require.Equal(t, 0, s.ExitCode())
}

func TestSink_ReportsSortByFileThenByteOffset(t *testing.T) {
	s := NewSink()
	s.RegisterStage("parse")

	s.Add(New(KindParse, "PAR001", "parse", "b.bmb second", &Span{File: "b.bmb", ByteStart: 0}))
	s.Add(New(KindParse, "PAR001", "parse", "a.bmb second", &Span{File: "a.bmb", ByteStart: 10}))
	s.Add(New(KindParse, "PAR001", "parse", "a.bmb first", &Span{File: "a.bmb", ByteStart: 2}))

	got := s.Reports()
	require.Len(t, got, 3)
	require.Equal(t, "a.bmb first", got[0].Message)
	require.Equal(t, "a.bmb second", got[1].Message)
	require.Equal(t, "b.bmb second", got[2].Message)
}

func TestSink_ReportsTieBreakByStageOrder(t *testing.T) {
	s := NewSink()
	s.RegisterStage("parse")
	s.RegisterStage("check")

	s.Add(New(KindType, "TYP003", "check", "from check stage", &Span{File: "a.bmb", ByteStart: 5}))
	s.Add(New(KindParse, "PAR001", "parse", "from parse stage", &Span{File: "a.bmb", ByteStart: 5}))

	got := s.Reports()
	require.Len(t, got, 2)
	require.Equal(t, "from parse stage", got[0].Message)
	require.Equal(t, "from check stage", got[1].Message)
}

func TestSink_ReportsIsStableAndDoesNotMutateInput(t *testing.T) {
	s := NewSink()
	r1 := New(KindParse, "PAR001", "parse", "first", &Span{File: "a.bmb", ByteStart: 0})
	r2 := New(KindParse, "PAR001", "parse", "second", &Span{File: "a.bmb", ByteStart: 0})
	s.Add(r1)
	s.Add(r2)

	got := s.Reports()
	require.Equal(t, "first", got[0].Message)
	require.Equal(t, "second", got[1].Message)
}
