package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func typesOf(t *testing.T, toks []Token) []TokenType {
	t.Helper()
	out := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Type)
	}
	return out
}

func TestLex_KeywordsAndOverflowOperators(t *testing.T) {
	toks, diags := Lex(0, "test", Normalize([]byte("fn pure x +% y -| z +? w")))
	require.Empty(t, diags)

	got := typesOf(t, toks)
	require.Contains(t, got, FUNC)
	require.Contains(t, got, PURE)
	require.Contains(t, got, PLUS_WRAP)
	require.Contains(t, got, MINUS_SAT)
	require.Contains(t, got, PLUS_CHECK)
	require.Equal(t, EOF, got[len(got)-1])
}

func TestLex_KeywordVsIdentifier(t *testing.T) {
	toks, diags := Lex(0, "test", Normalize([]byte("match matcher")))
	require.Empty(t, diags)
	require.Equal(t, MATCH, toks[0].Type)
	require.Equal(t, IDENT, toks[1].Type)
	require.Equal(t, "matcher", toks[1].Literal)
}

func TestLex_IntFloatStringCharLiterals(t *testing.T) {
	toks, diags := Lex(0, "test", Normalize([]byte(`42 3.14 "hello" 'a'`)))
	require.Empty(t, diags)
	require.Equal(t, INT, toks[0].Type)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, FLOAT, toks[1].Type)
	require.Equal(t, STRING, toks[2].Type)
	require.Equal(t, CHAR, toks[3].Type)
}

func TestLex_UnterminatedStringRecoversAtNewline(t *testing.T) {
	_, diags := Lex(0, "test", Normalize([]byte("\"never closed\nfn f() -> i64 = 0;")))
	require.NotEmpty(t, diags)
	require.Equal(t, "LEX001", diags[0].Code)
}

func TestLex_AtSignRejectedAsPathSeparator(t *testing.T) {
	_, diags := Lex(0, "test", Normalize([]byte("a@b")))
	require.Len(t, diags, 1)
	require.Equal(t, "LEX006", diags[0].Code)
}

func TestLex_DoubleColonNotConfusedWithColon(t *testing.T) {
	toks, diags := Lex(0, "test", Normalize([]byte("a::b : i64")))
	require.Empty(t, diags)
	require.Equal(t, []TokenType{IDENT, DCOLON, IDENT, COLON, IDENT, EOF}, typesOf(t, toks))
}

func TestLex_EveryStreamEndsInEOF(t *testing.T) {
	toks, _ := Lex(0, "test", Normalize([]byte("")))
	require.Len(t, toks, 1)
	require.Equal(t, EOF, toks[0].Type)
}
