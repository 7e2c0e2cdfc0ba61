package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips an optional UTF-8 BOM (spec.md §6.1: "if present, it is
// ignored") and applies Unicode NFC normalization, so that lexically
// equivalent source encoded differently (e.g. a string literal containing
// a combining-character sequence vs. its precomposed form) produces
// identical tokens — required for the interning determinism of spec.md
// §4.8/§9.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}

// NormalizeLineEndings converts CRLF to LF, per spec.md §6.1 ("line
// endings LF or CRLF (normalized to LF internally)").
func NormalizeLineEndings(src []byte) []byte {
	if !bytes.Contains(src, []byte("\r\n")) {
		return src
	}
	return bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
}
