// Package lexer implements spec.md §4.1: lex(file_id, source) -> (Token
// stream, diagnostics). Restartable, never blocks; the stream is finite
// and terminates with an explicit EOF token.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sunholo/bmb/internal/errors"
)

// Lexer tokenizes BMB source.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
	file         string
	fileID       uint32

	diags []*errors.Report
}

// New creates a Lexer over already-normalized source bytes (see
// Normalize/NormalizeLineEndings).
func New(fileID uint32, file string, src []byte) *Lexer {
	l := &Lexer{input: string(src), file: file, fileID: fileID, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	ch, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.ch = ch
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	next := l.readPosition + size
	if next >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[next:])
	return ch
}

// Lex tokenizes the entire input, returning the token stream and any
// diagnostics accumulated along the way. Lexing never stops at the first
// error: unterminated strings and invalid escapes resynchronize at the
// next newline so later errors are still reported (spec.md §4.1
// "Failure").
func Lex(fileID uint32, file string, src []byte) ([]Token, []*errors.Report) {
	l := New(fileID, file, src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks, l.diags
}

func (l *Lexer) span(startOffset int) *errors.Span {
	return &errors.Span{File: l.file, Line: l.line, Column: l.column, ByteStart: startOffset, ByteEnd: l.position}
}

func (l *Lexer) errorf(startOffset int, code, msg string) {
	l.diags = append(l.diags, errors.New(errors.KindLex, code, "lexer", msg, l.span(startOffset)))
}

// resyncToNewline skips input up to and including the next newline, so
// that one bad token doesn't cascade into spurious follow-on errors.
func (l *Lexer) resyncToNewline() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// NextToken returns the next token in the stream.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	line, column, startOffset := l.line, l.column, l.position

	mk := func(tt TokenType, lit string) Token {
		return Token{Type: tt, Literal: lit, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
	}

	if l.ch == 0 {
		return mk(EOF, "")
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentifier(line, column, startOffset)
	case isDigit(l.ch):
		return l.readNumber(line, column, startOffset)
	}

	switch l.ch {
	case '"':
		return l.readString(line, column, startOffset)
	case '\'':
		return l.readChar2(line, column, startOffset)

	case '+':
		return l.readPlusFamily(mk)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return mk(ARROW, "->")
		}
		return l.readMinusFamily(mk)
	case '*':
		return l.readStarFamily(mk)
	case '/':
		l.readChar()
		return mk(SLASH, "/")
	case '%':
		l.readChar()
		return mk(PERCENT, "%")
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(EQ, "==")
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return mk(FARROW, "=>")
		}
		l.readChar()
		return mk(ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(NEQ, "!=")
		}
		l.errorf(startOffset, "LEX005", "unexpected character '!'")
		l.readChar()
		return mk(ILLEGAL, "!")
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(LTE, "<=")
		}
		l.readChar()
		return mk(LT, "<")
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return mk(GTE, ">=")
		}
		l.readChar()
		return mk(GT, ">")
	case '&':
		l.readChar()
		return mk(AMP, "&")
	case '(':
		l.readChar()
		return mk(LPAREN, "(")
	case ')':
		l.readChar()
		return mk(RPAREN, ")")
	case '{':
		l.readChar()
		return mk(LBRACE, "{")
	case '}':
		l.readChar()
		return mk(RBRACE, "}")
	case '[':
		l.readChar()
		return mk(LBRACKET, "[")
	case ']':
		l.readChar()
		return mk(RBRACKET, "]")
	case ',':
		l.readChar()
		return mk(COMMA, ",")
	case ';':
		l.readChar()
		return mk(SEMI, ";")
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return mk(DCOLON, "::")
		}
		l.readChar()
		return mk(COLON, ":")
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			return mk(DOTDOT, "..")
		}
		l.readChar()
		return mk(DOT, ".")
	case '|':
		l.readChar()
		return mk(PIPE, "|")
	case '?':
		l.readChar()
		return mk(QUESTION, "?")
	case '_':
		if !isIdentCont(l.peekChar()) {
			l.readChar()
			return mk(UNDERSCORE, "_")
		}
		return l.readIdentifier(line, column, startOffset)
	case '@':
		// Legacy path separator, rejected per spec.md §9 open question.
		l.errorf(startOffset, "LEX006", "'@' is not a valid path separator; use '::'")
		l.readChar()
		return mk(ILLEGAL, "@")
	default:
		l.errorf(startOffset, "LEX005", fmt.Sprintf("unexpected character %q", l.ch))
		l.readChar()
		return mk(ILLEGAL, string(l.ch))
	}
}

func (l *Lexer) readPlusFamily(mk func(TokenType, string) Token) Token {
	if l.peekChar() == '%' {
		l.readChar()
		l.readChar()
		return mk(PLUS_WRAP, "+%")
	}
	if l.peekChar() == '|' {
		l.readChar()
		l.readChar()
		return mk(PLUS_SAT, "+|")
	}
	if l.peekChar() == '?' {
		l.readChar()
		l.readChar()
		return mk(PLUS_CHECK, "+?")
	}
	l.readChar()
	return mk(PLUS, "+")
}

func (l *Lexer) readMinusFamily(mk func(TokenType, string) Token) Token {
	if l.peekChar() == '%' {
		l.readChar()
		l.readChar()
		return mk(MINUS_WRAP, "-%")
	}
	if l.peekChar() == '|' {
		l.readChar()
		l.readChar()
		return mk(MINUS_SAT, "-|")
	}
	if l.peekChar() == '?' {
		l.readChar()
		l.readChar()
		return mk(MINUS_CHECK, "-?")
	}
	l.readChar()
	return mk(MINUS, "-")
}

func (l *Lexer) readStarFamily(mk func(TokenType, string) Token) Token {
	if l.peekChar() == '%' {
		l.readChar()
		l.readChar()
		return mk(STAR_WRAP, "*%")
	}
	if l.peekChar() == '|' {
		l.readChar()
		l.readChar()
		return mk(STAR_SAT, "*|")
	}
	if l.peekChar() == '?' {
		l.readChar()
		l.readChar()
		return mk(STAR_CHECK, "*?")
	}
	l.readChar()
	return mk(STAR, "*")
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '-' && l.peekChar() == '-' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		break
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentCont(ch rune) bool {
	return isLetter(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) readIdentifier(line, column, startOffset int) Token {
	start := l.position
	for isIdentCont(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	tt := LookupIdent(lit)
	if tt == IDENT {
		switch lit {
		case "true":
			tt = TRUE
		case "false":
			tt = FALSE
		}
	}
	return Token{Type: tt, Literal: lit, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
}

var intSuffixes = []string{"i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128", "usize", "isize"}

func (l *Lexer) readNumber(line, column, startOffset int) Token {
	start := l.position

	// Radix-prefixed integers: 0x, 0o, 0b.
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'o' || l.peekChar() == 'b') {
		l.readChar()
		radixCh := l.ch
		l.readChar()
		digitsStart := l.position
		for isHexDigitOrUnderscore(l.ch, radixCh) {
			l.readChar()
		}
		if l.position == digitsStart {
			l.errorf(startOffset, "LEX004", "malformed numeric literal: no digits after radix prefix")
		}
		l.readOptionalSuffix(intSuffixes)
		lit := l.input[start:l.position]
		return Token{Type: INT, Literal: lit, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if isFloat {
		l.readOptionalSuffix([]string{"f32", "f64"})
		lit := l.input[start:l.position]
		return Token{Type: FLOAT, Literal: lit, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
	}

	l.readOptionalSuffix(intSuffixes)
	lit := l.input[start:l.position]
	return Token{Type: INT, Literal: lit, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
}

func isHexDigitOrUnderscore(ch, radix rune) bool {
	if ch == '_' {
		return true
	}
	switch radix {
	case 'x':
		return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
	case 'o':
		return ch >= '0' && ch <= '7'
	case 'b':
		return ch == '0' || ch == '1'
	default:
		return isDigit(ch)
	}
}

func (l *Lexer) readOptionalSuffix(candidates []string) string {
	for _, s := range candidates {
		if strings.HasPrefix(l.input[l.position:], s) {
			// Ensure the suffix isn't itself a prefix of a longer identifier.
			after := l.position + len(s)
			var afterCh rune
			if after < len(l.input) {
				afterCh, _ = utf8.DecodeRuneInString(l.input[after:])
			}
			if isIdentCont(afterCh) {
				continue
			}
			for range s {
				l.readChar()
			}
			return s
		}
	}
	return ""
}

func (l *Lexer) readString(line, column, startOffset int) Token {
	l.readChar() // consume opening quote
	var sb strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(startOffset, "LEX001", "unterminated string literal")
			l.resyncToNewline()
			return Token{Type: ILLEGAL, Literal: sb.String(), File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
		}
		if l.ch == '"' {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			r, ok := l.readEscape(startOffset)
			if !ok {
				l.resyncToNewline()
				return Token{Type: ILLEGAL, Literal: sb.String(), File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return Token{Type: STRING, Literal: sb.String(), File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
}

func (l *Lexer) readChar2(line, column, startOffset int) Token {
	l.readChar() // consume opening quote
	var r rune
	if l.ch == '\\' {
		v, ok := l.readEscape(startOffset)
		if !ok {
			l.resyncToNewline()
			return Token{Type: ILLEGAL, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
		}
		r = v
	} else if l.ch == 0 || l.ch == '\n' {
		l.errorf(startOffset, "LEX003", "unterminated character literal")
		l.resyncToNewline()
		return Token{Type: ILLEGAL, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
	} else {
		r = l.ch
		l.readChar()
	}
	if l.ch != '\'' {
		l.errorf(startOffset, "LEX003", "unterminated character literal")
		l.resyncToNewline()
		return Token{Type: ILLEGAL, File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
	}
	l.readChar()
	return Token{Type: CHAR, Literal: string(r), File: l.file, Line: line, Column: column, ByteStart: startOffset, ByteEnd: l.position}
}

// readEscape consumes a backslash escape and returns the decoded rune.
// Supported: \\ \" \n \r \t \uXXXX (spec.md §4.1).
func (l *Lexer) readEscape(startOffset int) (rune, bool) {
	l.readChar() // consume backslash
	switch l.ch {
	case '\\':
		l.readChar()
		return '\\', true
	case '"':
		l.readChar()
		return '"', true
	case '\'':
		l.readChar()
		return '\'', true
	case 'n':
		l.readChar()
		return '\n', true
	case 'r':
		l.readChar()
		return '\r', true
	case 't':
		l.readChar()
		return '\t', true
	case 'u':
		l.readChar()
		var digits strings.Builder
		for i := 0; i < 4; i++ {
			if !isHexDigitOrUnderscore(l.ch, 'x') || l.ch == '_' {
				l.errorf(startOffset, "LEX002", "invalid \\u escape: expected 4 hex digits")
				return 0, false
			}
			digits.WriteRune(l.ch)
			l.readChar()
		}
		v, err := strconv.ParseInt(digits.String(), 16, 32)
		if err != nil {
			l.errorf(startOffset, "LEX002", "invalid \\u escape: "+err.Error())
			return 0, false
		}
		return rune(v), true
	default:
		l.errorf(startOffset, "LEX002", fmt.Sprintf("invalid escape sequence '\\%c'", l.ch))
		return 0, false
	}
}
