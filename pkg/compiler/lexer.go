package compiler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// eofRune marks exhaustion of the underlying reader. Any read failure is
// folded into it: the scanner itself never raises errors.
const eofRune rune = -1

// Lexer scans a character stream into tokens. It is stateful: exactly one
// pending rune is held across calls so token boundaries can be detected
// without a push-back buffer.
type Lexer struct {
	r       *bufio.Reader
	pending rune
	line    int // current 1-based source line
}

// NewLexer returns a Lexer reading from r. Reads are performed one rune at a
// time, on demand, so r may be an interactive source.
func NewLexer(r io.Reader) *Lexer {
	// The pending slot starts as a space, which the first Next call skips.
	return &Lexer{r: bufio.NewReader(r), pending: ' ', line: 1}
}

// read consumes one rune from the source. End of input and read failures
// both yield eofRune.
func (l *Lexer) read() rune {
	r, _, err := l.r.ReadRune()
	if err != nil {
		return eofRune
	}
	if r == '\n' {
		l.line++
	}
	return r
}

// Next skips whitespace and comments, then classifies and returns the next
// token. Once end of input is reached it keeps returning the EOF token.
func (l *Lexer) Next() Token {
	for l.pending != eofRune && unicode.IsSpace(l.pending) {
		l.pending = l.read()
	}

	line := l.line

	switch {
	case l.pending == eofRune:
		return Token{Type: EOF, Line: line}
	case unicode.IsLetter(l.pending):
		return l.scanIdent()
	case unicode.IsDigit(l.pending) || l.pending == '.':
		return l.scanNumber()
	case l.pending == '#':
		l.skipLineComment()
		return l.Next()
	}

	ch := l.pending
	l.pending = l.read()
	return Token{Type: PUNCT, Lexeme: string(ch), Line: line}
}

// scanIdent collects a maximal alphanumeric run starting at the pending
// letter. "def" and "extern" become keyword tokens.
func (l *Lexer) scanIdent() Token {
	line := l.line
	var sb strings.Builder
	for l.pending != eofRune && (unicode.IsLetter(l.pending) || unicode.IsDigit(l.pending)) {
		sb.WriteRune(l.pending)
		l.pending = l.read()
	}
	lexeme := sb.String()
	switch lexeme {
	case "def":
		return Token{Type: DEF, Lexeme: lexeme, Line: line}
	case "extern":
		return Token{Type: EXTERN, Lexeme: lexeme, Line: line}
	}
	return Token{Type: IDENTIFIER, Lexeme: lexeme, Line: line}
}

// scanNumber collects a maximal run of digits containing at most one '.'.
// A second '.' ends the number's extent. The run is accumulated as it is
// read so the token carries exactly the text that was scanned.
func (l *Lexer) scanNumber() Token {
	line := l.line
	var sb strings.Builder
	seenDot := false
	for l.pending != eofRune {
		if l.pending == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if !unicode.IsDigit(l.pending) {
			break
		}
		sb.WriteRune(l.pending)
		l.pending = l.read()
	}
	lexeme := sb.String()
	// A lone "." parses to 0; the scanner stays permissive.
	value, _ := strconv.ParseFloat(lexeme, 64)
	return Token{Type: NUMBER, Lexeme: lexeme, Value: value, Line: line}
}

// skipLineComment discards everything from the pending '#' up to, but not
// including, the next newline or end of input.
func (l *Lexer) skipLineComment() {
	for l.pending != eofRune && l.pending != '\n' {
		l.pending = l.read()
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) []Token {
	l := NewLexer(strings.NewReader(src))
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
