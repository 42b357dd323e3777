package compiler

import "fmt"

// TokenType identifies the category of a scanned token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Keywords
	DEF    // "def"
	EXTERN // "extern"

	// Literals
	IDENTIFIER // variable / function name
	NUMBER     // floating-point literal

	// Any other single character: operators, parentheses, comma, semicolon.
	// The character itself is carried in Lexeme.
	PUNCT
)

var tokenNames = [...]string{
	EOF:        "EOF",
	DEF:        "DEF",
	EXTERN:     "EXTERN",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	PUNCT:      "PUNCT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string  // the exact source text that was matched
	Value  float64 // parsed value, set only for NUMBER tokens
	Line   int     // 1-based source line
}

// Punct returns the character carried by a PUNCT token, or 0 for any other
// token type.
func (t Token) Punct() rune {
	if t.Type != PUNCT || t.Lexeme == "" {
		return 0
	}
	return []rune(t.Lexeme)[0]
}

func (t Token) String() string {
	if t.Type == NUMBER {
		return fmt.Sprintf("%-10s %-10q (%g)  line %d", t.Type, t.Lexeme, t.Value, t.Line)
	}
	return fmt.Sprintf("%-10s %-10q  line %d", t.Type, t.Lexeme, t.Line)
}
