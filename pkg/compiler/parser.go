package compiler

import "fmt"

// Parser consumes tokens from a Lexer one at a time and builds AST nodes.
//
// Grammar:
//
//	toplevel   = definition | extern | expression | ";"
//	definition = "def" prototype expression
//	extern     = "extern" prototype
//	prototype  = IDENTIFIER "(" IDENTIFIER* ")"
//	expression = primary binoprhs
//	binoprhs   = (BINOP primary)*            ; precedence climbing
//	primary    = IDENTIFIER | identifier "(" args ")" | NUMBER | "(" expression ")"
//
// It holds exactly one token of lookahead and advances explicitly; binary
// expressions are parsed by precedence climbing over a table supplied at
// construction.
type Parser struct {
	lex  *Lexer
	cur  Token
	prec map[rune]int
}

// DefaultPrecedence returns the language's standard binary-operator table:
// '<' binds weakest, then '+' and '-', then '*'. Callers may extend the
// returned map before handing it to NewParser.
func DefaultPrecedence() map[rune]int {
	return map[rune]int{'<': 10, '+': 20, '-': 20, '*': 40}
}

// NewParser wires a parser to lex with the given precedence table. The first
// token is not read until Next is called.
func NewParser(lex *Lexer, prec map[rune]int) *Parser {
	return &Parser{lex: lex, prec: prec}
}

// Next advances the lookahead to the following token and returns it.
func (p *Parser) Next() Token {
	p.cur = p.lex.Next()
	return p.cur
}

// Current returns the lookahead token without consuming it.
func (p *Parser) Current() Token { return p.cur }

func (p *Parser) isPunct(r rune) bool {
	return p.cur.Type == PUNCT && p.cur.Punct() == r
}

// errf wraps a parse failure message with the line of the offending token.
func (p *Parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.cur.Line, fmt.Sprintf(format, args...))
}

// tokenPrecedence returns the binary precedence of the lookahead, or -1 when
// it is not a registered binary operator.
func (p *Parser) tokenPrecedence() int {
	if p.cur.Type != PUNCT {
		return -1
	}
	prec, ok := p.prec[p.cur.Punct()]
	if !ok || prec <= 0 {
		return -1
	}
	return prec
}

// parseNumberExpr consumes a NUMBER token.
func (p *Parser) parseNumberExpr() (Expr, error) {
	expr := &NumberLiteral{Value: p.cur.Value}
	p.Next() // eat number
	return expr, nil
}

// parseParenExpr consumes "(" expression ")". The parentheses leave no node
// of their own.
func (p *Parser) parseParenExpr() (Expr, error) {
	p.Next() // eat (
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(')') {
		return nil, p.errf("expected ')'")
	}
	p.Next() // eat )
	return expr, nil
}

// parseIdentifierExpr consumes an identifier, greedily treating a following
// "(" as a call with comma-separated arguments.
func (p *Parser) parseIdentifierExpr() (Expr, error) {
	name := p.cur.Lexeme
	p.Next() // eat identifier

	if !p.isPunct('(') {
		return &VariableRef{Name: name}, nil
	}

	p.Next() // eat (
	var args []Expr
	if !p.isPunct(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.isPunct(')') {
				break
			}
			if !p.isPunct(',') {
				return nil, p.errf("expected ')' or ',' in argument list")
			}
			p.Next() // eat ,
		}
	}
	p.Next() // eat )

	return &CallExpr{Callee: name, Args: args}, nil
}

// parsePrimary dispatches on the lookahead token.
func (p *Parser) parsePrimary() (Expr, error) {
	switch {
	case p.cur.Type == IDENTIFIER:
		return p.parseIdentifierExpr()
	case p.cur.Type == NUMBER:
		return p.parseNumberExpr()
	case p.isPunct('('):
		return p.parseParenExpr()
	default:
		return nil, p.errf("unknown token when expecting an expression")
	}
}

// parseBinOpRHS is the precedence-climbing loop. It absorbs operator/operand
// pairs into lhs while the operator's precedence is at least minPrec,
// recursing only when the following operator binds strictly tighter. Equal
// precedence therefore folds left-associatively.
func (p *Parser) parseBinOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		tokPrec := p.tokenPrecedence()
		if tokPrec < minPrec {
			return lhs, nil
		}

		op := p.cur.Punct()
		p.Next() // eat the operator

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		// If the next operator binds tighter, it takes rhs first.
		if tokPrec < p.tokenPrecedence() {
			rhs, err = p.parseBinOpRHS(tokPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{Op: op, Left: lhs, Right: rhs}
	}
}

// ParseExpression parses one full expression starting at the lookahead.
func (p *Parser) ParseExpression() (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parsePrototype parses "name ( param* )".
func (p *Parser) parsePrototype() (*Prototype, error) {
	if p.cur.Type != IDENTIFIER {
		return nil, p.errf("expected function name in prototype")
	}
	name := p.cur.Lexeme
	p.Next() // eat name

	if !p.isPunct('(') {
		return nil, p.errf("expected '(' in prototype")
	}

	var params []string
	for p.Next().Type == IDENTIFIER {
		params = append(params, p.cur.Lexeme)
	}
	if !p.isPunct(')') {
		return nil, p.errf("expected ')' in prototype")
	}
	p.Next() // eat )

	return &Prototype{Name: name, Params: params}, nil
}

// ParseDefinition parses "def" prototype expression. The lookahead must be
// the DEF token.
func (p *Parser) ParseDefinition() (*Function, error) {
	p.Next() // eat def
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: proto, Body: body}, nil
}

// ParseExtern parses "extern" prototype. The lookahead must be the EXTERN
// token.
func (p *Parser) ParseExtern() (*Prototype, error) {
	p.Next() // eat extern
	return p.parsePrototype()
}

// ParseTopLevelExpr parses one bare expression and wraps it in an anonymous
// zero-parameter function named AnonName.
func (p *Parser) ParseTopLevelExpr() (*Function, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: &Prototype{Name: AnonName}, Body: body}, nil
}
