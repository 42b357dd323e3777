// Package compiler is the front end for a small expression language:
// numeric literals, named variables, binary operators, function calls,
// 'def' function definitions and 'extern' function declarations.
//
// Pipeline: source → Lex → Parse → CodeGen → Target module
//
// The Target is abstract; pkg/ir provides an executable register IR and
// pkg/llvmir emits LLVM IR.
package compiler

import "strings"

// Session drives one parse-and-lower run over a single token stream into a
// single target module. The hooks observe successful lowerings; Report
// receives every recoverable failure. Nil hooks are skipped.
type Session struct {
	parser *Parser
	gen    *CodeGen

	Report       func(err error)
	OnDefinition func(fn *Function, f Func)
	OnExtern     func(proto *Prototype, f Func)
	// OnTopLevel runs while the anonymous function is still present in the
	// target; the function is erased as soon as the hook returns.
	OnTopLevel func(fn *Function, f Func)
}

func NewSession(lex *Lexer, prec map[rune]int, target Target) *Session {
	return &Session{
		parser: NewParser(lex, prec),
		gen:    NewCodeGen(target),
	}
}

// Run reads top-level constructs until end of input, dispatching on the
// leading token: 'def' introduces a definition, 'extern' a declaration, ';'
// is skipped, and anything else is a bare expression lowered as an anonymous
// function. Failures are reported and recovered by advancing one token.
func (s *Session) Run() {
	p := s.parser
	p.Next() // prime the lookahead
	for {
		switch {
		case p.Current().Type == EOF:
			return
		case p.isPunct(';'):
			p.Next() // eat loose semicolon
		case p.Current().Type == DEF:
			s.handleDefinition()
		case p.Current().Type == EXTERN:
			s.handleExtern()
		default:
			s.handleTopLevel()
		}
	}
}

func (s *Session) report(err error) {
	if s.Report != nil {
		s.Report(err)
	}
}

func (s *Session) handleDefinition() {
	fn, err := s.parser.ParseDefinition()
	if err != nil {
		s.report(err)
		s.parser.Next() // skip the offending token
		return
	}
	f, err := s.gen.GenFunction(fn)
	if err != nil {
		s.report(err)
		return
	}
	if s.OnDefinition != nil {
		s.OnDefinition(fn, f)
	}
}

func (s *Session) handleExtern() {
	proto, err := s.parser.ParseExtern()
	if err != nil {
		s.report(err)
		s.parser.Next() // skip the offending token
		return
	}
	f := s.gen.GenPrototype(proto)
	if s.OnExtern != nil {
		s.OnExtern(proto, f)
	}
}

func (s *Session) handleTopLevel() {
	fn, err := s.parser.ParseTopLevelExpr()
	if err != nil {
		s.report(err)
		s.parser.Next() // skip the offending token
		return
	}
	f, err := s.gen.GenFunction(fn)
	if err != nil {
		s.report(err)
		return
	}
	if s.OnTopLevel != nil {
		s.OnTopLevel(fn, f)
	}
	s.gen.target.EraseFunction(f)
}

// Compile runs the whole pipeline over src, lowering every definition and
// extern into target. Top-level expressions are lowered and then erased
// again, as in the interactive driver. Compilation continues past failures;
// the first one is returned.
func Compile(src string, target Target, prec map[rune]int) error {
	var firstErr error
	s := NewSession(NewLexer(strings.NewReader(src)), prec, target)
	s.Report = func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	s.Run()
	return firstErr
}
