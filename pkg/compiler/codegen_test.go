package compiler_test

import (
	"strings"
	"testing"

	"kaleido/pkg/compiler"
	"kaleido/pkg/ir"
)

// compileInto lowers src into a fresh executable module with the standard
// operator table and returns both.
func compileInto(t *testing.T, src string) (*ir.Module, error) {
	t.Helper()
	m := ir.NewModule()
	err := compiler.Compile(src, m, compiler.DefaultPrecedence())
	return m, err
}

func TestRoundTrip(t *testing.T) {
	m, err := compileInto(t, "def add(a b) a+b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := m.Call("add", 2, 3)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 5 {
		t.Errorf("add(2, 3): got %g, expected 5", v)
	}
}

func TestLessThanWidensToNumber(t *testing.T) {
	m, err := compileInto(t, "def lt(a b) a<b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tests := []struct {
		a, b, expected float64
	}{
		{1, 2, 1},
		{2, 1, 0},
		{1, 1, 0},
	}
	for _, tt := range tests {
		v, err := m.Call("lt", tt.a, tt.b)
		if err != nil {
			t.Fatalf("lt(%g, %g): %v", tt.a, tt.b, err)
		}
		if v != tt.expected {
			t.Errorf("lt(%g, %g): got %g, expected %g", tt.a, tt.b, v, tt.expected)
		}
	}
}

func TestExternThenDefSharesDeclaration(t *testing.T) {
	m, err := compileInto(t, "extern foo(a b)\ndef foo(a b) a+b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if names := m.Functions(); len(names) != 1 || names[0] != "foo" {
		t.Fatalf("module functions: got %v, expected exactly [foo]", names)
	}
	v, err := m.Call("foo", 4, 6)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 10 {
		t.Errorf("foo(4, 6): got %g, expected 10", v)
	}
}

func TestCallUndeclaredFunction(t *testing.T) {
	_, err := compileInto(t, "def f(x) bar(x, 1)")
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if !strings.Contains(err.Error(), "unknown function referenced") {
		t.Errorf("error %q does not mention the unknown function", err)
	}
}

func TestCallWrongArgumentCount(t *testing.T) {
	_, err := compileInto(t, "def g(a b) a\ndef h(x) g(x)")
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if !strings.Contains(err.Error(), "incorrect number of arguments") {
		t.Errorf("error %q does not mention the argument count", err)
	}
}

func TestUnknownVariable(t *testing.T) {
	_, err := compileInto(t, "def f(x) y")
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if !strings.Contains(err.Error(), "unknown variable name") {
		t.Errorf("error %q does not mention the unknown variable", err)
	}
}

// TestSymbolTableIsPerFunction verifies that a parameter of one function is
// not visible from the body of a later one.
func TestSymbolTableIsPerFunction(t *testing.T) {
	m, err := compileInto(t, "def f(x) x\ndef g(y) x")
	if err == nil || !strings.Contains(err.Error(), "unknown variable name") {
		t.Fatalf("expected unknown variable failure for g, got %v", err)
	}
	// The earlier function is unaffected.
	if v, err := m.Call("f", 7); err != nil || v != 7 {
		t.Errorf("f(7): got %g, %v; expected 7", v, err)
	}
	if names := m.Functions(); len(names) != 1 || names[0] != "f" {
		t.Errorf("module functions: got %v, expected exactly [f]", names)
	}
}

// TestFailedBodyIsErased verifies that a definition whose body fails to
// lower leaves nothing behind, and that the name can then be defined again.
func TestFailedBodyIsErased(t *testing.T) {
	m := ir.NewModule()
	prec := compiler.DefaultPrecedence()

	if err := compiler.Compile("def f(x) nope", m, prec); err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if _, ok := m.LookupFunction("f"); ok {
		t.Fatal("failed definition still present in the module")
	}

	if err := compiler.Compile("def f(x) x*2", m, prec); err != nil {
		t.Fatalf("redefinition after failure: %v", err)
	}
	if v, err := m.Call("f", 21); err != nil || v != 42 {
		t.Errorf("f(21): got %g, %v; expected 42", v, err)
	}
}

// TestDefAfterNarrowerExtern: a def that reuses a signature declared with
// fewer parameters sees only the declared ones, so the extra name fails to
// resolve as a recoverable lowering error, never a crash or a miscompile.
func TestDefAfterNarrowerExtern(t *testing.T) {
	m, err := compileInto(t, "extern foo(a)\ndef foo(a b) a+b")
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if !strings.Contains(err.Error(), "unknown variable name") {
		t.Errorf("error %q does not mention the unknown variable", err)
	}
	if _, ok := m.LookupFunction("foo"); ok {
		t.Error("failed definition still present in the module")
	}
}

// TestDefSeesDeclaredParameterNames: when a prior extern declared the same
// arity under different names, the body is resolved against the declared
// names, matching the signature actually in the module.
func TestDefSeesDeclaredParameterNames(t *testing.T) {
	_, err := compileInto(t, "extern scale(x)\ndef scale(s) s*2")
	if err == nil || !strings.Contains(err.Error(), "unknown variable name") {
		t.Fatalf("expected unknown variable failure for %q, got %v", "s", err)
	}

	m, err := compileInto(t, "extern scale(x)\ndef scale(s) x*2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if v, err := m.Call("scale", 21); err != nil || v != 42 {
		t.Errorf("scale(21): got %g, %v; expected 42", v, err)
	}
}

// TestFailedDefErasesExternDeclaration: erasing a failed def removes the
// whole entry, even when the signature came from a prior extern.
func TestFailedDefErasesExternDeclaration(t *testing.T) {
	m, err := compileInto(t, "extern foo(a)\ndef foo(a) missing")
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if _, ok := m.LookupFunction("foo"); ok {
		t.Error("declaration survived the failed definition")
	}
}

func TestAnonymousExpressionEvaluatesAndDiscards(t *testing.T) {
	m := ir.NewModule()
	s := compiler.NewSession(
		compiler.NewLexer(strings.NewReader("1+1;")),
		compiler.DefaultPrecedence(),
		m,
	)
	var results []float64
	var present bool
	s.OnTopLevel = func(fn *compiler.Function, f compiler.Func) {
		_, present = m.LookupFunction(f.Name())
		v, err := m.Call(f.Name())
		if err != nil {
			t.Fatalf("Call(%q): %v", f.Name(), err)
		}
		results = append(results, v)
	}
	s.Run()

	if !present {
		t.Error("anonymous function was not in the module during evaluation")
	}
	if len(results) != 1 || results[0] != 2 {
		t.Errorf("results: got %v, expected [2]", results)
	}
	if _, ok := m.LookupFunction(compiler.AnonName); ok {
		t.Error("anonymous function was not erased after evaluation")
	}
	if names := m.Functions(); len(names) != 0 {
		t.Errorf("module functions after run: got %v, expected none", names)
	}
}

// TestRegisteredOperatorWithoutLoweringRule: an operator present in the
// precedence table but outside the fixed lowering set fails at lowering,
// not at parse time.
func TestRegisteredOperatorWithoutLoweringRule(t *testing.T) {
	prec := compiler.DefaultPrecedence()
	prec['/'] = 40
	m := ir.NewModule()
	err := compiler.Compile("def d(a b) a/b", m, prec)
	if err == nil {
		t.Fatal("expected lowering failure, got none")
	}
	if !strings.Contains(err.Error(), "invalid binary operator") {
		t.Errorf("error %q does not mention the invalid operator", err)
	}
	if _, ok := m.LookupFunction("d"); ok {
		t.Error("failed definition still present in the module")
	}
}

func TestNestedCalls(t *testing.T) {
	src := `
def double(x) x*2
def inc(x) x+1
def f(a b) double(inc(a)) + b
`
	m, err := compileInto(t, src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// double(inc(3)) + 4 = 8 + 4
	v, err := m.Call("f", 3, 4)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 12 {
		t.Errorf("f(3, 4): got %g, expected 12", v)
	}
}
