package compiler

// Value is an opaque handle to a value produced inside a Block. Each Target
// supplies its own concrete representation; lowering only passes values back
// into the Block that produced them.
type Value any

// Func is a handle to a function declared in a Target.
type Func interface {
	Name() string
	NumParams() int
	// Params returns the declared parameter names, in order.
	Params() []string
}

// Block is the emission context for one function body. All values belong to
// the language's single numeric type except the boolean-like result of Less,
// which must pass through ToNumber before general use.
type Block interface {
	// Param returns the value bound to the i'th parameter.
	Param(i int) Value
	// Number materializes a numeric constant.
	Number(v float64) Value
	Add(x, y Value) Value
	Sub(x, y Value) Value
	Mul(x, y Value) Value
	// Less emits a less-than comparison producing a boolean-like value.
	Less(x, y Value) Value
	// ToNumber widens a boolean-like value to the numeric type:
	// 1.0 for true, 0.0 for false.
	ToNumber(v Value) Value
	// Call emits a call to a function declared in the same Target. The
	// argument count has already been checked against the callee.
	Call(callee Func, args []Value) Value
	// Return emits v as the function's return value.
	Return(v Value)
}

// Target is the mutable module the lowering pass emits into: a collection of
// function declarations and definitions keyed by unique name. Lowering never
// inspects a Target beyond these operations.
type Target interface {
	// DeclareFunction registers a signature of len(params) numeric
	// parameters returning one numeric value.
	DeclareFunction(name string, params []string) Func
	LookupFunction(name string) (Func, bool)
	// BeginFunctionBody opens a fresh entry block for f, discarding any
	// previous body.
	BeginFunctionBody(f Func) Block
	// EraseFunction removes f from the module entirely, declaration
	// included.
	EraseFunction(f Func)
}
