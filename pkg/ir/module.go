// Package ir is an executable target module for the compiler: functions are
// built as a flat register-based intermediate representation that a small
// evaluator can run directly. It fills the backend role for the interactive
// driver, where results must be computed immediately.
package ir

import (
	"fmt"
	"strings"

	"kaleido/pkg/compiler"
)

type opcode byte

const (
	opConst opcode = iota
	opAdd
	opSub
	opMul
	opLess
	opWiden
	opCall
	opRet
)

var opNames = [...]string{
	opConst: "const",
	opAdd:   "add",
	opSub:   "sub",
	opMul:   "mul",
	opLess:  "less",
	opWiden: "widen",
	opCall:  "call",
	opRet:   "ret",
}

// instr is one instruction. dst is the register written (-1 for ret); a and
// b are register operands. opConst uses imm; opCall uses callee and args.
type instr struct {
	op     opcode
	dst    int
	a, b   int
	imm    float64
	callee string
	args   []int
}

// Function is one entry in a Module. Parameters occupy registers
// 0..len(params)-1. A function that was only declared (an extern with no
// def yet) has defined == false and cannot be evaluated.
type Function struct {
	name    string
	params  []string
	code    []instr
	regs    int
	defined bool
}

func (f *Function) Name() string   { return f.name }
func (f *Function) NumParams() int { return len(f.params) }

// Params returns the declared parameter names. Callers must not modify the
// returned slice.
func (f *Function) Params() []string { return f.params }

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(%s)", f.name, strings.Join(f.params, " "))
	if !f.defined {
		sb.WriteString(" ; declared\n")
		return sb.String()
	}
	sb.WriteString(":\n")
	for _, in := range f.code {
		switch in.op {
		case opConst:
			fmt.Fprintf(&sb, "  r%d = const %g\n", in.dst, in.imm)
		case opAdd, opSub, opMul, opLess:
			fmt.Fprintf(&sb, "  r%d = %s r%d, r%d\n", in.dst, opNames[in.op], in.a, in.b)
		case opWiden:
			fmt.Fprintf(&sb, "  r%d = widen r%d\n", in.dst, in.a)
		case opCall:
			parts := make([]string, len(in.args))
			for i, r := range in.args {
				parts[i] = fmt.Sprintf("r%d", r)
			}
			fmt.Fprintf(&sb, "  r%d = call %s(%s)\n", in.dst, in.callee, strings.Join(parts, ", "))
		case opRet:
			fmt.Fprintf(&sb, "  ret r%d\n", in.a)
		}
	}
	return sb.String()
}

// Module is a mutable collection of functions keyed by unique name.
// Declaration order is preserved for dumps.
type Module struct {
	funcs map[string]*Function
	order []string
}

func NewModule() *Module {
	return &Module{funcs: make(map[string]*Function)}
}

// Functions returns the names currently in the module, in declaration order.
func (m *Module) Functions() []string {
	return append([]string(nil), m.order...)
}

// String renders every function as a readable IR listing.
func (m *Module) String() string {
	var sb strings.Builder
	for _, name := range m.order {
		sb.WriteString(m.funcs[name].String())
	}
	return sb.String()
}

// DeclareFunction registers a new signature. The caller guarantees the name
// is not already present.
func (m *Module) DeclareFunction(name string, params []string) compiler.Func {
	f := &Function{
		name:   name,
		params: append([]string(nil), params...),
		regs:   len(params),
	}
	m.funcs[name] = f
	m.order = append(m.order, name)
	return f
}

func (m *Module) LookupFunction(name string) (compiler.Func, bool) {
	f, ok := m.funcs[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// BeginFunctionBody discards any previous body of f and returns a builder
// for a fresh one. f stays undefined until Return is emitted.
func (m *Module) BeginFunctionBody(f compiler.Func) compiler.Block {
	fn := f.(*Function)
	fn.code = fn.code[:0]
	fn.regs = len(fn.params)
	fn.defined = false
	return &builder{fn: fn}
}

// EraseFunction removes f from the module entirely, declaration included.
func (m *Module) EraseFunction(f compiler.Func) {
	name := f.Name()
	delete(m.funcs, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// builder implements compiler.Block. Values are register indices within the
// function being built.
type builder struct {
	fn *Function
}

func (b *builder) emit(in instr) compiler.Value {
	in.dst = b.fn.regs
	b.fn.regs++
	b.fn.code = append(b.fn.code, in)
	return in.dst
}

func (b *builder) Param(i int) compiler.Value { return i }

func (b *builder) Number(v float64) compiler.Value {
	return b.emit(instr{op: opConst, imm: v})
}

func (b *builder) Add(x, y compiler.Value) compiler.Value {
	return b.emit(instr{op: opAdd, a: x.(int), b: y.(int)})
}

func (b *builder) Sub(x, y compiler.Value) compiler.Value {
	return b.emit(instr{op: opSub, a: x.(int), b: y.(int)})
}

func (b *builder) Mul(x, y compiler.Value) compiler.Value {
	return b.emit(instr{op: opMul, a: x.(int), b: y.(int)})
}

func (b *builder) Less(x, y compiler.Value) compiler.Value {
	return b.emit(instr{op: opLess, a: x.(int), b: y.(int)})
}

func (b *builder) ToNumber(v compiler.Value) compiler.Value {
	return b.emit(instr{op: opWiden, a: v.(int)})
}

// Call records the callee by name, not by pointer, so an erased and
// redeclared function never leaves a dangling reference.
func (b *builder) Call(callee compiler.Func, args []compiler.Value) compiler.Value {
	regs := make([]int, len(args))
	for i, a := range args {
		regs[i] = a.(int)
	}
	return b.emit(instr{op: opCall, callee: callee.Name(), args: regs})
}

func (b *builder) Return(v compiler.Value) {
	b.fn.code = append(b.fn.code, instr{op: opRet, dst: -1, a: v.(int)})
	b.fn.defined = true
}
