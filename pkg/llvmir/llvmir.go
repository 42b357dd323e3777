// Package llvmir implements the compiler's target module on top of LLVM IR.
// Every function has type double(double, ...); the module's String form is
// .ll text suitable for llc/clang.
package llvmir

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"kaleido/pkg/compiler"
)

// Target emits into a single LLVM module.
type Target struct {
	m *ir.Module
}

func NewTarget() *Target {
	return &Target{m: ir.NewModule()}
}

// Module returns the underlying LLVM module.
func (t *Target) Module() *ir.Module { return t.m }

type fn struct {
	f *ir.Func
}

func (f fn) Name() string   { return f.f.Name() }
func (f fn) NumParams() int { return len(f.f.Params) }

func (f fn) Params() []string {
	names := make([]string, len(f.f.Params))
	for i, p := range f.f.Params {
		names[i] = p.Name()
	}
	return names
}

func (t *Target) DeclareFunction(name string, params []string) compiler.Func {
	irParams := make([]*ir.Param, len(params))
	for i, p := range params {
		irParams[i] = ir.NewParam(p, types.Double)
	}
	return fn{f: t.m.NewFunc(name, types.Double, irParams...)}
}

func (t *Target) LookupFunction(name string) (compiler.Func, bool) {
	for _, f := range t.m.Funcs {
		if f.Name() == name {
			return fn{f: f}, true
		}
	}
	return nil, false
}

func (t *Target) BeginFunctionBody(f compiler.Func) compiler.Block {
	irFn := f.(fn).f
	irFn.Blocks = nil // discard any previous body
	return &block{b: irFn.NewBlock("entry"), f: irFn}
}

func (t *Target) EraseFunction(f compiler.Func) {
	erased := f.(fn).f
	for i, g := range t.m.Funcs {
		if g == erased {
			t.m.Funcs = append(t.m.Funcs[:i], t.m.Funcs[i+1:]...)
			return
		}
	}
}

// block builds instructions in one function's entry block. Values are
// llir value.Value handles.
type block struct {
	b *ir.Block
	f *ir.Func
}

func (b *block) Param(i int) compiler.Value { return b.f.Params[i] }

func (b *block) Number(v float64) compiler.Value {
	return constant.NewFloat(types.Double, v)
}

func (b *block) Add(x, y compiler.Value) compiler.Value {
	return b.b.NewFAdd(x.(value.Value), y.(value.Value))
}

func (b *block) Sub(x, y compiler.Value) compiler.Value {
	return b.b.NewFSub(x.(value.Value), y.(value.Value))
}

func (b *block) Mul(x, y compiler.Value) compiler.Value {
	return b.b.NewFMul(x.(value.Value), y.(value.Value))
}

func (b *block) Less(x, y compiler.Value) compiler.Value {
	return b.b.NewFCmp(enum.FPredULT, x.(value.Value), y.(value.Value))
}

func (b *block) ToNumber(v compiler.Value) compiler.Value {
	return b.b.NewUIToFP(v.(value.Value), types.Double)
}

func (b *block) Call(callee compiler.Func, args []compiler.Value) compiler.Value {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = a.(value.Value)
	}
	return b.b.NewCall(callee.(fn).f, vals...)
}

func (b *block) Return(v compiler.Value) {
	b.b.NewRet(v.(value.Value))
}
