package ir

import "fmt"

// maxDepth bounds call nesting during evaluation. The language has no
// conditionals, so a recursive call can never terminate on its own.
const maxDepth = 1000

// Call evaluates the named function with the given arguments.
func (m *Module) Call(name string, args ...float64) (float64, error) {
	fn, ok := m.funcs[name]
	if !ok {
		return 0, fmt.Errorf("no function %q in module", name)
	}
	return m.eval(fn, args, 0)
}

func (m *Module) eval(fn *Function, args []float64, depth int) (float64, error) {
	if !fn.defined {
		return 0, fmt.Errorf("function %q is declared but has no body", fn.name)
	}
	if len(args) != len(fn.params) {
		return 0, fmt.Errorf("function %q takes %d arguments, got %d",
			fn.name, len(fn.params), len(args))
	}
	if depth >= maxDepth {
		return 0, fmt.Errorf("call depth limit exceeded in %q", fn.name)
	}

	regs := make([]float64, fn.regs)
	copy(regs, args)

	for _, in := range fn.code {
		switch in.op {
		case opConst:
			regs[in.dst] = in.imm
		case opAdd:
			regs[in.dst] = regs[in.a] + regs[in.b]
		case opSub:
			regs[in.dst] = regs[in.a] - regs[in.b]
		case opMul:
			regs[in.dst] = regs[in.a] * regs[in.b]
		case opLess:
			if regs[in.a] < regs[in.b] {
				regs[in.dst] = 1
			} else {
				regs[in.dst] = 0
			}
		case opWiden:
			// Comparison flags are already 0/1 in this representation.
			regs[in.dst] = regs[in.a]
		case opCall:
			callee, ok := m.funcs[in.callee]
			if !ok {
				return 0, fmt.Errorf("call to unknown function %q", in.callee)
			}
			callArgs := make([]float64, len(in.args))
			for i, r := range in.args {
				callArgs[i] = regs[r]
			}
			v, err := m.eval(callee, callArgs, depth+1)
			if err != nil {
				return 0, err
			}
			regs[in.dst] = v
		case opRet:
			return regs[in.a], nil
		}
	}
	return 0, fmt.Errorf("function %q ended without returning", fn.name)
}
