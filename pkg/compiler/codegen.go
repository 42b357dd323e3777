package compiler

import "fmt"

// CodeGen lowers completed AST nodes into a Target. All state is per
// instance: the current block and the local symbol table of the function
// being built.
type CodeGen struct {
	target Target
	block  Block
	vars   map[string]Value // parameter name -> value, reset per function body
}

func NewCodeGen(target Target) *CodeGen {
	return &CodeGen{target: target}
}

// genExpr lowers one expression node into the current block and returns the
// emitted value.
func (cg *CodeGen) genExpr(e Expr) (Value, error) {
	switch n := e.(type) {
	case *NumberLiteral:
		return cg.block.Number(n.Value), nil

	case *VariableRef:
		v, ok := cg.vars[n.Name]
		if !ok {
			return nil, fmt.Errorf("unknown variable name %q", n.Name)
		}
		return v, nil

	case *BinaryExpr:
		left, err := cg.genExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := cg.genExpr(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case '+':
			return cg.block.Add(left, right), nil
		case '-':
			return cg.block.Sub(left, right), nil
		case '*':
			return cg.block.Mul(left, right), nil
		case '<':
			// The comparison result is boolean-like; widen it back to
			// the numeric type.
			return cg.block.ToNumber(cg.block.Less(left, right)), nil
		default:
			// The precedence table may register operators this stage has
			// no rule for; that mismatch surfaces here.
			return nil, fmt.Errorf("invalid binary operator %q", n.Op)
		}

	case *CallExpr:
		callee, ok := cg.target.LookupFunction(n.Callee)
		if !ok {
			return nil, fmt.Errorf("unknown function referenced: %q", n.Callee)
		}
		if callee.NumParams() != len(n.Args) {
			return nil, fmt.Errorf("incorrect number of arguments to %q: want %d, got %d",
				n.Callee, callee.NumParams(), len(n.Args))
		}
		args := make([]Value, 0, len(n.Args))
		for _, a := range n.Args {
			v, err := cg.genExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return cg.block.Call(callee, args), nil

	default:
		return nil, fmt.Errorf("no lowering rule for %T", e)
	}
}

// GenPrototype declares proto's signature in the target. A function of the
// same name already present (for example from a prior extern) is reused
// rather than redeclared, so a later def can supply its body.
func (cg *CodeGen) GenPrototype(proto *Prototype) Func {
	if f, ok := cg.target.LookupFunction(proto.Name); ok {
		return f
	}
	return cg.target.DeclareFunction(proto.Name, proto.Params)
}

// GenFunction materializes fn: resolve or create the signature, open a fresh
// entry block, rebuild the local symbol table from the resolved signature's
// parameters, lower the body and emit it as the return value. On body failure
// the partially built function is erased from the target so no invalid
// definition remains.
func (cg *CodeGen) GenFunction(fn *Function) (Func, error) {
	f := cg.GenPrototype(fn.Proto)

	// The resolved signature may come from a prior extern whose parameters
	// differ from this def's; its declared names are what the body can see.
	cg.block = cg.target.BeginFunctionBody(f)
	params := f.Params()
	cg.vars = make(map[string]Value, len(params))
	for i, name := range params {
		cg.vars[name] = cg.block.Param(i)
	}

	ret, err := cg.genExpr(fn.Body)
	if err != nil {
		cg.target.EraseFunction(f)
		return nil, err
	}
	cg.block.Return(ret)
	return f, nil
}
