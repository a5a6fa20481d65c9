package analysis

import (
	"github.com/exp-lang/exp/internal/ssa"
)

// AnalyzeLifetimes fills first_use and last_use for every SSA local in
// a single forward pass over the block. Formal arguments are live for
// the whole function: first_use 0, last_use the block length.
func AnalyzeLifetimes(fn *ssa.Function, m *ssa.Module) {
	for _, ssaIdx := range fn.Arguments {
		arg := fn.LocalAt(ssaIdx)
		arg.Lifetime = ssa.Lifetime{FirstUse: 0, LastUse: fn.Block.Len()}
	}

	for idx := range fn.Block.Instrs {
		instr := &fn.Block.Instrs[idx]
		i := uint32(idx)
		if instr.DefinesA() {
			defineAt(instr.A, i, fn)
		}
		useAt(instr.B, i, fn, m)
		if instr.HasC() {
			useAt(instr.C, i, fn, m)
		}
	}
}

func defineAt(o ssa.Operand, i uint32, fn *ssa.Function) {
	if o.Kind != ssa.OperandKindSSA {
		panic("BUG: instruction result is not an ssa local")
	}
	local := fn.LocalAt(o.SSA())
	local.Lifetime.FirstUse = i
	if local.Lifetime.LastUse < i {
		local.Lifetime.LastUse = i
	}
}

// useAt records a use of an SSA local. A constant tuple may embed SSA
// operands in its elements, so uses recurse through tuple constants.
func useAt(o ssa.Operand, i uint32, fn *ssa.Function, m *ssa.Module) {
	switch o.Kind {
	case ssa.OperandKindSSA:
		local := fn.LocalAt(o.SSA())
		if i > local.Lifetime.LastUse {
			local.Lifetime.LastUse = i
		}
	case ssa.OperandKindConstant:
		v := m.Constants.At(o.Constant())
		if v.Kind != ssa.ValueKindTuple {
			return
		}
		for _, elem := range v.Tuple {
			useAt(elem, i, fn, m)
		}
	default:
		// immediates and labels have no lifetime
	}
}
