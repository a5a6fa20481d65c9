package analysis

import (
	"fmt"

	"github.com/exp-lang/exp/internal/ssa"
)

// typeOfOperand resolves the type of an operand at a use site. SSA
// operands must already carry a type: inference walks the block in
// order, so a use precedes its definition only when the IR is
// malformed.
func typeOfOperand(o ssa.Operand, fn *ssa.Function, m *ssa.Module) (*ssa.Type, *Error) {
	switch o.Kind {
	case ssa.OperandKindSSA:
		local := fn.LocalAt(o.SSA())
		if local.Type == nil {
			panic(fmt.Sprintf("BUG: use of ssa local %d before its definition was typed", o.SSA()))
		}
		return local.Type, nil
	case ssa.OperandKindConstant:
		return typeOfValue(m.Constants.At(o.Constant()), fn, m)
	case ssa.OperandKindI8:
		return m.Types.I8(), nil
	case ssa.OperandKindI16:
		return m.Types.I16(), nil
	case ssa.OperandKindI32:
		return m.Types.I32(), nil
	case ssa.OperandKindI64:
		return m.Types.I64(), nil
	case ssa.OperandKindU8:
		return m.Types.U8(), nil
	case ssa.OperandKindU16:
		return m.Types.U16(), nil
	case ssa.OperandKindU32:
		return m.Types.U32(), nil
	case ssa.OperandKindU64:
		return m.Types.U64(), nil
	case ssa.OperandKindLabel:
		sym := m.SymbolAtLabel(o.Label())
		if sym == nil || sym.Type == nil {
			return nil, errUndefinedSymbol(m.Strings.Get(m.Labels.At(o.Label())))
		}
		return sym.Type, nil
	default:
		panic(fmt.Sprintf("BUG: invalid operand kind %d", o.Kind))
	}
}

func typeOfValue(v *ssa.Value, fn *ssa.Function, m *ssa.Module) (*ssa.Type, *Error) {
	switch v.Kind {
	case ssa.ValueKindNil:
		return m.Types.Nil(), nil
	case ssa.ValueKindBool:
		return m.Types.Bool(), nil
	case ssa.ValueKindI8:
		return m.Types.I8(), nil
	case ssa.ValueKindI16:
		return m.Types.I16(), nil
	case ssa.ValueKindI32:
		return m.Types.I32(), nil
	case ssa.ValueKindI64:
		return m.Types.I64(), nil
	case ssa.ValueKindU8:
		return m.Types.U8(), nil
	case ssa.ValueKindU16:
		return m.Types.U16(), nil
	case ssa.ValueKindU32:
		return m.Types.U32(), nil
	case ssa.ValueKindU64:
		return m.Types.U64(), nil
	case ssa.ValueKindTuple:
		elems := make([]*ssa.Type, len(v.Tuple))
		for i, e := range v.Tuple {
			t, err := typeOfOperand(e, fn, m)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return m.Types.Tuple(elems), nil
	default:
		panic(fmt.Sprintf("BUG: invalid value kind %d", v.Kind))
	}
}
