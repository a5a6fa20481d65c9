package analysis

import (
	"fmt"

	"github.com/exp-lang/exp/internal/ssa"
)

// Validate rejects malformed IR after inference and lifetime analysis.
// Type-unsafe operand use surfaces as an *Error; violated structural
// invariants (missing types, broken lifetimes, duplicate SSA
// definitions) are compiler bugs and panic.
func Validate(fn *ssa.Function, m *ssa.Module) *Error {
	if err := validateLocals(fn); err != nil {
		return err
	}
	for idx := range fn.Block.Instrs {
		instr := &fn.Block.Instrs[idx]
		i := uint32(idx)
		if err := validatePositions(instr, i, fn, m); err != nil {
			return err
		}
		if err := validateTypes(instr, fn, m); err != nil {
			return err
		}
	}
	return nil
}

func validateLocals(fn *ssa.Function) *Error {
	isArgument := make(map[uint32]bool, len(fn.Arguments))
	for _, a := range fn.Arguments {
		isArgument[a] = true
	}
	for i := range fn.Locals {
		local := &fn.Locals[i]
		if local.Type == nil {
			panic(fmt.Sprintf("BUG: local %d has no type after inference", local.SSA))
		}
		lt := local.Lifetime
		if lt.FirstUse > lt.LastUse {
			panic(fmt.Sprintf("BUG: local %d has inverted lifetime [%d, %d]", local.SSA, lt.FirstUse, lt.LastUse))
		}
		// arguments live through the whole block, last_use == block length.
		if !isArgument[local.SSA] && lt.LastUse >= fn.Block.Len() {
			panic(fmt.Sprintf("BUG: local %d lifetime end %d outside block of length %d", local.SSA, lt.LastUse, fn.Block.Len()))
		}
	}
	return nil
}

func validatePositions(instr *ssa.Instruction, i uint32, fn *ssa.Function, m *ssa.Module) *Error {
	if instr.DefinesA() {
		if instr.A.Kind != ssa.OperandKindSSA {
			panic("BUG: instruction result is not an ssa local")
		}
		local := fn.LocalAt(instr.A.SSA())
		// first_use must equal the defining index; a mismatch means a
		// duplicate SSA definition or stale lifetime metadata.
		if local.Lifetime.FirstUse != i {
			panic(fmt.Sprintf("BUG: local %d defined at %d but first_use is %d", local.SSA, i, local.Lifetime.FirstUse))
		}
	}
	if err := validateUse(instr.B, i, fn, m); err != nil {
		return err
	}
	if instr.HasC() {
		if err := validateUse(instr.C, i, fn, m); err != nil {
			return err
		}
	}
	return nil
}

func validateUse(o ssa.Operand, i uint32, fn *ssa.Function, m *ssa.Module) *Error {
	switch o.Kind {
	case ssa.OperandKindSSA:
		local := fn.LocalAt(o.SSA())
		lt := local.Lifetime
		if i < lt.FirstUse || i > lt.LastUse {
			panic(fmt.Sprintf("BUG: local %d used at %d outside lifetime [%d, %d]", local.SSA, i, lt.FirstUse, lt.LastUse))
		}
	case ssa.OperandKindLabel:
		sym := m.SymbolAtLabel(o.Label())
		if sym == nil || sym.Type == nil {
			return errUndefinedSymbol(m.Strings.Get(m.Labels.At(o.Label())))
		}
	case ssa.OperandKindConstant:
		v := m.Constants.At(o.Constant())
		if v.Kind != ssa.ValueKindTuple {
			return nil
		}
		for _, elem := range v.Tuple {
			if err := validateUse(elem, i, fn, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTypes(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	switch instr.Op {
	case ssa.OpcodeLoad:
		a := fn.LocalAt(instr.A.SSA()).Type
		bt, err := typeOfOperand(instr.B, fn, m)
		if err != nil {
			return err
		}
		if a != bt {
			return errTypeMismatch(a, bt)
		}
	case ssa.OpcodeRet:
		bt, err := typeOfOperand(instr.B, fn, m)
		if err != nil {
			return err
		}
		if bt != fn.ReturnType {
			return errTypeMismatch(fn.ReturnType, bt)
		}
	case ssa.OpcodeCall:
		return validateCallTypes(instr, fn, m)
	case ssa.OpcodeDot:
		return validateDotTypes(instr, fn, m)
	case ssa.OpcodeNeg:
		a := fn.LocalAt(instr.A.SSA()).Type
		bt, err := typeOfOperand(instr.B, fn, m)
		if err != nil {
			return err
		}
		if !bt.IsInteger() {
			return errNotInteger(bt)
		}
		if a != bt {
			return errTypeMismatch(a, bt)
		}
	case ssa.OpcodeAdd, ssa.OpcodeSub, ssa.OpcodeMul, ssa.OpcodeDiv, ssa.OpcodeMod:
		a := fn.LocalAt(instr.A.SSA()).Type
		bt, err := typeOfOperand(instr.B, fn, m)
		if err != nil {
			return err
		}
		ct, err := typeOfOperand(instr.C, fn, m)
		if err != nil {
			return err
		}
		if !bt.IsInteger() {
			return errNotInteger(bt)
		}
		if bt != ct {
			return errTypeMismatch(bt, ct)
		}
		if a != bt {
			return errTypeMismatch(bt, a)
		}
	default:
		panic(fmt.Sprintf("BUG: invalid opcode %d", instr.Op))
	}
	return nil
}

func validateCallTypes(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	callee, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	if callee.Kind != ssa.TypeKindFunction {
		return errNotCallable(callee)
	}
	args := m.Constants.At(instr.C.Constant())
	if len(args.Tuple) != len(callee.Args) {
		return errArgumentCount(len(callee.Args), len(args.Tuple))
	}
	for i, actual := range args.Tuple {
		at, err := typeOfOperand(actual, fn, m)
		if err != nil {
			return err
		}
		if at != callee.Args[i] {
			return errTypeMismatch(callee.Args[i], at)
		}
	}
	if a := fn.LocalAt(instr.A.SSA()).Type; a != callee.Ret {
		return errTypeMismatch(callee.Ret, a)
	}
	return nil
}

func validateDotTypes(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	bt, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	if bt.Kind != ssa.TypeKindTuple {
		return errNotIndexable(bt)
	}
	if instr.C.Kind != ssa.OperandKindI32 {
		return errTupleIndexNotImmediate()
	}
	index := instr.C.I32()
	if index < 0 || int(index) >= len(bt.Elems) {
		return errTupleIndexOutOfBounds(index, len(bt.Elems))
	}
	if a := fn.LocalAt(instr.A.SSA()).Type; a != bt.Elems[index] {
		return errTypeMismatch(bt.Elems[index], a)
	}
	return nil
}
