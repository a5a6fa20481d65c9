package analysis

import (
	"fmt"

	"github.com/exp-lang/exp/internal/ssa"
)

// InferTypes walks fn's block in order, assigning a type to every SSA
// local and to the function's return type. After a nil return every
// local carries a non-nil type and fn.ReturnType is non-nil.
func InferTypes(fn *ssa.Function, m *ssa.Module) *Error {
	for idx := range fn.Block.Instrs {
		instr := &fn.Block.Instrs[idx]
		var err *Error
		switch instr.Op {
		case ssa.OpcodeRet:
			err = inferRet(instr, fn, m)
		case ssa.OpcodeCall:
			err = inferCall(instr, fn, m)
		case ssa.OpcodeLoad:
			err = inferLoad(instr, fn, m)
		case ssa.OpcodeDot:
			err = inferDot(instr, fn, m)
		case ssa.OpcodeNeg:
			err = inferNeg(instr, fn, m)
		case ssa.OpcodeAdd, ssa.OpcodeSub, ssa.OpcodeMul, ssa.OpcodeDiv, ssa.OpcodeMod:
			err = inferBinop(instr, fn, m)
		default:
			panic(fmt.Sprintf("BUG: invalid opcode %d", instr.Op))
		}
		if err != nil {
			return err
		}
	}

	if fn.ReturnType == nil {
		return errReturnTypeUnknown()
	}
	for i := range fn.Locals {
		if fn.Locals[i].Type == nil {
			return errReturnTypeUnknown()
		}
	}
	return nil
}

func resultLocal(instr *ssa.Instruction, fn *ssa.Function) *ssa.Local {
	if instr.A.Kind != ssa.OperandKindSSA {
		panic("BUG: instruction result is not an ssa local")
	}
	return fn.LocalAt(instr.A.SSA())
}

func inferLoad(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	local := resultLocal(instr, fn)
	bt, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	local.Type = bt
	return nil
}

func inferRet(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	bt, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	if fn.ReturnType == nil {
		fn.ReturnType = bt
	} else if fn.ReturnType != bt {
		return errTypeMismatch(fn.ReturnType, bt)
	}
	return nil
}

func inferCall(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	local := resultLocal(instr, fn)

	callee, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	if callee.Kind != ssa.TypeKindFunction {
		return errNotCallable(callee)
	}

	if instr.C.Kind != ssa.OperandKindConstant {
		panic("BUG: call actual arguments must be a constant tuple")
	}
	args := m.Constants.At(instr.C.Constant())
	if args.Kind != ssa.ValueKindTuple {
		panic("BUG: call actual arguments must be a constant tuple")
	}

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

	local.Type = callee.Ret
	return nil
}

func inferDot(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	local := resultLocal(instr, fn)

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

	local.Type = bt.Elems[index]
	return nil
}

func inferNeg(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	local := resultLocal(instr, fn)
	bt, err := typeOfOperand(instr.B, fn, m)
	if err != nil {
		return err
	}
	if !bt.IsInteger() {
		return errNotInteger(bt)
	}
	local.Type = bt
	return nil
}

func inferBinop(instr *ssa.Instruction, fn *ssa.Function, m *ssa.Module) *Error {
	local := resultLocal(instr, fn)
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
	local.Type = bt
	return nil
}
