package amd64

import (
	"fmt"

	"github.com/exp-lang/exp/internal/backend/regalloc"
	"github.com/exp-lang/exp/internal/ints"
	"github.com/exp-lang/exp/internal/ssa"
)

// Body is the compiled x86-64 form of one function.
type Body struct {
	bc        bytecode
	StackSize uint32
}

// machine drives the per-instruction lowering. It owns the register
// allocator for the duration of one function and implements
// regalloc.Emitter so spill and shuffle movs land in the same
// instruction stream.
type machine struct {
	mod   *ssa.Module
	fn    *ssa.Function
	alloc *regalloc.Allocator
	bc    bytecode
	err   error
}

// Compile lowers fn to x86-64. The returned body carries the final
// frame size; the prologue is already prepended.
func Compile(mod *ssa.Module, fn *ssa.Function) (*Body, error) {
	m := &machine{mod: mod, fn: fn}
	m.alloc = regalloc.NewAllocator(m, RSP, RBP)

	if len(fn.Arguments) > NumArgumentRegs {
		return nil, fmt.Errorf("function takes %d arguments; at most %d pass in registers", len(fn.Arguments), NumArgumentRegs)
	}
	for k, ssaIdx := range fn.Arguments {
		m.alloc.PreallocateArgument(fn.LocalAt(ssaIdx), ArgumentReg(k))
	}

	for idx := range fn.Block.Instrs {
		i := uint32(idx)
		m.alloc.ExpireOldLifetimes(i)
		m.lower(&fn.Block.Instrs[idx], i)
		if m.err != nil {
			return nil, m.err
		}
	}

	stackSize := m.alloc.StackSize()
	if stackSize > 0 {
		m.bc.prepend(newSub(newOperandGPR(RSP), newOperandImm(int64(stackSize))))
	}
	m.bc.prepend(newMov(newOperandGPR(RBP), newOperandGPR(RSP)))
	m.bc.prepend(newPush(newOperandGPR(RBP)))

	return &Body{bc: m.bc, StackSize: stackSize}, nil
}

// EmitMove implements regalloc.Emitter.
func (m *machine) EmitMove(dst, src regalloc.Location) {
	m.bc.append(newMov(newOperandLocation(dst), newOperandLocation(src)))
}

func (m *machine) lower(instr *ssa.Instruction, i uint32) {
	switch instr.Op {
	case ssa.OpcodeRet:
		m.lowerRet(instr, i)
	case ssa.OpcodeCall:
		m.lowerCall(instr, i)
	case ssa.OpcodeLoad:
		m.lowerLoad(instr, i)
	case ssa.OpcodeDot:
		m.lowerDot(instr, i)
	case ssa.OpcodeNeg:
		m.lowerNeg(instr, i)
	case ssa.OpcodeAdd:
		m.lowerAdd(instr, i)
	case ssa.OpcodeSub:
		m.lowerSub(instr, i)
	case ssa.OpcodeMul:
		m.lowerMul(instr, i)
	case ssa.OpcodeDiv:
		m.lowerDivMod(instr, i, false)
	case ssa.OpcodeMod:
		m.lowerDivMod(instr, i, true)
	default:
		panic(fmt.Sprintf("BUG: invalid opcode %d", instr.Op))
	}
}

func (m *machine) fail(format string, args ...interface{}) {
	if m.err == nil {
		m.err = fmt.Errorf(format, args...)
	}
}

func (m *machine) resultLocal(instr *ssa.Instruction) *ssa.Local {
	return m.fn.LocalAt(instr.A.SSA())
}

// diesAt reports whether an allocation's lifetime ends at instruction
// i, making its location safe to reuse for the result.
func diesAt(al *regalloc.Allocation, i uint32) bool {
	return al.Lifetime.LastUse <= i
}

func (m *machine) allocationOf(o ssa.Operand) *regalloc.Allocation {
	al := m.alloc.AllocationOf(o.SSA())
	if al == nil {
		panic(fmt.Sprintf("BUG: ssa local %d has no active allocation", o.SSA()))
	}
	return al
}

// scalarImm returns the immediate bits of a scalar constant.
func scalarImm(v *ssa.Value) int64 {
	switch v.Kind {
	case ssa.ValueKindI8, ssa.ValueKindI16, ssa.ValueKindI32, ssa.ValueKindI64:
		return v.I
	case ssa.ValueKindU8, ssa.ValueKindU16, ssa.ValueKindU32, ssa.ValueKindU64:
		return int64(v.U)
	case ssa.ValueKindBool:
		if v.B {
			return 1
		}
		return 0
	case ssa.ValueKindNil:
		return 0
	default:
		panic(fmt.Sprintf("BUG: value kind %d has no immediate form", v.Kind))
	}
}

// immOf returns the immediate bits of an immediate or scalar-constant
// operand.
func (m *machine) immOf(o ssa.Operand) int64 {
	if o.IsImmediate() {
		return o.Imm()
	}
	if o.Kind == ssa.OperandKindConstant {
		return scalarImm(m.mod.Constants.At(o.Constant()))
	}
	panic("BUG: operand has no immediate form")
}

// copyLoc emits dst = src. A memory-to-memory copy routes through a
// scratch register.
func (m *machine) copyLoc(dst, src regalloc.Location) {
	if dst.Equal(src) {
		return
	}
	if dst.Kind != regalloc.LocationKindRegister && src.Kind != regalloc.LocationKindRegister {
		scratch := m.alloc.AcquireAnyGPR()
		m.bc.append(newMov(newOperandGPR(scratch), newOperandLocation(src)))
		m.bc.append(newMov(newOperandLocation(dst), newOperandGPR(scratch)))
		m.alloc.ReleaseGPR(scratch)
		return
	}
	m.bc.append(newMov(newOperandLocation(dst), newOperandLocation(src)))
}

// moveImm emits dst = v, using movabs when v does not fit a
// sign-extended imm32. A wide store to memory routes through a scratch
// register since movabs only targets registers.
func (m *machine) moveImm(dst regalloc.Location, v int64) {
	dstOp := newOperandLocation(dst)
	if ints.InRangeI32(v) {
		m.bc.append(newMov(dstOp, newOperandImm(v)))
		return
	}
	if dst.Kind == regalloc.LocationKindRegister {
		m.bc.append(newMovAbs(dstOp, newOperandImm(v)))
		return
	}
	scratch := m.alloc.AcquireAnyGPR()
	m.bc.append(newMovAbs(newOperandGPR(scratch), newOperandImm(v)))
	m.bc.append(newMov(dstOp, newOperandGPR(scratch)))
	m.alloc.ReleaseGPR(scratch)
}

// moveOperand emits dst = src for any scalar IR operand.
func (m *machine) moveOperand(dst regalloc.Location, src ssa.Operand) {
	switch src.Kind {
	case ssa.OperandKindSSA:
		m.copyLoc(dst, m.allocationOf(src).Loc)
	case ssa.OperandKindConstant, ssa.OperandKindI8, ssa.OperandKindI16,
		ssa.OperandKindI32, ssa.OperandKindI64, ssa.OperandKindU8,
		ssa.OperandKindU16, ssa.OperandKindU32, ssa.OperandKindU64:
		m.moveImm(dst, m.immOf(src))
	default:
		panic(fmt.Sprintf("BUG: operand kind %d cannot be moved as a scalar", src.Kind))
	}
}

// sourceOperand returns the instruction operand form of a scalar IR
// operand for use as the src of a two-operand instruction. Wide
// immediates are first staged in a scratch register, returned to the
// caller for release.
func (m *machine) sourceOperand(o ssa.Operand) (op operand, scratch regalloc.RealReg, hasScratch bool) {
	switch o.Kind {
	case ssa.OperandKindSSA:
		return newOperandLocation(m.allocationOf(o).Loc), regalloc.RealRegInvalid, false
	default:
		v := m.immOf(o)
		if ints.InRangeI32(v) {
			return newOperandImm(v), regalloc.RealRegInvalid, false
		}
		r := m.alloc.AcquireAnyGPR()
		m.bc.append(newMovAbs(newOperandGPR(r), newOperandImm(v)))
		return newOperandGPR(r), r, true
	}
}

func (m *machine) lowerRet(instr *ssa.Instruction, i uint32) {
	returnLoc := regalloc.RegisterLocation(ReturnReg)
	switch instr.B.Kind {
	case ssa.OperandKindSSA:
		al := m.allocationOf(instr.B)
		if !al.Loc.Equal(returnLoc) {
			m.copyLoc(returnLoc, al.Loc)
		}
	case ssa.OperandKindLabel:
		panic("BUG: functions are not first-class values")
	default:
		m.moveOperand(returnLoc, instr.B)
	}
	m.bc.append(newMov(newOperandGPR(RSP), newOperandGPR(RBP)))
	m.bc.append(newPop(newOperandGPR(RBP)))
	m.bc.append(newRet())
}

func (m *machine) lowerCall(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	args := m.mod.Constants.At(instr.C.Constant())
	if args.Kind != ssa.ValueKindTuple {
		panic("BUG: call actual arguments must be a constant tuple")
	}
	if len(args.Tuple) > NumArgumentRegs {
		m.fail("call passes %d arguments; at most %d pass in registers", len(args.Tuple), NumArgumentRegs)
		return
	}

	for k, arg := range args.Tuple {
		r := ArgumentReg(k)
		m.alloc.AcquireGPR(r)
		m.moveOperand(regalloc.RegisterLocation(r), arg)
	}

	m.alloc.AllocateToGPR(local, ReturnReg)
	m.bc.append(newCall(newOperandLabel(instr.B.Label())))

	for k := range args.Tuple {
		m.alloc.ReleaseGPR(ArgumentReg(k))
	}
}

func (m *machine) lowerLoad(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)

	if local.Type.Kind == ssa.TypeKindTuple {
		m.lowerLoadTuple(instr, local)
		return
	}

	A := m.alloc.Allocate(local)
	switch instr.B.Kind {
	case ssa.OperandKindSSA:
		m.copyLoc(A.Loc, m.allocationOf(instr.B).Loc)
	case ssa.OperandKindLabel:
		panic("BUG: functions are not first-class values")
	default:
		m.moveOperand(A.Loc, instr.B)
	}
}

// lowerLoadTuple materialises a tuple constant in a frame-slot block
// so DOT can address its elements.
func (m *machine) lowerLoadTuple(instr *ssa.Instruction, local *ssa.Local) {
	if instr.B.Kind != ssa.OperandKindConstant {
		panic("BUG: tuple load source must be a constant")
	}
	v := m.mod.Constants.At(instr.B.Constant())
	n := uint32(len(v.Tuple))
	A := m.alloc.AllocateAddress(local, RBP, n)
	for k, elem := range v.Tuple {
		slot := regalloc.StackLocation(A.Loc.Offset - 8*uint32(k))
		m.moveOperand(slot, elem)
	}
}

func (m *machine) lowerDot(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	index := instr.C.I32()

	switch instr.B.Kind {
	case ssa.OperandKindSSA:
		B := m.allocationOf(instr.B)
		if B.Loc.Kind != regalloc.LocationKindAddress {
			panic("BUG: tuple local is not addressable")
		}
		A := m.alloc.Allocate(local)
		// elements are laid out in full frame slots below the base.
		element := regalloc.StackLocation(B.Loc.Offset - 8*uint32(index))
		m.copyLoc(A.Loc, element)
	case ssa.OperandKindConstant:
		v := m.mod.Constants.At(instr.B.Constant())
		if v.Kind != ssa.ValueKindTuple {
			panic("BUG: dot subject is not a tuple")
		}
		A := m.alloc.Allocate(local)
		m.moveOperand(A.Loc, v.Tuple[index])
	default:
		panic("BUG: dot subject must be an ssa local or a constant tuple")
	}
}

func (m *machine) lowerNeg(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	switch instr.B.Kind {
	case ssa.OperandKindSSA:
		B := m.allocationOf(instr.B)
		var A *regalloc.Allocation
		if diesAt(B, i) {
			A = m.alloc.AllocateFromActive(local, B)
		} else {
			A = m.alloc.Allocate(local)
			m.copyLoc(A.Loc, B.Loc)
		}
		m.bc.append(newNeg(newOperandLocation(A.Loc)))
	default:
		// the parser folds negation of constants; reaching here means
		// it stopped doing so.
		panic("BUG: neg of a non-ssa operand")
	}
}

func (m *machine) lowerAdd(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	B, C := instr.B, instr.C

	if B.Kind == ssa.OperandKindSSA && C.Kind == ssa.OperandKindSSA {
		Bal, Cal := m.allocationOf(B), m.allocationOf(C)
		// keep the result in a register by reusing a dying source.
		if Bal.Loc.Kind == regalloc.LocationKindRegister && diesAt(Bal, i) {
			A := m.alloc.AllocateFromActive(local, Bal)
			m.bc.append(newAdd(newOperandLocation(A.Loc), newOperandLocation(Cal.Loc)))
			return
		}
		if Cal.Loc.Kind == regalloc.LocationKindRegister && diesAt(Cal, i) {
			A := m.alloc.AllocateFromActive(local, Cal)
			m.bc.append(newAdd(newOperandLocation(A.Loc), newOperandLocation(Bal.Loc)))
			return
		}
		r := m.alloc.AcquireAnyGPR()
		A := m.alloc.AllocateToGPR(local, r)
		// the operand freed sooner goes into the destination.
		first, second := Bal, Cal
		if Cal.Lifetime.LastUse < Bal.Lifetime.LastUse {
			first, second = Cal, Bal
		}
		m.copyLoc(A.Loc, first.Loc)
		m.bc.append(newAdd(newOperandLocation(A.Loc), newOperandLocation(second.Loc)))
		return
	}

	if B.Kind == ssa.OperandKindSSA {
		m.lowerAddSubWithImm(local, B, C, i, false)
		return
	}
	if C.Kind == ssa.OperandKindSSA {
		// addition commutes, so fold the immediate from the left the
		// same way.
		m.lowerAddSubWithImm(local, C, B, i, false)
		return
	}
	panic("BUG: add of two foldable operands")
}

// lowerAddSubWithImm lowers ssaOp (+|-) imm, reusing ssaOp's location
// when its lifetime ends here.
func (m *machine) lowerAddSubWithImm(local *ssa.Local, ssaOp, immOp ssa.Operand, i uint32, isSub bool) {
	Bal := m.allocationOf(ssaOp)
	var A *regalloc.Allocation
	if diesAt(Bal, i) {
		A = m.alloc.AllocateFromActive(local, Bal)
	} else {
		r := m.alloc.AcquireAnyGPR()
		A = m.alloc.AllocateToGPR(local, r)
		m.copyLoc(A.Loc, Bal.Loc)
	}
	src, scratch, hasScratch := m.sourceOperand(immOp)
	if isSub {
		m.bc.append(newSub(newOperandLocation(A.Loc), src))
	} else {
		m.bc.append(newAdd(newOperandLocation(A.Loc), src))
	}
	if hasScratch {
		m.alloc.ReleaseGPR(scratch)
	}
}

func (m *machine) lowerSub(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	B, C := instr.B, instr.C

	if B.Kind == ssa.OperandKindSSA && C.Kind == ssa.OperandKindSSA {
		Bal, Cal := m.allocationOf(B), m.allocationOf(C)
		// subtraction does not commute: the destination always comes
		// from B.
		if Bal.Loc.Kind == regalloc.LocationKindRegister && diesAt(Bal, i) {
			A := m.alloc.AllocateFromActive(local, Bal)
			m.bc.append(newSub(newOperandLocation(A.Loc), newOperandLocation(Cal.Loc)))
			return
		}
		r := m.alloc.AcquireAnyGPR()
		A := m.alloc.AllocateToGPR(local, r)
		m.copyLoc(A.Loc, Bal.Loc)
		m.bc.append(newSub(newOperandLocation(A.Loc), newOperandLocation(Cal.Loc)))
		return
	}

	if B.Kind == ssa.OperandKindSSA {
		m.lowerAddSubWithImm(local, B, C, i, true)
		return
	}
	if C.Kind == ssa.OperandKindSSA {
		// no sub form takes the immediate on the left: stage it in the
		// register that becomes A, then subtract C.
		Cal := m.allocationOf(C)
		r := m.alloc.AcquireAnyGPR()
		m.moveImm(regalloc.RegisterLocation(r), m.immOf(B))
		A := m.alloc.AllocateToGPR(local, r)
		m.bc.append(newSub(newOperandLocation(A.Loc), newOperandLocation(Cal.Loc)))
		return
	}
	panic("BUG: sub of two foldable operands")
}

// lowerMul lowers to the one-operand imul, which multiplies its r/m
// operand by rax into rdx:rax. One multiplicand is steered into rax
// and rdx is freed before the instruction.
func (m *machine) lowerMul(instr *ssa.Instruction, i uint32) {
	local := m.resultLocal(instr)
	B, C := instr.B, instr.C

	if B.Kind == ssa.OperandKindSSA && C.Kind == ssa.OperandKindSSA {
		Bal, Cal := m.allocationOf(B), m.allocationOf(C)
		if Bal.Loc.InRegister(RAX) && diesAt(Bal, i) {
			m.alloc.AllocateFromActive(local, Bal)
			m.alloc.AcquireGPR(RDX)
			m.bc.append(newIMul(newOperandLocation(Cal.Loc)))
			m.alloc.ReleaseGPR(RDX)
			return
		}
		if Cal.Loc.InRegister(RAX) && diesAt(Cal, i) {
			m.alloc.AllocateFromActive(local, Cal)
			m.alloc.AcquireGPR(RDX)
			m.bc.append(newIMul(newOperandLocation(Bal.Loc)))
			m.alloc.ReleaseGPR(RDX)
			return
		}
		m.alloc.AllocateToGPR(local, RAX)
		m.alloc.AcquireGPR(RDX)
		// the operand freed sooner goes into rax.
		first, second := Bal, Cal
		if Cal.Lifetime.LastUse < Bal.Lifetime.LastUse {
			first, second = Cal, Bal
		}
		m.copyLoc(regalloc.RegisterLocation(RAX), first.Loc)
		m.bc.append(newIMul(newOperandLocation(second.Loc)))
		m.alloc.ReleaseGPR(RDX)
		return
	}

	var ssaOp, immOp ssa.Operand
	switch {
	case B.Kind == ssa.OperandKindSSA:
		ssaOp, immOp = B, C
	case C.Kind == ssa.OperandKindSSA:
		ssaOp, immOp = C, B
	default:
		panic("BUG: mul of two foldable operands")
	}

	Sal := m.allocationOf(ssaOp)
	if Sal.Loc.InRegister(RAX) && diesAt(Sal, i) {
		m.alloc.AllocateFromActive(local, Sal)
	} else {
		m.alloc.AllocateToGPR(local, RAX)
		m.copyLoc(regalloc.RegisterLocation(RAX), Sal.Loc)
	}
	m.alloc.AcquireGPR(RDX)
	// imul has no immediate form; stage the constant in a scratch
	// register.
	scratch := m.alloc.AcquireAnyGPR()
	m.moveImm(regalloc.RegisterLocation(scratch), m.immOf(immOp))
	m.bc.append(newIMul(newOperandGPR(scratch)))
	m.alloc.ReleaseGPR(scratch)
	m.alloc.ReleaseGPR(RDX)
}

// lowerDivMod lowers to idiv, which divides rdx:rax by its r/m
// operand, quotient in rax, remainder in rdx. The dividend is steered
// into rax and rdx is zeroed first; the divisor may not be immediate.
func (m *machine) lowerDivMod(instr *ssa.Instruction, i uint32, wantRemainder bool) {
	local := m.resultLocal(instr)
	B, C := instr.B, instr.C

	resultReg, pairedReg := RAX, RDX
	if wantRemainder {
		resultReg, pairedReg = RDX, RAX
	}

	// bind the result first so occupant shuffles precede the zeroing
	// of rdx.
	if !wantRemainder && B.Kind == ssa.OperandKindSSA {
		if Bal := m.allocationOf(B); Bal.Loc.InRegister(RAX) && diesAt(Bal, i) {
			m.alloc.AllocateFromActive(local, Bal)
			m.alloc.AcquireGPR(RDX)
			m.bc.append(newMov(newOperandGPR(RDX), newOperandImm(0)))
			m.emitDivisor(C)
			m.alloc.ReleaseGPR(RDX)
			return
		}
	}

	m.alloc.AllocateToGPR(local, resultReg)
	m.alloc.AcquireGPR(pairedReg)

	m.bc.append(newMov(newOperandGPR(RDX), newOperandImm(0)))
	m.moveOperand(regalloc.RegisterLocation(RAX), B)
	m.emitDivisor(C)

	m.alloc.ReleaseGPR(pairedReg)
}

// emitDivisor emits the idiv with C as the r/m operand, staging
// constants and immediates in a scratch register.
func (m *machine) emitDivisor(C ssa.Operand) {
	if C.Kind == ssa.OperandKindSSA {
		m.bc.append(newIDiv(newOperandLocation(m.allocationOf(C).Loc)))
		return
	}
	scratch := m.alloc.AcquireAnyGPR()
	m.moveImm(regalloc.RegisterLocation(scratch), m.immOf(C))
	m.bc.append(newIDiv(newOperandGPR(scratch)))
	m.alloc.ReleaseGPR(scratch)
}
