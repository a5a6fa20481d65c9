package amd64

import (
	"fmt"

	"github.com/exp-lang/exp/internal/backend/regalloc"
	"github.com/exp-lang/exp/internal/ssa"
)

type operandKind byte

const (
	operandKindInvalid operandKind = iota

	// operandKindGPR is a register operand, printed at 64-bit width.
	operandKindGPR

	// operandKindMem is base-relative memory, printed -offset(%base).
	operandKindMem

	// operandKindConstant indexes the module's constants pool; only
	// scalar constants print, as immediates.
	operandKindConstant

	// operandKindImm is an inline immediate.
	operandKindImm

	// operandKindLabel indexes the module's label table.
	operandKindLabel
)

type operand struct {
	kind   operandKind
	r      regalloc.RealReg
	offset uint32
	index  uint32
	imm    int64
}

func newOperandGPR(r regalloc.RealReg) operand {
	return operand{kind: operandKindGPR, r: r}
}

func newOperandMem(base regalloc.RealReg, offset uint32) operand {
	return operand{kind: operandKindMem, r: base, offset: offset}
}

func newOperandConstant(index uint32) operand {
	return operand{kind: operandKindConstant, index: index}
}

func newOperandImm(v int64) operand {
	return operand{kind: operandKindImm, imm: v}
}

func newOperandLabel(index uint32) operand {
	return operand{kind: operandKindLabel, index: index}
}

// newOperandLocation maps an allocator location onto an instruction
// operand.
func newOperandLocation(loc regalloc.Location) operand {
	switch loc.Kind {
	case regalloc.LocationKindRegister:
		return newOperandGPR(loc.Reg)
	case regalloc.LocationKindStack:
		return newOperandMem(RBP, loc.Offset)
	case regalloc.LocationKindAddress:
		return newOperandMem(loc.Reg, loc.Offset)
	default:
		panic("BUG: invalid location kind")
	}
}

func (o operand) format(m *ssa.Module) string {
	switch o.kind {
	case operandKindGPR:
		return "%" + GPRName(o.r, 8)
	case operandKindMem:
		return fmt.Sprintf("-%d(%%%s)", o.offset, GPRName(o.r, 8))
	case operandKindConstant:
		v := m.Constants.At(o.index)
		switch v.Kind {
		case ssa.ValueKindI8, ssa.ValueKindI16, ssa.ValueKindI32, ssa.ValueKindI64:
			return fmt.Sprintf("$%d", v.I)
		case ssa.ValueKindU8, ssa.ValueKindU16, ssa.ValueKindU32, ssa.ValueKindU64:
			return fmt.Sprintf("$%d", v.U)
		case ssa.ValueKindBool:
			if v.B {
				return "$1"
			}
			return "$0"
		default:
			panic(fmt.Sprintf("BUG: constant operand of value kind %d has no immediate form", v.Kind))
		}
	case operandKindImm:
		return fmt.Sprintf("$%d", o.imm)
	case operandKindLabel:
		return m.Strings.Get(m.Labels.At(o.index))
	default:
		panic("BUG: invalid operand kind")
	}
}

type instructionKind byte

const (
	instructionKindInvalid instructionKind = iota
	ret
	push
	pop
	mov
	movabs
	neg
	add
	sub
	imul
	idiv
	call
)

// instruction is one x86-64 instruction. Two-operand forms hold the
// destination in dst and the source in src; one-operand forms use dst
// only.
type instruction struct {
	kind instructionKind
	dst  operand
	src  operand
}

func newRet() instruction           { return instruction{kind: ret} }
func newPush(o operand) instruction { return instruction{kind: push, dst: o} }
func newPop(o operand) instruction  { return instruction{kind: pop, dst: o} }
func newNeg(o operand) instruction  { return instruction{kind: neg, dst: o} }
func newIMul(o operand) instruction { return instruction{kind: imul, dst: o} }
func newIDiv(o operand) instruction { return instruction{kind: idiv, dst: o} }
func newCall(o operand) instruction { return instruction{kind: call, dst: o} }

func newMov(dst, src operand) instruction {
	return instruction{kind: mov, dst: dst, src: src}
}

func newMovAbs(dst, src operand) instruction {
	return instruction{kind: movabs, dst: dst, src: src}
}

func newAdd(dst, src operand) instruction {
	return instruction{kind: add, dst: dst, src: src}
}

func newSub(dst, src operand) instruction {
	return instruction{kind: sub, dst: dst, src: src}
}

// format prints the instruction as one GAS AT&T line, source before
// destination.
func (i instruction) format(m *ssa.Module) string {
	switch i.kind {
	case ret:
		return "ret"
	case push:
		return "pushq " + i.dst.format(m)
	case pop:
		return "popq " + i.dst.format(m)
	case mov:
		return fmt.Sprintf("movq %s, %s", i.src.format(m), i.dst.format(m))
	case movabs:
		return fmt.Sprintf("movabsq %s, %s", i.src.format(m), i.dst.format(m))
	case neg:
		return "negq " + i.dst.format(m)
	case add:
		return fmt.Sprintf("addq %s, %s", i.src.format(m), i.dst.format(m))
	case sub:
		return fmt.Sprintf("subq %s, %s", i.src.format(m), i.dst.format(m))
	case imul:
		return "imulq " + i.dst.format(m)
	case idiv:
		return "idivq " + i.dst.format(m)
	case call:
		return "call " + i.dst.format(m)
	default:
		panic("BUG: invalid instruction kind")
	}
}

// bytecode is the linear instruction stream of one compiled function.
// The prologue is prepended after the sweep, once the frame size is
// final.
type bytecode struct {
	instrs []instruction
}

func (b *bytecode) append(i instruction) {
	b.instrs = append(b.instrs, i)
}

func (b *bytecode) prepend(i instruction) {
	b.instrs = append([]instruction{i}, b.instrs...)
}
