package ssa

import (
	"fmt"
	"strings"
)

// Opcode enumerates the IR instructions.
type Opcode byte

const (
	opcodeInvalid Opcode = iota
	OpcodeRet
	OpcodeCall
	OpcodeLoad
	OpcodeDot
	OpcodeNeg
	OpcodeAdd
	OpcodeSub
	OpcodeMul
	OpcodeDiv
	OpcodeMod
)

// String implements fmt.Stringer.
func (o Opcode) String() string {
	switch o {
	case OpcodeRet:
		return "ret"
	case OpcodeCall:
		return "call"
	case OpcodeLoad:
		return "load"
	case OpcodeDot:
		return "dot"
	case OpcodeNeg:
		return "neg"
	case OpcodeAdd:
		return "add"
	case OpcodeSub:
		return "sub"
	case OpcodeMul:
		return "mul"
	case OpcodeDiv:
		return "div"
	case OpcodeMod:
		return "mod"
	default:
		panic(fmt.Sprintf("BUG: invalid opcode %d", byte(o)))
	}
}

// OperandKind discriminates the Operand sum.
type OperandKind byte

const (
	OperandKindInvalid OperandKind = iota

	// OperandKindSSA indexes the current function's locals.
	OperandKindSSA

	// OperandKindConstant indexes the module's constants pool.
	OperandKindConstant

	// OperandKindI8 through OperandKindU64 are inline immediates.
	OperandKindI8
	OperandKindI16
	OperandKindI32
	OperandKindI64
	OperandKindU8
	OperandKindU16
	OperandKindU32
	OperandKindU64

	// OperandKindLabel indexes the module's label table.
	OperandKindLabel
)

// Operand is one instruction position: a kind tag plus the payload bits.
type Operand struct {
	Kind OperandKind
	bits uint64
}

func SSAOperand(ssa uint32) Operand {
	return Operand{Kind: OperandKindSSA, bits: uint64(ssa)}
}

func ConstantOperand(index uint32) Operand {
	return Operand{Kind: OperandKindConstant, bits: uint64(index)}
}

func LabelOperand(index uint32) Operand {
	return Operand{Kind: OperandKindLabel, bits: uint64(index)}
}

func I8Operand(v int8) Operand   { return Operand{Kind: OperandKindI8, bits: uint64(v)} }
func I16Operand(v int16) Operand { return Operand{Kind: OperandKindI16, bits: uint64(v)} }
func I32Operand(v int32) Operand { return Operand{Kind: OperandKindI32, bits: uint64(v)} }
func I64Operand(v int64) Operand { return Operand{Kind: OperandKindI64, bits: uint64(v)} }
func U8Operand(v uint8) Operand  { return Operand{Kind: OperandKindU8, bits: uint64(v)} }
func U16Operand(v uint16) Operand {
	return Operand{Kind: OperandKindU16, bits: uint64(v)}
}
func U32Operand(v uint32) Operand {
	return Operand{Kind: OperandKindU32, bits: uint64(v)}
}
func U64Operand(v uint64) Operand { return Operand{Kind: OperandKindU64, bits: v} }

// SSA returns the local index of an SSA operand.
func (o Operand) SSA() uint32 {
	if o.Kind != OperandKindSSA {
		panic("BUG: operand is not ssa")
	}
	return uint32(o.bits)
}

// Constant returns the constants-pool index of a constant operand.
func (o Operand) Constant() uint32 {
	if o.Kind != OperandKindConstant {
		panic("BUG: operand is not a constant")
	}
	return uint32(o.bits)
}

// Label returns the label-table index of a label operand.
func (o Operand) Label() uint32 {
	if o.Kind != OperandKindLabel {
		panic("BUG: operand is not a label")
	}
	return uint32(o.bits)
}

// IsImmediate returns true for the inline immediate kinds.
func (o Operand) IsImmediate() bool {
	switch o.Kind {
	case OperandKindI8, OperandKindI16, OperandKindI32, OperandKindI64,
		OperandKindU8, OperandKindU16, OperandKindU32, OperandKindU64:
		return true
	default:
		return false
	}
}

// Imm returns the immediate payload sign-extended to int64. Unsigned
// kinds narrower than 64 bits are zero-extended by construction.
func (o Operand) Imm() int64 {
	switch o.Kind {
	case OperandKindI8:
		return int64(int8(o.bits))
	case OperandKindI16:
		return int64(int16(o.bits))
	case OperandKindI32:
		return int64(int32(o.bits))
	case OperandKindI64, OperandKindU8, OperandKindU16, OperandKindU32, OperandKindU64:
		return int64(o.bits)
	default:
		panic("BUG: operand is not an immediate")
	}
}

// I32 returns the payload of an I32 operand.
func (o Operand) I32() int32 {
	if o.Kind != OperandKindI32 {
		panic("BUG: operand is not i32")
	}
	return int32(o.bits)
}

func (o Operand) Equal(other Operand) bool {
	return o.Kind == other.Kind && o.bits == other.bits
}

// Instruction is one IR instruction. Position A holds the SSA result for
// every opcode except RET, which returns its B operand.
type Instruction struct {
	Op      Opcode
	A, B, C Operand
}

func NewRet(b Operand) Instruction {
	return Instruction{Op: OpcodeRet, B: b}
}

func NewCall(a, callee, args Operand) Instruction {
	return Instruction{Op: OpcodeCall, A: a, B: callee, C: args}
}

func NewLoad(a, b Operand) Instruction {
	return Instruction{Op: OpcodeLoad, A: a, B: b}
}

func NewDot(a, tuple, index Operand) Instruction {
	return Instruction{Op: OpcodeDot, A: a, B: tuple, C: index}
}

func NewNeg(a, b Operand) Instruction {
	return Instruction{Op: OpcodeNeg, A: a, B: b}
}

func NewBinop(op Opcode, a, b, c Operand) Instruction {
	switch op {
	case OpcodeAdd, OpcodeSub, OpcodeMul, OpcodeDiv, OpcodeMod:
	default:
		panic(fmt.Sprintf("BUG: %s is not a binary opcode", op))
	}
	return Instruction{Op: op, A: a, B: b, C: c}
}

// HasC returns true when the opcode reads its C position.
func (i *Instruction) HasC() bool {
	switch i.Op {
	case OpcodeRet, OpcodeLoad, OpcodeNeg:
		return false
	default:
		return true
	}
}

// DefinesA returns true when the opcode writes an SSA result in A.
func (i *Instruction) DefinesA() bool {
	return i.Op != OpcodeRet
}

// Format renders the instruction in IR assembly form.
func (i *Instruction) Format(m *Module) string {
	var b strings.Builder
	if i.DefinesA() {
		b.WriteString(formatOperand(i.A, m))
		b.WriteString(" = ")
	}
	b.WriteString(i.Op.String())
	b.WriteByte(' ')
	b.WriteString(formatOperand(i.B, m))
	if i.HasC() {
		b.WriteString(", ")
		b.WriteString(formatOperand(i.C, m))
	}
	return b.String()
}

func formatOperand(o Operand, m *Module) string {
	switch o.Kind {
	case OperandKindSSA:
		return fmt.Sprintf("%%%d", o.SSA())
	case OperandKindConstant:
		return m.Constants.At(o.Constant()).Format(m)
	case OperandKindLabel:
		return m.Strings.Get(m.Labels.At(o.Label()))
	case OperandKindU64:
		return fmt.Sprintf("%d", o.bits)
	default:
		if o.IsImmediate() {
			return fmt.Sprintf("%d", o.Imm())
		}
		panic(fmt.Sprintf("BUG: invalid operand kind %d", o.Kind))
	}
}
