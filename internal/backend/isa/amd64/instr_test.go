package amd64

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exp-lang/exp/internal/backend/regalloc"
	"github.com/exp-lang/exp/internal/ssa"
)

func TestOperandFormat(t *testing.T) {
	m := ssa.NewModule()
	c := m.Constants.Append(ssa.I64Value(42))
	label := m.InternLabel("f")

	for _, tc := range []struct {
		name string
		op   operand
		exp  string
	}{
		{name: "gpr", op: newOperandGPR(RAX), exp: "%rax"},
		{name: "stack", op: newOperandMem(RBP, 8), exp: "-8(%rbp)"},
		{name: "constant", op: newOperandConstant(c), exp: "$42"},
		{name: "immediate", op: newOperandImm(-3), exp: "$-3"},
		{name: "label", op: newOperandLabel(label), exp: "f"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.exp, tc.op.format(m))
		})
	}
}

func TestOperandFromLocation(t *testing.T) {
	require.Equal(t, newOperandGPR(RCX), newOperandLocation(regalloc.RegisterLocation(RCX)))
	require.Equal(t, newOperandMem(RBP, 16), newOperandLocation(regalloc.StackLocation(16)))
	require.Equal(t, newOperandMem(RBP, 24), newOperandLocation(regalloc.AddressLocation(RBP, 24)))
}

func TestInstructionFormat(t *testing.T) {
	m := ssa.NewModule()
	for _, tc := range []struct {
		name  string
		instr instruction
		exp   string
	}{
		{name: "ret", instr: newRet(), exp: "ret"},
		{name: "push", instr: newPush(newOperandGPR(RBP)), exp: "pushq %rbp"},
		{name: "pop", instr: newPop(newOperandGPR(RBP)), exp: "popq %rbp"},
		{name: "mov", instr: newMov(newOperandGPR(RAX), newOperandImm(1)), exp: "movq $1, %rax"},
		{name: "mov to stack", instr: newMov(newOperandMem(RBP, 8), newOperandGPR(RAX)), exp: "movq %rax, -8(%rbp)"},
		{name: "movabs", instr: newMovAbs(newOperandGPR(RAX), newOperandImm(1 << 40)), exp: "movabsq $1099511627776, %rax"},
		{name: "neg", instr: newNeg(newOperandGPR(RCX)), exp: "negq %rcx"},
		{name: "add", instr: newAdd(newOperandGPR(RAX), newOperandGPR(RCX)), exp: "addq %rcx, %rax"},
		{name: "sub", instr: newSub(newOperandGPR(RSP), newOperandImm(16)), exp: "subq $16, %rsp"},
		{name: "imul", instr: newIMul(newOperandGPR(RCX)), exp: "imulq %rcx"},
		{name: "idiv", instr: newIDiv(newOperandMem(RBP, 8)), exp: "idivq -8(%rbp)"},
		{name: "call", instr: newCall(newOperandLabel(m.InternLabel("f"))), exp: "call f"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.exp, tc.instr.format(m))
		})
	}
}

func TestBytecodePrepend(t *testing.T) {
	var bc bytecode
	bc.append(newRet())
	bc.prepend(newMov(newOperandGPR(RBP), newOperandGPR(RSP)))
	bc.prepend(newPush(newOperandGPR(RBP)))

	m := ssa.NewModule()
	require.Equal(t, "pushq %rbp", bc.instrs[0].format(m))
	require.Equal(t, "movq %rsp, %rbp", bc.instrs[1].format(m))
	require.Equal(t, "ret", bc.instrs[2].format(m))
}
