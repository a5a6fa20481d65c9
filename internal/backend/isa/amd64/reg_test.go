package amd64

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exp-lang/exp/internal/backend/regalloc"
)

func TestGPRNameSizes(t *testing.T) {
	for _, tc := range []struct {
		reg  regalloc.RealReg
		size uint64
		exp  string
	}{
		{reg: RAX, size: 1, exp: "al"},
		{reg: RAX, size: 2, exp: "ax"},
		{reg: RAX, size: 4, exp: "eax"},
		{reg: RAX, size: 8, exp: "rax"},
		{reg: RSI, size: 1, exp: "sil"},
		{reg: RDI, size: 4, exp: "edi"},
		{reg: RBP, size: 8, exp: "rbp"},
		{reg: R8, size: 1, exp: "r8b"},
		{reg: R8, size: 2, exp: "r8w"},
		{reg: R8, size: 4, exp: "r8d"},
		{reg: R8, size: 8, exp: "r8"},
		{reg: R15, size: 8, exp: "r15"},
		// sizes between register widths round up to the next width.
		{reg: RCX, size: 3, exp: "ecx"},
		{reg: RCX, size: 5, exp: "rcx"},
	} {
		require.Equal(t, tc.exp, GPRName(tc.reg, tc.size))
	}
}

func TestGPRNamePanicsOnBadInput(t *testing.T) {
	require.Panics(t, func() { GPRName(RAX, 16) })
	require.Panics(t, func() { GPRName(regalloc.RealReg(16), 8) })
}

func TestSystemVArgumentRegisters(t *testing.T) {
	exp := []regalloc.RealReg{RDI, RSI, RDX, RCX, R8, R9}
	for k, r := range exp {
		require.Equal(t, r, ArgumentReg(k))
	}
	require.Panics(t, func() { ArgumentReg(6) })

	require.Equal(t, "rdi", ArgumentRegName(0, 8))
	require.Equal(t, "esi", ArgumentRegName(1, 4))
	require.Equal(t, "dl", ArgumentRegName(2, 1))
}
