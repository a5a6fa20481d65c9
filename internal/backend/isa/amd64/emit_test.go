package amd64

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/exp-lang/exp/internal/ssa"
)

func TestEmitWholeFile(t *testing.T) {
	m := ssa.NewModule()
	nameID := m.Strings.Intern("main")
	fn := ssa.NewFunction()
	fn.ReturnType = m.Types.I64()
	fn.Block.Append(ssa.NewRet(ssa.I64Operand(0)))
	require.True(t, m.Symbols.Insert(nameID, ssa.Symbol{Kind: ssa.SymbolKindFunction, Type: m.Types.Function(m.Types.I64(), nil), Body: fn}))
	m.DeclOrder = append(m.DeclOrder, nameID)

	got, err := Emit(m, "main.s", "exp version 0.1.0")
	require.NoError(t, err)

	exp := `	.file "main.s"

	.text
	.globl main
	.type main, @function
main:
	pushq %rbp
	movq %rsp, %rbp
	movq $0, %rax
	movq %rbp, %rsp
	popq %rbp
	ret
	.size main, .-main

	.ident "exp version 0.1.0"
	.section .note.GNU-stack,"",@progbits
`
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("assembly mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitSkipsUndefinedSymbols(t *testing.T) {
	m := ssa.NewModule()
	nameID := m.Strings.Intern("extern")
	require.True(t, m.Symbols.Insert(nameID, ssa.Symbol{Kind: ssa.SymbolKindUndefined}))
	m.DeclOrder = append(m.DeclOrder, nameID)

	got, err := Emit(m, "out.s", "ident")
	require.NoError(t, err)
	require.NotContains(t, got, "extern")
}

func TestDataDirectives(t *testing.T) {
	var b strings.Builder
	directiveArch(&b, "x86-64")
	directiveData(&b)
	directiveBalign(&b, 8)
	directiveQuad(&b, -1)
	directiveByte(&b, 255)
	directiveZero(&b, 16)
	directiveString(&b, "hi")
	directiveBss(&b)
	directiveType(&b, "g", SymbolTypeObject)

	exp := "\t.arch x86-64\n" +
		"\t.data\n" +
		"\t.balign 8\n" +
		"\t.quad -1\n" +
		"\t.byte 255\n" +
		"\t.zero 16\n" +
		"\t.string \"hi\"\n" +
		"\t.bss\n" +
		"\t.type g, @object\n"
	require.Equal(t, exp, b.String())
}
