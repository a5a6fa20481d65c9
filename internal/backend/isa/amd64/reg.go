// Package amd64 lowers the IR to x86-64 and prints it in GNU as AT&T
// syntax for a System V AMD64 target.
package amd64

import (
	"fmt"

	"github.com/exp-lang/exp/internal/backend/regalloc"
)

// The sixteen general purpose registers, numbered as the architecture
// encodes them.
const (
	RAX regalloc.RealReg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// gprNames holds the assembler name of each register at each operand
// size, indexed by register then by size class (1, 2, 4, 8 bytes).
var gprNames = [16][4]string{
	RAX: {"al", "ax", "eax", "rax"},
	RCX: {"cl", "cx", "ecx", "rcx"},
	RDX: {"dl", "dx", "edx", "rdx"},
	RBX: {"bl", "bx", "ebx", "rbx"},
	RSP: {"spl", "sp", "esp", "rsp"},
	RBP: {"bpl", "bp", "ebp", "rbp"},
	RSI: {"sil", "si", "esi", "rsi"},
	RDI: {"dil", "di", "edi", "rdi"},
	R8:  {"r8b", "r8w", "r8d", "r8"},
	R9:  {"r9b", "r9w", "r9d", "r9"},
	R10: {"r10b", "r10w", "r10d", "r10"},
	R11: {"r11b", "r11w", "r11d", "r11"},
	R12: {"r12b", "r12w", "r12d", "r12"},
	R13: {"r13b", "r13w", "r13d", "r13"},
	R14: {"r14b", "r14w", "r14d", "r14"},
	R15: {"r15b", "r15w", "r15d", "r15"},
}

func sizeClass(size uint64) int {
	switch {
	case size == 1:
		return 0
	case size == 2:
		return 1
	case size <= 4:
		return 2
	case size <= 8:
		return 3
	default:
		panic(fmt.Sprintf("BUG: invalid gpr operand size %d", size))
	}
}

// GPRName returns the assembler name of r at the given operand size in
// bytes.
func GPRName(r regalloc.RealReg, size uint64) string {
	if r >= 16 {
		panic(fmt.Sprintf("BUG: invalid gpr %d", byte(r)))
	}
	return gprNames[r][sizeClass(size)]
}

// systemVArgumentRegs are the integer argument registers of the System
// V AMD64 calling convention, in argument order.
var systemVArgumentRegs = [...]regalloc.RealReg{RDI, RSI, RDX, RCX, R8, R9}

// NumArgumentRegs is how many integer arguments pass in registers.
const NumArgumentRegs = len(systemVArgumentRegs)

// ReturnReg is where a System V function leaves its integer result.
const ReturnReg = RAX

// ArgumentReg returns the register carrying integer argument k.
func ArgumentReg(k int) regalloc.RealReg {
	if k < 0 || k >= NumArgumentRegs {
		panic(fmt.Sprintf("BUG: no argument register for position %d", k))
	}
	return systemVArgumentRegs[k]
}

// ArgumentRegName returns the assembler name of the register carrying
// integer argument k at the given operand size.
func ArgumentRegName(k int, size uint64) string {
	return GPRName(ArgumentReg(k), size)
}
