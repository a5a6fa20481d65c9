package ssa

import (
	"fmt"
	"strings"
)

// Lifetime is the inclusive interval of block indices during which an
// SSA local holds a live value. Formal arguments live for the whole
// block.
type Lifetime struct {
	FirstUse uint32
	LastUse  uint32
}

// Local is one SSA variable. Name is StringIDInvalid for temporaries.
// Type is filled by type inference and Lifetime by lifetime analysis;
// the machine-resource binding lives in the register allocator, not
// here.
type Local struct {
	Name     StringID
	Type     *Type
	SSA      uint32
	Lifetime Lifetime
}

// Block is the ordered instruction sequence of a function body. An
// instruction's index is its timestamp for lifetime purposes.
type Block struct {
	Instrs []Instruction
}

// Append adds i and returns its index.
func (b *Block) Append(i Instruction) uint32 {
	b.Instrs = append(b.Instrs, i)
	return uint32(len(b.Instrs) - 1)
}

// Len returns the block length.
func (b *Block) Len() uint32 { return uint32(len(b.Instrs)) }

// Function is one function body. SSA numbering is dense from 0; the
// formal arguments occupy the first len(Arguments) locals.
type Function struct {
	Arguments  []uint32
	Locals     []Local
	ReturnType *Type
	Block      Block
}

func NewFunction() *Function { return &Function{} }

// NewLocal appends a fresh local and returns its SSA index. Pass
// StringIDInvalid for a temporary. The index stays valid across later
// appends; pointers from LocalAt do not.
func (f *Function) NewLocal(name StringID) uint32 {
	ssa := uint32(len(f.Locals))
	f.Locals = append(f.Locals, Local{Name: name, SSA: ssa})
	return ssa
}

// NewArgument appends a fresh local registered as the next formal
// argument and returns its SSA index.
func (f *Function) NewArgument(name StringID, typ *Type) uint32 {
	ssa := f.NewLocal(name)
	f.Locals[ssa].Type = typ
	f.Arguments = append(f.Arguments, ssa)
	return ssa
}

// LocalAt returns the local with the given SSA index.
func (f *Function) LocalAt(ssa uint32) *Local {
	if ssa >= uint32(len(f.Locals)) {
		panic(fmt.Sprintf("BUG: ssa local %d out of bounds", ssa))
	}
	return &f.Locals[ssa]
}

// LocalNamed returns the local bound to name, or nil.
func (f *Function) LocalNamed(name StringID) *Local {
	for i := range f.Locals {
		if f.Locals[i].Name == name {
			return &f.Locals[i]
		}
	}
	return nil
}

// Format renders the function body in IR assembly form.
func (f *Function) Format(name string, m *Module) string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteByte('(')
	for i, ssa := range f.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		arg := f.LocalAt(ssa)
		fmt.Fprintf(&b, "%%%d", arg.SSA)
		if arg.Type != nil {
			b.WriteString(": ")
			b.WriteString(arg.Type.String())
		}
	}
	b.WriteString(")\n")
	for i := range f.Block.Instrs {
		b.WriteString("    ")
		b.WriteString(f.Block.Instrs[i].Format(m))
		b.WriteByte('\n')
	}
	return b.String()
}
