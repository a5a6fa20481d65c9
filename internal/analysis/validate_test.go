package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exp-lang/exp/internal/ssa"
)

// analyzed runs inference and lifetime analysis, which Validate
// assumes already ran.
func analyzed(t *testing.T, fn *ssa.Function, m *ssa.Module) {
	t.Helper()
	require.Nil(t, InferTypes(fn, m))
	AnalyzeLifetimes(fn, m)
}

func TestValidateWellFormedFunction(t *testing.T) {
	m := ssa.NewModule()
	fn := ssa.NewFunction()
	a := fn.NewLocal(ssa.StringIDInvalid)
	b := fn.NewLocal(ssa.StringIDInvalid)
	fn.Block.Append(ssa.NewLoad(ssa.SSAOperand(a), ssa.I64Operand(6)))
	fn.Block.Append(ssa.NewBinop(ssa.OpcodeDiv, ssa.SSAOperand(b), ssa.SSAOperand(a), ssa.I64Operand(2)))
	fn.Block.Append(ssa.NewRet(ssa.SSAOperand(b)))
	analyzed(t, fn, m)

	require.Nil(t, Validate(fn, m))
}

func TestValidateUndefinedLabel(t *testing.T) {
	m := ssa.NewModule()
	fType := m.Types.Function(m.Types.I64(), nil)
	nameID := m.Strings.Intern("f")
	require.True(t, m.Symbols.Insert(nameID, ssa.Symbol{Kind: ssa.SymbolKindFunction, Type: fType}))
	label := m.Labels.Intern(nameID)

	fn := ssa.NewFunction()
	a := fn.NewLocal(ssa.StringIDInvalid)
	args := m.Constants.Append(ssa.TupleValue(nil))
	fn.Block.Append(ssa.NewCall(ssa.SSAOperand(a), ssa.LabelOperand(label), ssa.ConstantOperand(args)))
	fn.Block.Append(ssa.NewRet(ssa.SSAOperand(a)))
	analyzed(t, fn, m)

	// deleting the callee after analysis leaves a dangling label.
	m.Symbols.Delete(nameID)
	err := Validate(fn, m)
	require.NotNil(t, err)
	require.Equal(t, CodeUndefinedSymbol, err.Code)
}

func TestValidatePanicsOnDuplicateDefinition(t *testing.T) {
	m := ssa.NewModule()
	fn := ssa.NewFunction()
	a := fn.NewLocal(ssa.StringIDInvalid)
	// %0 defined twice: lifetime metadata cannot satisfy both sites.
	fn.Block.Append(ssa.NewLoad(ssa.SSAOperand(a), ssa.I64Operand(1)))
	fn.Block.Append(ssa.NewLoad(ssa.SSAOperand(a), ssa.I64Operand(2)))
	fn.Block.Append(ssa.NewRet(ssa.SSAOperand(a)))
	analyzed(t, fn, m)

	require.Panics(t, func() { _ = Validate(fn, m) })
}

func TestValidatePanicsOnBrokenLifetime(t *testing.T) {
	m := ssa.NewModule()
	fn := ssa.NewFunction()
	a := fn.NewLocal(ssa.StringIDInvalid)
	fn.Block.Append(ssa.NewLoad(ssa.SSAOperand(a), ssa.I64Operand(1)))
	fn.Block.Append(ssa.NewRet(ssa.SSAOperand(a)))
	analyzed(t, fn, m)

	// truncate the recorded lifetime below its last use.
	fn.LocalAt(a).Lifetime.LastUse = 0
	require.Panics(t, func() { _ = Validate(fn, m) })
}

func TestValidateTypeChecks(t *testing.T) {
	m := ssa.NewModule()
	fn := ssa.NewFunction()
	a := fn.NewLocal(ssa.StringIDInvalid)
	fn.Block.Append(ssa.NewLoad(ssa.SSAOperand(a), ssa.I64Operand(1)))
	fn.Block.Append(ssa.NewRet(ssa.SSAOperand(a)))
	analyzed(t, fn, m)

	// corrupt the inferred type so LOAD's A/B equality fails.
	fn.LocalAt(a).Type = m.Types.U64()
	err := Validate(fn, m)
	require.NotNil(t, err)
	require.Equal(t, CodeTypeMismatch, err.Code)
}
