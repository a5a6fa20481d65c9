package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeInternerScalarSingletons(t *testing.T) {
	ti := NewTypeInterner()
	require.Same(t, ti.I32(), ti.I32())
	require.Same(t, ti.I32(), ti.Scalar(TypeKindI32))
	require.NotSame(t, ti.I32(), ti.U32())
}

func TestTypeInternerStructuralIdentity(t *testing.T) {
	ti := NewTypeInterner()

	pair := ti.Tuple([]*Type{ti.I64(), ti.Bool()})
	require.Same(t, pair, ti.Tuple([]*Type{ti.I64(), ti.Bool()}))
	require.NotSame(t, pair, ti.Tuple([]*Type{ti.Bool(), ti.I64()}))

	f := ti.Function(ti.I64(), []*Type{ti.I64()})
	require.Same(t, f, ti.Function(ti.I64(), []*Type{ti.I64()}))
	require.NotSame(t, f, ti.Function(ti.I64(), []*Type{ti.I32()}))
	require.NotSame(t, f, ti.Function(ti.I32(), []*Type{ti.I64()}))
}

func TestTypeString(t *testing.T) {
	ti := NewTypeInterner()
	for _, tc := range []struct {
		typ *Type
		exp string
	}{
		{typ: ti.Nil(), exp: "nil"},
		{typ: ti.Bool(), exp: "bool"},
		{typ: ti.I8(), exp: "i8"},
		{typ: ti.U64(), exp: "u64"},
		{typ: ti.Tuple([]*Type{ti.I64(), ti.I64()}), exp: "(i64, i64)"},
		{typ: ti.Function(ti.I64(), []*Type{ti.I32(), ti.Bool()}), exp: "fn(i32, bool) -> i64"},
	} {
		require.Equal(t, tc.exp, tc.typ.String())
	}
}

func TestTypeSize(t *testing.T) {
	ti := NewTypeInterner()
	for _, tc := range []struct {
		typ *Type
		exp uint64
	}{
		{typ: ti.Nil(), exp: 0},
		{typ: ti.Bool(), exp: 1},
		{typ: ti.I16(), exp: 2},
		{typ: ti.U32(), exp: 4},
		{typ: ti.I64(), exp: 8},
		{typ: ti.Tuple([]*Type{ti.I64(), ti.I32()}), exp: 12},
	} {
		require.Equal(t, tc.exp, tc.typ.Size())
	}
}

func TestTypePredicates(t *testing.T) {
	ti := NewTypeInterner()
	require.True(t, ti.I8().IsInteger())
	require.True(t, ti.U64().IsInteger())
	require.False(t, ti.Bool().IsInteger())
	require.False(t, ti.Tuple([]*Type{ti.I64()}).IsInteger())
	require.True(t, ti.I64().IsScalar())
	require.False(t, ti.Tuple([]*Type{ti.I64()}).IsScalar())
}
