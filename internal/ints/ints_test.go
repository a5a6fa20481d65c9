package ints

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInRangeSigned(t *testing.T) {
	for _, tc := range []struct {
		name string
		pred func(int64) bool
		min  int64
		max  int64
	}{
		{name: "i8", pred: InRangeI8, min: math.MinInt8, max: math.MaxInt8},
		{name: "i16", pred: InRangeI16, min: math.MinInt16, max: math.MaxInt16},
		{name: "i32", pred: InRangeI32, min: math.MinInt32, max: math.MaxInt32},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.pred(tc.min))
			require.True(t, tc.pred(tc.max))
			require.True(t, tc.pred(0))
			require.False(t, tc.pred(tc.min-1))
			require.False(t, tc.pred(tc.max+1))
		})
	}
}

func TestInRangeUnsigned(t *testing.T) {
	for _, tc := range []struct {
		name string
		pred func(uint64) bool
		max  uint64
	}{
		{name: "u8", pred: InRangeU8, max: math.MaxUint8},
		{name: "u16", pred: InRangeU16, max: math.MaxUint16},
		{name: "u32", pred: InRangeU32, max: math.MaxUint32},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.pred(0))
			require.True(t, tc.pred(tc.max))
			require.False(t, tc.pred(tc.max+1))
		})
	}
}

func TestNearestPowerOfTwo(t *testing.T) {
	for _, tc := range []struct {
		in, exp uint64
	}{
		{in: 1, exp: 1},
		{in: 2, exp: 2},
		{in: 3, exp: 4},
		{in: 8, exp: 8},
		{in: 9, exp: 16},
		{in: 1000, exp: 1024},
	} {
		require.Equal(t, tc.exp, NearestPowerOfTwo(tc.in))
	}
}
