// Package ints holds the sized-integer range predicates used by the
// amd64 emitter's immediate-encoding checks, and a power-of-two helper.
package ints

import "math"

func InRangeI8(v int64) bool  { return v >= math.MinInt8 && v <= math.MaxInt8 }
func InRangeI16(v int64) bool { return v >= math.MinInt16 && v <= math.MaxInt16 }
func InRangeI32(v int64) bool { return v >= math.MinInt32 && v <= math.MaxInt32 }

func InRangeU8(v uint64) bool  { return v <= math.MaxUint8 }
func InRangeU16(v uint64) bool { return v <= math.MaxUint16 }
func InRangeU32(v uint64) bool { return v <= math.MaxUint32 }

// NearestPowerOfTwo returns the smallest power of two >= n. n must be
// non-zero and representable.
func NearestPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
