package ssa

import (
	"fmt"
	"strings"
)

// ValueKind discriminates the Value sum.
type ValueKind byte

const (
	valueKindInvalid ValueKind = iota
	ValueKindNil
	ValueKindBool
	ValueKindI8
	ValueKindI16
	ValueKindI32
	ValueKindI64
	ValueKindU8
	ValueKindU16
	ValueKindU32
	ValueKindU64
	ValueKindTuple
)

// Value is one constant. Scalars carry their payload inline; a tuple is
// a sequence of operands so its elements may reference SSA locals and
// other constants.
type Value struct {
	Kind  ValueKind
	B     bool
	I     int64
	U     uint64
	Tuple []Operand
}

func NilValue() Value          { return Value{Kind: ValueKindNil} }
func BoolValue(b bool) Value   { return Value{Kind: ValueKindBool, B: b} }
func I8Value(v int8) Value     { return Value{Kind: ValueKindI8, I: int64(v)} }
func I16Value(v int16) Value   { return Value{Kind: ValueKindI16, I: int64(v)} }
func I32Value(v int32) Value   { return Value{Kind: ValueKindI32, I: int64(v)} }
func I64Value(v int64) Value   { return Value{Kind: ValueKindI64, I: v} }
func U8Value(v uint8) Value    { return Value{Kind: ValueKindU8, U: uint64(v)} }
func U16Value(v uint16) Value  { return Value{Kind: ValueKindU16, U: uint64(v)} }
func U32Value(v uint32) Value  { return Value{Kind: ValueKindU32, U: uint64(v)} }
func U64Value(v uint64) Value  { return Value{Kind: ValueKindU64, U: v} }
func TupleValue(elems []Operand) Value {
	return Value{Kind: ValueKindTuple, Tuple: elems}
}

// Equal is structural equality, recursing into tuples.
func (v *Value) Equal(other *Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueKindNil:
		return true
	case ValueKindBool:
		return v.B == other.B
	case ValueKindI8, ValueKindI16, ValueKindI32, ValueKindI64:
		return v.I == other.I
	case ValueKindU8, ValueKindU16, ValueKindU32, ValueKindU64:
		return v.U == other.U
	case ValueKindTuple:
		if len(v.Tuple) != len(other.Tuple) {
			return false
		}
		for i := range v.Tuple {
			if !v.Tuple[i].Equal(other.Tuple[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("BUG: invalid value kind %d", v.Kind))
	}
}

// Format renders the value in IR assembly form.
func (v *Value) Format(m *Module) string {
	switch v.Kind {
	case ValueKindNil:
		return "nil"
	case ValueKindBool:
		if v.B {
			return "true"
		}
		return "false"
	case ValueKindI8, ValueKindI16, ValueKindI32, ValueKindI64:
		return fmt.Sprintf("%d", v.I)
	case ValueKindU8, ValueKindU16, ValueKindU32, ValueKindU64:
		return fmt.Sprintf("%d", v.U)
	case ValueKindTuple:
		var b strings.Builder
		b.WriteByte('(')
		for i, e := range v.Tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatOperand(e, m))
		}
		b.WriteByte(')')
		return b.String()
	default:
		panic(fmt.Sprintf("BUG: invalid value kind %d", v.Kind))
	}
}

// Pool is the deduplicating constants pool. Append scans the existing
// values by structural equality and returns the matching index when one
// is found.
type Pool struct {
	values []Value
}

func NewPool() *Pool { return &Pool{} }

// Append interns v and returns its index.
func (p *Pool) Append(v Value) uint32 {
	for i := range p.values {
		if p.values[i].Equal(&v) {
			return uint32(i)
		}
	}
	p.values = append(p.values, v)
	return uint32(len(p.values) - 1)
}

// At returns the value at index. The index must have been returned by
// Append.
func (p *Pool) At(index uint32) *Value {
	if index >= uint32(len(p.values)) {
		panic(fmt.Sprintf("BUG: constant index %d out of bounds", index))
	}
	return &p.values[index]
}

// Len returns the number of distinct constants.
func (p *Pool) Len() int { return len(p.values) }
