package regalloc

import "fmt"

// LocationKind discriminates the Location sum.
type LocationKind byte

const (
	locationKindInvalid LocationKind = iota

	// LocationKindRegister binds a local to a physical register.
	LocationKindRegister

	// LocationKindStack binds a local to a frame slot; Offset is the
	// positive displacement below the frame pointer.
	LocationKindStack

	// LocationKindAddress binds an aggregate to memory at
	// base register - Offset.
	LocationKindAddress
)

// Location is the machine resource a local is bound to at one
// instruction index. A local has exactly one Location at a time; the
// allocator moves it by emitting the corresponding mov.
type Location struct {
	Kind   LocationKind
	Reg    RealReg
	Offset uint32
}

func RegisterLocation(r RealReg) Location {
	return Location{Kind: LocationKindRegister, Reg: r}
}

func StackLocation(offset uint32) Location {
	return Location{Kind: LocationKindStack, Offset: offset}
}

func AddressLocation(base RealReg, offset uint32) Location {
	return Location{Kind: LocationKindAddress, Reg: base, Offset: offset}
}

// InRegister returns true when l is the register r.
func (l Location) InRegister(r RealReg) bool {
	return l.Kind == LocationKindRegister && l.Reg == r
}

func (l Location) Equal(other Location) bool { return l == other }

// String implements fmt.Stringer.
func (l Location) String() string {
	switch l.Kind {
	case LocationKindRegister:
		return l.Reg.String()
	case LocationKindStack:
		return fmt.Sprintf("stack(-%d)", l.Offset)
	case LocationKindAddress:
		return fmt.Sprintf("addr(%s, -%d)", l.Reg, l.Offset)
	default:
		return "invalid"
	}
}
