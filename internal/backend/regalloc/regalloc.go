package regalloc

import (
	"fmt"

	"github.com/exp-lang/exp/internal/ssa"
)

// Emitter receives the mov instructions the allocator decides on while
// spilling and shuffling. The target's instruction selector implements
// it over its own instruction stream.
type Emitter interface {
	EmitMove(dst, src Location)
}

// Allocation binds one SSA local to its current Location for the span
// of its lifetime. An aggregate occupies slots consecutive frame
// slots; scalars occupy one resource.
type Allocation struct {
	SSA      uint32
	Lifetime ssa.Lifetime
	Loc      Location
	slots    uint32
}

// Allocator computes a register or frame slot for every SSA local,
// one instruction at a time, spilling by longest remaining lifetime.
// The active list is kept sorted by increasing last_use.
type Allocator struct {
	pool            RegSet
	active          []*Allocation
	activeStackSize uint32
	stackSize       uint32
	emit            Emitter
}

// NewAllocator returns an allocator with the given registers reserved
// so they are never chosen for locals (the target passes its stack and
// frame pointers).
func NewAllocator(e Emitter, reserved ...RealReg) *Allocator {
	a := &Allocator{emit: e}
	for _, r := range reserved {
		a.pool.Acquire(r)
	}
	return a
}

// StackSize returns the peak frame size in bytes.
func (a *Allocator) StackSize() uint32 { return a.stackSize }

// UsesStack returns true when any local was ever placed in a frame
// slot.
func (a *Allocator) UsesStack() bool { return a.stackSize > 0 }

// Pool returns a copy of the current register pool state.
func (a *Allocator) Pool() RegSet { return a.pool }

// Active returns the live allocations, sorted by increasing last_use.
func (a *Allocator) Active() []*Allocation { return a.active }

// bumpStack reserves one 8-byte frame slot and returns its offset
// below the frame pointer. Every local conservatively takes a full
// slot regardless of its type size.
func (a *Allocator) bumpStack() uint32 {
	return a.bumpStackN(1)
}

// bumpStackN reserves n contiguous 8-byte slots and returns the offset
// of the block.
func (a *Allocator) bumpStackN(n uint32) uint32 {
	a.activeStackSize += 8 * n
	if a.stackSize < a.activeStackSize {
		a.stackSize = a.activeStackSize
	}
	return a.activeStackSize
}

func (a *Allocator) release(loc Location, slots uint32) {
	switch loc.Kind {
	case LocationKindRegister:
		a.pool.Release(loc.Reg)
	case LocationKindStack:
		a.activeStackSize -= 8
	case LocationKindAddress:
		a.activeStackSize -= 8 * slots
	}
}

// insert adds alloc into active, before the first lifetime ending
// later.
func (a *Allocator) insert(alloc *Allocation) *Allocation {
	i := 0
	for ; i < len(a.active); i++ {
		if a.active[i].Lifetime.LastUse > alloc.Lifetime.LastUse {
			break
		}
	}
	a.active = append(a.active, nil)
	copy(a.active[i+1:], a.active[i:])
	a.active[i] = alloc
	return alloc
}

func (a *Allocator) erase(alloc *Allocation) {
	for i, al := range a.active {
		if al == alloc {
			a.active = append(a.active[:i], a.active[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("BUG: allocation of local %d is not active", alloc.SSA))
}

// ExpireOldLifetimes releases every active allocation whose lifetime
// ended before index i. The active list is sorted by last_use, so the
// walk stops at the first allocation still alive.
func (a *Allocator) ExpireOldLifetimes(i uint32) {
	for len(a.active) > 0 {
		al := a.active[0]
		if al.Lifetime.LastUse >= i {
			return
		}
		a.release(al.Loc, al.slots)
		a.active = a.active[1:]
	}
}

// AllocationOf returns the active allocation of the given local, or
// nil.
func (a *Allocator) AllocationOf(ssaIndex uint32) *Allocation {
	for _, al := range a.active {
		if al.SSA == ssaIndex {
			return al
		}
	}
	return nil
}

// AllocationAt returns the active allocation holding register r, or
// nil.
func (a *Allocator) AllocationAt(r RealReg) *Allocation {
	for _, al := range a.active {
		if al.Loc.InRegister(r) {
			return al
		}
	}
	return nil
}

// Allocate places the result local of the instruction at index i.
// A free register is preferred; with none free, the active allocation
// with the longest remaining lifetime loses its register if the new
// local dies sooner, otherwise the new local goes straight to a fresh
// frame slot.
func (a *Allocator) Allocate(local *ssa.Local) *Allocation {
	if r, ok := a.pool.Allocate(); ok {
		return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: RegisterLocation(r)})
	}

	// the tail of active has the largest last_use; find the last one
	// that actually holds a register.
	for i := len(a.active) - 1; i >= 0; i-- {
		victim := a.active[i]
		if victim.Loc.Kind != LocationKindRegister {
			continue
		}
		if victim.Lifetime.LastUse <= local.Lifetime.LastUse {
			break
		}
		r := victim.Loc.Reg
		spilled := StackLocation(a.bumpStack())
		a.emit.EmitMove(spilled, victim.Loc)
		victim.Loc = spilled
		return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: RegisterLocation(r)})
	}

	return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: StackLocation(a.bumpStack())})
}

// AllocateToGPR force-assigns local to r. A live occupant of r is
// reallocated first.
func (a *Allocator) AllocateToGPR(local *ssa.Local, r RealReg) *Allocation {
	if occupant := a.AllocationAt(r); occupant != nil {
		a.ReallocateActive(occupant)
	}
	a.pool.Acquire(r)
	return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: RegisterLocation(r)})
}

// AllocateFromActive places local in the same location as src, whose
// lifetime ends at the current instruction. This is what makes
// two-operand destructive x86 forms reuse a source register without a
// mov.
func (a *Allocator) AllocateFromActive(local *ssa.Local, src *Allocation) *Allocation {
	loc := src.Loc
	a.erase(src)
	return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: loc})
}

// AllocateAddress places an aggregate local in a fresh block of n
// 8-byte frame slots addressed off the frame pointer.
func (a *Allocator) AllocateAddress(local *ssa.Local, base RealReg, n uint32) *Allocation {
	offset := a.bumpStackN(n)
	return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: AddressLocation(base, offset), slots: n})
}

// AcquireAnyGPR returns a free register, spilling the active
// allocation with the longest remaining lifetime to a fresh frame slot
// when none is free. The register is held but bound to no local; pair
// with ReleaseGPR or AllocateToGPR.
func (a *Allocator) AcquireAnyGPR() RealReg {
	if r, ok := a.pool.Allocate(); ok {
		return r
	}
	for i := len(a.active) - 1; i >= 0; i-- {
		victim := a.active[i]
		if victim.Loc.Kind != LocationKindRegister {
			continue
		}
		r := victim.Loc.Reg
		spilled := StackLocation(a.bumpStack())
		a.emit.EmitMove(spilled, victim.Loc)
		victim.Loc = spilled
		return r
	}
	panic("BUG: no spillable register in the active set")
}

// AcquireGPR force-frees r, reallocating its live occupant. The
// register is held but bound to no local.
func (a *Allocator) AcquireGPR(r RealReg) {
	if occupant := a.AllocationAt(r); occupant != nil {
		a.ReallocateActive(occupant)
	}
	a.pool.Acquire(r)
}

// ReleaseGPR returns r to the pool unless a live allocation still
// holds it.
func (a *Allocator) ReleaseGPR(r RealReg) {
	if a.AllocationAt(r) == nil {
		a.pool.Release(r)
	}
}

// ReallocateActive moves alloc to a new location, preferring a free
// register over a fresh frame slot, and emits the mov.
func (a *Allocator) ReallocateActive(alloc *Allocation) {
	old := alloc.Loc
	var next Location
	if r, ok := a.pool.Allocate(); ok {
		next = RegisterLocation(r)
	} else {
		next = StackLocation(a.bumpStack())
	}
	a.emit.EmitMove(next, old)
	alloc.Loc = next
	a.release(old, alloc.slots)
}

// PreallocateArgument binds a formal argument to its ABI-fixed
// register before the main sweep, entering it into the active set with
// its full-function lifetime so it can be spilled like any other
// lifetime.
func (a *Allocator) PreallocateArgument(local *ssa.Local, r RealReg) *Allocation {
	if a.pool.Held(r) {
		panic(fmt.Sprintf("BUG: argument register %s acquired twice", r))
	}
	a.pool.Acquire(r)
	return a.insert(&Allocation{SSA: local.SSA, Lifetime: local.Lifetime, Loc: RegisterLocation(r)})
}
