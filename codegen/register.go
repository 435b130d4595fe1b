// register.go implements the per-function register allocator (spec.md
// §4.4): a stack-discipline byte counter tracking the high-water mark a
// BCFunction reports as its frame size, plus a Go-idiomatic stand-in for
// the spec's RAIIRegister handle.
package codegen

import "fox/bytecode"

const maxRegisters = 255

// RegisterAllocator hands out register numbers within a single function
// body, enforcing the same stack discipline as the teacher's own local
// slot allocator (compiler/ast_compiler.go's Local stack): acquisitions
// and releases must nest, acquisitions growing next upward and releases
// only ever popping the most recently acquired slot.
type RegisterAllocator struct {
	next int
	max  int
}

func NewRegisterAllocator() *RegisterAllocator {
	return &RegisterAllocator{}
}

// Alloc reserves the next free register and returns a handle to it. Panics
// (via bytecode.CodegenError) if the function has exhausted all 255
// registers — a real program limit, not a recoverable condition a single
// expression can work around.
func (ra *RegisterAllocator) Alloc() *RegisterValue {
	if ra.next >= maxRegisters {
		panic(bytecode.CodegenError{Message: "function exceeds 255 live registers"})
	}
	r := ra.next
	ra.next++
	if ra.next > ra.max {
		ra.max = ra.next
	}
	return &RegisterValue{alloc: ra, reg: r}
}

// NumRegisters returns the high-water mark reached across the function's
// whole body, which becomes the BCFunction's frame size.
func (ra *RegisterAllocator) NumRegisters() int { return ra.max }

// Mark returns a checkpoint of the allocator's current depth, to be passed
// to ReleaseTo once every register acquired since the mark is no longer
// needed — the per-scope generalization of RAIIRegister's per-expression
// release, used when a CompoundStmt's locals all go out of scope together.
type Mark int

func (ra *RegisterAllocator) Mark() Mark { return Mark(ra.next) }

// Depth returns the number of registers currently live, i.e. the register
// number one past the most recently allocated one. Used to test whether a
// given RegisterValue is the top of the stack without exposing next itself.
func (ra *RegisterAllocator) Depth() int { return ra.next }

// ReleaseTo frees every register acquired since m was taken. Scopes always
// close in LIFO order relative to each other (a nested block finishes
// before its enclosing one continues), so this never needs to look at
// individual RegisterValues.
func (ra *RegisterAllocator) ReleaseTo(m Mark) {
	if int(m) > ra.next {
		panic(bytecode.CodegenError{Message: "ReleaseTo mark is ahead of the allocator"})
	}
	ra.next = int(m)
}

// RegisterValue owns one register for the lifetime of a lexical scope or
// sub-expression. Go has no destructors, so callers must call Release
// explicitly (directly or via defer) when they're done with it — the same
// contract the spec's RAIIRegister expresses with C++ scope-exit.
type RegisterValue struct {
	alloc    *RegisterAllocator
	reg      int
	released bool
	borrowed bool // true for Borrow handles: Release does not affect the stack
}

// Reg returns the underlying register number, for use as an instruction
// operand.
func (rv *RegisterValue) Reg() int { return rv.reg }

// IsBorrowed reports whether rv aliases a register owned elsewhere (see
// Borrow) rather than one it acquired itself.
func (rv *RegisterValue) IsBorrowed() bool { return rv.borrowed }

// Borrow wraps an already-live register (a local variable's or parameter's
// persistent slot) in a RegisterValue that a caller can pass around like
// any other expression result, without granting it ownership: Release on a
// borrowed handle never touches the allocator's stack, since the register
// it names is still owned by whatever allocated it originally (typically a
// VarDecl/ParamDecl's entry in a function generator's locals map, alive for
// the whole enclosing scope, not just one expression).
func (ra *RegisterAllocator) Borrow(reg int) *RegisterValue {
	return &RegisterValue{alloc: ra, reg: reg, borrowed: true}
}

// Release frees rv's register. The allocator enforces strict LIFO: rv must
// be the most recently acquired, still-live register, or this is a codegen
// bug (an operand released out of order, or double-released). Borrowed
// handles are exempt from the stack check since they don't own a slot.
func (rv *RegisterValue) Release() {
	if rv.released {
		panic(bytecode.CodegenError{Message: "register released twice"})
	}
	rv.released = true
	if rv.borrowed {
		return
	}
	if rv.reg != rv.alloc.next-1 {
		panic(bytecode.CodegenError{Message: "register released out of stack order"})
	}
	rv.alloc.next--
}
