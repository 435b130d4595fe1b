package bytecode

import (
	"fox/source"
	"testing"
)

func TestCreateTernaryEncodesOperandsPositionally(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	pos := b.Create(AddInt, 2, 0, 1)
	if !b.IsLastInstr(pos) {
		t.Fatalf("expected %v to be the last instruction", pos)
	}
	a, lhs, rhs := fn.Instructions[pos].Ternary()
	if a != 2 || lhs != 0 || rhs != 1 {
		t.Fatalf("got (%d,%d,%d), want (2,0,1)", a, lhs, rhs)
	}
}

func TestCreateBinaryIndexUsesUnsignedOperand(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	pos := b.Create(LoadStringK, 1, 40000)
	reg, idx := fn.Instructions[pos].BinaryIndex()
	if reg != 1 || idx != 40000 {
		t.Fatalf("got (%d,%d), want (1,40000)", reg, idx)
	}
}

func TestCreateBinarySignedImmediate(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	pos := b.Create(StoreSmallInt, 3, -500)
	reg, val := fn.Instructions[pos].Binary()
	if reg != 3 || val != -500 {
		t.Fatalf("got (%d,%d), want (3,-500)", reg, val)
	}
}

func TestPatchJumpFallThroughIsZero(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	jumpPos := b.Create(JumpIfNot, 0, 0)
	target := b.Here()
	if err := b.PatchJump(jumpPos, target); err != nil {
		t.Fatalf("PatchJump: %v", err)
	}
	_, off := fn.Instructions[jumpPos].Binary()
	if off != 0 {
		t.Fatalf("fall-through offset = %d, want 0", off)
	}
}

func TestPatchJumpForwardOffset(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	jumpPos := b.Create(Jump, 0)
	b.Create(NoOp)
	b.Create(NoOp)
	target := b.Here()
	if err := b.PatchJump(jumpPos, target); err != nil {
		t.Fatalf("PatchJump: %v", err)
	}
	if off := fn.Instructions[jumpPos].Unary(); off != 2 {
		t.Fatalf("offset = %d, want 2", off)
	}
}

func TestPatchJumpBackwardOffset(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	top := b.Here()
	b.Create(NoOp)
	b.Create(NoOp)
	jumpPos := b.Create(Jump, 0)
	if err := b.PatchJump(jumpPos, top); err != nil {
		t.Fatalf("PatchJump: %v", err)
	}
	if off := fn.Instructions[jumpPos].Unary(); off != -3 {
		t.Fatalf("offset = %d, want -3", off)
	}
}

func TestPatchJumpOverflowReportsCodegenError(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	jumpPos := b.Create(JumpIfNot, 0, 0)

	// Forge an instruction buffer long enough to overflow a 16-bit offset
	// without actually emitting 65536 real instructions.
	fn.Instructions = append(fn.Instructions, make([]Instruction, 1<<16)...)
	target := b.Here()

	err := b.PatchJump(jumpPos, target)
	if err == nil {
		t.Fatal("expected a CodegenError for an out-of-range 16-bit jump offset")
	}
	if _, ok := err.(CodegenError); !ok {
		t.Fatalf("got error of type %T, want CodegenError", err)
	}
}

func TestPopInstrDropsLastAndItsDebugRange(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	pos := b.Create(NoOp)
	b.AddDebugRange(pos, source.Range{})
	b.PopInstr()
	if len(fn.Instructions) != 0 {
		t.Fatalf("len(Instructions) = %d, want 0", len(fn.Instructions))
	}
	if _, ok := fn.DebugRanges[int(pos)]; ok {
		t.Fatal("debug range for popped instruction was not cleared")
	}
}

func TestTruncateInstrsDropsFromPositionOnward(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	b.Create(NoOp)
	cut := b.Here()
	b.Create(NoOp)
	b.Create(NoOp)
	b.TruncateInstrs(cut)
	if len(fn.Instructions) != 1 {
		t.Fatalf("len(Instructions) = %d, want 1", len(fn.Instructions))
	}
}

func TestCreatePanicsOnUnknownOpcode(t *testing.T) {
	fn := NewFunction("f", 0)
	b := NewBuilder(fn)
	defer func() {
		if recover() == nil {
			t.Fatal("expected Create to panic on an unregistered opcode")
		}
	}()
	b.Create(Opcode(250))
}
