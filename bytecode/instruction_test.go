package bytecode

import "testing"

func TestTernaryRoundTrips(t *testing.T) {
	instr := encodeTernary(AddInt, 3, 1, 2)
	if instr.Op() != AddInt {
		t.Fatalf("Op() = %v, want AddInt", instr.Op())
	}
	a, b, c := instr.Ternary()
	if a != 3 || b != 1 || c != 2 {
		t.Fatalf("Ternary() = (%d,%d,%d), want (3,1,2)", a, b, c)
	}
}

func TestSmallBinaryRoundTrips(t *testing.T) {
	instr := encodeSmallBinary(Copy, 5, 9)
	a, b := instr.SmallBinary()
	if a != 5 || b != 9 {
		t.Fatalf("SmallBinary() = (%d,%d), want (5,9)", a, b)
	}
}

func TestBinarySignedRoundTrips(t *testing.T) {
	instr := encodeBinary(StoreSmallInt, 2, -1234)
	reg, val := instr.Binary()
	if reg != 2 || val != -1234 {
		t.Fatalf("Binary() = (%d,%d), want (2,-1234)", reg, val)
	}
}

func TestBinaryIndexUnsignedRoundTrips(t *testing.T) {
	instr := encodeBinaryIndex(LoadIntK, 4, 65000)
	reg, idx := instr.BinaryIndex()
	if reg != 4 || idx != 65000 {
		t.Fatalf("BinaryIndex() = (%d,%d), want (4,65000)", reg, idx)
	}
}

func TestUnaryPositiveAndNegativeRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 1<<23 - 1, -(1 << 23), 12345, -54321}
	for _, want := range cases {
		instr := encodeUnary(Jump, want)
		if got := instr.Unary(); got != want {
			t.Errorf("encodeUnary(%d).Unary() = %d, want %d", want, got, want)
		}
	}
}

func TestOpcodeOccupiesTopByte(t *testing.T) {
	instr := encodeTernary(Call, 255, 255, 255)
	if instr.Op() != Call {
		t.Fatalf("high operand bytes corrupted opcode: got %v", instr.Op())
	}
}

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	if AddInt.String() != "AddInt" {
		t.Errorf("AddInt.String() = %q, want %q", AddInt.String(), "AddInt")
	}
	var bogus Opcode = 250
	if bogus.String() != "<unknown opcode>" {
		t.Errorf("bogus.String() = %q, want <unknown opcode>", bogus.String())
	}
}
