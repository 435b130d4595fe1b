package bytecode

import (
	"strings"
	"testing"
)

func TestDumpEmptyModule(t *testing.T) {
	m := NewModule()
	got := Dump(m)
	want := "[Empty BCModule]\n"
	if got != want {
		t.Fatalf("Dump() =\n%s\nwant\n%s", got, want)
	}
}

func TestDumpNonEmptyModuleUsesFullFormat(t *testing.T) {
	m := NewModule()
	m.InternInt(1)
	got := Dump(m)
	if !strings.Contains(got, "[Constants]") {
		t.Fatalf("Dump() of a module with one constant should use the full format, got:\n%s", got)
	}
}

func TestDumpConstantsAndEntryPoint(t *testing.T) {
	m := NewModule()
	m.InternInt(42)
	m.InternDouble(3.5)
	m.InternString("hi")

	fn := NewFunction("main", 0)
	b := NewBuilder(fn)
	b.Create(RetVoid)
	idx := m.AddFunction(fn)
	m.EntryPoint = int(idx)

	got := Dump(m)
	for _, want := range []string{
		"[Integers: 1 constants]",
		"0\t| 42",
		"[Floating-Point: 1 constants]",
		"0\t| 3.5",
		"[Strings: 1 constants]",
		"0\t| \"hi\"",
		"[Functions: 1][Entry Point: Function #0]",
		"Function 0",
		"0\t| RetVoid",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Dump() missing %q in:\n%s", want, got)
		}
	}
}

func TestDumpDeduplicatesConstants(t *testing.T) {
	m := NewModule()
	first := m.InternInt(7)
	second := m.InternInt(7)
	if first != second {
		t.Fatalf("InternInt(7) twice returned different indices: %d, %d", first, second)
	}
	if len(m.Ints) != 1 {
		t.Fatalf("len(Ints) = %d, want 1", len(m.Ints))
	}
}

func TestDumpGlobalInitializerSection(t *testing.T) {
	m := NewModule()
	fn := NewFunction("$global0$init", 0)
	b := NewBuilder(fn)
	b.Create(StoreSmallInt, 0, 10)
	b.Create(Ret, 0)
	m.AddGlobal(fn)

	got := Dump(m)
	if !strings.Contains(got, "[Globals: 1]") {
		t.Errorf("missing globals count in:\n%s", got)
	}
	if !strings.Contains(got, "Initializer of Global 0") {
		t.Errorf("missing global initializer header in:\n%s", got)
	}
	if !strings.Contains(got, "0\t| StoreSmallInt r0, 10") {
		t.Errorf("missing StoreSmallInt line in:\n%s", got)
	}
}

func TestFormatArgsForEachLayout(t *testing.T) {
	cases := []struct {
		instr Instruction
		want  string
	}{
		{encodeNullary(NoOp), ""},
		{encodeUnary(Jump, -3), "-3"},
		{encodeSmallBinary(Copy, 1, 2), "r1, r2"},
		{encodeBinary(StoreSmallInt, 4, -9), "r4, -9"},
		{encodeBinaryIndex(LoadIntK, 0, 12), "r0, #12"},
		{encodeBinaryIndex(LoadGlobal, 3, 7), "r3, #7"},
		{encodeBinary(JumpIfNot, 0, 5), "r0, +5"},
		{encodeTernary(AddInt, 2, 0, 1), "r2, r0, r1"},
	}
	for _, c := range cases {
		if got := formatArgs(c.instr); got != c.want {
			t.Errorf("formatArgs(%v) = %q, want %q", c.instr.Op(), got, c.want)
		}
	}
}
