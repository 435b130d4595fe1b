package bytecode

import "testing"

func TestAddBuiltinDeduplicates(t *testing.T) {
	m := NewModule()
	first := m.AddBuiltin("printInt")
	second := m.AddBuiltin("printInt")
	if first != second {
		t.Fatalf("AddBuiltin(printInt) twice returned different indices: %d, %d", first, second)
	}
	third := m.AddBuiltin("printString")
	if third == first {
		t.Fatalf("AddBuiltin(printString) collided with printInt's index")
	}
	if len(m.Builtins) != 2 {
		t.Fatalf("len(Builtins) = %d, want 2", len(m.Builtins))
	}
}

func TestAddFunctionAndAddGlobalReturnSequentialIndices(t *testing.T) {
	m := NewModule()
	f0 := m.AddFunction(NewFunction("a", 0))
	f1 := m.AddFunction(NewFunction("b", 1))
	if f0 != 0 || f1 != 1 {
		t.Fatalf("got (%d,%d), want (0,1)", f0, f1)
	}
	g0 := m.AddGlobal(NewFunction("$global0$init", 0))
	if g0 != 0 {
		t.Fatalf("AddGlobal first index = %d, want 0", g0)
	}
}
