package bytecode

import "fox/source"

// BCFunction is one function's compiled body: its instruction buffer, a
// sparse map from instruction index to the source range that produced it
// (spec.md §4.3's addDebugRange), and the register-frame size codegen's
// allocator settled on, which Call uses to know how far to slide the base
// register.
type BCFunction struct {
	Name         string
	NumParams    int
	NumRegisters int

	Instructions []Instruction
	DebugRanges  map[int]source.Range
}

func NewFunction(name string, numParams int) *BCFunction {
	return &BCFunction{
		Name:        name,
		NumParams:   numParams,
		DebugRanges: make(map[int]source.Range),
	}
}

// BCModule is the whole compiled unit (spec.md §4.3): deduplicated constant
// pools, one initializer BCFunction per global (run in declaration order
// before the entry point, spec.md §4.4), the function table, and the
// elected entry point's index into it.
type BCModule struct {
	Ints    []int64
	Doubles []float64
	Strings []string

	intIndex    map[int64]uint16
	doubleIndex map[float64]uint16
	stringIndex map[string]uint16

	Globals    []*BCFunction
	Functions  []*BCFunction
	EntryPoint int // index into Functions, or NoEntryPoint

	Builtins    []string
	builtinIndex map[string]uint16
}

// NoEntryPoint marks a module with no elected "main" (spec.md §4.2's
// electEntryPoint returning nil feeds directly into this).
const NoEntryPoint = -1

func NewModule() *BCModule {
	return &BCModule{
		intIndex:     make(map[int64]uint16),
		doubleIndex:  make(map[float64]uint16),
		stringIndex:  make(map[string]uint16),
		builtinIndex: make(map[string]uint16),
		EntryPoint:   NoEntryPoint,
	}
}

// InternInt returns v's constant-pool index, reusing an existing slot if v
// was already interned (spec.md §4.4: "deduplicated on equality").
func (m *BCModule) InternInt(v int64) uint16 {
	if idx, ok := m.intIndex[v]; ok {
		return idx
	}
	idx := uint16(len(m.Ints))
	m.Ints = append(m.Ints, v)
	m.intIndex[v] = idx
	return idx
}

func (m *BCModule) InternDouble(v float64) uint16 {
	if idx, ok := m.doubleIndex[v]; ok {
		return idx
	}
	idx := uint16(len(m.Doubles))
	m.Doubles = append(m.Doubles, v)
	m.doubleIndex[v] = idx
	return idx
}

func (m *BCModule) InternString(v string) uint16 {
	if idx, ok := m.stringIndex[v]; ok {
		return idx
	}
	idx := uint16(len(m.Strings))
	m.Strings = append(m.Strings, v)
	m.stringIndex[v] = idx
	return idx
}

// AddFunction appends fn to the function table and returns its index, used
// as the operand of LoadFunc.
func (m *BCModule) AddFunction(fn *BCFunction) uint16 {
	idx := uint16(len(m.Functions))
	m.Functions = append(m.Functions, fn)
	return idx
}

// AddGlobal appends a global initializer function and returns its index,
// which doubles as the global variable's own slot number.
func (m *BCModule) AddGlobal(fn *BCFunction) uint16 {
	idx := uint16(len(m.Globals))
	m.Globals = append(m.Globals, fn)
	return idx
}

// AddBuiltin returns name's index into the builtin table, reusing an
// existing slot if the same builtin was already referenced (mirrors the
// constant pools: a program that calls printInt in three places gets one
// LoadBuiltinFunc index, not three). Used as LoadBuiltinFunc's operand.
func (m *BCModule) AddBuiltin(name string) uint16 {
	if idx, ok := m.builtinIndex[name]; ok {
		return idx
	}
	idx := uint16(len(m.Builtins))
	m.Builtins = append(m.Builtins, name)
	m.builtinIndex[name] = idx
	return idx
}
