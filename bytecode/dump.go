package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders m in the deterministic text format spec.md §6.4 defines for
// tests: constant pools, then every global initializer, then every function,
// each instruction as "<idx>\t| <mnemonic> <args>". A module with no
// constants, globals, or functions at all dumps as the single-line
// "[Empty BCModule]" sentinel instead.
func Dump(m *BCModule) string {
	if m.isEmpty() {
		return "[Empty BCModule]\n"
	}

	var sb strings.Builder

	sb.WriteString("[Constants]\n")
	fmt.Fprintf(&sb, "  [Integers: %d constants]\n", len(m.Ints))
	for i, v := range m.Ints {
		fmt.Fprintf(&sb, "    %d\t| %d\n", i, v)
	}
	fmt.Fprintf(&sb, "  [Floating-Point: %d constants]\n", len(m.Doubles))
	for i, v := range m.Doubles {
		fmt.Fprintf(&sb, "    %d\t| %v\n", i, v)
	}
	fmt.Fprintf(&sb, "  [Strings: %d constants]\n", len(m.Strings))
	for i, v := range m.Strings {
		fmt.Fprintf(&sb, "    %d\t| %s\n", i, strconv.Quote(v))
	}

	fmt.Fprintf(&sb, "[Globals: %d]\n", len(m.Globals))
	for i, fn := range m.Globals {
		fmt.Fprintf(&sb, "Initializer of Global %d\n", i)
		dumpInstructions(&sb, fn)
	}

	entry := "None"
	if m.EntryPoint != NoEntryPoint {
		entry = fmt.Sprintf("Function #%d", m.EntryPoint)
	}
	fmt.Fprintf(&sb, "[Functions: %d][Entry Point: %s]\n", len(m.Functions), entry)
	for i, fn := range m.Functions {
		fmt.Fprintf(&sb, "Function %d\n", i)
		dumpInstructions(&sb, fn)
	}

	return sb.String()
}

func (m *BCModule) isEmpty() bool {
	return len(m.Ints) == 0 && len(m.Doubles) == 0 && len(m.Strings) == 0 &&
		len(m.Globals) == 0 && len(m.Functions) == 0
}

func dumpInstructions(sb *strings.Builder, fn *BCFunction) {
	for i, instr := range fn.Instructions {
		fmt.Fprintf(sb, "    %d\t| %s %s\n", i, instr.Op(), formatArgs(instr))
	}
}

func formatArgs(instr Instruction) string {
	op := instr.Op()
	switch layoutOf(op) {
	case LayoutNullary:
		return ""
	case LayoutUnary:
		return fmt.Sprintf("%+d", instr.Unary())
	case LayoutSmallBinary:
		a, b := instr.SmallBinary()
		return fmt.Sprintf("r%d, r%d", a, b)
	case LayoutBinary:
		if isConstIndexLoad(op) {
			reg, idx := instr.BinaryIndex()
			return fmt.Sprintf("r%d, #%d", reg, idx)
		}
		reg, val := instr.Binary()
		if op == JumpIf || op == JumpIfNot {
			return fmt.Sprintf("r%d, %+d", reg, val)
		}
		return fmt.Sprintf("r%d, %d", reg, val)
	case LayoutTernary:
		a, b, c := instr.Ternary()
		return fmt.Sprintf("r%d, r%d, r%d", a, b, c)
	default:
		return ""
	}
}
