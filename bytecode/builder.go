package bytecode

import "fox/source"

// IteratorPos is a stable index into a function's instruction buffer,
// returned by every Create call so jump targets can be patched later once
// both ends of a forward jump are known (spec.md §4.3's Builder).
type IteratorPos int

// Builder appends instructions to one function's buffer. Codegen holds one
// Builder per BCFunction being generated; it is the Go realization of the
// teacher's generic emit(opcode, operands...)/MakeInstruction(op,
// operands...) (compiler/code.go, compiler/compiler.go) — Go has no
// template parameter to write spec.md's `create<Opcode>(...)` literally, so
// a single Create dispatches on the opcode's declared Layout instead of one
// method per opcode.
type Builder struct {
	fn *BCFunction
}

func NewBuilder(fn *BCFunction) *Builder {
	return &Builder{fn: fn}
}

// Create appends an instruction for op, interpreting operands positionally
// according to op's layout:
//   - Nullary: no operands.
//   - Unary: one value, the 24-bit signed payload (Jump; pass 0 for a
//     placeholder to be patched later via PatchJump).
//   - SmallBinary: up to two register addresses.
//   - Binary: a register address, then a 16-bit immediate (signed for
//     StoreSmallInt and the JumpIf/JumpIfNot offset, or an unsigned
//     pool/table index for the Load*K/LoadFunc/LoadBuiltinFunc/LoadGlobal/
//     StoreGlobal family).
//   - Ternary: three register addresses.
func (b *Builder) Create(op Opcode, operands ...int) IteratorPos {
	var instr Instruction
	switch layoutOf(op) {
	case LayoutNullary:
		instr = encodeNullary(op)
	case LayoutUnary:
		instr = encodeUnary(op, int32(arg(operands, 0)))
	case LayoutSmallBinary:
		instr = encodeSmallBinary(op, byte(arg(operands, 0)), byte(arg(operands, 1)))
	case LayoutBinary:
		reg := byte(arg(operands, 0))
		if isConstIndexLoad(op) {
			instr = encodeBinaryIndex(op, reg, uint16(arg(operands, 1)))
		} else {
			instr = encodeBinary(op, reg, int16(arg(operands, 1)))
		}
	case LayoutTernary:
		instr = encodeTernary(op, byte(arg(operands, 0)), byte(arg(operands, 1)), byte(arg(operands, 2)))
	default:
		panic(CodegenError{Message: "unhandled opcode layout"})
	}
	return b.append(instr)
}

func arg(operands []int, i int) int {
	if i < len(operands) {
		return operands[i]
	}
	return 0
}

func (b *Builder) append(instr Instruction) IteratorPos {
	b.fn.Instructions = append(b.fn.Instructions, instr)
	return IteratorPos(len(b.fn.Instructions) - 1)
}

// Here returns the position the next Create call will occupy, used to
// record a while loop's top-of-loop target before its condition is lowered.
func (b *Builder) Here() IteratorPos {
	return IteratorPos(len(b.fn.Instructions))
}

// IsLastInstr reports whether it is the most recently appended instruction.
func (b *Builder) IsLastInstr(it IteratorPos) bool {
	return int(it) == len(b.fn.Instructions)-1
}

// PopInstr drops the most recently appended instruction, used by the
// ConditionStmt peephole pass when a branch turned out to have emitted
// nothing worth jumping around.
func (b *Builder) PopInstr() {
	last := len(b.fn.Instructions) - 1
	delete(b.fn.DebugRanges, last)
	b.fn.Instructions = b.fn.Instructions[:last]
}

// TruncateInstrs drops it and everything appended after it.
func (b *Builder) TruncateInstrs(it IteratorPos) {
	for i := int(it); i < len(b.fn.Instructions); i++ {
		delete(b.fn.DebugRanges, i)
	}
	b.fn.Instructions = b.fn.Instructions[:it]
}

// AddDebugRange records the source range that produced the instruction at it.
func (b *Builder) AddDebugRange(it IteratorPos, rng source.Range) {
	b.fn.DebugRanges[int(it)] = rng
}

// PatchJump rewrites the Jump/JumpIf/JumpIfNot instruction at jumpPos so it
// targets targetPos, computing the offset relative to the instruction right
// after jumpPos (offset 0 = fall-through, spec.md §4.3). It reports a fatal
// CodegenError if the distance overflows the opcode's signed operand.
func (b *Builder) PatchJump(jumpPos, targetPos IteratorPos) error {
	offset := int(targetPos) - (int(jumpPos) + 1)
	instr := b.fn.Instructions[jumpPos]

	switch instr.Op() {
	case Jump:
		if offset < minJumpOffset24 || offset > maxJumpOffset24 {
			return CodegenError{Message: "jump target too far: offset exceeds 24-bit signed range"}
		}
		b.fn.Instructions[jumpPos] = encodeUnary(Jump, int32(offset))

	case JumpIf, JumpIfNot:
		if offset < minJumpOffset16 || offset > maxJumpOffset16 {
			return CodegenError{Message: "jump target too far: offset exceeds 16-bit signed range"}
		}
		reg, _ := instr.Binary()
		b.fn.Instructions[jumpPos] = encodeBinary(instr.Op(), reg, int16(offset))

	default:
		panic(CodegenError{Message: "PatchJump called on a non-jump instruction " + instr.Op().String()})
	}
	return nil
}
