// exprgen.go implements ExprGen (spec.md §4.4): the ast.ExpressionVisitor
// half of funcGen, lowering each expression to the register holding its
// result. Every Visit* method follows the same register-discipline shape:
// allocate the destination first (so it outlives whatever temporaries the
// operands need), evaluate operands, emit the instruction, then release
// the operand registers in reverse-allocation order and return the
// destination. Allocating the destination before its operands (rather than
// reusing an operand's register, the more C-like trick) keeps the pattern
// uniform across unary, binary, and ternary ops instead of needing a
// special case for arities where no single operand's register is safe to
// repurpose (NewArray, Call, ArrayGet).
package codegen

import (
	"math"

	"fox/ast"
	"fox/bytecode"
	"fox/types"
)

const (
	minSmallInt = math.MinInt16
	maxSmallInt = math.MaxInt16
)

// genExpr lowers expr and returns the RegisterValue owning its result.
func (fg *funcGen) genExpr(expr ast.Expression) *RegisterValue {
	return expr.Accept(fg).(*RegisterValue)
}

// genDiscardedExpr lowers expr purely for side effects and immediately
// releases its result register (spec.md §4.4's genDiscardedExpr).
func (fg *funcGen) genDiscardedExpr(expr ast.Expression) {
	fg.genExpr(expr).Release()
}

func (fg *funcGen) VisitIntLiteral(e *ast.IntLiteralExpr) any {
	dest := fg.ra.Alloc()
	if e.Value >= minSmallInt && e.Value <= maxSmallInt {
		fg.b.Create(bytecode.StoreSmallInt, dest.Reg(), int(e.Value))
	} else {
		idx := fg.gen.module.InternInt(e.Value)
		fg.b.Create(bytecode.LoadIntK, dest.Reg(), int(idx))
	}
	return dest
}

func (fg *funcGen) VisitDoubleLiteral(e *ast.DoubleLiteralExpr) any {
	dest := fg.ra.Alloc()
	idx := fg.gen.module.InternDouble(e.Value)
	fg.b.Create(bytecode.LoadDoubleK, dest.Reg(), int(idx))
	return dest
}

func (fg *funcGen) VisitBoolLiteral(e *ast.BoolLiteralExpr) any {
	dest := fg.ra.Alloc()
	v := 0
	if e.Value {
		v = 1
	}
	fg.b.Create(bytecode.StoreSmallInt, dest.Reg(), v)
	return dest
}

// VisitCharLiteral lowers a code point via StoreSmallInt when it fits the
// signed 16-bit immediate (up to 0x7FFF) and falls back to the shared int
// constant pool otherwise, since Unicode code points run up to 0x10FFFF:
// Fox has no dedicated
// LoadCharK opcode, and registers are untyped 64-bit cells interpreted per
// opcode, so reusing LoadIntK costs nothing at runtime.
func (fg *funcGen) VisitCharLiteral(e *ast.CharLiteralExpr) any {
	dest := fg.ra.Alloc()
	v := int64(e.Value)
	if v >= minSmallInt && v <= maxSmallInt {
		fg.b.Create(bytecode.StoreSmallInt, dest.Reg(), int(v))
	} else {
		idx := fg.gen.module.InternInt(v)
		fg.b.Create(bytecode.LoadIntK, dest.Reg(), int(idx))
	}
	return dest
}

func (fg *funcGen) VisitStringLiteral(e *ast.StringLiteralExpr) any {
	dest := fg.ra.Alloc()
	idx := fg.gen.module.InternString(e.Value)
	fg.b.Create(bytecode.LoadStringK, dest.Reg(), int(idx))
	return dest
}

// VisitArrayLiteral allocates an array of the literal's length and stores
// each element by index. The destination is allocated before the size
// register so releasing the size temporary (and later each element
// temporary) never has to reach below the array's own register.
func (fg *funcGen) VisitArrayLiteral(e *ast.ArrayLiteralExpr) any {
	dest := fg.ra.Alloc()

	size := fg.ra.Alloc()
	fg.b.Create(bytecode.StoreSmallInt, size.Reg(), len(e.Elements))
	fg.b.Create(bytecode.NewArray, dest.Reg(), size.Reg())
	size.Release()

	for i, elem := range e.Elements {
		idx := fg.ra.Alloc()
		fg.b.Create(bytecode.StoreSmallInt, idx.Reg(), i)
		val := fg.genExpr(elem)
		fg.b.Create(bytecode.ArraySet, dest.Reg(), idx.Reg(), val.Reg())
		val.Release()
		idx.Release()
	}
	return dest
}

func (fg *funcGen) VisitBinary(e *ast.BinaryExpr) any {
	if e.Op == ast.OpAssign {
		return fg.genAssignment(e)
	}
	switch e.Op {
	case ast.OpAnd:
		return fg.genShortCircuit(e, bytecode.JumpIfNot)
	case ast.OpOr:
		return fg.genShortCircuit(e, bytecode.JumpIf)
	case ast.OpEq, ast.OpNotEq:
		return fg.genTernaryOp(e, equalityOpcode(e.Op, scalarKind(e.Left)))
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		return fg.genTernaryOp(e, orderingOpcode(e.Op, scalarKind(e.Left)))
	case ast.OpAdd:
		if types.IsConcatenable(rvalueType(e.Left.Type())) {
			return fg.genConcat(e)
		}
		return fg.genTernaryOp(e, arithmeticOpcode(e.Op, e.Type()))
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		return fg.genTernaryOp(e, arithmeticOpcode(e.Op, e.Type()))
	default:
		ast.Unreachable("codegen: unhandled binary operator %v", e.Op)
		return nil
	}
}

// genTernaryOp is the shared Ternary(dest, lhs, rhs) shape used by every
// arithmetic, comparison, and concatenation opcode.
func (fg *funcGen) genTernaryOp(e *ast.BinaryExpr, op bytecode.Opcode) *RegisterValue {
	dest := fg.ra.Alloc()
	lhs := fg.genExpr(e.Left)
	rhs := fg.genExpr(e.Right)
	fg.b.Create(op, dest.Reg(), lhs.Reg(), rhs.Reg())
	rhs.Release()
	lhs.Release()
	return dest
}

// genConcat lowers string-char concatenation (spec.md §4.2's "+ also
// performs string-char concatenation"). Concat itself only ever combines
// two string-typed registers (heap StringObjects): a char operand is first
// promoted to a one-rune string via CharToStr, so the VM's Concat handler
// never has to guess, from an untyped register, whether a given side holds
// a string-object index or a raw char code point — the same kind of
// static-type-to-opcode-choice codegen already does for arithmetic rank.
func (fg *funcGen) genConcat(e *ast.BinaryExpr) *RegisterValue {
	dest := fg.ra.Alloc()
	lhs := fg.genExpr(e.Left)
	lhs = fg.promoteCharToStr(lhs, scalarKind(e.Left))
	rhs := fg.genExpr(e.Right)
	rhs = fg.promoteCharToStr(rhs, scalarKind(e.Right))
	fg.b.Create(bytecode.Concat, dest.Reg(), lhs.Reg(), rhs.Reg())
	rhs.Release()
	lhs.Release()
	return dest
}

// promoteCharToStr replaces a char-typed operand register with a one-rune
// string register, leaving a string-typed operand untouched. It releases
// src and re-allocates before emitting CharToStr, rather than allocating
// the replacement while src is still live: the allocator's strict LIFO
// discipline would otherwise forbid ever releasing src, since a register
// allocated after it (the replacement) would still be outstanding. Freeing
// first and re-allocating happens to hand back the very same register
// number, which CharToStr reads and overwrites in place.
func (fg *funcGen) promoteCharToStr(src *RegisterValue, kind types.Primitive) *RegisterValue {
	if kind != types.Char {
		return src
	}
	srcReg := src.Reg()
	src.Release()
	dest := fg.ra.Alloc()
	fg.b.Create(bytecode.CharToStr, dest.Reg(), srcReg)
	return dest
}

// genShortCircuit lowers && / || (spec.md §4.4): evaluate the left operand
// into dest, jump around the right operand's evaluation if it already
// decides the result, otherwise evaluate the right operand and copy it
// into dest.
func (fg *funcGen) genShortCircuit(e *ast.BinaryExpr, skipOp bytecode.Opcode) *RegisterValue {
	dest := fg.ra.Alloc()
	lhs := fg.genExpr(e.Left)
	fg.b.Create(bytecode.Copy, dest.Reg(), lhs.Reg())
	lhs.Release()

	skip := fg.b.Create(skipOp, dest.Reg(), 0)
	rhs := fg.genExpr(e.Right)
	fg.b.Create(bytecode.Copy, dest.Reg(), rhs.Reg())
	rhs.Release()

	fg.patchJump(skip, fg.b.Here())
	return dest
}

func (fg *funcGen) VisitUnary(e *ast.UnaryExpr) any {
	switch e.Op {
	case ast.OpPos:
		// Unary '+' has no runtime effect; still lower the operand for its
		// side effects and hand its register straight back.
		return fg.genExpr(e.Operand)
	case ast.OpNeg:
		op := bytecode.NegInt
		if scalarKind(e.Operand) == types.Double {
			op = bytecode.NegDouble
		}
		return fg.genUnarySmallBinary(e.Operand, op)
	case ast.OpNot:
		return fg.genUnarySmallBinary(e.Operand, bytecode.LNot)
	default:
		ast.Unreachable("codegen: unhandled unary operator %v", e.Op)
		return nil
	}
}

func (fg *funcGen) genUnarySmallBinary(operand ast.Expression, op bytecode.Opcode) *RegisterValue {
	dest := fg.ra.Alloc()
	src := fg.genExpr(operand)
	fg.b.Create(op, dest.Reg(), src.Reg())
	src.Release()
	return dest
}

// VisitCast never emits anything of its own: Fox's registers are untyped
// 64-bit cells, and every permitted cast (spec.md §4.2: arithmetic<->
// arithmetic, string<->char, same-to-same) reinterprets the same bit
// pattern the VM's getReg<T>/setReg<T> already apply per opcode — the cast
// only changes which opcode downstream code picks (via scalarKind), not
// any register content.
func (fg *funcGen) VisitCast(e *ast.CastExpr) any {
	return fg.genExpr(e.Inner)
}

func (fg *funcGen) VisitDeclRef(e *ast.DeclRefExpr) any {
	switch d := e.Decl.(type) {
	case *ast.VarDecl:
		if d.IsGlobal {
			dest := fg.ra.Alloc()
			fg.b.Create(bytecode.LoadGlobal, dest.Reg(), int(fg.gen.globalSlot[d]))
			return dest
		}
		return fg.ra.Borrow(fg.locals[d].Reg())
	case *ast.ParamDecl:
		return fg.ra.Borrow(fg.locals[d].Reg())
	case *ast.FuncDecl:
		dest := fg.ra.Alloc()
		fg.b.Create(bytecode.LoadFunc, dest.Reg(), int(fg.gen.funcIndex[d]))
		return dest
	case *ast.BuiltinFuncDecl:
		dest := fg.ra.Alloc()
		fg.b.Create(bytecode.LoadBuiltinFunc, dest.Reg(), int(fg.gen.module.AddBuiltin(d.Ident().Name)))
		return dest
	default:
		ast.Unreachable("codegen: decl ref names unexpected decl kind %T", d)
		return nil
	}
}

func (fg *funcGen) VisitUnresolvedDeclRef(e *ast.UnresolvedDeclRefExpr) any {
	ast.Unreachable("codegen: unresolved decl ref %q reached codegen; sema should have replaced it", e.Name)
	return nil
}

// VisitMemberOf is reached only if a member access appears somewhere other
// than a direct call (e.g. "let f = a.len;" without invoking it). Fox's
// only member, array .len, is specified and lowered exclusively as a call
// (VisitCall special-cases it before generic dispatch ever reaches here);
// there is no ArrayLen-producing-a-callable-value opcode to lower a bare
// reference to.
func (fg *funcGen) VisitMemberOf(e *ast.MemberOfExpr) any {
	ast.Unreachable("codegen: member access %q is only supported as a direct call", e.Member)
	return nil
}

func (fg *funcGen) VisitSubscript(e *ast.SubscriptExpr) any {
	dest := fg.ra.Alloc()
	arr := fg.genExpr(e.Array)
	idx := fg.genExpr(e.Index)
	fg.b.Create(bytecode.ArrayGet, dest.Reg(), arr.Reg(), idx.Reg())
	idx.Release()
	arr.Release()
	return dest
}

func (fg *funcGen) VisitCall(e *ast.CallExpr) any {
	if member, ok := e.Callee.(*ast.MemberOfExpr); ok && member.Member.Name == "len" {
		dest := fg.ra.Alloc()
		base := fg.genExpr(member.Base)
		fg.b.Create(bytecode.ArrayLen, dest.Reg(), base.Reg())
		base.Release()
		return dest
	}

	dest := fg.ra.Alloc()
	callee := fg.genExpr(e.Callee)
	args := make([]*RegisterValue, len(e.Args))
	for i, a := range e.Args {
		args[i] = fg.genExpr(a)
	}

	argsBase := callee.Reg() + 1
	fg.b.Create(bytecode.Call, dest.Reg(), callee.Reg(), argsBase)

	for i := len(args) - 1; i >= 0; i-- {
		args[i].Release()
	}
	callee.Release()
	return dest
}

func (fg *funcGen) VisitError(e *ast.ErrorExpr) any {
	ast.Unreachable("codegen: an ErrorExpr reached codegen; a prior diagnostic should have stopped the pipeline")
	return nil
}

func arithmeticOpcode(op ast.OpKind, resultTy *types.Type) bytecode.Opcode {
	isDouble := rvalueType(resultTy).PrimitiveKind() == types.Double
	switch op {
	case ast.OpAdd:
		if isDouble {
			return bytecode.AddDouble
		}
		return bytecode.AddInt
	case ast.OpSub:
		if isDouble {
			return bytecode.SubDouble
		}
		return bytecode.SubInt
	case ast.OpMul:
		if isDouble {
			return bytecode.MulDouble
		}
		return bytecode.MulInt
	case ast.OpDiv:
		if isDouble {
			return bytecode.DivDouble
		}
		return bytecode.DivInt
	case ast.OpMod:
		// sema restricts '%' to int operands (spec.md §4.2); no ModDouble form exists.
		return bytecode.ModInt
	case ast.OpPow:
		if isDouble {
			return bytecode.PowDouble
		}
		return bytecode.PowInt
	default:
		ast.Unreachable("codegen: %v is not an arithmetic operator", op)
		return 0
	}
}

// equalityOpcode picks Eq*/NotEq* by the compared operands' primitive kind
// — defined for all five primitives, since sema's OpEq/OpNotEq rule
// accepts any unifiable pair (typecheck.go's VisitBinary).
func equalityOpcode(op ast.OpKind, kind types.Primitive) bytecode.Opcode {
	table := map[types.Primitive][2]bytecode.Opcode{
		types.Int:    {bytecode.EqInt, bytecode.NotEqInt},
		types.Double: {bytecode.EqDouble, bytecode.NotEqDouble},
		types.Bool:   {bytecode.EqBool, bytecode.NotEqBool},
		types.Char:   {bytecode.EqChar, bytecode.NotEqChar},
		types.String: {bytecode.EqString, bytecode.NotEqString},
	}
	pair, ok := table[kind]
	if !ok {
		ast.Unreachable("codegen: no equality opcode for primitive %v", kind)
	}
	if op == ast.OpEq {
		return pair[0]
	}
	return pair[1]
}

// orderingOpcode picks Less*/Greater*(-Eq) by operand primitive kind —
// defined only for int/double/bool, mirroring types.IsArithmetic's exact
// three-type set; sema's comparison rule never lets a char operand reach
// an ordering expression (typecheck.go's VisitBinary requires
// IsArithmetic on both sides for <, <=, >, >=).
func orderingOpcode(op ast.OpKind, kind types.Primitive) bytecode.Opcode {
	type quad = [4]bytecode.Opcode
	table := map[types.Primitive]quad{
		types.Int:    {bytecode.LessInt, bytecode.LessEqInt, bytecode.GreaterInt, bytecode.GreaterEqInt},
		types.Double: {bytecode.LessDouble, bytecode.LessEqDouble, bytecode.GreaterDouble, bytecode.GreaterEqDouble},
		types.Bool:   {bytecode.LessBool, bytecode.LessEqBool, bytecode.GreaterBool, bytecode.GreaterEqBool},
	}
	q, ok := table[kind]
	if !ok {
		ast.Unreachable("codegen: no ordering opcode for primitive %v", kind)
	}
	switch op {
	case ast.OpLess:
		return q[0]
	case ast.OpLessEq:
		return q[1]
	case ast.OpGreater:
		return q[2]
	case ast.OpGreaterEq:
		return q[3]
	default:
		ast.Unreachable("codegen: %v is not an ordering operator", op)
		return 0
	}
}

// genAssignment lowers "lhs = rhs" (spec.md §4.4: the LHS must produce a
// register address). Unlike every other expression, the left operand is
// pattern-matched directly rather than visited generically — visiting it
// through genExpr would "read" a value nothing needs, the same reason
// sema's own VisitBinary inspects e.Left's raw (un-rvalue'd) type instead
// of calling the generic rvalue path for an assignment target.
func (fg *funcGen) genAssignment(e *ast.BinaryExpr) *RegisterValue {
	val := fg.genExpr(e.Right)

	switch lhs := e.Left.(type) {
	case *ast.DeclRefExpr:
		return fg.assignToDeclRef(lhs, val)
	case *ast.SubscriptExpr:
		arr := fg.genExpr(lhs.Array)
		idx := fg.genExpr(lhs.Index)
		fg.b.Create(bytecode.ArraySet, arr.Reg(), idx.Reg(), val.Reg())
		idx.Release()
		arr.Release()
		return val
	default:
		ast.Unreachable("codegen: assignment target %T is not an lvalue-producing expression", e.Left)
		return nil
	}
}

func (fg *funcGen) assignToDeclRef(ref *ast.DeclRefExpr, val *RegisterValue) *RegisterValue {
	switch d := ref.Decl.(type) {
	case *ast.VarDecl:
		if d.IsGlobal {
			fg.b.Create(bytecode.StoreGlobal, val.Reg(), int(fg.gen.globalSlot[d]))
			return val
		}
		target := fg.locals[d]
		fg.b.Create(bytecode.Copy, target.Reg(), val.Reg())
		val.Release()
		return fg.ra.Borrow(target.Reg())
	case *ast.ParamDecl:
		target := fg.locals[d]
		fg.b.Create(bytecode.Copy, target.Reg(), val.Reg())
		val.Release()
		return fg.ra.Borrow(target.Reg())
	default:
		ast.Unreachable("codegen: assignment target decl ref names unexpected decl kind %T", d)
		return nil
	}
}

