// typecheck.go implements unification-based expression typing (spec.md
// §4.2's type table) together with name resolution: the two are one pass
// because resolving an UnresolvedDeclRefExpr needs the enclosing scope that
// only the expression walk itself threads through.

package sema

import (
	"fox/ast"
	"fox/diag"
	"fox/types"
)

// typed pairs a (possibly replaced) expression with its computed type.
// VisitUnresolvedDeclRef hands back a brand new DeclRefExpr or ErrorExpr in
// place of itself; every other Visit* method returns the same node it was
// given, just with a type computed for it.
type typed struct {
	expr ast.Expression
	ty   *types.Type
}

// typeChecker implements ast.ExpressionVisitor. ctx is the lexical scope
// names are resolved against; it is unused when noDeclRefs is set, which is
// the case only while checking a global variable's own initializer, which
// may not reference any declaration at all (spec.md §4.2).
type typeChecker struct {
	a          *Analyzer
	ctx        *ast.DeclContext
	noDeclRefs bool
}

func (tc *typeChecker) types() *types.Context { return tc.a.astCtx.Types }

// rvalue strips one level of lvalue-ness: a DeclRef/Subscript naming a
// mutable location types as LValue(T) so assignment can recognize it, but
// every other consumer (an operand, an argument, an array element, an
// initializer) wants the value T itself, not the location wrapper.
func rvalue(t *types.Type) *types.Type {
	r := types.Resolve(t)
	if r.Kind() == types.KindLValue {
		return types.Resolve(r.Elem())
	}
	return r
}

// checkInPlace type-checks the expression held in slot, writes back any
// replacement node, stamps its computed type, and returns that type.
func (tc *typeChecker) checkInPlace(slot *ast.Expression) *types.Type {
	res := (*slot).Accept(tc).(typed)
	*slot = res.expr
	res.expr.SetType(res.ty)
	return res.ty
}

func (tc *typeChecker) VisitIntLiteral(e *ast.IntLiteralExpr) any {
	return typed{e, tc.types().Primitive(types.Int)}
}

func (tc *typeChecker) VisitDoubleLiteral(e *ast.DoubleLiteralExpr) any {
	return typed{e, tc.types().Primitive(types.Double)}
}

func (tc *typeChecker) VisitBoolLiteral(e *ast.BoolLiteralExpr) any {
	return typed{e, tc.types().Primitive(types.Bool)}
}

func (tc *typeChecker) VisitCharLiteral(e *ast.CharLiteralExpr) any {
	return typed{e, tc.types().Primitive(types.Char)}
}

func (tc *typeChecker) VisitStringLiteral(e *ast.StringLiteralExpr) any {
	return typed{e, tc.types().Primitive(types.String)}
}

// VisitArrayLiteral unifies every element against the first; an empty
// literal elaborates to Array(cell), left to be pinned down by its use site
// (spec.md §4.2).
func (tc *typeChecker) VisitArrayLiteral(e *ast.ArrayLiteralExpr) any {
	if len(e.Elements) == 0 {
		return typed{e, tc.types().Array(tc.types().Cell())}
	}
	elemTy := rvalue(tc.checkInPlace(&e.Elements[0]))
	for i := 1; i < len(e.Elements); i++ {
		ty := rvalue(tc.checkInPlace(&e.Elements[i]))
		if !types.Unify(elemTy, ty) {
			tc.a.diags.Report(diag.Error, e.Elements[i].Range(),
				"array literal element has type %0, expected %1 like the preceding elements").
				AddArg(ty).AddArg(elemTy).Emit()
		}
	}
	return typed{e, tc.types().Array(elemTy)}
}

func (tc *typeChecker) VisitBinary(e *ast.BinaryExpr) any {
	rawLt := tc.checkInPlace(&e.Left)
	rawRt := tc.checkInPlace(&e.Right)
	tyCtx := tc.types()

	if e.Op == ast.OpAssign {
		target := types.Resolve(rawLt)
		if target.Kind() != types.KindLValue {
			tc.a.diags.Report(diag.Error, e.Left.Range(), "left-hand side of assignment is not assignable").Emit()
			return typed{e, tyCtx.Error()}
		}
		if !types.Unify(target.Elem(), rvalue(rawRt)) {
			tc.a.diags.Report(diag.Error, e.OpRange, "cannot assign a value of type %0 to a variable of type %1").
				AddArg(rawRt).AddArg(target.Elem()).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, target.Elem()}
	}

	lt := rvalue(rawLt)
	rt := rvalue(rawRt)

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		boolTy := tyCtx.Primitive(types.Bool)
		if !types.Unify(lt, boolTy) || !types.Unify(rt, boolTy) {
			tc.a.diags.Report(diag.Error, e.OpRange, "operands of '%0' must be bool").AddArg(opSymbol(e.Op)).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, boolTy}

	case ast.OpEq, ast.OpNotEq:
		if !types.Unify(lt, rt) {
			tc.a.diags.Report(diag.Error, e.OpRange, "cannot compare %0 and %1").AddArg(lt).AddArg(rt).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, tyCtx.Primitive(types.Bool)}

	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		if !types.IsArithmetic(lt) || !types.IsArithmetic(rt) {
			tc.a.diags.Report(diag.Error, e.OpRange, "operands of '%0' must be arithmetic, got %1 and %2").
				AddArg(opSymbol(e.Op)).AddArg(lt).AddArg(rt).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, tyCtx.Primitive(types.Bool)}

	case ast.OpAdd:
		if types.IsConcatenable(lt) && types.IsConcatenable(rt) {
			return typed{e, tyCtx.Primitive(types.String)}
		}
		fallthrough
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpPow:
		if !types.IsArithmetic(lt) || !types.IsArithmetic(rt) {
			tc.a.diags.Report(diag.Error, e.OpRange, "invalid operand types %0 and %1 for operator '%2'").
				AddArg(lt).AddArg(rt).AddArg(opSymbol(e.Op)).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, types.HighestRank(lt, rt)}

	case ast.OpMod:
		if !types.IsInt(lt) || !types.IsInt(rt) {
			tc.a.diags.Report(diag.Error, e.OpRange, "operands of '%0' must be int, got %1 and %2").
				AddArg(opSymbol(e.Op)).AddArg(lt).AddArg(rt).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, tyCtx.Primitive(types.Int)}

	default:
		ast.Unreachable("sema: unhandled binary operator %v", e.Op)
		return typed{e, tyCtx.Error()}
	}
}

func (tc *typeChecker) VisitUnary(e *ast.UnaryExpr) any {
	ty := rvalue(tc.checkInPlace(&e.Operand))
	tyCtx := tc.types()
	switch e.Op {
	case ast.OpNot:
		if !types.Unify(ty, tyCtx.Primitive(types.Bool)) {
			tc.a.diags.Report(diag.Error, e.OpRange, "operand of '!' must be bool, got %0").AddArg(ty).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, tyCtx.Primitive(types.Bool)}
	case ast.OpNeg, ast.OpPos:
		if !types.IsArithmetic(ty) {
			tc.a.diags.Report(diag.Error, e.OpRange, "operand of unary '%0' must be arithmetic, got %1").
				AddArg(opSymbol(e.Op)).AddArg(ty).Emit()
			return typed{e, tyCtx.Error()}
		}
		return typed{e, ty}
	default:
		ast.Unreachable("sema: unhandled unary operator %v", e.Op)
		return typed{e, tyCtx.Error()}
	}
}

// VisitCast permits arithmetic-to-arithmetic, string<->char, and
// same-to-same casts only (spec.md §4.2).
func (tc *typeChecker) VisitCast(e *ast.CastExpr) any {
	innerTy := rvalue(tc.checkInPlace(&e.Inner))
	target := e.Target
	ri, rt := types.Resolve(innerTy), types.Resolve(target)

	valid := ri == rt ||
		(types.IsArithmetic(ri) && types.IsArithmetic(rt)) ||
		(types.IsConcatenable(ri) && types.IsConcatenable(rt))
	if !valid {
		tc.a.diags.Report(diag.Error, e.Range(), "invalid cast from %0 to %1").AddArg(innerTy).AddArg(target).Emit()
		return typed{e, tc.types().Error()}
	}
	return typed{e, target}
}

func (tc *typeChecker) VisitDeclRef(e *ast.DeclRefExpr) any {
	return typed{e, declType(tc.types(), e.Decl)}
}

// VisitUnresolvedDeclRef performs name resolution: it looks the identifier
// up starting from ctx and replaces itself with a DeclRefExpr (success) or
// an ErrorExpr (failure), per the contract documented on
// ast.UnresolvedDeclRefExpr.
func (tc *typeChecker) VisitUnresolvedDeclRef(e *ast.UnresolvedDeclRefExpr) any {
	if tc.noDeclRefs {
		tc.a.diags.Report(diag.Error, e.Range(),
			"a global variable's initializer may not reference other declarations").Emit()
		return typed{ast.NewErrorExpr(e.Range()), tc.types().Error()}
	}

	var resolved ast.Decl
	tc.ctx.Lookup(e.Name, e.Range().Begin, func(_ *ast.DeclContext, found []ast.Decl) {
		resolved = found[0]
	})
	if resolved == nil {
		tc.a.diags.Report(diag.Error, e.Range(), "use of undeclared identifier '%0'").AddArg(e.Name.Name).Emit()
		return typed{ast.NewErrorExpr(e.Range()), tc.types().Error()}
	}
	return typed{ast.NewDeclRef(e.Range(), resolved), declType(tc.types(), resolved)}
}

// VisitMemberOf recognizes exactly one member: an array's "len" method,
// typed () -> int (spec.md's supplemented array-method feature). Anything
// else is a type error.
func (tc *typeChecker) VisitMemberOf(e *ast.MemberOfExpr) any {
	baseTy := rvalue(tc.checkInPlace(&e.Base))
	if baseTy.Kind() == types.KindArray && e.Member.Name == "len" {
		return typed{e, tc.types().Function(nil, tc.types().Primitive(types.Int))}
	}
	tc.a.diags.Report(diag.Error, e.Range(), "type %0 has no member '%1'").AddArg(baseTy).AddArg(e.Member.Name).Emit()
	return typed{e, tc.types().Error()}
}

func (tc *typeChecker) VisitSubscript(e *ast.SubscriptExpr) any {
	arrTy := rvalue(tc.checkInPlace(&e.Array))
	idxTy := rvalue(tc.checkInPlace(&e.Index))
	tyCtx := tc.types()

	if arrTy.Kind() != types.KindArray {
		tc.a.diags.Report(diag.Error, e.Array.Range(), "cannot subscript non-array type %0").AddArg(arrTy).Emit()
		return typed{e, tyCtx.Error()}
	}
	if !types.Unify(idxTy, tyCtx.Primitive(types.Int)) {
		tc.a.diags.Report(diag.Error, e.Index.Range(), "array index must be int, got %0").AddArg(idxTy).Emit()
		return typed{e, tyCtx.Error()}
	}
	return typed{e, tyCtx.LValue(arrTy.Elem())}
}

func (tc *typeChecker) VisitCall(e *ast.CallExpr) any {
	calleeTy := rvalue(tc.checkInPlace(&e.Callee))
	argTys := make([]*types.Type, len(e.Args))
	for i := range e.Args {
		argTys[i] = rvalue(tc.checkInPlace(&e.Args[i]))
	}
	tyCtx := tc.types()

	resolved := calleeTy
	if resolved.Kind() != types.KindFunction {
		tc.a.diags.Report(diag.Error, e.Range(), "cannot call a value of type %0").AddArg(calleeTy).Emit()
		return typed{e, tyCtx.Error()}
	}
	params := resolved.Params()
	if len(params) != len(argTys) {
		tc.a.diags.Report(diag.Error, e.Range(), "expected %0 argument(s), got %1").
			AddArg(len(params)).AddArg(len(argTys)).Emit()
		return typed{e, tyCtx.Error()}
	}
	for i, p := range params {
		if !types.Unify(p, argTys[i]) {
			tc.a.diags.Report(diag.Error, e.Args[i].Range(), "argument %0 has type %1, expected %2").
				AddArg(i + 1).AddArg(argTys[i]).AddArg(p).Emit()
		}
	}
	return typed{e, resolved.Result()}
}

func (tc *typeChecker) VisitError(e *ast.ErrorExpr) any {
	return typed{e, tc.types().Error()}
}

// declType computes the type a DeclRefExpr/UnresolvedDeclRefExpr resolves
// to: a mutable var or param yields an lvalue of its declared type (so
// assignment and subscript-write sites can recognize it), an immutable one
// yields its declared type directly, and a function yields its signature.
func declType(tyCtx *types.Context, d ast.Decl) *types.Type {
	switch decl := d.(type) {
	case *ast.VarDecl:
		if decl.Mutable {
			return tyCtx.LValue(decl.Type)
		}
		return decl.Type
	case *ast.ParamDecl:
		if decl.Mutable {
			return tyCtx.LValue(decl.Type)
		}
		return decl.Type
	case *ast.FuncDecl:
		return decl.FnType
	case *ast.BuiltinFuncDecl:
		return decl.FnType
	default:
		ast.Unreachable("sema: declType given unexpected decl kind %T", d)
		return tyCtx.Error()
	}
}

func opSymbol(op ast.OpKind) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpPow:
		return "**"
	case ast.OpLess:
		return "<"
	case ast.OpLessEq:
		return "<="
	case ast.OpGreater:
		return ">"
	case ast.OpGreaterEq:
		return ">="
	case ast.OpEq:
		return "=="
	case ast.OpNotEq:
		return "!="
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	case ast.OpAssign:
		return "="
	case ast.OpNot:
		return "!"
	case ast.OpNeg:
		return "-"
	case ast.OpPos:
		return "+"
	default:
		return "?"
	}
}
