// stmt.go walks statement trees, lazily creating the nested DeclContexts
// the parser doesn't: a function's own body already has one (wired to its
// param context), but every if/else/while compound underneath it gets a
// fresh one here, parented to whatever scope it's lexically inside
// (spec.md §4.2, §3.5).

package sema

import (
	"fox/ast"
	"fox/diag"
	"fox/source"
	"fox/types"
)

// stmtChecker implements ast.StmtVisitor. ctx is the active scope; fn is
// the enclosing function, carried along unchanged so VisitReturn can
// validate against its declared return type.
type stmtChecker struct {
	a   *Analyzer
	ctx *ast.DeclContext
	fn  *ast.FuncDecl
}

// VisitCompound registers every local var in this block into its
// DeclContext (creating one, parented to the enclosing scope, unless this
// is a function's own body and the parser already made one), runs
// redeclaration checking over just that block, and then visits each node.
//
// A local var's scope range starts at the end of its own declaration, not
// its beginning: "var x: int = x + 1;" must still see whatever x shadows
// while evaluating its own initializer (spec.md §4.2 scenario 6), and
// starting the window at the declaration's end is what makes that work.
func (sc *stmtChecker) VisitCompound(s *ast.CompoundStmt) any {
	ctx := s.Context
	if ctx == nil {
		ctx = ast.NewDeclContext(ast.KindFuncContext, sc.ctx)
		s.Context = ctx
	}

	for _, node := range s.Nodes {
		if vd, ok := node.Decl.(*ast.VarDecl); ok {
			scopeRng := source.Range{Begin: vd.Range().End, End: s.Range().End}
			ctx.AddDecl(vd, scopeRng)
		}
	}
	sc.a.checkRedeclarations(ctx)

	inner := &stmtChecker{a: sc.a, ctx: ctx, fn: sc.fn}
	for i := range s.Nodes {
		inner.visitNode(&s.Nodes[i])
	}
	return nil
}

func (sc *stmtChecker) visitNode(node *ast.Node) {
	switch {
	case node.Decl != nil:
		if vd, ok := node.Decl.(*ast.VarDecl); ok {
			sc.a.checkLocalVarDecl(vd, sc.ctx)
		}
	case node.Expr != nil:
		tc := &typeChecker{a: sc.a, ctx: sc.ctx}
		tc.checkInPlace(&node.Expr)
	case node.Stmt != nil:
		node.Stmt.Accept(sc)
	}
}

func (sc *stmtChecker) VisitCondition(s *ast.ConditionStmt) any {
	sc.checkBoolCondition(&s.Cond)
	s.Then.Accept(sc)
	if s.Else != nil {
		s.Else.Accept(sc)
	}
	return nil
}

func (sc *stmtChecker) VisitWhile(s *ast.WhileStmt) any {
	sc.checkBoolCondition(&s.Cond)
	s.Body.Accept(sc)
	return nil
}

func (sc *stmtChecker) checkBoolCondition(cond *ast.Expression) {
	tc := &typeChecker{a: sc.a, ctx: sc.ctx}
	ty := rvalue(tc.checkInPlace(cond))
	boolTy := sc.a.astCtx.Types.Primitive(types.Bool)
	if !types.Unify(ty, boolTy) {
		sc.a.diags.Report(diag.Error, (*cond).Range(), "condition must have type bool, got %0").AddArg(ty).Emit()
	}
}

func (sc *stmtChecker) VisitReturn(s *ast.ReturnStmt) any {
	retTy := sc.a.astCtx.Types.Primitive(types.Void)
	if s.Value != nil {
		tc := &typeChecker{a: sc.a, ctx: sc.ctx}
		retTy = rvalue(tc.checkInPlace(&s.Value))
	}
	declared := sc.fn.ReturnType
	if !types.Unify(retTy, declared) {
		sc.a.diags.Report(diag.Error, s.Range(), "cannot return a value of type %0 from a function declared to return %1").
			AddArg(retTy).AddArg(declared).Emit()
	}
	return nil
}

func (sc *stmtChecker) VisitNull(s *ast.NullStmt) any { return nil }
