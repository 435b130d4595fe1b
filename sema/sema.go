// Package sema implements Fox's semantic analyser (spec.md §4.2): builtin
// registration, scope-tree wiring, illegal-redeclaration rules,
// unification-based expression typing, return-on-all-paths flow analysis,
// and entry-point election. It consumes the ast package's parser output and
// reports through a diag.Engine; it never touches tokens or source text
// directly.
package sema

import (
	"fox/ast"
	"fox/diag"
	"fox/types"
)

// Analyzer drives every semantic pass over one parsed unit. It holds no
// per-unit state of its own (that all lives on the AST nodes themselves),
// so a single Analyzer can be reused across units.
type Analyzer struct {
	astCtx *ast.Context
	diags  *diag.Engine
}

func NewAnalyzer(astCtx *ast.Context, diags *diag.Engine) *Analyzer {
	return &Analyzer{astCtx: astCtx, diags: diags}
}

// AnalyzeUnit runs every pass over unit in order and returns the elected
// entry point, or nil if none was found. Passes run in an order later
// passes depend on: builtins must exist before redeclaration checking, and
// every FuncDecl's FnType (computed by the parser, not here) must be in
// place before any body is walked, since a function may call one declared
// later in the same file.
func (a *Analyzer) AnalyzeUnit(unit *ast.UnitDecl) *ast.FuncDecl {
	seedBuiltins(a.astCtx, unit)
	a.checkRedeclarations(unit.Context)

	for _, d := range unit.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			fn.Context.Parent = unit.Context
		}
	}

	for _, d := range unit.Decls {
		switch decl := d.(type) {
		case *ast.VarDecl:
			a.checkGlobalVar(decl)
		case *ast.FuncDecl:
			a.checkFunc(decl)
		}
	}

	return a.electEntryPoint(unit)
}

// checkGlobalVar type-checks a top-level variable's initializer. Global
// initializers may not reference any other declaration (spec.md §4.2), so
// no scope is threaded through at all.
func (a *Analyzer) checkGlobalVar(decl *ast.VarDecl) {
	if decl.Illegal() {
		return
	}
	decl.SetCheckState(ast.Checking)
	if decl.Initializer != nil {
		tc := &typeChecker{a: a, noDeclRefs: true}
		ty := rvalue(tc.checkInPlace(&decl.Initializer))
		if !types.Unify(ty, decl.Type) {
			a.diags.Report(diag.Error, decl.Initializer.Range(),
				"cannot initialize variable of type %0 with expression of type %1").
				AddArg(decl.Type).AddArg(ty).Emit()
		}
	}
	decl.SetCheckState(ast.Checked)
}

// checkLocalVarDecl type-checks a local variable's initializer against ctx,
// the block it was declared in.
func (a *Analyzer) checkLocalVarDecl(decl *ast.VarDecl, ctx *ast.DeclContext) {
	if decl.Illegal() {
		return
	}
	decl.SetCheckState(ast.Checking)
	if decl.Initializer != nil {
		tc := &typeChecker{a: a, ctx: ctx}
		ty := rvalue(tc.checkInPlace(&decl.Initializer))
		if !types.Unify(ty, decl.Type) {
			a.diags.Report(diag.Error, decl.Initializer.Range(),
				"cannot initialize variable of type %0 with expression of type %1").
				AddArg(decl.Type).AddArg(ty).Emit()
		}
	}
	decl.SetCheckState(ast.Checked)
}

// checkFunc checks a function's parameter list for duplicate names, walks
// its body resolving names and typing every expression, and, for a
// non-void function, verifies every path returns.
func (a *Analyzer) checkFunc(decl *ast.FuncDecl) {
	if decl.Illegal() {
		return
	}
	decl.SetCheckState(ast.Checking)

	a.checkRedeclarations(decl.Context) // catches duplicate parameter names

	sc := &stmtChecker{a: a, ctx: decl.Body.Context, fn: decl}
	decl.Body.Accept(sc)

	retTy := types.Resolve(decl.ReturnType)
	isVoid := retTy.Kind() == types.KindPrimitive && retTy.PrimitiveKind() == types.Void
	returns := a.returnsOnAllPaths(decl.Body) // also warns on unreachable code
	if !isVoid && !returns {
		a.diags.Report(diag.Error, closingBraceRange(decl.Body),
			"missing return in a function declared to return %0").AddArg(decl.ReturnType).Emit()
	}

	decl.SetCheckState(ast.Checked)
}

// electEntryPoint picks the FuncDecl named "main" with no parameters as the
// program's entry point (spec.md §4.2). Its declared return type is not
// constrained here: both "func main() { ... }" and "func main(): int { ...
// }" are valid entry points (spec.md's scenario 2 and 3), so only the name
// and the empty parameter list are checked.
func (a *Analyzer) electEntryPoint(unit *ast.UnitDecl) *ast.FuncDecl {
	for _, d := range unit.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Illegal() || fn.Ident().Name != "main" {
			continue
		}
		if len(fn.Params) != 0 {
			a.diags.Report(diag.Error, fn.Range(), "entry point 'main' must take no parameters").Emit()
			continue
		}
		fn.IsEntry = true
		return fn
	}
	return nil
}
