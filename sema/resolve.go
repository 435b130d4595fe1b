package sema

import (
	"fox/ast"
	"fox/diag"
)

// checkRedeclarations marks every decl added to ctx after the first legal
// one under a given name as illegal (spec.md §4.2): a var-or-param
// redeclared by a var-or-param is illegal, a func redeclared by a func is
// illegal (Fox has no overloading), and any collision across those two
// kinds is illegal too. Builtins are treated as declared before anything in
// the unit regardless of AddDecl order, so a user decl can never legally
// shadow one. A local var shadowing an outer param or var never reaches
// this check at all: the parser gives every function's parameter list and
// body their own DeclContext, and stmtChecker.VisitCompound gives every
// nested block one, so shadowing decls live in different contexts and this
// per-context dedup never sees them together.
func (a *Analyzer) checkRedeclarations(ctx *ast.DeclContext) {
	seen := make(map[*ast.Identifier]ast.Decl)
	for _, d := range ctx.Decls() {
		if d.Kind() == ast.DeclBuiltinFunc {
			seen[d.Ident()] = d
		}
	}
	for _, d := range ctx.Decls() {
		if d.Kind() == ast.DeclBuiltinFunc {
			continue
		}
		id := d.Ident()
		prev, collides := seen[id]
		if !collides {
			seen[id] = d
			continue
		}
		d.SetIllegal(true)
		a.diagnoseRedecl(d, prev)
	}
}

func (a *Analyzer) diagnoseRedecl(d, prev ast.Decl) {
	msg := "invalid redeclaration of '%0'"
	switch {
	case d.Kind() == ast.DeclParam:
		msg = "invalid redeclaration of parameter '%0'"
	case d.Kind() == ast.DeclVar:
		msg = "invalid redeclaration of variable '%0'"
	case d.Kind() == ast.DeclFunc && prev.Kind() == ast.DeclFunc:
		msg = "invalid redeclaration of function '%0': Fox does not support overloading"
	}
	a.diags.Report(diag.Error, d.Range(), msg).AddArg(d.Ident().Name).Emit()
	a.diags.Report(diag.Note, prev.Range(), "'%0' first declared here").AddArg(d.Ident().Name).Emit()
}
