package sema

import (
	"fox/ast"
	"fox/source"
	"fox/types"
)

// seedBuiltins registers the three implicit runtime intrinsics into unit's
// top-level scope before any redeclaration check or name resolution runs
// (spec.md's supplemented builtins table: printInt/printDouble/printString,
// each (T) -> void). They are added to the unit's DeclContext only, never to
// unit.Decls, since they have no parsed body for later passes to walk.
func seedBuiltins(astCtx *ast.Context, unit *ast.UnitDecl) {
	tyCtx := astCtx.Types
	voidTy := tyCtx.Primitive(types.Void)

	register := func(name string, param types.Primitive) {
		fnTy := tyCtx.Function([]*types.Type{tyCtx.Primitive(param)}, voidTy)
		decl := ast.NewBuiltinFuncDecl(astCtx.Intern(name), fnTy)
		unit.Context.AddDecl(decl, source.Range{})
	}

	register("printInt", types.Int)
	register("printDouble", types.Double)
	register("printString", types.String)
}
