// Package codegen lowers a semantically-checked Fox unit to a
// bytecode.BCModule (spec.md §4.4): StmtGen and ExprGen are mutually
// recursive AST visitors sharing one function's RegisterAllocator and
// Builder, orchestrated here by a two-pass module generator that mirrors
// sema's own "compute every FnType before walking any body" approach —
// every top-level function and global gets a table slot before any body is
// lowered, so forward references and mutual recursion need no special
// casing.
package codegen

import (
	"fox/ast"
	"fox/bytecode"
	"fox/types"
)

// Generate lowers unit (already run through sema.AnalyzeUnit) into a new
// BCModule. entry is the elected entry point returned by AnalyzeUnit, or
// nil if the unit has none; either way every function in the unit is still
// lowered; a nil entry just leaves BCModule.EntryPoint at NoEntryPoint.
func Generate(unit *ast.UnitDecl, entry *ast.FuncDecl) *bytecode.BCModule {
	g := &generator{
		module:     bytecode.NewModule(),
		funcIndex:  make(map[*ast.FuncDecl]uint16),
		globalSlot: make(map[*ast.VarDecl]uint16),
	}
	g.registerTopLevel(unit)
	g.generateGlobals(unit)
	g.generateFunctions(unit)
	if entry != nil {
		g.module.EntryPoint = int(g.funcIndex[entry])
	}
	return g.module
}

// generator owns the module being built and the two forward-reference
// tables populated before any body is lowered.
type generator struct {
	module     *bytecode.BCModule
	funcIndex  map[*ast.FuncDecl]uint16
	globalSlot map[*ast.VarDecl]uint16
}

// registerTopLevel reserves a module slot for every function and global,
// in source order, before generating any instruction — the codegen
// analogue of how a FuncDecl's FnType is fully computed at parse time
// (parser/parser.go's parseFuncDecl) so sema never needs a function to already be checked to
// call it.
func (g *generator) registerTopLevel(unit *ast.UnitDecl) {
	for _, d := range unit.Decls {
		switch decl := d.(type) {
		case *ast.VarDecl:
			placeholder := bytecode.NewFunction(globalInitName(decl), 0)
			g.globalSlot[decl] = g.module.AddGlobal(placeholder)
		case *ast.FuncDecl:
			placeholder := bytecode.NewFunction(decl.Ident().Name, len(decl.Params))
			g.funcIndex[decl] = g.module.AddFunction(placeholder)
		}
	}
}

func globalInitName(d *ast.VarDecl) string {
	return "$" + d.Ident().Name + "$init"
}

// endsInReturn reports whether fn's last emitted instruction is already a
// Ret or RetVoid, so generateFunction doesn't tack on a redundant trailing
// RetVoid for a function whose body's last statement was itself a return.
func endsInReturn(fn *bytecode.BCFunction) bool {
	if len(fn.Instructions) == 0 {
		return false
	}
	switch fn.Instructions[len(fn.Instructions)-1].Op() {
	case bytecode.Ret, bytecode.RetVoid:
		return true
	default:
		return false
	}
}

// generateGlobals lowers each global's initializer into its dedicated
// BCFunction (spec.md §4.4's "declaration lowering"): the initializer
// evaluates the expression and returns it, to be run by the driver, in
// declaration order, before the entry point.
func (g *generator) generateGlobals(unit *ast.UnitDecl) {
	for _, d := range unit.Decls {
		vd, ok := d.(*ast.VarDecl)
		if !ok {
			continue
		}
		fn := g.module.Globals[g.globalSlot[vd]]
		b := bytecode.NewBuilder(fn)
		ra := NewRegisterAllocator()
		fg := &funcGen{gen: g, b: b, ra: ra, locals: make(map[ast.Decl]*RegisterValue)}

		if vd.Initializer != nil {
			val := fg.genExpr(vd.Initializer)
			b.Create(bytecode.Ret, val.Reg())
			val.Release()
		} else {
			b.Create(bytecode.RetVoid)
		}
		fn.NumRegisters = ra.NumRegisters()
	}
}

// generateFunctions lowers every top-level function's body in turn.
func (g *generator) generateFunctions(unit *ast.UnitDecl) {
	for _, d := range unit.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		g.generateFunction(fd)
	}
}

func (g *generator) generateFunction(fd *ast.FuncDecl) {
	fn := g.module.Functions[g.funcIndex[fd]]
	b := bytecode.NewBuilder(fn)
	ra := NewRegisterAllocator()
	fg := &funcGen{gen: g, b: b, ra: ra, locals: make(map[ast.Decl]*RegisterValue)}

	for _, p := range fd.Params {
		fg.locals[p] = ra.Alloc()
	}

	fg.genStmt(fd.Body)

	// A void function whose body doesn't end in an explicit return (legal
	// per sema's flow analysis, which only requires returns-on-all-paths
	// for non-void functions) falls off the end; make that an explicit
	// RetVoid rather than relying on whatever happens to follow in the
	// instruction buffer.
	retTy := types.Resolve(fd.ReturnType)
	isVoid := retTy.Kind() == types.KindPrimitive && retTy.PrimitiveKind() == types.Void
	if isVoid && !endsInReturn(fn) {
		b.Create(bytecode.RetVoid)
	}

	fn.NumRegisters = ra.NumRegisters()
}

// rvalueType strips one layer of LValue the way sema's own unexported
// rvalue helper does (sema/typecheck.go) — codegen needs the same
// unwrapping to pick an opcode's operand type, but can't reach into
// sema's package-private helper, so it's re-derived here from the same
// exported types.Resolve primitive.
func rvalueType(t *types.Type) *types.Type {
	r := types.Resolve(t)
	if r.Kind() == types.KindLValue {
		return types.Resolve(r.Elem())
	}
	return r
}

// patchJump wraps Builder.PatchJump, panicking with the CodegenError it
// already returns on overflow — codegen has no intermediate boundary to
// recover to; the fatal error propagates to the CLI driver's recover
// (spec.md §7).
func (fg *funcGen) patchJump(jump, target bytecode.IteratorPos) {
	if err := fg.b.PatchJump(jump, target); err != nil {
		panic(err)
	}
}

// scalarKind resolves expr's static type down to its Primitive, unwrapping
// LValue the same way an rvalue use would. Panics via ast.Unreachable if
// expr's type isn't a primitive — sema guarantees arithmetic/comparison/
// concat operands always are, by the time codegen runs.
func scalarKind(expr ast.Expression) types.Primitive {
	t := rvalueType(expr.Type())
	if t.Kind() != types.KindPrimitive {
		ast.Unreachable("codegen: expected a primitive operand type, got kind %v", t.Kind())
	}
	return t.PrimitiveKind()
}
