// stmtgen.go implements StmtGen (spec.md §4.4): the ast.StmtVisitor half of
// funcGen. funcGen itself is declared here since it's the shared state both
// StmtGen and ExprGen (exprgen.go) close over — one Builder, one
// RegisterAllocator, and the map from local VarDecl/ParamDecl to the
// register holding it for the rest of its scope.
package codegen

import (
	"fox/ast"
	"fox/bytecode"
)

// funcGen lowers one function (or one global's initializer) body. It
// implements both ast.ExpressionVisitor (exprgen.go) and ast.StmtVisitor
// (this file): the two passes are mutually recursive, and a single struct
// avoids threading a duplicate set of shared fields between two receivers.
type funcGen struct {
	gen    *generator
	b      *bytecode.Builder
	ra     *RegisterAllocator
	locals map[ast.Decl]*RegisterValue
}

// genStmt lowers s. Every StmtVisitor method returns nil; statements never
// produce a value, so genStmt has no return either (unlike genExpr).
func (fg *funcGen) genStmt(s ast.Stmt) {
	s.Accept(fg)
}

// VisitCompound lowers children in order, allocating a fresh register for
// each local VarDecl node as it's reached and releasing every register
// acquired in this block (locals and temporaries alike) once the block
// ends, via Mark/ReleaseTo (spec.md §4.4's "the register persists for the
// scope's remainder"). If a child is a ReturnStmt, lowering stops:
// everything after it is dead, per sema's own unreachable-code check
// (sema/flow.go) having already validated that for us.
func (fg *funcGen) VisitCompound(s *ast.CompoundStmt) any {
	mark := fg.ra.Mark()
	for _, node := range s.Nodes {
		switch {
		case node.Decl != nil:
			if vd, ok := node.Decl.(*ast.VarDecl); ok {
				fg.genLocalVarDecl(vd)
			}
		case node.Expr != nil:
			fg.genDiscardedExpr(node.Expr)
		case node.Stmt != nil:
			fg.genStmt(node.Stmt)
			if _, isReturn := node.Stmt.(*ast.ReturnStmt); isReturn {
				fg.ra.ReleaseTo(mark)
				return nil
			}
		}
	}
	fg.ra.ReleaseTo(mark)
	return nil
}

// genLocalVarDecl allocates a persistent register for a local variable and
// lowers its initializer directly into it when the initializer's own
// result can be retargeted for free (the common case: a freshly-allocated
// register is already sitting right where the local needs it), falling
// back to a Copy only when the initializer evaluated into some other
// register (a Borrow of a different local, or a case the allocator
// couldn't retarget).
func (fg *funcGen) genLocalVarDecl(vd *ast.VarDecl) {
	if vd.Initializer == nil {
		fg.locals[vd] = fg.ra.Alloc()
		return
	}
	val := fg.genExpr(vd.Initializer)
	if !val.IsBorrowed() && val.Reg() == fg.ra.Depth()-1 {
		fg.locals[vd] = val
		return
	}
	dest := fg.ra.Alloc()
	fg.b.Create(bytecode.Copy, dest.Reg(), val.Reg())
	val.Release()
	fg.locals[vd] = dest
}

func (fg *funcGen) VisitCondition(s *ast.ConditionStmt) any {
	cond := fg.genExpr(s.Cond)
	jumpToElse := fg.b.Create(bytecode.JumpIfNot, cond.Reg(), 0)
	condReg := cond.Reg()
	cond.Release()

	thenStart := fg.b.Here()
	fg.genStmt(s.Then)
	thenEmittedNothing := fg.b.Here() == thenStart

	if s.Else == nil {
		fg.patchJump(jumpToElse, fg.b.Here())
		return nil
	}

	if thenEmittedNothing {
		// Peephole: the then-branch produced no instructions, so the
		// JumpIfNot already emitted has nothing left to jump over — patching
		// its offset to 0 would make its jump target and its fall-through
		// address the same instruction, so the else-branch would run
		// unconditionally regardless of cond. Drop it and emit the inverted
		// jump instead: skip the else-branch when cond is true, and fall
		// straight through into it (no jump needed) when cond is false.
		fg.b.PopInstr()
		jumpToEnd := fg.b.Create(bytecode.JumpIf, condReg, 0)
		elseStart := fg.b.Here()
		fg.genStmt(s.Else)
		if fg.b.Here() == elseStart {
			// The else-branch is empty too: nothing is left worth jumping
			// around at all.
			fg.b.TruncateInstrs(jumpToEnd)
			return nil
		}
		fg.patchJump(jumpToEnd, fg.b.Here())
		return nil
	}

	jumpToEnd := fg.b.Create(bytecode.Jump, 0)
	elseStart := fg.b.Here()
	fg.genStmt(s.Else)
	if fg.b.Here() == elseStart {
		// The else-branch emitted nothing: the unconditional jump exists only
		// to skip it, so it's now pointless — truncate it and let the
		// condition's false branch fall straight through. jumpToElse is
		// patched only now, after the truncation, so it targets the real
		// (post-truncation) position rather than the position that still
		// included the jump we're about to drop.
		fg.b.TruncateInstrs(jumpToEnd)
		fg.patchJump(jumpToElse, fg.b.Here())
		return nil
	}
	fg.patchJump(jumpToElse, elseStart)
	fg.patchJump(jumpToEnd, fg.b.Here())
	return nil
}

func (fg *funcGen) VisitWhile(s *ast.WhileStmt) any {
	top := fg.b.Here()
	cond := fg.genExpr(s.Cond)
	jumpToEnd := fg.b.Create(bytecode.JumpIfNot, cond.Reg(), 0)
	cond.Release()

	fg.genStmt(s.Body)
	backToTop := fg.b.Create(bytecode.Jump, 0)
	fg.patchJump(backToTop, top)
	fg.patchJump(jumpToEnd, fg.b.Here())
	return nil
}

func (fg *funcGen) VisitReturn(s *ast.ReturnStmt) any {
	if s.Value == nil {
		fg.b.Create(bytecode.RetVoid)
		return nil
	}
	val := fg.genExpr(s.Value)
	fg.b.Create(bytecode.Ret, val.Reg())
	val.Release()
	return nil
}

func (fg *funcGen) VisitNull(s *ast.NullStmt) any { return nil }
