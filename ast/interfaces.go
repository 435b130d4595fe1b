// interfaces.go contains the visitor interfaces every Expression and Stmt
// node dispatches through (sema, codegen, and any future AST-printer all
// implement one of these), following the same double-dispatch shape as the
// teacher's original AST package.

package ast

import (
	"fox/source"
	"fox/types"
)

// ExpressionVisitor is implemented by anything that operates on expression
// nodes: the semantic analyser (typing), the bytecode generator (lowering).
type ExpressionVisitor interface {
	VisitIntLiteral(e *IntLiteralExpr) any
	VisitDoubleLiteral(e *DoubleLiteralExpr) any
	VisitBoolLiteral(e *BoolLiteralExpr) any
	VisitCharLiteral(e *CharLiteralExpr) any
	VisitStringLiteral(e *StringLiteralExpr) any
	VisitArrayLiteral(e *ArrayLiteralExpr) any
	VisitBinary(e *BinaryExpr) any
	VisitUnary(e *UnaryExpr) any
	VisitCast(e *CastExpr) any
	VisitDeclRef(e *DeclRefExpr) any
	VisitUnresolvedDeclRef(e *UnresolvedDeclRefExpr) any
	VisitMemberOf(e *MemberOfExpr) any
	VisitSubscript(e *SubscriptExpr) any
	VisitCall(e *CallExpr) any
	VisitError(e *ErrorExpr) any
}

// StmtVisitor is implemented by anything that operates on statement nodes.
type StmtVisitor interface {
	VisitCompound(s *CompoundStmt) any
	VisitCondition(s *ConditionStmt) any
	VisitWhile(s *WhileStmt) any
	VisitReturn(s *ReturnStmt) any
	VisitNull(s *NullStmt) any
}

// Expression is the base interface for every expression node. Every
// expression carries a computed type slot, initially nil until sema fills
// it in (spec.md §3.4).
type Expression interface {
	Accept(v ExpressionVisitor) any
	Range() source.Range
	Type() *types.Type
	SetType(*types.Type)
}

// Stmt is the base interface for every statement node. CompoundStmt also
// doubles as a declaration-context item list (spec.md §3.4).
type Stmt interface {
	Accept(v StmtVisitor) any
	Range() source.Range
}
