// expressions.go contains every expression AST node (spec.md §3.4). An
// expression always carries a computed type slot, filled in by sema.

package ast

import (
	"fox/source"
	"fox/types"
)

type exprBase struct {
	rng source.Range
	ty  *types.Type
}

func (e *exprBase) Range() source.Range  { return e.rng }
func (e *exprBase) Type() *types.Type    { return e.ty }
func (e *exprBase) SetType(t *types.Type) { e.ty = t }

// OpKind enumerates the binary/unary operator spellings Fox recognizes
// (spec.md §3.4).
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEq
	OpNotEq
	OpAnd
	OpOr
	OpAssign
	// unary
	OpNot
	OpNeg
	OpPos
)

type IntLiteralExpr struct {
	exprBase
	Value int64
}

func NewIntLiteral(rng source.Range, v int64) *IntLiteralExpr {
	return &IntLiteralExpr{exprBase: exprBase{rng: rng}, Value: v}
}
func (e *IntLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitIntLiteral(e) }

type DoubleLiteralExpr struct {
	exprBase
	Value float64
}

func NewDoubleLiteral(rng source.Range, v float64) *DoubleLiteralExpr {
	return &DoubleLiteralExpr{exprBase: exprBase{rng: rng}, Value: v}
}
func (e *DoubleLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitDoubleLiteral(e) }

type BoolLiteralExpr struct {
	exprBase
	Value bool
}

func NewBoolLiteral(rng source.Range, v bool) *BoolLiteralExpr {
	return &BoolLiteralExpr{exprBase: exprBase{rng: rng}, Value: v}
}
func (e *BoolLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitBoolLiteral(e) }

// CharLiteralExpr holds exactly one code point, after parser-side escape
// normalization and the single-code-point check (spec.md §4.1).
type CharLiteralExpr struct {
	exprBase
	Value rune
}

func NewCharLiteral(rng source.Range, v rune) *CharLiteralExpr {
	return &CharLiteralExpr{exprBase: exprBase{rng: rng}, Value: v}
}
func (e *CharLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitCharLiteral(e) }

type StringLiteralExpr struct {
	exprBase
	Value string
}

func NewStringLiteral(rng source.Range, v string) *StringLiteralExpr {
	return &StringLiteralExpr{exprBase: exprBase{rng: rng}, Value: v}
}
func (e *StringLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitStringLiteral(e) }

// ArrayLiteralExpr is an ordered list of subexpressions; an empty literal
// elaborates to Array(cell) until unified with a use site (spec.md §4.2).
type ArrayLiteralExpr struct {
	exprBase
	Elements []Expression
}

func NewArrayLiteral(rng source.Range, elems []Expression) *ArrayLiteralExpr {
	return &ArrayLiteralExpr{exprBase: exprBase{rng: rng}, Elements: elems}
}
func (e *ArrayLiteralExpr) Accept(v ExpressionVisitor) any { return v.VisitArrayLiteral(e) }

// BinaryExpr is a binary operator application. OpRange is the source range
// of just the operator token, used for diagnostics anchored at the operator
// rather than the whole expression.
type BinaryExpr struct {
	exprBase
	Op      OpKind
	OpRange source.Range
	Left    Expression
	Right   Expression
}

func NewBinary(rng source.Range, op OpKind, opRng source.Range, left, right Expression) *BinaryExpr {
	return &BinaryExpr{exprBase: exprBase{rng: rng}, Op: op, OpRange: opRng, Left: left, Right: right}
}
func (e *BinaryExpr) Accept(v ExpressionVisitor) any { return v.VisitBinary(e) }

type UnaryExpr struct {
	exprBase
	Op      OpKind
	OpRange source.Range
	Operand Expression
}

func NewUnary(rng source.Range, op OpKind, opRng source.Range, operand Expression) *UnaryExpr {
	return &UnaryExpr{exprBase: exprBase{rng: rng}, Op: op, OpRange: opRng, Operand: operand}
}
func (e *UnaryExpr) Accept(v ExpressionVisitor) any { return v.VisitUnary(e) }

// CastExpr is `expr as T`; only permitted between arithmetic types, between
// string and char, and same-to-same (spec.md §4.2).
type CastExpr struct {
	exprBase
	Target *types.Type
	Inner  Expression
}

func NewCast(rng source.Range, target *types.Type, inner Expression) *CastExpr {
	return &CastExpr{exprBase: exprBase{rng: rng}, Target: target, Inner: inner}
}
func (e *CastExpr) Accept(v ExpressionVisitor) any { return v.VisitCast(e) }

// DeclRefExpr is a reference resolved by name binding to the decl it names.
type DeclRefExpr struct {
	exprBase
	Decl Decl
}

func NewDeclRef(rng source.Range, decl Decl) *DeclRefExpr {
	return &DeclRefExpr{exprBase: exprBase{rng: rng}, Decl: decl}
}
func (e *DeclRefExpr) Accept(v ExpressionVisitor) any { return v.VisitDeclRef(e) }

// UnresolvedDeclRefExpr is a bare identifier reference before name binding
// runs; sema replaces it in place with a DeclRefExpr or an ErrorExpr.
type UnresolvedDeclRefExpr struct {
	exprBase
	Name *Identifier
}

func NewUnresolvedDeclRef(rng source.Range, name *Identifier) *UnresolvedDeclRefExpr {
	return &UnresolvedDeclRefExpr{exprBase: exprBase{rng: rng}, Name: name}
}
func (e *UnresolvedDeclRefExpr) Accept(v ExpressionVisitor) any { return v.VisitUnresolvedDeclRef(e) }

// MemberOfExpr is `expr.id`; only valid where id names a statically-known
// method of a primitive or array type (spec.md §4.2, e.g. array length).
type MemberOfExpr struct {
	exprBase
	Base   Expression
	Member *Identifier
}

func NewMemberOf(rng source.Range, base Expression, member *Identifier) *MemberOfExpr {
	return &MemberOfExpr{exprBase: exprBase{rng: rng}, Base: base, Member: member}
}
func (e *MemberOfExpr) Accept(v ExpressionVisitor) any { return v.VisitMemberOf(e) }

// SubscriptExpr is `a[i]`; result is an lvalue of the array's element type.
type SubscriptExpr struct {
	exprBase
	Array Expression
	Index Expression
}

func NewSubscript(rng source.Range, array, index Expression) *SubscriptExpr {
	return &SubscriptExpr{exprBase: exprBase{rng: rng}, Array: array, Index: index}
}
func (e *SubscriptExpr) Accept(v ExpressionVisitor) any { return v.VisitSubscript(e) }

// CallExpr is `callee(args...)`.
type CallExpr struct {
	exprBase
	Callee Expression
	Args   []Expression
}

func NewCall(rng source.Range, callee Expression, args []Expression) *CallExpr {
	return &CallExpr{exprBase: exprBase{rng: rng}, Callee: callee, Args: args}
}
func (e *CallExpr) Accept(v ExpressionVisitor) any { return v.VisitCall(e) }

// ErrorExpr replaces an expression that failed to parse or type-check past
// recovery; its presence never causes a cascading diagnostic.
type ErrorExpr struct {
	exprBase
}

func NewErrorExpr(rng source.Range) *ErrorExpr {
	return &ErrorExpr{exprBase: exprBase{rng: rng}}
}
func (e *ErrorExpr) Accept(v ExpressionVisitor) any { return v.VisitError(e) }
