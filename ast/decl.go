package ast

import (
	"fox/source"
	"fox/types"
)

// CheckState tracks a decl's progress through semantic analysis
// (spec.md §3.3: Unchecked → Checking → Checked).
type CheckState int

const (
	Unchecked CheckState = iota
	Checking
	Checked
)

// DeclKind distinguishes the concrete decl node types.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclParam
	DeclFunc
	DeclBuiltinFunc
	DeclUnit
)

// Decl is the common interface every declaration node implements.
type Decl interface {
	Kind() DeclKind
	Ident() *Identifier
	Range() source.Range
	CheckState() CheckState
	SetCheckState(CheckState)
	// Illegal reports whether this decl was flagged as an illegal
	// redeclaration; such decls are retained in the AST but excluded from
	// lookup (spec.md §3.3).
	Illegal() bool
	SetIllegal(bool)
}

type declBase struct {
	ident   *Identifier
	rng     source.Range
	state   CheckState
	illegal bool
}

func (d *declBase) Ident() *Identifier         { return d.ident }
func (d *declBase) Range() source.Range        { return d.rng }
func (d *declBase) CheckState() CheckState     { return d.state }
func (d *declBase) SetCheckState(s CheckState) { d.state = s }
func (d *declBase) Illegal() bool              { return d.illegal }
func (d *declBase) SetIllegal(v bool)          { d.illegal = v }

// ValueDecl is the abstract base of VarDecl and ParamDecl: an identifier, a
// type annotation, and a mutability flag (spec.md §3.3).
type ValueDecl struct {
	declBase
	Type    *types.Type
	Mutable bool // true for "var"/ParamDecl-mut, false for "let"
}

// VarDecl is a let/var declaration, local or global, with an optional
// initializer.
type VarDecl struct {
	ValueDecl
	Initializer Expression // nil if uninitialized
	IsGlobal    bool
}

func NewVarDecl(ident *Identifier, rng source.Range, mutable, isGlobal bool) *VarDecl {
	return &VarDecl{
		ValueDecl: ValueDecl{declBase: declBase{ident: ident, rng: rng}, Mutable: mutable},
		IsGlobal:  isGlobal,
	}
}

func (d *VarDecl) Kind() DeclKind { return DeclVar }

// ParamDecl is a function parameter; parameters are implicitly mutable iff
// declared with the "mut" keyword (spec.md's func_decl grammar).
type ParamDecl struct {
	ValueDecl
	Index int // ordinal position in the parameter list
}

func NewParamDecl(ident *Identifier, rng source.Range, mutable bool, index int) *ParamDecl {
	return &ParamDecl{
		ValueDecl: ValueDecl{declBase: declBase{ident: ident, rng: rng}, Mutable: mutable},
		Index:     index,
	}
}

func (d *ParamDecl) Kind() DeclKind { return DeclParam }

// FuncDecl is a function declaration: parameters, declared return type
// (defaults to void), and a compound-statement body. It implements
// declaration-context (spec.md §3.3).
type FuncDecl struct {
	declBase
	Params     []*ParamDecl
	ReturnType *types.Type
	Body       *CompoundStmt
	FnType     *types.Type // the interned (T...) -> R function type
	Context    *DeclContext
	IsEntry    bool
}

func NewFuncDecl(ident *Identifier, rng source.Range) *FuncDecl {
	return &FuncDecl{declBase: declBase{ident: ident, rng: rng}}
}

func (d *FuncDecl) Kind() DeclKind { return DeclFunc }

// BuiltinFuncDecl is an implicitly-declared runtime intrinsic (e.g.
// printInt), identified by name rather than a parsed body.
type BuiltinFuncDecl struct {
	declBase
	FnType *types.Type
}

func NewBuiltinFuncDecl(ident *Identifier, fnType *types.Type) *BuiltinFuncDecl {
	d := &BuiltinFuncDecl{declBase: declBase{ident: ident}, FnType: fnType}
	d.state = Checked
	return d
}

func (d *BuiltinFuncDecl) Kind() DeclKind { return DeclBuiltinFunc }

// UnitDecl is the top-level declaration context of one file.
type UnitDecl struct {
	declBase
	Context *DeclContext
	Decls   []Decl // top-level var/func decls, in source order
}

func NewUnitDecl(ident *Identifier) *UnitDecl {
	u := &UnitDecl{declBase: declBase{ident: ident}}
	u.Context = NewDeclContext(KindUnitContext, nil)
	return u
}

func (d *UnitDecl) Kind() DeclKind { return DeclUnit }
