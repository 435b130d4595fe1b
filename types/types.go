// Package types implements Fox's sealed, interned type lattice (spec.md
// §3.2) and the unification and arithmetic-rank rules used by sema and
// codegen.
package types

import "fmt"

// Kind distinguishes the six members of the sealed type lattice.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindLValue
	KindFunction
	KindCell
	KindError
)

// Primitive enumerates Fox's six built-in scalar kinds.
type Primitive int

const (
	Int Primitive = iota
	Double
	Bool
	Char
	String
	Void
)

func (p Primitive) String() string {
	switch p {
	case Int:
		return "int"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case String:
		return "string"
	case Void:
		return "void"
	default:
		return "<unknown primitive>"
	}
}

// Type is a single interned member of the lattice. Its zero value is never
// valid; every Type in circulation is produced by a Context's interning
// constructors, so two Types describing the same structure are always the
// same pointer (spec.md §3.2's "sealed, interned" invariant).
type Type struct {
	kind Kind

	primitive Primitive     // KindPrimitive
	elem      *Type         // KindArray, KindLValue
	params    []*Type       // KindFunction
	result    *Type         // KindFunction
	cell      *cellState    // KindCell
}

type cellState struct {
	bound *Type // nil until unify binds it
}

func (t *Type) Kind() Kind { return t.kind }

// Context interns every Type produced during one compilation unit's lifetime
// (spec.md §5: the AST context owns it). It is not safe for concurrent use.
type Context struct {
	primitives [6]*Type
	arrays     map[*Type]*Type
	lvalues    map[*Type]*Type
	functions  []*Type // linear scan; function arities are small in practice
	errorTy    *Type
	cells      []*Type
}

func NewContext() *Context {
	c := &Context{
		arrays:  make(map[*Type]*Type),
		lvalues: make(map[*Type]*Type),
	}
	for p := Int; p <= Void; p++ {
		c.primitives[p] = &Type{kind: KindPrimitive, primitive: p}
	}
	c.errorTy = &Type{kind: KindError}
	return c
}

// Primitive returns the single interned Type for a primitive kind.
func (c *Context) Primitive(p Primitive) *Type { return c.primitives[p] }

// Error returns the singleton error type (spec.md §3.2): it propagates
// inference failure silently, so every operation involving it re-produces
// Error rather than diagnosing again.
func (c *Context) Error() *Type { return c.errorTy }

// Array returns the interned array-of-elem type.
func (c *Context) Array(elem *Type) *Type {
	if existing, ok := c.arrays[elem]; ok {
		return existing
	}
	t := &Type{kind: KindArray, elem: elem}
	c.arrays[elem] = t
	return t
}

// LValue returns the interned lvalue-of-pointee type. Per spec.md §3.2,
// lvalues are never nested in arrays or functions; callers are expected not
// to feed an LValue as elem/params/result elsewhere.
func (c *Context) LValue(pointee *Type) *Type {
	if existing, ok := c.lvalues[pointee]; ok {
		return existing
	}
	t := &Type{kind: KindLValue, elem: pointee}
	c.lvalues[pointee] = t
	return t
}

// Function returns the interned (params...) -> result type.
func (c *Context) Function(params []*Type, result *Type) *Type {
	for _, existing := range c.functions {
		if functionEquals(existing, params, result) {
			return existing
		}
	}
	t := &Type{kind: KindFunction, params: append([]*Type(nil), params...), result: result}
	c.functions = append(c.functions, t)
	return t
}

func functionEquals(t *Type, params []*Type, result *Type) bool {
	if t.result != result || len(t.params) != len(params) {
		return false
	}
	for i, p := range params {
		if t.params[i] != p {
			return false
		}
	}
	return true
}

// Cell allocates a fresh, unbound inference variable. Cells are uniqued by
// identity, not structure: two Cell calls never return the same Type.
func (c *Context) Cell() *Type {
	t := &Type{kind: KindCell, cell: &cellState{}}
	c.cells = append(c.cells, t)
	return t
}

// Elem returns the element/pointee type of an Array or LValue.
func (t *Type) Elem() *Type {
	if t.kind != KindArray && t.kind != KindLValue {
		panic(fmt.Sprintf("Elem called on non-array/lvalue type %v", t.kind))
	}
	return t.elem
}

// Params returns the parameter types of a Function.
func (t *Type) Params() []*Type {
	if t.kind != KindFunction {
		panic("Params called on non-function type")
	}
	return t.params
}

// Result returns the return type of a Function.
func (t *Type) Result() *Type {
	if t.kind != KindFunction {
		panic("Result called on non-function type")
	}
	return t.result
}

// PrimitiveKind returns the Primitive kind of a Primitive-kinded type.
func (t *Type) PrimitiveKind() Primitive {
	if t.kind != KindPrimitive {
		panic("PrimitiveKind called on non-primitive type")
	}
	return t.primitive
}

// resolve follows a chain of bound cells down to either a bound concrete
// type or a still-free cell.
func resolve(t *Type) *Type {
	for t.kind == KindCell && t.cell.bound != nil {
		t = t.cell.bound
	}
	return t
}

// IsArithmetic reports whether t (after resolving cells) is one of the
// arithmetic types {int, bool, double}.
func IsArithmetic(t *Type) bool {
	r := resolve(t)
	if r.kind != KindPrimitive {
		return false
	}
	switch r.primitive {
	case Int, Bool, Double:
		return true
	default:
		return false
	}
}

// IsConcatenable reports whether t (after resolving cells) is one of the
// concat-compatible types {string, char}.
func IsConcatenable(t *Type) bool {
	r := resolve(t)
	if r.kind != KindPrimitive {
		return false
	}
	return r.primitive == String || r.primitive == Char
}

// IsInt reports whether t (after resolving cells) is the int primitive.
// Unlike IsArithmetic, this does not admit bool or double — spec.md §4.2
// restricts '%' to int only.
func IsInt(t *Type) bool {
	r := resolve(t)
	return r.kind == KindPrimitive && r.primitive == Int
}

// rank orders the three arithmetic primitives per spec.md §3.2: bool=1,
// int=2, double=3. Non-arithmetic types rank 0 and never win highestRank.
func rank(t *Type) int {
	r := resolve(t)
	if r.kind != KindPrimitive {
		return 0
	}
	switch r.primitive {
	case Bool:
		return 1
	case Int:
		return 2
	case Double:
		return 3
	default:
		return 0
	}
}

// HighestRank returns the wider of two arithmetic types using the ordering
// bool < int < double (spec.md §3.2). Callers must already know both sides
// are arithmetic; HighestRank does not itself check IsArithmetic.
func HighestRank(a, b *Type) *Type {
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// Unify makes a and b equal by binding free cells, recursively under Array
// and Function (spec.md §3.2's "unify" rule). It is commutative. A cell
// already bound to a non-cell type is never rebound — Fox's cells cannot
// self-reference, so no occur-check is required. Unification of two
// non-cell types requires structural equality of kind and arguments;
// anything else returns false without diagnosing (callers diagnose).
func Unify(a, b *Type) bool {
	ra, rb := resolve(a), resolve(b)

	if ra == rb {
		return true
	}
	if ra.kind == KindError || rb.kind == KindError {
		return true
	}
	if ra.kind == KindCell {
		ra.cell.bound = rb
		return true
	}
	if rb.kind == KindCell {
		rb.cell.bound = ra
		return true
	}
	if ra.kind != rb.kind {
		return false
	}

	switch ra.kind {
	case KindPrimitive:
		return ra.primitive == rb.primitive
	case KindArray:
		return Unify(ra.elem, rb.elem)
	case KindLValue:
		return Unify(ra.elem, rb.elem)
	case KindFunction:
		if len(ra.params) != len(rb.params) {
			return false
		}
		for i := range ra.params {
			if !Unify(ra.params[i], rb.params[i]) {
				return false
			}
		}
		return Unify(ra.result, rb.result)
	default:
		return false
	}
}

// Resolve is the exported form of resolve, for callers (sema, codegen) that
// need the concrete type backing a cell after unification has run.
func Resolve(t *Type) *Type { return resolve(t) }

func (t *Type) String() string {
	switch t.kind {
	case KindPrimitive:
		return t.primitive.String()
	case KindArray:
		return t.elem.String() + "[]"
	case KindLValue:
		return "lvalue<" + t.elem.String() + ">"
	case KindFunction:
		s := "("
		for i, p := range t.params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ") -> " + t.result.String()
	case KindCell:
		if t.cell.bound != nil {
			return t.cell.bound.String()
		}
		return "<cell>"
	case KindError:
		return "<error>"
	default:
		return "<unknown type>"
	}
}
