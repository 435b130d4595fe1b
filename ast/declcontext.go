package ast

import "fox/source"

// DeclContextKind distinguishes the two kinds of scope Fox opens: the
// single per-file unit scope (forward references allowed, location
// ignored) and per-function local scopes (location-sensitive lookup),
// mirroring original_source's DeclContextKind (Pierre-vh/Moonshot's
// DeclContext.hpp).
type DeclContextKind int

const (
	KindUnitContext DeclContextKind = iota
	KindFuncContext
)

// declEntry pairs a decl with the source range of the enclosing
// compound-statement scope it was declared in, so location-sensitive lookup
// in local contexts can filter by scope containment (spec.md §3.5).
type declEntry struct {
	decl      Decl
	scopeRng  source.Range
}

// DeclContext is a scope in the declaration tree: a parent pointer, a list
// of contained decls in lexical order, and a lookup multimap from
// identifier to every decl declared under that name (spec.md §3.5).
type DeclContext struct {
	Kind   DeclContextKind
	Parent *DeclContext

	decls  []Decl
	lookup map[*Identifier][]declEntry
}

func NewDeclContext(kind DeclContextKind, parent *DeclContext) *DeclContext {
	return &DeclContext{Kind: kind, Parent: parent, lookup: make(map[*Identifier][]declEntry)}
}

// IsLocal reports whether this is a function-body scope rather than the
// unit scope.
func (dc *DeclContext) IsLocal() bool { return dc.Kind == KindFuncContext }

// AddDecl registers d under its identifier, scoped to scopeRng (ignored for
// unit contexts, where lookup never filters by location).
func (dc *DeclContext) AddDecl(d Decl, scopeRng source.Range) {
	dc.decls = append(dc.decls, d)
	id := d.Ident()
	dc.lookup[id] = append(dc.lookup[id], declEntry{decl: d, scopeRng: scopeRng})
}

// Decls returns every decl added to this context, in lexical order.
func (dc *DeclContext) Decls() []Decl { return dc.decls }

// LookupLocal returns every non-illegal decl bound to id directly in this
// context, filtered by scope containment when the context is local.
// at is a source offset; unit contexts ignore it entirely.
func (dc *DeclContext) LookupLocal(id *Identifier, at source.Loc) []Decl {
	var out []Decl
	for _, e := range dc.lookup[id] {
		if e.decl.Illegal() {
			continue
		}
		if dc.IsLocal() && !scopeContains(e.scopeRng, at) {
			continue
		}
		out = append(out, e.decl)
	}
	return out
}

// scopeContains reports whether at falls within [rng.Begin, rng.End], i.e.
// the decl's begin-location precedes at and its enclosing compound hasn't
// yet closed.
func scopeContains(rng source.Range, at source.Loc) bool {
	if rng.Begin.File != at.File {
		return false
	}
	return rng.Begin.Offset <= at.Offset && at.Offset <= rng.End.Offset
}

// Lookup walks from this context outward through parents until a match is
// found or the root is reached (spec.md §4.2's unqualified lookup), calling
// onFound with every decl bound to id at the first context with a match.
func (dc *DeclContext) Lookup(id *Identifier, at source.Loc, onFound func(*DeclContext, []Decl)) {
	for ctx := dc; ctx != nil; ctx = ctx.Parent {
		if found := ctx.LookupLocal(id, at); len(found) > 0 {
			onFound(ctx, found)
			return
		}
	}
}

// AllRaw returns every decl ever bound to id in this context, including
// illegal redeclarations — used by the illegal-redeclaration diagnostic to
// find "first declared here".
func (dc *DeclContext) AllRaw(id *Identifier) []Decl {
	var out []Decl
	for _, e := range dc.lookup[id] {
		out = append(out, e.decl)
	}
	return out
}
