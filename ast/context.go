// Package ast defines Fox's abstract syntax tree: identifiers, declarations,
// the declaration-context scope tree, statements, and expressions, plus the
// double-dispatch visitor pattern used to traverse them (spec.md §3.1-3.5).
package ast

import "fox/types"

// Context owns every AST node, interned identifier, and inferred type
// produced while compiling one unit (spec.md §5). Nodes are ordinary Go
// allocations tracked here only for interning and teardown; a real bump
// arena is not needed for a garbage-collected runtime, but the context
// still models the single-owner, LIFO-cleanup lifecycle the spec describes.
type Context struct {
	Types *types.Context

	idents map[string]*Identifier

	cleanups []func()
}

func NewContext() *Context {
	return &Context{
		Types:  types.NewContext(),
		idents: make(map[string]*Identifier),
	}
}

// Intern returns the single Identifier for name, creating it on first use.
func (c *Context) Intern(name string) *Identifier {
	if id, ok := c.idents[name]; ok {
		return id
	}
	id := &Identifier{Name: name}
	c.idents[name] = id
	return id
}

// AddCleanup registers a closure to run when Release is called. Cleanups
// run in LIFO order, mirroring the arena's scheduled-cleanup lifecycle
// (spec.md §5).
func (c *Context) AddCleanup(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// Release runs every registered cleanup in LIFO order. Callers must not use
// AST pointers obtained from this context afterward.
func (c *Context) Release() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}
