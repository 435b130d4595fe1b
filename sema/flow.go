// flow.go implements the "returns on all paths" analysis sema runs over
// every function's body (spec.md §4.2), plus the accompanying
// unreachable-code warning; only a non-void function is diagnosed for a
// missing return.

package sema

import (
	"fox/ast"
	"fox/diag"
	"fox/source"
)

// returnsOnAllPaths reports whether s is guaranteed to execute a return
// statement however control flows through it. A CompoundStmt returns iff
// some statement in it does (anything lexically after that point is
// unreachable and is warned about here); a ConditionStmt returns iff it has
// an else branch and both branches return; a WhileStmt never counts, since
// Fox has no static guarantee its condition is ever true.
func (a *Analyzer) returnsOnAllPaths(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		return true

	case *ast.CompoundStmt:
		returned := false
		for _, node := range st.Nodes {
			if returned {
				a.diags.Report(diag.Warning, nodeRange(node), "unreachable code").Emit()
				continue
			}
			if node.Stmt != nil && a.returnsOnAllPaths(node.Stmt) {
				returned = true
			}
		}
		return returned

	case *ast.ConditionStmt:
		if st.Else == nil {
			return false
		}
		return a.returnsOnAllPaths(st.Then) && a.returnsOnAllPaths(st.Else)

	case *ast.WhileStmt:
		return false

	default:
		return false
	}
}

func nodeRange(n ast.Node) source.Range {
	switch {
	case n.Decl != nil:
		return n.Decl.Range()
	case n.Expr != nil:
		return n.Expr.Range()
	case n.Stmt != nil:
		return n.Stmt.Range()
	default:
		return source.Range{}
	}
}

// closingBraceRange anchors a diagnostic at a function body's closing '}',
// used for "missing return" since no single statement is at fault.
func closingBraceRange(body *ast.CompoundStmt) source.Range {
	end := body.Range().End
	return source.Range{Begin: end, End: end}
}
