package ast

import "encoding/json"

// jsonPrinter implements ExpressionVisitor/StmtVisitor, building a
// JSON-friendly map/slice representation of one unit's AST, the same shape
// the teacher's parser.astPrinter builds for its own tree-walk AST.
type jsonPrinter struct{}

func (p jsonPrinter) VisitIntLiteral(e *IntLiteralExpr) any {
	return map[string]any{"type": "IntLiteral", "value": e.Value}
}

func (p jsonPrinter) VisitDoubleLiteral(e *DoubleLiteralExpr) any {
	return map[string]any{"type": "DoubleLiteral", "value": e.Value}
}

func (p jsonPrinter) VisitBoolLiteral(e *BoolLiteralExpr) any {
	return map[string]any{"type": "BoolLiteral", "value": e.Value}
}

func (p jsonPrinter) VisitCharLiteral(e *CharLiteralExpr) any {
	return map[string]any{"type": "CharLiteral", "value": string(e.Value)}
}

func (p jsonPrinter) VisitStringLiteral(e *StringLiteralExpr) any {
	return map[string]any{"type": "StringLiteral", "value": e.Value}
}

func (p jsonPrinter) VisitArrayLiteral(e *ArrayLiteralExpr) any {
	elems := make([]any, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = el.Accept(p)
	}
	return map[string]any{"type": "ArrayLiteral", "elements": elems}
}

func (p jsonPrinter) VisitBinary(e *BinaryExpr) any {
	return map[string]any{
		"type":     "Binary",
		"operator": opSymbol(e.Op),
		"left":     e.Left.Accept(p),
		"right":    e.Right.Accept(p),
	}
}

func (p jsonPrinter) VisitUnary(e *UnaryExpr) any {
	return map[string]any{
		"type":     "Unary",
		"operator": opSymbol(e.Op),
		"operand":  e.Operand.Accept(p),
	}
}

func (p jsonPrinter) VisitCast(e *CastExpr) any {
	return map[string]any{
		"type":   "Cast",
		"target": e.Target.String(),
		"inner":  e.Inner.Accept(p),
	}
}

func (p jsonPrinter) VisitDeclRef(e *DeclRefExpr) any {
	return map[string]any{"type": "DeclRef", "name": e.Decl.Ident().String()}
}

func (p jsonPrinter) VisitUnresolvedDeclRef(e *UnresolvedDeclRefExpr) any {
	return map[string]any{"type": "UnresolvedDeclRef", "name": e.Name.String()}
}

func (p jsonPrinter) VisitMemberOf(e *MemberOfExpr) any {
	return map[string]any{
		"type":   "MemberOf",
		"base":   e.Base.Accept(p),
		"member": e.Member.String(),
	}
}

func (p jsonPrinter) VisitSubscript(e *SubscriptExpr) any {
	return map[string]any{
		"type":  "Subscript",
		"array": e.Array.Accept(p),
		"index": e.Index.Accept(p),
	}
}

func (p jsonPrinter) VisitCall(e *CallExpr) any {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Accept(p)
	}
	return map[string]any{"type": "Call", "callee": e.Callee.Accept(p), "args": args}
}

func (p jsonPrinter) VisitError(e *ErrorExpr) any {
	return map[string]any{"type": "Error"}
}

func (p jsonPrinter) VisitCompound(s *CompoundStmt) any {
	nodes := make([]any, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		switch {
		case n.Decl != nil:
			nodes = append(nodes, declToJSON(n.Decl, p))
		case n.Expr != nil:
			nodes = append(nodes, n.Expr.Accept(p))
		case n.Stmt != nil:
			nodes = append(nodes, n.Stmt.Accept(p))
		}
	}
	return map[string]any{"type": "Compound", "nodes": nodes}
}

func (p jsonPrinter) VisitCondition(s *ConditionStmt) any {
	m := map[string]any{"type": "Condition", "cond": s.Cond.Accept(p), "then": s.Then.Accept(p)}
	if s.Else != nil {
		m["else"] = s.Else.Accept(p)
	}
	return m
}

func (p jsonPrinter) VisitWhile(s *WhileStmt) any {
	return map[string]any{"type": "While", "cond": s.Cond.Accept(p), "body": s.Body.Accept(p)}
}

func (p jsonPrinter) VisitReturn(s *ReturnStmt) any {
	m := map[string]any{"type": "Return"}
	if s.Value != nil {
		m["value"] = s.Value.Accept(p)
	}
	return m
}

func (p jsonPrinter) VisitNull(s *NullStmt) any {
	return map[string]any{"type": "Null"}
}

// declToJSON renders a top-level or local Decl; Decl nodes have no Accept
// method of their own (only Expression/Stmt dispatch through a visitor), so
// this is a plain type switch over the closed set of concrete decl kinds.
func declToJSON(d Decl, p jsonPrinter) any {
	switch decl := d.(type) {
	case *VarDecl:
		m := map[string]any{
			"type":     "VarDecl",
			"name":     decl.Ident().String(),
			"declType": decl.Type.String(),
			"mutable":  decl.Mutable,
			"global":   decl.IsGlobal,
		}
		if decl.Initializer != nil {
			m["initializer"] = decl.Initializer.Accept(p)
		}
		return m
	case *ParamDecl:
		return map[string]any{
			"type":    "ParamDecl",
			"name":    decl.Ident().String(),
			"paramTy": decl.Type.String(),
			"mutable": decl.Mutable,
		}
	case *FuncDecl:
		params := make([]any, len(decl.Params))
		for i, param := range decl.Params {
			params[i] = declToJSON(param, p)
		}
		return map[string]any{
			"type":       "FuncDecl",
			"name":       decl.Ident().String(),
			"params":     params,
			"returnType": decl.ReturnType.String(),
			"body":       decl.Body.Accept(p),
		}
	default:
		return map[string]any{"type": "UnknownDecl"}
	}
}

// opSymbol renders an OpKind as the source spelling it came from, purely
// for readability in the dumped tree.
func opSymbol(op OpKind) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpAssign:
		return "="
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	default:
		return "?"
	}
}

// DumpJSON renders unit's top-level declarations as a prettified JSON tree
// (spec.md §6.4's "-dump-ast", matching the teacher's PrintASTJSON format:
// one object per node, "type" discriminating the node kind).
func DumpJSON(unit *UnitDecl) (string, error) {
	p := jsonPrinter{}
	decls := make([]any, len(unit.Decls))
	for i, d := range unit.Decls {
		decls[i] = declToJSON(d, p)
	}
	b, err := json.MarshalIndent(decls, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
