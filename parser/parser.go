// Package parser implements Fox's hand-written recursive-descent parser
// (spec.md §4.1): kind-and-value token predicates, a tri-state Result per
// grammar rule, and error-recovery helpers (resyncTo, resyncPastSemicolon,
// resyncToNextStmt, resyncToNextDecl).
package parser

import (
	"fox/ast"
	"fox/diag"
	"fox/source"
	"fox/token"
	"fox/types"
)

// Parser holds the token stream and the AST/diagnostic collaborators it
// builds into.
type Parser struct {
	tokens []token.Token
	pos    int

	astCtx *ast.Context
	diags  *diag.Engine
	file   source.FileID
}

func New(tokens []token.Token, astCtx *ast.Context, diags *diag.Engine, file source.FileID) *Parser {
	return &Parser{tokens: tokens, astCtx: astCtx, diags: diags, file: file}
}

func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isFinished() bool { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	return !p.isFinished() && p.peek().Kind == kind
}

func (p *Parser) isMatch(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past the expected kind or diagnoses at the current
// token's location.
func (p *Parser) consume(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.diagnoseHere(msg)
	return p.peek(), false
}

func (p *Parser) loc(tok token.Token) source.Loc {
	return source.Loc{File: p.file, Offset: tok.Offset}
}

func (p *Parser) rangeOf(start, end token.Token) source.Range {
	return source.Range{Begin: p.loc(start), End: p.loc(end)}
}

func (p *Parser) diagnoseHere(msg string) {
	tok := p.peek()
	p.diags.Report(diag.Error, source.Range{Begin: p.loc(tok), End: p.loc(tok)}, msg).Emit()
}

// resyncTo advances the cursor until it finds sign at the current bracket
// depth, tracking nested ( [ { so an inner mismatched bracket can't let the
// cursor "escape" outward before it's balanced (spec.md §4.1). If
// stopAtSemi, a ';' at depth 0 also stops the resync. Returns true if sign
// was found (and, if consume, consumed).
func (p *Parser) resyncTo(sign token.Kind, stopAtSemi, consumeSign bool) bool {
	depth := 0
	for !p.isFinished() {
		k := p.peek().Kind
		if depth == 0 && k == sign {
			if consumeSign {
				p.advance()
			}
			return true
		}
		if depth == 0 && stopAtSemi && k == token.SEMICOLON {
			return false
		}
		switch k {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
	return false
}

// resyncPastSemicolon recovers from a missing ';' by consuming through the
// next one, but stops without consuming if it first reaches a token that
// starts a new declaration or statement — so one missing terminator doesn't
// swallow whatever follows it.
func (p *Parser) resyncPastSemicolon() {
	depth := 0
	for !p.isFinished() {
		k := p.peek().Kind
		if depth == 0 {
			switch k {
			case token.SEMICOLON:
				p.advance()
				return
			case token.LET, token.VAR, token.FUNC, token.IF, token.WHILE, token.RETURN, token.RBRACE:
				return
			}
		}
		switch k {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// resyncToNextDecl seeks the next "let"/"var"/"func" at unit scope so
// declaration parsing can recover from a failed decl.
func (p *Parser) resyncToNextDecl() {
	for !p.isFinished() {
		switch p.peek().Kind {
		case token.LET, token.VAR, token.FUNC:
			return
		}
		p.advance()
	}
}

// ParseUnit parses the whole token stream into a UnitDecl (spec.md's
// "unit = { decl }1+"). Parsing never stops early: failed declarations are
// skipped via resyncToNextDecl so later declarations still get a chance.
// The grammar's "1+" is enforced explicitly: a unit that parses zero
// declarations (including an empty source, which never enters the loop at
// all) diagnoses rather than silently producing an empty unit.
func (p *Parser) ParseUnit(name string) *ast.UnitDecl {
	unit := ast.NewUnitDecl(p.astCtx.Intern(name))

	for !p.isFinished() {
		res := p.parseDecl()
		switch res.State {
		case Found:
			unit.Decls = append(unit.Decls, res.Value)
			unit.Context.AddDecl(res.Value, source.Range{})
		case NotFound:
			p.diagnoseHere("expected a declaration")
			p.resyncToNextDecl()
		case ResultError:
			p.resyncToNextDecl()
		}
	}
	if len(unit.Decls) == 0 {
		p.diagnoseHere("expected declaration in unit")
	}
	return unit
}

// decl = var_decl | func_decl
func (p *Parser) parseDecl() Result[ast.Decl] {
	if p.check(token.LET) || p.check(token.VAR) {
		res := p.parseVarDecl(true)
		if res.State != Found {
			return Result[ast.Decl]{State: res.State}
		}
		return found[ast.Decl](res.Value)
	}
	if p.check(token.FUNC) {
		res := p.parseFuncDecl()
		if res.State != Found {
			return Result[ast.Decl]{State: res.State}
		}
		return found[ast.Decl](res.Value)
	}
	return notFound[ast.Decl]()
}

// var_decl = ("let" | "var") id ":" type [ "=" expr ] ";"
func (p *Parser) parseVarDecl(isGlobal bool) Result[*ast.VarDecl] {
	start := p.peek()
	mutable := p.peek().Kind == token.VAR
	p.advance() // "let" or "var"

	nameTok, ok := p.consume(token.IDENTIFIER, "expected a variable name")
	if !ok {
		p.resyncPastSemicolon()
		return resultErr[*ast.VarDecl]()
	}
	if _, ok := p.consume(token.COLON, "expected ':' after variable name"); !ok {
		p.resyncPastSemicolon()
		return resultErr[*ast.VarDecl]()
	}
	ty, ok := p.parseType()
	if !ok {
		p.resyncPastSemicolon()
		return resultErr[*ast.VarDecl]()
	}

	// The VarDecl is constructed only once every piece (including the
	// initializer and closing ';') is known, so its range covers the whole
	// declaration — sema's local-scope visibility window starts at the end
	// of this range, not at "let"/"var", so a var's own initializer still
	// sees whatever it shadows rather than itself (spec.md §4.2 scenario 6).
	var init ast.Expression
	if p.isMatch(token.ASSIGN) {
		v, ok := p.parseExpr()
		if !ok {
			p.resyncPastSemicolon()
			decl := ast.NewVarDecl(p.astCtx.Intern(nameTok.Lexeme), p.rangeOf(start, p.previous()), mutable, isGlobal)
			decl.Type = ty
			return found(decl) // partial decl retained, per spec.md's recovery policy
		}
		init = v
	}

	if _, ok := p.consume(token.SEMICOLON, "expected ';' after variable declaration"); !ok {
		p.resyncPastSemicolon()
	}

	decl := ast.NewVarDecl(p.astCtx.Intern(nameTok.Lexeme), p.rangeOf(start, p.previous()), mutable, isGlobal)
	decl.Type = ty
	decl.Initializer = init
	return found(decl)
}

// func_decl = "func" id "(" [ param_decl { "," param_decl } ] ")" [ ":" type ] compound
func (p *Parser) parseFuncDecl() Result[*ast.FuncDecl] {
	start := p.peek()
	p.advance() // "func"

	nameTok, ok := p.consume(token.IDENTIFIER, "expected a function name")
	if !ok {
		if !p.resyncTo(token.LBRACE, true, false) {
			return resultErr[*ast.FuncDecl]()
		}
	}

	// Params live in their own context, parented to the unit by sema once the
	// enclosing unit is known; the body gets a nested context of its own so a
	// body-local var may shadow a same-named parameter (spec.md §4.2).
	paramCtx := ast.NewDeclContext(ast.KindFuncContext, nil)

	var params []*ast.ParamDecl
	if _, ok := p.consume(token.LPAREN, "expected '(' after function name"); !ok {
		p.resyncTo(token.LBRACE, true, false)
	} else if !p.check(token.RPAREN) {
		for i := 0; ; i++ {
			param, ok := p.parseParamDecl(i)
			if ok {
				params = append(params, param)
			}
			if !p.isMatch(token.COMMA) {
				break
			}
		}
		p.consume(token.RPAREN, "expected ')' after parameters")
	} else {
		p.advance() // ")"
	}

	returnType := p.astCtx.Types.Primitive(types.Void)
	if p.isMatch(token.COLON) {
		ty, ok := p.parseType()
		if ok {
			returnType = ty
		}
	}

	paramTypes := make([]*types.Type, len(params))
	for i, param := range params {
		paramTypes[i] = param.Type
	}
	fnType := p.astCtx.Types.Function(paramTypes, returnType)

	body, ok := p.parseCompound()
	if !ok {
		return resultErr[*ast.FuncDecl]()
	}
	body.Context = ast.NewDeclContext(ast.KindFuncContext, paramCtx)

	// A parameter is visible for the whole function — params and body —
	// so its scope range runs from the function's own start through the
	// closing brace of its body, not just the param list.
	funcScope := p.rangeOf(start, p.previous())
	for _, param := range params {
		paramCtx.AddDecl(param, funcScope)
	}

	decl := ast.NewFuncDecl(p.astCtx.Intern(nameTok.Lexeme), funcScope)
	decl.Params = params
	decl.ReturnType = returnType
	decl.FnType = fnType
	decl.Context = paramCtx
	decl.Body = body
	return found(decl)
}

// param_decl = id ":" [ "mut" ] type
func (p *Parser) parseParamDecl(index int) (*ast.ParamDecl, bool) {
	nameTok, ok := p.consume(token.IDENTIFIER, "expected a parameter name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.COLON, "expected ':' after parameter name"); !ok {
		return nil, false
	}
	mutable := p.isMatch(token.MUT)
	ty, ok := p.parseType()
	if !ok {
		return nil, false
	}
	param := ast.NewParamDecl(p.astCtx.Intern(nameTok.Lexeme), p.rangeOf(nameTok, p.previous()), mutable, index)
	param.Type = ty
	return param, true
}

// type = primitive_type | "[" type "]"
func (p *Parser) parseType() (*types.Type, bool) {
	if p.isMatch(token.LBRACKET) {
		elem, ok := p.parseType()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RBRACKET, "expected ']' after array element type"); !ok {
			return nil, false
		}
		return p.astCtx.Types.Array(elem), true
	}

	tok := p.peek()
	if !token.IsPrimitiveTypeName(tok.Kind) {
		p.diagnoseHere("expected a type")
		return nil, false
	}
	p.advance()
	return p.astCtx.Types.Primitive(primitiveFromKeyword(tok.Kind)), true
}

func primitiveFromKeyword(k token.Kind) types.Primitive {
	switch k {
	case token.KW_INT:
		return types.Int
	case token.KW_DOUBLE:
		return types.Double
	case token.KW_BOOL:
		return types.Bool
	case token.KW_CHAR:
		return types.Char
	case token.KW_STRING:
		return types.String
	case token.KW_VOID:
		return types.Void
	default:
		return types.Void
	}
}

// compound = "{" { stmt } "}"
func (p *Parser) parseCompound() (*ast.CompoundStmt, bool) {
	start := p.peek()
	if _, ok := p.consume(token.LBRACE, "expected '{'"); !ok {
		return nil, false
	}

	var nodes []ast.Node
	for !p.check(token.RBRACE) && !p.isFinished() {
		node, ok := p.parseStmtNode()
		if !ok {
			p.resyncToNextStmt()
			continue
		}
		nodes = append(nodes, node)
	}

	end, ok := p.consume(token.RBRACE, "expected '}' to close block")
	if !ok {
		return ast.NewCompound(p.rangeOf(start, p.previous()), nodes), false
	}
	return ast.NewCompound(p.rangeOf(start, end), nodes), true
}

// resyncToNextStmt recovers within a compound by seeking a statement
// boundary: a ';', a '}', or the start of a nested compound.
func (p *Parser) resyncToNextStmt() {
	for !p.isFinished() {
		switch p.peek().Kind {
		case token.SEMICOLON:
			p.advance()
			return
		case token.RBRACE, token.IF, token.WHILE, token.RETURN, token.LET, token.VAR:
			return
		}
		p.advance()
	}
}

// stmt = var_decl | expr_stmt | condition | while_loop | return_stmt
func (p *Parser) parseStmtNode() (ast.Node, bool) {
	switch {
	case p.check(token.LET) || p.check(token.VAR):
		res := p.parseVarDecl(false)
		if res.State != Found {
			return ast.Node{}, false
		}
		return ast.Node{Decl: res.Value}, true
	case p.check(token.IF):
		s, ok := p.parseCondition()
		return ast.Node{Stmt: s}, ok
	case p.check(token.WHILE):
		s, ok := p.parseWhile()
		return ast.Node{Stmt: s}, ok
	case p.check(token.RETURN):
		s, ok := p.parseReturn()
		return ast.Node{Stmt: s}, ok
	default:
		return p.parseExprStmt()
	}
}

// expr_stmt = ";" | expr ";"
func (p *Parser) parseExprStmt() (ast.Node, bool) {
	if p.check(token.SEMICOLON) {
		tok := p.advance()
		return ast.Node{Stmt: ast.NewNullStmt(p.rangeOf(tok, tok))}, true
	}
	expr, ok := p.parseExpr()
	if !ok {
		return ast.Node{}, false
	}
	if _, ok := p.consume(token.SEMICOLON, "expected ';' after expression"); !ok {
		return ast.Node{Expr: expr}, false
	}
	return ast.Node{Expr: expr}, true
}

// condition = "if" expr compound [ "else" compound ]
func (p *Parser) parseCondition() (*ast.ConditionStmt, bool) {
	start := p.advance() // "if"
	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	then, ok := p.parseCompound()
	if !ok {
		return nil, false
	}
	var els *ast.CompoundStmt
	if p.isMatch(token.ELSE) {
		els, ok = p.parseCompound()
		if !ok {
			return nil, false
		}
	}
	return ast.NewCondition(p.rangeOf(start, p.previous()), cond, then, els), true
}

// while_loop = "while" expr compound
func (p *Parser) parseWhile() (*ast.WhileStmt, bool) {
	start := p.advance() // "while"
	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	body, ok := p.parseCompound()
	if !ok {
		return nil, false
	}
	return ast.NewWhile(p.rangeOf(start, p.previous()), cond, body), true
}

// return_stmt = "return" [ expr ] ";"
func (p *Parser) parseReturn() (*ast.ReturnStmt, bool) {
	start := p.advance() // "return"
	var value ast.Expression
	if !p.check(token.SEMICOLON) {
		v, ok := p.parseExpr()
		if !ok {
			p.resyncPastSemicolon()
			return ast.NewReturn(p.rangeOf(start, p.previous()), nil), false
		}
		value = v
	}
	end, ok := p.consume(token.SEMICOLON, "expected ';' after return statement")
	if !ok {
		return ast.NewReturn(p.rangeOf(start, p.previous()), value), false
	}
	return ast.NewReturn(p.rangeOf(start, end), value), true
}

// expr = binary_expr [ "=" expr ] (right-assoc)
func (p *Parser) parseExpr() (ast.Expression, bool) {
	left, ok := p.parseBinary(0)
	if !ok {
		return nil, false
	}
	if p.check(token.ASSIGN) {
		opTok := p.advance()
		right, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return ast.NewBinary(p.rangeOf(opTok, p.previous()), ast.OpAssign, p.rangeOf(opTok, opTok), left, right), true
	}
	return left, true
}

// precedence table: lowest (5: ||) to highest (0: * / %) before `**`.
var binPrec = map[token.Kind]int{
	token.OR:           5,
	token.AND:          4,
	token.EQUAL_EQUAL:  3,
	token.NOT_EQUAL:    3,
	token.LESS:         2,
	token.LESS_EQUAL:   2,
	token.LARGER:       2,
	token.LARGER_EQUAL: 2,
	token.PLUS:         1,
	token.MINUS:        1,
	token.STAR:         0,
	token.SLASH:        0,
	token.PERCENT:      0,
}

var binOp = map[token.Kind]ast.OpKind{
	token.OR:           ast.OpOr,
	token.AND:          ast.OpAnd,
	token.EQUAL_EQUAL:  ast.OpEq,
	token.NOT_EQUAL:    ast.OpNotEq,
	token.LESS:         ast.OpLess,
	token.LESS_EQUAL:   ast.OpLessEq,
	token.LARGER:       ast.OpGreater,
	token.LARGER_EQUAL: ast.OpGreaterEq,
	token.PLUS:         ast.OpAdd,
	token.MINUS:        ast.OpSub,
	token.STAR:         ast.OpMul,
	token.SLASH:        ast.OpDiv,
	token.PERCENT:      ast.OpMod,
}

// binary_expr = cast_expr { binop cast_expr }, precedence-climbing over the
// table above (lowest precedence binds loosest, so it is peeled last). The
// table index is inverted into a binding strength (5 - index: `||` is 0,
// `* / %` is 5) so that minPrec counts upward toward the tightest operators.
func (p *Parser) parseBinary(minPrec int) (ast.Expression, bool) {
	left, ok := p.parseCast()
	if !ok {
		return nil, false
	}
	for {
		idx, isBin := binPrec[p.peek().Kind]
		prec := 5 - idx
		if !isBin || prec < minPrec {
			return left, true
		}
		opTok := p.advance()
		right, ok := p.parseBinary(prec + 1) // left-associative: tighter on the right
		if !ok {
			return nil, false
		}
		left = ast.NewBinary(p.rangeOf(opTok, p.previous()), binOp[opTok.Kind], p.rangeOf(opTok, opTok), left, right)
	}
}

// cast_expr = prefix_expr [ "as" type ]
func (p *Parser) parseCast() (ast.Expression, bool) {
	start := p.peek()
	inner, ok := p.parsePrefix()
	if !ok {
		return nil, false
	}
	if p.isMatch(token.AS) {
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return ast.NewCast(p.rangeOf(start, p.previous()), ty, inner), true
	}
	return inner, true
}

var unaryOp = map[token.Kind]ast.OpKind{
	token.BANG:  ast.OpNot,
	token.MINUS: ast.OpNeg,
	token.PLUS:  ast.OpPos,
}

// prefix_expr = unary_op prefix_expr | exp_expr
func (p *Parser) parsePrefix() (ast.Expression, bool) {
	if op, isUnary := unaryOp[p.peek().Kind]; isUnary {
		opTok := p.advance()
		operand, ok := p.parsePrefix()
		if !ok {
			return nil, false
		}
		return ast.NewUnary(p.rangeOf(opTok, p.previous()), op, p.rangeOf(opTok, opTok), operand), true
	}
	return p.parseExp()
}

// exp_expr = suffix_expr [ "**" prefix_expr ] (right-assoc)
func (p *Parser) parseExp() (ast.Expression, bool) {
	base, ok := p.parseSuffix()
	if !ok {
		return nil, false
	}
	if p.check(token.STARSTAR) {
		opTok := p.advance()
		rhs, ok := p.parsePrefix()
		if !ok {
			return nil, false
		}
		return ast.NewBinary(p.rangeOf(opTok, p.previous()), ast.OpPow, p.rangeOf(opTok, opTok), base, rhs), true
	}
	return base, true
}

// suffix_expr = primary { suffix }
// suffix      = "." id | "[" expr "]" | paren_expr_list
func (p *Parser) parseSuffix() (ast.Expression, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		switch {
		case p.isMatch(token.DOT):
			member, ok := p.consume(token.IDENTIFIER, "expected a member name after '.'")
			if !ok {
				return nil, false
			}
			expr = ast.NewMemberOf(p.rangeOf(p.previous(), p.previous()), expr, p.astCtx.Intern(member.Lexeme))
		case p.isMatch(token.LBRACKET):
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			end, ok := p.consume(token.RBRACKET, "expected ']' after subscript index")
			if !ok {
				return nil, false
			}
			expr = ast.NewSubscript(p.rangeOf(p.previous(), end), expr, idx)
		case p.check(token.LPAREN):
			args, end, ok := p.parseParenExprList()
			if !ok {
				return nil, false
			}
			expr = ast.NewCall(p.rangeOf(p.previous(), end), expr, args)
		default:
			return expr, true
		}
	}
}

// paren_expr_list = "(" [ expr { "," expr } ] ")"
func (p *Parser) parseParenExprList() ([]ast.Expression, token.Token, bool) {
	p.advance() // "("
	var args []ast.Expression
	if !p.check(token.RPAREN) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				return nil, token.Token{}, false
			}
			args = append(args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	end, ok := p.consume(token.RPAREN, "expected ')' to close argument list")
	return args, end, ok
}

// array_literal = "[" [ expr { "," expr } ] "]"
func (p *Parser) parseArrayLiteral() (ast.Expression, bool) {
	start := p.advance() // "["
	var elems []ast.Expression
	if !p.check(token.RBRACKET) {
		for {
			e, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			elems = append(elems, e)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	end, ok := p.consume(token.RBRACKET, "expected ']' to close array literal")
	if !ok {
		return nil, false
	}
	return ast.NewArrayLiteral(p.rangeOf(start, end), elems), true
}

// primary = literal | id | "(" expr ")" | array_literal
func (p *Parser) parsePrimary() (ast.Expression, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.TRUE:
		p.advance()
		return ast.NewBoolLiteral(p.rangeOf(tok, tok), true), true
	case token.FALSE:
		p.advance()
		return ast.NewBoolLiteral(p.rangeOf(tok, tok), false), true
	case token.INT:
		p.advance()
		return ast.NewIntLiteral(p.rangeOf(tok, tok), tok.Literal.(int64)), true
	case token.DOUBLE:
		p.advance()
		return ast.NewDoubleLiteral(p.rangeOf(tok, tok), tok.Literal.(float64)), true
	case token.STRING:
		p.advance()
		text, ok := p.normalizeEscapes(tok, tok.Literal.(string))
		if !ok {
			return ast.NewErrorExpr(p.rangeOf(tok, tok)), true
		}
		return ast.NewStringLiteral(p.rangeOf(tok, tok), text), true
	case token.CHAR:
		p.advance()
		text, ok := p.normalizeEscapes(tok, tok.Literal.(string))
		if !ok {
			return ast.NewErrorExpr(p.rangeOf(tok, tok)), true
		}
		runes := []rune(text)
		if len(runes) != 1 {
			p.diags.Report(diag.Error, p.rangeOf(tok, tok), "character literal must contain exactly one code point").Emit()
			return ast.NewErrorExpr(p.rangeOf(tok, tok)), true
		}
		return ast.NewCharLiteral(p.rangeOf(tok, tok), runes[0]), true
	case token.IDENTIFIER:
		p.advance()
		return ast.NewUnresolvedDeclRef(p.rangeOf(tok, tok), p.astCtx.Intern(tok.Lexeme)), true
	case token.LPAREN:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RPAREN, "expected ')' after expression"); !ok {
			return nil, false
		}
		return inner, true
	case token.LBRACKET:
		return p.parseArrayLiteral()
	default:
		p.diagnoseHere("expected an expression")
		return nil, false
	}
}

// normalizeEscapes interprets \0 \n \r \t \\ \' \" in raw (the lexer hands
// the parser the literal's text between delimiters, unprocessed). Unknown
// escapes diagnose and are elided.
func (p *Parser) normalizeEscapes(tok token.Token, raw string) (string, bool) {
	var out []rune
	runes := []rune(raw)
	ok := true
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			out = append(out, runes[i])
			continue
		}
		if i+1 >= len(runes) {
			p.diags.Report(diag.Error, p.rangeOf(tok, tok), "dangling escape at end of literal").Emit()
			ok = false
			break
		}
		i++
		switch runes[i] {
		case '0':
			out = append(out, 0)
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		default:
			p.diags.Report(diag.Error, p.rangeOf(tok, tok), "unknown escape sequence '\\%0'").AddArg(string(runes[i])).Emit()
			ok = false
		}
	}
	return string(out), ok
}
