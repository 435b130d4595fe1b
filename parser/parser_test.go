package parser

import (
	"testing"

	"fox/ast"
	"fox/diag"
	"fox/lexer"
	"fox/source"
)

func mustParse(t *testing.T, src string) (*ast.UnitDecl, *diag.Engine) {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	sources := source.NewManager()
	file := sources.AddString("<test>", src)
	engine := diag.NewEngine(sources)
	astCtx := ast.NewContext()
	unit := New(toks, astCtx, engine, file).ParseUnit("test")
	return unit, engine
}

func TestParseEmptySourceDiagnoses(t *testing.T) {
	unit, diags := mustParse(t, "")
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for an empty unit, got none")
	}
	if len(unit.Decls) != 0 {
		t.Fatalf("expected 0 decls, got %d", len(unit.Decls))
	}
}

func TestParseGlobalVarDecl(t *testing.T) {
	unit, diags := mustParse(t, `let x: int = 1;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	if len(unit.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(unit.Decls))
	}
	v, ok := unit.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", unit.Decls[0])
	}
	if v.Mutable {
		t.Error("let-declared var must not be mutable")
	}
	if !v.IsGlobal {
		t.Error("top-level var must be global")
	}
	if v.Ident().Name != "x" {
		t.Errorf("Ident().Name = %q, want x", v.Ident().Name)
	}
	if _, ok := v.Initializer.(*ast.IntLiteralExpr); !ok {
		t.Errorf("Initializer = %T, want *ast.IntLiteralExpr", v.Initializer)
	}
}

func TestParseMutableVarDecl(t *testing.T) {
	unit, diags := mustParse(t, `var y: bool;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	if !v.Mutable {
		t.Error("var-declared var must be mutable")
	}
	if v.Initializer != nil {
		t.Error("expected no initializer")
	}
}

func TestParseFuncDecl(t *testing.T) {
	unit, diags := mustParse(t, `
func add(a: int, b: mut int): int {
	return a + b;
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	if len(unit.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(unit.Decls))
	}
	fn, ok := unit.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", unit.Decls[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Mutable {
		t.Error("first parameter must not be mutable")
	}
	if !fn.Params[1].Mutable {
		t.Error("second parameter must be mutable")
	}
	if len(fn.Body.Nodes) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Nodes))
	}
	ret, ok := fn.Body.Nodes[0].Stmt.(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected a return statement, got %#v", fn.Body.Nodes[0])
	}
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("return value = %T, want *ast.BinaryExpr", ret.Value)
	}
}

func TestParseArrayType(t *testing.T) {
	unit, diags := mustParse(t, `let xs: [int] = [1, 2, 3];`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	if v.Type.Elem() == nil {
		t.Error("array-typed decl must have a non-nil element type")
	}
	arr, ok := v.Initializer.(*ast.ArrayLiteralExpr)
	if !ok {
		t.Fatalf("Initializer = %T, want *ast.ArrayLiteralExpr", v.Initializer)
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
}

func TestBinaryPrecedence(t *testing.T) {
	// "1 + 2 * 3" must parse as 1 + (2 * 3): the outer node is '+'.
	unit, diags := mustParse(t, `let r: int = 1 + 2 * 3;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	bin, ok := v.Initializer.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("Initializer = %T, want *ast.BinaryExpr", v.Initializer)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("top operator = %v, want OpAdd", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.OpMul {
		t.Errorf("right operand = %#v, want a '*' BinaryExpr", bin.Right)
	}
}

func TestExponentBindsTighterThanUnary(t *testing.T) {
	// "-2 ** 2" must parse as -(2 ** 2): unary is outside the exponent.
	unit, diags := mustParse(t, `let r: int = -2 ** 2;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	un, ok := v.Initializer.(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("Initializer = %T, want *ast.UnaryExpr", v.Initializer)
	}
	if un.Op != ast.OpNeg {
		t.Errorf("operator = %v, want OpNeg", un.Op)
	}
	if _, ok := un.Operand.(*ast.BinaryExpr); !ok {
		t.Errorf("operand = %T, want *ast.BinaryExpr (the '**' expression)", un.Operand)
	}
}

func TestStarVsStarStarDisambiguation(t *testing.T) {
	unit, diags := mustParse(t, `let r: int = 2 * 2 * 2;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	bin, ok := v.Initializer.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpMul {
		t.Fatalf("Initializer = %#v, want a '*' BinaryExpr", v.Initializer)
	}
}

func TestParseCallAndSubscriptAndMember(t *testing.T) {
	unit, diags := mustParse(t, `
func f(): void {
	foo(1, 2).length[0];
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	fn := unit.Decls[0].(*ast.FuncDecl)
	node := fn.Body.Nodes[0]
	sub, ok := node.Expr.(*ast.SubscriptExpr)
	if !ok {
		t.Fatalf("expr = %T, want *ast.SubscriptExpr", node.Expr)
	}
	member, ok := sub.Array.(*ast.MemberOfExpr)
	if !ok {
		t.Fatalf("subscript base = %T, want *ast.MemberOfExpr", sub.Array)
	}
	if member.Member.Name != "length" {
		t.Errorf("member name = %q, want length", member.Member.Name)
	}
	call, ok := member.Base.(*ast.CallExpr)
	if !ok {
		t.Fatalf("member base = %T, want *ast.CallExpr", member.Base)
	}
	if len(call.Args) != 2 {
		t.Errorf("call args = %d, want 2", len(call.Args))
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	unit, diags := mustParse(t, `
func f(): void {
	if true {
		return;
	} else {
		return;
	}
	while false {
		return;
	}
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	fn := unit.Decls[0].(*ast.FuncDecl)
	if len(fn.Body.Nodes) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body.Nodes))
	}
	cond, ok := fn.Body.Nodes[0].Stmt.(*ast.ConditionStmt)
	if !ok {
		t.Fatalf("node[0] = %T, want *ast.ConditionStmt", fn.Body.Nodes[0].Stmt)
	}
	if cond.Else == nil {
		t.Error("expected an else branch")
	}
	if _, ok := fn.Body.Nodes[1].Stmt.(*ast.WhileStmt); !ok {
		t.Fatalf("node[1] = %T, want *ast.WhileStmt", fn.Body.Nodes[1].Stmt)
	}
}

func TestParseCastExpr(t *testing.T) {
	unit, diags := mustParse(t, `let r: double = 1 as double;`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	if _, ok := v.Initializer.(*ast.CastExpr); !ok {
		t.Fatalf("Initializer = %T, want *ast.CastExpr", v.Initializer)
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	unit, diags := mustParse(t, `
func f(): void {
	a = b = 1;
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	fn := unit.Decls[0].(*ast.FuncDecl)
	outer, ok := fn.Body.Nodes[0].Expr.(*ast.BinaryExpr)
	if !ok || outer.Op != ast.OpAssign {
		t.Fatalf("expr = %#v, want an '=' BinaryExpr", fn.Body.Nodes[0].Expr)
	}
	if _, ok := outer.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("right side of outer assignment = %T, want a nested assignment", outer.Right)
	}
}

func TestMissingSemicolonRecovers(t *testing.T) {
	// a missing ';' should diagnose but still let the next declaration parse.
	unit, diags := mustParse(t, `
let a: int = 1
let b: int = 2;`)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the missing ';'")
	}
	if len(unit.Decls) != 2 {
		t.Fatalf("expected recovery to still find 2 decls, got %d", len(unit.Decls))
	}
}

func TestStringEscapeNormalization(t *testing.T) {
	unit, diags := mustParse(t, `let s: string = "a\nb";`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Emitted())
	}
	v := unit.Decls[0].(*ast.VarDecl)
	str, ok := v.Initializer.(*ast.StringLiteralExpr)
	if !ok {
		t.Fatalf("Initializer = %T, want *ast.StringLiteralExpr", v.Initializer)
	}
	if str.Value != "a\nb" {
		t.Errorf("Value = %q, want %q", str.Value, "a\nb")
	}
}

func TestCharLiteralMustBeSingleCodePoint(t *testing.T) {
	unit, diags := mustParse(t, `let c: char = 'ab';`)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a multi-code-point char literal")
	}
	v := unit.Decls[0].(*ast.VarDecl)
	if _, ok := v.Initializer.(*ast.ErrorExpr); !ok {
		t.Errorf("Initializer = %T, want *ast.ErrorExpr", v.Initializer)
	}
}

func TestUnknownEscapeDiagnoses(t *testing.T) {
	_, diags := mustParse(t, `let s: string = "\q";`)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an unknown escape sequence")
	}
}
