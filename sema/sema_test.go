package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fox/ast"
	"fox/diag"
	"fox/lexer"
	"fox/parser"
	"fox/source"
	"fox/types"
)

// analyze parses src and runs the full semantic pass over it, returning the
// unit, the elected entry point (nil if none), and the diagnostic engine.
func analyze(t *testing.T, src string) (*ast.UnitDecl, *ast.FuncDecl, *diag.Engine) {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)

	sources := source.NewManager()
	file := sources.AddString("<test>", src)
	engine := diag.NewEngine(sources)
	astCtx := ast.NewContext()

	unit := parser.New(toks, astCtx, engine, file).ParseUnit("test")
	require.False(t, engine.HasErrors(), "unexpected parse diagnostics: %v", engine.Emitted())

	entry := NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)
	return unit, entry, engine
}

func findFunc(t *testing.T, unit *ast.UnitDecl, name string) *ast.FuncDecl {
	t.Helper()
	for _, d := range unit.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Ident().Name == name {
			return fn
		}
	}
	t.Fatalf("no function named %q", name)
	return nil
}

func TestBinaryArithmeticUnifiesToHighestRank(t *testing.T) {
	unit, _, diags := analyze(t, `let x: double = 1 + 2.0;`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	v := unit.Decls[0].(*ast.VarDecl)
	assert.Equal(t, types.Double, v.Initializer.Type().PrimitiveKind())
}

func TestStringCharConcatenation(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	var s: string = "a" + 'b';
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestMismatchedArithmeticTypesDiagnose(t *testing.T) {
	_, _, diags := analyze(t, `let x: int = true + 1;`)
	assert.True(t, diags.HasErrors())
}

func TestModRequiresInt(t *testing.T) {
	_, _, diags := analyze(t, `let x: int = 7 % 2;`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestModRejectsDouble(t *testing.T) {
	_, _, diags := analyze(t, `let x: double = 7.0 % 2.0;`)
	assert.True(t, diags.HasErrors())
}

func TestModRejectsBool(t *testing.T) {
	_, _, diags := analyze(t, `let x: bool = true % false;`)
	assert.True(t, diags.HasErrors())
}

func TestUndeclaredIdentifierDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	y = 1;
}`)
	assert.True(t, diags.HasErrors())
}

func TestAssignmentRequiresLValue(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	1 = 2;
}`)
	assert.True(t, diags.HasErrors())
}

func TestAssignmentToImmutableLetDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	let x: int = 1;
	x = 2;
}`)
	assert.True(t, diags.HasErrors())
}

func TestVarShadowsParamLegally(t *testing.T) {
	unit, _, diags := analyze(t, `
func f(x: int): int {
	var x: int = x + 1;
	return x;
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())

	fn := findFunc(t, unit, "f")
	local := fn.Body.Nodes[0].Decl.(*ast.VarDecl)
	ref := local.Initializer.(*ast.BinaryExpr).Left.(*ast.DeclRefExpr)
	if _, ok := ref.Decl.(*ast.ParamDecl); !ok {
		t.Errorf("initializer's 'x' resolved to %T, want *ast.ParamDecl (the shadowed parameter)", ref.Decl)
	}

	ret := fn.Body.Nodes[1].Stmt.(*ast.ReturnStmt)
	retRef := ret.Value.(*ast.DeclRefExpr)
	if _, ok := retRef.Decl.(*ast.VarDecl); !ok {
		t.Errorf("return's 'x' resolved to %T, want *ast.VarDecl (the shadowing local)", retRef.Decl)
	}
}

func TestDuplicateTopLevelVarIsIllegal(t *testing.T) {
	unit, _, diags := analyze(t, `
let x: int = 1;
let x: int = 2;`)
	assert.True(t, diags.HasErrors())
	assert.False(t, unit.Decls[0].Illegal())
	assert.True(t, unit.Decls[1].Illegal())
}

func TestFunctionRedeclarationIsIllegal(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void { return; }
func f(): void { return; }`)
	assert.True(t, diags.HasErrors())
}

func TestCrossKindRedeclarationIsIllegal(t *testing.T) {
	_, _, diags := analyze(t, `
let f: int = 1;
func f(): void { return; }`)
	assert.True(t, diags.HasErrors())
}

func TestDuplicateParameterNameIsIllegal(t *testing.T) {
	_, _, diags := analyze(t, `func f(a: int, a: int): void { return; }`)
	assert.True(t, diags.HasErrors())
}

func TestGlobalInitializerCannotReferenceDecls(t *testing.T) {
	_, _, diags := analyze(t, `
let a: int = 1;
let b: int = a;`)
	assert.True(t, diags.HasErrors())
}

func TestMutualRecursionResolvesViaForwardReference(t *testing.T) {
	_, _, diags := analyze(t, `
func isEven(n: int): bool {
	if n == 0 {
		return true;
	}
	return isOdd(n - 1);
}
func isOdd(n: int): bool {
	if n == 0 {
		return false;
	}
	return isEven(n - 1);
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestMissingReturnInNonVoidFunctionDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): int {
	let x: int = 1;
}`)
	assert.True(t, diags.HasErrors())
}

func TestReturnOnAllPathsViaIfElseSatisfiesFlowCheck(t *testing.T) {
	_, _, diags := analyze(t, `
func f(b: bool): int {
	if b {
		return 1;
	} else {
		return 2;
	}
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestIfWithoutElseDoesNotSatisfyFlowCheck(t *testing.T) {
	_, _, diags := analyze(t, `
func f(b: bool): int {
	if b {
		return 1;
	}
}`)
	assert.True(t, diags.HasErrors())
}

func TestWhileNeverSatisfiesFlowCheck(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): int {
	while true {
		return 1;
	}
}`)
	assert.True(t, diags.HasErrors())
}

func TestUnreachableCodeAfterReturnWarns(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	return;
	let x: int = 1;
}`)
	var sawWarning bool
	for _, d := range diags.Emitted() {
		if d.Severity == diag.Warning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning, "%v", diags.Emitted())
}

func TestEntryPointElectionPrefersMainWithEmptyParams(t *testing.T) {
	_, entry, diags := analyze(t, `
func main(): int {
	return 0;
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	require.NotNil(t, entry)
	assert.Equal(t, "main", entry.Ident().Name)
	assert.True(t, entry.IsEntry)
}

func TestEntryPointElectionToleratesVoidMain(t *testing.T) {
	_, entry, diags := analyze(t, `
func main(): void {
	return;
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	require.NotNil(t, entry)
}

func TestNoEntryPointWhenNoMainDeclared(t *testing.T) {
	_, entry, diags := analyze(t, `func helper(): void { return; }`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	assert.Nil(t, entry)
}

func TestArrayLenCallTypesAsInt(t *testing.T) {
	unit, _, diags := analyze(t, `
func f(): void {
	let xs: [int] = [1, 2, 3];
	let n: int = xs.len();
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	fn := findFunc(t, unit, "f")
	n := fn.Body.Nodes[1].Decl.(*ast.VarDecl)
	assert.Equal(t, types.Int, n.Initializer.Type().PrimitiveKind())
}

func TestSubscriptOfNonArrayDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	let x: int = 1;
	x[0];
}`)
	assert.True(t, diags.HasErrors())
}

func TestCastBetweenStringAndCharIsValid(t *testing.T) {
	_, _, diags := analyze(t, `let c: char = "a" as char;`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestInvalidCastDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `let b: bool = "a" as bool;`)
	assert.True(t, diags.HasErrors())
}

func TestBuiltinCallTypeChecks(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	printInt(1);
	printString("hi");
}`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
}

func TestCallWithWrongArgCountDiagnoses(t *testing.T) {
	_, _, diags := analyze(t, `
func f(): void {
	printInt(1, 2);
}`)
	assert.True(t, diags.HasErrors())
}

func TestEmptyArrayLiteralUnifiesWithUseSite(t *testing.T) {
	unit, _, diags := analyze(t, `let xs: [int] = [];`)
	assert.False(t, diags.HasErrors(), "%v", diags.Emitted())
	v := unit.Decls[0].(*ast.VarDecl)
	arrTy := v.Initializer.Type()
	assert.Equal(t, types.KindArray, arrTy.Kind())
}
