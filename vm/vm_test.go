package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fox/ast"
	"fox/bytecode"
	"fox/codegen"
	"fox/diag"
	"fox/lexer"
	"fox/parser"
	"fox/sema"
	"fox/source"
)

// run lexes, parses, checks, and lowers src, then executes its entry point
// on a fresh VM, returning everything printed by the builtin intrinsics —
// mirroring codegen_test.go's generate helper one stage further down the
// pipeline.
func run(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)

	sources := source.NewManager()
	file := sources.AddString("<test>", src)
	engine := diag.NewEngine(sources)
	astCtx := ast.NewContext()

	unit := parser.New(toks, astCtx, engine, file).ParseUnit("test")
	require.False(t, engine.HasErrors(), "unexpected parse diagnostics: %v", engine.Emitted())

	entry := sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)
	require.False(t, engine.HasErrors(), "unexpected sema diagnostics: %v", engine.Emitted())

	module := codegen.Generate(unit, entry)
	require.NotEqual(t, bytecode.NoEntryPoint, module.EntryPoint, "unit has no entry point")

	var out bytes.Buffer
	machine := New(module, &out)
	require.NoError(t, machine.RunGlobals())

	fn := module.Functions[module.EntryPoint]
	_, _, err = machine.Call(fn, nil)
	require.NoError(t, err)
	return out.String()
}

func TestRunPrintsIntLiteral(t *testing.T) {
	out := run(t, `func main(): void { printInt(42); }`)
	assert.Equal(t, "42\n", out)
}

func TestRunAddsIntegers(t *testing.T) {
	out := run(t, `func main(): void { printInt(2 + 3); }`)
	assert.Equal(t, "5\n", out)
}

func TestRunDoubleArithmeticBitcastsCorrectly(t *testing.T) {
	out := run(t, `func main(): void { printDouble(1.5 + 2.25); }`)
	assert.Equal(t, "3.75\n", out)
}

func TestRunStringConcat(t *testing.T) {
	out := run(t, `func main(): void { printString("foo" + "bar"); }`)
	assert.Equal(t, "foobar\n", out)
}

func TestRunCharStringConcatPromotesChar(t *testing.T) {
	out := run(t, `func main(): void { printString("a" + 'b'); }`)
	assert.Equal(t, "ab\n", out)
}

func TestRunDivisionByZeroReturnsRuntimeError(t *testing.T) {
	src := `func main(): void { var x: int = 1; var y: int = 0; printInt(x / y); }`
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)

	sources := source.NewManager()
	file := sources.AddString("<test>", src)
	engine := diag.NewEngine(sources)
	astCtx := ast.NewContext()

	unit := parser.New(toks, astCtx, engine, file).ParseUnit("test")
	require.False(t, engine.HasErrors())
	entry := sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)
	require.False(t, engine.HasErrors())

	module := codegen.Generate(unit, entry)
	var out bytes.Buffer
	machine := New(module, &out)
	require.NoError(t, machine.RunGlobals())

	fn := module.Functions[module.EntryPoint]
	_, _, err = machine.Call(fn, nil)
	require.Error(t, err)
	var rtErr RuntimeError
	require.ErrorAs(t, err, &rtErr)
}

func TestRunIfElseBranches(t *testing.T) {
	out := run(t, `func main(): void {
		var x: int = 7;
		if (x > 5) {
			printString("big");
		} else {
			printString("small");
		}
	}`)
	assert.Equal(t, "big\n", out)
}

func TestRunWhileLoopAccumulates(t *testing.T) {
	out := run(t, `func main(): void {
		var i: int = 0;
		var sum: int = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		printInt(sum);
	}`)
	assert.Equal(t, "10\n", out)
}

func TestRunFunctionCallReturnsValue(t *testing.T) {
	out := run(t, `
		func double(n: int): int { return n * 2; }
		func main(): void { printInt(double(21)); }
	`)
	assert.Equal(t, "42\n", out)
}

func TestRunRecursiveFunctionCall(t *testing.T) {
	out := run(t, `
		func fib(n: int): int {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		func main(): void { printInt(fib(10)); }
	`)
	assert.Equal(t, "55\n", out)
}

func TestRunArrayLiteralGetSetAndLen(t *testing.T) {
	out := run(t, `func main(): void {
		var a: [int] = [10, 20, 30];
		a[1] = 99;
		printInt(a[1]);
		printInt(a.len());
	}`)
	assert.Equal(t, "99\n3\n", out)
}

func TestRunGlobalVariableInitializedBeforeMain(t *testing.T) {
	out := run(t, `
		var counter: int = 100;
		func main(): void { printInt(counter); }
	`)
	assert.Equal(t, "100\n", out)
}

func TestRunArrayIndexOutOfBoundsReturnsRuntimeError(t *testing.T) {
	src := `func main(): void {
		var a: [int] = [1, 2, 3];
		printInt(a[5]);
	}`
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)

	sources := source.NewManager()
	file := sources.AddString("<test>", src)
	engine := diag.NewEngine(sources)
	astCtx := ast.NewContext()

	unit := parser.New(toks, astCtx, engine, file).ParseUnit("test")
	require.False(t, engine.HasErrors())
	entry := sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)
	require.False(t, engine.HasErrors())

	module := codegen.Generate(unit, entry)
	var out bytes.Buffer
	machine := New(module, &out)
	require.NoError(t, machine.RunGlobals())

	fn := module.Functions[module.EntryPoint]
	_, _, err = machine.Call(fn, nil)
	require.Error(t, err)
	var rtErr RuntimeError
	require.ErrorAs(t, err, &rtErr)
}
