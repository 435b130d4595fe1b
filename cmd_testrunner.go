package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"fox/ast"
	"fox/codegen"
	"fox/diag"
	"fox/lexer"
	"fox/parser"
	"fox/sema"
	"fox/source"
	"fox/vm"
)

// testCmd discovers *.fox scripts under a directory and runs each one as a
// test case, generalizing sam-decook-lox's TestFramework (itself built
// around shelling out to a reference interpreter binary and diffing
// stdout/stderr) to a single in-process Fox pipeline: a case's expectations
// come from diag.Verifier's "expect-<severity>: <text>" comments and an
// optional trailing "# output:" block instead of a second executable.
type testCmd struct{}

func (*testCmd) Name() string     { return "test" }
func (*testCmd) Synopsis() string { return "run *.fox test scripts under a directory" }
func (*testCmd) Usage() string {
	return `test <dir>:
  Discover and run *.fox test scripts under dir.
`
}
func (*testCmd) SetFlags(f *flag.FlagSet) {}

// caseResult is one test file's outcome, written by its own goroutine into
// a pre-sized, index-addressed slice — no mutex needed, since no two
// goroutines ever touch the same slot.
type caseResult struct {
	path   string
	passed bool
	detail string
}

func (*testCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no directory provided\n")
		return subcommands.ExitUsageError
	}
	dir := args[0]

	pattern := filepath.Join(dir, "**", "*.fox")
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to discover test scripts: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "💥 no *.fox scripts found under %s\n", dir)
		return subcommands.ExitFailure
	}

	results := make([]caseResult, len(files))
	g, _ := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = runTestCase(file)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		label := color.GreenString("passed")
		if !r.passed {
			label = color.RedString("failed")
			failed++
		}
		fmt.Printf("[%s] %s\n", label, r.path)
		if r.detail != "" {
			fmt.Println(r.detail)
		}
	}
	fmt.Printf("\n%d/%d passed\n", len(results)-failed, len(results))

	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runTestCase compiles and, if a "# output:" block is present, executes
// one script, checking it against both its diag.Verifier expectations and
// its expected stdout.
func runTestCase(path string) caseResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return caseResult{path: path, passed: false, detail: fmt.Sprintf("  failed to read: %v", err)}
	}
	src := string(data)

	verifier := diag.NewVerifier(src)
	sources := source.NewManager()
	file := sources.AddString(path, src)
	engine := diag.NewEngine(sources)
	engine.SetVerifier(verifier)

	toks, err := lexer.New(src).Scan()
	if err != nil {
		return caseResult{path: path, passed: false, detail: fmt.Sprintf("  lexing error: %v", err)}
	}

	astCtx := ast.NewContext()
	unit := parser.New(toks, astCtx, engine, file).ParseUnit(path)
	entry := sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)

	var unmet []string
	for _, verr := range verifier.Finish() {
		unmet = append(unmet, verr.Error())
	}
	if engine.HasErrors() {
		for _, d := range engine.Emitted() {
			unmet = append(unmet, engine.Render(d))
		}
	}
	if len(unmet) > 0 {
		return caseResult{path: path, passed: false, detail: "  " + strings.Join(unmet, "\n  ")}
	}

	expectedOutput, hasExpectedOutput := parseExpectedOutput(src)
	if !hasExpectedOutput {
		return caseResult{path: path, passed: true}
	}
	if entry == nil {
		return caseResult{path: path, passed: false, detail: "  expected output but no entry point was elected"}
	}

	module := codegen.Generate(unit, entry)
	var out bytes.Buffer
	machine := vm.New(module, &out)
	if err := machine.RunGlobals(); err != nil {
		return caseResult{path: path, passed: false, detail: fmt.Sprintf("  %v", err)}
	}
	if _, _, err := machine.Call(module.Functions[module.EntryPoint], nil); err != nil {
		return caseResult{path: path, passed: false, detail: fmt.Sprintf("  %v", err)}
	}

	actual := out.String()
	if actual == expectedOutput {
		return caseResult{path: path, passed: true}
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedOutput),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return caseResult{path: path, passed: false, detail: "  " + strings.ReplaceAll(text, "\n", "\n  ")}
}

// parseExpectedOutput looks for a "# output:" marker comment and treats
// every immediately following contiguous "#"-prefixed line as one line of
// expected stdout, stripping the comment prefix.
func parseExpectedOutput(src string) (string, bool) {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "# output:" {
			continue
		}
		var expected []string
		for _, rest := range lines[i+1:] {
			trimmed := strings.TrimSpace(rest)
			if !strings.HasPrefix(trimmed, "#") {
				break
			}
			expected = append(expected, strings.TrimPrefix(strings.TrimPrefix(trimmed, "#"), " "))
		}
		if len(expected) == 0 {
			return "", false
		}
		return strings.Join(expected, "\n") + "\n", true
	}
	return "", false
}
