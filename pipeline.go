package main

import (
	"fmt"
	"io"

	"fox/ast"
	"fox/bytecode"
	"fox/codegen"
	"fox/diag"
	"fox/lexer"
	"fox/parser"
	"fox/sema"
	"fox/source"
)

// pipeline is what every subcommand needs after running one Fox source file
// through lex, parse, sema, and codegen: the elected entry point (nil if
// the unit declares none) and the lowered module, plus the diagnostic
// machinery used to render whatever the stages collected along the way.
type pipeline struct {
	Sources *source.Manager
	File    source.FileID
	Engine  *diag.Engine
	Unit    *ast.UnitDecl
	Entry   *ast.FuncDecl
	Module  *bytecode.BCModule
}

// compile runs the full pipeline over src, registered under path. It stops
// at the first stage reporting an error diagnostic, but always returns a
// non-nil *pipeline so the caller can render whatever diagnostics were
// collected before the failure.
func compile(path, src string) (*pipeline, error) {
	sources := source.NewManager()
	file := sources.AddString(path, src)
	engine := diag.NewEngine(sources)
	p := &pipeline{Sources: sources, File: file, Engine: engine}

	toks, err := lexer.New(src).Scan()
	if err != nil {
		return p, fmt.Errorf("lexing error: %w", err)
	}

	astCtx := ast.NewContext()
	p.Unit = parser.New(toks, astCtx, engine, file).ParseUnit(path)
	if engine.HasErrors() {
		return p, fmt.Errorf("parsing failed")
	}

	p.Entry = sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(p.Unit)
	if engine.HasErrors() {
		return p, fmt.Errorf("semantic analysis failed")
	}

	p.Module = codegen.Generate(p.Unit, p.Entry)
	return p, nil
}

// printDiagnostics renders every diagnostic engine collected to w, one per
// line, colorized by severity.
func printDiagnostics(w io.Writer, engine *diag.Engine) {
	for _, d := range engine.Emitted() {
		fmt.Fprintln(w, colorizeSeverity(d.Severity, engine.Render(d)))
	}
}
