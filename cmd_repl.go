package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"fox/ast"
	"fox/codegen"
	"fox/diag"
	"fox/lexer"
	"fox/parser"
	"fox/sema"
	"fox/source"
	"fox/token"
	"fox/vm"
)

// replCmd is a line-buffered REPL over readline, generalizing the teacher's
// cmd_repl_compiled.go's multi-line lookahead (isInputReady,
// allParseErrorsAtEOF) to Fox's declaration-only top level: since a Fox
// unit is just a sequence of func/var declarations, each accepted input is
// appended to a growing source buffer and the WHOLE buffer is recompiled
// from scratch, re-running main if (and each time) it is present.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive Fox session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive Fox session.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Fox REPL. Declarations accumulate; \"main\" re-runs whenever it's (re)defined.")

	var history strings.Builder
	var pending strings.Builder

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending.Reset()
			rl.SetPrompt(">>> ")
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)

		toks, lexErr := lexer.New(pending.String()).Scan()
		if lexErr != nil {
			fmt.Fprintln(os.Stderr, lexErr)
			pending.Reset()
			rl.SetPrompt(">>> ")
			continue
		}

		if !isInputReady(toks) {
			rl.SetPrompt("... ")
			continue
		}
		rl.SetPrompt(">>> ")

		candidate := history.String()
		if candidate != "" {
			candidate += "\n"
		}
		candidate += pending.String()

		sources := source.NewManager()
		file := sources.AddString("<repl>", candidate)
		engine := diag.NewEngine(sources)
		astCtx := ast.NewContext()

		candidateToks, lexErr := lexer.New(candidate).Scan()
		if lexErr != nil {
			fmt.Fprintln(os.Stderr, lexErr)
			pending.Reset()
			continue
		}

		unit := parser.New(candidateToks, astCtx, engine, file).ParseUnit("repl")
		if engine.HasErrors() {
			if allParseErrorsAtEOF(engine, sources, candidateToks[len(candidateToks)-1]) {
				rl.SetPrompt("... ")
				continue
			}
			printDiagnostics(os.Stderr, engine)
			pending.Reset()
			continue
		}

		entry := sema.NewAnalyzer(astCtx, engine).AnalyzeUnit(unit)
		if engine.HasErrors() {
			printDiagnostics(os.Stderr, engine)
			pending.Reset()
			continue
		}

		module := codegen.Generate(unit, entry)
		history.Reset()
		history.WriteString(candidate)
		pending.Reset()

		if entry == nil {
			continue
		}

		machine := vm.New(module, os.Stdout)
		if err := machine.RunGlobals(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if _, _, err := machine.Call(module.Functions[module.EntryPoint], nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// isInputReady reports whether toks forms a balanced, structurally complete
// input: brace-balanced, and not ending on an operator or keyword that
// obviously expects a continuation. Adapted from the teacher's
// isInputReady (cmd_repl_compiled.go) to Fox's token kinds.
func isInputReady(toks []token.Token) bool {
	braceBalance := 0
	for _, tok := range toks {
		switch tok.Kind {
		case token.LBRACE:
			braceBalance++
		case token.RBRACE:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(toks)
	if last == nil {
		return true
	}

	switch last.Kind {
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.STARSTAR, token.BANG, token.EQUAL_EQUAL, token.NOT_EQUAL,
		token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL,
		token.AND, token.OR, token.COMMA, token.LPAREN, token.LBRACE,
		token.IF, token.ELSE, token.WHILE, token.FUNC, token.RETURN,
		token.VAR, token.LET, token.MUT, token.AS:
		return false
	}
	return true
}

func lastNonEOF(toks []token.Token) *token.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Kind != token.EOF {
			return &toks[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every diagnostic the parser emitted
// is anchored at the same line/column as the EOF token — meaning the user
// simply hasn't finished typing yet, not that the input is malformed.
// Adapted from the teacher's allParseErrorsAtEOF, which compared against a
// typed parser.SyntaxError's own Line/Column instead of a diag.Diagnostic's
// source.Range, since Fox's parser reports through the shared diag.Engine
// rather than returning []error.
func allParseErrorsAtEOF(engine *diag.Engine, sources *source.Manager, eof token.Token) bool {
	emitted := engine.Emitted()
	if len(emitted) == 0 {
		return false
	}
	for _, d := range emitted {
		_, line, col := sources.CompleteLoc(d.Range.Begin)
		if line != int(eof.Line) || col != int(eof.Column) {
			return false
		}
	}
	return true
}
