package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fox/ast"
	"fox/bytecode"
)

// buildCmd runs a Fox source file through codegen without executing it,
// generalizing the teacher's emitBytecodeCmd: where that command always
// wrote .dnic/.nic files to disk, Fox's dumps are small enough to print
// straight to stdout, gated behind the same kind of opt-in flags.
type buildCmd struct {
	dumpAST      bool
	dumpBytecode bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "compile a Fox source file without running it" }
func (*buildCmd) Usage() string {
	return `build [-dump-ast] [-dump-bytecode] <file.fox>:
  Lex, parse, check, and lower a Fox program, reporting diagnostics.
`
}

func (cmd *buildCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpAST, "dump-ast", false, "print the parsed AST as JSON")
	f.BoolVar(&cmd.dumpBytecode, "dump-bytecode", false, "print the lowered bytecode module's disassembly")
}

func (cmd *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no file provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	p, err := compile(path, string(data))
	printDiagnostics(os.Stderr, p.Engine)
	if err != nil {
		return subcommands.ExitFailure
	}

	if cmd.dumpAST {
		out, jsonErr := ast.DumpJSON(p.Unit)
		if jsonErr != nil {
			fmt.Fprintf(os.Stderr, "💥 AST dump error: %v\n", jsonErr)
			return subcommands.ExitFailure
		}
		fmt.Println(out)
	}

	if cmd.dumpBytecode {
		fmt.Print(bytecode.Dump(p.Module))
	}

	if !cmd.dumpAST && !cmd.dumpBytecode {
		fmt.Printf("%s: ok (%d functions, %d globals)\n", path, len(p.Module.Functions), len(p.Module.Globals))
	}
	return subcommands.ExitSuccess
}
