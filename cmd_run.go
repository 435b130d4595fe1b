package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fox/vm"
)

// runCmd compiles a Fox source file and executes it, generalizing the
// teacher's runCmd/runCompiledCmd pair into a single command: Fox has no
// separate tree-walking mode to keep alongside the compiled one.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and execute a Fox source file" }
func (*runCmd) Usage() string {
	return `run <file.fox>:
  Compile and execute a Fox program.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if p.Entry == nil {
		fmt.Fprintf(os.Stderr, "💥 %s declares no entry point (a parameterless func named \"main\")\n", path)
		return subcommands.ExitFailure
	}

	machine := vm.New(p.Module, os.Stdout)
	if err := machine.RunGlobals(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if _, _, err := machine.Call(p.Module.Functions[p.Module.EntryPoint], nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
