package vm

import (
	"fmt"
	"io"
)

// builtin is a host-provided handler for one intrinsic (SPEC_FULL.md §12):
// it reads its arguments straight out of the VM's current register window
// and writes output, never returning a value — all three builtins are
// (T) -> void.
type builtin func(vm *VM, argsBase int)

// builtinsFor maps a module's bytecode.BCModule.Builtins name to its host
// implementation, resolved once when the VM is constructed so Call's
// dispatch is a plain slice index, not a map lookup per call.
func builtinsFor(names []string, out io.Writer) []builtin {
	table := map[string]builtin{
		"printInt": func(vm *VM, argsBase int) {
			fmt.Fprintln(out, vm.getRegInt(argsBase))
		},
		"printDouble": func(vm *VM, argsBase int) {
			fmt.Fprintln(out, vm.getRegDouble(argsBase))
		},
		"printString": func(vm *VM, argsBase int) {
			fmt.Fprintln(out, vm.getRegString(argsBase))
		},
	}

	fns := make([]builtin, len(names))
	for i, name := range names {
		fn, ok := table[name]
		if !ok {
			panic(RuntimeError{Message: "unresolvable builtin " + name})
		}
		fns[i] = fn
	}
	return fns
}
