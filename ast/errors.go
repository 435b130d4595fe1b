package ast

import "fmt"

// InternalError marks a programmer-fatal condition: a compiler invariant was
// violated, not a problem with the user's program (spec.md §7). It is always
// panicked, never returned, and is recovered only at the CLI boundary.
type InternalError struct {
	Message string
}

func (e InternalError) Error() string {
	return fmt.Sprintf("🤖 InternalError: %s", e.Message)
}

// Unreachable panics with an InternalError; call it from switch arms and
// branches that later phases guarantee can't be reached (e.g. a codegen
// visitor reached a node kind sema should have already rejected).
func Unreachable(format string, args ...any) {
	panic(InternalError{Message: fmt.Sprintf(format, args...)})
}
