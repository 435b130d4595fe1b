package bytecode

import "fmt"

// CodegenError marks a fatal condition in bytecode construction — a jump
// distance too large for its encoded offset, or a malformed Builder call —
// that can only come from a bug in codegen itself, never from a user's Fox
// program. It is recovered only at the CLI boundary, matching ast.InternalError.
type CodegenError struct {
	Message string
}

func (e CodegenError) Error() string {
	return fmt.Sprintf("🤖 CodegenError: %s", e.Message)
}
