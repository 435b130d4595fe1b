package parser

// ResultState is the tri-state outcome of a grammar rule (spec.md §4.1):
// Found (a node was produced), NotFound (no tokens were consumed and no
// error occurred — the production simply isn't present here), or Error (the
// production started but failed, and recovery has already been attempted or
// was impossible).
type ResultState int

const (
	Found ResultState = iota
	NotFound
	ResultError
)

// Result wraps the tri-state outcome of parsing a T. Callers inspect State
// before touching Value: Value is only meaningful when State == Found.
type Result[T any] struct {
	State ResultState
	Value T
}

func found[T any](v T) Result[T]  { return Result[T]{State: Found, Value: v} }
func notFound[T any]() Result[T]  { var zero T; return Result[T]{State: NotFound, Value: zero} }
func resultErr[T any]() Result[T] { var zero T; return Result[T]{State: ResultError, Value: zero} }
