package model

// Result is the outcome of a best-effort step: a value, or the reason it was skipped.
type Result[T any] struct {
	Value  T
	Reason string
	ok     bool
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, ok: true}
}

func Skipped[T any](reason string) Result[T] {
	return Result[T]{Reason: reason}
}

func (r Result[T]) IsOk() bool { return r.ok }
