package workspace

// Result is the outcome of a workspace action: a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the action succeeded.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Unwrap returns the value and error in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Err returns the failure, or nil.
func (r Result[T]) Err() error {
	return r.err
}

// Match calls ok or fail depending on r and returns what it returns.
func Match[T, R any](r Result[T], ok func(T) R, fail func(error) R) R {
	if r.err != nil {
		return fail(r.err)
	}
	return ok(r.value)
}
