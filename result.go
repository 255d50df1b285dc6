package clubio

// Result is the uniform outcome of every API operation: exactly one of
// Data or Error is set, never both, never neither. It is constructed and
// consumed synchronously by the caller and never persisted.
type Result[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Ok wraps a success payload.
func Ok[T any](data T) Result[T] {
	return Result[T]{Data: &data}
}

// Fail wraps an error description. An empty message is normalized so the
// invariant "exactly one side set" holds even for zero-value errors.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = msgUnknownError
	}
	return Result[T]{Error: msg}
}

// OK reports whether the result carries a success payload.
func (r Result[T]) OK() bool {
	return r.Error == ""
}

// Value returns the payload or the zero value when the result is an error.
func (r Result[T]) Value() T {
	if r.Data != nil {
		return *r.Data
	}
	var zero T
	return zero
}
