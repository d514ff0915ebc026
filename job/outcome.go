package job

// Outcome is what one chunk reports: either its values or an error.
type Outcome[R any] struct {
	Index  int
	Values []R
	Err    error
}

// Success builds the outcome of a chunk that produced values.
func Success[R any](index int, values []R) Outcome[R] {
	return Outcome[R]{Index: index, Values: values}
}

// Failure builds the outcome of a chunk that failed with err.
func Failure[R any](index int, err error) Outcome[R] {
	return Outcome[R]{Index: index, Err: err}
}

// Failed reports whether the outcome carries an error.
func (o Outcome[R]) Failed() bool {
	return o.Err != nil
}
