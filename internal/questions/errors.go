package questions

import "fmt"

// ExternalFetchError wraps a failure from a question or hint backend.
// Callers recover from it with local content.
type ExternalFetchError struct {
	Source string
	Err    error
}

func (e *ExternalFetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
}

func (e *ExternalFetchError) Unwrap() error { return e.Err }

func fetchErr(source string, err error) error {
	return &ExternalFetchError{Source: source, Err: err}
}
