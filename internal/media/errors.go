package media

import "fmt"

// InvalidMediaError reports a source whose duration or size cannot be
// determined. It is fatal for the run, never retried.
type InvalidMediaError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidMediaError) Error() string {
	return fmt.Sprintf("invalid media %s: %s", e.Path, e.Reason)
}

func (e *InvalidMediaError) Unwrap() error {
	return e.Err
}
