package merge

import "fmt"

// InvariantError reports a chunk result set that violates the planner
// contract (gaps, bad ordering, mismatched counts). It indicates a bug
// upstream, not a transient condition, so the run aborts immediately.
type InvariantError struct {
	Reason string
	Err    error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aggregation invariant violated: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("aggregation invariant violated: %s", e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
