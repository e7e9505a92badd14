package transcribe

import "fmt"

// TransientError marks a failure worth retrying: network timeout,
// rate limit, or service unavailability.
type TransientError struct {
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient transcription failure: %s", e.Reason)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a failure that retrying cannot fix: bad
// credentials, rejected payload, malformed request.
type PermanentError struct {
	Reason string
	Err    error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent transcription failure: %s", e.Reason)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}
