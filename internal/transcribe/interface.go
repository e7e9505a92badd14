package transcribe

import "context"

// Transcriber sends one bounded-size audio payload to an external
// transcription service. Implementations classify their failures as
// TransientError or PermanentError so the scheduler can decide
// whether to retry.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, params Params) (Result, error)
}
