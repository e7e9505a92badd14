package pipeline

import "context"

// Pipeline runs the full transcription workflow for one media file:
// probe, plan, chunk, transcribe, merge, write outputs.
type Pipeline interface {
	Run(ctx context.Context, mediaPath string) (*Report, error)
}
