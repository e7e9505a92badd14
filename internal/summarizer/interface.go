package summarizer

import "context"

// Summarizer reads plain-text transcripts and produces LLM-generated
// markdown summaries, plus a DOCX rendering of each summary.
type Summarizer interface {
	SummarizeAll(ctx context.Context, transcriptDir, destDir string) error
}
