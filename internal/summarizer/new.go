package summarizer

import (
	"fmt"

	"github.com/nguyentantai21042004/longscribe/internal/logger"
)

type implSummarizer struct {
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

// New creates a Summarizer that rotates through the supplied Gemini
// API keys when one is rate limited.
func New(apiKeys []string, model string, log logger.Logger) (Summarizer, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &implSummarizer{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}, nil
}
