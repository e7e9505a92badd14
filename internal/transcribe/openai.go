package transcribe

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/longscribe/internal/logger"
)

type openaiTranscriber struct {
	client *openai.Client
	logger logger.Logger
}

// NewOpenAI creates a Transcriber backed by the OpenAI audio API.
func NewOpenAI(apiKey string, log logger.Logger) (Transcriber, error) {
	if apiKey == "" {
		return nil, &PermanentError{Reason: "OPENAI_API_KEY is not set"}
	}
	return &openaiTranscriber{
		client: openai.NewClient(apiKey),
		logger: log,
	}, nil
}

// New selects a provider implementation by configured name.
func New(provider, apiKey string, log logger.Logger) (Transcriber, error) {
	switch provider {
	case "openai":
		return NewOpenAI(apiKey, log)
	default:
		return nil, fmt.Errorf("unknown transcription provider: %q", provider)
	}
}

func (t *openaiTranscriber) Transcribe(ctx context.Context, audioPath string, params Params) (Result, error) {
	req := openai.AudioRequest{
		Model:    params.Model,
		FilePath: audioPath,
		Language: params.Language,
		Prompt:   params.Prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return Result{}, classifyOpenAIError(err)
	}

	result := Result{
		Text:     resp.Text,
		Language: resp.Language,
	}
	for _, seg := range resp.Segments {
		result.Spans = append(result.Spans, Span{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	t.logger.Debug(ctx, "Transcribed %s: %d spans, language=%s", audioPath, len(result.Spans), result.Language)
	return result, nil
}

// classifyOpenAIError maps provider failures onto the retry taxonomy.
// Rate limits and server-side errors are transient; authentication
// and payload rejections are permanent for the chunk.
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Reason: "request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &TransientError{Reason: "rate limited by provider", Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &TransientError{Reason: fmt.Sprintf("provider unavailable (HTTP %d)", apiErr.HTTPStatusCode), Err: err}
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &PermanentError{Reason: "authentication rejected", Err: err}
		case apiErr.HTTPStatusCode == 413:
			return &PermanentError{Reason: "payload too large", Err: err}
		default:
			return &PermanentError{Reason: fmt.Sprintf("request rejected (HTTP %d)", apiErr.HTTPStatusCode), Err: err}
		}
	}

	// Connection resets and DNS hiccups land here.
	return &TransientError{Reason: "network failure", Err: err}
}
