package summarizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"
)

const summaryPrompt = `You are an expert at analyzing long-form audio transcripts. Based on the transcript below, write a DETAILED summary in the transcript's own language.

Requirements:
- Start with a one-sentence title describing the overall topic
- List ALL main points in the order they appear
- Explain each point in detail, including important caveats and takeaways
- Keep technical terms as spoken, adding a short gloss in parentheses where helpful
- Use markdown: headings, bullet points, bold for key terms
- If the transcript contains "[no transcription for ...]" markers, add a final section listing those missing time ranges
- End with a "Key takeaways" section

Transcript:
---
%s
---`

// SummarizeAll reads every plain-text transcript in transcriptDir,
// calls Gemini for each, and writes a .md and .docx summary into
// destDir. Transcripts that already have a summary are skipped, so
// the command is safe to re-run after adding new recordings.
func (s *implSummarizer) SummarizeAll(ctx context.Context, transcriptDir, destDir string) error {
	transcripts, err := s.discoverTranscripts(transcriptDir)
	if err != nil {
		return fmt.Errorf("discover transcripts: %w", err)
	}

	if len(transcripts) == 0 {
		s.logger.Info(ctx, "No transcripts found in %s", transcriptDir)
		return nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	s.logger.Info(ctx, "Found %d transcripts to summarize", len(transcripts))

	successCount := 0
	failCount := 0

	for i, path := range transcripts {
		name := strings.TrimSuffix(filepath.Base(path), ".txt")
		mdPath := filepath.Join(destDir, name+".md")

		if _, err := os.Stat(mdPath); err == nil {
			s.logger.Debug(ctx, "Summary exists, skipping: %s", name)
			continue
		}

		s.logger.Info(ctx, "[%d/%d] Summarizing: %s", i+1, len(transcripts), name)

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Error(ctx, "Failed to read %s: %v", path, err)
			failCount++
			continue
		}

		summary, err := s.callGemini(ctx, string(content))
		if err != nil {
			s.logger.Error(ctx, "Failed to summarize %s: %v", name, err)
			failCount++
			continue
		}

		md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
			name,
			time.Now().Format("2006-01-02 15:04"),
			strings.TrimSpace(summary),
		)

		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			s.logger.Error(ctx, "Failed to write %s: %v", mdPath, err)
			failCount++
			continue
		}

		docxPath := filepath.Join(destDir, name+".docx")
		if err := markdownToDocx(name, md, docxPath); err != nil {
			s.logger.Warn(ctx, "DOCX export failed for %s: %v", name, err)
		}

		s.logger.Info(ctx, "[DONE] %s -> %s", name, mdPath)
		successCount++
	}

	s.logger.Info(ctx, "Summary complete: %d success, %d failed", successCount, failCount)
	return nil
}

// callGemini sends the transcript to Gemini and returns the summary
// text. Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, transcript string) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, transcript)

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.apiKeys[s.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return text, nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func (s *implSummarizer) discoverTranscripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) == ".txt" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
