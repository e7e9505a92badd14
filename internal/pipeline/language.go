package pipeline

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// detectLanguage guesses the transcript language for providers that do
// not report one. Returns an ISO 639-1 code, or empty when detection
// is inconclusive.
func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	detector := lingua.NewLanguageDetectorBuilder().FromAllSpokenLanguages().Build()
	language, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
