package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/longscribe/internal/config"
	"github.com/nguyentantai21042004/longscribe/internal/summarizer"
)

// summarizeCmd produces markdown summaries for finished transcripts.
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize finished transcripts with Gemini",
	Long: `Reads every plain-text transcript in the output directory, asks
Gemini for a detailed markdown summary, and writes .md and .docx files
next to the transcripts. Requires GEMINI_API_KEYS (comma-separated).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		keys := config.GeminiAPIKeys()
		if len(keys) == 0 {
			return fmt.Errorf("GEMINI_API_KEYS is not set")
		}

		s, err := summarizer.New(keys, cfg.Summary.Model, log)
		if err != nil {
			return err
		}

		destDir := filepath.Join(cfg.Paths.Output, "summaries")
		return s.SummarizeAll(cmd.Context(), cfg.Paths.Output, destDir)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
