package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// transcribeCmd runs the pipeline once for a single file.
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [FILE]",
	Short: "Transcribe one audio or video file",
	Example: `  # Transcribe a recording
  longscribe transcribe lecture.mp3

  # Re-running after an interruption resumes from the last completed chunk
  longscribe transcribe lecture.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := ensureDirectories(cfg); err != nil {
			return err
		}

		p, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}

		report, err := p.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %s\n", report.RunID, report.Status)
		for _, path := range report.OutputFiles {
			fmt.Printf("  %s\n", path)
		}
		if !report.Complete() {
			fmt.Printf("Missing time ranges:\n")
			for _, gap := range report.MissingRanges {
				fmt.Printf("  chunk %d: %s - %s\n", gap.ChunkIndex, gap.Start, gap.End)
			}
			fmt.Println("Re-run the command to retry the failed chunks; completed chunks are served from cache.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}
