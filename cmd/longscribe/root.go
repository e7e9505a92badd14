package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/longscribe/internal/cache"
	"github.com/nguyentantai21042004/longscribe/internal/config"
	"github.com/nguyentantai21042004/longscribe/internal/logger"
	"github.com/nguyentantai21042004/longscribe/internal/media"
	"github.com/nguyentantai21042004/longscribe/internal/pipeline"
	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
	"github.com/nguyentantai21042004/longscribe/pkg/executor"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "longscribe",
	Short: "Transcribe long recordings by chunking them through a speech-to-text service",
	Long: `longscribe splits long audio or video recordings into bounded chunks,
transcribes them concurrently with caching and retries, and merges the
results into a single timestamped transcript. Interrupted runs resume
from the last completed chunk.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to configuration file")
}

// loadConfig reads the configuration and builds the logger every
// command shares.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level), nil
}

// buildPipeline wires the concrete pipeline from configuration.
func buildPipeline(cfg *config.Config, log logger.Logger) (pipeline.Pipeline, error) {
	transcriber, err := transcribe.New(cfg.Provider.Name, config.OpenAIAPIKey(), log)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL())
	if err != nil {
		return nil, err
	}

	extractor := media.New(executor.New(), log)
	return pipeline.New(cfg, extractor, transcriber, c, log), nil
}

// ensureDirectories creates the working directories up front so the
// first run does not fail halfway through.
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.State,
		cfg.Paths.Temp,
		cfg.Cache.Dir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
