package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/longscribe/internal/watcher"
)

// watchCmd monitors the input directory and transcribes every media
// file dropped into it.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input directory and transcribe new media files",
	Args:  cobra.NoArgs,
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

		handler := func(ctx context.Context, filePath string) error {
			_, err := p.Run(ctx, filePath)
			return err
		}

		w, err := watcher.New(cfg.Paths.Input, handler, log, 1)
		if err != nil {
			return err
		}
		defer w.Stop()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				errChan <- err
			}
		}()

		log.Info(ctx, "Watching %s, press Ctrl+C to stop", cfg.Paths.Input)

		select {
		case <-sigChan:
			log.Info(ctx, "Shutdown signal received")
			cancel()
			return nil
		case err := <-errChan:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
