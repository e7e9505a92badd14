package media

import (
	"github.com/nguyentantai21042004/longscribe/internal/logger"
	"github.com/nguyentantai21042004/longscribe/pkg/executor"
)

type implExtractor struct {
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Extractor backed by ffprobe and ffmpeg.
func New(exec executor.Executor, log logger.Logger) Extractor {
	return &implExtractor{
		executor: exec,
		logger:   log,
	}
}
