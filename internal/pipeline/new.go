package pipeline

import (
	"github.com/nguyentantai21042004/longscribe/internal/cache"
	"github.com/nguyentantai21042004/longscribe/internal/config"
	"github.com/nguyentantai21042004/longscribe/internal/logger"
	"github.com/nguyentantai21042004/longscribe/internal/media"
	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
)

type implPipeline struct {
	cfg         *config.Config
	extractor   media.Extractor
	transcriber transcribe.Transcriber
	cache       *cache.Cache
	logger      logger.Logger
}

// New creates a new Pipeline instance.
func New(cfg *config.Config, extractor media.Extractor, transcriber transcribe.Transcriber, c *cache.Cache, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:         cfg,
		extractor:   extractor,
		transcriber: transcriber,
		cache:       c,
		logger:      log,
	}
}
