package media

import (
	"context"
	"time"
)

// Info describes an ingested media source. The checksum is the stable
// identity used for cache keys and resume detection.
type Info struct {
	Path     string
	Duration time.Duration
	Size     int64
	Checksum string
}

// Extractor probes media metadata and cuts time-bounded sub-segments
// into the 16kHz mono WAV format the transcription provider accepts.
type Extractor interface {
	Probe(ctx context.Context, path string) (Info, error)
	ExtractSegment(ctx context.Context, src, dst string, start, duration time.Duration) error
}
