package pipeline

import (
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/cache"
	"github.com/nguyentantai21042004/longscribe/internal/merge"
)

// Report summarizes one finished run. A partial run lists the failed
// chunks and their missing time ranges so the caller can see exactly
// what the transcript does not cover.
type Report struct {
	RunID         string
	Status        merge.Status
	Language      string
	Resumed       bool
	ChunkCount    int
	FailedChunks  []int
	MissingRanges []merge.Gap
	OutputFiles   []string
	CacheStats    cache.Stats
	Elapsed       time.Duration
}

// Complete reports whether every chunk was transcribed.
func (r *Report) Complete() bool {
	return r.Status == merge.StatusComplete
}
