package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/longscribe/internal/cache"
	"github.com/nguyentantai21042004/longscribe/internal/media"
	"github.com/nguyentantai21042004/longscribe/internal/merge"
	"github.com/nguyentantai21042004/longscribe/internal/planner"
	"github.com/nguyentantai21042004/longscribe/internal/scheduler"
	"github.com/nguyentantai21042004/longscribe/internal/state"
	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
)

// Run orchestrates the entire transcription pipeline for one file.
func (p *implPipeline) Run(ctx context.Context, mediaPath string) (*Report, error) {
	startTime := time.Now()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting transcription run: %s", mediaPath)
	p.logger.Info(ctx, "========================================")

	info, err := p.extractor.Probe(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("probe media: %w", err)
	}
	p.logger.Info(ctx, "Media probed: duration=%s size=%d checksum=%s",
		info.Duration, info.Size, shortChecksum(info.Checksum))

	runID := runIDFor(info.Checksum)
	manager, resumed, err := p.openState(ctx, runID, info.Checksum)
	if err != nil {
		return nil, err
	}

	plan, err := planner.Plan(info, planner.Config{
		MaxChunkDuration: p.cfg.Chunking.MaxChunkDuration(),
		MaxChunkBytes:    p.cfg.Chunking.MaxChunkBytes,
		Overlap:          p.cfg.Chunking.Overlap(),
	})
	if err != nil {
		p.fail(ctx, manager)
		return nil, fmt.Errorf("plan chunks: %w", err)
	}
	if err := manager.SetChunkCount(len(plan)); err != nil {
		p.fail(ctx, manager)
		return nil, fmt.Errorf("record chunk count: %w", err)
	}
	p.logger.Info(ctx, "Planned %d chunks", len(plan))

	params := transcribe.Params{
		Model:    p.cfg.Provider.Model,
		Language: p.cfg.Provider.Language,
		Prompt:   p.cfg.Provider.Prompt,
	}

	p.advance(ctx, manager, state.StageChunking)
	jobs, cleanup, err := p.prepareChunks(ctx, runID, mediaPath, info, plan, params)
	if err != nil {
		p.fail(ctx, manager)
		return nil, err
	}
	defer cleanup()

	p.advance(ctx, manager, state.StageTranscribing)
	pool := scheduler.New(p.transcriber, p.cache, manager, scheduler.Config{
		Concurrency:    p.cfg.Transcription.MaxConcurrent,
		RequestTimeout: p.cfg.Transcription.RequestTimeout(),
		Policy: scheduler.RetryPolicy{
			MaxAttempts: p.cfg.Transcription.MaxAttempts,
			BaseDelay:   p.cfg.Transcription.BaseDelay(),
			MaxDelay:    30 * time.Second,
			Jitter:      0.2,
		},
		Limiter: scheduler.NewRateLimiter(
			p.cfg.Transcription.RateLimit.MaxRequests,
			p.cfg.Transcription.RateLimit.Window(),
		),
	}, p.logger)

	outcomes := pool.Run(ctx, jobs)
	if ctx.Err() != nil {
		p.fail(ctx, manager)
		return nil, ctx.Err()
	}

	p.advance(ctx, manager, state.StageMerging)
	results := make([]merge.ChunkResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = merge.ChunkResult{Index: o.Index, Result: o.Result, Err: o.Err}
	}

	transcript, err := merge.Merge(plan, info.Duration, results)
	if err != nil {
		p.fail(ctx, manager)
		return nil, fmt.Errorf("merge results: %w", err)
	}

	if transcript.Language == "" {
		transcript.Language = detectLanguage(transcript.Text())
	}

	outputs, err := p.writeOutputs(ctx, mediaPath, transcript)
	if err != nil {
		p.fail(ctx, manager)
		return nil, err
	}

	report := &Report{
		RunID:         runID,
		Status:        transcript.Status,
		Language:      transcript.Language,
		Resumed:       resumed,
		ChunkCount:    len(plan),
		MissingRanges: transcript.Gaps,
		OutputFiles:   outputs,
		CacheStats:    p.cache.Stats(),
		Elapsed:       time.Since(startTime),
	}
	for _, gap := range transcript.Gaps {
		report.FailedChunks = append(report.FailedChunks, gap.ChunkIndex)
	}

	if transcript.Status == merge.StatusComplete {
		p.advance(ctx, manager, state.StageComplete)
		if err := manager.Discard(); err != nil {
			p.logger.Warn(ctx, "Completed run state not discarded: %v", err)
		}
	} else {
		// Partial runs keep their state so a later invocation can
		// retry the failed chunks with everything else served from
		// cache.
		p.advance(ctx, manager, state.StagePartial)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Run %s finished: %s (%d/%d chunks, %s)",
		runID, report.Status, report.ChunkCount-len(report.FailedChunks), report.ChunkCount, report.Elapsed)
	for _, gap := range report.MissingRanges {
		p.logger.Warn(ctx, "Missing transcription for chunk %d: %s - %s", gap.ChunkIndex, gap.Start, gap.End)
	}
	p.logger.Info(ctx, "Cache: %d hits, %d misses", report.CacheStats.Hits, report.CacheStats.Misses)
	p.logger.Info(ctx, "========================================")

	return report, nil
}

// openState loads the run's persisted state or starts a fresh one.
// Corrupt state aborts with an actionable message; a state recorded
// for different media bytes is discarded and the run starts over.
func (p *implPipeline) openState(ctx context.Context, runID, checksum string) (*state.Manager, bool, error) {
	manager, err := state.Load(p.cfg.Paths.State, runID)
	if err == nil {
		if manager.Resumable(checksum) {
			completed := len(manager.CompletedChunks())
			p.logger.Info(ctx, "Resuming run %s: %d chunks already completed", runID, completed)
			return manager, true, nil
		}
		p.logger.Info(ctx, "Existing state for run %s is stale, starting fresh", runID)
		if err := manager.Discard(); err != nil {
			return nil, false, fmt.Errorf("discard stale state: %w", err)
		}
	} else if !errors.Is(err, state.ErrNotFound) {
		var corrupt *state.CorruptError
		if errors.As(err, &corrupt) {
			return nil, false, fmt.Errorf("workflow state for run %s is corrupt, discard %s and restart the run: %w", runID, corrupt.Path, err)
		}
		return nil, false, fmt.Errorf("load workflow state: %w", err)
	}

	manager, err = state.Create(p.cfg.Paths.State, runID, checksum)
	if err != nil {
		return nil, false, fmt.Errorf("create workflow state: %w", err)
	}
	return manager, false, nil
}

// prepareChunks extracts each planned segment into a per-run temp
// workspace. Segments whose results are already cached are not
// extracted; the pool serves them from cache without touching the
// audio.
func (p *implPipeline) prepareChunks(ctx context.Context, runID, mediaPath string, info media.Info, plan []planner.Segment, params transcribe.Params) ([]scheduler.Job, func(), error) {
	workDir := filepath.Join(p.cfg.Paths.Temp, fmt.Sprintf("run-%s-%s", runID, uuid.NewString()))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create chunk workspace: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(workDir); err != nil {
			p.logger.Warn(ctx, "Chunk workspace not removed: %v", err)
		}
	}

	jobs := make([]scheduler.Job, len(plan))
	extracted := 0
	for i, seg := range plan {
		key := cache.Key(info.Checksum, i, params)
		jobs[i] = scheduler.Job{Segment: seg, CacheKey: key, Params: params}

		if p.cache.Contains(key) {
			continue
		}

		chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%04d.wav", i))
		if err := p.extractor.ExtractSegment(ctx, mediaPath, chunkPath, seg.Start, seg.Duration()); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("extract chunk %d: %w", i, err)
		}
		jobs[i].AudioPath = chunkPath
		extracted++
	}

	p.logger.Info(ctx, "Extracted %d of %d chunks (%d cached)", extracted, len(plan), len(plan)-extracted)
	return jobs, cleanup, nil
}

// writeOutputs renders every projection of the transcript next to
// each other in the output directory.
func (p *implPipeline) writeOutputs(ctx context.Context, mediaPath string, transcript merge.Transcript) ([]string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	var files []string

	write := func(ext string, data []byte) error {
		path := filepath.Join(p.cfg.Paths.Output, base+ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
		return nil
	}

	if err := write(".txt", []byte(transcript.Text()+"\n")); err != nil {
		return nil, err
	}
	jsonData, err := transcript.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode transcript JSON: %w", err)
	}
	if err := write(".json", jsonData); err != nil {
		return nil, err
	}
	if err := write(".srt", []byte(transcript.SRT())); err != nil {
		return nil, err
	}
	if err := write(".vtt", []byte(transcript.VTT())); err != nil {
		return nil, err
	}

	docxPath := filepath.Join(p.cfg.Paths.Output, base+".docx")
	if err := transcript.DOCX(base, docxPath); err != nil {
		p.logger.Warn(ctx, "DOCX export failed: %v", err)
	} else {
		files = append(files, docxPath)
	}

	return files, nil
}

// advance moves the run forward, tolerating transitions a resumed run
// has already passed.
func (p *implPipeline) advance(ctx context.Context, manager *state.Manager, stage state.Stage) {
	if err := manager.Transition(stage); err != nil {
		p.logger.Debug(ctx, "Stage not advanced to %s: %v", stage, err)
	}
}

func (p *implPipeline) fail(ctx context.Context, manager *state.Manager) {
	if err := manager.Transition(state.StageFailed); err != nil {
		p.logger.Warn(ctx, "Run not marked failed: %v", err)
	}
}

// runIDFor derives the run identifier from the media checksum, so
// re-running the same bytes finds the same state record.
func runIDFor(checksum string) string {
	return shortChecksum(checksum)
}

func shortChecksum(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12]
	}
	return checksum
}
