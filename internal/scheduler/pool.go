package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/cache"
	"github.com/nguyentantai21042004/longscribe/internal/logger"
	"github.com/nguyentantai21042004/longscribe/internal/planner"
	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
)

// Job is one chunk ready for transcription.
type Job struct {
	Segment   planner.Segment
	AudioPath string
	CacheKey  string
	Params    transcribe.Params
}

// Outcome is the terminal result of one job. Err is nil on success;
// a failed chunk carries a PermanentError and does not abort the run.
type Outcome struct {
	Index     int
	Result    transcribe.Result
	FromCache bool
	Attempts  int
	Err       error
}

// Succeeded reports whether the chunk produced a usable result.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Recorder persists chunk completions. Satisfied by *state.Manager;
// its implementation serializes writes per run.
type Recorder interface {
	RecordChunkSuccess(index int, resultChecksum, cacheKey string) error
}

// Config bounds the pool's dispatch behavior.
type Config struct {
	Concurrency    int
	RequestTimeout time.Duration
	Policy         RetryPolicy
	Limiter        *RateLimiter
}

// Pool dispatches chunk transcriptions under bounded concurrency,
// consulting the cache before each call and retrying transient
// failures with backoff. Completion order is unspecified; every
// outcome carries its chunk index so downstream ordering is
// recoverable.
type Pool struct {
	transcriber transcribe.Transcriber
	cache       *cache.Cache
	recorder    Recorder
	cfg         Config
	logger      logger.Logger
}

// New creates a worker pool.
func New(t transcribe.Transcriber, c *cache.Cache, rec Recorder, cfg Config, log logger.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	return &Pool{
		transcriber: t,
		cache:       c,
		recorder:    rec,
		cfg:         cfg,
		logger:      log,
	}
}

// Run processes all jobs and returns one outcome per job, in job
// order. Cancelling ctx stops dispatching new chunks immediately;
// chunks already in flight finish or time out on their own.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	sem := newSemaphore(p.cfg.Concurrency)

	var wg sync.WaitGroup
	for i, job := range jobs {
		if err := sem.acquire(ctx); err != nil {
			// Dispatch stopped: mark this and all remaining jobs.
			for j := i; j < len(jobs); j++ {
				outcomes[j] = Outcome{Index: jobs[j].Segment.Index, Err: err}
			}
			break
		}

		wg.Add(1)
		go func(slot int, job Job) {
			defer wg.Done()
			defer sem.release()
			outcomes[slot] = p.runJob(ctx, job)
		}(i, job)
	}

	wg.Wait()
	return outcomes
}

func (p *Pool) runJob(ctx context.Context, job Job) Outcome {
	index := job.Segment.Index

	if p.cache != nil {
		if result, ok := p.cache.Get(job.CacheKey); ok {
			p.logger.Debug(ctx, "Chunk %d served from cache", index)
			p.recordSuccess(ctx, index, result, job.CacheKey)
			return Outcome{Index: index, Result: result, FromCache: true}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= p.cfg.Policy.MaxAttempts; attempt++ {
		if err := p.waitLimiter(ctx); err != nil {
			return Outcome{Index: index, Attempts: attempt - 1, Err: err}
		}

		result, err := p.callOnce(ctx, job)
		if err == nil {
			p.storeResult(ctx, index, job.CacheKey, result)
			p.recordSuccess(ctx, index, result, job.CacheKey)
			return Outcome{Index: index, Result: result, Attempts: attempt}
		}

		if ctx.Err() != nil {
			return Outcome{Index: index, Attempts: attempt, Err: ctx.Err()}
		}

		lastErr = err
		if !retryable(err) {
			p.logger.Warn(ctx, "Chunk %d failed permanently on attempt %d: %v", index, attempt, err)
			return Outcome{Index: index, Attempts: attempt, Err: err}
		}

		if attempt < p.cfg.Policy.MaxAttempts {
			delay := p.cfg.Policy.Delay(attempt)
			p.logger.Warn(ctx, "Chunk %d attempt %d failed (%v), retrying in %s", index, attempt, err, delay)
			if err := sleep(ctx, delay); err != nil {
				return Outcome{Index: index, Attempts: attempt, Err: err}
			}
		}
	}

	// Retries exhausted: the transient failure escalates to permanent.
	escalated := &transcribe.PermanentError{
		Reason: fmt.Sprintf("retries exhausted after %d attempts", p.cfg.Policy.MaxAttempts),
		Err:    lastErr,
	}
	p.logger.Error(ctx, "Chunk %d failed: %v", index, escalated)
	return Outcome{Index: index, Attempts: p.cfg.Policy.MaxAttempts, Err: escalated}
}

// callOnce performs one transcription attempt under the per-chunk
// timeout. A timeout counts as a transient failure, not a run abort.
func (p *Pool) callOnce(ctx context.Context, job Job) (transcribe.Result, error) {
	callCtx := ctx
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := p.transcriber.Transcribe(callCtx, job.AudioPath, job.Params)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return transcribe.Result{}, &transcribe.TransientError{Reason: "chunk call timed out", Err: err}
	}
	return result, err
}

// storeResult writes the cache entry before the state record, so a
// recorded success always has a retrievable result behind it.
func (p *Pool) storeResult(ctx context.Context, index int, key string, result transcribe.Result) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(key, result); err != nil {
		p.logger.Warn(ctx, "Chunk %d result not cached: %v", index, err)
	}
}

func (p *Pool) recordSuccess(ctx context.Context, index int, result transcribe.Result, cacheKey string) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordChunkSuccess(index, result.Checksum(), cacheKey); err != nil {
		p.logger.Warn(ctx, "Chunk %d success not persisted: %v", index, err)
	}
}

func (p *Pool) waitLimiter(ctx context.Context) error {
	if p.cfg.Limiter == nil {
		return nil
	}
	return p.cfg.Limiter.Wait(ctx)
}

func retryable(err error) bool {
	var transient *transcribe.TransientError
	return errors.As(err, &transient)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
