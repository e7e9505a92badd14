package config

import (
	"fmt"
	"time"
)

type Config struct {
	Provider      ProviderConfig      `yaml:"provider"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Cache         CacheConfig         `yaml:"cache"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Summary       SummaryConfig       `yaml:"summary"`
}

type ProviderConfig struct {
	Name     string `yaml:"name"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Prompt   string `yaml:"prompt"`
}

type ChunkingConfig struct {
	MaxChunkSeconds float64 `yaml:"max_chunk_seconds"`
	MaxChunkBytes   int64   `yaml:"max_chunk_bytes"`
	OverlapSeconds  float64 `yaml:"overlap_seconds"`
}

type TranscriptionConfig struct {
	MaxConcurrent         int             `yaml:"max_concurrent"`
	MaxAttempts           int             `yaml:"max_attempts"`
	BaseDelayMillis       int             `yaml:"base_delay_ms"`
	RequestTimeoutSeconds int             `yaml:"request_timeout_seconds"`
	RateLimit             RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	MaxRequests   int `yaml:"max_requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type CacheConfig struct {
	Dir      string `yaml:"dir"`
	TTLHours int    `yaml:"ttl_hours"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	State  string `yaml:"state"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SummaryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// MaxChunkDuration returns the configured chunk duration cap.
func (c ChunkingConfig) MaxChunkDuration() time.Duration {
	return time.Duration(c.MaxChunkSeconds * float64(time.Second))
}

// Overlap returns the configured inter-chunk overlap.
func (c ChunkingConfig) Overlap() time.Duration {
	return time.Duration(c.OverlapSeconds * float64(time.Second))
}

// BaseDelay returns the initial retry backoff delay.
func (c TranscriptionConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMillis) * time.Millisecond
}

// RequestTimeout returns the per-chunk transcription call timeout.
func (c TranscriptionConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Window returns the rate limit sliding window size.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// TTL returns the cache entry time-to-live.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c *Config) Validate() error {
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Chunking.MaxChunkSeconds < 0 {
		return fmt.Errorf("chunking.max_chunk_seconds must be positive")
	}
	if c.Chunking.OverlapSeconds < 0 {
		return fmt.Errorf("chunking.overlap_seconds must not be negative")
	}
	if c.Chunking.MaxChunkSeconds > 0 && c.Chunking.OverlapSeconds >= c.Chunking.MaxChunkSeconds {
		return fmt.Errorf("chunking.overlap_seconds must be smaller than chunking.max_chunk_seconds")
	}

	if c.Provider.Name == "" {
		c.Provider.Name = "openai"
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "whisper-1"
	}
	if c.Chunking.MaxChunkSeconds == 0 {
		c.Chunking.MaxChunkSeconds = 600
	}
	if c.Chunking.MaxChunkBytes == 0 {
		c.Chunking.MaxChunkBytes = 25 * 1024 * 1024
	}
	if c.Chunking.OverlapSeconds == 0 {
		c.Chunking.OverlapSeconds = 5
	}
	if c.Transcription.MaxConcurrent == 0 {
		c.Transcription.MaxConcurrent = 3
	}
	if c.Transcription.MaxAttempts == 0 {
		c.Transcription.MaxAttempts = 4
	}
	if c.Transcription.BaseDelayMillis == 0 {
		c.Transcription.BaseDelayMillis = 500
	}
	if c.Transcription.RequestTimeoutSeconds == 0 {
		c.Transcription.RequestTimeoutSeconds = 120
	}
	if c.Transcription.RateLimit.MaxRequests == 0 {
		c.Transcription.RateLimit.MaxRequests = 50
	}
	if c.Transcription.RateLimit.WindowSeconds == 0 {
		c.Transcription.RateLimit.WindowSeconds = 60
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = 24 * 14
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.State == "" {
		c.Paths.State = "data/state"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Summary.Model == "" {
		c.Summary.Model = "gemini-2.5-flash"
	}

	return nil
}
