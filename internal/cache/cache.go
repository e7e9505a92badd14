package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
)

// Cache is a content-addressed store of chunk transcription results,
// one JSON file per entry, with time-based eviction. Entries past
// their TTL are treated as misses and removed. Concurrent writes to
// the same key are idempotent (same inputs produce the same result),
// so last-write-wins is acceptable.
type Cache struct {
	dir string
	ttl time.Duration

	mu     sync.Mutex
	hits   int
	misses int
}

// Stats reports cache effectiveness for the run summary.
type Stats struct {
	Hits    int
	Misses  int
	HitRate float64
	Size    int
}

type entry struct {
	CachedAt  int64             `json:"cached_at"`
	ExpiresAt int64             `json:"expires_at"`
	Result    transcribe.Result `json:"result"`
}

// New opens a cache rooted at dir, creating the directory if needed.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Key derives the deterministic cache key for one chunk request:
// source content checksum, chunk index, and the canonical encoding of
// every parameter that affects output.
func Key(mediaChecksum string, index int, params transcribe.Params) string {
	raw := fmt.Sprintf("%s\x00%d\x00%s", mediaChecksum, index, params.Canonical())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the stored result for key, or false on miss. Expired
// and unparsable entries count as misses and are removed.
func (c *Cache) Get(key string) (transcribe.Result, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		c.recordMiss()
		return transcribe.Result{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(c.path(key))
		c.recordMiss()
		return transcribe.Result{}, false
	}

	if c.expired(e) {
		os.Remove(c.path(key))
		c.recordMiss()
		return transcribe.Result{}, false
	}

	c.recordHit()
	return e.Result, true
}

// Contains reports whether a live entry exists for key. Unlike Get it
// does not count toward hit/miss statistics, so callers can probe
// before deciding whether to prepare a request.
func (c *Cache) Contains(key string) bool {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	return !c.expired(e)
}

// Put stores a result under key. Expired entries are opportunistically
// evicted first. The write is atomic (temp file + rename) so readers
// never observe a partial entry.
func (c *Cache) Put(key string, result transcribe.Result) error {
	c.EvictExpired()

	now := time.Now()
	e := entry{
		CachedAt:  now.UnixNano(),
		ExpiresAt: now.Add(c.ttl).UnixNano(),
		Result:    result,
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// EvictExpired removes every expired or corrupted entry and returns
// the removal count.
func (c *Cache) EvictExpired() int {
	removed := 0
	for _, path := range c.entryFiles() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil || c.expired(e) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed
}

// Clear removes every entry regardless of age.
func (c *Cache) Clear() int {
	removed := 0
	for _, path := range c.entryFiles() {
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed
}

// Stats returns hit/miss counters and the current entry count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	s := Stats{
		Hits:   hits,
		Misses: misses,
		Size:   len(c.entryFiles()),
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

func (c *Cache) expired(e entry) bool {
	if c.ttl <= 0 {
		return true
	}
	return time.Now().UnixNano() >= e.ExpiresAt
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *Cache) entryFiles() []string {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil
	}
	return matches
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
