package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Stage is the pipeline stage a run has reached.
type Stage string

const (
	StagePlanned      Stage = "planned"
	StageChunking     Stage = "chunking"
	StageTranscribing Stage = "transcribing"
	StageMerging      Stage = "merging"
	StageComplete     Stage = "complete"
	StagePartial      Stage = "partial_success"
	StageFailed       Stage = "failed"
)

// ErrNotFound is returned by Load when no record exists for the run.
var ErrNotFound = errors.New("workflow state not found")

// CorruptError reports a persisted state that cannot be trusted. The
// documented remedy is to discard the state and restart the run,
// never to repair it silently.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt workflow state %s: %s", e.Path, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// ChunkRecord marks one chunk as successfully transcribed. CacheKey
// points at the retrievable result; ResultChecksum lets the resume
// path verify what it retrieves.
type ChunkRecord struct {
	Index          int    `json:"index"`
	ResultChecksum string `json:"result_checksum"`
	CacheKey       string `json:"cache_key"`
}

// State is the persisted record of one pipeline run.
type State struct {
	RunID         string        `json:"run_id"`
	MediaChecksum string        `json:"media_checksum"`
	Stage         Stage         `json:"stage"`
	ChunkCount    int           `json:"chunk_count"`
	Chunks        []ChunkRecord `json:"chunks,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Manager owns all mutations of one run's state. Methods serialize
// through a mutex, so workers may report completions concurrently
// while writes stay single-writer per run.
type Manager struct {
	path string

	mu    sync.Mutex
	state State
}

// Create starts a fresh state record in the planned stage and
// persists it immediately.
func Create(dir, runID, mediaChecksum string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	m := &Manager{
		path: recordPath(dir, runID),
		state: State{
			RunID:         runID,
			MediaChecksum: mediaChecksum,
			Stage:         StagePlanned,
		},
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads an existing run record. A missing file yields
// ErrNotFound; anything unparsable or invariant-violating yields
// CorruptError.
func Load(dir, runID string) (*Manager, error) {
	path := recordPath(dir, runID)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read workflow state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &CorruptError{Path: path, Reason: "unparsable JSON", Err: err}
	}

	if err := validate(st); err != nil {
		return nil, &CorruptError{Path: path, Reason: err.Error()}
	}

	return &Manager{path: path, state: st}, nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state
	st.Chunks = append([]ChunkRecord(nil), m.state.Chunks...)
	return st
}

// Transition moves the run to the next stage, enforcing the state
// machine edges, and persists the change.
func (m *Manager) Transition(stage Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stage == m.state.Stage {
		return nil
	}
	if !validTransition(m.state.Stage, stage) {
		return fmt.Errorf("invalid stage transition: %s -> %s", m.state.Stage, stage)
	}

	m.state.Stage = stage
	return m.save()
}

// SetChunkCount records the planned chunk total, fixing the valid
// index range for completion records.
func (m *Manager) SetChunkCount(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 {
		return fmt.Errorf("chunk count must be positive, got %d", n)
	}
	m.state.ChunkCount = n
	return m.save()
}

// RecordChunkSuccess persists one chunk completion before the caller
// moves on, so a crash after chunk K's success never loses chunk K.
// Re-recording an index overwrites the previous record.
func (m *Manager) RecordChunkSuccess(index int, resultChecksum, cacheKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || (m.state.ChunkCount > 0 && index >= m.state.ChunkCount) {
		return fmt.Errorf("chunk index %d out of range [0, %d)", index, m.state.ChunkCount)
	}

	record := ChunkRecord{Index: index, ResultChecksum: resultChecksum, CacheKey: cacheKey}
	replaced := false
	for i, existing := range m.state.Chunks {
		if existing.Index == index {
			m.state.Chunks[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		m.state.Chunks = append(m.state.Chunks, record)
	}

	return m.save()
}

// CompletedChunks returns completion records in chunk-index order.
func (m *Manager) CompletedChunks() []ChunkRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]ChunkRecord(nil), m.state.Chunks...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Resumable reports whether this record belongs to the media
// currently being processed and still has work left. A checksum
// mismatch means the state is stale or unrelated and the run must
// start fresh.
func (m *Manager) Resumable(mediaChecksum string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.MediaChecksum != mediaChecksum {
		return false
	}
	return m.state.Stage != StageComplete
}

// Discard removes the persisted record.
func (m *Manager) Discard() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("discard workflow state: %w", err)
	}
	return nil
}

// save writes the record atomically: a crash mid-write leaves either
// the previous record or the new one, never a torn file.
func (m *Manager) save() error {
	m.state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow state: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write workflow state: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit workflow state: %w", err)
	}
	return nil
}

func validate(st State) error {
	switch st.Stage {
	case StagePlanned, StageChunking, StageTranscribing, StageMerging,
		StageComplete, StagePartial, StageFailed:
	default:
		return fmt.Errorf("unknown stage %q", st.Stage)
	}

	if st.RunID == "" {
		return fmt.Errorf("missing run id")
	}
	if st.MediaChecksum == "" {
		return fmt.Errorf("missing media checksum")
	}

	seen := make(map[int]bool, len(st.Chunks))
	for _, c := range st.Chunks {
		if c.Index < 0 || (st.ChunkCount > 0 && c.Index >= st.ChunkCount) {
			return fmt.Errorf("chunk index %d out of range [0, %d)", c.Index, st.ChunkCount)
		}
		if seen[c.Index] {
			return fmt.Errorf("duplicate chunk index %d", c.Index)
		}
		seen[c.Index] = true
	}

	return nil
}

func validTransition(from, to Stage) bool {
	if to == StageFailed {
		return true
	}
	switch from {
	case StagePlanned:
		return to == StageChunking
	case StageChunking:
		return to == StageTranscribing
	case StageTranscribing:
		return to == StageMerging
	case StageMerging:
		return to == StageComplete || to == StagePartial
	default:
		return false
	}
}

func recordPath(dir, runID string) string {
	return filepath.Join(dir, runID+".json")
}
