package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	m, err := Create(dir, "run-1", "checksum-a")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := m.SetChunkCount(5); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(StageChunking); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(StageTranscribing); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordChunkSuccess(0, "sum-0", "key-0"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordChunkSuccess(2, "sum-2", "key-2"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, "run-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	st := loaded.Snapshot()
	if st.Stage != StageTranscribing {
		t.Errorf("Stage = %v, want transcribing", st.Stage)
	}
	if st.MediaChecksum != "checksum-a" {
		t.Errorf("MediaChecksum = %v, want checksum-a", st.MediaChecksum)
	}

	completed := loaded.CompletedChunks()
	if len(completed) != 2 {
		t.Fatalf("CompletedChunks() = %v, want 2 records", completed)
	}
	if completed[0].Index != 0 || completed[1].Index != 2 {
		t.Errorf("CompletedChunks() order = %v, want index order", completed)
	}
	if completed[1].CacheKey != "key-2" {
		t.Errorf("CacheKey = %v, want key-2", completed[1].CacheKey)
	}
}

func TestLoadNotFound(t *testing.T) {
	if _, err := Load(t.TempDir(), "missing-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "run-1.json"), []byte("not json{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir, "run-1")
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Errorf("Load() error = %v, want CorruptError", err)
	}
}

func TestLoadInvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			"duplicate chunk index",
			`{"run_id":"r","media_checksum":"c","stage":"transcribing","chunk_count":3,
			  "chunks":[{"index":1},{"index":1}]}`,
		},
		{
			"out of range index",
			`{"run_id":"r","media_checksum":"c","stage":"transcribing","chunk_count":3,
			  "chunks":[{"index":7}]}`,
		},
		{
			"negative index",
			`{"run_id":"r","media_checksum":"c","stage":"transcribing","chunks":[{"index":-1}]}`,
		},
		{
			"unknown stage",
			`{"run_id":"r","media_checksum":"c","stage":"daydreaming"}`,
		},
		{
			"missing checksum",
			`{"run_id":"r","stage":"planned"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "run-1.json"), []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(dir, "run-1")
			var corrupt *CorruptError
			if !errors.As(err, &corrupt) {
				t.Errorf("Load() error = %v, want CorruptError", err)
			}
		})
	}
}

func TestTransitionEdges(t *testing.T) {
	tests := []struct {
		name  string
		path  []Stage
		valid bool
	}{
		{"full success path", []Stage{StageChunking, StageTranscribing, StageMerging, StageComplete}, true},
		{"partial success path", []Stage{StageChunking, StageTranscribing, StageMerging, StagePartial}, true},
		{"failure from planned", []Stage{StageFailed}, true},
		{"failure mid-run", []Stage{StageChunking, StageFailed}, true},
		{"skip a stage", []Stage{StageTranscribing}, false},
		{"complete without merging", []Stage{StageChunking, StageTranscribing, StageComplete}, false},
		{"reopen completed run", []Stage{StageChunking, StageTranscribing, StageMerging, StageComplete, StageChunking}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Create(t.TempDir(), "run-1", "checksum")
			if err != nil {
				t.Fatal(err)
			}

			var last error
			for _, stage := range tt.path {
				if last = m.Transition(stage); last != nil {
					break
				}
			}

			if tt.valid && last != nil {
				t.Errorf("Transition path %v failed: %v", tt.path, last)
			}
			if !tt.valid && last == nil {
				t.Errorf("Transition path %v should be rejected", tt.path)
			}
		})
	}
}

func TestTransitionSameStageIsNoop(t *testing.T) {
	m, err := Create(t.TempDir(), "run-1", "checksum")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Transition(StagePlanned); err != nil {
		t.Errorf("Transition() to current stage = %v, want nil", err)
	}
}

func TestRecordChunkSuccessOutOfRange(t *testing.T) {
	m, err := Create(t.TempDir(), "run-1", "checksum")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetChunkCount(3); err != nil {
		t.Fatal(err)
	}

	if err := m.RecordChunkSuccess(3, "sum", "key"); err == nil {
		t.Error("RecordChunkSuccess(3) should be rejected with chunk count 3")
	}
	if err := m.RecordChunkSuccess(-1, "sum", "key"); err == nil {
		t.Error("RecordChunkSuccess(-1) should be rejected")
	}
}

func TestRecordChunkSuccessOverwrites(t *testing.T) {
	m, err := Create(t.TempDir(), "run-1", "checksum")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetChunkCount(3); err != nil {
		t.Fatal(err)
	}

	if err := m.RecordChunkSuccess(1, "first", "key-a"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordChunkSuccess(1, "second", "key-b"); err != nil {
		t.Fatal(err)
	}

	completed := m.CompletedChunks()
	if len(completed) != 1 {
		t.Fatalf("CompletedChunks() = %v, want single record", completed)
	}
	if completed[0].ResultChecksum != "second" {
		t.Errorf("ResultChecksum = %v, want second", completed[0].ResultChecksum)
	}
}

func TestResumable(t *testing.T) {
	m, err := Create(t.TempDir(), "run-1", "checksum-a")
	if err != nil {
		t.Fatal(err)
	}

	if !m.Resumable("checksum-a") {
		t.Error("Resumable() = false for matching checksum")
	}
	if m.Resumable("checksum-b") {
		t.Error("Resumable() = true for mismatched checksum, state is stale")
	}

	for _, stage := range []Stage{StageChunking, StageTranscribing, StageMerging, StageComplete} {
		if err := m.Transition(stage); err != nil {
			t.Fatal(err)
		}
	}
	if m.Resumable("checksum-a") {
		t.Error("Resumable() = true for completed run")
	}
}

func TestDiscard(t *testing.T) {
	dir := t.TempDir()
	m, err := Create(dir, "run-1", "checksum")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Discard(); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if _, err := Load(dir, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Discard() = %v, want ErrNotFound", err)
	}
	// Discarding twice is fine.
	if err := m.Discard(); err != nil {
		t.Errorf("second Discard() error = %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m, err := Create(dir, "run-1", "checksum")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(StageChunking); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}
