package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/media"
)

func sourceInfo(duration time.Duration, size int64) media.Info {
	return media.Info{
		Path:     "source.mp3",
		Duration: duration,
		Size:     size,
		Checksum: "abc123",
	}
}

func TestPlanThirtyMinuteScenario(t *testing.T) {
	// 30 minute source, 10 minute cap, 5 second overlap.
	segments, err := Plan(sourceInfo(30*time.Minute, 1024), Config{
		MaxChunkDuration: 10 * time.Minute,
		Overlap:          5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := []Segment{
		{Index: 0, Start: 0, End: 600 * time.Second},
		{Index: 1, Start: 595 * time.Second, End: 1200 * time.Second, Overlap: 5 * time.Second},
		{Index: 2, Start: 1195 * time.Second, End: 1800 * time.Second, Overlap: 5 * time.Second},
	}

	if len(segments) != len(want) {
		t.Fatalf("Plan() produced %d segments, want %d", len(segments), len(want))
	}
	for i, seg := range segments {
		if seg != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestPlanSingleChunkNoOverlap(t *testing.T) {
	segments, err := Plan(sourceInfo(5*time.Minute, 1024), Config{
		MaxChunkDuration: 10 * time.Minute,
		Overlap:          5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Plan() produced %d segments, want 1", len(segments))
	}
	if segments[0].Overlap != 0 {
		t.Errorf("single chunk overlap = %v, want 0", segments[0].Overlap)
	}
	if segments[0].Start != 0 || segments[0].End != 5*time.Minute {
		t.Errorf("single chunk span = [%v, %v), want [0, 5m)", segments[0].Start, segments[0].End)
	}
}

func TestPlanByteBudgetShrinksChunks(t *testing.T) {
	// 100 bytes/second source; a 30,000 byte cap allows 300 seconds
	// per chunk even though the duration cap is 600.
	segments, err := Plan(sourceInfo(20*time.Minute, 120_000), Config{
		MaxChunkDuration: 10 * time.Minute,
		MaxChunkBytes:    30_000,
		Overlap:          2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(segments) != 4 {
		t.Fatalf("Plan() produced %d segments, want 4", len(segments))
	}
	if segments[0].End != 300*time.Second {
		t.Errorf("first chunk ends at %v, want 300s", segments[0].End)
	}
}

func TestPlanCoverageProperty(t *testing.T) {
	durations := []time.Duration{
		1 * time.Second,
		599 * time.Second,
		600 * time.Second,
		601 * time.Second,
		37*time.Minute + 13*time.Second,
		2 * time.Hour,
	}

	for _, total := range durations {
		segments, err := Plan(sourceInfo(total, 1<<20), Config{
			MaxChunkDuration: 10 * time.Minute,
			Overlap:          5 * time.Second,
		})
		if err != nil {
			t.Fatalf("Plan(%v) error = %v", total, err)
		}
		if err := Validate(segments, total); err != nil {
			t.Errorf("Plan(%v) violates invariant: %v", total, err)
		}
	}
}

func TestPlanInvalidMedia(t *testing.T) {
	tests := []struct {
		name string
		info media.Info
	}{
		{"zero duration", sourceInfo(0, 1024)},
		{"zero size", sourceInfo(time.Minute, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.info, Config{MaxChunkDuration: 10 * time.Minute})

			var invalid *media.InvalidMediaError
			if !errors.As(err, &invalid) {
				t.Errorf("Plan() error = %v, want InvalidMediaError", err)
			}
		})
	}
}

func TestPlanOverlapTooLarge(t *testing.T) {
	_, err := Plan(sourceInfo(time.Hour, 1024), Config{
		MaxChunkDuration: 10 * time.Second,
		Overlap:          10 * time.Second,
	})
	if err == nil {
		t.Error("Plan() should reject overlap >= max chunk duration")
	}
}

func TestValidateRejectsBrokenSets(t *testing.T) {
	good := []Segment{
		{Index: 0, Start: 0, End: 600 * time.Second},
		{Index: 1, Start: 595 * time.Second, End: 1200 * time.Second, Overlap: 5 * time.Second},
	}
	if err := Validate(good, 1200*time.Second); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	tests := []struct {
		name     string
		segments []Segment
		total    time.Duration
	}{
		{"empty", nil, time.Minute},
		{
			"index gap",
			[]Segment{
				{Index: 0, Start: 0, End: 600 * time.Second},
				{Index: 2, Start: 595 * time.Second, End: 1200 * time.Second, Overlap: 5 * time.Second},
			},
			1200 * time.Second,
		},
		{
			"coverage gap",
			[]Segment{
				{Index: 0, Start: 0, End: 600 * time.Second},
				{Index: 1, Start: 700 * time.Second, End: 1200 * time.Second, Overlap: 5 * time.Second},
			},
			1200 * time.Second,
		},
		{
			"short of total",
			[]Segment{
				{Index: 0, Start: 0, End: 600 * time.Second},
			},
			1200 * time.Second,
		},
		{
			"first chunk carries overlap",
			[]Segment{
				{Index: 0, Start: 0, End: 600 * time.Second, Overlap: 5 * time.Second},
			},
			600 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.segments, tt.total); err == nil {
				t.Error("Validate() should reject this segment set")
			}
		})
	}
}
