package planner

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/media"
)

// Segment is one time-bounded chunk of the source. Index defines the
// canonical order; Overlap is the span shared with the predecessor.
type Segment struct {
	Index   int
	Start   time.Duration
	End     time.Duration
	Overlap time.Duration
}

// Duration returns the extracted length including the overlap lead-in.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// NominalStart returns the position where this segment's exclusive
// content begins, past the span owned by the predecessor.
func (s Segment) NominalStart() time.Duration {
	return s.Start + s.Overlap
}

// Config bounds each planned chunk. MaxChunkBytes shrinks the
// effective duration cap using the source's observed byte rate.
type Config struct {
	MaxChunkDuration time.Duration
	MaxChunkBytes    int64
	Overlap          time.Duration
}

// Plan splits the source duration into ordered segments whose union
// covers [0, duration). Each segment except the first begins Overlap
// before the previous segment's nominal end, so boundary words appear
// in both chunks and the aggregator can trim cleanly.
func Plan(info media.Info, cfg Config) ([]Segment, error) {
	if info.Duration <= 0 {
		return nil, &media.InvalidMediaError{Path: info.Path, Reason: "duration unknown"}
	}
	if info.Size <= 0 {
		return nil, &media.InvalidMediaError{Path: info.Path, Reason: "size unknown"}
	}
	if cfg.MaxChunkDuration <= 0 {
		return nil, fmt.Errorf("max chunk duration must be positive")
	}

	maxDuration := cfg.MaxChunkDuration
	if cfg.MaxChunkBytes > 0 {
		bytesPerSecond := float64(info.Size) / info.Duration.Seconds()
		if bytesPerSecond > 0 {
			bySize := time.Duration(float64(cfg.MaxChunkBytes) / bytesPerSecond * float64(time.Second))
			if bySize < maxDuration {
				maxDuration = bySize
			}
		}
	}

	if cfg.Overlap < 0 || cfg.Overlap >= maxDuration {
		return nil, fmt.Errorf("overlap %s must be shorter than effective max chunk duration %s", cfg.Overlap, maxDuration)
	}

	if info.Duration <= maxDuration {
		return []Segment{{Index: 0, Start: 0, End: info.Duration}}, nil
	}

	var segments []Segment
	for nominal := time.Duration(0); nominal < info.Duration; nominal += maxDuration {
		seg := Segment{
			Index: len(segments),
			Start: nominal,
			End:   nominal + maxDuration,
		}
		if seg.Index > 0 {
			seg.Start -= cfg.Overlap
			seg.Overlap = cfg.Overlap
		}
		if seg.End > info.Duration {
			seg.End = info.Duration
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// Validate checks the contiguity invariant: zero-based consecutive
// indices, full coverage of [0, total), and each segment starting
// exactly Overlap before its predecessor's end.
func Validate(segments []Segment, total time.Duration) error {
	if len(segments) == 0 {
		return fmt.Errorf("empty segment list")
	}

	for i, seg := range segments {
		if seg.Index != i {
			return fmt.Errorf("segment %d carries index %d", i, seg.Index)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d has non-positive span [%s, %s)", i, seg.Start, seg.End)
		}
		if i == 0 {
			if seg.Start != 0 {
				return fmt.Errorf("first segment starts at %s, want 0", seg.Start)
			}
			if seg.Overlap != 0 {
				return fmt.Errorf("first segment carries overlap %s", seg.Overlap)
			}
			continue
		}
		if seg.Start+seg.Overlap != segments[i-1].End {
			return fmt.Errorf("segment %d starts at %s with overlap %s, predecessor ends at %s",
				i, seg.Start, seg.Overlap, segments[i-1].End)
		}
	}

	if last := segments[len(segments)-1]; last.End != total {
		return fmt.Errorf("last segment ends at %s, source duration is %s", last.End, total)
	}

	return nil
}
