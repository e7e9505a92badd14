package merge

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/planner"
	"github.com/nguyentantai21042004/longscribe/internal/transcribe"
)

// Status classifies the assembled transcript.
type Status string

const (
	StatusComplete       Status = "complete"
	StatusPartialSuccess Status = "partial_success"
)

// ChunkResult is one chunk's terminal outcome handed to the
// aggregator. Err non-nil means the chunk failed permanently and its
// time range becomes a gap in the transcript.
type ChunkResult struct {
	Index  int
	Result transcribe.Result
	Err    error
}

// Segment is one piece of the final transcript with timestamps
// corrected to the full source timeline.
type Segment struct {
	ChunkIndex int
	Start      time.Duration
	End        time.Duration
	Text       string
}

// Gap marks a time range with no transcription because its chunk
// failed after exhausting retries.
type Gap struct {
	ChunkIndex int
	Start      time.Duration
	End        time.Duration
}

// Transcript is the ordered, merged transcription of the full source.
// Segments and Gaps are both sorted by chunk index; all output formats
// are projections of this one structure.
type Transcript struct {
	Status   Status
	Language string
	Segments []Segment
	Gaps     []Gap
}

// Merge assembles per-chunk results into one transcript. The plan must
// satisfy the planner contiguity contract and results must arrive in
// chunk-index order, one per planned segment.
//
// Each successful chunk's timestamps are shifted by the chunk's start
// offset. Where two consecutive chunks both succeeded, the overlap
// region is attributed to the later chunk, which transcribed it with
// more preceding context; the earlier chunk's segments inside the
// overlap are dropped.
func Merge(plan []planner.Segment, total time.Duration, results []ChunkResult) (Transcript, error) {
	if err := planner.Validate(plan, total); err != nil {
		return Transcript{}, &InvariantError{Reason: "chunk plan failed validation", Err: err}
	}
	if len(results) != len(plan) {
		return Transcript{}, &InvariantError{
			Reason: fmt.Sprintf("got %d results for %d planned chunks", len(results), len(plan)),
		}
	}
	for i, r := range results {
		if r.Index != i {
			return Transcript{}, &InvariantError{
				Reason: fmt.Sprintf("result %d carries chunk index %d", i, r.Index),
			}
		}
	}

	var t Transcript
	for i, r := range results {
		chunk := plan[i]

		if r.Err != nil {
			t.Gaps = append(t.Gaps, Gap{ChunkIndex: i, Start: chunk.Start, End: chunk.End})
			continue
		}

		if t.Language == "" && r.Result.Language != "" {
			t.Language = r.Result.Language
		}

		segments := shiftSpans(chunk, r.Result)

		// Trim the predecessor's tail out of the shared overlap
		// region, but only when the predecessor actually produced
		// segments there.
		if chunk.Overlap > 0 && i > 0 && results[i-1].Err == nil {
			t.Segments = trimTail(t.Segments, i-1, chunk.Start)
		}

		t.Segments = append(t.Segments, segments...)
	}

	t.Status = StatusComplete
	if len(t.Gaps) > 0 {
		t.Status = StatusPartialSuccess
	}
	return t, nil
}

// shiftSpans converts a chunk's relative spans to source-global
// segments. A result with text but no spans becomes a single segment
// covering the whole chunk.
func shiftSpans(chunk planner.Segment, result transcribe.Result) []Segment {
	if len(result.Spans) == 0 {
		if result.Text == "" {
			return nil
		}
		return []Segment{{
			ChunkIndex: chunk.Index,
			Start:      chunk.Start,
			End:        chunk.End,
			Text:       result.Text,
		}}
	}

	segments := make([]Segment, 0, len(result.Spans))
	for _, span := range result.Spans {
		seg := Segment{
			ChunkIndex: chunk.Index,
			Start:      chunk.Start + secondsToDuration(span.Start),
			End:        chunk.Start + secondsToDuration(span.End),
			Text:       span.Text,
		}
		if seg.End > chunk.End {
			seg.End = chunk.End
		}
		segments = append(segments, seg)
	}
	return segments
}

// trimTail drops trailing segments belonging to chunkIndex that start
// at or past cutoff.
func trimTail(segments []Segment, chunkIndex int, cutoff time.Duration) []Segment {
	n := len(segments)
	for n > 0 && segments[n-1].ChunkIndex == chunkIndex && segments[n-1].Start >= cutoff {
		n--
	}
	return segments[:n]
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
