package merge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Text renders the transcript as plain text, segment texts joined by
// single spaces. Failed chunks leave an explicit marker so the reader
// sees which time ranges are missing instead of a silently shortened
// file.
func (t Transcript) Text() string {
	var parts []string
	gi := 0
	for _, seg := range t.Segments {
		for gi < len(t.Gaps) && t.Gaps[gi].ChunkIndex < seg.ChunkIndex {
			parts = append(parts, gapMarker(t.Gaps[gi]))
			gi++
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	for ; gi < len(t.Gaps); gi++ {
		parts = append(parts, gapMarker(t.Gaps[gi]))
	}
	return strings.Join(parts, " ")
}

type jsonSegment struct {
	Chunk int     `json:"chunk"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonGap struct {
	Chunk int     `json:"chunk"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type jsonTranscript struct {
	Status   Status        `json:"status"`
	Language string        `json:"language,omitempty"`
	Text     string        `json:"text"`
	Segments []jsonSegment `json:"segments"`
	Gaps     []jsonGap     `json:"gaps,omitempty"`
}

// JSON renders the transcript as timestamped structured data.
func (t Transcript) JSON() ([]byte, error) {
	out := jsonTranscript{
		Status:   t.Status,
		Language: t.Language,
		Text:     t.Text(),
		Segments: make([]jsonSegment, 0, len(t.Segments)),
	}
	for _, seg := range t.Segments {
		out.Segments = append(out.Segments, jsonSegment{
			Chunk: seg.ChunkIndex,
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	for _, gap := range t.Gaps {
		out.Gaps = append(out.Gaps, jsonGap{
			Chunk: gap.ChunkIndex,
			Start: gap.Start.Seconds(),
			End:   gap.End.Seconds(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// SRT renders the transcript as SubRip subtitles with sequential cue
// numbering. Gaps become cues spanning the missing range.
func (t Transcript) SRT() string {
	var b strings.Builder
	n := 0
	t.walk(func(start, end time.Duration, text string) {
		n++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			n, formatTimestamp(start, ','), formatTimestamp(end, ','), text)
	})
	return b.String()
}

// VTT renders the transcript as WebVTT subtitles.
func (t Transcript) VTT() string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	t.walk(func(start, end time.Duration, text string) {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			formatTimestamp(start, '.'), formatTimestamp(end, '.'), text)
	})
	return b.String()
}

// walk visits segments and gaps in chunk order, emitting one cue per
// entry.
func (t Transcript) walk(emit func(start, end time.Duration, text string)) {
	gi := 0
	for _, seg := range t.Segments {
		for gi < len(t.Gaps) && t.Gaps[gi].ChunkIndex < seg.ChunkIndex {
			gap := t.Gaps[gi]
			emit(gap.Start, gap.End, gapCueText)
			gi++
		}
		emit(seg.Start, seg.End, strings.TrimSpace(seg.Text))
	}
	for ; gi < len(t.Gaps); gi++ {
		gap := t.Gaps[gi]
		emit(gap.Start, gap.End, gapCueText)
	}
}

const gapCueText = "[transcription unavailable]"

func gapMarker(gap Gap) string {
	return fmt.Sprintf("[no transcription for %s - %s]", formatClock(gap.Start), formatClock(gap.End))
}

// formatTimestamp renders HH:MM:SS<sep>mmm, comma for SRT and dot for
// VTT.
func formatTimestamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
