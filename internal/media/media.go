package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Probe reads duration via ffprobe, size from the filesystem, and
// computes the sha256 content checksum of the source bytes.
func (m *implExtractor) Probe(ctx context.Context, path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, &InvalidMediaError{Path: path, Reason: "file not accessible", Err: err}
	}
	if stat.Size() == 0 {
		return Info{}, &InvalidMediaError{Path: path, Reason: "file is empty"}
	}

	duration, err := m.probeDuration(ctx, path)
	if err != nil {
		return Info{}, err
	}

	checksum, err := checksumFile(path)
	if err != nil {
		return Info{}, &InvalidMediaError{Path: path, Reason: "cannot read file for checksum", Err: err}
	}

	m.logger.Debug(ctx, "Probed media %s: duration=%s size=%d checksum=%s",
		path, duration, stat.Size(), checksum[:12])

	return Info{
		Path:     path,
		Duration: duration,
		Size:     stat.Size(),
		Checksum: checksum,
	}, nil
}

func (m *implExtractor) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := m.executor.Execute(ctx, "ffprobe", args...)
	if err != nil {
		return 0, &InvalidMediaError{Path: path, Reason: "ffprobe failed", Err: err}
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil || seconds <= 0 {
		return 0, &InvalidMediaError{Path: path, Reason: "duration unreadable", Err: err}
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// ExtractSegment cuts [start, start+duration) from src into dst as
// 16kHz mono PCM WAV. Seeking before the input keeps extraction fast
// on long sources.
func (m *implExtractor) ExtractSegment(ctx context.Context, src, dst string, start, duration time.Duration) error {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", src,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		dst,
	}

	if _, err := m.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg extract segment [%s +%s]: %w", start, duration, err)
	}

	if stat, err := os.Stat(dst); err != nil || stat.Size() == 0 {
		return fmt.Errorf("ffmpeg completed but segment output is missing: %s", dst)
	}

	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
