package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/longscribe/internal/logger"
)

// fakeExecutor scripts external command behavior.
type fakeExecutor struct {
	execute func(ctx context.Context, name string, args ...string) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.execute(ctx, name, args...)
}

func writeTempMedia(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp3")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeSuccess(t *testing.T) {
	path := writeTempMedia(t, "fake audio bytes")

	exec := &fakeExecutor{
		execute: func(ctx context.Context, name string, args ...string) (string, error) {
			if name != "ffprobe" {
				t.Fatalf("command = %q, want ffprobe", name)
			}
			return "1800.250000\n", nil
		},
	}

	info, err := New(exec, logger.NewNop()).Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	want := time.Duration(1800.25 * float64(time.Second))
	if info.Duration != want {
		t.Errorf("Duration = %v, want %v", info.Duration, want)
	}
	if info.Size != int64(len("fake audio bytes")) {
		t.Errorf("Size = %d, want %d", info.Size, len("fake audio bytes"))
	}
	if len(info.Checksum) != 64 {
		t.Errorf("Checksum = %q, want 64 hex chars", info.Checksum)
	}
}

func TestProbeChecksumStable(t *testing.T) {
	path := writeTempMedia(t, "identical bytes")

	exec := &fakeExecutor{
		execute: func(ctx context.Context, name string, args ...string) (string, error) {
			return "60.0", nil
		},
	}

	ext := New(exec, logger.NewNop())
	first, err := ext.Probe(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ext.Probe(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if first.Checksum != second.Checksum {
		t.Errorf("checksums differ for identical bytes: %s vs %s", first.Checksum, second.Checksum)
	}
}

func TestProbeInvalidMedia(t *testing.T) {
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		output string
		err    error
	}{
		{
			name:   "missing file",
			path:   func(t *testing.T) string { return "/nonexistent/audio.mp3" },
			output: "60.0",
		},
		{
			name:   "empty file",
			path:   func(t *testing.T) string { return writeTempMedia(t, "") },
			output: "60.0",
		},
		{
			name:   "ffprobe failure",
			path:   func(t *testing.T) string { return writeTempMedia(t, "bytes") },
			output: "",
			err:    fmt.Errorf("ffprobe exploded"),
		},
		{
			name:   "unparsable duration",
			path:   func(t *testing.T) string { return writeTempMedia(t, "bytes") },
			output: "N/A",
		},
		{
			name:   "zero duration",
			path:   func(t *testing.T) string { return writeTempMedia(t, "bytes") },
			output: "0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{
				execute: func(ctx context.Context, name string, args ...string) (string, error) {
					return tt.output, tt.err
				},
			}

			_, err := New(exec, logger.NewNop()).Probe(context.Background(), tt.path(t))

			var invalid *InvalidMediaError
			if !errors.As(err, &invalid) {
				t.Fatalf("Probe() error = %v, want InvalidMediaError", err)
			}
		})
	}
}

func TestExtractSegmentArgs(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "chunk_0001.wav")

	var gotArgs []string
	exec := &fakeExecutor{
		execute: func(ctx context.Context, name string, args ...string) (string, error) {
			if name != "ffmpeg" {
				t.Fatalf("command = %q, want ffmpeg", name)
			}
			gotArgs = append([]string{}, args...)
			// ffmpeg writes the output file
			if err := os.WriteFile(dst, []byte("wav"), 0644); err != nil {
				t.Fatal(err)
			}
			return "", nil
		},
	}

	err := New(exec, logger.NewNop()).ExtractSegment(
		context.Background(), "source.mp3", dst,
		595*time.Second, 605*time.Second,
	)
	if err != nil {
		t.Fatalf("ExtractSegment() error = %v", err)
	}

	want := map[string]string{"-ss": "595.000", "-t": "605.000", "-ar": "16000", "-ac": "1"}
	for flag, value := range want {
		if got := argValue(gotArgs, flag); got != value {
			t.Errorf("arg %s = %q, want %q", flag, got, value)
		}
	}
}

func TestExtractSegmentMissingOutput(t *testing.T) {
	exec := &fakeExecutor{
		execute: func(ctx context.Context, name string, args ...string) (string, error) {
			return "", nil // claims success but writes nothing
		},
	}

	dst := filepath.Join(t.TempDir(), "chunk.wav")
	err := New(exec, logger.NewNop()).ExtractSegment(context.Background(), "src.mp3", dst, 0, time.Minute)
	if err == nil {
		t.Error("ExtractSegment() should fail when output file is missing")
	}
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
