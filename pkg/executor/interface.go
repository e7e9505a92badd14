package executor

import "context"

// Executor defines the interface for executing external commands
// (ffmpeg and ffprobe in this project)
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}
