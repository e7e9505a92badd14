package watcher

import "context"

// Watcher monitors a directory for newly dropped media files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is invoked once per detected media file.
type EventHandler func(ctx context.Context, filePath string) error
