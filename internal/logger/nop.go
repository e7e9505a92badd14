package logger

import "context"

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Used by tests and
// by library callers that do not want pipeline output.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}
