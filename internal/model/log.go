package model

import (
	"log/slog"
	"sync"
)

// LogSink receives human-readable battle log lines. The core never writes to
// a fixed output stream.
type LogSink interface {
	Log(msg string)
}

// LogFunc adapts a plain function to LogSink.
type LogFunc func(msg string)

// Log calls f(msg).
func (f LogFunc) Log(msg string) { f(msg) }

// SlogSink forwards battle log lines to a slog.Logger at Info level.
type SlogSink struct {
	Logger *slog.Logger
}

// Log implements LogSink.
func (s SlogSink) Log(msg string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(msg, "component", "battle")
}

// Recorder keeps every line in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Log implements LogSink.
func (r *Recorder) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, msg)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Discard drops every line.
var Discard LogSink = LogFunc(func(string) {})
