// Package logging sets up the dual log streams: an info-level file, a
// debug-level file and console output, all behind one slog.Logger.
package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// fanoutHandler forwards every record to each handler that accepts its
// level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// Setup opens the two log files and returns the combined logger plus a
// close function for the files.
func Setup(infoPath, debugPath string) (*slog.Logger, func() error, error) {
	infoFile, err := openLogFile(infoPath)
	if err != nil {
		return nil, nil, err
	}
	debugFile, err := openLogFile(debugPath)
	if err != nil {
		infoFile.Close()
		return nil, nil, err
	}

	handler := &fanoutHandler{handlers: []slog.Handler{
		slog.NewTextHandler(infoFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(debugFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}

	closeFiles := func() error {
		err1 := infoFile.Close()
		err2 := debugFile.Close()
		if err1 != nil {
			return err1
		}
		return err2
	}
	return slog.New(handler), closeFiles, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
