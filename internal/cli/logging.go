package cli

import (
	"io"
	"log/slog"
)

// newLogger builds the process logger on w. The returned LevelVar lets the
// caller quiet logging while a spinner owns the terminal.
func newLogger(w io.Writer, level, format string) (*slog.Logger, *slog.LevelVar) {
	var lvlVar slog.LevelVar
	lvlVar.Set(parseSlogLevel(level))

	opts := &slog.HandlerOptions{Level: &lvlVar}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), &lvlVar
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
