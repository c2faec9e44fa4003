package logger

import (
	"io"
	"log/slog"
)

const keyError = "error"

func NewLogger(writer io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		AddSource: verbose,
		Level:     level,
	}
	handler := slog.NewJSONHandler(writer, opts)
	return slog.New(handler)
}

func Error(err error) slog.Attr {
	return slog.Any(keyError, err)
}
