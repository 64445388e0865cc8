package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout, slog.LevelInfo)))
}

func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
