package sim

import (
	"context"
	"log/slog"
)

// LevelTrace is the level of the per-transaction and per-beat records.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a record at LevelTrace with the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TimeAttr formats a simulated time as a log attribute.
func TimeAttr(t VTime) slog.Attr {
	return slog.Uint64("time_ps", uint64(t))
}
