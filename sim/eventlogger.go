package sim

import (
	"context"
	"log/slog"
	"reflect"
)

// EventLogger is an hook that logs every event that the engine handles.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
// A nil logger means the default slog logger.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	args := []any{
		TimeAttr(evt.Time()),
		slog.String("event", reflect.TypeOf(evt).String()),
	}

	if named, ok := evt.Handler().(Named); ok {
		args = append(args, slog.String("handler", named.Name()))
	}

	h.logger.Log(context.Background(), LevelTrace, "event", args...)
}
