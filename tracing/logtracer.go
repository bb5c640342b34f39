package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// LogTracer writes one log record for every finished task and every delay.
// Records of transactions carry the command, the address, the length, the
// payload and the status.
type LogTracer struct {
	timeTeller sim.TimeTeller
	logger     *slog.Logger
	level      slog.Level
	filter     TaskFilter

	lock     sync.Mutex
	inflight map[string]sim.VTime
}

// NewLogTracer creates a LogTracer that logs at LevelTrace. A nil logger
// means the default slog logger.
func NewLogTracer(timeTeller sim.TimeTeller, logger *slog.Logger) *LogTracer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogTracer{
		timeTeller: timeTeller,
		logger:     logger,
		level:      sim.LevelTrace,
		filter:     func(Task) bool { return true },
		inflight:   make(map[string]sim.VTime),
	}
}

// WithFilter makes the tracer log only the tasks that the filter accepts.
func (t *LogTracer) WithFilter(f TaskFilter) *LogTracer {
	t.filter = f
	return t
}

// WithLevel changes the level of the records.
func (t *LogTracer) WithLevel(level slog.Level) *LogTracer {
	t.level = level
	return t
}

// StartTask remembers when the task started.
func (t *LogTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflight[task.ID] = t.timeTeller.CurrentTime()
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *LogTracer) StepTask(_ Task) {}

// EndTask logs the task.
func (t *LogTracer) EndTask(task Task) {
	t.lock.Lock()
	start, ok := t.inflight[task.ID]
	delete(t.inflight, task.ID)
	t.lock.Unlock()

	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	args := []any{
		sim.TimeAttr(now),
		slog.String("component", task.Location),
		slog.String("task", task.ID),
		slog.Uint64("latency_ps", uint64(now-start)),
	}

	if txn, ok := task.Detail.(*tlm.Transaction); ok {
		args = append(args, TxnAttrs(txn)...)
	}

	t.logger.Log(context.Background(), t.level, "task", args...)
}

// DelayTask logs the delay.
func (t *LogTracer) DelayTask(delay DelayEvent) {
	t.logger.Log(context.Background(), t.level, delay.Type,
		sim.TimeAttr(t.timeTeller.CurrentTime()),
		slog.String("component", delay.Source),
		slog.String("task", delay.TaskID),
		slog.String("what", delay.What),
	)
}

// TxnAttrs returns the log attributes that describe a transaction.
func TxnAttrs(txn *tlm.Transaction) []any {
	return []any{
		slog.String("command", txn.Command.String()),
		slog.String("address", fmt.Sprintf("0x%x", txn.Address)),
		slog.Uint64("length", txn.Length),
		slog.String("data", tlm.DataString(txn.Data)),
		slog.String("status", txn.Status.String()),
	}
}
