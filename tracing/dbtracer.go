package tracing

import (
	"sync"

	"github.com/sarchlab/hetsim/sim"
	"github.com/tebeka/atexit"
)

// A TraceWriter stores tasks and delays.
type TraceWriter interface {
	Init()
	Write(task Task)
	WriteDelay(delay DelayEvent)
	Flush()
}

// DBTracer is a tracer that can store tasks into a database.
// DBTracers can connect with different backends so that the tasks can be stored
// in different types of databases.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    TraceWriter

	startTime, endTime sim.VTime

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer. The tracer flushes the backend when the
// program exits through atexit.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	backend TraceWriter,
) *DBTracer {
	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}

	backend.Init()

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange sets the time range of the tracer. Only the tasks that overlap
// with the range are recorded. An end time of 0 means no limit.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	if t.terminated {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// StepTask records a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, step := range task.Steps {
		step.Time = now
		originalTask.Steps = append(originalTask.Steps, step)
	}

	t.tracingTasks[task.ID] = originalTask
}

// EndTask marks the end of a task and writes it to the backend.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	if t.startTime > 0 && originalTask.EndTime < t.startTime {
		return
	}

	t.backend.Write(originalTask)
}

// DelayTask writes a delay to the backend.
func (t *DBTracer) DelayTask(delay DelayEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delay.Time = t.timeTeller.CurrentTime()
	if t.startTime > 0 && delay.Time < t.startTime {
		return
	}

	if t.endTime > 0 && delay.Time > t.endTime {
		return
	}

	t.backend.WriteDelay(delay)
}

// Terminate writes the unfinished tasks, ending them at the current time, and
// flushes the backend. Calling Terminate more than once has no effect.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.backend.Write(task)
	}

	t.tracingTasks = nil
	t.terminated = true
	t.backend.Flush()
}
