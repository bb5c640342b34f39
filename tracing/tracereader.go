package tracing

import "strings"

// TaskQuery is used to define the tasks to be queried. Not all the field has to
// be set. If the fields are empty, the criteria is ignored.
type TaskQuery struct {
	// Use ID to select a single task by its ID.
	ID string

	// Use ParentID to select all the tasks that are children of a task.
	ParentID string

	// Use Kind to select all the tasks that are of a kind.
	Kind string

	// Use Location to select all the tasks that are executed at a location.
	Location string

	// Enable time range selection.
	EnableTimeRange bool

	// Use StartTime to select tasks that overlaps with the given task range,
	// in seconds.
	StartTime, EndTime float64
}

func (q TaskQuery) conditions() (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg ...any) {
		conds = append(conds, cond)
		args = append(args, arg...)
	}

	if q.ID != "" {
		add("task_id = ?", q.ID)
	}

	if q.ParentID != "" {
		add("parent_id = ?", q.ParentID)
	}

	if q.Kind != "" {
		add("kind = ?", q.Kind)
	}

	if q.Location != "" {
		add("location = ?", q.Location)
	}

	if q.EnableTimeRange {
		add("end_time > ? AND start_time < ?", q.StartTime, q.EndTime)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// TraceReader can parse a trace file.
type TraceReader interface {
	// ListComponents returns all the locations used in the trace.
	ListComponents() []string

	// ListTasks queries tasks.
	ListTasks(query TaskQuery) []Task

	// ListDelays returns the delays reported by a source.
	ListDelays(source string) []DelayEvent
}
