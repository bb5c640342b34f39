package tracing

import "github.com/sarchlab/hetsim/sim"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Time sim.VTime `json:"time"`
	What string    `json:"what"`
}

// A Task is a task
type Task struct {
	ID         string      `json:"id"`
	ParentID   string      `json:"parent_id"`
	Kind       string      `json:"kind"`
	What       string      `json:"what"`
	Location   string      `json:"location"`
	StartTime  sim.VTime   `json:"start_time"`
	EndTime    sim.VTime   `json:"end_time"`
	Steps      []TaskStep  `json:"steps"`
	Detail     interface{} `json:"-"`
	ParentTask *Task       `json:"-"`
}

// A DelayEvent records that a task had to wait for a resource.
type DelayEvent struct {
	TaskID string    `json:"task_id"`
	Type   string    `json:"type"`
	What   string    `json:"what"`
	Source string    `json:"source"`
	Time   sim.VTime `json:"time"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindFilter selects the tasks of a kind.
func KindFilter(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
