// Package task defines the work-item and result types that survive the
// whole pipeline: the submitted Task mapping and the Envelope a completed
// task is reported back as.
package task

import "github.com/google/uuid"

// IDKey is the reserved task key holding the auto-assigned task identity.
const IDKey = "task_id"

// Task is a mapping from string keys to arbitrary values, carrying an
// auto-assigned globally-unique task_id. Task content is never mutated by
// the engine once submitted; it survives the entire pipeline unchanged.
type Task map[string]any

// New returns a Task seeded from initial, assigning a task_id if one isn't
// already present under IDKey.
func New(initial map[string]any) Task {
	t := make(Task, len(initial)+1)
	for k, v := range initial {
		t[k] = v
	}
	if _, ok := t[IDKey]; !ok {
		t[IDKey] = uuid.NewString()
	}
	return t
}

// ID returns the task's task_id, or "" if it was never assigned one (a
// programming error: every task the manager hands to the engine has one).
func (t Task) ID() string {
	id, _ := t[IDKey].(string)
	return id
}

// Clone returns a shallow copy of t, safe to read concurrently from
// multiple job executions without racing on the map header.
func (t Task) Clone() Task {
	c := make(Task, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

const (
	// ReturnJobKey holds the FQN of the job that produced an envelope.
	ReturnJobKey = "return_job"
	// TaskPassthroughKey holds the original submitted task on an envelope.
	TaskPassthroughKey = "task_passthrough"
	// SavedResultsKey holds the per-task saved-results map on an envelope.
	SavedResultsKey = "saved_results"
)

// Envelope is the per-task result structure a manager hands back: the tail
// job's output dict spread at the top level, plus the three reserved keys
// above.
type Envelope map[string]any

// NewEnvelope assembles the result envelope for a completed task. saved maps
// a short name to the full, pre-wrap value that job's Run returned — not the
// tail's {"result": v} wrapping, since a job can be captured into
// saved_results regardless of whether it ever occupies the tail position.
func NewEnvelope(tailOutput map[string]any, returnJobFQN string, original Task, saved map[string]any) Envelope {
	env := make(Envelope, len(tailOutput)+3)
	for k, v := range tailOutput {
		env[k] = v
	}
	env[ReturnJobKey] = returnJobFQN
	env[TaskPassthroughKey] = original
	env[SavedResultsKey] = saved
	return env
}
