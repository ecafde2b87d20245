package flow4ago

import (
	"context"
	"time"

	"github.com/flow4ago/flow4ago/internal/compose"
	"github.com/flow4ago/flow4ago/internal/flowerr"
	"github.com/flow4ago/flow4ago/internal/job"
	"github.com/flow4ago/flow4ago/internal/manager"
	"github.com/flow4ago/flow4ago/internal/task"
)

// Node is a combinator-tree element produced by Sequence, Parallel, or
// Leaf.
type Node = compose.Node

// Job is the runtime contract every graph node's behaviour satisfies.
type Job = job.Job

// Runtime is the per-execution view a Job's Run method receives.
type Runtime = job.Runtime

// JobContext is injected into a WrappedFunc field tagged `flow:"j_ctx"`.
type JobContext = job.JobContext

// Task is a mapping from string keys to arbitrary values, carrying an
// auto-assigned task_id.
type Task = task.Task

// Envelope is the per-task result structure a Manager hands back.
type Envelope = task.Envelope

// Error is the structured error record carried in a Manager's error
// buffer.
type Error = flowerr.Error

// ErrorKind classifies why a task or graph registration failed.
type ErrorKind = flowerr.Kind

// Error kind constants, re-exported from the internal taxonomy.
const (
	CompileError     = flowerr.CompileError
	ValidationError  = flowerr.ValidationError
	UnknownGraph     = flowerr.UnknownGraph
	InputTimeout     = flowerr.InputTimeout
	RunError         = flowerr.RunError
	NonMappingOutput = flowerr.NonMappingOutput
	Cancelled        = flowerr.Cancelled
	ParamBindError   = flowerr.ParamBindError
)

// LeafOption configures a Leaf at construction time.
type LeafOption = compose.LeafOption

// WithSaveResult marks a leaf's full output for capture into a task's
// SAVED_RESULTS map.
func WithSaveResult() LeafOption { return compose.WithSaveResult() }

// WithTimeout overrides a leaf's per-job input-wait deadline.
func WithTimeout(d time.Duration) LeafOption { return compose.WithTimeout(d) }

// Sequence composes nodes serially: every exit of one feeds every entry of
// the next.
func Sequence(nodes ...Node) Node { return compose.Seq(nodes...) }

// Parallel composes nodes concurrently against the same upstream input; no
// edges are added between siblings.
func Parallel(nodes ...Node) Node { return compose.Par(nodes...) }

// Leaf wraps a single job as a composition-tree node, identified within
// its graph by shortName.
func Leaf(shortName string, j Job, opts ...LeafOption) Node {
	return compose.NewLeaf(shortName, j, opts...)
}

// Wrap adapts a typed function into a Job. T's fields tagged `flow:"name"`
// receive parameters routed to shortName; see the package doc for the
// reserved "args"/"kwargs"/"j_ctx" tags.
func Wrap[T any](shortName string, fn func(context.Context, T) (any, error)) (Job, error) {
	return job.Wrap(shortName, fn)
}

// NewTask builds a Task from initial, assigning a task_id if absent.
func NewTask(initial map[string]any) Task { return task.New(initial) }

// Config is a Manager's configuration surface.
type Config = manager.Config

// Counts are a Manager's monotonic lifecycle totals.
type Counts = manager.Counts

// Results is what Manager.PopResults atomically drains.
type Results = manager.Results

// Manager owns compiled graphs, assigns collision-free identifiers,
// accepts task submissions, tracks lifecycle counters, and hands back
// structured results and errors.
type Manager = manager.Manager

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) { return manager.New(cfg) }
