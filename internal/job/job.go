// Package job defines the runtime contract between the execution engine
// and a graph node's behaviour: the Job interface every node satisfies, the
// Runtime view a job is given of its per-task execution state, and the two
// concrete behaviours a node can carry — a user-supplied Job implementation,
// and a reflected Go function wrapped by Wrap.
//
// Graph-local metadata (name, successors, expected inputs, timeout,
// save-flag) lives in package compose; this package supplies only the
// behaviour — the Job interface — that metadata wraps.
package job

import "context"

// Runtime is the per-execution view a job's Run method is given. It never
// outlives the task execution it belongs to and is never shared across
// concurrent executions of the same graph.
type Runtime interface {
	// Task returns the original submitted task, for passthrough and
	// parameter extraction.
	Task() map[string]any
	// Inputs returns, for every predecessor that has completed, its full
	// output dict keyed by the predecessor's short name.
	Inputs() map[string]map[string]any
	// GlobalContext returns the context shared across every task executed
	// against the owning manager (the "global" half of j_ctx).
	GlobalContext() map[string]any
}

// Job is the single operation every graph node exposes. The engine calls
// Run exactly once per task, after the node's input gate has opened.
//
// A Run that returns a value other than map[string]any is valid only for a
// tail job — the engine wraps it as {"result": value}. For a non-tail job
// it is a NON_MAPPING_OUTPUT error. WrappedFunc never triggers this path:
// it always normalises its own return value before handing it back.
type Job interface {
	Run(ctx context.Context, rt Runtime) (any, error)
}

// Func adapts a plain function to the Job interface, the direct analogue
// of http.HandlerFunc for job behaviours that need no parameter routing
// (synthetic head/tail nodes, tests).
type Func func(ctx context.Context, rt Runtime) (any, error)

func (f Func) Run(ctx context.Context, rt Runtime) (any, error) { return f(ctx, rt) }

// HeadPassthrough is the synthetic __head__ behaviour the compose package
// installs when a composition exposes more than one entry: it consumes the
// submitted task directly and distributes it unchanged to every entry.
var HeadPassthrough Job = Func(func(_ context.Context, rt Runtime) (any, error) {
	return rt.Task(), nil
})

// TailAggregate is the synthetic __tail__ behaviour installed when a
// composition exposes more than one exit: it gathers every predecessor's
// output dict into one dict keyed by predecessor short name.
var TailAggregate Job = Func(func(_ context.Context, rt Runtime) (any, error) {
	inputs := rt.Inputs()
	out := make(map[string]any, len(inputs))
	for short, output := range inputs {
		out[short] = output
	}
	return out, nil
})
