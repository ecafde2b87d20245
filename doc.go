/*
Package flow4ago provides a concurrent directed-acyclic-graph job executor.

Users declaratively compose a graph of processing nodes ("jobs") with
Sequence and Parallel combinators; a Manager compiles and registers the
composition, accepts task submissions against it, drives each task
concurrently through the graph — fanning work out across branches,
synchronising fan-in joins, propagating results — and hands back collected
outputs or errors.

# Basic usage

	type squareParams struct {
	    X int `flow:"x"`
	}
	square, _ := flow4ago.Wrap("square", func(ctx context.Context, p squareParams) (any, error) {
	    return p.X * p.X, nil
	})

	type doubleParams struct {
	    InputVal int `flow:"input_val"`
	}
	double, _ := flow4ago.Wrap("double", func(ctx context.Context, p doubleParams) (any, error) {
	    return p.InputVal * 2, nil
	})

	m, err := flow4ago.NewManager(flow4ago.Config{})
	if err != nil {
	    log.Fatal(err)
	}

	fqn, err := m.AddGraph(flow4ago.Sequence(
	    flow4ago.Leaf("square", square),
	    flow4ago.Leaf("double", double),
	), "pipeline", "")
	if err != nil {
	    log.Fatal(err)
	}

	taskID, err := m.Submit(flow4ago.NewTask(map[string]any{"square.x": 5}), fqn)
	if err != nil {
	    log.Fatal(err)
	}
	m.WaitForCompletion(time.Second, 10*time.Millisecond)
	results := m.PopResults()
	fmt.Println(results.Completed[fqn][0]["result"]) // 50

# Parameter routing

Wrapped jobs receive parameters addressed to their short name either in
dotted form ({"square.x": 5}) or nested form ({"square": {"x": 5}}); both
encodings bind identically. Two struct-tag values are reserved: "args" for
a positional-arguments slice and "kwargs" for a keyword-arguments map; a
field tagged "j_ctx" receives the job's JobContext (its own matched
parameters, every predecessor's outputs, and the manager-wide global
context).

# Errors

Every terminal task error is a *flowerr.Error carrying a Kind from the
documented taxonomy (INPUT_TIMEOUT, RUN_ERROR, NON_MAPPING_OUTPUT,
CANCELLED, PARAM_BIND_ERROR, ...). Compile-time and registration errors
(COMPILE_ERROR, VALIDATION_ERROR, UNKNOWN_GRAPH) are returned directly by
AddGraph/Submit; everything else lands in a Manager's error buffer,
drained by PopResults.

# Concurrency

A Manager is safe for concurrent use. Submitted tasks execute independently
of one another: one task's failure never affects another's counters or
results. Concurrency across tasks can be bounded with
Config.MaxConcurrentTasks.
*/
package flow4ago
