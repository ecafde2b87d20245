// Package engine implements the per-task execution engine: the concurrent
// graph walker that fans work out across branches, joins fan-in gates,
// and reports exactly one result (an envelope) or one error per task.
//
// One execution spawns one goroutine per graph node — not a shared worker
// pool — synchronised with golang.org/x/sync/errgroup as the structured
// await-all primitive: errgroup's first-error-cancels behaviour is what
// implements cancelling every sibling node's goroutine as soon as one
// fails, with no state shared across concurrent task executions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flow4ago/flow4ago/internal/compose"
	"github.com/flow4ago/flow4ago/internal/ctxlog"
	"github.com/flow4ago/flow4ago/internal/flowerr"
	"github.com/flow4ago/flow4ago/internal/job"
	"github.com/flow4ago/flow4ago/internal/task"
)

// Engine walks a compiled graph once per submitted task. It holds no
// per-task state itself; every Execute call allocates its own.
type Engine struct{}

// New returns an Engine. It carries no configuration of its own — per-job
// timeouts live on the compiled graph, and bounded concurrency across
// tasks is the manager's responsibility.
func New() *Engine { return &Engine{} }

// Execute drives t through g to completion, returning either the tail's
// result envelope or the single flowerr.Error that terminated the task.
// fqns maps every short name in g to its fully-qualified name, used only
// to annotate errors and the envelope's RETURN_JOB.
func (e *Engine) Execute(ctx context.Context, g *compose.Graph, fqns map[string]string, t task.Task, globalCtx map[string]any) (task.Envelope, *flowerr.Error) {
	state := newExecState(g)
	grp, gctx := errgroup.WithContext(ctx)

	for short, node := range g.Jobs {
		short, node := short, node
		grp.Go(func() error {
			return runNode(gctx, short, node, g, state, fqns, t, globalCtx)
		})
	}

	if err := grp.Wait(); err != nil {
		var fe *flowerr.Error
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, flowerr.Wrap(flowerr.RunError, err).WithTask(t.ID())
	}

	tailOutput, saved := state.results()
	env := task.NewEnvelope(tailOutput, fqns[g.Tail], t, saved)
	return env, nil
}

func runNode(ctx context.Context, short string, node *compose.JobNode, g *compose.Graph, state *execState, fqns map[string]string, t task.Task, globalCtx map[string]any) error {
	logger := ctxlog.FromContext(ctx)

	timer := time.NewTimer(node.Timeout)
	defer timer.Stop()
	select {
	case <-state.gate(short):
	case <-timer.C:
		return flowerr.New(flowerr.InputTimeout, fmt.Sprintf("timed out waiting for inputs of %q", short)).
			WithJob(fqns[short]).WithTask(t.ID())
	case <-ctx.Done():
		return flowerr.Wrap(flowerr.Cancelled, ctx.Err()).WithJob(fqns[short]).WithTask(t.ID())
	}

	logger.Debug("running job", "short_name", short, "task_id", t.ID())

	rt := &runtime{task: t, inputs: state.snapshotInputs(short), global: globalCtx}
	out, err := node.Job.Run(ctx, rt)
	if err != nil {
		var fe *flowerr.Error
		if errors.As(err, &fe) {
			return fe.WithJob(fqns[short]).WithTask(t.ID())
		}
		return flowerr.Wrap(flowerr.RunError, err).WithJob(fqns[short]).WithTask(t.ID())
	}

	if node.SaveResult {
		state.saveResult(short, out)
	}

	output, ok := out.(map[string]any)
	if !ok {
		if short == g.Tail {
			output = map[string]any{"result": out}
		} else {
			return flowerr.New(flowerr.NonMappingOutput,
				fmt.Sprintf("job %q returned a non-mapping value and is not the tail", short)).
				WithJob(fqns[short]).WithTask(t.ID())
		}
	}

	state.post(short, output, g)
	if short == g.Tail {
		state.setTailOutput(output)
	}
	return nil
}

// runtime is the per-job view of one execution's state, implementing
// job.Runtime.
type runtime struct {
	task   task.Task
	inputs map[string]map[string]any
	global map[string]any
}

func (r *runtime) Task() map[string]any             { return r.task }
func (r *runtime) Inputs() map[string]map[string]any { return r.inputs }
func (r *runtime) GlobalContext() map[string]any     { return r.global }

var _ job.Runtime = (*runtime)(nil)

// execState is the per-execution state for one running task: it is
// allocated fresh for every (task, graph) pair and never shared across
// concurrent executions of the same graph.
type execState struct {
	mu         sync.Mutex
	gates      map[string]chan struct{}
	received   map[string]map[string]bool
	inputs     map[string]map[string]map[string]any // successor short -> predecessor short -> output
	saved      map[string]any
	tailOutput map[string]any
}

func newExecState(g *compose.Graph) *execState {
	s := &execState{
		gates:    map[string]chan struct{}{},
		received: map[string]map[string]bool{},
		inputs:   map[string]map[string]map[string]any{},
		saved:    map[string]any{},
	}
	for short, node := range g.Jobs {
		s.gates[short] = make(chan struct{})
		s.received[short] = map[string]bool{}
		s.inputs[short] = map[string]map[string]any{}
		if len(node.ExpectedInputs) == 0 {
			// Head jobs consume the task directly; their gate opens immediately.
			close(s.gates[short])
		}
	}
	return s
}

func (s *execState) gate(short string) <-chan struct{} { return s.gates[short] }

func (s *execState) snapshotInputs(short string) map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]map[string]any, len(s.inputs[short]))
	for k, v := range s.inputs[short] {
		snap[k] = v
	}
	return snap
}

// post distributes output to every successor's input slot and opens a
// successor's gate once every one of its expected inputs has arrived —
// fan-out (copy to every successor) and fan-in (wake only after N distinct
// slots are filled) in one step.
func (s *execState) post(short string, output map[string]any, g *compose.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, succ := range g.Jobs[short].Successors {
		s.inputs[succ][short] = output
		s.received[succ][short] = true
		if len(s.received[succ]) == len(g.Jobs[succ].ExpectedInputs) {
			select {
			case <-s.gates[succ]:
			default:
				close(s.gates[succ])
			}
		}
	}
}

// saveResult records a job's full, pre-wrap output — the raw value Run
// returned, before any tail non-mapping wrapping — into saved_results.
func (s *execState) saveResult(short string, output any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[short] = output
}

func (s *execState) setTailOutput(output map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tailOutput = output
}

func (s *execState) results() (map[string]any, map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tailOutput, s.saved
}
