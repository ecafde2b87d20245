// Package manager implements the registry and submission front-end: the
// component that owns compiled graphs, assigns collision-free fully
// qualified names, accepts task submissions, tracks lifecycle counters,
// and hands back structured results and errors.
//
// A Manager is an explicit value rather than a process-wide singleton:
// callers construct one with New and hold onto it for the lifetime of
// their graphs and tasks.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/flow4ago/flow4ago/internal/compose"
	"github.com/flow4ago/flow4ago/internal/ctxlog"
	"github.com/flow4ago/flow4ago/internal/engine"
	"github.com/flow4ago/flow4ago/internal/flowerr"
	"github.com/flow4ago/flow4ago/internal/nodeid"
	"github.com/flow4ago/flow4ago/internal/task"
)

// Config is the manager's configuration surface, validated with
// go-playground/validator before a Manager is built.
type Config struct {
	// MaxConcurrentTasks bounds the in-flight task count. Zero means
	// unbounded.
	MaxConcurrentTasks int `validate:"gte=0"`
	// DefaultJobInputTimeout is the per-job default for expected_inputs
	// waits, used by any Leaf that didn't request its own timeout.
	DefaultJobInputTimeout time.Duration `validate:"gte=0"`
	// OnComplete, if set, is invoked by the manager as soon as a task's
	// envelope is produced, before the task counts as completed. Panics or errors inside it are not
	// recovered: the callback is untrusted user code and must guard
	// itself.
	OnComplete func(task.Envelope) `validate:"-"`
	// Logger receives the manager's structured logs. A default slog
	// logger is used if nil.
	Logger *slog.Logger `validate:"-"`
	// GlobalContext seeds the context shared across every task executed
	// against this manager, injected as j_ctx.global into any wrapped
	// function that declares a flow:"j_ctx" field. Mutate it through
	// Manager.UpdateGlobalContext, not by retaining and writing this map.
	GlobalContext map[string]any `validate:"-"`
}

var validate = validator.New()

// Counts are the manager's monotonic lifecycle totals.
type Counts struct {
	Submitted int
	Completed int
	Errors    int
}

// Results is what PopResults atomically drains.
type Results struct {
	Completed map[string][]task.Envelope
	Errors    []*flowerr.Error
}

type graphEntry struct {
	graph   *compose.Graph
	fqns    map[string]string
	headFQN string
}

// Manager is the registry and submission front-end. The zero value is not
// usable; construct one with New.
type Manager struct {
	cfg     Config
	engine  *engine.Engine
	baseCtx context.Context

	mu        sync.Mutex
	byHeadFQN map[string]*graphEntry
	byRootSeq map[uint64]*graphEntry
	allFQNs   map[string]struct{}

	sem chan struct{}

	submitted atomicCounter
	completed atomicCounter
	errCount  atomicCounter

	resMu            sync.Mutex
	completedResults map[string][]task.Envelope
	errorResults     []*flowerr.Error

	globalMu  sync.RWMutex
	globalCtx map[string]any

	cancelMu  sync.Mutex
	cancelFns map[string]context.CancelFunc
}

// New validates cfg and returns a ready Manager.
func New(cfg Config) (*Manager, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("manager: invalid config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:              cfg,
		engine:           engine.New(),
		baseCtx:          ctxlog.WithLogger(context.Background(), logger),
		byHeadFQN:        map[string]*graphEntry{},
		byRootSeq:        map[uint64]*graphEntry{},
		allFQNs:          map[string]struct{}{},
		completedResults: map[string][]task.Envelope{},
		cancelFns:        map[string]context.CancelFunc{},
		globalCtx:        map[string]any{},
	}
	for k, v := range cfg.GlobalContext {
		m.globalCtx[k] = v
	}
	if cfg.MaxConcurrentTasks > 0 {
		m.sem = make(chan struct{}, cfg.MaxConcurrentTasks)
	}
	return m, nil
}

// AddGraph compiles and registers a composition, returning its head FQN.
// Re-registering the exact same composition root returns the FQN assigned
// the first time (identity check on the composition root).
func (m *Manager) AddGraph(root compose.Node, graphName, variant string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rootSeq := compose.RootIdentity(root)
	if entry, ok := m.byRootSeq[rootSeq]; ok {
		return entry.headFQN, nil
	}

	g, err := compose.Compile(root, compose.Config{DefaultTimeout: m.cfg.DefaultJobInputTimeout})
	if err != nil {
		return "", err
	}

	v := nodeid.UniqueVariant(m.allFQNs, graphName, variant)
	fqns := make(map[string]string, len(g.Jobs))
	for short := range g.Jobs {
		fqn := nodeid.MakeFQN(graphName, v, short)
		fqns[short] = fqn
		m.allFQNs[fqn] = struct{}{}
	}

	entry := &graphEntry{graph: g, fqns: fqns, headFQN: fqns[g.Head]}
	m.byHeadFQN[entry.headFQN] = entry
	m.byRootSeq[rootSeq] = entry
	return entry.headFQN, nil
}

// Submit enqueues t for execution against fqn, returning its task_id. fqn
// may be empty iff exactly one graph is registered.
func (m *Manager) Submit(t task.Task, fqn string) (string, error) {
	entry, resolvedFQN, err := m.resolveGraph(fqn)
	if err != nil {
		return "", err
	}
	return m.submitOne(entry, resolvedFQN, t), nil
}

// SubmitMany enqueues every task in tasks for execution against fqn,
// returning their task_ids in the same order. fqn may be empty iff exactly
// one graph is registered. Each task is enqueued independently: a failure
// resolving fqn aborts the whole batch before any task is submitted, but
// once submission begins every task runs and is counted exactly as it
// would be through Submit.
func (m *Manager) SubmitMany(tasks []task.Task, fqn string) ([]string, error) {
	entry, resolvedFQN, err := m.resolveGraph(fqn)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = m.submitOne(entry, resolvedFQN, t)
	}
	return taskIDs, nil
}

// submitOne assigns t a task_id if it doesn't have one, enqueues it for
// execution against entry/resolvedFQN, and returns its task_id.
func (m *Manager) submitOne(entry *graphEntry, resolvedFQN string, t task.Task) string {
	if t == nil {
		t = task.New(nil)
	} else if _, hasID := t[task.IDKey]; !hasID {
		t[task.IDKey] = uuid.NewString()
	}
	taskID := t.ID()

	if m.sem != nil {
		m.sem <- struct{}{}
	}
	m.submitted.add(1)

	taskCtx, cancel := context.WithCancel(m.baseCtx)
	m.cancelMu.Lock()
	m.cancelFns[taskID] = cancel
	m.cancelMu.Unlock()

	go m.run(taskCtx, cancel, entry, resolvedFQN, t)

	return taskID
}

func (m *Manager) resolveGraph(fqn string) (*graphEntry, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fqn == "" {
		if len(m.byHeadFQN) != 1 {
			return nil, "", flowerr.New(flowerr.UnknownGraph,
				"fqn is required when more than one graph is registered")
		}
		for k := range m.byHeadFQN {
			fqn = k
		}
	}
	entry, ok := m.byHeadFQN[fqn]
	if !ok {
		return nil, "", flowerr.New(flowerr.UnknownGraph, fmt.Sprintf("no graph registered for fqn %q", fqn))
	}
	return entry, fqn, nil
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, entry *graphEntry, fqn string, t task.Task) {
	defer func() {
		if m.sem != nil {
			<-m.sem
		}
		m.cancelMu.Lock()
		delete(m.cancelFns, t.ID())
		m.cancelMu.Unlock()
		cancel()
	}()

	env, ferr := m.engine.Execute(ctx, entry.graph, entry.fqns, t, m.GlobalContext())
	if ferr != nil {
		m.errCount.add(1)
		m.resMu.Lock()
		m.errorResults = append(m.errorResults, ferr)
		m.resMu.Unlock()
		return
	}

	m.resMu.Lock()
	m.completedResults[fqn] = append(m.completedResults[fqn], env)
	m.resMu.Unlock()

	// Panics or errors raised by OnComplete are not caught: the callback is
	// untrusted user code and must guard itself.
	if m.cfg.OnComplete != nil {
		m.cfg.OnComplete(env)
	}
	m.completed.add(1)
}

// WaitForCompletion polls submitted == completed + errors until it holds
// or timeout elapses. It only observes the manager's counters; it never
// drains PopResults itself.
func (m *Manager) WaitForCompletion(timeout, checkInterval time.Duration) bool {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		c := m.GetCounts()
		if c.Submitted == c.Completed+c.Errors {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(checkInterval)
	}
}

// PopResults atomically drains and clears the result buffer.
func (m *Manager) PopResults() Results {
	m.resMu.Lock()
	defer m.resMu.Unlock()
	res := Results{Completed: m.completedResults, Errors: m.errorResults}
	m.completedResults = map[string][]task.Envelope{}
	m.errorResults = nil
	return res
}

// GetCounts returns the manager's monotonic lifecycle totals.
func (m *Manager) GetCounts() Counts {
	return Counts{
		Submitted: m.submitted.load(),
		Completed: m.completed.load(),
		Errors:    m.errCount.load(),
	}
}

// GlobalContext returns a snapshot of the context shared across every task
// executed against m, injected as j_ctx.global into wrapped functions that
// declare a flow:"j_ctx" field.
func (m *Manager) GlobalContext() map[string]any {
	m.globalMu.RLock()
	defer m.globalMu.RUnlock()
	snap := make(map[string]any, len(m.globalCtx))
	for k, v := range m.globalCtx {
		snap[k] = v
	}
	return snap
}

// UpdateGlobalContext merges updates into the context shared across every
// task executed against m. It takes effect for tasks dispatched after this
// call returns; tasks already mid-execution see whatever snapshot
// GlobalContext handed their runtime at dispatch time.
func (m *Manager) UpdateGlobalContext(updates map[string]any) {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()
	for k, v := range updates {
		m.globalCtx[k] = v
	}
}

// CancelAll best-effort cancels every in-flight execution.
func (m *Manager) CancelAll() {
	m.cancelMu.Lock()
	fns := make([]context.CancelFunc, 0, len(m.cancelFns))
	for _, fn := range m.cancelFns {
		fns = append(fns, fn)
	}
	m.cancelMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Execute is the one-shot convenience: compile + submit-one + wait + pop,
// raising if wait timed out or the task recorded an error.
func (m *Manager) Execute(t task.Task, root compose.Node, graphName string, timeout time.Duration) (task.Envelope, error) {
	fqn, err := m.AddGraph(root, graphName, "")
	if err != nil {
		return nil, err
	}
	taskID, err := m.Submit(t, fqn)
	if err != nil {
		return nil, err
	}
	if !m.WaitForCompletion(timeout, 10*time.Millisecond) {
		return nil, fmt.Errorf("manager: execute timed out waiting for task %s", taskID)
	}
	results := m.PopResults()
	for _, fe := range results.Errors {
		if fe.TaskID == taskID {
			return nil, fe
		}
	}
	for _, env := range results.Completed[fqn] {
		if pt, ok := env[task.TaskPassthroughKey].(task.Task); ok && pt.ID() == taskID {
			return env, nil
		}
	}
	return nil, fmt.Errorf("manager: execute could not locate result for task %s", taskID)
}
