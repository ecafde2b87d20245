package job

import (
	"context"
	"fmt"
	"reflect"

	"github.com/flow4ago/flow4ago/internal/flowerr"
)

// ContextParam is the struct-field tag value that marks the field a
// WrappedFunc should receive its injected job context on.
const ContextParam = "j_ctx"

// JobContext is what gets injected into a j_ctx-tagged field: the matched
// parameters for this job, every predecessor's inputs, and the context
// shared across the whole manager.
type JobContext struct {
	Task   map[string]any
	Inputs map[string]map[string]any
	Global map[string]any
}

// Go erases parameter names at compile time, so a WrappedFunc cannot
// introspect a function's declared argument names at runtime. Instead it
// introspects the *fields* of the generic parameter struct T, tagged with
// `flow:"name"`, once at Wrap time, building a one-time parameter
// descriptor from the struct's shape rather than from runtime names.
type fieldPlan struct {
	params map[string]int // flow tag -> field index
	args   int             // index of the `flow:"args"` field, or -1
	kwargs int             // index of the `flow:"kwargs"` field, or -1
	ctx    int             // index of the `flow:"j_ctx"` field, or -1
}

func planFields(t reflect.Type) (fieldPlan, error) {
	plan := fieldPlan{params: map[string]int{}, args: -1, kwargs: -1, ctx: -1}
	if t.Kind() != reflect.Struct {
		return plan, fmt.Errorf("job: wrapped function's parameter type %s must be a struct", t)
	}
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("flow")
		if !ok {
			continue
		}
		switch tag {
		case reservedArgsKey:
			plan.args = i
		case reservedKwargsKey:
			plan.kwargs = i
		case ContextParam:
			plan.ctx = i
		default:
			plan.params[tag] = i
		}
	}
	return plan, nil
}

// WrappedFunc is the "wrapped-callable" job runtime contract variant: a
// plain Go function plus the one-time parameter descriptor computed for it
// at Wrap time.
type WrappedFunc[T any] struct {
	shortName string
	fn        func(context.Context, T) (any, error)
	plan      fieldPlan
}

// Wrap adapts fn into a Job. T's fields tagged `flow:"name"` bind by name
// from every predecessor's output, overlaid with anything the task routes
// to shortName (see RouteParams) — so a named field is fed by the graph
// edge that produced it unless the task addresses it explicitly. When
// exactly one named field is left unbound and the job has exactly one
// predecessor, that field takes the predecessor's "result" value. A field
// tagged `flow:"args"` receives the reserved positional-args list and one
// tagged `flow:"kwargs"` receives the reserved keyword-args map, both read
// only from task-routed params; one tagged `flow:"j_ctx"` receives the
// injected JobContext. Untagged fields are left at their zero value.
func Wrap[T any](shortName string, fn func(context.Context, T) (any, error)) (*WrappedFunc[T], error) {
	var zero T
	plan, err := planFields(reflect.TypeOf(zero))
	if err != nil {
		return nil, err
	}
	return &WrappedFunc[T]{shortName: shortName, fn: fn, plan: plan}, nil
}

// ShortName reports the short name this wrapper routes parameters under.
func (w *WrappedFunc[T]) ShortName() string { return w.shortName }

func (w *WrappedFunc[T]) Run(ctx context.Context, rt Runtime) (any, error) {
	routed := RouteParams(rt.Task(), w.shortName)

	// Named fields bind from every predecessor's output, keyed by the
	// predecessor's own output field names, overlaid with anything the task
	// addresses to this job explicitly — an explicit task-level value wins
	// over whatever a predecessor produced under the same name, since it
	// was supplied to override, not merely to feed, the pipeline. The
	// reserved kwargs dict, if present, is folded in last: its entries are
	// merged into the same named-parameter set rather than only bound to a
	// dedicated kwargs field.
	available := map[string]any{}
	for _, out := range rt.Inputs() {
		for k, v := range out {
			available[k] = v
		}
	}
	for k, v := range routed {
		available[k] = v
	}
	if kwargs, ok := routed[reservedKwargsKey]; ok {
		if m, ok := kwargs.(map[string]any); ok {
			for k, v := range m {
				available[k] = v
			}
		}
	}

	var params T
	v := reflect.ValueOf(&params).Elem()

	if w.plan.args >= 0 {
		if args, ok := routed[reservedArgsKey]; ok {
			if err := bindField(v.Field(w.plan.args), args); err != nil {
				return nil, w.bindErr("args", err)
			}
		}
	}
	if w.plan.kwargs >= 0 {
		if kwargs, ok := routed[reservedKwargsKey]; ok {
			if err := bindField(v.Field(w.plan.kwargs), kwargs); err != nil {
				return nil, w.bindErr("kwargs", err)
			}
		}
	}
	var unbound []string
	for name, idx := range w.plan.params {
		if name == reservedArgsKey || name == reservedKwargsKey {
			continue
		}
		if val, ok := available[name]; ok {
			if err := bindField(v.Field(idx), val); err != nil {
				return nil, w.bindErr(name, err)
			}
		} else {
			unbound = append(unbound, name)
		}
	}
	// A single named field left unbound takes the "result" value of a lone
	// predecessor, so a job returning a plain value feeds the next one.
	if len(unbound) == 1 && len(rt.Inputs()) == 1 {
		for _, out := range rt.Inputs() {
			if val, ok := out["result"]; ok {
				if err := bindField(v.Field(w.plan.params[unbound[0]]), val); err != nil {
					return nil, w.bindErr(unbound[0], err)
				}
			}
		}
	}
	if w.plan.ctx >= 0 {
		jctx := JobContext{Task: routed, Inputs: rt.Inputs(), Global: rt.GlobalContext()}
		v.Field(w.plan.ctx).Set(reflect.ValueOf(jctx))
	}

	result, err := w.fn(ctx, params)
	if err != nil {
		return nil, flowerr.Wrap(flowerr.RunError, err)
	}
	if m, ok := result.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"result": result}, nil
}

func (w *WrappedFunc[T]) bindErr(param string, cause error) error {
	return flowerr.New(flowerr.ParamBindError,
		fmt.Sprintf("job %q: cannot bind parameter %q: %v", w.shortName, param, cause))
}

// bindField assigns val into field, converting between assignable numeric
// and string kinds where the value's type isn't identical to the field's;
// conversions that aren't possible return an error rather than silently
// keeping the original value, since Go's static field type leaves no later
// point to recover at.
func bindField(field reflect.Value, val any) error {
	if val == nil {
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("value of type %s is not assignable to field of type %s", rv.Type(), field.Type())
}
