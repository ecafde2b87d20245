package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	task   map[string]any
	inputs map[string]map[string]any
	global map[string]any
}

func (f *fakeRuntime) Task() map[string]any             { return f.task }
func (f *fakeRuntime) Inputs() map[string]map[string]any { return f.inputs }
func (f *fakeRuntime) GlobalContext() map[string]any     { return f.global }

func TestRouteParamsDottedAndNestedAgree(t *testing.T) {
	dotted := map[string]any{"square.x": 5}
	nested := map[string]any{"square": map[string]any{"x": 5}}

	assert.Equal(t, RouteParams(dotted, "square"), RouteParams(nested, "square"))
}

func TestRouteParamsIgnoresOtherShortNames(t *testing.T) {
	routed := RouteParams(map[string]any{"square.x": 5, "double.y": 9}, "square")
	assert.Equal(t, map[string]any{"x": 5}, routed)
}

type squareParams struct {
	X int `flow:"x"`
}

func TestWrappedFuncBindsTaggedField(t *testing.T) {
	square, err := Wrap("square", func(_ context.Context, p squareParams) (any, error) {
		return p.X * p.X, nil
	})
	require.NoError(t, err)

	rt := &fakeRuntime{task: map[string]any{"square.x": 5}}
	out, err := square.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": 25}, out)
}

type ctxParams struct {
	JCtx JobContext `flow:"j_ctx"`
}

func TestWrappedFuncInjectsContext(t *testing.T) {
	agg, err := Wrap("agg", func(_ context.Context, p ctxParams) (any, error) {
		out := map[string]any{}
		for _, v := range p.JCtx.Inputs {
			for k, vv := range v {
				out[k] = vv
			}
		}
		return out, nil
	})
	require.NoError(t, err)

	rt := &fakeRuntime{
		task: map[string]any{},
		inputs: map[string]map[string]any{
			"sq":  {"squared": []int{1, 4, 9}},
			"dbl": {"doubled": []int{2, 4, 6}},
		},
	}
	out, err := agg.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9}, out.(map[string]any)["squared"])
	assert.Equal(t, []int{2, 4, 6}, out.(map[string]any)["doubled"])
}

type argsParams struct {
	Args []any `flow:"args"`
}

func TestWrappedFuncBindsArgsSlice(t *testing.T) {
	sum, err := Wrap("sum", func(_ context.Context, p argsParams) (any, error) {
		total := 0
		for _, a := range p.Args {
			total += a.(int)
		}
		return total, nil
	})
	require.NoError(t, err)

	rt := &fakeRuntime{task: map[string]any{"sum": map[string]any{"args": []any{1, 2, 3}}}}
	out, err := sum.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": 6}, out)
}

func TestWrappedFuncParamBindError(t *testing.T) {
	square, err := Wrap("square", func(_ context.Context, p squareParams) (any, error) {
		return p.X, nil
	})
	require.NoError(t, err)

	rt := &fakeRuntime{task: map[string]any{"square.x": "not-an-int"}}
	_, err = square.Run(context.Background(), rt)
	require.Error(t, err)
}

func TestHeadPassthrough(t *testing.T) {
	rt := &fakeRuntime{task: map[string]any{"a": 1}}
	out, err := HeadPassthrough.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, out)
}

func TestTailAggregate(t *testing.T) {
	rt := &fakeRuntime{inputs: map[string]map[string]any{
		"a": {"x": 1},
		"b": {"y": 2},
	}}
	out, err := TailAggregate.Run(context.Background(), rt)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}, "b": map[string]any{"y": 2}}, out)
}
