package flow4ago_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flow4ago/flow4ago"
)

// TestLinearPipelineScenario exercises S1 from the executor's testable
// properties: a two-job wrapped-callable pipeline, submitted with a dotted
// parameter, is expected to produce {"result": 50} with the original task
// preserved as the passthrough.
func TestLinearPipelineScenario(t *testing.T) {
	type squareParams struct {
		X int `flow:"x"`
	}
	square, err := flow4ago.Wrap("square", func(_ context.Context, p squareParams) (any, error) {
		return p.X * p.X, nil
	})
	require.NoError(t, err)

	type doubleParams struct {
		InputVal int `flow:"input_val"`
	}
	double, err := flow4ago.Wrap("double", func(_ context.Context, p doubleParams) (any, error) {
		return p.InputVal * 2, nil
	})
	require.NoError(t, err)

	m, err := flow4ago.NewManager(flow4ago.Config{})
	require.NoError(t, err)

	fqn, err := m.AddGraph(flow4ago.Sequence(
		flow4ago.Leaf("square", square),
		flow4ago.Leaf("double", double),
	), "pipeline", "")
	require.NoError(t, err)

	original := flow4ago.NewTask(map[string]any{"square.x": 5})
	_, err = m.Submit(original, fqn)
	require.NoError(t, err)

	require.True(t, m.WaitForCompletion(time.Second, time.Millisecond))

	results := m.PopResults()
	require.Len(t, results.Completed[fqn], 1)

	env := results.Completed[fqn][0]
	assert.Equal(t, 50, env["result"])
	assert.Equal(t, original, env["task_passthrough"])
	assert.Equal(t, "pipeline$$$$double$$", env["return_job"])
}

func TestFQNCollisionScenario(t *testing.T) {
	type params struct {
		X int `flow:"x"`
	}
	newLeaf := func(name string) flow4ago.Node {
		j, err := flow4ago.Wrap(name, func(_ context.Context, p params) (any, error) {
			return p.X, nil
		})
		require.NoError(t, err)
		return flow4ago.Leaf(name, j)
	}

	m, err := flow4ago.NewManager(flow4ago.Config{})
	require.NoError(t, err)

	fqnX, err := m.AddGraph(newLeaf("hX"), "g", "v")
	require.NoError(t, err)
	fqnY, err := m.AddGraph(newLeaf("hY"), "g", "v")
	require.NoError(t, err)

	assert.Equal(t, "g$$v$$hX$$", fqnX)
	assert.Equal(t, "g$$v_1$$hY$$", fqnY)
}
