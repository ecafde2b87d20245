package task

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsTaskID(t *testing.T) {
	tk := New(map[string]any{"square.x": 5})
	require.NotEmpty(t, tk.ID())
	assert.Equal(t, 5, tk["square.x"])
}

func TestNewPreservesExplicitTaskID(t *testing.T) {
	tk := New(map[string]any{IDKey: "fixed-id"})
	assert.Equal(t, "fixed-id", tk.ID())
}

func TestCloneIsIndependent(t *testing.T) {
	original := New(map[string]any{"a": 1})
	clone := original.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, original["a"])
	assert.Equal(t, 2, clone["a"])
}

func TestNewEnvelopeShape(t *testing.T) {
	original := New(map[string]any{"square.x": 5})
	env := NewEnvelope(map[string]any{"result": 50}, "g$$v$$double$$", original, map[string]any{})

	want := Envelope{
		"result":           50,
		ReturnJobKey:       "g$$v$$double$$",
		TaskPassthroughKey: original,
		SavedResultsKey:    map[string]any{},
	}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
}
