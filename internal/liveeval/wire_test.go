package liveeval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeListMarshalJSONShape(t *testing.T) {
	list := NodeList[string]{Nodes: []NodeEntry[string]{
		{Id: 1, Elt: "a"},
		{Id: 2, Elt: "b"},
	}}

	raw, err := json.Marshal(list)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Contains(t, decoded, "orderedNodes")
	require.Contains(t, decoded, "nodeMap")

	ordered, ok := decoded["orderedNodes"].([]any)
	require.True(t, ok)
	require.Len(t, ordered, 2)
}

func TestNodeEvalStatusMarshalJSONShape(t *testing.T) {
	waiting, err := json.Marshal(Waiting[string]())
	require.NoError(t, err)
	require.JSONEq(t, `"Waiting"`, string(waiting))

	running, err := json.Marshal(Running[string]())
	require.NoError(t, err)
	require.JSONEq(t, `"Running"`, string(running))

	complete, err := json.Marshal(Complete("done"))
	require.NoError(t, err)
	require.JSONEq(t, `{"Complete":"done"}`, string(complete))
}

func TestNodeStateMarshalJSONShape(t *testing.T) {
	state := NodeState[string, string]{Input: "x", Status: Complete("x!")}

	raw, err := json.Marshal(state)
	require.NoError(t, err)
	require.JSONEq(t, `{"input":"x","status":{"Complete":"x!"}}`, string(raw))
}

func TestNodeListUpdateMarshalJSONShape(t *testing.T) {
	u := NodeListUpdate[string]{
		Tail: TailUpdate[NodeEntry[string]]{
			NumDropped: 1,
			NewTail:    []NodeEntry[string]{{Id: 3, Elt: "c"}},
		},
		Elts: MapUpdate[NodeId, string]{
			2: UpdateElt("b2"),
		},
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "orderedNodesUpdate")
	require.Contains(t, decoded, "nodeMapUpdate")
}
