package liveeval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestComputeNodeListUpdatePreservesPrefix(t *testing.T) {
	fresh := NewFreshNames()

	u1 := ComputeNodeListUpdate(NodeList[string]{}, []string{"a", "b", "c"}, eqString, fresh)
	list := u1.Apply(NodeList[string]{})
	require.Equal(t, []string{"a", "b", "c"}, list.Values())

	firstID, secondID := list.Nodes[0].Id, list.Nodes[1].Id

	// Editing only the third cell must leave the first two node ids
	// untouched: property P7, prefix stability.
	u2 := ComputeNodeListUpdate(list, []string{"a", "b", "z"}, eqString, fresh)
	next := u2.Apply(list)

	require.Equal(t, []string{"a", "b", "z"}, next.Values())
	require.Equal(t, firstID, next.Nodes[0].Id)
	require.Equal(t, secondID, next.Nodes[1].Id)
	require.NotEqual(t, list.Nodes[2].Id, next.Nodes[2].Id)
}

func TestComputeNodeListUpdateAppendOnly(t *testing.T) {
	fresh := NewFreshNames()

	list := ComputeNodeListUpdate(NodeList[string]{}, []string{"a"}, eqString, fresh).
		Apply(NodeList[string]{})

	u := ComputeNodeListUpdate(list, []string{"a", "b"}, eqString, fresh)
	require.Equal(t, 0, u.Tail.NumDropped)
	require.Len(t, u.Tail.NewTail, 1)

	next := u.Apply(list)
	require.Equal(t, list.Nodes[0].Id, next.Nodes[0].Id)
	require.Equal(t, []string{"a", "b"}, next.Values())
}

func TestComputeNodeListUpdateFullReplace(t *testing.T) {
	fresh := NewFreshNames()

	list := ComputeNodeListUpdate(NodeList[string]{}, []string{"a", "b"}, eqString, fresh).
		Apply(NodeList[string]{})

	u := ComputeNodeListUpdate(list, []string{"x", "y", "z"}, eqString, fresh)
	require.Equal(t, 2, u.Tail.NumDropped)
	require.Len(t, u.Tail.NewTail, 3)
}

// TestComputeNodeListUpdateRoundTrip is property R1: re-parsing identical
// content produces the identity update, and applying it leaves the list
// byte-for-byte the same including node ids.
func TestComputeNodeListUpdateRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fresh := NewFreshNames()
		items := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 8).
			Draw(t, "items")

		list := ComputeNodeListUpdate(NodeList[string]{}, items, eqString, fresh).
			Apply(NodeList[string]{})

		u := ComputeNodeListUpdate(list, items, eqString, fresh)
		require.True(t, u.IsEmpty())

		next := u.Apply(list)
		require.Equal(t, list, next)
	})
}

func eqString(a, b string) bool { return a == b }
