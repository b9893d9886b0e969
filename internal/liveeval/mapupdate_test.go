package liveeval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMapEltUpdateComposeTable verifies the composition table from spec.md
// §3: Create.Update=Create, Create.Delete=annihilate, Update.Update=
// Update(later), Update.Delete=Delete, Delete.Create=Update.
func TestMapEltUpdateComposeTable(t *testing.T) {
	a, b := CreateElt(1), UpdateElt(2)
	got, keep := composeElt(a, b)
	require.True(t, keep)
	require.True(t, got.IsCreate())
	v, _ := got.Value()
	require.Equal(t, 2, v)

	_, keep = composeElt(CreateElt(1), DeleteElt[int]())
	require.False(t, keep)

	got, keep = composeElt(UpdateElt(1), UpdateElt(2))
	require.True(t, keep)
	require.False(t, got.IsCreate())
	require.False(t, got.IsDelete())
	v, _ = got.Value()
	require.Equal(t, 2, v)

	got, keep = composeElt(UpdateElt(1), DeleteElt[int]())
	require.True(t, keep)
	require.True(t, got.IsDelete())

	got, keep = composeElt(DeleteElt[int](), CreateElt(3))
	require.True(t, keep)
	require.False(t, got.IsCreate())
	require.False(t, got.IsDelete())
	v, _ = got.Value()
	require.Equal(t, 3, v)
}

func TestMapUpdateApply(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}

	u := MapUpdate[string, int]{
		"a": DeleteElt[int](),
		"c": CreateElt(3),
	}

	out := u.Apply(m)
	require.Equal(t, map[string]int{"b": 2, "c": 3}, out)

	// Original map untouched.
	require.Equal(t, map[string]int{"a": 1, "b": 2}, m)
}

func TestMapUpdateComposeMatchesSequentialApply(t *testing.T) {
	m := map[string]int{"a": 1}

	u1 := MapUpdate[string, int]{"a": UpdateElt(2), "b": CreateElt(10)}
	u2 := MapUpdate[string, int]{"b": UpdateElt(20), "a": DeleteElt[int]()}

	sequential := u2.Apply(u1.Apply(m))
	composed := u1.Compose(u2).Apply(m)

	require.Equal(t, sequential, composed)
}
