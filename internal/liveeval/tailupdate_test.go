package liveeval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTailUpdateIdentity(t *testing.T) {
	list := []int{1, 2, 3, 4}

	var id TailUpdate[int]
	require.True(t, id.IsEmpty())
	require.Equal(t, list, id.Apply(list))
}

func TestTailUpdateApply(t *testing.T) {
	list := []int{1, 2, 3, 4}

	u := TailUpdate[int]{NumDropped: 2, NewTail: []int{5, 6, 7}}
	require.Equal(t, []int{1, 2, 5, 6, 7}, u.Apply(list))
}

func TestTailUpdateApplyDropsAll(t *testing.T) {
	list := []int{1, 2, 3}

	u := TailUpdate[int]{NumDropped: 10, NewTail: []int{9}}
	require.Equal(t, []int{9}, u.Apply(list))
}

// TestTailUpdateComposeMatchesSequentialApply is property P6: composing two
// TailUpdates and applying the result must equal applying them one after
// another.
func TestTailUpdateComposeMatchesSequentialApply(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 8).Draw(t, "base")

		firstDrop := rapid.IntRange(0, len(base)+2).Draw(t, "firstDrop")
		firstTail := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 5).Draw(t, "firstTail")
		u1 := TailUpdate[int]{NumDropped: firstDrop, NewTail: firstTail}

		mid := u1.Apply(base)

		secondDrop := rapid.IntRange(0, len(mid)+2).Draw(t, "secondDrop")
		secondTail := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 5).Draw(t, "secondTail")
		u2 := TailUpdate[int]{NumDropped: secondDrop, NewTail: secondTail}

		sequential := u2.Apply(mid)
		composed := u1.Compose(u2).Apply(base)

		require.Equal(t, sequential, composed)
	})
}

// TestTailUpdateComposeIdentity checks the identity laws: composing with the
// zero value on either side is a no-op.
func TestTailUpdateComposeIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		drop := rapid.IntRange(0, 10).Draw(t, "drop")
		tail := rapid.SliceOfN(rapid.IntRange(0, 100), 0, 5).Draw(t, "tail")
		u := TailUpdate[int]{NumDropped: drop, NewTail: tail}

		var id TailUpdate[int]

		require.Equal(t, u, id.Compose(u))
		require.Equal(t, u, u.Compose(id))
	})
}

// TestTailUpdateComposeAssociative checks associativity of Compose over
// three arbitrary updates, applied against a common base list.
func TestTailUpdateComposeAssociative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 6).Draw(t, "base")

		drawUpdate := func(label string, cur []int) TailUpdate[int] {
			drop := rapid.IntRange(0, len(cur)+2).Draw(t, label+"Drop")
			tail := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 4).Draw(t, label+"Tail")
			return TailUpdate[int]{NumDropped: drop, NewTail: tail}
		}

		u1 := drawUpdate("u1", base)
		afterU1 := u1.Apply(base)
		u2 := drawUpdate("u2", afterU1)
		afterU2 := u2.Apply(afterU1)
		u3 := drawUpdate("u3", afterU2)

		left := u1.Compose(u2).Compose(u3)
		right := u1.Compose(u2.Compose(u3))

		require.Equal(t, left.Apply(base), right.Apply(base))
	})
}
