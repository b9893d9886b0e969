package liveeval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOverwriteIdentity(t *testing.T) {
	id := NoChange[string]()
	require.True(t, id.IsEmpty())
	require.Equal(t, "cur", id.Apply("cur"))
}

func TestOverwriteApply(t *testing.T) {
	o := OverwriteWith("new")
	require.False(t, o.IsEmpty())
	require.Equal(t, "new", o.Apply("cur"))

	v, ok := o.Value()
	require.True(t, ok)
	require.Equal(t, "new", v)
}

// TestOverwriteComposeLatestWins checks the "latest wins" monoid law: the
// result of composing two Overwrites always matches applying them in
// sequence, and whenever the second one actually changed something it's the
// one that survives.
func TestOverwriteComposeLatestWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cur := rapid.String().Draw(t, "cur")

		var a Overwrite[string]
		if rapid.Bool().Draw(t, "aChanged") {
			a = OverwriteWith(rapid.String().Draw(t, "aVal"))
		}

		var b Overwrite[string]
		if rapid.Bool().Draw(t, "bChanged") {
			b = OverwriteWith(rapid.String().Draw(t, "bVal"))
		}

		sequential := b.Apply(a.Apply(cur))
		composed := a.Compose(b).Apply(cur)

		require.Equal(t, sequential, composed)
	})
}
