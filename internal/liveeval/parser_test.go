package liveeval

import (
	"context"
	"testing"
	"time"

	"github.com/roasbeef/substrate-live/internal/baselib/actor"
	"github.com/stretchr/testify/require"
)

// TestCellParserPreservesNodeIdsAcrossEdit covers the parser half of spec.md
// §8 scenario: editing one line of a multi-line file keeps the NodeIds of the
// lines before it, while the edited line and every line after it are
// re-published with freshly minted NodeIds.
func TestCellParserPreservesNodeIdsAcrossEdit(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)

	watch := NewIncServer[string, Overwrite[string]]("watch", "", dlo)

	parser := NewCellParser(
		"parser", watch, DefaultParseCells, SourceBlockEq, NewFreshNames(), dlo,
	)

	sub := actor.NewChannelTellOnlyRef[DiffMsg[NodeListUpdate[SourceBlock]]]("sub", 8)
	parser.Out().Subscribe(ctx, sub)

	watch.Update(ctx, OverwriteWith("alpha\nbeta\ngamma"))
	watch.Flush(ctx)

	first, ok := sub.AwaitMessage(time.Second)
	require.True(t, ok)
	require.Equal(t, 0, first.Update.Tail.NumDropped)
	require.Len(t, first.Update.Tail.NewTail, 3)

	firstIDs := make([]NodeId, 3)
	for i, e := range first.Update.Tail.NewTail {
		firstIDs[i] = e.Id
	}

	watch.Update(ctx, OverwriteWith("alpha\nBETA-EDITED\ngamma"))
	watch.Flush(ctx)

	second, ok := sub.AwaitMessage(time.Second)
	require.True(t, ok)

	// Only the trailing two lines (beta, gamma) differ in position from
	// the edited line onward under longest-common-prefix diffing, since
	// line 2 changed: numDropped should cover everything from the edit
	// point to the end of the old list.
	require.Equal(t, 2, second.Update.Tail.NumDropped)
	require.Len(t, second.Update.Tail.NewTail, 2)

	// The new tail's ids must be freshly minted, never reusing firstIDs.
	for _, e := range second.Update.Tail.NewTail {
		for _, old := range firstIDs {
			require.NotEqual(t, old, e.Id)
		}
	}
}

func TestCellParserIgnoresNoChangeOverwrite(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)

	watch := NewIncServer[string, Overwrite[string]]("watch", "", dlo)
	parser := NewCellParser(
		"parser", watch, DefaultParseCells, SourceBlockEq, NewFreshNames(), dlo,
	)

	sub := actor.NewChannelTellOnlyRef[DiffMsg[NodeListUpdate[SourceBlock]]]("sub", 8)
	parser.Out().Subscribe(ctx, sub)

	watch.Update(ctx, NoChange[string]())
	watch.Flush(ctx)

	_, ok := sub.AwaitMessage(100 * time.Millisecond)
	require.False(t, ok)
}
