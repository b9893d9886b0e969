package liveeval

import (
	"context"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/substrate-live/internal/baselib/actor"
	"github.com/stretchr/testify/require"
)

// newTestDLO starts a minimal dead-letter actor for tests that need one,
// mirroring the mock used in internal/baselib/actor's own tests.
func newTestDLO(t *testing.T) actor.ActorRef[actor.Message, any] {
	t.Helper()

	behavior := actor.NewFunctionBehavior(
		func(ctx context.Context, msg actor.Message) fn.Result[any] {
			return fn.Ok[any](nil)
		},
	)

	a := actor.NewActor(actor.ActorConfig[actor.Message, any]{
		ID:          "test-dlo",
		Behavior:    behavior,
		MailboxSize: 16,
	})
	a.Start()
	t.Cleanup(a.Stop)

	return a.Ref()
}

// pushCells replaces source's cell list wholesale with cells, publishing the
// NodeListUpdate computed against whatever source currently holds.
func pushCells(t *testing.T, ctx context.Context,
	source *IncServer[NodeList[string], NodeListUpdate[string]],
	fresh *FreshNames, cells []string) {

	t.Helper()

	cur, err := source.Snapshot(ctx)
	require.NoError(t, err)

	update := ComputeNodeListUpdate(cur, cells, eqString, fresh)
	source.Update(ctx, update)
	source.Flush(ctx)
}

// TestDagEvaluatorSequentialEvaluation covers spec.md §8 scenario 1: three
// cells pushed at once all end up Complete, each with its own cell's output.
// The environment threaded between them is not checked here.
func TestDagEvaluatorSequentialEvaluation(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)
	fresh := NewFreshNames()

	source := NewIncServer[NodeList[string], NodeListUpdate[string]](
		"src", NodeList[string]{}, dlo,
	)

	evalFunc := func(_ context.Context, env string, cell string) (string, string) {
		out := cell + "!"
		return out, env + cell
	}

	evaluator, err := NewDagEvaluator[string, string, string](
		"ev", source, evalFunc, "", dlo,
	)
	require.NoError(t, err)

	pushCells(t, ctx, source, fresh, []string{"a", "b", "c"})

	require.Eventually(t, func() bool {
		snap, err := evaluator.Out().Snapshot(ctx)
		if err != nil || len(snap.Nodes) != 3 {
			return false
		}

		for _, n := range snap.Nodes {
			if !n.Elt.Status.IsComplete() {
				return false
			}
		}

		return true
	}, 2*time.Second, 5*time.Millisecond)

	snap, err := evaluator.Out().Snapshot(ctx)
	require.NoError(t, err)

	outs := make([]string, 3)
	for i, n := range snap.Nodes {
		out, _ := n.Elt.Status.Output()
		outs[i] = out
	}
	require.Equal(t, []string{"a!", "b!", "c!"}, outs)
}

// TestDagEvaluatorOneJobInvariant polls the evaluator mid-flight and checks
// invariant ONE-JOB: never more than one Running cell at a time.
func TestDagEvaluatorOneJobInvariant(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)
	fresh := NewFreshNames()

	source := NewIncServer[NodeList[string], NodeListUpdate[string]](
		"src", NodeList[string]{}, dlo,
	)

	evalFunc := func(_ context.Context, env string, cell string) (string, string) {
		time.Sleep(2 * time.Millisecond)
		return cell + "!", env + cell
	}

	evaluator, err := NewDagEvaluator[string, string, string](
		"ev", source, evalFunc, "", dlo,
	)
	require.NoError(t, err)

	pushCells(t, ctx, source, fresh, []string{"a", "b", "c", "d", "e"})

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		snap, err := evaluator.Out().Snapshot(ctx)
		require.NoError(t, err)

		running := 0
		for _, n := range snap.Nodes {
			if n.Elt.Status.IsRunning() {
				running++
			}
		}
		require.LessOrEqual(t, running, 1)

		allDone := len(snap.Nodes) == 5
		for _, n := range snap.Nodes {
			allDone = allDone && n.Elt.Status.IsComplete()
		}
		if allDone {
			return
		}

		time.Sleep(time.Millisecond)
	}

	t.Fatal("evaluation did not complete in time")
}

// TestDagEvaluatorCancelsInvalidatedJob covers spec.md §8 scenario where an
// edit to the running cell cancels its job: a job blocked mid-flight must be
// abandoned (its result discarded as a zombie) once the edit that
// invalidates it arrives, and the newly edited cell must be evaluated fresh.
func TestDagEvaluatorCancelsInvalidatedJob(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)
	fresh := NewFreshNames()

	source := NewIncServer[NodeList[string], NodeListUpdate[string]](
		"src", NodeList[string]{}, dlo,
	)

	gate := make(chan struct{})
	cancelledCh := make(chan struct{}, 1)

	evalFunc := func(ctx context.Context, env string, cell string) (string, string) {
		if cell == "block" {
			select {
			case <-gate:
			case <-ctx.Done():
				cancelledCh <- struct{}{}
				return "stale", env
			}
		}

		return cell + "!", env + cell
	}

	evaluator, err := NewDagEvaluator[string, string, string](
		"ev", source, evalFunc, "", dlo,
	)
	require.NoError(t, err)

	pushCells(t, ctx, source, fresh, []string{"block"})

	require.Eventually(t, func() bool {
		snap, err := evaluator.Out().Snapshot(ctx)
		return err == nil && len(snap.Nodes) == 1 &&
			snap.Nodes[0].Elt.Status.IsRunning()
	}, time.Second, 5*time.Millisecond)

	// Replace the blocked cell entirely with unrelated content: no common
	// prefix, so the running job's index is no longer valid and must be
	// cancelled.
	pushCells(t, ctx, source, fresh, []string{"other"})

	select {
	case <-cancelledCh:
	case <-time.After(time.Second):
		t.Fatal("cancelled job never observed ctx.Done()")
	}

	close(gate)

	require.Eventually(t, func() bool {
		snap, err := evaluator.Out().Snapshot(ctx)
		if err != nil || len(snap.Nodes) != 1 {
			return false
		}

		out, ok := snap.Nodes[0].Elt.Status.Output()
		return ok && out == "other!"
	}, time.Second, 5*time.Millisecond)
}

// TestDagEvaluatorAppendDoesNotCancelRunningJob covers the complementary
// case: appending a new cell after the one currently running must not
// disturb the in-flight job, since its index remains valid.
func TestDagEvaluatorAppendDoesNotCancelRunningJob(t *testing.T) {
	ctx := context.Background()
	dlo := newTestDLO(t)
	fresh := NewFreshNames()

	source := NewIncServer[NodeList[string], NodeListUpdate[string]](
		"src", NodeList[string]{}, dlo,
	)

	gate := make(chan struct{})

	evalFunc := func(ctx context.Context, env string, cell string) (string, string) {
		if cell == "block" {
			select {
			case <-gate:
			case <-ctx.Done():
				return "stale", env
			}
		}

		return cell + "!", env + cell
	}

	evaluator, err := NewDagEvaluator[string, string, string](
		"ev", source, evalFunc, "", dlo,
	)
	require.NoError(t, err)

	pushCells(t, ctx, source, fresh, []string{"block"})

	require.Eventually(t, func() bool {
		snap, err := evaluator.Out().Snapshot(ctx)
		return err == nil && len(snap.Nodes) == 1 &&
			snap.Nodes[0].Elt.Status.IsRunning()
	}, time.Second, 5*time.Millisecond)

	pushCells(t, ctx, source, fresh, []string{"block", "next"})

	// Give the evaluator a moment to process the append, then confirm the
	// first cell is still Running, not restarted.
	time.Sleep(20 * time.Millisecond)

	snap, err := evaluator.Out().Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 2)
	require.True(t, snap.Nodes[0].Elt.Status.IsRunning())
	require.True(t, snap.Nodes[1].Elt.Status.IsWaiting())

	close(gate)

	require.Eventually(t, func() bool {
		snap, err := evaluator.Out().Snapshot(ctx)
		if err != nil || len(snap.Nodes) != 2 {
			return false
		}

		for _, n := range snap.Nodes {
			if !n.Elt.Status.IsComplete() {
				return false
			}
		}

		return true
	}, time.Second, 5*time.Millisecond)

	snap, err = evaluator.Out().Snapshot(ctx)
	require.NoError(t, err)

	out0, _ := snap.Nodes[0].Elt.Status.Output()
	out1, _ := snap.Nodes[1].Elt.Status.Output()
	require.Equal(t, "block!", out0)
	require.Equal(t, "next!", out1)
}
