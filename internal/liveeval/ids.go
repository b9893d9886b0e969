// Package liveeval implements the incremental evaluation pipeline: a file
// watcher feeds whole-file snapshots to a cell parser, which diffs them
// against an ordered cell DAG with stable node identities, which in turn
// feeds a DAG evaluator that drives cells one at a time through an
// externally supplied evaluation function and republishes per-cell status as
// a stream of minimal diffs.
//
// The parser, the evaluator, and the incremental state server each stage
// publishes through are actors from internal/baselib/actor: single inbox,
// single goroutine, no shared mutable state across component boundaries.
// The file watcher is not an actor; its Run loop is a plain goroutine that
// publishes into its own IncServer.
package liveeval

import "sync/atomic"

// NodeId is an opaque, monotonically allocated identity for a cell. Node ids
// are stable across edits: a cell whose text is unchanged keeps its NodeId
// across a re-parse, which is how evaluation results survive edits that only
// touch later cells.
type NodeId int64

// FreshNames allocates monotonically increasing NodeIds. It is safe for
// concurrent use, though in practice only the cell parser actor ever calls
// Next, from its own single-threaded message loop.
type FreshNames struct {
	next atomic.Int64
}

// NewFreshNames returns a name source whose first allocation is NodeId(1).
func NewFreshNames() *FreshNames {
	return &FreshNames{}
}

// Next allocates and returns a new, never-before-seen NodeId.
func (f *FreshNames) Next() NodeId {
	return NodeId(f.next.Add(1))
}
