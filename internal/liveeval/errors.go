package liveeval

import "errors"

var (
	// ErrUnknownIncMessage is returned by an IncServer's behavior when it
	// receives a message it doesn't recognize. This should never happen in
	// practice since IncServer's own typed API is the only place that
	// constructs its messages.
	ErrUnknownIncMessage = errors.New("liveeval: unknown incremental server message")

	// ErrNoSuchNode is returned when a caller references a NodeId that is
	// not present in the current node list.
	ErrNoSuchNode = errors.New("liveeval: no such node")

	// ErrWatchPathRequired is returned when a watcher is configured without
	// a path to watch.
	ErrWatchPathRequired = errors.New("liveeval: watch path is required")

	// ErrEvalFuncRequired is returned when a DAG evaluator is constructed
	// without an evaluation function.
	ErrEvalFuncRequired = errors.New("liveeval: eval function is required")
)
