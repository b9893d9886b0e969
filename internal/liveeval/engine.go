package liveeval

import (
	"context"
	"time"

	"github.com/roasbeef/substrate-live/internal/baselib/actor"
)

// EvalConfig bundles the pluggable contracts named in spec.md §6: a pure
// parser from whole-file text to cells, and the evaluation function driving
// each cell forward. Eq lets a caller override SourceBlock's default
// equality (SourceBlockEq) if a richer parser wants coarser/finer identity
// comparisons for prefix diffing.
type EvalConfig[O, Env any] struct {
	// ParseCells splits a whole-file snapshot into an ordered cell list.
	// Defaults to DefaultParseCells if nil.
	ParseCells ParseFunc[SourceBlock]

	// Eq compares two cell contents for the purpose of preserving a
	// node's identity across a re-parse. Defaults to SourceBlockEq if
	// nil.
	Eq EqFunc[SourceBlock]

	// EvalFunc drives one cell forward given the environment threaded
	// from the previous cell. Required.
	EvalFunc EvalFunc[SourceBlock, O, Env]

	// PollInterval and Debounce override the file watcher's defaults
	// when non-zero; see WatcherConfig.
	PollInterval time.Duration
	Debounce     time.Duration
}

// ResultsServer is the handle spec.md §6 returns from watchAndEvalFile: a
// state server over NodeList[NodeState[SourceBlock, O]], publishing
// NodeListUpdate diffs to anyone who Subscribes.
type ResultsServer[O, Env any] struct {
	watcher   *FileWatcher
	parser    *CellParser
	evaluator *DagEvaluator[SourceBlock, O, Env]
}

// WatchAndEvalFile is the package's entry point: it wires a FileWatcher, a
// CellParser, and a DagEvaluator into one pipeline watching path, and starts
// the watcher's Run loop on a new goroutine bound to ctx. The returned
// ResultsServer is ready for Subscribe calls immediately; its NodeList starts
// empty and fills in as the watcher's initial read flows through the parser
// and evaluator.
func WatchAndEvalFile[O, Env any](ctx context.Context, path string,
	cfg EvalConfig[O, Env], initialEnv Env,
	dlo actor.ActorRef[actor.Message, any],
) (*ResultsServer[O, Env], error) {

	parse := cfg.ParseCells
	if parse == nil {
		parse = DefaultParseCells
	}

	eq := cfg.Eq
	if eq == nil {
		eq = SourceBlockEq
	}

	watcherCfg := DefaultWatcherConfig(path)
	if cfg.PollInterval > 0 {
		watcherCfg.PollInterval = cfg.PollInterval
	}
	if cfg.Debounce > 0 {
		watcherCfg.Debounce = cfg.Debounce
	}

	watcher, err := NewFileWatcher(
		watcherCfg,
		func(initial string) *IncServer[string, Overwrite[string]] {
			return NewIncServer[string, Overwrite[string]]("watcher", initial, dlo)
		},
	)
	if err != nil {
		return nil, err
	}

	parser := NewCellParser(
		"cell-parser", watcher.Out(), parse, eq, NewFreshNames(), dlo,
	)

	evaluator, err := NewDagEvaluator[SourceBlock, O, Env](
		"dag-evaluator", parser.Out(), cfg.EvalFunc, initialEnv, dlo,
	)
	if err != nil {
		return nil, err
	}

	go func() {
		if runErr := watcher.Run(ctx); runErr != nil {
			log.WarnS(ctx, "File watcher stopped", runErr, "path", path)
		}
	}()

	// The watcher's initial snapshot was seeded synchronously at
	// construction (NewFileWatcher reads the file once), but it hasn't
	// been pushed through the pipeline yet: publish it now so the parser
	// and evaluator see cell 0..n immediately rather than waiting for the
	// first filesystem event.
	if initial, _ := watcher.Out().Snapshot(ctx); initial != "" {
		watcher.Out().Update(ctx, OverwriteWith(initial))
		watcher.Out().Flush(ctx)
	}

	return &ResultsServer[O, Env]{
		watcher:   watcher,
		parser:    parser,
		evaluator: evaluator,
	}, nil
}

// Subscribe registers sub to receive future diffs and returns the server's
// current full NodeList snapshot, implementing spec.md §6's subscribeIO:
// between the returned snapshot and the first delivered diff, no update is
// lost or double-delivered, because registration and the snapshot read
// happen inside a single Receive call on the evaluator's IncServer actor
// (see SubscribeSnapshot).
func (s *ResultsServer[O, Env]) Subscribe(ctx context.Context,
	sub actor.TellOnlyRef[DiffMsg[NodeListUpdate[NodeState[SourceBlock, O]]]],
) (NodeList[NodeState[SourceBlock, O]], error) {

	return s.evaluator.Out().SubscribeSnapshot(ctx, sub)
}

// Out exposes the underlying IncServer directly, for callers (e.g. the
// websocket hub) that want finer control than Subscribe's combined
// snapshot+subscribe.
func (s *ResultsServer[O, Env]) Out() *IncServer[NodeList[NodeState[SourceBlock, O]], NodeListUpdate[NodeState[SourceBlock, O]]] {
	return s.evaluator.Out()
}
