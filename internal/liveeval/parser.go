package liveeval

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/substrate-live/internal/baselib/actor"
)

// parserMsg seals the set of messages a CellParser actor accepts.
type parserMsg interface {
	actor.Message
	isParserMsg()
}

// sourceUpdateMsg carries one Overwrite[string] diff from the file watcher
// into the parser.
type sourceUpdateMsg struct {
	actor.BaseMessage
	diff Overwrite[string]
}

func (sourceUpdateMsg) MessageType() string { return "liveeval.parser.sourceUpdate" }
func (sourceUpdateMsg) isParserMsg()        {}

// parserBehavior holds the parser's view of the cell DAG (its own copy of
// the current NodeList, used to diff the next snapshot against) plus the
// pluggable parseCells/equality functions and the fresh-name allocator used
// to mint NodeIds for newly appearing cells.
type parserBehavior struct {
	parse   ParseFunc[SourceBlock]
	eq      EqFunc[SourceBlock]
	fresh   *FreshNames
	current NodeList[SourceBlock]
	out     *IncServer[NodeList[SourceBlock], NodeListUpdate[SourceBlock]]
}

// Receive implements actor.ActorBehavior. On every Overwrite carrying an
// actual change, it re-parses the full snapshot, diffs it against the
// current cell list by longest common prefix, and publishes the resulting
// NodeListUpdate as a single flushed batch.
func (b *parserBehavior) Receive(ctx context.Context,
	msg parserMsg) fn.Result[struct{}] {

	m, ok := msg.(sourceUpdateMsg)
	if !ok {
		return fn.Err[struct{}](ErrUnknownIncMessage)
	}

	text, changed := m.diff.Value()
	if !changed {
		return fn.Ok(struct{}{})
	}

	newCells := b.parse(text)

	update := ComputeNodeListUpdate(b.current, newCells, b.eq, b.fresh)
	b.current = update.Apply(b.current)

	log.DebugS(ctx, "Cell parser computed update",
		"num_dropped", update.Tail.NumDropped,
		"num_new", len(update.Tail.NewTail),
		"total_cells", len(b.current.Nodes))

	b.out.Update(ctx, update)
	b.out.Flush(ctx)

	return fn.Ok(struct{}{})
}

// CellParser subscribes to a file watcher's Overwrite[string] stream and
// republishes an incrementally-updated NodeList[SourceBlock].
type CellParser struct {
	actorRef actor.ActorRef[parserMsg, struct{}]
	out      *IncServer[NodeList[SourceBlock], NodeListUpdate[SourceBlock]]
}

// NewCellParser starts a parser actor wired to watch, using parse to turn
// snapshots into cells and eq to detect unchanged cells across re-parses.
// dlo receives undeliverable messages, matching the rest of the pipeline's
// actors.
func NewCellParser(id string, watch *IncServer[string, Overwrite[string]],
	parse ParseFunc[SourceBlock], eq EqFunc[SourceBlock], fresh *FreshNames,
	dlo actor.ActorRef[actor.Message, any],
) *CellParser {

	out := NewIncServer[NodeList[SourceBlock], NodeListUpdate[SourceBlock]](
		id+"-out", NodeList[SourceBlock]{}, dlo,
	)

	behavior := &parserBehavior{
		parse: parse,
		eq:    eq,
		fresh: fresh,
		out:   out,
	}

	a := actor.NewActor[parserMsg, struct{}](actor.ActorConfig[parserMsg, struct{}]{
		ID:          id,
		Behavior:    behavior,
		DLO:         dlo,
		MailboxSize: 64,
	})
	a.Start()

	parserRef := a.Ref()

	adapter := actor.NewMapInputRef(
		parserRef,
		func(diff DiffMsg[Overwrite[string]]) parserMsg {
			return sourceUpdateMsg{diff: diff.Update}
		},
	)
	watch.Subscribe(context.Background(), adapter)

	return &CellParser{actorRef: parserRef, out: out}
}

// Out returns the IncServer publishing this parser's NodeListUpdate diffs.
func (p *CellParser) Out() *IncServer[NodeList[SourceBlock], NodeListUpdate[SourceBlock]] {
	return p.out
}
