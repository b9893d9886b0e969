package liveeval

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/substrate-live/internal/baselib/actor"
)

// evalMsg seals the set of messages a DagEvaluator actor accepts. It is
// parameterized identically to the evaluator itself so the message set is
// distinct per instantiation (e.g. DagEvaluator[SourceBlock, DemoResult,
// string] and a hypothetical second evaluator never share a mailbox type).
type evalMsg[I, O, Env any] interface {
	actor.Message
	isEvalMsg()
}

// evalSourceMsg carries one NodeListUpdate[I] diff from the cell parser into
// the evaluator.
type evalSourceMsg[I, O, Env any] struct {
	actor.BaseMessage
	update NodeListUpdate[I]
}

func (evalSourceMsg[I, O, Env]) MessageType() string {
	return "liveeval.evaluator.sourceUpdate"
}
func (evalSourceMsg[I, O, Env]) isEvalMsg() {}

// evalJobCompleteMsg is sent by a worker goroutine back to its own evaluator
// when evalFun returns. genID identifies which spawn produced it, standing in
// for the thread id spec.md's JobComplete(threadId, ...) carries — the
// zombie check in handleJobComplete compares genID the same way §4.5.4
// compares thread ids.
type evalJobCompleteMsg[I, O, Env any] struct {
	actor.BaseMessage
	genID   uint64
	output  O
	nextEnv Env
}

func (evalJobCompleteMsg[I, O, Env]) MessageType() string {
	return "liveeval.evaluator.jobComplete"
}
func (evalJobCompleteMsg[I, O, Env]) isEvalMsg() {}

// runningJob is the evaluator's private record of the one job that may be
// in flight at a time (invariant ONE-JOB). cancel lets handleSourceUpdate
// interrupt the worker cooperatively when an edit invalidates it; the worker
// is expected to observe ctx.Done() at its own suspension points, per the
// cooperative-cancellation strategy in spec.md's design notes.
type runningJob struct {
	genID  uint64
	nodeID NodeId
	index  int
	cancel context.CancelFunc
}

// evaluatorBehavior is the DAG evaluator's ActorBehavior. current mirrors the
// NodeList[NodeState[I,O]] published via out; the evaluator needs its own
// copy to look up cell inputs by jobIndex/nodeId and to compute each emitted
// diff's Apply against the last value it itself produced (IncServer does not
// expose its internal state back out synchronously).
type evaluatorBehavior[I, O, Env any] struct {
	evalFunc EvalFunc[I, O, Env]

	current  NodeList[NodeState[I, O]]
	prevEnvs []Env
	curJob   *runningJob
	nextGen  uint64

	out  *IncServer[NodeList[NodeState[I, O]], NodeListUpdate[NodeState[I, O]]]
	self actor.TellOnlyRef[evalMsg[I, O, Env]]
}

// Receive implements actor.ActorBehavior.
func (b *evaluatorBehavior[I, O, Env]) Receive(ctx context.Context,
	msg evalMsg[I, O, Env]) fn.Result[struct{}] {

	switch m := msg.(type) {
	case evalSourceMsg[I, O, Env]:
		b.handleSourceUpdate(ctx, m.update)
		return fn.Ok(struct{}{})

	case evalJobCompleteMsg[I, O, Env]:
		b.handleJobComplete(ctx, m)
		return fn.Ok(struct{}{})

	default:
		return fn.Err[struct{}](ErrUnknownIncMessage)
	}
}

// handleSourceUpdate implements spec.md §4.5.2: truncate the environment
// chain to the surviving prefix, lift the parser's diff into NodeState[I,O]
// with fresh cells Waiting, and either launch a job (if none is running),
// kill and relaunch (if the running job was invalidated), or leave the
// running job alone (if it is still valid).
func (b *evaluatorBehavior[I, O, Env]) handleSourceUpdate(ctx context.Context,
	update NodeListUpdate[I]) {

	nDropped := update.Tail.NumDropped
	nTotal := len(b.current.Nodes)
	nValid := nTotal - nDropped

	if keep := nValid + 1; keep < len(b.prevEnvs) {
		b.prevEnvs = append([]Env(nil), b.prevEnvs[:keep]...)
	}

	outUpdate := NodeListUpdate[NodeState[I, O]]{
		Tail: TailUpdate[NodeEntry[NodeState[I, O]]]{
			NumDropped: nDropped,
			NewTail:    liftTail[I, O](update.Tail.NewTail),
		},
	}
	b.current = outUpdate.Apply(b.current)
	b.out.Update(ctx, outUpdate)

	switch {
	case b.curJob == nil:
		b.launchNextJob(ctx)

	case b.curJob.index >= nValid:
		log.DebugS(ctx, "Cancelling invalidated job",
			"node_id", b.curJob.nodeID, "index", b.curJob.index)

		b.curJob.cancel()
		b.curJob = nil
		b.launchNextJob(ctx)

	default:
		// The running job is still valid; nothing to do.
	}

	b.out.Flush(ctx)
}

// liftTail wraps each freshly-created cell input in a Waiting NodeState,
// keeping its NodeId, to build the evaluator's own outward NodeListUpdate
// from the parser's.
func liftTail[I, O any](newTail []NodeEntry[I]) []NodeEntry[NodeState[I, O]] {
	if len(newTail) == 0 {
		return nil
	}

	out := make([]NodeEntry[NodeState[I, O]], len(newTail))
	for i, entry := range newTail {
		out[i] = NodeEntry[NodeState[I, O]]{
			Id: entry.Id,
			Elt: NodeState[I, O]{
				Input:  entry.Elt,
				Status: Waiting[O](),
			},
		}
	}

	return out
}

// launchNextJob implements spec.md §4.5.3. jobIndex is the first cell whose
// result isn't yet computed; if one exists, spawn a worker goroutine running
// evalFunc and mark the cell Running. Does not flush; callers own batching
// per §4.2's rationale for explicit flush.
func (b *evaluatorBehavior[I, O, Env]) launchNextJob(ctx context.Context) {
	jobIndex := len(b.prevEnvs) - 1
	if jobIndex >= len(b.current.Nodes) {
		return
	}

	entry := b.current.Nodes[jobIndex]
	env := b.prevEnvs[jobIndex]
	cell := entry.Elt.Input

	jobCtx, cancel := context.WithCancel(ctx)
	gen := b.nextGen
	b.nextGen++

	evalFunc := b.evalFunc
	self := b.self

	go func() {
		out, nextEnv := evalFunc(jobCtx, env, cell)

		self.Tell(context.Background(), evalJobCompleteMsg[I, O, Env]{
			genID:   gen,
			output:  out,
			nextEnv: nextEnv,
		})
	}()

	b.curJob = &runningJob{
		genID:  gen,
		nodeID: entry.Id,
		index:  jobIndex,
		cancel: cancel,
	}

	runningUpdate := NodeListUpdate[NodeState[I, O]]{
		Elts: MapUpdate[NodeId, NodeState[I, O]]{
			entry.Id: UpdateElt(NodeState[I, O]{
				Input:  cell,
				Status: Running[O](),
			}),
		},
	}
	b.current = runningUpdate.Apply(b.current)
	b.out.Update(ctx, runningUpdate)

	log.DebugS(ctx, "Launched evaluation job",
		"node_id", entry.Id, "index", jobIndex)
}

// handleJobComplete implements spec.md §4.5.4: a genID mismatch (or no job
// running at all) means this is a zombie completion from a job that was
// already cancelled and raced past the cancellation — discard it silently.
// A legitimate completion marks the cell Complete, extends the environment
// chain, and launches the next job.
func (b *evaluatorBehavior[I, O, Env]) handleJobComplete(ctx context.Context,
	msg evalJobCompleteMsg[I, O, Env]) {

	if b.curJob == nil || b.curJob.genID != msg.genID {
		log.DebugS(ctx, "Discarding zombie job completion",
			"gen_id", msg.genID)
		return
	}

	nodeID := b.curJob.nodeID
	idx := b.current.IndexOf(nodeID)
	if idx < 0 {
		// Invariant violation: the running job's node no longer
		// exists in the current list. This cannot happen because a
		// structural change that drops nodeID would have invalidated
		// and cancelled the job first (§4.5.2).
		panic("liveeval: completed node missing from current list")
	}

	input := b.current.Nodes[idx].Elt.Input

	completeUpdate := NodeListUpdate[NodeState[I, O]]{
		Elts: MapUpdate[NodeId, NodeState[I, O]]{
			nodeID: UpdateElt(NodeState[I, O]{
				Input:  input,
				Status: Complete(msg.output),
			}),
		},
	}
	b.current = completeUpdate.Apply(b.current)
	b.out.Update(ctx, completeUpdate)

	b.prevEnvs = append(b.prevEnvs, msg.nextEnv)
	b.curJob = nil

	b.launchNextJob(ctx)
	b.out.Flush(ctx)
}

// DagEvaluator subscribes to a cell parser's NodeList[I] stream and
// republishes an incrementally-updated NodeList[NodeState[I,O]], driving one
// cell at a time through evalFunc and threading Env forward per the
// ENV-CHAIN invariant.
type DagEvaluator[I, O, Env any] struct {
	actorRef actor.ActorRef[evalMsg[I, O, Env], struct{}]
	out      *IncServer[NodeList[NodeState[I, O]], NodeListUpdate[NodeState[I, O]]]
}

// NewDagEvaluator starts an evaluator actor wired to source, using evalFunc
// to advance each cell and initialEnv as prevEnvs[0]. dlo receives
// undeliverable messages, matching the rest of the pipeline's actors.
func NewDagEvaluator[I, O, Env any](id string,
	source *IncServer[NodeList[I], NodeListUpdate[I]],
	evalFunc EvalFunc[I, O, Env], initialEnv Env,
	dlo actor.ActorRef[actor.Message, any],
) (*DagEvaluator[I, O, Env], error) {

	if evalFunc == nil {
		return nil, ErrEvalFuncRequired
	}

	out := NewIncServer[NodeList[NodeState[I, O]], NodeListUpdate[NodeState[I, O]]](
		id+"-out", NodeList[NodeState[I, O]]{}, dlo,
	)

	behavior := &evaluatorBehavior[I, O, Env]{
		evalFunc: evalFunc,
		prevEnvs: []Env{initialEnv},
		out:      out,
	}

	a := actor.NewActor[evalMsg[I, O, Env], struct{}](actor.ActorConfig[evalMsg[I, O, Env], struct{}]{
		ID:          id,
		Behavior:    behavior,
		DLO:         dlo,
		MailboxSize: 64,
	})
	a.Start()

	evalRef := a.Ref()
	behavior.self = evalRef

	adapter := actor.NewMapInputRef(
		evalRef,
		func(diff DiffMsg[NodeListUpdate[I]]) evalMsg[I, O, Env] {
			return evalSourceMsg[I, O, Env]{update: diff.Update}
		},
	)
	source.Subscribe(context.Background(), adapter)

	return &DagEvaluator[I, O, Env]{actorRef: evalRef, out: out}, nil
}

// Out returns the IncServer publishing this evaluator's
// NodeListUpdate[NodeState[I,O]] diffs — the ResultsServer of spec.md §6.
func (e *DagEvaluator[I, O, Env]) Out() *IncServer[NodeList[NodeState[I, O]], NodeListUpdate[NodeState[I, O]]] {
	return e.out
}
