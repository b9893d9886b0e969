package liveeval

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/substrate-live/internal/baselib/actor"
)

// Diff constrains the update types usable with IncServer. S is the state
// the update applies to; U is the update type itself (TailUpdate[A],
// NodeListUpdate[A], Overwrite[T], ...). Apply advances state forward by
// one update; Compose collapses two updates observed back-to-back into a
// single equivalent one, which is what lets IncServer coalesce a burst of
// updates between flushes into the one diff it actually publishes.
type Diff[S, U any] interface {
	Apply(S) S
	Compose(U) U
	IsEmpty() bool
}

// incMsg seals the set of messages an IncServer actor accepts.
type incMsg interface {
	actor.Message
	isIncMsg()
}

// updateMsg carries one incremental update into the server.
type updateMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
	update U
}

func (updateMsg[S, U]) MessageType() string { return "liveeval.update" }
func (updateMsg[S, U]) isIncMsg()           {}

// subscribeMsg registers a subscriber to receive published diffs.
type subscribeMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
	sub actor.TellOnlyRef[DiffMsg[U]]
}

func (subscribeMsg[S, U]) MessageType() string { return "liveeval.subscribe" }
func (subscribeMsg[S, U]) isIncMsg()           {}

// unsubscribeMsg removes a previously registered subscriber.
type unsubscribeMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
	sub actor.TellOnlyRef[DiffMsg[U]]
}

func (unsubscribeMsg[S, U]) MessageType() string { return "liveeval.unsubscribe" }
func (unsubscribeMsg[S, U]) isIncMsg()           {}

// flushMsg publishes the pending composed update (if any) to all current
// subscribers and clears it.
type flushMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
}

func (flushMsg[S, U]) MessageType() string { return "liveeval.flush" }
func (flushMsg[S, U]) isIncMsg()           {}

// snapshotMsg asks for the current state in full, bypassing the diff
// stream. Used by late subscribers and by introspection tooling.
type snapshotMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
}

func (snapshotMsg[S, U]) MessageType() string { return "liveeval.snapshot" }
func (snapshotMsg[S, U]) isIncMsg()           {}

// subscribeSnapshotMsg registers sub and asks for the current state in the
// same Receive call, so the registration and the returned snapshot are
// atomic with respect to every other message this actor processes: no
// update can land strictly between "subscriber added" and "state read",
// which is what spec.md §4.2's subscribe contract requires (no diff lost or
// double-delivered between the returned snapshot and the first pushed
// update).
type subscribeSnapshotMsg[S any, U Diff[S, U]] struct {
	actor.BaseMessage
	sub actor.TellOnlyRef[DiffMsg[U]]
}

func (subscribeSnapshotMsg[S, U]) MessageType() string {
	return "liveeval.subscribeSnapshot"
}
func (subscribeSnapshotMsg[S, U]) isIncMsg() {}

// DiffMsg is pushed to every subscriber of an IncServer whenever its
// pending update is flushed. It embeds actor.BaseMessage so it can be
// delivered through an actor.TellOnlyRef like any other message.
type DiffMsg[U any] struct {
	actor.BaseMessage
	Update U
}

// MessageType implements actor.Message.
func (DiffMsg[U]) MessageType() string { return "liveeval.diff" }

// incServerBehavior is the ActorBehavior driving an IncServer: it owns the
// current state, the composed-but-not-yet-published update, and the
// subscriber list, and mutates all three only from inside Receive - so no
// locking is needed despite Update/Subscribe/Flush being called
// concurrently from other actors.
type incServerBehavior[S any, U Diff[S, U]] struct {
	state       S
	pending     U
	hasPending  bool
	subscribers []actor.TellOnlyRef[DiffMsg[U]]
}

// newIncServerBehavior builds a behavior seeded with an initial state.
func newIncServerBehavior[S any, U Diff[S, U]](initial S) *incServerBehavior[S, U] {
	return &incServerBehavior[S, U]{state: initial}
}

// Receive implements actor.ActorBehavior.
func (b *incServerBehavior[S, U]) Receive(ctx context.Context,
	msg incMsg) fn.Result[S] {

	switch m := msg.(type) {
	case updateMsg[S, U]:
		// Only buffer. state advances exclusively inside flush, so a
		// snapshot taken between this Update and the next Flush never
		// observes part of a batch that a later-delivered diff would
		// then double-apply.
		if b.hasPending {
			b.pending = b.pending.Compose(m.update)
		} else {
			b.pending = m.update
			b.hasPending = true
		}

		return fn.Ok(b.state)

	case subscribeMsg[S, U]:
		b.subscribers = append(b.subscribers, m.sub)
		return fn.Ok(b.state)

	case subscribeSnapshotMsg[S, U]:
		b.subscribers = append(b.subscribers, m.sub)
		return fn.Ok(b.state)

	case unsubscribeMsg[S, U]:
		out := b.subscribers[:0]
		for _, s := range b.subscribers {
			if s.ID() != m.sub.ID() {
				out = append(out, s)
			}
		}
		b.subscribers = out

		return fn.Ok(b.state)

	case flushMsg[S, U]:
		b.flush(ctx)
		return fn.Ok(b.state)

	case snapshotMsg[S, U]:
		return fn.Ok(b.state)

	default:
		return fn.Err[S](ErrUnknownIncMessage)
	}
}

// flush publishes the pending composed update to every subscriber and
// clears it. A no-op if nothing changed since the last flush.
func (b *incServerBehavior[S, U]) flush(ctx context.Context) {
	if !b.hasPending || b.pending.IsEmpty() {
		return
	}

	b.state = b.pending.Apply(b.state)

	diff := DiffMsg[U]{Update: b.pending}
	for _, sub := range b.subscribers {
		sub.Tell(ctx, diff)
	}

	var zero U
	b.pending = zero
	b.hasPending = false
}

// IncServer is a live, incrementally-updated piece of state: callers push
// Updates to it (from possibly many producers), it composes each update into
// a pending diff, and on Flush it applies that net diff to its state and
// publishes it to every Subscribe-d listener. It is the building block
// shared by the file watcher, the cell parser, and the DAG evaluator.
type IncServer[S any, U Diff[S, U]] struct {
	actorRef actor.ActorRef[incMsg, S]
}

// NewIncServer starts an IncServer actor seeded with initial and returns a
// handle to it. id is used as the underlying actor's identifier for
// logging.
func NewIncServer[S any, U Diff[S, U]](id string, initial S,
	dlo actor.ActorRef[actor.Message, any]) *IncServer[S, U] {

	behavior := newIncServerBehavior[S, U](initial)

	a := actor.NewActor[incMsg, S](actor.ActorConfig[incMsg, S]{
		ID:          id,
		Behavior:    behavior,
		DLO:         dlo,
		MailboxSize: 64,
	})
	a.Start()

	return &IncServer[S, U]{actorRef: a.Ref()}
}

// Update composes u into the pending diff that the next Flush will publish.
// It does not advance the server's current state; that only happens inside
// Flush, so Snapshot always reflects the last-flushed value, never a
// partially-applied in-flight batch.
func (s *IncServer[S, U]) Update(ctx context.Context, u U) {
	s.actorRef.Tell(ctx, updateMsg[S, U]{update: u})
}

// Flush publishes the pending composed diff (if any) to all current
// subscribers and clears it.
func (s *IncServer[S, U]) Flush(ctx context.Context) {
	s.actorRef.Tell(ctx, flushMsg[S, U]{})
}

// Subscribe registers sub to receive every future published diff. It does
// not receive the state accumulated before it subscribed; call Snapshot
// for that.
func (s *IncServer[S, U]) Subscribe(ctx context.Context,
	sub actor.TellOnlyRef[DiffMsg[U]]) {

	s.actorRef.Tell(ctx, subscribeMsg[S, U]{sub: sub})
}

// Unsubscribe removes a previously registered subscriber.
func (s *IncServer[S, U]) Unsubscribe(ctx context.Context,
	sub actor.TellOnlyRef[DiffMsg[U]]) {

	s.actorRef.Tell(ctx, unsubscribeMsg[S, U]{sub: sub})
}

// Snapshot returns the server's state as of the last Flush, in full.
func (s *IncServer[S, U]) Snapshot(ctx context.Context) (S, error) {
	res := s.actorRef.Ask(ctx, snapshotMsg[S, U]{}).Await(ctx)
	return res.Unpack()
}

// SubscribeSnapshot atomically registers sub and returns the state as of the
// last Flush, implementing spec.md §4.2's subscribe(subscriber) -> S:
// because registration and the state read happen inside the same Receive
// call, no update processed by this actor can fall in the gap between them,
// so the first diff sub ever receives always picks up exactly where the
// returned snapshot leaves off - and because state only ever advances
// inside flush, the snapshot can never include part of an in-flight batch
// that a subsequently published diff would then double-apply.
func (s *IncServer[S, U]) SubscribeSnapshot(ctx context.Context,
	sub actor.TellOnlyRef[DiffMsg[U]]) (S, error) {

	res := s.actorRef.Ask(ctx, subscribeSnapshotMsg[S, U]{sub: sub}).Await(ctx)
	return res.Unpack()
}

// Ref exposes the underlying actor reference so a hosting ActorSystem can
// register this server with a Receptionist service key.
func (s *IncServer[S, U]) Ref() actor.ActorRef[incMsg, S] {
	return s.actorRef
}
