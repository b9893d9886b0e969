package actor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrNoActorsAvailable is returned by a RoutingStrategy that is given no
// candidate actors to choose from.
var ErrNoActorsAvailable = errors.New("no actors available")

// RoutingStrategy picks one ActorRef out of a slice of candidates.
// Implementations must be safe for concurrent use, since a router may be
// shared by many callers.
type RoutingStrategy[M Message, R any] interface {
	// Select chooses one of actors to receive the next message. It
	// returns ErrNoActorsAvailable if actors is empty.
	Select(actors []ActorRef[M, R]) (ActorRef[M, R], error)
}

// roundRobinStrategy cycles through candidates in order, wrapping around.
type roundRobinStrategy[M Message, R any] struct {
	next atomic.Uint64
}

// NewRoundRobinStrategy returns a RoutingStrategy that distributes messages
// evenly across all candidates in rotation.
func NewRoundRobinStrategy[M Message, R any]() RoutingStrategy[M, R] {
	return &roundRobinStrategy[M, R]{}
}

// Select implements RoutingStrategy.
func (s *roundRobinStrategy[M, R]) Select(
	actors []ActorRef[M, R]) (ActorRef[M, R], error) {

	if len(actors) == 0 {
		return nil, ErrNoActorsAvailable
	}

	idx := s.next.Add(1) - 1

	return actors[idx%uint64(len(actors))], nil
}

// router is a virtual ActorRef that looks up the live set of actors
// registered under a ServiceKey and forwards each message to one of them,
// chosen by a RoutingStrategy. It implements ActorRef so callers cannot tell
// it apart from a single concrete actor.
type router[M Message, R any] struct {
	receptionist *Receptionist
	key          ServiceKey[M, R]
	strategy     RoutingStrategy[M, R]
	dlo          ActorRef[Message, any]
}

// NewRouter creates a virtual ActorRef that load-balances across all actors
// currently registered under key, using strategy to pick among them. If no
// actor is registered when a message is sent, the message is routed to the
// dead letter office instead.
func NewRouter[M Message, R any](r *Receptionist, key ServiceKey[M, R],
	strategy RoutingStrategy[M, R], dlo ActorRef[Message, any],
) ActorRef[M, R] {

	return &router[M, R]{
		receptionist: r,
		key:          key,
		strategy:     strategy,
		dlo:          dlo,
	}
}

// pick resolves the current candidate set and applies the strategy. It
// returns false if no actor is currently registered.
func (rt *router[M, R]) pick(msg M) (ActorRef[M, R], bool) {
	candidates := FindInReceptionist(rt.receptionist, rt.key)

	target, err := rt.strategy.Select(candidates)
	if err != nil {
		return nil, false
	}

	return target, true
}

// ID returns the service key name this router dispatches to.
func (rt *router[M, R]) ID() string {
	return "router->" + rt.key.name
}

// Tell routes msg to one registered actor, or to the dead letter office if
// none is currently registered.
func (rt *router[M, R]) Tell(ctx context.Context, msg M) {
	target, ok := rt.pick(msg)
	if !ok {
		if rt.dlo != nil {
			rt.dlo.Tell(ctx, msg)
		}

		return
	}

	target.Tell(ctx, msg)
}

// Ask routes msg to one registered actor and returns its Future. If no actor
// is currently registered, the returned Future completes immediately with
// ErrActorTerminated.
func (rt *router[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	target, ok := rt.pick(msg)
	if !ok {
		p := NewPromise[R]()
		p.Complete(fn.Err[R](ErrActorTerminated))

		return p.Future()
	}

	return target.Ask(ctx, msg)
}
