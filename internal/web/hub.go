// Package web serves a ResultsServer's live NodeList over HTTP: a websocket
// endpoint streaming the snapshot-then-diffs feed a browser front end
// consumes, adapted from Subtrate's mail-notification Hub/WSClient onto the
// live-eval domain.
package web

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/roasbeef/substrate-live/internal/baselib/actor"
	"github.com/roasbeef/substrate-live/internal/liveeval"
)

// wsEnvelope is the JSON shape of every message a browser client receives:
// a full "snapshot" once at connect time, and a "diff" for every
// subsequently flushed NodeListUpdate.
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Hub subscribes once to a ResultsServer and fans its diff stream out to any
// number of websocket clients, mirroring its own NodeList so a client that
// joins mid-stream gets a correct starting snapshot instead of an empty one.
type Hub[O, Env any] struct {
	mu      sync.RWMutex
	current liveeval.NodeList[liveeval.NodeState[liveeval.SourceBlock, O]]
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	diffs      chan []byte

	ctx    context.Context
	cancel context.CancelFunc
}

// hubSink adapts Hub to actor.TellOnlyRef so it can subscribe directly to a
// ResultsServer's IncServer.
type hubSink[O, Env any] struct {
	hub *Hub[O, Env]
}

// ID implements actor.TellOnlyRef.
func (hubSink[O, Env]) ID() string { return "web-hub" }

// Tell implements actor.TellOnlyRef: folds the diff into the hub's mirrored
// state and queues the marshaled envelope for every connected client.
func (s hubSink[O, Env]) Tell(_ context.Context,
	msg liveeval.DiffMsg[liveeval.NodeListUpdate[liveeval.NodeState[liveeval.SourceBlock, O]]]) {
	s.hub.mu.Lock()
	s.hub.current = msg.Update.Apply(s.hub.current)
	s.hub.mu.Unlock()

	data, err := json.Marshal(msg.Update)
	if err != nil {
		return
	}

	env, err := json.Marshal(wsEnvelope{Type: "diff", Data: data})
	if err != nil {
		return
	}

	select {
	case s.hub.diffs <- env:
	default:
	}
}

var _ actor.TellOnlyRef[liveeval.DiffMsg[liveeval.NodeListUpdate[liveeval.NodeState[liveeval.SourceBlock, struct{}]]]] = hubSink[struct{}, struct{}]{}

// NewHub subscribes to server's diff stream and returns a Hub ready to have
// its Run loop started and clients registered.
func NewHub[O, Env any](ctx context.Context,
	server *liveeval.ResultsServer[O, Env]) (*Hub[O, Env], error) {

	hubCtx, cancel := context.WithCancel(ctx)

	h := &Hub[O, Env]{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		diffs:      make(chan []byte, 256),
		ctx:        hubCtx,
		cancel:     cancel,
	}

	snapshot, err := server.Subscribe(ctx, hubSink[O, Env]{hub: h})
	if err != nil {
		cancel()
		return nil, err
	}
	h.current = snapshot

	return h, nil
}

// Run drives the hub's register/unregister/broadcast loop until ctx is
// cancelled.
func (h *Hub[O, Env]) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

			// Registering c and handing it its initial snapshot
			// happen in this one select case, so no diffs case
			// can interleave between them: c's own send channel
			// preserves the order it's enqueued in, guaranteeing
			// the snapshot is queued ahead of any diff.
			snapshot, err := h.snapshotEnvelope()
			if err == nil {
				c.Send(snapshot)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}
			h.mu.Unlock()

		case data := <-h.diffs:
			h.mu.RLock()
			for c := range h.clients {
				c.Send(data)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop tears the hub down.
func (h *Hub[O, Env]) Stop() {
	h.cancel()
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub[O, Env]) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// snapshotEnvelope marshals the hub's current mirrored NodeList as a
// connect-time "snapshot" envelope.
func (h *Hub[O, Env]) snapshotEnvelope() ([]byte, error) {
	h.mu.RLock()
	cur := h.current
	h.mu.RUnlock()

	data, err := json.Marshal(cur)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wsEnvelope{Type: "snapshot", Data: data})
}
