package liveeval

import "encoding/json"

// wire.go implements the JSON shapes described in spec.md §6: a full
// NodeList snapshot as an ordered id list plus a map, and a NodeListUpdate as
// a tail-edit plus a sparse per-node map edit. These are one-way (Marshal
// only) — the browser UI is the only consumer, and it never sends a
// NodeList/NodeListUpdate back.

// nodeListWire is the JSON shape of a full NodeList snapshot.
type nodeListWire struct {
	OrderedNodes []NodeId        `json:"orderedNodes"`
	NodeMap      json.RawMessage `json:"nodeMap"`
}

// MarshalJSON implements json.Marshaler for a full NodeList snapshot:
// orderedNodes plus a NodeId-keyed map of the element at each node.
func (l NodeList[A]) MarshalJSON() ([]byte, error) {
	m := make(map[string]A, len(l.Nodes))
	for _, n := range l.Nodes {
		m[nodeIDKey(n.Id)] = n.Elt
	}

	mapJSON, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	return json.Marshal(nodeListWire{
		OrderedNodes: l.Ids(),
		NodeMap:      mapJSON,
	})
}

// tailUpdateWire is the JSON shape of a TailUpdate.
type tailUpdateWire[A any] struct {
	NumDropped int `json:"numDropped"`
	NewTail    []A `json:"newTail"`
}

// mapEltWire is the JSON shape of one MapEltUpdate entry.
type mapEltWire[A any] struct {
	Tag   string `json:"tag"`
	Value *A     `json:"value,omitempty"`
}

// nodeListUpdateWire is the JSON shape of a NodeListUpdate, matching
// spec.md §6's `{ orderedNodesUpdate: {numDropped, newTail}, nodeMapUpdate:
// {...} }`. newTail carries NodeId/element pairs rather than bare ids so the
// client can populate its local map without a second round trip; dropped ids
// are conveyed positionally by numDropped against the client's own
// previously-received orderedNodes. nodeMapUpdate carries only the entries
// of Elts, tagged "create", "update" or "delete"; cells in newTail are not
// repeated there. In-tree only the DAG evaluator emits Elts, as "update"
// entries when a cell's status changes without moving it.
type nodeListUpdateWire[A any] struct {
	OrderedNodesUpdate tailUpdateWire[nodeEntryWire[A]] `json:"orderedNodesUpdate"`
	NodeMapUpdate      map[string]mapEltWire[A]         `json:"nodeMapUpdate"`
}

// nodeEntryWire is the JSON shape of one NodeEntry.
type nodeEntryWire[A any] struct {
	Id  NodeId `json:"id"`
	Elt A      `json:"elt"`
}

// MarshalJSON implements json.Marshaler for a NodeListUpdate diff.
func (u NodeListUpdate[A]) MarshalJSON() ([]byte, error) {
	newTail := make([]nodeEntryWire[A], len(u.Tail.NewTail))
	for i, e := range u.Tail.NewTail {
		newTail[i] = nodeEntryWire[A]{Id: e.Id, Elt: e.Elt}
	}

	eltMap := make(map[string]mapEltWire[A], len(u.Elts))
	for id, e := range u.Elts {
		switch {
		case e.IsDelete():
			eltMap[nodeIDKey(id)] = mapEltWire[A]{Tag: "delete"}

		case e.IsCreate():
			v, _ := e.Value()
			eltMap[nodeIDKey(id)] = mapEltWire[A]{Tag: "create", Value: &v}

		default:
			v, _ := e.Value()
			eltMap[nodeIDKey(id)] = mapEltWire[A]{Tag: "update", Value: &v}
		}
	}

	return json.Marshal(nodeListUpdateWire[A]{
		OrderedNodesUpdate: tailUpdateWire[nodeEntryWire[A]]{
			NumDropped: u.Tail.NumDropped,
			NewTail:    newTail,
		},
		NodeMapUpdate: eltMap,
	})
}

// nodeStateWire is the JSON shape of a NodeState.
type nodeStateWire[I, O any] struct {
	Input  I                  `json:"input"`
	Status NodeEvalStatus[O] `json:"status"`
}

// MarshalJSON implements json.Marshaler for NodeState, producing the
// `{ input, status }` shape spec.md §6 names.
func (n NodeState[I, O]) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeStateWire[I, O]{Input: n.Input, Status: n.Status})
}

// nodeEvalStatusWire is the JSON shape of a NodeEvalStatus: the bare string
// "Waiting"/"Running" for those states, or {"Complete": <O>} for Complete,
// per spec.md §6.
type nodeEvalStatusWire[O any] struct {
	Complete *O `json:"Complete,omitempty"`
}

// MarshalJSON implements json.Marshaler for NodeEvalStatus.
func (s NodeEvalStatus[O]) MarshalJSON() ([]byte, error) {
	switch s.tag {
	case evalWaiting:
		return json.Marshal("Waiting")

	case evalRunning:
		return json.Marshal("Running")

	default:
		out, _ := s.Output()
		return json.Marshal(nodeEvalStatusWire[O]{Complete: &out})
	}
}

// nodeIDKey renders a NodeId the way JSON object keys require: as a decimal
// string, since NodeId is a named int64 and Go's encoding/json doesn't
// stringify named integer map keys for us when the map's value type (A) is
// itself a user type without a fixed JSON representation.
func nodeIDKey(id NodeId) string {
	return itoa64(int64(id))
}

// itoa64 is a tiny strconv.FormatInt(n, 10) equivalent kept local to avoid
// importing strconv into this file's otherwise single-purpose import list.
func itoa64(n int64) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// highlightWire is the JSON shape of a Highlight.
type highlightWire struct {
	Kind string `json:"kind"`
	Span Span   `json:"span"`
}

// sourceBlockWire is the JSON shape of a SourceBlock, per spec.md §6:
// line number, block id, lexeme list, focus map, highlight map, hover-info
// map, and pre-rendered HTML.
type sourceBlockWire struct {
	Line       int                     `json:"line"`
	BlockID    int                     `json:"blockId"`
	Lexemes    []string                `json:"lexemes"`
	Focus      map[string]int          `json:"focus"`
	Highlights map[string][]highlightWire `json:"highlights"`
	HoverInfo  map[string]string       `json:"hoverInfo"`
	HTML       string                  `json:"html"`
}

// MarshalJSON implements json.Marshaler for SourceBlock, re-keying its
// int-keyed maps to the string keys JSON objects require and spelling out
// HighlightKind as a name rather than its numeric tag.
func (b SourceBlock) MarshalJSON() ([]byte, error) {
	focus := make(map[string]int, len(b.Focus))
	for k, v := range b.Focus {
		focus[itoa64(int64(k))] = v
	}

	highlights := make(map[string][]highlightWire, len(b.Highlights))
	for k, hs := range b.Highlights {
		wire := make([]highlightWire, len(hs))
		for i, h := range hs {
			wire[i] = highlightWire{Kind: h.Kind.String(), Span: h.Span}
		}
		highlights[itoa64(int64(k))] = wire
	}

	hover := make(map[string]string, len(b.HoverInfo))
	for k, v := range b.HoverInfo {
		hover[itoa64(int64(k))] = v
	}

	return json.Marshal(sourceBlockWire{
		Line:       b.Line,
		BlockID:    b.BlockID,
		Lexemes:    b.Lexemes,
		Focus:      focus,
		Highlights: highlights,
		HoverInfo:  hover,
		HTML:       b.HTML,
	})
}
