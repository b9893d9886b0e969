package liveeval

// NodeEntry pairs a stable NodeId with the value currently stored at that
// node.
type NodeEntry[A any] struct {
	Id  NodeId
	Elt A
}

// NodeList is an ordered sequence of nodes, each with a stable identity.
// Today the sequence is a simple chain (node i depends only on node i-1);
// nothing in the update algebra below assumes that, so a future move to a
// genuine DAG only touches the evaluator's dependency walk, not this type.
type NodeList[A any] struct {
	Nodes []NodeEntry[A]
}

// Values returns just the element values, in order, discarding ids.
func (l NodeList[A]) Values() []A {
	out := make([]A, len(l.Nodes))
	for i, n := range l.Nodes {
		out[i] = n.Elt
	}

	return out
}

// Ids returns just the node ids, in order.
func (l NodeList[A]) Ids() []NodeId {
	out := make([]NodeId, len(l.Nodes))
	for i, n := range l.Nodes {
		out[i] = n.Id
	}

	return out
}

// IndexOf returns the position of id in the list, or -1 if absent.
func (l NodeList[A]) IndexOf(id NodeId) int {
	for i, n := range l.Nodes {
		if n.Id == id {
			return i
		}
	}

	return -1
}

// NodeListUpdate is a diff against a NodeList: Tail describes structural
// changes (nodes dropped off / appended to the end), Elts describes
// in-place value changes to nodes that survive the Tail update unchanged.
// The zero value is the identity update.
type NodeListUpdate[A any] struct {
	Tail TailUpdate[NodeEntry[A]]
	Elts MapUpdate[NodeId, A]
}

// IsEmpty reports whether this update changes nothing.
func (u NodeListUpdate[A]) IsEmpty() bool {
	return u.Tail.IsEmpty() && len(u.Elts) == 0
}

// Apply applies u to list, returning a new NodeList. The Tail update is
// applied first (establishing which nodes exist), then Elts overwrites the
// values of any surviving node named in it.
func (u NodeListUpdate[A]) Apply(list NodeList[A]) NodeList[A] {
	nodes := u.Tail.Apply(list.Nodes)

	if len(u.Elts) > 0 {
		nodes = append([]NodeEntry[A](nil), nodes...)
		for i, n := range nodes {
			if e, ok := u.Elts[n.Id]; ok {
				if v, present := e.Value(); present {
					nodes[i] = NodeEntry[A]{Id: n.Id, Elt: v}
				}
			}
		}
	}

	return NodeList[A]{Nodes: nodes}
}

// Compose collapses u followed by next into a single equivalent update.
func (u NodeListUpdate[A]) Compose(next NodeListUpdate[A]) NodeListUpdate[A] {
	return NodeListUpdate[A]{
		Tail: u.Tail.Compose(next.Tail),
		Elts: u.Elts.Compose(next.Elts),
	}
}

// ParseFunc splits a whole-file text snapshot into an ordered sequence of
// cell contents. The demo implementation in demo.go makes one cell per
// non-blank line;
// a real front-end would parse into an actual syntax tree per cell.
type ParseFunc[I any] func(text string) []I

// EqFunc reports whether two cell contents are interchangeable for the
// purpose of preserving a node's identity across a re-parse. Most callers
// use simple value equality.
type EqFunc[I any] func(a, b I) bool

// ComputeNodeListUpdate diffs an existing node list's contents against a
// freshly parsed sequence of cell contents, producing the minimal
// NodeListUpdate that turns the former into the latter.
//
// The algorithm finds the longest common prefix between old and newItems
// (per eq); nodes in that prefix keep their NodeId, so any evaluation
// result already computed for them survives. Everything after the prefix
// is dropped from old and replaced by freshly-named nodes built from the
// suffix of newItems. This is what makes an edit that only touches cell N
// leave cells 0..N-1 untouched: the common prefix extends right up to the
// edited cell.
func ComputeNodeListUpdate[I any](old NodeList[I], newItems []I,
	eq EqFunc[I], fresh *FreshNames) NodeListUpdate[I] {

	prefixLen := 0
	for prefixLen < len(old.Nodes) && prefixLen < len(newItems) &&
		eq(old.Nodes[prefixLen].Elt, newItems[prefixLen]) {

		prefixLen++
	}

	numDropped := len(old.Nodes) - prefixLen

	newTail := make([]NodeEntry[I], 0, len(newItems)-prefixLen)
	for _, item := range newItems[prefixLen:] {
		newTail = append(newTail, NodeEntry[I]{
			Id:  fresh.Next(),
			Elt: item,
		})
	}

	return NodeListUpdate[I]{
		Tail: TailUpdate[NodeEntry[I]]{
			NumDropped: numDropped,
			NewTail:    newTail,
		},
	}
}
