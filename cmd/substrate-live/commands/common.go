package commands

import (
	"encoding/json"
	"fmt"
)

// marshalIndent renders v as indented JSON, the shared format for every
// command's --format json output.
func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// outputJSON prints v as indented JSON to stdout.
func outputJSON(v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}

// wireEnvelope mirrors internal/web's wsEnvelope: every message a running
// liveevald's websocket feed sends is either a "snapshot" (once, at
// connect) or a "diff" (per flush thereafter).
type wireEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wireNodeList is the client-side shape of a full NodeList snapshot. The
// CLI never needs the cell payload itself typed (liveevald may be running
// any O), so NodeMap values stay as raw JSON for wireNodeState to pick
// apart lazily.
type wireNodeList struct {
	OrderedNodes []int64                    `json:"orderedNodes"`
	NodeMap      map[string]json.RawMessage `json:"nodeMap"`
}

// wireNodeState is the client-side shape of one NodeState: only the status
// is examined; the input payload is left untyped.
type wireNodeState struct {
	Status json.RawMessage `json:"status"`
}

// wireNodeEntry is the client-side shape of one NodeEntry inside a tail
// update's newTail.
type wireNodeEntry struct {
	Id int64 `json:"id"`
}

// wireTailUpdate is the client-side shape of a TailUpdate.
type wireTailUpdate struct {
	NumDropped int             `json:"numDropped"`
	NewTail    []wireNodeEntry `json:"newTail"`
}

// wireMapElt is the client-side shape of one MapEltUpdate entry.
type wireMapElt struct {
	Tag string `json:"tag"`
}

// wireNodeListUpdate is the client-side shape of a NodeListUpdate diff.
type wireNodeListUpdate struct {
	OrderedNodesUpdate wireTailUpdate        `json:"orderedNodesUpdate"`
	NodeMapUpdate      map[string]wireMapElt `json:"nodeMapUpdate"`
}

// classifyStatus reports "Waiting", "Running", or "Complete" for a raw
// NodeEvalStatus JSON value: the first two serialise as bare strings, the
// third as {"Complete": ...} per spec.md §6.
func classifyStatus(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return "Complete"
}
