package mcpintro

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/substrate-live/internal/liveeval"
)

// CellSummary is the JSON-friendly projection of one NodeState returned by
// both tools in this package.
type CellSummary struct {
	NodeID  int64  `json:"node_id"`
	Line    int    `json:"line"`
	BlockID int    `json:"block_id"`
	Status  string `json:"status"`
	Output  string `json:"output,omitempty"`
}

// ListCellsArgs is the (empty) argument set for list_cells.
type ListCellsArgs struct{}

// ListCellsResult is the result of the list_cells tool.
type ListCellsResult struct {
	Cells []CellSummary `json:"cells"`
}

func (s *Server[O, Env]) handleListCells(ctx context.Context,
	req *mcp.CallToolRequest, args ListCellsArgs) (*mcp.CallToolResult, ListCellsResult, error) {

	snap, err := s.results.Out().Snapshot(ctx)
	if err != nil {
		return nil, ListCellsResult{}, fmt.Errorf("snapshot failed: %w", err)
	}

	cells := make([]CellSummary, len(snap.Nodes))
	for i, n := range snap.Nodes {
		cells[i] = summarize(n.Id, n.Elt)
	}

	return nil, ListCellsResult{Cells: cells}, nil
}

// GetCellArgs is the argument set for get_cell.
type GetCellArgs struct {
	NodeID int64 `json:"node_id" jsonschema:"Node id of the cell to look up"`
}

// GetCellResult is the result of the get_cell tool.
type GetCellResult struct {
	Found bool        `json:"found"`
	Cell  CellSummary `json:"cell,omitempty"`
}

func (s *Server[O, Env]) handleGetCell(ctx context.Context,
	req *mcp.CallToolRequest, args GetCellArgs) (*mcp.CallToolResult, GetCellResult, error) {

	snap, err := s.results.Out().Snapshot(ctx)
	if err != nil {
		return nil, GetCellResult{}, fmt.Errorf("snapshot failed: %w", err)
	}

	target := liveeval.NodeId(args.NodeID)
	idx := snap.IndexOf(target)
	if idx < 0 {
		return nil, GetCellResult{Found: false}, nil
	}

	entry := snap.Nodes[idx]
	return nil, GetCellResult{
		Found: true,
		Cell:  summarize(entry.Id, entry.Elt),
	}, nil
}

// summarize projects one NodeState[SourceBlock, O] into a CellSummary.
func summarize[O any](id liveeval.NodeId,
	state liveeval.NodeState[liveeval.SourceBlock, O]) CellSummary {

	out := CellSummary{
		NodeID:  int64(id),
		Line:    state.Input.Line,
		BlockID: state.Input.BlockID,
		Status:  state.Status.String(),
	}

	if v, ok := state.Status.Output(); ok {
		out.Output = fmt.Sprintf("%v", v)
	}

	return out
}
