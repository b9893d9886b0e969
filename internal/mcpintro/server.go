// Package mcpintro exposes a read-only MCP tool server for introspecting a
// live-eval pipeline's current cell list and per-cell evaluation state,
// grounded in the teacher's internal/mcp server wiring but pared down to the
// two read-only tools this domain calls for.
package mcpintro

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/substrate-live/internal/liveeval"
)

// Server wraps an MCP server exposing introspection tools over a
// ResultsServer's live NodeList.
type Server[O, Env any] struct {
	server  *mcp.Server
	results *liveeval.ResultsServer[O, Env]
}

// NewServer creates an MCP server with list_cells/get_cell registered
// against results.
func NewServer[O, Env any](results *liveeval.ResultsServer[O, Env]) *Server[O, Env] {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "substrate-live",
		Version: "0.1.0",
	}, nil)

	s := &Server[O, Env]{
		server:  mcpServer,
		results: results,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport.
func (s *Server[O, Env]) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// registerTools registers the two read-only introspection tools.
func (s *Server[O, Env]) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_cells",
		Description: "List every cell currently tracked by the live evaluator, in order, with its evaluation status",
	}, s.handleListCells)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_cell",
		Description: "Fetch one cell's input and evaluation status by node id",
	}, s.handleGetCell)
}
