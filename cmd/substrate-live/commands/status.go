package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// statusCmd connects to a running liveevald, reads its initial snapshot,
// and prints a status summary. Unlike subscribe it doesn't stay connected.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of a running liveevald's cell list",
	Long: `status connects to a running liveevald's websocket feed, reads its
initial snapshot, and prints a count of cells by evaluation status.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(
		context.Background(), addr, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed snapshot envelope: %w", err)
	}
	if env.Type != "snapshot" {
		return fmt.Errorf("expected a snapshot envelope, got %q", env.Type)
	}

	var nl wireNodeList
	if err := json.Unmarshal(env.Data, &nl); err != nil {
		return fmt.Errorf("malformed snapshot: %w", err)
	}

	counts := map[string]int{"Waiting": 0, "Running": 0, "Complete": 0}
	for _, raw := range nl.NodeMap {
		var ns wireNodeState
		if err := json.Unmarshal(raw, &ns); err != nil {
			continue
		}
		counts[classifyStatus(ns.Status)]++
	}

	if outputFormat == "json" {
		return outputJSON(map[string]any{
			"total_cells": len(nl.OrderedNodes),
			"by_status":   counts,
		})
	}

	fmt.Printf("%d cell(s): %d waiting, %d running, %d complete\n",
		len(nl.OrderedNodes), counts["Waiting"], counts["Running"],
		counts["Complete"])

	return nil
}
