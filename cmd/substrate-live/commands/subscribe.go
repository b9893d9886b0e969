package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// subscribeCmd connects to a running liveevald and prints its snapshot
// followed by every subsequent diff until interrupted, the CLI equivalent
// of the browser UI's websocket handshake (spec.md §6).
var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Stream live diffs from a running liveevald",
	Long: `subscribe connects to a running liveevald's websocket feed and prints
the initial snapshot followed by every subsequent diff, until interrupted.`,
	RunE: runSubscribe,
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(
		context.Background(), addr, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}

		var env wireEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		if outputFormat == "json" {
			fmt.Println(string(data))
			continue
		}

		printEnvelopeText(env)
	}
}

// printEnvelopeText renders one websocket envelope for the "text" output
// format: a cell count for a snapshot, a line per structural/value change
// for a diff.
func printEnvelopeText(env wireEnvelope) {
	switch env.Type {
	case "snapshot":
		var nl wireNodeList
		if err := json.Unmarshal(env.Data, &nl); err != nil {
			return
		}
		fmt.Printf("snapshot: %d cell(s)\n", len(nl.OrderedNodes))

	case "diff":
		var u wireNodeListUpdate
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return
		}

		if u.OrderedNodesUpdate.NumDropped > 0 {
			fmt.Printf("- dropped %d cell(s)\n", u.OrderedNodesUpdate.NumDropped)
		}
		for _, e := range u.OrderedNodesUpdate.NewTail {
			fmt.Printf("+ [%d]\n", e.Id)
		}
		for id, elt := range u.NodeMapUpdate {
			fmt.Printf("~ [%s] %s\n", id, elt.Tag)
		}

	default:
		fmt.Printf("%s: %s\n", env.Type, string(env.Data))
	}
}
