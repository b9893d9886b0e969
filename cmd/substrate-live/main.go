// Command substrate-live is the CLI front end for the live-eval pipeline:
// watch runs it directly against a local file, while status and subscribe
// inspect a liveevald daemon's websocket feed.
package main

import (
	"fmt"
	"os"

	"github.com/roasbeef/substrate-live/cmd/substrate-live/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
