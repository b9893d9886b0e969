// Package commands implements the substrate-live CLI: a foreground watch
// mode that runs the live-eval pipeline directly, plus status/subscribe
// commands that speak the websocket wire contract (spec.md §6) to an
// already-running liveevald.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// addr is the websocket address of a running liveevald's /ws endpoint,
	// used by status and subscribe.
	addr string

	// outputFormat controls output format (text, json).
	outputFormat string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "substrate-live",
	Short: "Live incremental evaluation CLI",
	Long: `substrate-live drives and inspects a live-eval pipeline: watch runs the
pipeline directly against a local file, while status and subscribe talk to
a running liveevald daemon over its websocket feed.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&addr, "addr", "ws://localhost:8090/ws",
		"Websocket address of a running liveevald",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text, json",
	)

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(subscribeCmd)
}
