package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roasbeef/substrate-live/internal/baselib/actor"
	"github.com/roasbeef/substrate-live/internal/liveeval"
	"github.com/spf13/cobra"
)

var (
	watchPollInterval time.Duration
	watchDebounce     time.Duration
)

// watchCmd runs the live-eval pipeline directly against a local file,
// without needing a running liveevald, printing each cell's status as it
// transitions. It is the CLI equivalent of liveevald with the web/MCP
// front ends disabled.
var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch and live-evaluate a file in the foreground",
	Long: `watch starts the full watcher -> parser -> evaluator pipeline against
path and prints each cell's status transitions (Waiting -> Running ->
Complete) to the terminal as they happen, using the package's demo
parseCells/evalFun (split-on-line, append "!").`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchPollInterval, "poll-interval", 0,
		"File watcher fallback poll interval (0 = watcher default)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0,
		"File watcher debounce window (0 = watcher default)")
}

// watchSink implements actor.TellOnlyRef by printing each received diff to
// stdout in the selected text or json format. Its output is not the same as
// the `subscribe` command's, which prints the websocket feed's envelopes.
type watchSink struct{ id string }

// ID implements actor.BaseActorRef.
func (s *watchSink) ID() string { return s.id }

// Tell implements actor.TellOnlyRef.
func (s *watchSink) Tell(_ context.Context,
	msg liveeval.DiffMsg[liveeval.NodeListUpdate[liveeval.NodeState[liveeval.SourceBlock, liveeval.DemoResult]]]) {

	printDiff(msg.Update)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	evalCfg := liveeval.EvalConfig[liveeval.DemoResult, string]{
		ParseCells:   liveeval.DefaultParseCells,
		Eq:           liveeval.SourceBlockEq,
		EvalFunc:     liveeval.DefaultEvalFunc,
		PollInterval: watchPollInterval,
		Debounce:     watchDebounce,
	}

	actorSystem := actor.NewActorSystem()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), 5*time.Second,
		)
		defer shutdownCancel()
		_ = actorSystem.Shutdown(shutdownCtx)
	}()

	results, err := liveeval.WatchAndEvalFile(
		ctx, path, evalCfg, "", actorSystem.DeadLetters(),
	)
	if err != nil {
		return fmt.Errorf("failed to start live evaluator: %w", err)
	}

	snapshot, err := results.Subscribe(ctx, &watchSink{id: "substrate-live-watch"})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	printSnapshot(snapshot)

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", path)
	<-ctx.Done()

	return nil
}

// printSnapshot prints a full NodeList[NodeState] in the configured output
// format.
func printSnapshot(snap liveeval.NodeList[liveeval.NodeState[liveeval.SourceBlock, liveeval.DemoResult]]) {
	if outputFormat == "json" {
		data, err := marshalIndent(snap)
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	for _, n := range snap.Nodes {
		fmt.Printf("[%d] line=%d %s\n", n.Id, n.Elt.Input.Line,
			describeStatus(n.Elt.Status))
	}
}

// printDiff prints one NodeListUpdate in the configured output format.
func printDiff(u liveeval.NodeListUpdate[liveeval.NodeState[liveeval.SourceBlock, liveeval.DemoResult]]) {
	if outputFormat == "json" {
		data, err := marshalIndent(u)
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	if u.Tail.NumDropped > 0 {
		fmt.Printf("- dropped %d cell(s)\n", u.Tail.NumDropped)
	}
	for _, entry := range u.Tail.NewTail {
		fmt.Printf("+ [%d] line=%d %s\n", entry.Id, entry.Elt.Input.Line,
			describeStatus(entry.Elt.Status))
	}
	for id, elt := range u.Elts {
		if elt.IsDelete() {
			fmt.Printf("- [%d] deleted\n", id)
			continue
		}
		v, _ := elt.Value()
		fmt.Printf("~ [%d] %s\n", id, describeStatus(v.Status))
	}
}

// describeStatus renders a NodeEvalStatus for the text output format.
func describeStatus(s liveeval.NodeEvalStatus[liveeval.DemoResult]) string {
	if out, ok := s.Output(); ok {
		return fmt.Sprintf("complete: %s", out.Text)
	}

	return s.String()
}
