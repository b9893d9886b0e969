// Command liveevald watches a source file, incrementally evaluates its
// cells, and serves the resulting live NodeList over websocket and MCP.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btclog/v2"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/substrate-live/internal/baselib/actor"
	"github.com/roasbeef/substrate-live/internal/build"
	"github.com/roasbeef/substrate-live/internal/config"
	"github.com/roasbeef/substrate-live/internal/liveeval"
	"github.com/roasbeef/substrate-live/internal/mcpintro"
	"github.com/roasbeef/substrate-live/internal/web"
)

func main() {
	var (
		watchPath      = flag.String("watch", "", "Path to the file to watch and evaluate (required)")
		webAddr        = flag.String("web", ":8090", "Web server address (empty to disable)")
		enableMCP      = flag.Bool("mcp", false, "Enable MCP stdio transport")
		pollInterval   = flag.Duration("poll-interval", 0, "File watcher fallback poll interval (0 = watcher default)")
		debounce       = flag.Duration("debounce", 0, "File watcher debounce window (0 = watcher default)")
		logDir         = flag.String("log-dir", "~/.liveevald/logs", "Directory for log files (empty to disable file logging)")
		maxLogFiles    = flag.Int("max-log-files", build.DefaultMaxLogFiles, "Maximum number of rotated log files to keep")
		maxLogFileSize = flag.Int("max-log-file-size", build.DefaultMaxLogFileSize, "Maximum log file size in MB before rotation")
		configDirFlag  = flag.String("config-dir", "", "Config directory override (defaults to XDG config dir)")
	)
	flag.Parse()

	expandHome := func(path string) string {
		expanded := os.ExpandEnv(path)
		if expanded == path && len(path) > 0 && path[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("Failed to get home directory: %v", err)
			}
			expanded = home + path[1:]
		}
		return expanded
	}

	configDir := *configDirFlag
	if configDir == "" {
		var err error
		configDir, err = config.GetConfigDir()
		if err != nil {
			log.Fatalf("Failed to resolve config directory: %v", err)
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	path := *watchPath
	if path == "" {
		path = cfg.Watch.Path
	}
	if path == "" {
		log.Fatal("no file to watch: pass -watch or set watch.path in config.yaml")
	}

	poll := *pollInterval
	if poll == 0 {
		poll = cfg.Watch.PollInterval
	}

	deb := *debounce
	if deb == 0 {
		deb = cfg.Watch.Debounce
	}

	addr := *webAddr
	if addr == ":8090" && cfg.Web.ListenAddr != "" {
		addr = cfg.Web.ListenAddr
	}

	logDirExpanded := expandHome(*logDir)

	var logRotator *build.RotatingLogWriter
	if logDirExpanded != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDirExpanded,
			MaxLogFiles:    *maxLogFiles,
			MaxLogFileSize: *maxLogFileSize,
		})
		if err != nil {
			log.Printf("Failed to init log rotator: %v (continuing without file logging)", err)
			logRotator = nil
		} else {
			defer logRotator.Close()

			multiWriter := io.MultiWriter(os.Stderr, logRotator)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags)
		}
	}

	log.Printf("liveevald version %s commit=%s go=%s",
		build.Version(), commitInfo(), build.GoVersion)

	var btclogHandlers []btclog.Handler
	consoleHandler := btclog.NewDefaultHandler(os.Stderr)
	btclogHandlers = append(btclogHandlers, consoleHandler)

	if logRotator != nil {
		fileHandler := btclog.NewDefaultHandler(logRotator)
		btclogHandlers = append(btclogHandlers, fileHandler)

		log.Printf("Log file rotation enabled: dir=%s, max_files=%d, max_size=%dMB",
			logDirExpanded, *maxLogFiles, *maxLogFileSize)
	}

	combinedHandler := build.NewHandlerSet(btclogHandlers...)
	rootLogger := btclog.NewSLogger(combinedHandler)

	actor.UseLogger(rootLogger.WithPrefix("ACTR"))
	liveeval.UseLogger(rootLogger.WithPrefix(liveeval.Subsystem))
	web.UseLogger(rootLogger.WithPrefix(web.Subsystem))

	actorSystem := actor.NewActorSystem()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), 10*time.Second,
		)
		defer shutdownCancel()

		if err := actorSystem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Actor system shutdown incomplete: %v "+
				"(some goroutines may have leaked)", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received %v, initiating graceful shutdown "+
			"(send again to force exit)...", sig)
		cancel()

		sig = <-sigCh
		log.Printf("Received %v again, forcing immediate exit", sig)
		os.Exit(1)
	}()

	evalCfg := liveeval.EvalConfig[liveeval.DemoResult, string]{
		ParseCells:   liveeval.DefaultParseCells,
		Eq:           liveeval.SourceBlockEq,
		EvalFunc:     liveeval.DefaultEvalFunc,
		PollInterval: poll,
		Debounce:     deb,
	}

	results, err := liveeval.WatchAndEvalFile(
		ctx, path, evalCfg, "", actorSystem.DeadLetters(),
	)
	if err != nil {
		log.Fatalf("Failed to start live evaluator: %v", err)
	}
	log.Printf("Watching %s", path)

	if addr != "" {
		hub, err := web.NewHub(ctx, results)
		if err != nil {
			log.Fatalf("Failed to start web hub: %v", err)
		}
		go hub.Run()

		mux := http.NewServeMux()
		web.RegisterRoutes(mux, hub)

		httpServer := &http.Server{Addr: addr, Handler: mux}

		go func() {
			log.Printf("Starting web server on %s", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(
				context.Background(), 5*time.Second,
			)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
			hub.Stop()
		}()
	}

	if *enableMCP {
		introServer := mcpintro.NewServer(results)

		log.Println("Starting liveevald MCP server...")
		if err := introServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
			log.Fatalf("MCP server error: %v", err)
		}
	} else {
		log.Println("Running in web-only mode (no MCP stdio)")
		<-ctx.Done()
	}
}

// commitInfo returns the best available commit identifier.
func commitInfo() string {
	if build.Commit != "" {
		return build.Commit
	}
	if build.CommitHash != "" {
		return build.CommitHash
	}

	return "dev"
}
