// Package app wires configuration, logging, the simulation loop and the
// network hub into one runnable server process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/vide-coded/voxel-warfare/internal/config"
	appnet "github.com/vide-coded/voxel-warfare/internal/net"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
	"github.com/vide-coded/voxel-warfare/internal/world"
	"github.com/vide-coded/voxel-warfare/logging"
	"github.com/vide-coded/voxel-warfare/logging/simulation"
	loggingSinks "github.com/vide-coded/voxel-warfare/logging/sinks"
	"github.com/vide-coded/voxel-warfare/stats"
)

// Config carries the loaded server settings plus an optional process logger.
type Config struct {
	Server config.Config
	Logger telemetry.Logger
}

// Run starts the server and blocks until the listener fails or ctx is
// canceled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(log.Printf)
	}

	routerCfg := cfg.Server.Router()
	namedSinks, closers, err := buildSinks(routerCfg)
	if err != nil {
		return err
	}
	closeFiles := func() {
		for _, closer := range closers {
			if cerr := closer.Close(); cerr != nil {
				logger.Printf("failed to close log sink file: %v", cerr)
			}
		}
	}

	router, err := logging.NewRouter(logging.ClockFunc(time.Now), routerCfg, namedSinks)
	if err != nil {
		closeFiles()
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		// The run context is already canceled on shutdown; flushing needs
		// its own deadline.
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
		closeFiles()
	}()

	registry := telemetry.NewRegistry()
	clock := logging.ClockFunc(time.Now)

	gameWorld := world.New(cfg.Server.WorldSettings(), world.Deps{
		Publisher: router,
		Clock:     clock,
	})

	engine, err := sim.NewEngine(gameWorld, cfg.Server.Engine(), sim.Deps{
		Logger:    logger,
		Metrics:   registry,
		Clock:     clock,
		Publisher: router,
	})
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}

	for _, entry := range cfg.Server.Spawns {
		for _, position := range entry.Positions() {
			gameWorld.Spawn(stats.EnemyType(entry.Type), position)
		}
	}

	var hub *appnet.Hub
	loop := sim.NewLoop(engine, cfg.Server.Loop(), sim.LoopHooks{
		AfterStep: func(result sim.StepResult) {
			hub.Broadcast(result)
			if result.Budget > 0 && result.Duration > result.Budget {
				simulation.TickBudgetOverrun(context.Background(), router, result.Tick,
					simulation.TickBudgetOverrunPayload{
						DurationMillis: result.Duration.Milliseconds(),
						BudgetMillis:   result.Budget.Milliseconds(),
						Ratio:          float64(result.Duration) / float64(result.Budget),
					})
			}
		},
	})

	hub = appnet.NewHub(loop, appnet.HubConfig{
		TickRate:  cfg.Server.Loop().TickRate,
		Logger:    logger,
		Metrics:   registry,
		Publisher: router,
		Clock:     clock,
	})
	defer hub.Close()

	stop := make(chan struct{})
	go loop.Run(stop)
	defer close(stop)

	handler := appnet.NewHTTPHandler(hub, appnet.HTTPHandlerConfig{
		Registry: registry,
		Logger:   logger,
	})

	srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildSinks constructs one sink per enabled name. The json sink appends
// to its configured file; the caller owns closing the returned files after
// the router has flushed.
func buildSinks(cfg logging.Config) ([]logging.NamedSink, []io.Closer, error) {
	var named []logging.NamedSink
	var closers []io.Closer
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsole(os.Stdout, cfg.Console)})
		case "json":
			path := cfg.JSON.FilePath
			if path == "" {
				path = "events.ndjson"
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				for _, closer := range closers {
					closer.Close()
				}
				return nil, nil, fmt.Errorf("open json sink %s: %w", path, err)
			}
			closers = append(closers, file)
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(file, cfg.JSON.FlushInterval)})
		case "memory":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemory()})
		default:
			for _, closer := range closers {
				closer.Close()
			}
			return nil, nil, fmt.Errorf("unknown log sink %q", name)
		}
	}
	return named, closers, nil
}
