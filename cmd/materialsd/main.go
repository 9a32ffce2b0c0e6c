package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/material-list/internal/app"
	"github.com/joseph-ayodele/material-list/internal/async"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/ingest"
	"github.com/joseph-ayodele/material-list/internal/server"
)

const healthInterval = 30 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	logger := common.NewLogger(common.LogConfig{Level: cfg.Log.Level, Format: "json"}, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.ValidateWatch(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("materialsd stopped with error", "error", err)
		os.Exit(1)
	}
}

// run watches the inbox and feeds every new archive through the pipeline,
// one at a time, until ctx is done.
func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	proc := async.ProcessorFunc(func(ctx context.Context, j async.Job) error {
		job, err := a.NewJob(j.InputPath, j.DocumentName)
		if err != nil {
			return err
		}
		job.ID = j.ID
		_, err = a.Orchestrator.Run(ctx, job, app.LogSink{Logger: logger, JobID: job.ID.String()})
		return err
	})
	queue := async.NewJobQueue(proc, logger,
		async.WithQueueSize(cfg.Watch.QueueSize),
		async.WithProcessTimeout(cfg.Watch.JobTimeout),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Watch.Dir},
		InitialScan: cfg.Watch.InitialScan,
		Debounce:    cfg.Watch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		queue.Shutdown(context.Background())
		return err
	}

	health := server.NewHealthServer(logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return health.ListenAndServe(gctx, cfg.Server.GRPCAddr)
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				logger.Warn("watcher reported an error", "error", err)
			case path, ok := <-events:
				if !ok {
					return nil
				}
				job := async.Job{
					InputPath:    path,
					DocumentName: app.DocumentNameFor(path, cfg.Output.DocumentName),
				}
				if err := queue.Enqueue(gctx, job); err != nil {
					logger.Warn("archive not queued", "path", path, "error", err)
				}
			}
		}
	})

	// NOT_SERVING while the queue is closed or the history database is down.
	g.Go(func() error {
		t := time.NewTicker(healthInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				health.SetServing(queue.Accepting() && a.Ping(gctx) == nil)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		health.SetServing(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Watch.JobTimeout)
		defer cancel()
		queue.Shutdown(shutdownCtx)
		return nil
	})

	health.SetServing(true)
	logger.Info("materialsd watching", "dir", cfg.Watch.Dir, "grpc_addr", cfg.Server.GRPCAddr)
	return g.Wait()
}
