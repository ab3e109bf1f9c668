package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/bol-intake/internal/app"
	"github.com/joseph-ayodele/bol-intake/internal/async"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/server"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var store server.RecordStore
	if a.Store != nil {
		store = a.Store
	}
	intake := server.NewIntakeService(a.Processor, store, a.Submissions, logger)
	grpcServer, healthServer := server.NewGRPCServer(intake, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: server.NewAdminRouter(server.AdminDeps{
			DB:     a.DB,
			Runs:   a.Runs,
			Export: a.Export,
			Logger: logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("admin http listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin http serve error", "error", err)
			stop()
		}
	}()

	var queue *async.ProcessorQueue
	if cfg.Inbox.Dir != "" {
		queue, err = startInbox(ctx, cfg.Inbox, a, logger)
		if err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Inbox.Dir, "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
}

// startInbox extracts every document that lands in the inbox directory into history.
// Submission stays a reviewed, explicit action.
func startInbox(ctx context.Context, cfg common.InboxConfig, a *app.App, logger *slog.Logger) (*async.ProcessorQueue, error) {
	paths, errs, err := source.StartWatcher(ctx, source.WatchConfig{
		Roots:       []string{cfg.Dir},
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	process := func(ctx context.Context, job async.Job) error {
		out, err := a.Processor.ProcessDocument(ctx, job.Source, ocr.ModeAuto, nil)
		if err != nil {
			return err
		}
		logger.Info("inbox document extracted",
			"source", job.Source,
			"run_id", out.RunID,
			"order_number", out.Raw.OrderNumber,
			"jobs", len(out.Jobs),
			"confidence", out.Raw.Confidence,
		)
		return nil
	}
	queue := async.NewProcessorQueue(process, logger,
		async.WithWorkers(cfg.Workers),
		async.WithQueueSize(cfg.QueueSize),
		async.WithProcessTimeout(cfg.ProcessTimeout),
	)

	go func() {
		for {
			select {
			case p, ok := <-paths:
				if !ok {
					return
				}
				if err := queue.Enqueue(ctx, async.Job{Source: p}); err != nil {
					logger.Warn("inbox enqueue failed", "path", p, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("inbox watcher error", "error", err)
			}
		}
	}()
	logger.Info("watching inbox", "dir", cfg.Dir, "workers", cfg.Workers)
	return queue, nil
}
