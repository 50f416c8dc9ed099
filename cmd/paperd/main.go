package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/paper-summarizer/internal/app"
	"github.com/joseph-ayodele/paper-summarizer/internal/async"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/logging"
	"github.com/joseph-ayodele/paper-summarizer/internal/server"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(2)
	}
	if err := cfg.EnsureDirs(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(logging.FromConfig(cfg.Log, filepath.Join(cfg.Paths.LogDir, "paperd.log")))
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, logger, app.Options{Registerer: reg})
	if err != nil {
		logger.Error("failed to initialize", "kind", common.KindOf(err), "error", err)
		os.Exit(1)
	}
	defer a.Close()

	queue := async.NewBatchQueue(a.Runner, logger,
		async.WithWorkers(1),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithRetention(cfg.Batch.StateRetention),
	)

	svc := server.NewPaperService(a.Runner, queue, a.Repos, server.Config{
		AvailableModels:  cfg.LLM.AvailableModels,
		DefaultModel:     cfg.LLM.DefaultModel,
		DefaultPageLimit: cfg.Batch.PageLimit,
	}, logger)
	grpcServer, healthServer := server.NewGRPCServer(svc, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics serve error", "error", err)
			}
		}()
		logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
	}

	logger.Info("paperd listening", "addr", cfg.Server.GRPCAddr, "model", cfg.LLM.DefaultModel, "workers", cfg.Batch.Workers)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Batch.DocumentTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
}
