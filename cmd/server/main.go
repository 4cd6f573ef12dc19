package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc"
	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/di"
	"github.com/simaogato/wealthtrack-backend/internal/logger"
	"github.com/simaogato/wealthtrack-backend/internal/scheduler"
)

const startupTimeout = 30 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)

	// 2. Wire storage and services, then load the record set
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	container, err := di.Wire(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer container.Close()

	// 3. Schedule background work
	sched := scheduler.New(log)
	if err := di.RegisterJobs(container, cfg, sched, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()

	// Prices may be stale after downtime
	go func() {
		if err := sched.RunNow(scheduler.NewPriceRefreshJob(container.Coordinator, log)); err != nil {
			log.Warn().Err(err).Msg("Startup price refresh failed")
		}
	}()

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)

	grpcAdapter := grpcadapter.NewServer(
		container.Store,
		container.Aggregator,
		container.Analytics,
		container.Snapshots,
		container.Coordinator,
		log,
	)
	grpcadapter.RegisterWealthTrackServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	addr := cfg.GRPCAddr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", addr).Str("base_currency", cfg.BaseCurrency).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, sched, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, sched *scheduler.Scheduler, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	sched.Stop()
	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
