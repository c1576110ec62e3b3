// Command gamayund runs the gamayun job-orchestration daemon: it loads job
// configs, schedules them on cron, and waits for spawned jobs to report
// their results back over gRPC.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	gamayunconfig "github.com/gamayun-daemon/gamayun/internal/config"
	"github.com/gamayun-daemon/gamayun/internal/dedup"
	"github.com/gamayun-daemon/gamayun/internal/dispatcher"
	"github.com/gamayun-daemon/gamayun/internal/httpapi"
	"github.com/gamayun-daemon/gamayun/internal/ingestion"
	"github.com/gamayun-daemon/gamayun/internal/jobconfig"
	"github.com/gamayun-daemon/gamayun/internal/notify"
	"github.com/gamayun-daemon/gamayun/internal/observability"
	"github.com/gamayun-daemon/gamayun/internal/registry"
	"github.com/gamayun-daemon/gamayun/internal/reload"
	"github.com/gamayun-daemon/gamayun/internal/store"
	"github.com/gamayun-daemon/gamayun/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gamayund: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath, _ := gamayunconfig.GetEnv[string]("GAMAYUN_APP_CONFIG_PATH")
	cfg, err := gamayunconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading application config: %w", err)
	}

	tp, err := observability.InitTracerProvider(ctx, observability.Config{
		Endpoint:    cfg.OTelTracesEndpoint,
		ServiceName: observability.DefaultServiceName,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "shutting down tracer provider failed", "error", err)
		}
	}()

	slog.SetDefault(observability.NewLogger(observability.Config{
		Endpoint:    cfg.OTelTracesEndpoint,
		ServiceName: observability.DefaultServiceName,
	}))

	sinks := []notify.Sink{notify.LogSink{}}
	if cfg.SendGrid.Enabled() {
		sinks = append(sinks, notify.NewEmailSink(cfg.SendGrid))
	}
	notifier := notify.New(sinks...)

	mongoStore, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		notifier.Notify(ctx, "Gamayun Startup Failure", fmt.Sprintf("failed to connect to document store: %v", err))
		return fmt.Errorf("connecting to document store: %w", err)
	}
	defer func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			slog.ErrorContext(ctx, "closing document store failed", "error", err)
		}
	}()

	reg := registry.New()
	dedupEngine := dedup.New(mongoStore)
	d := dispatcher.New(reg)

	jobs, err := jobconfig.Load(cfg.ConfigurationRoot)
	if err != nil {
		notifier.Notify(ctx, "Gamayun Startup Failure", fmt.Sprintf("failed to load job configuration: %v", err))
		return fmt.Errorf("loading job configs: %w", err)
	}
	if err := d.Register(jobs); err != nil {
		notifier.Notify(ctx, "Gamayun Startup Failure", fmt.Sprintf("failed to schedule job configuration: %v", err))
		return fmt.Errorf("registering jobs: %w", err)
	}
	source := jobconfig.NewSource(jobs)

	coordinator := reload.New(cfg.ConfigurationRoot, d, reg, source, notifier)

	d.Start()
	defer func() { <-d.Stop().Done() }()

	go reg.RunSweeper(ctx, notifier)

	ingestionServer := ingestion.New(source, reg, dedupEngine, notifier)
	grpcServer, lis, err := newGRPCServer(ctx, cfg.GRPCAddr, ingestionServer)
	if err != nil {
		return fmt.Errorf("building grpc server: %w", err)
	}

	adminServer := httpapi.New(coordinator, version.Version, httpapi.ServerConfig{
		Host: cfg.HTTPHost,
		Port: cfg.HTTPPort,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("serving grpc: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := adminServer.Start(); err != nil {
			return fmt.Errorf("serving admin http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.InfoContext(ctx, "shutting down")
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return adminServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	return nil
}
