package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/modflags/internal/config"
	"github.com/alfredjeanlab/modflags/internal/events"
	"github.com/alfredjeanlab/modflags/internal/kv"
	"github.com/alfredjeanlab/modflags/internal/kv/postgres"
	"github.com/alfredjeanlab/modflags/internal/server"
	"github.com/alfredjeanlab/modflags/internal/settings"
	modsync "github.com/alfredjeanlab/modflags/internal/sync"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// openBackend opens the key-value backend named by cfg.Backend.
func openBackend(cfg *config.Config) (kv.KV, error) {
	switch cfg.Backend {
	case config.BackendPebble:
		p, err := kv.OpenPebble(cfg.PebblePath)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendPostgres:
		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.BackendMemory:
		return kv.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the modflags HTTP and gRPC server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		backend, err := openBackend(cfg)
		if err != nil {
			return err
		}
		logger.Info("storage opened", "backend", cfg.Backend)

		store := settings.New(context.Background(), backend,
			settings.WithKey(cfg.SettingsKey),
			settings.WithLogger(logger),
		)
		if err := store.LoadErr(); err != nil {
			logger.Warn("stored settings unreadable, using defaults", "err", err)
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				backend.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (MODFLAGS_NATS_URL not set)")
		}

		srv := server.New(store, publisher,
			server.WithLocation(cfg.Location),
			server.WithLogger(logger),
		)
		stopForward := startForward(srv)

		grpcServer, healthServer := srv.NewGRPCServer(cfg.AuthToken)
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			stopForward()
			publisher.Close()
			store.Close()
			backend.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := newHTTPServer(cfg.HTTPAddr, srv.NewHTTPHandler(cfg.AuthToken), store)
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSync(cfg, store, logger)

		logger.Info("modflags server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"settings_key", store.Key(),
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		shutdown(logger, healthServer, grpcServer, httpServer)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}
		stopForward()

		if err := store.Flush(context.Background()); err != nil {
			logger.Error("final settings write failed", "err", err)
		}

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := backend.Close(); err != nil {
			logger.Error("error closing storage", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// startForward runs srv.Forward in the background. The returned stop func
// cancels it and waits for it to return.
func startForward(srv *server.Server) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Forward(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// newHTTPServer returns the HTTP server for handler. Shutdown closes the
// store so open settings streams end instead of holding the server up.
func newHTTPServer(addr string, handler http.Handler, store *settings.Store) *http.Server {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	httpServer.RegisterOnShutdown(store.Close)
	return httpServer
}

// startSync starts the snapshot scheduler when a destination is
// configured. It returns nil otherwise.
func startSync(cfg *config.Config, store *settings.Store, logger *slog.Logger) *modsync.Scheduler {
	if cfg.SyncInterval <= 0 || cfg.SyncS3Bucket == "" {
		return nil
	}
	dest, err := modsync.NewS3Destination(
		context.Background(),
		cfg.SyncS3Bucket,
		cfg.SyncS3Key,
		cfg.SyncS3Region,
		cfg.SyncS3Endpoint,
	)
	if err != nil {
		logger.Error("failed to create S3 sync destination", "err", err)
		return nil
	}
	logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)

	scheduler := modsync.NewScheduler(store, []modsync.Destination{dest}, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return scheduler
}

// shutdown marks the gRPC health service NOT_SERVING, then stops both
// listeners.
func shutdown(logger *slog.Logger, hs *health.Server, grpcServer *grpc.Server, httpServer *http.Server) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(server.SettingsServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "err", err)
	}
	logger.Info("HTTP server stopped")
}
