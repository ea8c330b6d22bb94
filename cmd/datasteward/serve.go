package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kedareswar13/Privacy-Protector/internal/api"
	"github.com/Kedareswar13/Privacy-Protector/internal/auth"
	"github.com/Kedareswar13/Privacy-Protector/internal/mcpserver"
	"github.com/Kedareswar13/Privacy-Protector/internal/planner"
	"github.com/Kedareswar13/Privacy-Protector/internal/scanner"
	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthService is the service name reported by the gRPC health server.
const healthService = "datasteward.v1.API"

func newServeCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the gRPC health endpoint when configured).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(ctx context.Context, skipMigrate bool) error {
	cfg, logger := loadRuntime()
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting datasteward",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("mock_connectors", cfg.MockConnectors),
		zap.String("planner_provider", cfg.Planner.Provider),
	)

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	logger.Info("database connected", zap.String("dialect", string(st.Dialect())))

	if !skipMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
	}

	events := newEventWriter(cfg, logger)
	defer events.Close()

	tools, err := newTools(cfg, events, logger)
	if err != nil {
		return err
	}

	pl, err := planner.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()
	logger.Info("planner ready", zap.Bool("model_mode", pl.ModelMode()))

	deps := &api.Dependencies{
		Store:       st,
		Auth:        auth.NewAuthority(cfg.JWTSecret, cfg.PasswordSalt, cfg.AccessTokenTTL),
		Tools:       tools,
		Runner:      scanner.New(st, pl, tools, logger),
		Planner:     pl,
		MCP:         mcpserver.Handler(mcpserver.New(tools)),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}
	if reader := newEventReader(cfg, logger); reader != nil {
		defer func() { _ = reader.Close() }()
		deps.Events = reader
	}
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	httpLis, grpcLis, err := openListeners(cfg.HTTPAddr, cfg.GRPCHealthAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server listening", zap.String("addr", httpLis.Addr().String()))
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
	)
	if grpcLis != nil {
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)
		go func() {
			logger.Info("grpc health server listening", zap.String("addr", grpcLis.Addr().String()))
			if err := grpcServer.Serve(grpcLis); err != nil {
				errCh <- err
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
	case serveErr = <-errCh:
		logger.Error("server failed", zap.Error(serveErr))
	}

	if healthServer != nil {
		healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info("datasteward stopped")
	return serveErr
}

// openListeners binds the HTTP address and, when set, the gRPC health
// address. Nothing stays bound if either fails.
func openListeners(httpAddr, grpcAddr string) (httpLis, grpcLis net.Listener, err error) {
	httpLis, err = net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen http %s: %w", httpAddr, err)
	}
	if grpcAddr == "" {
		return httpLis, nil, nil
	}
	grpcLis, err = net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		return nil, nil, fmt.Errorf("listen grpc %s: %w", grpcAddr, err)
	}
	return httpLis, grpcLis, nil
}
