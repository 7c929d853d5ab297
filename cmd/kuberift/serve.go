package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/kuberift/pkg/config"
	"github.com/odvcencio/kuberift/pkg/identity"
	"github.com/odvcencio/kuberift/pkg/ipc"
	"github.com/odvcencio/kuberift/pkg/logging"
	"github.com/odvcencio/kuberift/pkg/observability"
)

const revocationSweepInterval = 10 * time.Minute

func runServeCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a config file")
	bind := fs.String("bind", "", "Address to bind (host:port)")
	var origins []string
	fs.Var(&stringListValue{target: &origins}, "allow-origin", "Allowed browser origin (repeatable or comma-separated)")
	requireToken := fs.Bool("require-token", false, "Reject connections without a valid access token")
	publicMetrics := fs.Bool("public-metrics", false, "Serve /metrics without authentication")
	namespace := fs.String("namespace", "", "Namespace to scope dashboards to (* for all)")
	fps := fs.Int("fps", 0, "Frames per second for every session")
	maxSessions := fs.Int("max-sessions", -1, "Concurrent session limit (0 = unlimited)")
	inactivity := fs.Duration("inactivity-timeout", 0, "End sessions idle for this long (0 = never)")
	kubeconfig := fs.String("kubeconfig", "", "Path to the kubeconfig file")
	kubeContext := fs.String("context", "", "Kubeconfig context to use")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}

	cfg, err := loadConfigFn(*configPath)
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["bind"] {
		cfg.Server.Bind = *bind
	}
	if len(origins) > 0 {
		cfg.Server.AllowedOrigins = origins
	}
	if set["require-token"] {
		cfg.Auth.RequireToken = *requireToken
	}
	if set["public-metrics"] {
		cfg.Server.PublicMetrics = *publicMetrics
	}
	if set["namespace"] {
		cfg.Dashboard.Namespace = *namespace
	}
	if set["fps"] {
		cfg.Dashboard.FPS = *fps
	}
	if set["max-sessions"] {
		cfg.Server.MaxSessions = *maxSessions
	}
	if set["inactivity-timeout"] {
		cfg.Server.InactivityTimeout = *inactivity
	}
	if set["kubeconfig"] {
		cfg.Kube.Kubeconfig = *kubeconfig
	}
	if set["context"] {
		cfg.Kube.Context = *kubeContext
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(err, exitConfig)
	}

	logger := logging.New(cfg.LoggerOptions()).WithComponent("serve")
	for _, warning := range cfg.ValidationWarnings() {
		logger.Warn("configuration warning", "warning", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := observability.NewTracerProvider("kuberift", version, stderr)
		if err != nil {
			return fmt.Errorf("start tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	base, err := newKubeClientFn(cfg)
	if err != nil {
		return err
	}

	var tokens *identity.TokenManager
	if cfg.Auth.Secret != "" {
		tokens = identity.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Claim)
	}

	server := ipc.NewServer(serverConfig(cfg), tokens, ipc.ImpersonatingClients(base, cfg.Kube.Impersonate), logger.WithComponent("ipc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if tokens != nil {
		g.Go(func() error {
			ticker := time.NewTicker(revocationSweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					tokens.CleanupRevokedTokens(cfg.Auth.TokenTTL)
				}
			}
		})
	}

	logger.Info("serving dashboards", "bind", cfg.Server.Bind, "require_token", cfg.Auth.RequireToken, "impersonate", cfg.Kube.Impersonate)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func serverConfig(cfg *config.Config) ipc.Config {
	return ipc.Config{
		BindAddress:       cfg.Server.Bind,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		PublicMetrics:     cfg.Server.PublicMetrics,
		RequireToken:      cfg.Auth.RequireToken,
		MaxSessions:       cfg.Server.MaxSessions,
		ConnectRate:       cfg.Server.ConnectRate,
		ConnectBurst:      cfg.Server.ConnectBurst,
		PingInterval:      cfg.Server.PingInterval,
		InactivityTimeout: cfg.Server.InactivityTimeout,
		FPS:               cfg.Dashboard.FPS,
		Namespace:         cfg.Dashboard.Namespace,
		Term:              cfg.Dashboard.Term,
		Version:           version,
	}
}
