package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hr-approvals/internal/api"
	"hr-approvals/internal/app"
	"hr-approvals/internal/config"
	"hr-approvals/internal/db"
	"hr-approvals/internal/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pools, err := db.Open(ctx, storeOptions(cfg))
	if err != nil {
		return err
	}
	defer pools.Close()
	logger.Info("store ready", "driver", cfg.DBDriver)

	a, err := app.New(app.Deps{Cfg: cfg, Pools: pools, Logger: logger})
	if err != nil {
		return err
	}

	authn, err := app.NewAuthenticator(ctx, cfg.Auth, logger)
	if err != nil {
		return err
	}

	router := api.NewRouter(ctx, a.Handler, api.RouterOptions{
		Authenticate: authn.Middleware,
		RateLimit: &middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		logger.Info("try: curl -H 'Authorization: Bearer <jwt>' http://" + curlHostForListenAddr(cfg.ListenAddr) + "/v1/employees/<id>/approvers")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if sched := a.Scheduler(cfg, logger); sched != nil {
		g.Go(func() error {
			if err := sched.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			sched.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// storeOptions maps the configured driver onto db.Options.
func storeOptions(cfg *config.Config) db.Options {
	opts := db.Options{SQLitePath: cfg.DBPath, MaxConns: cfg.DBMaxConns}
	if cfg.DBDriver == config.DriverPostgres {
		opts.PostgresDSN = cfg.DatabaseURL
	}
	return opts
}

// curlHostForListenAddr turns a listen address into a host:port usable in a
// hint URL. Wildcard and empty hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
