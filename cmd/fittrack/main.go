package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/logging"
	fitmcp "github.com/claude/fittrack/internal/mcp"
	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/server"
	"github.com/claude/fittrack/internal/storage"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		slog.Error("fittrack failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logCloser.Close()
	log.Info("FitTrack starting", "version", Version, "driver", cfg.Database.Driver)

	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	// Run migrations
	if err := storage.RunMigrations(cfg.Database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect database
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer store.Close()
	log.Info("database connected")

	opts := server.Options{APIKey: cfg.Auth.APIKey}
	if opts.APIKey == "" {
		log.Warn("no API key configured; /api and /mcp are unauthenticated")
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Metrics = metrics.NewManager("fittrack", "server", reg)
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; rate limiter will fail requests until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		opts.RateLimiter = redis_rate.NewLimiter(rdb)
		opts.SavesPerMinute = cfg.Redis.SavePerMinute
		log.Info("workout save rate limit enabled", "per_minute", cfg.Redis.SavePerMinute)
	}

	opts.MCP = fitmcp.New(store, cat, Version, log)
	srv := server.New(store, cat, log, opts)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
