package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricelens/api"
	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/cache"
	"github.com/use-agent/pricelens/config"
	"github.com/use-agent/pricelens/pipeline"
	"github.com/use-agent/pricelens/search"
	"github.com/use-agent/pricelens/webhook"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	closeLog := initLogger(cfg.Log)
	defer closeLog()

	// ── 3. Assemble the extraction pipeline ─────────────────────────
	p := pipeline.FromConfig(cfg)
	providers := p.Providers()
	configured := make([]string, 0, len(providers))
	for _, prov := range providers {
		if prov.Configured() {
			configured = append(configured, prov.Name())
		}
	}
	slog.Info("pricelens starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"profiles", cfg.Fetch.Profiles,
		"mirror", cfg.Mirror.Enabled,
		"providers", configured,
	)

	// ── 4. Initialise payload cache ─────────────────────────────────
	cc, closeCache := initCache(cfg.Cache)
	defer closeCache()

	// ── 5. Setup router ─────────────────────────────────────────────
	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(cfg, api.Deps{
		Service:      handler.NewService(p, cc, cfg.Pipeline.Timeout),
		Providers:    providers,
		CacheBackend: cc.Backend(),
		Webhooks:     webhook.NewSender(),
		Searcher:     search.New(p.Fetcher(), search.WithTimeout(cfg.Search.Timeout), search.WithLimit(cfg.Search.Limit)),
		StartTime:    time.Now(),
	})

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight extractions their full pipeline budget.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("pricelens stopped")
}

// initCache returns the Redis store when an address is configured and
// reachable, otherwise the in-memory store.
func initCache(cfg config.CacheConfig) (cache.Store, func()) {
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err == nil {
			slog.Info("payload cache using redis", "addr", cfg.RedisAddr)
			return rc, func() { _ = rc.Close() }
		}
		slog.Warn("redis unavailable, falling back to memory cache", "addr", cfg.RedisAddr, "error", err)
	}
	mc := cache.NewMemory(cfg.MaxEntries, cfg.TTL)
	return mc, mc.Close
}

// initLogger configures slog based on the LogConfig. When a log file is
// set, lines are also written to a rotated file.
func initLogger(cfg config.LogConfig) func() {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closer := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = func() { _ = rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	slog.SetDefault(slog.New(h))
	return closer
}
