package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"pdfexport/internal/config"
	"pdfexport/internal/export"
	"pdfexport/internal/http/server"
	"pdfexport/internal/infra/cache"
	"pdfexport/internal/infra/chrome"
	"pdfexport/internal/infra/logging"
	"pdfexport/internal/mcpserver"
	"pdfexport/internal/store"
	"pdfexport/internal/tokens"
)

const version = "1.0.0"

func main() {
	httpMode := flag.Bool("http", false, "serve the HTTP API instead of MCP on stdio")
	flag.Parse()

	cfg := config.Load()
	// Allow common container env var to override chrome_path.
	if cfg.PDF.ChromePath == "" {
		if v := os.Getenv("CHROME_BIN"); v != "" {
			cfg.PDF.ChromePath = v
		}
	}
	logging.Init(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	pipe := buildPipeline(cfg)

	if *httpMode {
		runHTTP(cfg, pipe)
		return
	}

	if err := mcpserver.ServeStdio(mcpserver.New(pipe, version)); err != nil {
		logging.Error("Server error", "error", err.Error())
		os.Exit(1)
	}
}

func buildPipeline(cfg config.Config) *export.Pipeline {
	var pdfCache *cache.PDFCache
	if cfg.Cache.PDFCacheEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisHost,
			DB:   cfg.Cache.PDFCacheDB,
		})
		pdfCache = cache.New(rdb, time.Duration(cfg.Cache.PDFCacheTTL))
	}

	engine := chrome.NewEngine(cfg.PDF)
	return export.NewPipeline(cfg, engine, store.New(cfg.Export.Dir), pdfCache)
}

func runHTTP(cfg config.Config, pipe *export.Pipeline) {
	idleConnsClosed := make(chan struct{})

	var tokenStore *tokens.Store
	if cfg.Auth.Postgres.Host != "" {
		tokenStore = tokens.NewStore(cfg.Auth.Postgres)
		if err := tokenStore.Load(context.Background()); err != nil {
			logging.Error("Failed to load API tokens", "error", err.Error())
		}
		go tokenStore.RefreshPeriodically(time.Minute, idleConnsClosed)
	}

	app := server.New(server.Deps{Pipeline: pipe, Tokens: tokenStore})

	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err.Error())
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err.Error())
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
